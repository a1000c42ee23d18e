package elevenlabs

import "strings"

type synthesisRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// streamInputMessage is a stream-input WebSocket frame. Voice settings
// are merged into the opening frame by parameter mapping; an empty Text
// closes the input side.
type streamInputMessage struct {
	Text string `json:"text"`
}

// formatMIMEType derives the MIME type from the output format's codec
// prefix (mp3_44100_128, pcm_16000, ulaw_8000, ...).
func formatMIMEType(format string) string {
	codec, _, _ := strings.Cut(format, "_")
	switch codec {
	case "mp3":
		return "audio/mpeg"
	case "pcm":
		return "audio/pcm"
	case "ulaw":
		return "audio/basic"
	case "aac":
		return "audio/aac"
	case "flac":
		return "audio/flac"
	case "opus":
		return "audio/opus"
	default:
		return "audio/mpeg"
	}
}
