package elevenlabs

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/withceleste/celeste/core/envelope"
)

// streamOutputMessage is a stream-input server frame: base64 audio plus
// alignment metadata we do not surface. IsFinal marks the last frame.
type streamOutputMessage struct {
	Audio   string `json:"audio"`
	IsFinal bool   `json:"isFinal"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// parseStreamInputEvent decodes one server frame into an audio chunk.
// The final frame carries no audio and folds into a hidden finish.
func parseStreamInputEvent(payload []byte) (envelope.Chunk, error) {
	var msg streamOutputMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return envelope.Chunk{}, fmt.Errorf("elevenlabs: decoding stream frame: %w", err)
	}
	if msg.Error != "" {
		return envelope.Chunk{}, fmt.Errorf("elevenlabs: stream error %s: %s", msg.Error, msg.Message)
	}

	chunk := envelope.Chunk{}
	if msg.Audio != "" {
		data, err := base64.StdEncoding.DecodeString(msg.Audio)
		if err != nil {
			return envelope.Chunk{}, fmt.Errorf("elevenlabs: decoding audio frame: %w", err)
		}
		chunk.Data = data
	}
	if msg.IsFinal {
		chunk.FinishReason = envelope.FinishStop
	}
	chunk.Hidden = len(chunk.Data) == 0
	return chunk, nil
}
