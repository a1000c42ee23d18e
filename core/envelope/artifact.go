package envelope

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Artifact wraps binary content produced or consumed by a call. An
// artifact is represented one of three ways; providers typically populate
// exactly one:
//
//   - URL: a remote location (may expire quickly for some vendors)
//   - Data: in-memory bytes for immediate use
//   - Path: a local file
//
// Artifacts are immutable after creation and live only as long as the
// envelope that owns them.
type Artifact struct {
	URL      string         `json:"url,omitempty"`
	Data     []byte         `json:"data,omitempty"`
	Path     string         `json:"path,omitempty"`
	MIMEType string         `json:"mime_type,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ErrNoLocalContent is returned by Bytes/Base64 when the artifact only
// has a remote URL; fetching is a transport concern, not an envelope one.
var ErrNoLocalContent = errors.New("artifact has no local content")

// HasContent reports whether the artifact carries any representation.
func (a Artifact) HasContent() bool {
	return strings.TrimSpace(a.URL) != "" || len(a.Data) > 0 || strings.TrimSpace(a.Path) != ""
}

// Bytes returns the raw content, reading from Path on demand when the
// artifact is file-backed.
func (a Artifact) Bytes() ([]byte, error) {
	if len(a.Data) > 0 {
		return a.Data, nil
	}
	if strings.TrimSpace(a.Path) != "" {
		data, err := os.ReadFile(a.Path)
		if err != nil {
			return nil, fmt.Errorf("reading artifact file: %w", err)
		}
		return data, nil
	}
	return nil, ErrNoLocalContent
}

// Base64 returns the standard-encoded content.
func (a Artifact) Base64() (string, error) {
	data, err := a.Bytes()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DataURL returns an RFC 2397 data URL, the form several vendors accept
// for inline media inputs.
func (a Artifact) DataURL() (string, error) {
	encoded, err := a.Base64()
	if err != nil {
		return "", err
	}
	mime := a.MIMEType
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data:" + mime + ";base64," + encoded, nil
}
