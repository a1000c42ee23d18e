package transport

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// wsCloseGracePeriod bounds how long Close waits for the close handshake
// before tearing the connection down.
const wsCloseGracePeriod = 2 * time.Second

// wsSource yields WebSocket messages as stream events. The request body,
// when present, is sent as the opening message right after the dial;
// providers with message-oriented streaming APIs (ElevenLabs, realtime
// endpoints) use this to carry the generation request.
type wsSource struct {
	conn *websocket.Conn

	closeOnce sync.Once
	closeErr  error
}

var _ EventSource = (*wsSource)(nil)

func dialWebSocket(ctx context.Context, req *Request) (*wsSource, error) {
	conn, res, err := websocket.DefaultDialer.DialContext(ctx, req.URL, req.Header)
	if err != nil {
		wsErr := &Error{Provider: req.Provider, Cause: err}
		if res != nil {
			wsErr.StatusCode = res.StatusCode
			defer closeWithLog(res.Body, req.URL)
			if body, readErr := io.ReadAll(io.LimitReader(res.Body, maxResponseBodySize)); readErr == nil {
				wsErr.Body = string(body)
			}
		}
		return nil, wsErr
	}
	var opening [][]byte
	if len(req.Body) > 0 {
		opening = append(opening, req.Body)
	}
	opening = append(opening, req.TrailerFrames...)
	for _, frame := range opening {
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			_ = conn.Close()
			return nil, &Error{Provider: req.Provider, Cause: err}
		}
	}

	return &wsSource{conn: conn}, nil
}

// Next returns the payload of the next message. A normal or going-away
// close from the peer is reported as io.EOF.
func (w *wsSource) Next() ([]byte, error) {
	_, payload, err := w.conn.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil, io.EOF
		}
		return nil, err
	}
	return payload, nil
}

// Close performs the close handshake and releases the connection. Safe to
// call repeatedly.
func (w *wsSource) Close() error {
	w.closeOnce.Do(func() {
		deadline := time.Now().Add(wsCloseGracePeriod)
		_ = w.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		w.closeErr = w.conn.Close()
	})
	return w.closeErr
}
