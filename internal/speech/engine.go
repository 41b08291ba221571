package speech

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coder/websocket"
)

// EventKind identifies the engine events a capture session can report.
type EventKind int

const (
	EventResult EventKind = iota
	EventError
	EventEnd
)

// ErrorCategory classifies engine failures for user-facing notices.
type ErrorCategory string

const (
	ErrNoSpeech     ErrorCategory = "no-speech"
	ErrAudioCapture ErrorCategory = "audio-capture"
	ErrNotAllowed   ErrorCategory = "not-allowed"
)

// Event is one engine report. A session delivers at most one terminal event
// (result, error, or end) before its channel closes.
type Event struct {
	Kind       EventKind
	Transcript string
	Category   ErrorCategory
}

// Request describes one capture session.
type Request struct {
	Audio    []byte
	MimeType string
	Language string
}

// Engine turns captured audio into text. Start may reject a session outright;
// otherwise events arrive on the returned channel, which is closed once the
// session ends.
type Engine interface {
	Start(ctx context.Context, req Request) (<-chan Event, error)
}

// WSEngine speaks to a websocket transcription service: a JSON header frame,
// the audio as one binary frame, then JSON result frames back.
type WSEngine struct {
	url string
}

func NewWSEngine(url string) *WSEngine {
	return &WSEngine{url: url}
}

func (e *WSEngine) Start(ctx context.Context, req Request) (<-chan Event, error) {
	conn, _, err := websocket.Dial(ctx, e.url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial transcriber: %w", err)
	}

	ch := make(chan Event, 4)
	go e.run(ctx, conn, req, ch)
	return ch, nil
}

type resultFrame struct {
	Transcript string `json:"transcript"`
	Error      string `json:"error"`
	Final      bool   `json:"final"`
}

func (e *WSEngine) run(ctx context.Context, conn *websocket.Conn, req Request, ch chan<- Event) {
	defer close(ch)
	defer conn.Close(websocket.StatusNormalClosure, "done")

	header, err := json.Marshal(map[string]string{
		"language": req.Language,
		"mimeType": req.MimeType,
	})
	if err != nil {
		ch <- Event{Kind: EventError, Category: ErrAudioCapture}
		return
	}
	if err := conn.Write(ctx, websocket.MessageText, header); err != nil {
		ch <- Event{Kind: EventError, Category: ErrAudioCapture}
		return
	}
	if err := conn.Write(ctx, websocket.MessageBinary, req.Audio); err != nil {
		ch <- Event{Kind: EventError, Category: ErrAudioCapture}
		return
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			ch <- Event{Kind: EventError, Category: ErrAudioCapture}
			return
		}

		var frame resultFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}

		if frame.Error != "" {
			ch <- Event{Kind: EventError, Category: ErrorCategory(frame.Error)}
			return
		}
		if frame.Final {
			if frame.Transcript == "" {
				ch <- Event{Kind: EventError, Category: ErrNoSpeech}
				return
			}
			ch <- Event{Kind: EventResult, Transcript: frame.Transcript}
			ch <- Event{Kind: EventEnd}
			return
		}
	}
}
