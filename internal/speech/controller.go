package speech

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pale-fire/chatpilot/internal/config"
	"github.com/pale-fire/chatpilot/internal/ops"
)

// State of a chat's dictation.
type State int

const (
	StateUnavailable State = iota
	StateIdle
	StateRecording
)

// TranscriptSink receives finished transcripts. It returns the updated draft
// so the controller can surface it.
type TranscriptSink interface {
	AppendTranscript(chatID int64, transcript string) string
}

// Notifier surfaces transient dictation notices to the user. Notices never
// enter the conversation timeline.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string)
}

// DraftPresenter shows the updated pending draft after a transcript lands.
type DraftPresenter interface {
	DraftUpdated(ctx context.Context, chatID int64, draft string)
}

// Controller is the dictation state machine. With no engine configured it is
// permanently unavailable and every control action surfaces a capability
// notice. Otherwise each chat moves idle -> recording -> idle, driven by
// exactly one terminal engine event per session; a session that never reports
// one is reset on Close.
type Controller struct {
	engine    Engine
	sink      TranscriptSink
	notify    Notifier
	presenter DraftPresenter

	mu       sync.Mutex
	closed   bool
	sessions map[int64]context.CancelFunc
	wg       sync.WaitGroup
}

func NewController(engine Engine, sink TranscriptSink, notify Notifier, presenter DraftPresenter) *Controller {
	return &Controller{
		engine:    engine,
		sink:      sink,
		notify:    notify,
		presenter: presenter,
		sessions:  make(map[int64]context.CancelFunc),
	}
}

// Available reports whether a transcription engine is configured at all.
func (c *Controller) Available() bool {
	return c.engine != nil
}

// State returns the chat's current dictation state.
func (c *Controller) State(chatID int64) State {
	if c.engine == nil {
		return StateUnavailable
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sessions[chatID]; ok {
		return StateRecording
	}
	return StateIdle
}

// Start begins a capture session for the chat. Rejections (unavailable, busy,
// engine refusal) fall back to idle with a user-visible notice; they never
// fail hard.
func (c *Controller) Start(ctx context.Context, chatID int64, audio []byte, mimeType, language string) {
	if c.engine == nil {
		c.notify.Notify(ctx, chatID, "🎤 Voice input isn't available: no transcription service is configured.")
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if _, busy := c.sessions[chatID]; busy {
		c.mu.Unlock()
		c.notify.Notify(ctx, chatID, "🎤 Still transcribing your previous voice note.")
		return
	}

	// The session outlives the triggering update; only the timeout or Close
	// ends it early.
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.TranscribeTimeout)
	c.sessions[chatID] = cancel
	c.mu.Unlock()

	events, err := c.engine.Start(sctx, Request{Audio: audio, MimeType: mimeType, Language: language})
	if err != nil {
		slog.Error("start transcription", "error", err, "chat_id", chatID)
		c.endSession(chatID, cancel)
		c.notify.Notify(ctx, chatID, "🎤 Couldn't start transcription. Try again.")
		ops.TranscriptionsTotal.WithLabelValues("start_failed").Inc()
		return
	}

	c.wg.Add(1)
	go c.consume(sctx, chatID, events, cancel)
}

// Stop force-ends the chat's active session, if any.
func (c *Controller) Stop(chatID int64) {
	c.mu.Lock()
	cancel, ok := c.sessions[chatID]
	c.mu.Unlock()
	if ok {
		cancel()
	}
}

// Close tears the controller down: every active session is cancelled and
// drained so no engine callback fires into a disposed context.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	for _, cancel := range c.sessions {
		cancel()
	}
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Controller) consume(ctx context.Context, chatID int64, events <-chan Event, cancel context.CancelFunc) {
	defer c.wg.Done()
	defer c.endSession(chatID, cancel)

	// When the session deadline itself kills the capture, the resulting error
	// event arrives with ctx already expired. Notices still have to go out.
	uctx := context.WithoutCancel(ctx)

	for ev := range events {
		switch ev.Kind {
		case EventResult:
			draft := c.sink.AppendTranscript(chatID, ev.Transcript)
			c.presenter.DraftUpdated(uctx, chatID, draft)
			ops.TranscriptionsTotal.WithLabelValues("ok").Inc()
		case EventError:
			c.notify.Notify(uctx, chatID, noticeFor(ev.Category))
			ops.TranscriptionsTotal.WithLabelValues("error").Inc()
		case EventEnd:
			// Terminal; the channel closes right after.
		}
	}
}

func (c *Controller) endSession(chatID int64, cancel context.CancelFunc) {
	cancel()
	c.mu.Lock()
	delete(c.sessions, chatID)
	c.mu.Unlock()
}

// noticeFor maps known engine error categories to fixed notices, with a
// generic fallback for anything unrecognized.
func noticeFor(cat ErrorCategory) string {
	switch cat {
	case ErrNoSpeech:
		return "🎤 I didn't catch any speech in that recording."
	case ErrAudioCapture:
		return "🎤 The audio couldn't be read. Try recording again."
	case ErrNotAllowed:
		return "🎤 The transcription service refused the request."
	default:
		return "🎤 Voice transcription failed. Try again."
	}
}
