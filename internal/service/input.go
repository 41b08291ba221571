package service

import (
	"strings"
	"sync"

	"github.com/pale-fire/chatpilot/internal/domain"
)

// InputService holds the per-chat pending input: a text draft fed by voice
// dictation and at most one selected attachment. A dispatch consumes both
// atomically via Take.
type InputService struct {
	mu     sync.Mutex
	states map[int64]*inputState
}

type inputState struct {
	draft string
	image *domain.Attachment
}

func NewInputService() *InputService {
	return &InputService{states: make(map[int64]*inputState)}
}

func (s *InputService) state(chatID int64) *inputState {
	st, ok := s.states[chatID]
	if !ok {
		st = &inputState{}
		s.states[chatID] = st
	}
	return st
}

// AppendTranscript adds a dictation transcript to the draft, space-separated
// when the draft is non-empty, and returns the updated draft.
func (s *InputService) AppendTranscript(chatID int64, transcript string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(chatID)
	transcript = strings.TrimSpace(transcript)
	if transcript != "" {
		if st.draft == "" {
			st.draft = transcript
		} else {
			st.draft += " " + transcript
		}
	}
	return st.draft
}

// Draft returns the current pending text.
func (s *InputService) Draft(chatID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state(chatID).draft
}

// SetImage selects an attachment, releasing any previously selected one.
func (s *InputService) SetImage(chatID int64, att *domain.Attachment) {
	s.mu.Lock()
	prev := s.state(chatID).image
	s.state(chatID).image = att
	s.mu.Unlock()

	if prev != nil {
		prev.Release()
	}
}

// Image returns the currently selected attachment without consuming it.
func (s *InputService) Image(chatID int64) *domain.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state(chatID).image
}

// Take consumes the pending input together with the given text, producing the
// intent for one dispatch. The draft and the selection are cleared in the same
// critical section, so no second dispatch can capture the same attachment.
func (s *InputService) Take(chatID int64, text string) domain.PendingIntent {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(chatID)
	combined := strings.TrimSpace(st.draft)
	text = strings.TrimSpace(text)
	if text != "" {
		if combined == "" {
			combined = text
		} else {
			combined += " " + text
		}
	}

	intent := domain.PendingIntent{Text: combined, Image: st.image}
	st.draft = ""
	st.image = nil
	return intent
}

// ClearDraft drops the pending text but keeps any selected attachment.
func (s *InputService) ClearDraft(chatID int64) {
	s.mu.Lock()
	s.state(chatID).draft = ""
	s.mu.Unlock()
}

// Clear drops the draft and releases any selected attachment.
func (s *InputService) Clear(chatID int64) {
	s.mu.Lock()
	st := s.state(chatID)
	img := st.image
	st.draft = ""
	st.image = nil
	s.mu.Unlock()

	if img != nil {
		img.Release()
	}
}
