package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/pale-fire/chatpilot/internal/config"
	"github.com/pale-fire/chatpilot/internal/domain"
	"github.com/pale-fire/chatpilot/internal/repository"
)

// StateStore is the persistence surface the services need from the repository.
type StateStore interface {
	Get(ctx context.Context, chatID int64, key string) ([]byte, error)
	Put(ctx context.Context, chatID int64, key string, value []byte) error
	Delete(ctx context.Context, chatID int64, key string) error
}

// ConversationService owns one Timeline per chat, restoring each from the
// state store on first use.
type ConversationService struct {
	store StateStore

	mu        sync.Mutex
	timelines map[int64]*Timeline
}

func NewConversationService(store StateStore) *ConversationService {
	return &ConversationService{
		store:     store,
		timelines: make(map[int64]*Timeline),
	}
}

// Timeline returns the chat's timeline, loading it from the store or seeding
// the greeting when no usable prior state exists.
func (s *ConversationService) Timeline(ctx context.Context, chatID int64) *Timeline {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timelines[chatID]; ok {
		return t
	}

	t := &Timeline{chatID: chatID, store: s.store}
	t.restore(ctx)
	s.timelines[chatID] = t
	return t
}

// Timeline is the ordered message sequence of one conversation. All mutations
// hold the mutex for their full extent, so a replace is never observable
// half-applied.
type Timeline struct {
	mu     sync.Mutex
	chatID int64
	store  StateStore

	messages []domain.Message
	nextID   int64
}

func (t *Timeline) restore(ctx context.Context) {
	t.nextID = 1

	raw, err := t.store.Get(ctx, t.chatID, repository.KeyTimeline)
	if err != nil {
		slog.Error("load timeline", "error", err, "chat_id", t.chatID)
	}
	if len(raw) > 0 {
		var msgs []domain.Message
		if err := json.Unmarshal(raw, &msgs); err != nil || len(msgs) == 0 {
			slog.Warn("discarding corrupt timeline", "chat_id", t.chatID, "error", err)
		} else {
			for _, m := range msgs {
				// A stale loading placeholder must not survive a restart.
				if m.Sender == domain.SenderLoading {
					continue
				}
				t.messages = append(t.messages, m)
				if m.ID >= t.nextID {
					t.nextID = m.ID + 1
				}
			}
		}
	}

	if len(t.messages) == 0 {
		t.messages = []domain.Message{t.greeting()}
		t.persist(ctx)
	}
}

func (t *Timeline) greeting() domain.Message {
	id := t.nextID
	t.nextID++
	return domain.Message{
		ID:        id,
		Text:      config.GreetingText,
		Sender:    domain.SenderBot,
		Timestamp: time.Now(),
	}
}

// Append adds a message at the end, assigning its id and timestamp.
func (t *Timeline) Append(ctx context.Context, m domain.Message) domain.Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	m.ID = t.nextID
	t.nextID++
	m.Timestamp = time.Now()
	t.messages = append(t.messages, m)
	t.persist(ctx)
	return m
}

// RemoveByID deletes the message with the given id, preserving order.
func (t *Timeline) RemoveByID(ctx context.Context, id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, m := range t.messages {
		if m.ID == id {
			t.messages = append(t.messages[:i], t.messages[i+1:]...)
			t.persist(ctx)
			return true
		}
	}
	return false
}

// ReplaceByID swaps the message with the given id for a fresh one in a single
// mutation, so observers never see the placeholder and its replacement
// together, nor a gap between them. The replacement gets a new id.
func (t *Timeline) ReplaceByID(ctx context.Context, id int64, m domain.Message) (domain.Message, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, old := range t.messages {
		if old.ID == id {
			m.ID = t.nextID
			t.nextID++
			m.Timestamp = time.Now()
			t.messages[i] = m
			t.persist(ctx)
			return m, true
		}
	}
	return domain.Message{}, false
}

// ReplaceAll substitutes the whole sequence.
func (t *Timeline) ReplaceAll(ctx context.Context, msgs []domain.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.messages = append([]domain.Message(nil), msgs...)
	for _, m := range msgs {
		if m.ID >= t.nextID {
			t.nextID = m.ID + 1
		}
	}
	t.persist(ctx)
}

// Clear reseeds the conversation to exactly one greeting message.
func (t *Timeline) Clear(ctx context.Context) domain.Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	g := t.greeting()
	t.messages = []domain.Message{g}
	t.persist(ctx)
	return g
}

// Snapshot returns a copy of the ordered message sequence.
func (t *Timeline) Snapshot() []domain.Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]domain.Message(nil), t.messages...)
}

// MessageByID returns the message with the given id.
func (t *Timeline) MessageByID(id int64) (domain.Message, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, m := range t.messages {
		if m.ID == id {
			return m, true
		}
	}
	return domain.Message{}, false
}

// persist writes the timeline back to the store, skipping transient loading
// placeholders. Callers hold t.mu.
func (t *Timeline) persist(ctx context.Context) {
	durable := make([]domain.Message, 0, len(t.messages))
	for _, m := range t.messages {
		if m.Sender == domain.SenderLoading {
			continue
		}
		durable = append(durable, m)
	}

	raw, err := json.Marshal(durable)
	if err != nil {
		slog.Error("marshal timeline", "error", err, "chat_id", t.chatID)
		return
	}
	if err := t.store.Put(ctx, t.chatID, repository.KeyTimeline, raw); err != nil {
		slog.Error("save timeline", "error", err, "chat_id", t.chatID)
	}
}
