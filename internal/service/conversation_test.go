package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/pale-fire/chatpilot/internal/config"
	"github.com/pale-fire/chatpilot/internal/domain"
	"github.com/pale-fire/chatpilot/internal/repository"
)

// memStore is an in-memory StateStore for tests.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func storeKey(chatID int64, key string) string {
	return fmt.Sprintf("%d/%s", chatID, key)
}

func (s *memStore) Get(_ context.Context, chatID int64, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[storeKey(chatID, key)], nil
}

func (s *memStore) Put(_ context.Context, chatID int64, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[storeKey(chatID, key)] = append([]byte(nil), value...)
	return nil
}

func (s *memStore) Delete(_ context.Context, chatID int64, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, storeKey(chatID, key))
	return nil
}

func TestTimelineSeedsGreetingOnFirstUse(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	svc := NewConversationService(store)

	tl := svc.Timeline(context.Background(), 1)
	msgs := tl.Snapshot()
	if len(msgs) != 1 {
		t.Fatalf("expected seeded greeting, got %d messages", len(msgs))
	}
	if msgs[0].Sender != domain.SenderBot || msgs[0].Text != config.GreetingText {
		t.Fatalf("unexpected greeting: %+v", msgs[0])
	}

	raw, _ := store.Get(context.Background(), 1, repository.KeyTimeline)
	if len(raw) == 0 {
		t.Fatal("greeting was not persisted")
	}
}

func TestTimelineRestoreSkipsLoadingAndContinuesIDs(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	prior := []domain.Message{
		{ID: 1, Text: "hi", Sender: domain.SenderUser, Timestamp: time.Now()},
		{ID: 2, Sender: domain.SenderLoading, Timestamp: time.Now()},
		{ID: 3, Text: "hello", Sender: domain.SenderBot, Timestamp: time.Now()},
	}
	raw, _ := json.Marshal(prior)
	store.Put(context.Background(), 7, repository.KeyTimeline, raw)

	tl := NewConversationService(store).Timeline(context.Background(), 7)
	msgs := tl.Snapshot()
	if len(msgs) != 2 {
		t.Fatalf("expected loading dropped on restore, got %d messages", len(msgs))
	}
	for _, m := range msgs {
		if m.Sender == domain.SenderLoading {
			t.Fatalf("loading placeholder survived restore: %+v", m)
		}
	}

	appended := tl.Append(context.Background(), domain.Message{Sender: domain.SenderUser, Text: "next"})
	if appended.ID != 4 {
		t.Fatalf("id sequence must continue past restored ids, got %d", appended.ID)
	}
}

func TestTimelineCorruptStateReseeds(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.Put(context.Background(), 3, repository.KeyTimeline, []byte("{not json"))

	tl := NewConversationService(store).Timeline(context.Background(), 3)
	msgs := tl.Snapshot()
	if len(msgs) != 1 || msgs[0].Sender != domain.SenderBot {
		t.Fatalf("corrupt state should reseed one greeting, got %+v", msgs)
	}
}

func TestTimelineReplaceByIDIsAtomicAndReassignsID(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	tl := NewConversationService(store).Timeline(context.Background(), 5)

	user := tl.Append(context.Background(), domain.Message{Sender: domain.SenderUser, Text: "q"})
	loading := tl.Append(context.Background(), domain.Message{Sender: domain.SenderLoading})

	final, ok := tl.ReplaceByID(context.Background(), loading.ID, domain.Message{Sender: domain.SenderBot, Text: "a"})
	if !ok {
		t.Fatal("replace should find the placeholder")
	}
	if final.ID <= loading.ID {
		t.Fatalf("replacement must get a fresh id, got %d after %d", final.ID, loading.ID)
	}

	msgs := tl.Snapshot()
	if len(msgs) != 3 {
		t.Fatalf("replace must not change the length, got %d", len(msgs))
	}
	if msgs[1].ID != user.ID || msgs[2].ID != final.ID {
		t.Fatalf("replacement must keep the placeholder position, got %+v", msgs)
	}
	for _, m := range msgs {
		if m.Sender == domain.SenderLoading {
			t.Fatal("placeholder still present after replace")
		}
	}
}

func TestTimelinePersistExcludesLoading(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	tl := NewConversationService(store).Timeline(context.Background(), 9)
	tl.Append(context.Background(), domain.Message{Sender: domain.SenderUser, Text: "q"})
	tl.Append(context.Background(), domain.Message{Sender: domain.SenderLoading})

	raw, _ := store.Get(context.Background(), 9, repository.KeyTimeline)
	var persisted []domain.Message
	if err := json.Unmarshal(raw, &persisted); err != nil {
		t.Fatalf("persisted timeline is not valid JSON: %v", err)
	}
	for _, m := range persisted {
		if m.Sender == domain.SenderLoading {
			t.Fatalf("loading placeholder was persisted: %+v", m)
		}
	}
	if len(persisted) != 2 {
		t.Fatalf("expected greeting and user message persisted, got %d", len(persisted))
	}
}

func TestTimelineClearLeavesSingleGreeting(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	tl := NewConversationService(store).Timeline(context.Background(), 11)
	tl.Append(context.Background(), domain.Message{Sender: domain.SenderUser, Text: "a"})
	tl.Append(context.Background(), domain.Message{Sender: domain.SenderBot, Text: "b"})

	g := tl.Clear(context.Background())
	msgs := tl.Snapshot()
	if len(msgs) != 1 || msgs[0].ID != g.ID || msgs[0].Text != config.GreetingText {
		t.Fatalf("clear should leave exactly the new greeting, got %+v", msgs)
	}
}

func TestTimelineRemoveByIDMissing(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	tl := NewConversationService(store).Timeline(context.Background(), 13)
	if tl.RemoveByID(context.Background(), 999) {
		t.Fatal("removing an unknown id should report false")
	}
}
