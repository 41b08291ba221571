package handler

import (
	"testing"
)

func TestStatusEntriesKeyedPerChat(t *testing.T) {
	t.Parallel()

	r := NewTelegramRenderer(nil)

	// Fresh chats assign timeline ids independently, so two chats in flight
	// at once carry the same loading id.
	const loadingID = 3
	entryA := &statusEntry{messageID: 11, stopTyping: func() {}}
	entryB := &statusEntry{messageID: 22, stopTyping: func() {}}

	r.track(100, loadingID, entryA)
	r.track(200, loadingID, entryB)

	if got := r.take(100, loadingID); got != entryA {
		t.Fatalf("chat 100 got the wrong status entry: %+v", got)
	}
	if got := r.take(200, loadingID); got != entryB {
		t.Fatalf("chat 200 got the wrong status entry: %+v", got)
	}
	if got := r.take(200, loadingID); got != nil {
		t.Fatalf("taken entry should be gone, got %+v", got)
	}
}

func TestStatusTakeUnknownReturnsNil(t *testing.T) {
	t.Parallel()

	r := NewTelegramRenderer(nil)
	if got := r.take(1, 99); got != nil {
		t.Fatalf("unknown key should yield nil, got %+v", got)
	}
}
