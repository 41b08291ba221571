package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pale-fire/chatpilot/internal/domain"
)

func TestChatClientSuccess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Action != "chat" {
			t.Errorf("unexpected action: %q", req.Action)
		}
		json.NewEncoder(w).Encode(ChatResponse{Reply: "pong", ModelUsed: "aurora-mini"})
	}))
	defer srv.Close()

	resp, err := NewChatClient(srv.URL).Chat(context.Background(), &ChatRequest{Prompt: "ping"})
	if err != nil {
		t.Fatalf("chat failed: %v", err)
	}
	if resp.Reply != "pong" || resp.ModelUsed != "aurora-mini" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestChatClientErrorFieldWinsOverStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// HTTP 200 but the body says failure.
		json.NewEncoder(w).Encode(ChatResponse{Error: "Model is overloaded."})
	}))
	defer srv.Close()

	_, err := NewChatClient(srv.URL).Chat(context.Background(), &ChatRequest{Prompt: "hi"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "Model is overloaded." {
		t.Fatalf("unexpected message: %q", apiErr.Message)
	}
}

func TestChatClientNonJSONFailureStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewChatClient(srv.URL).Chat(context.Background(), &ChatRequest{Prompt: "hi"})
	var transErr *TransportError
	if !errors.As(err, &transErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if transErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("unexpected status: %d", transErr.StatusCode)
	}
}

func TestNormalizeError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want string
	}{
		{"api error", &APIError{Message: "Quota exceeded."}, domain.ErrorMarker + " Quota exceeded."},
		{"http status", &TransportError{StatusCode: 503}, domain.ErrorMarker + " Service error (HTTP 503). Please try again."},
		{"network", &TransportError{Err: errors.New("connection refused")}, domain.ErrorMarker + " Network error. Check your connection and try again."},
		{"unknown", errors.New("surprise"), domain.ErrorMarker + " Something went wrong. Please try again."},
	}

	for _, tc := range cases {
		got := NormalizeError(tc.err)
		if got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
		if !strings.HasPrefix(got, domain.ErrorMarker) {
			t.Errorf("%s: normalized text must carry the marker", tc.name)
		}
	}
}
