package service

import (
	"reflect"
	"testing"

	"github.com/pale-fire/chatpilot/internal/domain"
)

func TestParseReplyExtractsSuggestionsInOrder(t *testing.T) {
	t.Parallel()

	got := ParseReply("Hello [Suggestion: Tell me more][Suggestion: Bye]")
	if got.Body != "Hello" {
		t.Fatalf("unexpected body: %q", got.Body)
	}
	want := []string{"Tell me more", "Bye"}
	if !reflect.DeepEqual(got.Suggestions, want) {
		t.Fatalf("unexpected suggestions: %v", got.Suggestions)
	}
}

func TestParseReplyPlainTextPassesThrough(t *testing.T) {
	t.Parallel()

	got := ParseReply("  just an answer  ")
	if got.Body != "just an answer" {
		t.Fatalf("unexpected body: %q", got.Body)
	}
	if len(got.Suggestions) != 0 {
		t.Fatalf("expected no suggestions, got %v", got.Suggestions)
	}
}

func TestParseReplyKeepsUnmatchedDelimiterLiteral(t *testing.T) {
	t.Parallel()

	raw := "See [Suggestion: incomplete"
	got := ParseReply(raw)
	if got.Body != raw {
		t.Fatalf("unmatched delimiter should stay literal, got body %q", got.Body)
	}
	if len(got.Suggestions) != 0 {
		t.Fatalf("expected no suggestions, got %v", got.Suggestions)
	}
}

func TestParseReplyInterleavedTextAndSuggestions(t *testing.T) {
	t.Parallel()

	got := ParseReply("Try this. [Suggestion: More ] And that. [Suggestion:Again]")
	if got.Body != "Try this.  And that." {
		t.Fatalf("unexpected body: %q", got.Body)
	}
	want := []string{"More", "Again"}
	if !reflect.DeepEqual(got.Suggestions, want) {
		t.Fatalf("unexpected suggestions: %v", got.Suggestions)
	}
}

func TestParseReplyErrorTextVerbatim(t *testing.T) {
	t.Parallel()

	raw := domain.ErrorMarker + " Service error (HTTP 500). [Suggestion: Retry]"
	got := ParseReply(raw)
	if got.Body != raw {
		t.Fatalf("error reply must stay verbatim, got %q", got.Body)
	}
	if len(got.Suggestions) != 0 {
		t.Fatalf("error reply must carry no suggestions, got %v", got.Suggestions)
	}
}

func TestParseReplySkipsEmptySuggestionSpan(t *testing.T) {
	t.Parallel()

	got := ParseReply("Hi [Suggestion:   ]")
	if got.Body != "Hi" {
		t.Fatalf("unexpected body: %q", got.Body)
	}
	if len(got.Suggestions) != 0 {
		t.Fatalf("blank suggestion should be dropped, got %v", got.Suggestions)
	}
}
