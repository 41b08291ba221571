package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pale-fire/chatpilot/internal/domain"
)

func tempAttachment(t *testing.T, name string) *domain.Attachment {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("img"), 0o600); err != nil {
		t.Fatalf("write temp attachment: %v", err)
	}
	return &domain.Attachment{ID: name, Name: name, MediaType: "image/png", Size: 3, Path: path}
}

func TestAppendTranscriptJoinsWithSpaces(t *testing.T) {
	t.Parallel()

	s := NewInputService()
	if got := s.AppendTranscript(1, "hello"); got != "hello" {
		t.Fatalf("unexpected draft: %q", got)
	}
	if got := s.AppendTranscript(1, " world "); got != "hello world" {
		t.Fatalf("unexpected draft: %q", got)
	}
	if got := s.AppendTranscript(1, "   "); got != "hello world" {
		t.Fatalf("blank transcript must not change the draft: %q", got)
	}
}

func TestTakeConsumesDraftAndImageAtomically(t *testing.T) {
	t.Parallel()

	s := NewInputService()
	s.AppendTranscript(2, "dictated part")
	att := tempAttachment(t, "a.png")
	s.SetImage(2, att)

	intent := s.Take(2, "typed part")
	if intent.Text != "dictated part typed part" {
		t.Fatalf("unexpected intent text: %q", intent.Text)
	}
	if intent.Image != att {
		t.Fatalf("unexpected intent image: %+v", intent.Image)
	}

	// Everything was consumed; a second take sees nothing.
	again := s.Take(2, "")
	if again.Text != "" || again.Image != nil {
		t.Fatalf("second take should be empty, got %+v", again)
	}
}

func TestSetImageReleasesPrevious(t *testing.T) {
	t.Parallel()

	s := NewInputService()
	first := tempAttachment(t, "first.png")
	second := tempAttachment(t, "second.png")

	s.SetImage(3, first)
	s.SetImage(3, second)

	if _, err := os.Stat(first.Path); !os.IsNotExist(err) {
		t.Fatalf("replaced attachment should be released: %v", err)
	}
	if _, err := os.Stat(second.Path); err != nil {
		t.Fatalf("current attachment should stay staged: %v", err)
	}
	if s.Image(3) != second {
		t.Fatal("current selection should be the second attachment")
	}
}

func TestClearReleasesImageAndDraft(t *testing.T) {
	t.Parallel()

	s := NewInputService()
	att := tempAttachment(t, "c.png")
	s.SetImage(4, att)
	s.AppendTranscript(4, "pending")

	s.Clear(4)

	if s.Draft(4) != "" || s.Image(4) != nil {
		t.Fatal("clear should drop both draft and image")
	}
	if _, err := os.Stat(att.Path); !os.IsNotExist(err) {
		t.Fatalf("cleared attachment should be released: %v", err)
	}
}

func TestClearDraftKeepsImage(t *testing.T) {
	t.Parallel()

	s := NewInputService()
	att := tempAttachment(t, "d.png")
	s.SetImage(5, att)
	s.AppendTranscript(5, "text only")

	s.ClearDraft(5)

	if s.Draft(5) != "" {
		t.Fatalf("draft should be empty, got %q", s.Draft(5))
	}
	if s.Image(5) != att {
		t.Fatal("image selection should survive a draft clear")
	}
}
