package service

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"testing"

	"github.com/pale-fire/chatpilot/internal/config"
	"github.com/pale-fire/chatpilot/internal/domain"
)

func TestStageAndPrepareEncodesDataURL(t *testing.T) {
	t.Parallel()

	p := NewAttachmentPreparer()
	data := []byte("fake png bytes")

	att, err := p.Stage("pic.png", "image/png", data)
	if err != nil {
		t.Fatalf("stage failed: %v", err)
	}
	defer att.Release()

	if att.Size != int64(len(data)) {
		t.Fatalf("unexpected staged size: %d", att.Size)
	}
	if _, err := os.Stat(att.Path); err != nil {
		t.Fatalf("staged file missing: %v", err)
	}

	enc, err := p.Prepare(context.Background(), att)
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	want := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
	if enc.DataURL != want {
		t.Fatalf("unexpected data URL: %q", enc.DataURL)
	}
	if enc.MediaType != "image/png" {
		t.Fatalf("unexpected media type: %q", enc.MediaType)
	}
}

func TestPrepareRejectsNonImage(t *testing.T) {
	t.Parallel()

	p := NewAttachmentPreparer()
	att, err := p.Stage("doc.pdf", "application/pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("stage failed: %v", err)
	}
	defer att.Release()

	if _, err := p.Prepare(context.Background(), att); !errors.Is(err, domain.ErrInvalidAttachmentType) {
		t.Fatalf("expected type rejection, got %v", err)
	}
}

func TestPrepareRejectsOversize(t *testing.T) {
	t.Parallel()

	p := NewAttachmentPreparer()
	att, err := p.Stage("huge.png", "image/png", make([]byte, config.MaxAttachmentBytes+1))
	if err != nil {
		t.Fatalf("stage failed: %v", err)
	}
	defer att.Release()

	if _, err := p.Prepare(context.Background(), att); !errors.Is(err, domain.ErrAttachmentTooLarge) {
		t.Fatalf("expected size rejection, got %v", err)
	}
}

func TestPrepareAtSizeLimitAccepted(t *testing.T) {
	t.Parallel()

	p := NewAttachmentPreparer()
	att, err := p.Stage("edge.png", "image/png", make([]byte, config.MaxAttachmentBytes))
	if err != nil {
		t.Fatalf("stage failed: %v", err)
	}
	defer att.Release()

	if _, err := p.Prepare(context.Background(), att); err != nil {
		t.Fatalf("attachment at the limit should pass: %v", err)
	}
}

func TestReleaseRemovesFileOnce(t *testing.T) {
	t.Parallel()

	p := NewAttachmentPreparer()
	att, err := p.Stage("pic.png", "image/png", []byte("bytes"))
	if err != nil {
		t.Fatalf("stage failed: %v", err)
	}

	att.Release()
	if _, err := os.Stat(att.Path); !os.IsNotExist(err) {
		t.Fatalf("temp file should be gone after release: %v", err)
	}

	// A second release is a no-op, not an error.
	att.Release()
}
