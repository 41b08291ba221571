package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/pale-fire/chatpilot/internal/config"
	"github.com/pale-fire/chatpilot/internal/domain"
)

// EncodedImage is the transmittable form of an attachment.
type EncodedImage struct {
	MediaType string
	DataURL   string
}

// AttachmentPreparer stages incoming image bytes as temp-file-backed
// attachments and encodes them for transmission.
type AttachmentPreparer struct{}

func NewAttachmentPreparer() *AttachmentPreparer {
	return &AttachmentPreparer{}
}

// Stage writes the downloaded bytes to a temp file and returns the attachment
// handle owning it. Validation happens later in Prepare, so a bad selection
// still produces a visible error at dispatch time rather than vanishing.
func (p *AttachmentPreparer) Stage(name, mediaType string, data []byte) (*domain.Attachment, error) {
	id := uuid.NewString()
	f, err := os.CreateTemp("", "chatpilot-att-"+id+"-*")
	if err != nil {
		return nil, fmt.Errorf("stage attachment: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("stage attachment: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("stage attachment: %w", err)
	}

	return &domain.Attachment{
		ID:        id,
		Name:      name,
		MediaType: mediaType,
		Size:      int64(len(data)),
		Path:      f.Name(),
	}, nil
}

// Prepare validates the attachment and encodes it as a base64 data URL.
// Failures happen strictly before any network call.
func (p *AttachmentPreparer) Prepare(ctx context.Context, att *domain.Attachment) (*EncodedImage, error) {
	if !strings.HasPrefix(att.MediaType, "image/") {
		return nil, fmt.Errorf("%q: %w", att.Name, domain.ErrInvalidAttachmentType)
	}
	if att.Size > config.MaxAttachmentBytes {
		return nil, fmt.Errorf("%q (%d bytes): %w", att.Name, att.Size, domain.ErrAttachmentTooLarge)
	}

	data, err := os.ReadFile(att.Path)
	if err != nil {
		return nil, fmt.Errorf("read attachment %q: %w", att.Name, err)
	}
	if int64(len(data)) > config.MaxAttachmentBytes {
		return nil, fmt.Errorf("%q (%d bytes): %w", att.Name, len(data), domain.ErrAttachmentTooLarge)
	}

	return &EncodedImage{
		MediaType: att.MediaType,
		DataURL:   "data:" + att.MediaType + ";base64," + base64.StdEncoding.EncodeToString(data),
	}, nil
}
