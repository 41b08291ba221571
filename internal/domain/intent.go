package domain

import (
	"os"
	"sync"
)

// Attachment is a user-selected image staged for dispatch. Path points at a
// temp file owning the downloaded bytes; Release must run exactly once on
// every exit path (replaced, cleared, or consumed by a dispatch).
type Attachment struct {
	ID        string
	Name      string
	MediaType string
	Size      int64
	Path      string

	release sync.Once
}

// Release removes the backing temp file. Subsequent calls are no-ops.
func (a *Attachment) Release() {
	a.release.Do(func() {
		if a.Path != "" {
			os.Remove(a.Path)
		}
	})
}

// PendingIntent is the (text, image) tuple a dispatch consumes atomically at
// start. Ephemeral, never persisted.
type PendingIntent struct {
	Text  string
	Image *Attachment
}
