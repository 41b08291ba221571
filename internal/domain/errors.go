package domain

import "errors"

var (
	ErrEmptyIntent     = errors.New("nothing to send")
	ErrRequestInFlight = errors.New("request already in flight")
	ErrCooldown        = errors.New("dispatch cooldown active")

	ErrInvalidAttachmentType = errors.New("attachment is not an image")
	ErrAttachmentTooLarge    = errors.New("attachment exceeds size limit")

	ErrModelNotFound   = errors.New("model not found")
	ErrPersonaNotFound = errors.New("persona not found")
)
