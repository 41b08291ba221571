package config

import "time"

const (
	// Minimum interval between dispatch starts per chat.
	DispatchCooldown = 1500 * time.Millisecond

	// Most recent eligible messages sent as context with each request.
	HistoryWindow = 20

	// Attachment size cap: 3.8 MB.
	MaxAttachmentBytes = 3984588

	// AI request timeout
	RequestTimeout = 90 * time.Second

	// Voice transcription timeout
	TranscribeTimeout = 30 * time.Second

	// Defaults for fresh chats
	DefaultModel             = "aurora-mini"
	DefaultPersona           = "assistant"
	DefaultDictationLanguage = "en-US"

	// Prompt used when an image is sent without any text.
	DescribeImagePrompt = "Describe this image."

	// Rate limits (per minute, per chat)
	RateLimitPerMinute = 20
	RateLimitBurst     = 5
)

// GreetingText seeds every fresh or cleared conversation.
const GreetingText = "👋 Hi! I'm your assistant. Send me a message, a photo or a voice note to get started."

// DictationLanguages offered by /language.
var DictationLanguages = []string{"en-US", "en-GB", "de-DE", "fr-FR", "es-ES", "ru-RU", "uk-UA"}
