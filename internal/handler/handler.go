package handler

import (
	"github.com/go-telegram/bot"
	"github.com/pale-fire/chatpilot/internal/service"
	"github.com/pale-fire/chatpilot/internal/speech"
)

// Handler holds all dependencies needed by command, callback and message
// handlers.
type Handler struct {
	bot           *bot.Bot
	conversations *service.ConversationService
	dispatcher    *service.Dispatcher
	input         *service.InputService
	attachments   *service.AttachmentPreparer
	prefs         *service.PrefsService
	catalog       *service.Catalog
	dictation     *speech.Controller
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot           *bot.Bot
	Conversations *service.ConversationService
	Dispatcher    *service.Dispatcher
	Input         *service.InputService
	Attachments   *service.AttachmentPreparer
	Prefs         *service.PrefsService
	Catalog       *service.Catalog
	Dictation     *speech.Controller
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:           deps.Bot,
		conversations: deps.Conversations,
		dispatcher:    deps.Dispatcher,
		input:         deps.Input,
		attachments:   deps.Attachments,
		prefs:         deps.Prefs,
		catalog:       deps.Catalog,
		dictation:     deps.Dictation,
	}
}
