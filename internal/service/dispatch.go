package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pale-fire/chatpilot/internal/config"
	"github.com/pale-fire/chatpilot/internal/domain"
	"github.com/pale-fire/chatpilot/internal/ops"
)

// Renderer receives timeline mutations as they happen, so the presentation
// layer reflects "sent" state before the network call begins. LoadingReplaced
// with a nil final message means the placeholder was removed without a
// replacement (empty-reply policy).
type Renderer interface {
	UserMessageQueued(ctx context.Context, chatID int64, msg domain.Message)
	LoadingStarted(ctx context.Context, chatID int64, msg domain.Message)
	LoadingReplaced(ctx context.Context, chatID int64, loadingID int64, final *domain.Message)
}

// Dispatcher turns a user intent into exactly one request to the chat service
// and reconciles the reply back into the conversation timeline. Per chat it is
// single-flight with a cooldown between dispatch starts.
type Dispatcher struct {
	conversations *ConversationService
	input         *InputService
	preparer      *AttachmentPreparer
	client        RemoteClient
	prefs         *PrefsService
	renderer      Renderer

	mu        sync.Mutex
	inflight  map[int64]bool
	lastStart map[int64]time.Time

	now func() time.Time
}

func NewDispatcher(
	conversations *ConversationService,
	input *InputService,
	preparer *AttachmentPreparer,
	client RemoteClient,
	prefs *PrefsService,
	renderer Renderer,
) *Dispatcher {
	return &Dispatcher{
		conversations: conversations,
		input:         input,
		preparer:      preparer,
		client:        client,
		prefs:         prefs,
		renderer:      renderer,
		inflight:      make(map[int64]bool),
		lastStart:     make(map[int64]time.Time),
		now:           time.Now,
	}
}

// Dispatch runs one full send cycle. The given text is merged with the chat's
// pending draft and attachment selection, which are consumed atomically once
// the gates pass. Gate rejections mutate nothing and touch no network.
func (d *Dispatcher) Dispatch(ctx context.Context, chatID int64, text string) error {
	d.mu.Lock()
	if d.inflight[chatID] {
		d.mu.Unlock()
		return domain.ErrRequestInFlight
	}
	if last, ok := d.lastStart[chatID]; ok && d.now().Sub(last) < config.DispatchCooldown {
		d.mu.Unlock()
		return domain.ErrCooldown
	}

	intent := d.input.Take(chatID, text)
	if intent.Text == "" && intent.Image == nil {
		d.mu.Unlock()
		return domain.ErrEmptyIntent
	}

	d.inflight[chatID] = true
	d.lastStart[chatID] = d.now()
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		delete(d.inflight, chatID)
		d.mu.Unlock()
	}()

	if intent.Image != nil {
		defer intent.Image.Release()
	}

	dispatchID := uuid.NewString()
	tl := d.conversations.Timeline(ctx, chatID)

	// History is built before the optimistic append, so the window never
	// contains the message being sent.
	history := buildHistory(tl.Snapshot(), config.HistoryWindow)

	userText := intent.Text
	if userText == "" {
		userText = "📷 " + intent.Image.Name
	}
	userMsg := tl.Append(ctx, domain.Message{Sender: domain.SenderUser, Text: userText})
	d.renderer.UserMessageQueued(ctx, chatID, userMsg)

	loading := tl.Append(ctx, domain.Message{Sender: domain.SenderLoading})
	d.renderer.LoadingStarted(ctx, chatID, loading)

	var encoded *EncodedImage
	if intent.Image != nil {
		var err error
		encoded, err = d.preparer.Prepare(ctx, intent.Image)
		if err != nil {
			slog.Warn("attachment rejected", "dispatch_id", dispatchID, "chat_id", chatID, "error", err)
			d.replaceLoading(ctx, tl, chatID, loading.ID, domain.Message{
				Sender: domain.SenderBot,
				Text:   attachmentErrorText(err),
			})
			ops.DispatchesTotal.WithLabelValues(ops.OutcomeAttachmentError).Inc()
			return nil
		}
	}

	prefs := d.prefs.Get(ctx, chatID)
	prompt := intent.Text
	if prompt == "" {
		prompt = config.DescribeImagePrompt
	}

	req := &ChatRequest{
		Prompt:    prompt,
		Model:     prefs.Model,
		Persona:   prefs.Persona,
		AccessKey: prefs.AccessKey,
		History:   toWireHistory(history),
	}
	if encoded != nil {
		req.ImageMimeType = encoded.MediaType
		req.ImageDataURL = encoded.DataURL
	}

	callCtx, cancel := context.WithTimeout(ctx, config.RequestTimeout)
	defer cancel()

	start := d.now()
	resp, err := d.client.Chat(callCtx, req)
	if err != nil {
		slog.Error("chat request failed", "dispatch_id", dispatchID, "chat_id", chatID,
			"model", prefs.Model, "duration", d.now().Sub(start), "error", err)
		d.replaceLoading(ctx, tl, chatID, loading.ID, domain.Message{
			Sender: domain.SenderBot,
			Text:   NormalizeError(err),
		})
		ops.DispatchesTotal.WithLabelValues(ops.OutcomeRemoteError).Inc()
		return nil
	}

	if resp.IsEmpty() {
		// The timeline must not grow for a genuinely empty, error-free reply.
		tl.RemoveByID(ctx, loading.ID)
		d.renderer.LoadingReplaced(ctx, chatID, loading.ID, nil)
		slog.Warn("empty reply from chat service", "dispatch_id", dispatchID, "chat_id", chatID, "model", prefs.Model)
		ops.EmptyRepliesTotal.Inc()
		ops.DispatchesTotal.WithLabelValues(ops.OutcomeEmpty).Inc()
		return nil
	}

	d.replaceLoading(ctx, tl, chatID, loading.ID, domain.Message{
		Sender:    domain.SenderBot,
		Text:      resp.Reply,
		ImageURL:  resp.ImageURL,
		ModelUsed: resp.ModelUsed,
	})
	ops.DispatchesTotal.WithLabelValues(ops.OutcomeOK).Inc()

	slog.Info("dispatch completed", "dispatch_id", dispatchID, "chat_id", chatID,
		"model", prefs.Model, "duration", d.now().Sub(start), "history_len", len(history))
	return nil
}

func (d *Dispatcher) replaceLoading(ctx context.Context, tl *Timeline, chatID, loadingID int64, m domain.Message) {
	final, ok := tl.ReplaceByID(ctx, loadingID, m)
	if !ok {
		// Placeholder already gone (conversation cleared mid-flight); the
		// reply has no home anymore.
		slog.Warn("loading placeholder missing on reconcile", "chat_id", chatID, "loading_id", loadingID)
		d.renderer.LoadingReplaced(ctx, chatID, loadingID, nil)
		return
	}
	d.renderer.LoadingReplaced(ctx, chatID, loadingID, &final)
}

// buildHistory selects the most recent eligible messages, oldest first:
// user or bot sender, non-empty text, not an error.
func buildHistory(msgs []domain.Message, limit int) []domain.HistoryItem {
	var items []domain.HistoryItem
	for _, m := range msgs {
		if m.Sender != domain.SenderUser && m.Sender != domain.SenderBot {
			continue
		}
		if strings.TrimSpace(m.Text) == "" || m.IsError() {
			continue
		}
		role := domain.RoleUser
		if m.Sender == domain.SenderBot {
			role = domain.RoleModel
		}
		items = append(items, domain.HistoryItem{Role: role, Content: m.Text})
	}
	if len(items) > limit {
		items = items[len(items)-limit:]
	}
	return items
}

func toWireHistory(items []domain.HistoryItem) []HistoryEntry {
	entries := make([]HistoryEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, HistoryEntry{
			Role:  string(it.Role),
			Parts: []HistoryPart{{Text: it.Content}},
		})
	}
	return entries
}

func attachmentErrorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrAttachmentTooLarge):
		return domain.ErrorMarker + " That image is too large (max 3.8 MB)."
	case errors.Is(err, domain.ErrInvalidAttachmentType):
		return domain.ErrorMarker + " That file isn't an image I can send."
	default:
		return domain.ErrorMarker + " Couldn't read the attached image."
	}
}
