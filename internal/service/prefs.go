package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pale-fire/chatpilot/internal/config"
	"github.com/pale-fire/chatpilot/internal/repository"
)

// Prefs are the per-chat settings sent with every dispatch or consulted by
// the dictation controller. Each field is persisted under its own key so a
// corrupt value loses only itself.
type Prefs struct {
	Model             string
	Persona           string
	DictationLanguage string
	AccessKey         string
	IntroSeen         bool
}

// PrefsService loads and persists per-chat preferences, caching them after
// the first load.
type PrefsService struct {
	store StateStore

	mu    sync.Mutex
	cache map[int64]*Prefs
}

func NewPrefsService(store StateStore) *PrefsService {
	return &PrefsService{store: store, cache: make(map[int64]*Prefs)}
}

// Get returns the chat's preferences, falling back to defaults for anything
// absent or unreadable.
func (s *PrefsService) Get(ctx context.Context, chatID int64) Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.load(ctx, chatID)
}

func (s *PrefsService) load(ctx context.Context, chatID int64) *Prefs {
	if p, ok := s.cache[chatID]; ok {
		return p
	}

	p := &Prefs{
		Model:             config.DefaultModel,
		Persona:           config.DefaultPersona,
		DictationLanguage: config.DefaultDictationLanguage,
	}
	if v := s.get(ctx, chatID, repository.KeyModel); v != "" {
		p.Model = v
	}
	if v := s.get(ctx, chatID, repository.KeyPersona); v != "" {
		p.Persona = v
	}
	if v := s.get(ctx, chatID, repository.KeyLanguage); v != "" {
		p.DictationLanguage = v
	}
	p.AccessKey = s.get(ctx, chatID, repository.KeyAccessKey)
	p.IntroSeen = s.get(ctx, chatID, repository.KeyIntroSeen) == "1"

	s.cache[chatID] = p
	return p
}

func (s *PrefsService) get(ctx context.Context, chatID int64, key string) string {
	raw, err := s.store.Get(ctx, chatID, key)
	if err != nil {
		slog.Error("load preference", "error", err, "chat_id", chatID, "key", key)
		return ""
	}
	return string(raw)
}

func (s *PrefsService) SetModel(ctx context.Context, chatID int64, model string) error {
	return s.set(ctx, chatID, repository.KeyModel, model, func(p *Prefs) { p.Model = model })
}

func (s *PrefsService) SetPersona(ctx context.Context, chatID int64, persona string) error {
	return s.set(ctx, chatID, repository.KeyPersona, persona, func(p *Prefs) { p.Persona = persona })
}

func (s *PrefsService) SetDictationLanguage(ctx context.Context, chatID int64, lang string) error {
	return s.set(ctx, chatID, repository.KeyLanguage, lang, func(p *Prefs) { p.DictationLanguage = lang })
}

func (s *PrefsService) SetAccessKey(ctx context.Context, chatID int64, key string) error {
	if key == "" {
		s.mu.Lock()
		s.load(ctx, chatID).AccessKey = ""
		s.mu.Unlock()
		return s.store.Delete(ctx, chatID, repository.KeyAccessKey)
	}
	return s.set(ctx, chatID, repository.KeyAccessKey, key, func(p *Prefs) { p.AccessKey = key })
}

func (s *PrefsService) MarkIntroSeen(ctx context.Context, chatID int64) error {
	return s.set(ctx, chatID, repository.KeyIntroSeen, "1", func(p *Prefs) { p.IntroSeen = true })
}

func (s *PrefsService) set(ctx context.Context, chatID int64, key, value string, apply func(*Prefs)) error {
	s.mu.Lock()
	apply(s.load(ctx, chatID))
	s.mu.Unlock()
	return s.store.Put(ctx, chatID, key, []byte(value))
}
