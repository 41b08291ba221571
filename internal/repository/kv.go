package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Keys under which per-chat state is persisted. Each is independently
// loadable; a corrupt value under one key never affects the others.
const (
	KeyTimeline  = "timeline"
	KeyModel     = "model"
	KeyPersona   = "persona"
	KeyLanguage  = "dictation_language"
	KeyAccessKey = "access_key"
	KeyIntroSeen = "intro_seen"
)

// KV is the per-chat key-value byte store backing timelines and preferences.
type KV struct {
	pool *pgxpool.Pool
}

func NewKV(pool *pgxpool.Pool) *KV {
	return &KV{pool: pool}
}

// Get returns the stored value, or nil when the key is absent.
func (k *KV) Get(ctx context.Context, chatID int64, key string) ([]byte, error) {
	var value []byte
	err := k.pool.QueryRow(ctx,
		`SELECT value FROM chat_state WHERE chat_id = $1 AND key = $2`,
		chatID, key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func (k *KV) Put(ctx context.Context, chatID int64, key string, value []byte) error {
	_, err := k.pool.Exec(ctx,
		`INSERT INTO chat_state (chat_id, key, value, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (chat_id, key) DO UPDATE SET value = $3, updated_at = now()`,
		chatID, key, value,
	)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (k *KV) Delete(ctx context.Context, chatID int64, key string) error {
	_, err := k.pool.Exec(ctx,
		`DELETE FROM chat_state WHERE chat_id = $1 AND key = $2`,
		chatID, key,
	)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
