package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	BotToken    string `env:"BOT_TOKEN,required"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Remote chat endpoint every request is mediated to.
	ChatServiceURL string `env:"CHAT_SERVICE_URL,required"`

	// Voice transcription endpoint (websocket). Empty disables dictation.
	TranscriberURL string `env:"TRANSCRIBER_URL"`

	// Catalog of models and personas.
	PersonasPath string `env:"PERSONAS_PATH" envDefault:"personas.yaml"`

	// Ops HTTP listener (healthz, metrics).
	OpsAddr string `env:"OPS_ADDR" envDefault:":3000"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
