package service

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pale-fire/chatpilot/internal/domain"
)

const catalogYAML = `models:
  - id: aurora-mini
    name: Aurora Mini
    description: Fast everyday model.
  - id: aurora-pro
    name: Aurora Pro
    description: Slower, more thorough.
personas:
  - id: assistant
    name: Assistant
    description: Neutral and helpful.
`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "personas.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func TestLoadCatalog(t *testing.T) {
	t.Parallel()

	c, err := LoadCatalog(writeCatalog(t, catalogYAML))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(c.Models) != 2 || len(c.Personas) != 1 {
		t.Fatalf("unexpected catalog: %+v", c)
	}

	m, err := c.Model("aurora-pro")
	if err != nil {
		t.Fatalf("model lookup failed: %v", err)
	}
	if m.Name != "Aurora Pro" {
		t.Fatalf("unexpected model: %+v", m)
	}

	if _, err := c.Model("nope"); !errors.Is(err, domain.ErrModelNotFound) {
		t.Fatalf("expected model-not-found, got %v", err)
	}
	if _, err := c.Persona("nope"); !errors.Is(err, domain.ErrPersonaNotFound) {
		t.Fatalf("expected persona-not-found, got %v", err)
	}
}

func TestLoadCatalogRejectsEmptySections(t *testing.T) {
	t.Parallel()

	if _, err := LoadCatalog(writeCatalog(t, "models: []\npersonas: []\n")); err == nil {
		t.Fatal("empty catalog should be rejected")
	}
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing file should be rejected")
	}
}
