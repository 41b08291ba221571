package service

import (
	"fmt"
	"os"

	"github.com/pale-fire/chatpilot/internal/domain"
	"gopkg.in/yaml.v3"
)

// ModelOption is one selectable model from the catalog file.
type ModelOption struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Persona is one selectable persona from the catalog file.
type Persona struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Catalog lists the models and personas offered by the selection menus.
type Catalog struct {
	Models   []ModelOption `yaml:"models"`
	Personas []Persona     `yaml:"personas"`
}

// LoadCatalog reads the YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(c.Models) == 0 {
		return nil, fmt.Errorf("catalog %s lists no models", path)
	}
	if len(c.Personas) == 0 {
		return nil, fmt.Errorf("catalog %s lists no personas", path)
	}
	return &c, nil
}

func (c *Catalog) Model(id string) (*ModelOption, error) {
	for i := range c.Models {
		if c.Models[i].ID == id {
			return &c.Models[i], nil
		}
	}
	return nil, fmt.Errorf("%q: %w", id, domain.ErrModelNotFound)
}

func (c *Catalog) Persona(id string) (*Persona, error) {
	for i := range c.Personas {
		if c.Personas[i].ID == id {
			return &c.Personas[i], nil
		}
	}
	return nil, fmt.Errorf("%q: %w", id, domain.ErrPersonaNotFound)
}
