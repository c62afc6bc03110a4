package pipeline

import (
	"github.com/inkdex/inkdex/internal/pipeline/concept"
	"github.com/inkdex/inkdex/internal/pipeline/relate"
	"github.com/inkdex/inkdex/internal/pipeline/structure"
)

// Config gathers the tunables of every pipeline stage.
type Config struct {
	Relationships relate.Config    `yaml:"relationships"`
	Concepts      concept.Config   `yaml:"concepts"`
	Structures    structure.Config `yaml:"structures"`
}

func DefaultConfig() Config {
	return Config{
		Relationships: relate.DefaultConfig(),
		Concepts:      concept.DefaultConfig(),
		Structures:    structure.DefaultConfig(),
	}
}

// Validate checks every stage config so a bad value fails at construction
// rather than halfway through a note.
func (c Config) Validate() error {
	if err := c.Relationships.Validate(); err != nil {
		return err
	}
	if err := c.Concepts.Validate(); err != nil {
		return err
	}
	return c.Structures.Validate()
}
