package structure

import (
	"fmt"

	"github.com/inkdex/inkdex/internal/domain"
)

// Config tunes structure generation.
type Config struct {
	// TimelineConfidenceCap bounds timeline confidence when the note shows
	// no explicit sequencing signal.
	TimelineConfidenceCap float64 `yaml:"timeline_confidence_cap"`
}

func DefaultConfig() Config {
	return Config{TimelineConfidenceCap: 0.4}
}

func (c Config) Validate() error {
	if c.TimelineConfidenceCap <= 0 || c.TimelineConfidenceCap > 1 {
		return fmt.Errorf("%w: timeline_confidence_cap must be in (0, 1], got %v", domain.ErrInvalidConfig, c.TimelineConfidenceCap)
	}
	return nil
}
