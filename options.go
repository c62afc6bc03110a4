package inkdex

import (
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs     []string
	password  string
	keyPrefix string

	tesseractLanguages []string
	tesseractEnabled   bool

	visionAPIKey      string
	visionBaseURL     string
	visionModel       string
	visionCostPerPage float64

	dailyLimit    float64
	monthlyLimit  float64
	rejectOnLimit bool

	defaultQuality Quality

	logger *zap.Logger
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithKeyPrefix sets the key namespace for stored notes and counters.
// Default: "inkdex:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithTesseract enables the local OCR engine. Languages default to English.
func WithTesseract(languages ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.tesseractEnabled = true
		c.tesseractLanguages = languages
	})
}

// WithVision enables the paid vision OCR provider. costPerPage is the
// provider's price per recognized page in dollars.
func WithVision(apiKey, model string, costPerPage float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.visionAPIKey = apiKey
		c.visionModel = model
		c.visionCostPerPage = costPerPage
	})
}

// WithVisionBaseURL points the vision provider at an OpenAI-compatible
// endpoint.
func WithVisionBaseURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.visionBaseURL = url
	})
}

// WithBudget sets dollar spend limits for the vision provider (0 = no
// limit). When reject is true, requests over the limit fail instead of
// logging a warning.
func WithBudget(dailyLimit, monthlyLimit float64, reject bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.dailyLimit = dailyLimit
		c.monthlyLimit = monthlyLimit
		c.rejectOnLimit = reject
	})
}

// WithQuality sets the default OCR quality mode for Ingest.
// Default: balanced.
func WithQuality(q Quality) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultQuality = q
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}
