// Package vision provides the paid OCR provider backed by an
// OpenAI-compatible vision model.
package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/inkdex/inkdex/internal/domain"
	"github.com/inkdex/inkdex/internal/ocr"
)

// transcribePrompt asks for a verbatim transcription, one fragment per line,
// preserving top-to-bottom order. List markers must survive untouched; the
// relationship detector depends on them.
const transcribePrompt = `Transcribe every piece of handwritten or printed text in this image.
Output one line of the page per line of text, top to bottom, left to right.
Keep list markers (1., a), -, etc.) exactly as written. Output nothing else.`

// syntheticLineHeight spaces the synthetic line boxes so reading order and
// line adjacency survive even though the model reports no geometry.
const syntheticLineHeight = 40.0

// modelConfidence is assigned to vision fragments; the chat API reports no
// per-token confidence.
const modelConfidence = 0.9

// Provider sends page images to a vision-capable chat model.
type Provider struct {
	client      *openai.Client
	model       string
	costPerPage float64
	logger      *zap.Logger
}

// Config holds the vision provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	CostPerPage float64
	Logger      *zap.Logger
}

// New creates a vision OCR provider for an OpenAI-compatible API.
func New(cfg *Config) *Provider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Provider{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		costPerPage: cfg.CostPerPage,
		logger:      cfg.Logger,
	}
}

func (p *Provider) Name() string { return "vision" }

func (p *Provider) CostPerPage() float64 { return p.costPerPage }

// Recognize transcribes one page image via a chat completion with an inline
// base64 image part.
func (p *Provider) Recognize(ctx context.Context, in ocr.Input) (domain.OCRResult, error) {
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(in.Image)

	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: transcribePrompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return domain.OCRResult{}, parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return domain.OCRResult{}, fmt.Errorf("empty vision response: %w", domain.ErrOCRProviderError)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	fragments := lineFragments(text)

	p.logger.Debug("vision page transcribed",
		zap.Int("page", in.PageIndex),
		zap.Int("lines", len(fragments)),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	return domain.OCRResult{
		Text:       text,
		Confidence: modelConfidence,
		Fragments:  fragments,
	}, nil
}

// lineFragments maps transcript lines to fragments with synthetic stacked
// boxes. Empty lines are dropped but still advance the vertical offset so
// paragraph gaps stay visible to the spatial detector.
func lineFragments(text string) []domain.Fragment {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	fragments := make([]domain.Fragment, 0, len(lines))
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		indent := float64(len(line)-len(strings.TrimLeft(line, " \t"))) * 10
		fragments = append(fragments, domain.Fragment{
			Text: trimmed,
			Box: domain.BoundingBox{
				X:      indent,
				Y:      float64(i) * syntheticLineHeight,
				Width:  float64(len(trimmed)) * 10,
				Height: syntheticLineHeight * 0.75,
			},
			Confidence: modelConfidence,
		})
	}
	if len(fragments) == 0 {
		return nil
	}
	return fragments
}

// parseAPIError extracts a readable message from the API response. All
// errors wrap domain.ErrOCRProviderError for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrOCRProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("vision API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("vision API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("vision API rate limited: %s: %w", apiErr.Message, wrap)
		}
		return fmt.Errorf("vision API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("vision request failed: %w", wrap)
}

// extractDetail pulls the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
