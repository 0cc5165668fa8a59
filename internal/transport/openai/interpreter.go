package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/contentfinder/internal/domain"
	"github.com/kailas-cloud/contentfinder/internal/domain/contextmap"
	"github.com/kailas-cloud/contentfinder/internal/domain/criteria"
)

const interpretPrompt = `You extract search hints from a request for website content.
Reply with one JSON object and nothing else. Use only these keys, omitting any you cannot infer:
"section_key" (a slug such as "accordion-section"), "role" (a content field such as "headline" or "copy"),
"locale" (xx_YY), "language" (ISO 639-1), "country" (ISO 3166-1 alpha-2), "page_id",
"tags" (array of strings), "keywords" (array of strings), "context" (object).
Never guess: an absent key is better than a wrong one.`

// maxHintItems caps tags and keywords taken from one reply.
const maxHintItems = 16

// Interpreter asks a chat model for advisory query hints.
type Interpreter struct {
	client   *openai.Client
	model    string
	provider string
	logger   *zap.Logger
}

// InterpreterConfig holds the interpretation provider settings.
type InterpreterConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Provider string
	Timeout  time.Duration
	Logger   *zap.Logger
}

// NewInterpreter creates a chat-completion based interpreter.
func NewInterpreter(cfg *InterpreterConfig) *Interpreter {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interpreter{
		client:   newClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout),
		model:    cfg.Model,
		provider: cfg.Provider,
		logger:   logger,
	}
}

// hintsDTO is the JSON reply shape.
type hintsDTO struct {
	SectionKey string         `json:"section_key"`
	Role       string         `json:"role"`
	Locale     string         `json:"locale"`
	Language   string         `json:"language"`
	Country    string         `json:"country"`
	PageID     string         `json:"page_id"`
	Tags       []string       `json:"tags"`
	Keywords   []string       `json:"keywords"`
	Context    contextmap.Map `json:"context"`
}

// Interpret returns hints for message, or nil when the model inferred nothing.
func (i *Interpreter) Interpret(ctx context.Context, message string, reqCtx contextmap.Map) (*criteria.Hints, error) {
	user := message
	if !reqCtx.IsEmpty() {
		raw, err := json.Marshal(reqCtx)
		if err == nil {
			user = "Request: " + message + "\nContext: " + string(raw)
		}
	}

	resp, err := i.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: i.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: interpretPrompt},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature:    0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return nil, parseAPIError("interpretation", err, domain.ErrInterpretationFailed)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty interpretation response: %w", domain.ErrInterpretationFailed)
	}

	hints, err := parseHints(resp.Choices[0].Message.Content)
	if err != nil {
		i.logger.Debug("Unparseable interpretation reply",
			zap.String("provider", i.provider), zap.Error(err))
		return nil, err
	}
	return hints, nil
}

// HealthCheck verifies API availability via ListModels.
func (i *Interpreter) HealthCheck(ctx context.Context) error {
	if _, err := i.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseHints decodes a model reply. Models sometimes wrap JSON in a code fence.
func parseHints(content string) (*criteria.Hints, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var dto hintsDTO
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &dto); err != nil {
		return nil, fmt.Errorf("decode hints: %w: %w", domain.ErrInterpretationFailed, err)
	}

	h := &criteria.Hints{
		SectionKey: strings.TrimSpace(dto.SectionKey),
		Role:       strings.TrimSpace(dto.Role),
		Locale:     strings.TrimSpace(dto.Locale),
		Language:   strings.TrimSpace(dto.Language),
		Country:    strings.TrimSpace(dto.Country),
		PageID:     strings.TrimSpace(dto.PageID),
		Tags:       capItems(dto.Tags),
		Keywords:   capItems(dto.Keywords),
		Context:    dto.Context,
	}
	if isEmptyHints(h) {
		return nil, nil
	}
	return h, nil
}

func capItems(items []string) []string {
	if len(items) > maxHintItems {
		return items[:maxHintItems]
	}
	return items
}

func isEmptyHints(h *criteria.Hints) bool {
	return h.SectionKey == "" && h.Role == "" && h.Locale == "" && h.Language == "" &&
		h.Country == "" && h.PageID == "" && len(h.Tags) == 0 && len(h.Keywords) == 0 &&
		h.Context.IsEmpty()
}
