package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion = "2023-06-01"

	DefaultAnthropicTemperature = 0.7
	DefaultAnthropicMaxTokens   = 1024
)

// AnthropicService implements DialogueGenerator for Anthropic Claude.
type AnthropicService struct {
	apiKey     string
	modelName  string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ DialogueGenerator = (*AnthropicService)(nil)

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicChatRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicChatResponse struct {
	ID         string                  `json:"id"`
	Type       string                  `json:"type"`
	Role       string                  `json:"role"`
	Content    []anthropicContentBlock `json:"content"`
	Model      string                  `json:"model"`
	StopReason string                  `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewAnthropicService creates a new Anthropic-backed generator.
func NewAnthropicService(apiKey string, modelName string, logger *slog.Logger) *AnthropicService {
	return &AnthropicService{
		apiKey:    apiKey,
		modelName: modelName,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

func (a *AnthropicService) InitModel(ctx context.Context, modelName string) error {
	return nil
}

// Generate produces dialogue or a decision via the Anthropic messages API.
func (a *AnthropicService) Generate(ctx context.Context, req DialogueRequest) (*DialogueResponse, error) {
	system, user := buildMessages(req)

	raw, err := a.chatCompletion(ctx, system, user)
	if err != nil {
		return nil, err
	}

	if req.ResponseType == ResponseTypeDecision {
		return parseDecision(raw, req.Options)
	}

	text, emotion := parseDialogueText(raw)
	return &DialogueResponse{Text: text, Emotion: emotion}, nil
}

func (a *AnthropicService) chatCompletion(ctx context.Context, system, user string) (string, error) {
	temperature := DefaultAnthropicTemperature
	anthropicReq := anthropicChatRequest{
		Model:       a.modelName,
		MaxTokens:   DefaultAnthropicMaxTokens,
		Temperature: &temperature,
		System:      system,
		Messages: []anthropicMessage{
			{Role: "user", Content: user},
		},
	}

	jsonBody, err := json.Marshal(anthropicReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", anthropicBaseURL+"/messages", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	var anthropicResp anthropicChatResponse
	if err := json.Unmarshal(body, &anthropicResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(body)
		if anthropicResp.Error != nil {
			msg = anthropicResp.Error.Message
		}
		a.logger.Error("Anthropic API returned error",
			"status_code", resp.StatusCode,
			"message", msg)
		return "", fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, msg)
	}

	var parts []string
	for _, block := range anthropicResp.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

// parseDecision extracts the JSON decision object from a completion,
// tolerating surrounding prose. The selection must be one of the
// offered options.
func parseDecision(raw string, options []string) (*DialogueResponse, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no decision object in completion")
	}

	var decision struct {
		SelectedOption string `json:"selected_option"`
		Reasoning      string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &decision); err != nil {
		return nil, fmt.Errorf("failed to parse decision: %w", err)
	}

	for _, opt := range options {
		if strings.EqualFold(strings.TrimSpace(decision.SelectedOption), opt) {
			return &DialogueResponse{
				SelectedOption: opt,
				Reasoning:      decision.Reasoning,
			}, nil
		}
	}
	return nil, fmt.Errorf("decision %q is not one of the offered options", decision.SelectedOption)
}
