package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/guardiao/base-security-service/internal/config"
	"go.uber.org/zap"
)

// Fallback is returned whenever the generative API cannot produce a summary.
// Collaborator failures are recovered locally and never surface as errors.
const Fallback = "Não foi possível gerar o resumo automático no momento. Tente novamente mais tarde."

// Client calls a hosted generative-AI API for free-text summaries.
type Client struct {
	cfg    config.AssistantConfig
	http   *http.Client
	logger *zap.Logger
}

// NewClient constructs the assistant client.
func NewClient(cfg config.AssistantConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// Generate sends the prompt and returns the model's free text. Every failure
// path degrades to Fallback; callers never see an error.
func (c *Client) Generate(ctx context.Context, prompt string) string {
	if !c.cfg.Enabled || c.cfg.BaseURL == "" {
		return Fallback
	}

	body, err := json.Marshal(generateRequest{Model: c.cfg.Model, Prompt: prompt})
	if err != nil {
		c.logger.Warn("assistant request encode failed", zap.Error(err))
		return Fallback
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/generate", bytes.NewReader(body))
	if err != nil {
		c.logger.Warn("assistant request build failed", zap.Error(err))
		return Fallback
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("assistant call failed", zap.Error(err))
		return Fallback
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("assistant call returned non-200", zap.Int("status", resp.StatusCode))
		return Fallback
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.logger.Warn("assistant response decode failed", zap.Error(err))
		return Fallback
	}
	if out.Text == "" {
		return Fallback
	}
	return out.Text
}

// helper shared by prompt builders
func promptLine(label, value string) string {
	return fmt.Sprintf("%s: %s\n", label, value)
}
