// Package openai implements text generation against any OpenAI-compatible
// chat completions endpoint, which covers OpenAI itself plus local
// runtimes that expose the same surface.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 2 * time.Minute
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GeneratorConfig holds connection options for a chat completions endpoint.
type GeneratorConfig struct {
	// BaseURL is the API root, e.g. https://api.openai.com/v1. Required.
	BaseURL string

	// APIKey is sent as a bearer token. Required.
	APIKey string

	// Model overrides the default model name.
	Model string

	// Timeout bounds one generation call. Defaults to two minutes.
	Timeout time.Duration
}

// Generator calls the chat completions API.
type Generator struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("openai base url is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Generator{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (g *Generator) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	messages := make([]chatMessage, 0, 2)
	if systemPrompt = strings.TrimSpace(systemPrompt); systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	payload, err := json.Marshal(chatRequest{
		Model:    g.model,
		Messages: messages,
		Stream:   false,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("chat completions status %d: %s", resp.StatusCode, string(body))
	}

	var response chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}
	if response.Error != nil {
		return "", fmt.Errorf("chat completions error: %s", response.Error.Message)
	}
	if len(response.Choices) == 0 {
		return "", errors.New("chat completions returned no choices")
	}

	output := strings.TrimSpace(response.Choices[0].Message.Content)
	if output == "" {
		return "", errors.New("chat completions returned an empty message")
	}

	return output, nil
}

func (g *Generator) Close() error {
	return nil
}
