// Package openrouter - клиент chat completions для API OpenRouter.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"thirdspace/internal/failure"
	"thirdspace/internal/prompt"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultTimeout = 30 * time.Second

	appTitle   = "ThirdSpace"
	appReferer = "https://github.com/thirdspace/thirdspace"
)

// Client выполняет запросы к OpenRouter.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.SugaredLogger
}

// Config конфигурация клиента.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig возвращает конфигурацию по умолчанию.
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// New создаёт новый клиент.
func New(cfg Config, logger *zap.SugaredLogger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: logger,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type reasoning struct {
	Enabled bool `json:"enabled"`
}

// chatRequest запрос к /chat/completions.
type chatRequest struct {
	Model     string     `json:"model"`
	Messages  []message  `json:"messages"`
	Reasoning *reasoning `json:"reasoning,omitempty"`
}

// chatResponse ответ /chat/completions. Content - указатель, чтобы отличить
// отсутствующее или null поле от пустого ответа.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Send выполняет один запрос chat completion и возвращает текст ответа
// ассистента. Ошибки возвращаются как *failure.Error.
func (c *Client) Send(ctx context.Context, p prompt.Encoded, model, apiKey string, reasoningEnabled bool) (string, error) {
	if strings.TrimSpace(apiKey) == "" {
		return "", failure.New(failure.MissingAPIKey, "API key is empty")
	}

	req := chatRequest{
		Model: model,
		Messages: []message{
			{Role: "system", Content: p.System},
			{Role: "user", Content: p.User},
		},
	}
	if reasoningEnabled {
		req.Reasoning = &reasoning{Enabled: true}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	c.log.Infow("OpenRouter request prepared",
		"model", model,
		"reasoning", reasoningEnabled,
		"system_len", len(p.System),
		"user_len", len(p.User),
		"input_preview", failure.Excerpt(p.User, 200),
	)

	status, respBody, elapsed, err := c.do(ctx, http.MethodPost, "/chat/completions", apiKey, body)
	if err != nil {
		return "", err
	}

	c.log.Infow("OpenRouter response received", "status", status, "duration_ms", elapsed.Milliseconds())

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		c.log.Errorw("OpenRouter response parse failed", "error", err, "body_preview", failure.Excerpt(string(respBody), failure.ExcerptLimit))
		return "", failure.Malformed("parse response json: "+err.Error(), string(respBody))
	}
	if len(parsed.Choices) == 0 {
		c.log.Errorw("OpenRouter response missing choices", "body_preview", failure.Excerpt(string(respBody), failure.ExcerptLimit))
		return "", failure.Malformed("response has no choices", string(respBody))
	}
	content := parsed.Choices[0].Message.Content
	if content == nil {
		c.log.Errorw("OpenRouter response missing content", "body_preview", failure.Excerpt(string(respBody), failure.ExcerptLimit))
		return "", failure.Malformed("response has no message content", string(respBody))
	}

	c.log.Debugw("OpenRouter response parsed",
		"response_len", len(*content),
		"response_preview", failure.Excerpt(*content, failure.ExcerptLimit),
	)

	return *content, nil
}

// Model описывает модель из каталога OpenRouter.
type Model struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListModels возвращает модели, доступные с ключом apiKey.
func (c *Client) ListModels(ctx context.Context, apiKey string) ([]Model, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, failure.New(failure.MissingAPIKey, "API key is empty")
	}

	c.log.Debugw("Fetching models from OpenRouter")

	status, respBody, elapsed, err := c.do(ctx, http.MethodGet, "/models", apiKey, nil)
	if err != nil {
		return nil, err
	}

	c.log.Infow("OpenRouter models response received", "status", status, "duration_ms", elapsed.Milliseconds())

	var parsed struct {
		Data []Model `json:"data"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, failure.Malformed("parse models response: "+err.Error(), string(respBody))
	}

	c.log.Infow("Models parsed", "count", len(parsed.Data))
	return parsed.Data, nil
}

// do отправляет запрос и возвращает тело ответа 2xx.
// Ошибки транспорта - NetworkError, остальные статусы - APIError.
func (c *Client) do(ctx context.Context, method, path, apiKey string, body []byte) (int, []byte, time.Duration, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, 0, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("HTTP-Referer", appReferer)
	httpReq.Header.Set("X-Title", appTitle)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Errorw("OpenRouter request failed", "path", path, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return 0, nil, 0, failure.Wrap(failure.NetworkError, "send request", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		c.log.Errorw("OpenRouter response read failed", "path", path, "status", resp.StatusCode, "error", err, "elapsed_ms", elapsed.Milliseconds())
		return 0, nil, 0, failure.Wrap(failure.NetworkError, "read response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Errorw("OpenRouter request rejected",
			"path", path,
			"status", resp.StatusCode,
			"duration_ms", elapsed.Milliseconds(),
			"body_preview", failure.Excerpt(string(respBody), failure.ExcerptLimit),
		)
		return resp.StatusCode, nil, elapsed, failure.API(resp.StatusCode, providerMessage(respBody))
	}

	return resp.StatusCode, respBody, elapsed, nil
}

// providerMessage достаёт {"error":{"message":...}}, если получится.
func providerMessage(body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error.Message != "" {
		return er.Error.Message
	}
	return ""
}
