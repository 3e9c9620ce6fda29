// Package ai - клиент OpenAI-совместимого chat completions API.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const defaultModel = "grok-4.1-fast:free"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(baseURL, model, apiKey string, timeout time.Duration) *Client {
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ChatCompletion отправляет диалог и возвращает текст первого варианта ответа.
func (c *Client) ChatCompletion(ctx context.Context, messages []Message, maxTokens int, temperature float64) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("ai: baseURL не задан")
	}

	body, err := json.Marshal(map[string]any{
		"model":       c.model,
		"messages":    messages,
		"max_tokens":  maxTokens,
		"temperature": temperature,
	})
	if err != nil {
		return "", err
	}

	url := c.baseURL
	if !strings.HasSuffix(url, "/") {
		url += "/"
	}
	url += "chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errorBody map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errorBody)
		return "", fmt.Errorf("ai: код ответа %d: %v", resp.StatusCode, errorBody)
	}

	var result struct {
		Choices []struct {
			Message Message `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("ai: пустой ответ")
	}
	return result.Choices[0].Message.Content, nil
}

var codeBlock = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// decodeJSONFromText ищет JSON объект в ответе модели, который может быть обёрнут в markdown.
func decodeJSONFromText(text string, dst any) error {
	if m := codeBlock.FindStringSubmatch(text); len(m) > 1 {
		if err := json.Unmarshal([]byte(m[1]), dst); err == nil {
			return nil
		}
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return fmt.Errorf("ai: в ответе нет JSON")
	}
	return json.Unmarshal([]byte(text[start:end+1]), dst)
}
