// Package genai implements the question source against a chat-completions
// style generative text API.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"trivia-session-service/internal/domain"
)

// Config holds the API endpoint settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client calls the generative text service and validates the returned batch.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
	now        func() time.Time
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		now:        time.Now,
	}
}

// IsAvailable reports whether the client has credentials configured.
func (c *Client) IsAvailable() bool {
	return c.apiKey != ""
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const systemPrompt = `You are a trivia question generator. Respond with ONLY valid JSON (no markdown, no code fences, no explanations): an array of question objects of the form
{"id": 1, "question": "...", "options": ["...","...","...","..."], "correctAnswer": "...", "explanation": "...", "hint": "..."}
Rules:
- Exactly 4 unique options per question; correctAnswer must equal one of them
- A short explanation and a helpful hint that doesn't reveal the answer directly
- Return ONLY the JSON array, nothing else`

// FetchQuestions requests one batch of questions. Any transport, protocol
// or contract violation is reported as a localized fetch failure; the
// session machine never sees a partially valid batch.
func (c *Client) FetchQuestions(ctx context.Context, req domain.QuestionRequest) ([]domain.Question, error) {
	questions, err := c.generate(ctx, req)
	if err != nil {
		return nil, &domain.FetchError{Lang: req.Language, Err: err}
	}
	if err := ValidateBatch(questions); err != nil {
		return nil, &domain.FetchError{Lang: req.Language, Err: err}
	}
	return questions, nil
}

func (c *Client) generate(ctx context.Context, req domain.QuestionRequest) ([]domain.Question, error) {
	if !c.IsAvailable() {
		return nil, fmt.Errorf("question generation: %w", domain.ErrNotConfigured)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: c.userPrompt(req)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("api request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api status %d: %s", resp.StatusCode, string(raw))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(raw, &chatResp); err != nil {
		return nil, fmt.Errorf("parse api response: %w", err)
	}
	if chatResp.Error != nil {
		return nil, fmt.Errorf("api error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from model")
	}

	content := cleanJSONContent(chatResp.Choices[0].Message.Content)
	var questions []domain.Question
	if err := json.Unmarshal([]byte(content), &questions); err != nil {
		return nil, fmt.Errorf("parse generated questions: %w", err)
	}
	return questions, nil
}

// userPrompt carries date context, the localized category name, audience and
// difficulty, with the daily variant forced hard and asked to mix topics.
func (c *Client) userPrompt(req domain.QuestionRequest) string {
	isDaily := req.Category.IsDaily()
	categoryName := req.Category.LocalizedName(req.Language)
	if isDaily {
		categoryName = "Mixed Daily Challenge"
	}
	difficulty := string(req.Difficulty)
	if isDaily {
		difficulty = string(domain.DifficultyHard)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Quickly generate %d unique MCQs in %s.\n", domain.QuestionsPerBatch, req.Language.EnglishName())
	fmt.Fprintf(&b, "Date Context: %s\n", c.now().UTC().Format("2006-01-02"))
	fmt.Fprintf(&b, "Category: %s\n", categoryName)
	fmt.Fprintf(&b, "Target: %s group, %s level.\n", req.Age, difficulty)
	if isDaily {
		b.WriteString("Note: Since this is a Daily Challenge, make the questions highly interesting and diverse across different fields (science, history, football, technology, etc.).\n")
	}
	b.WriteString("Structure: Question, 4 options, 1 correct, short explanation, and a helpful hint that doesn't reveal the answer directly.\nFormat: JSON only.")
	return b.String()
}

// cleanJSONContent strips markdown code fences some models wrap around JSON.
func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}
	return content
}
