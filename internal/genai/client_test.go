package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"trivia-session-service/internal/domain"
)

func sampleBatch(n int) []domain.Question {
	questions := make([]domain.Question, n)
	for i := range questions {
		questions[i] = domain.Question{
			ID:            i + 1,
			Question:      fmt.Sprintf("What is %d + %d?", i, i),
			Options:       []string{"1", "2", "3", fmt.Sprintf("%d", i+i)},
			CorrectAnswer: fmt.Sprintf("%d", i+i),
			Explanation:   "Basic addition.",
			Hint:          "Double it.",
		}
	}
	// Keep options unique for every row.
	questions[0].Options = []string{"0", "7", "8", "9"}
	questions[0].CorrectAnswer = "0"
	questions[1].Options = []string{"2", "7", "8", "9"}
	questions[1].CorrectAnswer = "2"
	return questions
}

func chatServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("missing bearer token, got %q", auth)
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":{"message":"server exploded"}}`))
			return
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func newTestClient(baseURL string) *Client {
	return NewClient(Config{APIKey: "test-key", BaseURL: baseURL, Model: "test-model"})
}

func testRequest(lang domain.Language) domain.QuestionRequest {
	cat, _ := domain.CategoryByID("science")
	return domain.QuestionRequest{
		Age:        domain.AgeAdult,
		Category:   cat,
		Language:   lang,
		Difficulty: domain.DifficultyMedium,
	}
}

func TestFetchQuestionsSuccess(t *testing.T) {
	batch := sampleBatch(10)
	content, _ := json.Marshal(batch)
	server := chatServer(t, string(content), http.StatusOK)
	defer server.Close()

	questions, err := newTestClient(server.URL).FetchQuestions(context.Background(), testRequest(domain.LangEnglish))
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(questions) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(questions))
	}
	if questions[0].CorrectAnswer != "0" {
		t.Fatalf("unexpected first question %+v", questions[0])
	}
}

func TestFetchQuestionsStripsCodeFences(t *testing.T) {
	batch := sampleBatch(10)
	raw, _ := json.Marshal(batch)
	content := "```json\n" + string(raw) + "\n```"
	server := chatServer(t, content, http.StatusOK)
	defer server.Close()

	questions, err := newTestClient(server.URL).FetchQuestions(context.Background(), testRequest(domain.LangEnglish))
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(questions) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(questions))
	}
}

func TestFetchQuestionsServerError(t *testing.T) {
	server := chatServer(t, "", http.StatusInternalServerError)
	defer server.Close()

	_, err := newTestClient(server.URL).FetchQuestions(context.Background(), testRequest(domain.LangEnglish))
	if err == nil {
		t.Fatalf("expected error")
	}
	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %T", err)
	}
	if fetchErr.Message() != "Failed to load, try again." {
		t.Fatalf("unexpected message %q", fetchErr.Message())
	}
}

func TestFetchErrorMessageIsLocalized(t *testing.T) {
	server := chatServer(t, "", http.StatusInternalServerError)
	defer server.Close()

	_, err := newTestClient(server.URL).FetchQuestions(context.Background(), testRequest(domain.LangArabic))
	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if !strings.Contains(fetchErr.Message(), "فشل") {
		t.Fatalf("expected arabic message, got %q", fetchErr.Message())
	}
}

func TestFetchQuestionsRejectsShortBatch(t *testing.T) {
	content, _ := json.Marshal(sampleBatch(10)[:9])
	server := chatServer(t, string(content), http.StatusOK)
	defer server.Close()

	_, err := newTestClient(server.URL).FetchQuestions(context.Background(), testRequest(domain.LangEnglish))
	if !errors.Is(err, domain.ErrInvalidBatch) {
		t.Fatalf("expected invalid batch error, got %v", err)
	}
}

func TestFetchQuestionsRequiresKey(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://unused", Model: "m"})
	_, err := client.FetchQuestions(context.Background(), testRequest(domain.LangEnglish))
	if !errors.Is(err, domain.ErrNotConfigured) {
		t.Fatalf("expected not-configured error, got %v", err)
	}
}

func TestValidateBatch(t *testing.T) {
	valid := sampleBatch(10)
	if err := ValidateBatch(valid); err != nil {
		t.Fatalf("valid batch rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func([]domain.Question)
	}{
		{"correct answer missing from options", func(b []domain.Question) {
			b[3].CorrectAnswer = "not an option"
		}},
		{"duplicate options", func(b []domain.Question) {
			b[4].Options = []string{"x", "x", "y", "z"}
			b[4].CorrectAnswer = "x"
		}},
		{"three options", func(b []domain.Question) {
			b[5].Options = []string{"a", "b", "c"}
			b[5].CorrectAnswer = "a"
		}},
		{"empty option", func(b []domain.Question) {
			b[6].Options = []string{"a", "b", "c", ""}
			b[6].CorrectAnswer = "a"
		}},
		{"empty explanation", func(b []domain.Question) { b[7].Explanation = "" }},
		{"empty hint", func(b []domain.Question) { b[8].Hint = "" }},
		{"empty question", func(b []domain.Question) { b[9].Question = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			batch := make([]domain.Question, len(valid))
			copy(batch, valid)
			for i := range batch {
				batch[i].Options = append([]string(nil), valid[i].Options...)
			}
			tc.mutate(batch)
			if err := ValidateBatch(batch); !errors.Is(err, domain.ErrInvalidBatch) {
				t.Fatalf("expected invalid batch error, got %v", err)
			}
		})
	}
}
