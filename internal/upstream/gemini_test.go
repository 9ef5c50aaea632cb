package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quizlink-service/internal/domain"
)

func geminiReply(t *testing.T, text string) string {
	t.Helper()
	reply := map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	}
	data, err := json.Marshal(reply)
	if err != nil {
		t.Fatalf("marshal reply: %v", err)
	}
	return string(data)
}

const validQuizJSON = `{"questions":[{"question":"What is 2 + 2?","options":[` +
	`{"text":"3","correct":false,"explanation":""},` +
	`{"text":"4","correct":true,"explanation":"Basic arithmetic."}]}]}`

func TestGenerateQuizParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		prompt := req.Contents[0].Parts[0].Text
		if !strings.Contains(prompt, "Create exactly 1 questions") {
			t.Errorf("prompt missing question count:\n%s", prompt)
		}
		w.Write([]byte(geminiReply(t, validQuizJSON)))
	}))
	defer server.Close()

	client := NewGeminiClient("test-key", server.URL)
	questions, err := client.GenerateQuiz(context.Background(), GenerateParams{
		Prompt:       "arithmetic",
		NumQuestions: 1,
		NumOptions:   2,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(questions) != 1 || questions[0].CorrectOption() != 1 {
		t.Fatalf("unexpected questions: %+v", questions)
	}
}

func TestGenerateQuizStripsCodeFences(t *testing.T) {
	fenced := "```json\n" + validQuizJSON + "\n```"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geminiReply(t, fenced)))
	}))
	defer server.Close()

	client := NewGeminiClient("test-key", server.URL)
	questions, err := client.GenerateQuiz(context.Background(), GenerateParams{Prompt: "arithmetic"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(questions))
	}
}

func TestGenerateQuizMalformedContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geminiReply(t, "Sure! Here is your quiz: ...")))
	}))
	defer server.Close()

	client := NewGeminiClient("test-key", server.URL)
	_, err := client.GenerateQuiz(context.Background(), GenerateParams{Prompt: "arithmetic"})
	var ue *domain.UpstreamGenerationError
	if !errors.As(err, &ue) || ue.Kind != domain.UpstreamMalformed {
		t.Fatalf("expected malformed upstream error, got %v", err)
	}
}

func TestGenerateQuizRejectsInvariantViolations(t *testing.T) {
	// Two correct options: parseable JSON, invalid quiz.
	bad := `{"questions":[{"question":"2+2?","options":[{"text":"4","correct":true},{"text":"four","correct":true}]}]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geminiReply(t, bad)))
	}))
	defer server.Close()

	client := NewGeminiClient("test-key", server.URL)
	_, err := client.GenerateQuiz(context.Background(), GenerateParams{Prompt: "arithmetic"})
	var ue *domain.UpstreamGenerationError
	if !errors.As(err, &ue) || ue.Kind != domain.UpstreamMalformed {
		t.Fatalf("expected malformed upstream error, got %v", err)
	}
}

func TestExtractImageTextSendsInlineData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		parts := req.Contents[0].Parts
		if len(parts) != 2 || parts[1].InlineData == nil {
			t.Errorf("expected text part plus inline_data part, got %+v", parts)
		} else {
			if parts[1].InlineData.MimeType != "image/png" {
				t.Errorf("mime type: got %q", parts[1].InlineData.MimeType)
			}
			if parts[1].InlineData.Data != "aGVsbG8=" {
				t.Errorf("image data: got %q", parts[1].InlineData.Data)
			}
		}
		if !strings.Contains(parts[0].Text, "extract all the textual information") {
			t.Errorf("unexpected prompt: %q", parts[0].Text)
		}
		w.Write([]byte(geminiReply(t, "Photosynthesis converts light into chemical energy.")))
	}))
	defer server.Close()

	client := NewGeminiClient("test-key", server.URL)
	text, err := client.ExtractImageText(context.Background(), "aGVsbG8=", "image/png", "english")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if text != "Photosynthesis converts light into chemical energy." {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractImageTextDefaultsMimeType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if got := req.Contents[0].Parts[1].InlineData.MimeType; got != "image/jpeg" {
			t.Errorf("mime type: got %q want image/jpeg", got)
		}
		w.Write([]byte(geminiReply(t, "some text")))
	}))
	defer server.Close()

	client := NewGeminiClient("test-key", server.URL)
	if _, err := client.ExtractImageText(context.Background(), "aGVsbG8=", "", "english"); err != nil {
		t.Fatalf("extract: %v", err)
	}
}

func TestExtractImageTextServiceUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewGeminiClient("test-key", server.URL)
	_, err := client.ExtractImageText(context.Background(), "aGVsbG8=", "image/png", "english")
	var ue *domain.UpstreamGenerationError
	if !errors.As(err, &ue) || ue.Kind != domain.UpstreamUnreachable {
		t.Fatalf("expected unreachable upstream error, got %v", err)
	}
}

func TestGenerateQuizServiceUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewGeminiClient("test-key", server.URL)
	_, err := client.GenerateQuiz(context.Background(), GenerateParams{Prompt: "arithmetic"})
	var ue *domain.UpstreamGenerationError
	if !errors.As(err, &ue) || ue.Kind != domain.UpstreamUnreachable {
		t.Fatalf("expected unreachable upstream error, got %v", err)
	}
}
