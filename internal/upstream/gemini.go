package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"quizlink-service/internal/domain"
)

const (
	defaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"
	apiTimeout       = 60 * time.Second
)

// GeminiClient generates quiz content through the Gemini generateContent
// endpoint. The call is single-shot: one request, one JSON document back,
// no streaming.
type GeminiClient struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

func NewGeminiClient(apiKey, apiURL string) *GeminiClient {
	if apiURL == "" {
		apiURL = defaultGeminiURL
	}
	return &GeminiClient{
		apiKey:     apiKey,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: apiTimeout},
	}
}

// GenerateParams describes one quiz generation request.
type GenerateParams struct {
	Prompt       string
	NumQuestions int
	NumOptions   int
	Language     string // english, hindi or hinglish
	VideoSummary bool   // prompt came from a video transcript/summary
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type generatedQuiz struct {
	Questions []domain.Question `json:"questions"`
}

// GenerateQuiz asks the model for an MCQ quiz and validates the result
// against the one-correct-option invariant before returning it. Failures
// distinguish an unreachable service from a malformed response.
func (c *GeminiClient) GenerateQuiz(ctx context.Context, params GenerateParams) ([]domain.Question, error) {
	if params.NumQuestions <= 0 {
		params.NumQuestions = 5
	}
	if params.NumOptions <= 0 {
		params.NumOptions = 4
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: buildQuizPrompt(params)}}}},
	}
	reqBody.GenerationConfig.Temperature = 0.7
	reqBody.GenerationConfig.MaxOutputTokens = 2048

	text, err := c.generateContent(ctx, reqBody)
	if err != nil {
		return nil, err
	}

	content := stripCodeFences(text)
	var quiz generatedQuiz
	if err := json.Unmarshal([]byte(content), &quiz); err != nil {
		return nil, &domain.UpstreamGenerationError{Kind: domain.UpstreamMalformed, Err: err}
	}
	if err := domain.ValidateQuestions(quiz.Questions); err != nil {
		return nil, &domain.UpstreamGenerationError{Kind: domain.UpstreamMalformed, Err: err}
	}
	return quiz.Questions, nil
}

// ExtractImageText sends a base64-encoded image to the model and returns the
// textual content it reads out of it. The extracted text is meant to be fed
// back into GenerateQuiz as the prompt.
func (c *GeminiClient) ExtractImageText(ctx context.Context, imageData, mimeType, language string) (string, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	prompt := "Analyze this image and extract all the textual information."
	switch language {
	case "hindi":
		prompt += " Return the extracted content in Hindi language."
	case "hinglish":
		prompt += " Return the extracted content in Hinglish language (mix of Hindi and English words) using Roman script rather than Devanagari."
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{
			{Text: prompt},
			{InlineData: &geminiInlineData{MimeType: mimeType, Data: imageData}},
		}}},
	}
	reqBody.GenerationConfig.Temperature = 0.1
	reqBody.GenerationConfig.MaxOutputTokens = 2048

	return c.generateContent(ctx, reqBody)
}

// generateContent posts one generateContent request and returns the text of
// the first candidate part.
func (c *GeminiClient) generateContent(ctx context.Context, reqBody geminiRequest) (string, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &domain.UpstreamGenerationError{Kind: domain.UpstreamMalformed, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"?key="+c.apiKey, bytes.NewReader(payload))
	if err != nil {
		return "", &domain.UpstreamGenerationError{Kind: domain.UpstreamUnreachable, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &domain.UpstreamGenerationError{Kind: domain.UpstreamUnreachable, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.UpstreamGenerationError{Kind: domain.UpstreamUnreachable, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &domain.UpstreamGenerationError{
			Kind: domain.UpstreamUnreachable,
			Err:  fmt.Errorf("api request failed with status %d", resp.StatusCode),
		}
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &domain.UpstreamGenerationError{Kind: domain.UpstreamMalformed, Err: err}
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", &domain.UpstreamGenerationError{
			Kind: domain.UpstreamMalformed,
			Err:  fmt.Errorf("no content returned from api"),
		}
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// buildQuizPrompt mirrors the production prompt: strict JSON-only output,
// exact question/option counts, explanations for correct answers.
func buildQuizPrompt(params GenerateParams) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a quiz generator. Generate a multiple choice quiz about: %q\n\n", params.Prompt)
	b.WriteString("IMPORTANT: Return ONLY a valid JSON object. Do not include any markdown formatting, backticks, or other text.\n\n")
	b.WriteString("The quiz must follow these rules:\n")
	fmt.Fprintf(&b, "- Create exactly %d questions\n", params.NumQuestions)
	fmt.Fprintf(&b, "- Each question must have exactly %d options\n", params.NumOptions)
	b.WriteString("- Only one option should be correct\n")
	b.WriteString("- Make questions challenging but fair\n")
	b.WriteString("- For each correct answer, provide a detailed explanation of why it's correct\n")
	b.WriteString("- The quiz MUST be about information contained in the provided content ONLY\n")
	b.WriteString("- Only generate questions about facts directly stated in the content, not general knowledge\n")
	if params.VideoSummary {
		b.WriteString("- This is a YouTube video summary, so make questions that test comprehension of the video content\n")
	}
	switch params.Language {
	case "hindi":
		b.WriteString("- Generate the quiz in Hindi language, including questions, options, and explanations\n")
	case "hinglish":
		b.WriteString("- Generate the quiz in Hinglish (a mix of Hindi and English words) using Roman script rather than Devanagari\n")
	}
	b.WriteString(`
The response must be a JSON object with this exact structure:
{
  "questions": [
    {
      "question": "Question text here",
      "options": [
        {
          "text": "Option text here",
          "correct": boolean,
          "explanation": "Detailed explanation for the correct answer"
        }
      ]
    }
  ]
}

Remember: Return ONLY the JSON object, no other text or formatting.`)
	return b.String()
}

// stripCodeFences removes a surrounding markdown code fence that models
// sometimes emit despite the JSON-only instruction.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
