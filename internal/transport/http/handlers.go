package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"quizlink-service/internal/app"
	"quizlink-service/internal/domain"
	"quizlink-service/internal/session"
	"quizlink-service/internal/upstream"
)

// Generator produces quiz questions from a prompt and reads text out of
// uploaded images (upstream.GeminiClient in production).
type Generator interface {
	GenerateQuiz(ctx context.Context, params upstream.GenerateParams) ([]domain.Question, error)
	ExtractImageText(ctx context.Context, imageData, mimeType, language string) (string, error)
}

// TranscriptFetcher resolves a video id to transcript text.
type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, videoID string) (string, error)
}

// API exposes the quiz lifecycle over REST plus a websocket leaderboard
// feed. Possessing the share id is the only capability needed to read a
// quiz or submit a score; the system is deliberately unauthenticated.
type API struct {
	service      *app.QuizService
	generator    Generator
	transcripts  TranscriptFetcher
	baseURL      string
	pollInterval time.Duration
}

func NewAPI(service *app.QuizService, generator Generator, transcripts TranscriptFetcher, baseURL string, pollInterval time.Duration) *API {
	return &API{service: service, generator: generator, transcripts: transcripts, baseURL: baseURL, pollInterval: pollInterval}
}

// Router builds the HTTP surface.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/quizzes", a.createQuiz)
		r.Get("/quizzes/{quizID}", a.getQuiz)
		r.Post("/quizzes/{quizID}/scores", a.appendScore)
		r.Get("/quizzes/{quizID}/leaderboard", a.leaderboard)
		r.Post("/generate", a.generate)
	})

	wsHandler := NewWSHandler(a.service, a.pollInterval)
	r.Get("/ws", wsHandler.ServeWS)

	return r
}

type createQuizRequest struct {
	CreatorName string            `json:"creatorName"`
	Questions   []domain.Question `json:"questions"`
}

type createQuizResponse struct {
	ID       string `json:"id"`
	ShareURL string `json:"shareUrl"`
}

func (a *API) createQuiz(w http.ResponseWriter, r *http.Request) {
	var req createQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id, err := a.service.CreateQuiz(r.Context(), req.Questions, req.CreatorName)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createQuizResponse{ID: id, ShareURL: session.ShareURL(a.baseURL, id)})
}

func (a *API) getQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := a.service.GetQuiz(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

type appendScoreRequest struct {
	Username       string `json:"username"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"totalQuestions"`
}

func (a *API) appendScore(w http.ResponseWriter, r *http.Request) {
	var req appendScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	quizID := chi.URLParam(r, "quizID")
	// Scores reference a quiz; reject ids that never existed up front so the
	// caller gets a 404 rather than a persistence failure.
	if _, err := a.service.GetQuiz(r.Context(), quizID); err != nil {
		writeFailure(w, err)
		return
	}
	entry, err := a.service.SubmitScore(r.Context(), quizID, req.Username, req.Score, req.TotalQuestions)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

type leaderboardResponse struct {
	QuizID  string                    `json:"quizId"`
	Entries []domain.LeaderboardEntry `json:"entries"`
}

func (a *API) leaderboard(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizID")
	entries, err := a.service.Leaderboard(r.Context(), quizID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{QuizID: quizID, Entries: entries})
}

type generateRequest struct {
	Topic        string `json:"topic"`
	YoutubeURL   string `json:"youtubeUrl"`
	ImageData    string `json:"imageData"` // base64-encoded image content
	ImageType    string `json:"imageType"` // mime type, defaults to image/jpeg
	CreatorName  string `json:"creatorName"`
	NumQuestions int    `json:"numQuestions"`
	NumOptions   int    `json:"numOptions"`
	Language     string `json:"language"`
}

func (a *API) generate(w http.ResponseWriter, r *http.Request) {
	if a.generator == nil {
		writeError(w, http.StatusNotImplemented, "quiz generation is not configured")
		return
	}
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	prompt := strings.TrimSpace(req.Topic)
	fromVideo := false
	switch {
	case req.ImageData != "":
		text, err := a.generator.ExtractImageText(r.Context(), req.ImageData, req.ImageType, req.Language)
		if err != nil {
			writeFailure(w, err)
			return
		}
		prompt = "Text extracted from an image:\n" + text
	case req.YoutubeURL != "":
		if a.transcripts == nil {
			writeError(w, http.StatusNotImplemented, "video ingestion is not configured")
			return
		}
		videoID, err := upstream.ExtractVideoID(req.YoutubeURL)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		transcript, err := a.transcripts.FetchTranscript(r.Context(), videoID)
		if err != nil {
			writeFailure(w, &domain.UpstreamGenerationError{Kind: domain.UpstreamUnreachable, Err: err})
			return
		}
		prompt = "Video Summary: " + transcript
		fromVideo = true
	}
	if prompt == "" {
		writeError(w, http.StatusBadRequest, "topic, youtubeUrl or imageData required")
		return
	}

	questions, err := a.generator.GenerateQuiz(r.Context(), upstream.GenerateParams{
		Prompt:       prompt,
		NumQuestions: req.NumQuestions,
		NumOptions:   req.NumOptions,
		Language:     req.Language,
		VideoSummary: fromVideo,
	})
	if err != nil {
		writeFailure(w, err)
		return
	}

	id, err := a.service.CreateQuiz(r.Context(), questions, req.CreatorName)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createQuizResponse{ID: id, ShareURL: session.ShareURL(a.baseURL, id)})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeFailure maps the error taxonomy onto HTTP statuses: validation →
// 422, missing quiz → 404, upstream generation → 502, persistence → 500.
func writeFailure(w http.ResponseWriter, err error) {
	var ue *domain.UpstreamGenerationError
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		writeError(w, http.StatusNotFound, "quiz not found")
	case domain.IsValidation(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &ue):
		writeError(w, http.StatusBadGateway, ue.Error())
	default:
		log.Printf("request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
