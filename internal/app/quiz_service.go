package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"quizlink-service/internal/domain"
)

// DefaultCreatorName is recorded when a quiz is created without a name.
const DefaultCreatorName = "Anonymous"

// QuizRepository persists quiz content (postgres, redis cache, memory).
type QuizRepository interface {
	CreateQuiz(ctx context.Context, quiz domain.Quiz) error
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// ScoreRepository persists leaderboard entries. Entries are append-only;
// there is no update or delete path.
type ScoreRepository interface {
	AppendScore(ctx context.Context, entry domain.LeaderboardEntry) error
	ListScores(ctx context.Context, quizID string) ([]domain.LeaderboardEntry, error)
}

// QuizService contains the quiz lifecycle use cases: create, fetch, submit
// a score, read the ranked leaderboard.
type QuizService struct {
	quizzes QuizRepository
	scores  ScoreRepository
	newID   func() string
	clock   func() time.Time
}

func NewQuizService(quizzes QuizRepository, scores ScoreRepository) *QuizService {
	return &QuizService{
		quizzes: quizzes,
		scores:  scores,
		newID:   uuid.NewString,
		clock:   time.Now,
	}
}

// NewQuizServiceWithClock is test-only for deterministic ids and timestamps.
func NewQuizServiceWithClock(quizzes QuizRepository, scores ScoreRepository, newID func() string, clock func() time.Time) *QuizService {
	return &QuizService{quizzes: quizzes, scores: scores, newID: newID, clock: clock}
}

// CreateQuiz validates the exactly-one-correct invariant, assigns a fresh id
// and persists the quiz. The returned id doubles as the public share token.
func (s *QuizService) CreateQuiz(ctx context.Context, questions []domain.Question, creatorName string) (string, error) {
	if err := domain.ValidateQuestions(questions); err != nil {
		return "", err
	}
	name := strings.TrimSpace(creatorName)
	if name == "" {
		name = DefaultCreatorName
	}
	quiz := domain.Quiz{
		ID:          s.newID(),
		CreatorName: name,
		Questions:   questions,
		CreatedAt:   s.clock(),
	}
	if err := s.quizzes.CreateQuiz(ctx, quiz); err != nil {
		return "", err
	}
	return quiz.ID, nil
}

// GetQuiz returns the stored question set. A missing id surfaces as
// domain.ErrQuizNotFound, distinct from transient persistence failures.
func (s *QuizService) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.quizzes.GetQuiz(ctx, quizID)
}

// SubmitScore appends one leaderboard row. Repeated submissions by the same
// username create new rows; the leaderboard keeps full history.
func (s *QuizService) SubmitScore(ctx context.Context, quizID, username string, score, totalQuestions int) (domain.LeaderboardEntry, error) {
	if strings.TrimSpace(username) == "" {
		return domain.LeaderboardEntry{}, domain.NewValidationError("username", "must not be empty")
	}
	if totalQuestions < 0 {
		return domain.LeaderboardEntry{}, domain.NewValidationError("totalQuestions", "must not be negative")
	}
	if score < 0 || score > totalQuestions {
		return domain.LeaderboardEntry{}, domain.NewValidationError("score", "must be between 0 and totalQuestions")
	}
	entry := domain.LeaderboardEntry{
		ID:             s.newID(),
		QuizID:         quizID,
		Username:       username,
		Score:          score,
		TotalQuestions: totalQuestions,
		Timestamp:      s.clock(),
	}
	if err := s.scores.AppendScore(ctx, entry); err != nil {
		return domain.LeaderboardEntry{}, err
	}
	return entry, nil
}

// Leaderboard returns the ranked entries for a quiz. An empty board is a
// normal result, not an error.
func (s *QuizService) Leaderboard(ctx context.Context, quizID string) ([]domain.LeaderboardEntry, error) {
	entries, err := s.scores.ListScores(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return Rank(entries), nil
}

// ListScores exposes the raw, unranked entries. The polling refresher reads
// through this and re-establishes the total order on every tick.
func (s *QuizService) ListScores(ctx context.Context, quizID string) ([]domain.LeaderboardEntry, error) {
	return s.scores.ListScores(ctx, quizID)
}
