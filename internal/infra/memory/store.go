package memory

import (
	"context"
	"sync"

	"quizlink-service/internal/domain"
)

// Store is an in-memory implementation of the quiz and score repositories,
// used for tests and for running the service without postgres.
type Store struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
	scores  map[string][]domain.LeaderboardEntry
}

func NewStore() *Store {
	return &Store{
		quizzes: make(map[string]domain.Quiz),
		scores:  make(map[string][]domain.LeaderboardEntry),
	}
}

// Seed preloads quizzes (useful for demos and tests).
func (s *Store) Seed(quizzes ...domain.Quiz) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, quiz := range quizzes {
		s.quizzes[quiz.ID] = quiz
	}
}

func (s *Store) CreateQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.ID] = quiz
	return nil
}

func (s *Store) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *Store) AppendScore(_ context.Context, entry domain.LeaderboardEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[entry.QuizID] = append(s.scores[entry.QuizID], entry)
	return nil
}

func (s *Store) ListScores(_ context.Context, quizID string) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.scores[quizID]
	out := make([]domain.LeaderboardEntry, len(entries))
	copy(out, entries)
	return out, nil
}
