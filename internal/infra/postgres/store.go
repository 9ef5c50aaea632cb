package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"quizlink-service/internal/domain"
)

// Store persists quizzes and scores in postgres. Questions are kept as a
// JSONB document per quiz; scores are one row per submission, append-only.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	data, err := json.Marshal(quiz.Questions)
	if err != nil {
		return domain.NewPersistenceError("marshal quiz", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO quizzes (id, creator_name, questions, created_at) VALUES ($1, $2, $3, $4)`,
		quiz.ID, quiz.CreatorName, data, quiz.CreatedAt)
	if err != nil {
		return domain.NewPersistenceError("insert quiz", err)
	}
	return nil
}

func (s *Store) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	quiz := domain.Quiz{ID: quizID}
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT creator_name, questions, created_at FROM quizzes WHERE id=$1`, quizID).
		Scan(&quiz.CreatorName, &raw, &quiz.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, domain.NewPersistenceError("load quiz", err)
	}
	if err := json.Unmarshal(raw, &quiz.Questions); err != nil {
		return domain.Quiz{}, domain.NewPersistenceError("unmarshal quiz", err)
	}
	return quiz, nil
}

func (s *Store) AppendScore(ctx context.Context, entry domain.LeaderboardEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO scores (id, quiz_id, username, score, total_questions, timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.QuizID, entry.Username, entry.Score, entry.TotalQuestions, entry.Timestamp)
	if err != nil {
		return domain.NewPersistenceError("insert score", err)
	}
	return nil
}

// ListScores returns all entries for a quiz in insertion order. Ranking is
// the caller's responsibility.
func (s *Store) ListScores(ctx context.Context, quizID string) ([]domain.LeaderboardEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, quiz_id, username, score, total_questions, timestamp FROM scores WHERE quiz_id=$1`, quizID)
	if err != nil {
		return nil, domain.NewPersistenceError("list scores", err)
	}
	defer rows.Close()

	entries := make([]domain.LeaderboardEntry, 0)
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.ID, &e.QuizID, &e.Username, &e.Score, &e.TotalQuestions, &e.Timestamp); err != nil {
			return nil, domain.NewPersistenceError("scan score", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewPersistenceError("list scores", err)
	}
	return entries, nil
}
