package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"quizlink-service/internal/domain"
	"quizlink-service/internal/infra/memory"
)

func TestQuizCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	backing := &countingStore{Store: memory.NewStore()}
	backing.Seed(sampleQuiz())
	cache := NewQuizCache(client, backing, time.Minute)

	if _, err := cache.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if backing.gets != 1 {
		t.Fatalf("expected backing hit once, got %d", backing.gets)
	}
	if !mr.Exists("quiz:quiz-1") {
		t.Fatalf("expected redis key to be set")
	}

	// Second call should hit the cache.
	quiz, err := cache.GetQuiz(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get quiz cached: %v", err)
	}
	if backing.gets != 1 {
		t.Fatalf("expected cache hit, backing gets=%d", backing.gets)
	}
	if len(quiz.Questions) != 1 || quiz.Questions[0].Options[1].Explanation == "" {
		t.Fatalf("cached quiz lost content: %+v", quiz)
	}
}

func TestQuizCacheCreatePrimesCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	backing := &countingStore{Store: memory.NewStore()}
	cache := NewQuizCache(client, backing, time.Minute)

	if err := cache.CreateQuiz(context.Background(), sampleQuiz()); err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	if !mr.Exists("quiz:quiz-1") {
		t.Fatalf("expected create to prime cache")
	}

	if _, err := cache.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if backing.gets != 0 {
		t.Fatalf("expected primed cache to serve read, backing gets=%d", backing.gets)
	}
}

func TestQuizCacheMissPropagatesNotFound(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewQuizCache(client, memory.NewStore(), time.Minute)

	if _, err := cache.GetQuiz(context.Background(), "nonexistent-id"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

type countingStore struct {
	*memory.Store
	gets int
}

func (s *countingStore) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	s.gets++
	return s.Store.GetQuiz(ctx, quizID)
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:          "quiz-1",
		CreatorName: "Alice",
		Questions: []domain.Question{
			{
				Text: "What is 2 + 2?",
				Options: []domain.Option{
					{Text: "3", Correct: false},
					{Text: "4", Correct: true, Explanation: "2 + 2 equals 4."},
					{Text: "5", Correct: false},
				},
			},
		},
		CreatedAt: time.Unix(1700000000, 0).UTC(),
	}
}
