package app

import (
	"context"
	"log"
	"time"

	"quizlink-service/internal/domain"
)

// DefaultPollInterval is how often a leaderboard view re-fetches scores.
const DefaultPollInterval = 5 * time.Second

// ScoreLister is the subset of ScoreRepository the refresher needs.
type ScoreLister interface {
	ListScores(ctx context.Context, quizID string) ([]domain.LeaderboardEntry, error)
}

// Refresher periodically re-fetches and re-ranks the leaderboard for one
// quiz, replacing the displayed ranking wholesale on each successful tick.
// Failed ticks are logged and swallowed; the previous ranking stands until
// the next success.
type Refresher struct {
	scores   ScoreLister
	quizID   string
	interval time.Duration
	onUpdate func([]domain.LeaderboardEntry)
}

// NewRefresher builds a refresher for quizID. onUpdate receives each ranked
// snapshot; it is never invoked after Run returns.
func NewRefresher(scores ScoreLister, quizID string, interval time.Duration, onUpdate func([]domain.LeaderboardEntry)) *Refresher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Refresher{scores: scores, quizID: quizID, interval: interval, onUpdate: onUpdate}
}

// Run polls until ctx is cancelled. An immediate fetch precedes the first
// tick so viewers are not blank for a full interval.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Refresher) tick(ctx context.Context) {
	entries, err := r.scores.ListScores(ctx, r.quizID)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("leaderboard poll failed for quiz %s: %v", r.quizID, err)
		}
		return
	}
	// A fetch that resolves after cancellation must not reach the view.
	if ctx.Err() != nil {
		return
	}
	r.onUpdate(Rank(entries))
}
