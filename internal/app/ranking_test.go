package app_test

import (
	"testing"
	"time"

	"quizlink-service/internal/app"
	"quizlink-service/internal/domain"
)

func TestRankOrdersByPercentageThenRecency(t *testing.T) {
	base := time.Unix(1000, 0)
	a := domain.LeaderboardEntry{Username: "a", Score: 3, TotalQuestions: 4, Timestamp: base.Add(100 * time.Second)}
	b := domain.LeaderboardEntry{Username: "b", Score: 6, TotalQuestions: 8, Timestamp: base.Add(200 * time.Second)}
	c := domain.LeaderboardEntry{Username: "c", Score: 1, TotalQuestions: 4, Timestamp: base}

	ranked := app.Rank([]domain.LeaderboardEntry{a, b, c})

	// a and b are both 75%; b submitted later so it leads.
	if ranked[0].Username != "b" || ranked[1].Username != "a" || ranked[2].Username != "c" {
		t.Fatalf("unexpected order: %s %s %s", ranked[0].Username, ranked[1].Username, ranked[2].Username)
	}
}

func TestRankIsInvariantToInputOrder(t *testing.T) {
	base := time.Unix(1000, 0)
	entries := []domain.LeaderboardEntry{
		{Username: "a", Score: 2, TotalQuestions: 4, Timestamp: base.Add(1 * time.Second)},
		{Username: "b", Score: 4, TotalQuestions: 4, Timestamp: base.Add(2 * time.Second)},
		{Username: "c", Score: 0, TotalQuestions: 4, Timestamp: base.Add(3 * time.Second)},
		{Username: "d", Score: 3, TotalQuestions: 4, Timestamp: base.Add(4 * time.Second)},
	}

	permute := func(order []int) []domain.LeaderboardEntry {
		out := make([]domain.LeaderboardEntry, 0, len(order))
		for _, i := range order {
			out = append(out, entries[i])
		}
		return out
	}

	want := app.Rank(entries)
	for _, order := range [][]int{{3, 2, 1, 0}, {1, 3, 0, 2}, {2, 0, 3, 1}} {
		got := app.Rank(permute(order))
		for i := range want {
			if got[i].Username != want[i].Username {
				t.Fatalf("order %v: position %d got %s want %s", order, i, got[i].Username, want[i].Username)
			}
		}
	}
}

func TestRankOutputSatisfiesTotalOrder(t *testing.T) {
	base := time.Unix(1000, 0)
	entries := []domain.LeaderboardEntry{
		{Username: "a", Score: 3, TotalQuestions: 4, Timestamp: base.Add(5 * time.Second)},
		{Username: "b", Score: 3, TotalQuestions: 4, Timestamp: base.Add(9 * time.Second)},
		{Username: "c", Score: 9, TotalQuestions: 10, Timestamp: base},
		{Username: "d", Score: 0, TotalQuestions: 5, Timestamp: base.Add(2 * time.Second)},
	}
	ranked := app.Rank(entries)
	for i := 0; i+1 < len(ranked); i++ {
		pi, pj := ranked[i].Percentage(), ranked[i+1].Percentage()
		if pi < pj {
			t.Fatalf("adjacent pair %d out of order: %v < %v", i, pi, pj)
		}
		if pi == pj && ranked[i].Timestamp.Before(ranked[i+1].Timestamp) {
			t.Fatalf("tie at %d not broken by recency", i)
		}
	}
}

func TestRankZeroTotalRanksLast(t *testing.T) {
	base := time.Unix(1000, 0)
	entries := []domain.LeaderboardEntry{
		{Username: "broken", Score: 0, TotalQuestions: 0, Timestamp: base.Add(time.Hour)},
		{Username: "zero", Score: 0, TotalQuestions: 5, Timestamp: base},
	}
	ranked := app.Rank(entries)
	if ranked[len(ranked)-1].Username != "broken" {
		t.Fatalf("expected zero-total entry last, got %+v", ranked)
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	base := time.Unix(1000, 0)
	entries := []domain.LeaderboardEntry{
		{Username: "a", Score: 1, TotalQuestions: 4, Timestamp: base},
		{Username: "b", Score: 4, TotalQuestions: 4, Timestamp: base},
	}
	_ = app.Rank(entries)
	if entries[0].Username != "a" || entries[1].Username != "b" {
		t.Fatalf("input slice mutated: %+v", entries)
	}
}
