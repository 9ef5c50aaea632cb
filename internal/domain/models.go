package domain

import "time"

// Option represents a possible answer for a question. Explanation is shown
// for the correct option once the quiz has been scored.
type Option struct {
	Text        string `json:"text"`
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation,omitempty"`
}

// Question models an MCQ question with exactly one correct option.
// Option order is display order, not a ranking.
type Question struct {
	Text    string   `json:"question"`
	Options []Option `json:"options"`
}

// Quiz is an ordered collection of questions identified by a shareable id.
// Quizzes are immutable after creation; there is no update path.
type Quiz struct {
	ID          string     `json:"id"`
	CreatorName string     `json:"creatorName"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// LeaderboardEntry is one scored attempt at a quiz. Usernames are free text,
// not identities: the same name may appear on multiple rows.
type LeaderboardEntry struct {
	ID             string    `json:"id,omitempty"`
	QuizID         string    `json:"quizId"`
	Username       string    `json:"username"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	Timestamp      time.Time `json:"timestamp"`
}

// Percentage returns the score ratio, or -1 when the entry has no questions
// so that callers never divide by zero.
func (e LeaderboardEntry) Percentage() float64 {
	if e.TotalQuestions <= 0 {
		return -1
	}
	return float64(e.Score) / float64(e.TotalQuestions)
}

// CorrectOption returns the index of the question's correct option, or -1.
func (q Question) CorrectOption() int {
	for i, opt := range q.Options {
		if opt.Correct {
			return i
		}
	}
	return -1
}

// ScoreAnswers counts the questions whose selected option carries the
// correctness flag. answers maps question index to selected option index;
// unanswered or out-of-range selections score zero.
func ScoreAnswers(quiz Quiz, answers map[int]int) int {
	score := 0
	for i, q := range quiz.Questions {
		sel, ok := answers[i]
		if !ok || sel < 0 || sel >= len(q.Options) {
			continue
		}
		if q.Options[sel].Correct {
			score++
		}
	}
	return score
}
