package session

import (
	"fmt"
	"time"
)

// ShareURL builds the public link for a quiz id.
func ShareURL(baseURL, quizID string) string {
	return fmt.Sprintf("%s/quiz/%s", baseURL, quizID)
}

// ShareMessage is the human-readable score string attached to a share link.
func ShareMessage(score, totalQuestions int) string {
	return fmt.Sprintf("I just scored %d/%d on this quiz! Try to beat my score!", score, totalQuestions)
}

// ResultsText is the plain-text downloadable results document: username,
// score, percentage and date. It is not required to round-trip.
func ResultsText(username string, score, totalQuestions int, when time.Time) string {
	percentage := 0.0
	if totalQuestions > 0 {
		percentage = float64(score) / float64(totalQuestions) * 100
	}
	return fmt.Sprintf(
		"Quiz Results for %s\n--------------------------\nScore: %d/%d\nPercentage: %.2f%%\nDate: %s\n",
		username, score, totalQuestions, percentage, when.Format("2006-01-02 15:04:05"))
}
