package domain

import "fmt"

// ValidateQuestions enforces the persistence invariant: a quiz has at least
// one question, every question has at least two options, and exactly one
// option per question is flagged correct. Generated content that violates
// this is rejected before any write.
func ValidateQuestions(questions []Question) error {
	if len(questions) == 0 {
		return NewValidationError("questions", "quiz has no questions")
	}
	for i, q := range questions {
		if q.Text == "" {
			return NewValidationError(fmt.Sprintf("questions[%d]", i), "empty question text")
		}
		if len(q.Options) < 2 {
			return NewValidationError(fmt.Sprintf("questions[%d]", i), "fewer than two options")
		}
		correct := 0
		for _, opt := range q.Options {
			if opt.Correct {
				correct++
			}
		}
		if correct != 1 {
			return NewValidationError(fmt.Sprintf("questions[%d]", i),
				fmt.Sprintf("expected exactly one correct option, found %d", correct))
		}
	}
	return nil
}
