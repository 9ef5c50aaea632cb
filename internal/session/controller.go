package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"quizlink-service/internal/domain"
)

// State identifies where a quiz-taking session is in its lifecycle.
type State string

const (
	StateAwaitingIdentity State = "awaiting_identity"
	StateFetchingQuiz     State = "fetching_quiz"
	StateAnswering        State = "answering"
	StateScored           State = "scored"
	StateShared           State = "shared"
	StateQuizUnavailable  State = "quiz_unavailable"
)

const (
	// fetchRetries is how many extra attempts follow a not-found fetch
	// before the session gives up.
	fetchRetries = 2
	retryDelay   = 2 * time.Second
)

// ErrWrongState is returned when an action is attempted outside the state
// that allows it.
var ErrWrongState = errors.New("action not allowed in current state")

// QuizFetcher loads quiz content by id.
type QuizFetcher interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// ScoreSubmitter records one scored attempt.
type ScoreSubmitter interface {
	SubmitScore(ctx context.Context, quizID, username string, score, totalQuestions int) (domain.LeaderboardEntry, error)
}

// Controller is the per-user state machine governing identity capture, quiz
// fetch, answer collection, scoring and score submission. Transitions are
// serial: calls are triggered one at a time by user actions or the retry
// timer, and a mutex guards against re-entrant double-submission from a
// second click racing an in-flight call.
type Controller struct {
	quizzes QuizFetcher
	scores  ScoreSubmitter
	names   *NameCache
	sleep   func(ctx context.Context, d time.Duration) error

	mu        sync.Mutex
	quizID    string
	username  string
	state     State
	quiz      domain.Quiz
	answers   map[int]int
	revealed  map[int]bool
	score     int
	submitted bool
}

func NewController(quizzes QuizFetcher, scores ScoreSubmitter, names *NameCache, quizID string) *Controller {
	return &Controller{
		quizzes:  quizzes,
		scores:   scores,
		names:    names,
		sleep:    sleepCtx,
		quizID:   quizID,
		state:    StateAwaitingIdentity,
		answers:  make(map[int]int),
		revealed: make(map[int]bool),
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Start begins the session. When a username is already cached for this quiz
// id the identity prompt is skipped and the quiz is fetched immediately.
func (c *Controller) Start(ctx context.Context) (State, error) {
	if name, ok := c.names.Get(c.quizID); ok {
		c.mu.Lock()
		c.username = name
		c.mu.Unlock()
		return c.fetch(ctx)
	}
	return StateAwaitingIdentity, nil
}

// SubmitUsername captures the participant's name and fetches the quiz.
// An empty name is rejected locally and the session stays in
// AwaitingIdentity.
func (c *Controller) SubmitUsername(ctx context.Context, name string) (State, error) {
	c.mu.Lock()
	if c.state != StateAwaitingIdentity {
		c.mu.Unlock()
		return c.state, ErrWrongState
	}
	if name == "" {
		c.mu.Unlock()
		return StateAwaitingIdentity, domain.NewValidationError("username", "must not be empty")
	}
	c.username = name
	c.mu.Unlock()

	c.names.Set(c.quizID, name)
	return c.fetch(ctx)
}

// fetch loads the quiz. A not-found result is retried fetchRetries more
// times with a fixed delay before the session becomes terminally
// unavailable; a persistence failure is terminal immediately.
func (c *Controller) fetch(ctx context.Context) (State, error) {
	c.setState(StateFetchingQuiz)

	var lastErr error
	for attempt := 0; attempt <= fetchRetries; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, retryDelay); err != nil {
				c.setState(StateQuizUnavailable)
				return StateQuizUnavailable, err
			}
		}

		quiz, err := c.quizzes.GetQuiz(ctx, c.quizID)
		switch {
		case err == nil && len(quiz.Questions) > 0:
			c.mu.Lock()
			c.quiz = quiz
			c.state = StateAnswering
			c.mu.Unlock()
			return StateAnswering, nil
		case err == nil:
			// An empty question list is indistinguishable from a missing
			// quiz for the taker; give the store a chance to catch up.
			lastErr = domain.ErrQuizNotFound
		case errors.Is(err, domain.ErrQuizNotFound):
			lastErr = err
		default:
			c.setState(StateQuizUnavailable)
			return StateQuizUnavailable, err
		}
	}
	c.setState(StateQuizUnavailable)
	return StateQuizUnavailable, lastErr
}

// SelectAnswer records (or changes) the selected option for a question.
func (c *Controller) SelectAnswer(questionIdx, optionIdx int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateAnswering {
		return ErrWrongState
	}
	if questionIdx < 0 || questionIdx >= len(c.quiz.Questions) {
		return domain.NewValidationError("question", fmt.Sprintf("index %d out of range", questionIdx))
	}
	if optionIdx < 0 || optionIdx >= len(c.quiz.Questions[questionIdx].Options) {
		return domain.NewValidationError("option", fmt.Sprintf("index %d out of range", optionIdx))
	}
	c.answers[questionIdx] = optionIdx
	return nil
}

// CanSubmit reports whether every question has a selection.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateAnswering && len(c.answers) == len(c.quiz.Questions)
}

// Submit scores the collected answers. Submission requires a complete
// answer set.
func (c *Controller) Submit() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateAnswering {
		return 0, ErrWrongState
	}
	if len(c.answers) != len(c.quiz.Questions) {
		return 0, domain.NewValidationError("answers", "every question needs a selection")
	}
	c.score = domain.ScoreAnswers(c.quiz, c.answers)
	c.state = StateScored
	return c.score, nil
}

// ToggleExplanation flips the explanation reveal for one question and
// returns the new visibility. Toggling is idempotent with respect to the
// session state: it never causes a transition.
func (c *Controller) ToggleExplanation(questionIdx int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateScored && c.state != StateShared {
		return false, ErrWrongState
	}
	if questionIdx < 0 || questionIdx >= len(c.quiz.Questions) {
		return false, domain.NewValidationError("question", fmt.Sprintf("index %d out of range", questionIdx))
	}
	c.revealed[questionIdx] = !c.revealed[questionIdx]
	return c.revealed[questionIdx], nil
}

// ExplanationVisible reports the reveal flag for a question.
func (c *Controller) ExplanationVisible(questionIdx int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.revealed[questionIdx]
}

// SubmitScore posts the score to the leaderboard exactly once per scored
// attempt. Repeated calls after a success are no-ops; a failed call leaves
// the action re-attemptable.
func (c *Controller) SubmitScore(ctx context.Context) (State, error) {
	c.mu.Lock()
	if c.state != StateScored && c.state != StateShared {
		c.mu.Unlock()
		return c.state, ErrWrongState
	}
	if c.submitted {
		state := c.state
		c.mu.Unlock()
		return state, nil
	}
	// Mark before the call so a second click during the request is a no-op.
	c.submitted = true
	quizID, username, score, total := c.quizID, c.username, c.score, len(c.quiz.Questions)
	c.mu.Unlock()

	if _, err := c.scores.SubmitScore(ctx, quizID, username, score, total); err != nil {
		c.mu.Lock()
		c.submitted = false
		state := c.state
		c.mu.Unlock()
		return state, err
	}

	c.setState(StateShared)
	return StateShared, nil
}

// TryAgain clears answers and returns to Answering without a new fetch.
// The next scored attempt may submit again; resubmission appends a new
// leaderboard row.
func (c *Controller) TryAgain() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateScored && c.state != StateShared {
		return ErrWrongState
	}
	c.answers = make(map[int]int)
	c.revealed = make(map[int]bool)
	c.score = 0
	c.submitted = false
	c.state = StateAnswering
	return nil
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Quiz returns the fetched quiz (zero value before Answering).
func (c *Controller) Quiz() domain.Quiz {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quiz
}

// Score returns the last computed score.
func (c *Controller) Score() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.score
}

// Username returns the captured participant name.
func (c *Controller) Username() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
