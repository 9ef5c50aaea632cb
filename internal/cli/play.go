package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"quizlink-service/internal/config"
	"quizlink-service/internal/domain"
	"quizlink-service/internal/session"
)

// NewPlayCmd builds an interactive quiz-taking session in the terminal,
// driving the same state machine a web client would.
func NewPlayCmd() *cobra.Command {
	var quizID string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Take a shared quiz interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			if quizID == "" {
				return fmt.Errorf("--quiz is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return runPlay(cmd.Context(), cfg, quizID, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&quizID, "quiz", "", "quiz id from a share link")
	return cmd
}

func runPlay(ctx context.Context, cfg config.Config, quizID string, in io.Reader, out io.Writer) error {
	service, cleanup, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	reader := bufio.NewScanner(in)
	ctrl := session.NewController(service, service, session.NewNameCache(), quizID)

	state, err := ctrl.Start(ctx)
	if err != nil {
		return reportUnavailable(out, err)
	}

	for state == session.StateAwaitingIdentity {
		fmt.Fprint(out, "Enter your name: ")
		if !reader.Scan() {
			return reader.Err()
		}
		state, err = ctrl.SubmitUsername(ctx, strings.TrimSpace(reader.Text()))
		if err != nil {
			if domain.IsValidation(err) {
				fmt.Fprintln(out, "A name is required to join the quiz.")
				continue
			}
			return reportUnavailable(out, err)
		}
	}

	quiz := ctrl.Quiz()
	fmt.Fprintf(out, "\nQuiz by %s — %d question(s)\n", quiz.CreatorName, len(quiz.Questions))

	for i, q := range quiz.Questions {
		fmt.Fprintf(out, "\n%d. %s\n", i+1, q.Text)
		for j, opt := range q.Options {
			fmt.Fprintf(out, "   %d) %s\n", j+1, opt.Text)
		}
		for {
			fmt.Fprintf(out, "Your answer [1-%d]: ", len(q.Options))
			if !reader.Scan() {
				return reader.Err()
			}
			choice, convErr := strconv.Atoi(strings.TrimSpace(reader.Text()))
			if convErr != nil || ctrl.SelectAnswer(i, choice-1) != nil {
				fmt.Fprintln(out, "Please pick one of the listed options.")
				continue
			}
			break
		}
	}

	score, err := ctrl.Submit()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nYou scored %d/%d!\n", score, len(quiz.Questions))

	for i, q := range quiz.Questions {
		if correct := q.CorrectOption(); correct >= 0 {
			if _, err := ctrl.ToggleExplanation(i); err == nil {
				fmt.Fprintf(out, "Q%d: %s — %s\n", i+1, q.Options[correct].Text, q.Options[correct].Explanation)
			}
		}
	}

	if _, err := ctrl.SubmitScore(ctx); err != nil {
		fmt.Fprintf(out, "Could not save your score: %v\n", err)
	} else {
		fmt.Fprintln(out, "\nScore saved to the leaderboard.")
	}

	board, err := service.Leaderboard(ctx, quizID)
	if err == nil && len(board) > 0 {
		fmt.Fprintln(out, "\nLeaderboard:")
		for rank, entry := range board {
			fmt.Fprintf(out, "  %d. %s — %d/%d\n", rank+1, entry.Username, entry.Score, entry.TotalQuestions)
		}
	}

	baseURL := cfg.Server.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	fmt.Fprintf(out, "\n%s %s\n", session.ShareMessage(score, len(quiz.Questions)), session.ShareURL(baseURL, quizID))
	fmt.Fprint(out, "\n"+session.ResultsText(ctrl.Username(), score, len(quiz.Questions), time.Now()))
	return nil
}

func reportUnavailable(out io.Writer, err error) error {
	fmt.Fprintln(out, "The quiz could not be found. It may have been deleted or the link is incorrect.")
	return err
}
