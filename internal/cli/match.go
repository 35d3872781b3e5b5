package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bracketeer/pkg/bracket"
	"github.com/matzehuels/bracketeer/pkg/errors"
	"github.com/matzehuels/bracketeer/pkg/workflow"
)

// matchCommand creates the match command group. Every action is a backend
// call; the command only reports the match as the backend returns it.
func (c *CLI) matchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Show and drive a single match",
	}

	cmd.AddCommand(c.matchShowCommand())
	cmd.AddCommand(c.matchStartCommand())
	cmd.AddCommand(c.matchCompleteCommand())
	cmd.AddCommand(c.matchResetCommand())

	return cmd
}

func parseMatchNum(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(strings.ToUpper(s), "M"))
	if err != nil || n <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid match number %q", s)
	}
	return n, nil
}

func (c *CLI) matchShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <match>",
		Short: "Show a match, its state and its problem title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			num, err := parseMatchNum(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			svc, err := c.connect(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			m, err := svc.client.FetchMatch(ctx, num)
			if err != nil {
				return err
			}
			snap := workflow.Snapshot{Match: m, State: bracket.StateOf(m)}
			if m.Problem != "" {
				if markup, err := svc.client.FetchProblem(ctx, m.Problem, false); err == nil {
					snap.Title = workflow.ProblemTitle(markup)
				} else {
					snap.Notice = errors.UserMessage(err)
				}
			}
			if start, ok := m.StartedAt(); ok && snap.State == bracket.InProgress {
				snap.Elapsed = max(0, workflow.SystemClock{}.Now().Sub(start))
			}
			writeMatch(cmd.OutOrStdout(), snap)
			return nil
		},
	}
}

func (c *CLI) matchStartCommand() *cobra.Command {
	var countdown int

	cmd := &cobra.Command{
		Use:   "start <match>",
		Short: "Start a ready match and reveal its problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			num, err := parseMatchNum(args[0])
			if err != nil {
				return err
			}
			return c.runAction(cmd, num, countdown, func(ctx context.Context, v *workflow.View) error {
				return v.Start(ctx)
			})
		},
	}
	cmd.Flags().IntVar(&countdown, "countdown", workflow.DefaultCountdown, "seconds to count down before starting (0 disables)")
	return cmd
}

func (c *CLI) matchCompleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <match> <participant>",
		Short: "Record that participant 1 or 2 finished",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			num, err := parseMatchNum(args[0])
			if err != nil {
				return err
			}
			p, err := strconv.Atoi(args[1])
			if err != nil || (p != 1 && p != 2) {
				return errors.New(errors.ErrCodeInvalidInput, "participant must be 1 or 2, got %q", args[1])
			}
			return c.runAction(cmd, num, 0, func(ctx context.Context, v *workflow.View) error {
				return v.Complete(ctx, p)
			})
		},
	}
}

func (c *CLI) matchResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <match>",
		Short: "Clear a match's start time and results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			num, err := parseMatchNum(args[0])
			if err != nil {
				return err
			}
			return c.runAction(cmd, num, 0, func(ctx context.Context, v *workflow.View) error {
				return v.Reset(ctx)
			})
		},
	}
}

// openView fetches match num and opens a workflow view of it.
func (c *CLI) openView(ctx context.Context, svc *services, num, countdown int) (*workflow.View, error) {
	m, err := svc.client.FetchMatch(ctx, num)
	if err != nil {
		return nil, err
	}
	return workflow.Open(ctx, svc.client, m,
		workflow.WithCountdown(countdown),
		workflow.WithLogger(c.Logger),
	)
}

// runAction opens a view of match num, runs action on it and prints the
// match afterwards. Countdown updates are shown on the spinner.
func (c *CLI) runAction(cmd *cobra.Command, num, countdown int, action func(context.Context, *workflow.View) error) error {
	ctx := cmd.Context()
	svc, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	view, err := c.openView(ctx, svc, num, countdown)
	if err != nil {
		return err
	}
	defer view.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Updating match %d...", num))
	spinner.Start()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for s := range view.Updates() {
			switch s.Phase {
			case workflow.PhaseCountingDown:
				spinner.SetMessage(fmt.Sprintf("Starting match %d in %d...", num, s.Count))
			case workflow.PhaseRevealing:
				spinner.SetMessage("Revealing problem...")
			}
		}
	}()

	err = action(ctx, view)
	snap := view.Snapshot()
	view.Close()
	<-done
	spinner.Stop()
	if err != nil {
		return err
	}

	printSuccess("Match %d is %s", num, snap.State)
	writeMatch(cmd.OutOrStdout(), snap)
	return nil
}

// writeMatch prints the details of one match.
func writeMatch(w io.Writer, s workflow.Snapshot) {
	m := s.Match
	fmt.Fprintln(w, StyleTitle.Render(fmt.Sprintf("Match %d", m.Num)))
	fmt.Fprintln(w, keyValue("State", renderState(s.State)))
	fmt.Fprintln(w, keyValue("Player 1", participantLabel(m, 1)))
	fmt.Fprintln(w, keyValue("Player 2", participantLabel(m, 2)))
	if s.Title != "" {
		fmt.Fprintln(w, keyValue("Problem", s.Title))
	}
	if start, ok := m.StartedAt(); ok {
		fmt.Fprintln(w, keyValue("Started", start.Format("2006-01-02 15:04:05")))
	}
	if s.State == bracket.InProgress {
		fmt.Fprintln(w, keyValue("Elapsed", bracket.FormatClock(s.Elapsed)))
	}
	if r := results(m); r != "" {
		fmt.Fprintln(w, keyValue("Results", r))
	}
	if slot, ok := bracket.WinnerOf(m); ok {
		fmt.Fprintln(w, keyValue("Winner", StyleWinner.Render(m.Participant(slot).Label())))
	}
	if s.Notice != "" {
		fmt.Fprintln(w, StyleWarning.Render(s.Notice))
	}
}
