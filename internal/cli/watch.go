package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bracketeer/pkg/bracket"
	"github.com/matzehuels/bracketeer/pkg/errors"
	"github.com/matzehuels/bracketeer/pkg/workflow"
)

var (
	clockStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorYellow).Padding(1, 2)
	countdownStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(1, 2)
	panelStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
	helpStyle      = lipgloss.NewStyle().Foreground(colorDim)
	errorStyle     = lipgloss.NewStyle().Foreground(colorRed)
)

// watchCommand creates the watch command: a live view of one match that
// can start, complete and reset it.
func (c *CLI) watchCommand() *cobra.Command {
	var countdown int

	cmd := &cobra.Command{
		Use:   "watch <match>",
		Short: "Open a live view of a match",
		Long: `Open a live view of a match with its elapsed time.

Keys:
  s      start the match (after the countdown)
  1, 2   record that participant 1 or 2 finished
  r      reset the match
  f      refetch the match
  n, p   switch to the next or previous match
  q      quit`,
		Args: cobra.ExactArgs(1),
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

			session := workflow.NewSession(svc.client,
				workflow.WithCountdown(countdown),
				workflow.WithLogger(c.Logger),
			)
			defer session.Close()

			m, err := svc.client.FetchMatch(ctx, num)
			if err != nil {
				return err
			}
			view, err := session.Open(ctx, m)
			if err != nil {
				return err
			}

			p := tea.NewProgram(newMatchModel(ctx, session, svc.client, view), tea.WithContext(ctx))
			_, err = p.Run()
			return err
		},
	}
	cmd.Flags().IntVar(&countdown, "countdown", workflow.DefaultCountdown, "seconds to count down before starting (0 disables)")
	return cmd
}

// =============================================================================
// matchModel - Live match view
// =============================================================================

// Messages from a view carry it so that late messages from a view that was
// switched away from are dropped.
type (
	snapshotMsg struct {
		view *workflow.View
		snap workflow.Snapshot
	}
	viewClosedMsg struct{ view *workflow.View }
	switchedMsg   struct{ view *workflow.View }
	actionMsg     struct {
		name string
		err  error
	}
)

// matchModel is the bubbletea model over the current view of a
// workflow.Session. All state comes from the view's snapshots; the model
// only remembers the last action error.
type matchModel struct {
	ctx     context.Context
	session *workflow.Session
	backend workflow.Backend
	view    *workflow.View
	snap    workflow.Snapshot
	busy    string // running action, if any
	err     error
}

func newMatchModel(ctx context.Context, s *workflow.Session, b workflow.Backend, v *workflow.View) matchModel {
	return matchModel{ctx: ctx, session: s, backend: b, view: v, snap: v.Snapshot()}
}

// waitForSnapshot blocks until the view publishes or closes.
func waitForSnapshot(v *workflow.View) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-v.Updates()
		if !ok {
			return viewClosedMsg{view: v}
		}
		return snapshotMsg{view: v, snap: s}
	}
}

func (m matchModel) Init() tea.Cmd {
	return waitForSnapshot(m.view)
}

// action runs fn in the background and reports its error.
func (m matchModel) action(name string, fn func(context.Context) error) (tea.Model, tea.Cmd) {
	if m.busy != "" {
		return m, nil
	}
	m.busy, m.err = name, nil
	ctx := m.ctx
	return m, func() tea.Msg {
		return actionMsg{name: name, err: fn(ctx)}
	}
}

// switchTo replaces the view with one of match num. A match that cannot be
// opened is reported without closing the current view.
func (m matchModel) switchTo(num int) (tea.Model, tea.Cmd) {
	if m.busy != "" || num < 1 {
		return m, nil
	}
	m.busy, m.err = "open", nil
	ctx, session, backend := m.ctx, m.session, m.backend
	return m, func() tea.Msg {
		next, err := backend.FetchMatch(ctx, num)
		if err == nil {
			err = workflow.Openable(next)
		}
		if err != nil {
			return actionMsg{name: "open", err: err}
		}
		v, err := session.Open(ctx, next)
		if err != nil {
			return actionMsg{name: "open", err: err}
		}
		return switchedMsg{view: v}
	}
}

func (m matchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.session.Close()
			return m, tea.Quit
		case "s":
			return m.action("start", m.view.Start)
		case "1", "2":
			p := int(msg.String()[0] - '0')
			return m.action("complete", func(ctx context.Context) error {
				return m.view.Complete(ctx, p)
			})
		case "r":
			return m.action("reset", m.view.Reset)
		case "f":
			return m.action("refresh", m.view.Refresh)
		case "n":
			return m.switchTo(m.snap.Match.Num + 1)
		case "p":
			return m.switchTo(m.snap.Match.Num - 1)
		}

	case snapshotMsg:
		if msg.view != m.view {
			return m, nil
		}
		m.snap = msg.snap
		return m, waitForSnapshot(m.view)

	case viewClosedMsg:
		if msg.view != m.view {
			return m, nil
		}
		return m, tea.Quit

	case switchedMsg:
		m.busy, m.err = "", nil
		m.view = msg.view
		m.snap = m.view.Snapshot()
		return m, waitForSnapshot(m.view)

	case actionMsg:
		m.busy = ""
		m.err = msg.err
		m.snap = m.view.Snapshot()
	}
	return m, nil
}

func (m matchModel) View() string {
	s := m.snap
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Match %d", s.Match.Num)))
	b.WriteString("  ")
	b.WriteString(renderState(s.State))
	b.WriteString("\n\n")

	players := []string{
		keyValue("Player 1", participantLabel(s.Match, 1)),
		keyValue("Player 2", participantLabel(s.Match, 2)),
	}
	if s.Title != "" {
		players = append(players, keyValue("Problem", s.Title))
	}
	if r := results(s.Match); r != "" {
		players = append(players, keyValue("Results", r))
	}
	b.WriteString(panelStyle.Render(strings.Join(players, "\n")))
	b.WriteString("\n")

	switch {
	case s.Phase == workflow.PhaseCountingDown:
		b.WriteString(countdownStyle.Render(fmt.Sprintf("Starting in %d", s.Count)))
	case s.Phase == workflow.PhaseRevealing:
		b.WriteString(countdownStyle.Render("Go!"))
	case s.State == bracket.InProgress:
		b.WriteString(clockStyle.Render(bracket.FormatClock(s.Elapsed)))
	case s.State == bracket.Complete:
		if slot, ok := bracket.WinnerOf(s.Match); ok {
			b.WriteString(clockStyle.Render("Winner: " + StyleWinner.Render(s.Match.Participant(slot).Label())))
		}
	}
	b.WriteString("\n")

	if s.Notice != "" {
		b.WriteString(StyleWarning.Render(s.Notice) + "\n")
	}
	if m.busy != "" {
		b.WriteString(StyleDim.Render(m.busy+"...") + "\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(iconError+" "+errors.UserMessage(m.err)) + "\n")
	}
	b.WriteString(helpStyle.Render(m.help()))
	return b.String()
}

// help lists the keys that apply in the current state.
func (m matchModel) help() string {
	var keys []string
	switch m.snap.State {
	case bracket.Ready:
		keys = append(keys, "s start")
	case bracket.InProgress:
		keys = append(keys, "1/2 finished", "r reset")
	case bracket.Complete:
		keys = append(keys, "r reset")
	}
	keys = append(keys, "f refresh", "n/p next/prev", "q quit")
	return strings.Join(keys, "  ")
}
