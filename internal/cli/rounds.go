package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bracketeer/pkg/bracket"
)

// section is one titled group of rounds, e.g. the lower bracket.
type section struct {
	title  string
	rounds bracket.Rounds
	named  bool // use Final/Semi-Finals names instead of numbers
}

// sections splits matches the way the layouts do: main rounds and third
// place for single elimination, upper, lower and final for double
// elimination, knockout and round-robin for hybrid brackets.
func sections(matches []bracket.Match) []section {
	switch bracket.Classify(matches) {
	case bracket.DoubleElimination:
		final := bracket.Filter(matches, func(m bracket.Match) bool {
			return m.Side == bracket.SideFinal || m.GrandFinal
		})
		return []section{
			{title: "Upper Bracket", rounds: bracket.GroupRounds(bracket.OnSide(matches, bracket.SideUpper))},
			{title: "Lower Bracket", rounds: bracket.GroupRounds(bracket.OnSide(matches, bracket.SideLower))},
			{title: "Grand Final", rounds: flat(final)},
		}
	case bracket.Hybrid:
		idx := bracket.NewIndex(matches)
		rr, _ := idx.RoundRobin()
		group := bracket.Filter(matches, func(m bracket.Match) bool {
			return m.IsRoundRobin() || slices.Contains(rr.SubMatches, m.Num)
		})
		knockout := bracket.Filter(matches, func(m bracket.Match) bool {
			return !m.IsRoundRobin() && !slices.Contains(rr.SubMatches, m.Num)
		})
		return []section{
			{title: "Knockout", rounds: bracket.GroupRounds(knockout)},
			{title: "Round Robin", rounds: flat(group)},
		}
	default:
		third := bracket.Filter(matches, func(m bracket.Match) bool { return m.ThirdPlace })
		return []section{
			{title: "Main Bracket", rounds: bracket.GroupRounds(bracket.WithoutThirdPlace(matches)), named: true},
			{title: "Third Place", rounds: flat(third)},
		}
	}
}

// flat puts every match in round 1.
func flat(matches []bracket.Match) bracket.Rounds {
	if len(matches) == 0 {
		return bracket.Rounds{}
	}
	return bracket.Rounds{1: matches}
}

// roundsCommand creates the rounds command.
func (c *CLI) roundsCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "rounds",
		Short: "List matches by round with their state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			matches, err := c.fetchMatches(cmd.Context(), file)
			if err != nil {
				return err
			}
			return writeRounds(cmd.OutOrStdout(), matches)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the bracket from a JSON file instead of the backend")
	return cmd
}

// fetchMatches reads the match list from file or, without one, the backend.
func (c *CLI) fetchMatches(ctx context.Context, file string) ([]bracket.Match, error) {
	svc, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer svc.Close()
	return sourceFor(svc, file).FetchBracket(ctx)
}

// writeRounds prints one table per section.
func writeRounds(w io.Writer, matches []bracket.Match) error {
	fmt.Fprintln(w, StyleTitle.Render(fmt.Sprintf("%s bracket · %d matches",
		titleCase(bracket.Classify(matches).String()), len(matches))))

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	for _, sec := range sections(matches) {
		if len(sec.rounds) == 0 {
			continue
		}
		var rows [][]string
		total := sec.rounds.Count()
		for _, r := range sec.rounds.Numbers() {
			name := fmt.Sprintf("Round %d", r)
			if sec.named {
				name = bracket.RoundName(r, total)
			}
			if len(sec.rounds) == 1 {
				name = ""
			}
			ms := slices.Clone(sec.rounds[r])
			slices.SortFunc(ms, func(a, b bracket.Match) int { return a.Num - b.Num })
			for _, m := range ms {
				rows = append(rows, matchRow(name, m))
				name = ""
			}
		}

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
			Headers("Round", "Match", "Participant 1", "Participant 2", "State", "Result").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == -1 {
					return headerStyle
				}
				return lipgloss.NewStyle().Padding(0, 1)
			})

		fmt.Fprintln(w)
		fmt.Fprintln(w, StyleHighlight.Render(sec.title))
		fmt.Fprintln(w, t.Render())
	}
	return nil
}

func matchRow(round string, m bracket.Match) []string {
	if m.IsRoundRobin() {
		winner := m.Winner
		if winner == "" {
			winner = "-"
		}
		return []string{round, fmt.Sprintf("M%d", m.Num), "three-way round-robin", "", renderState(bracket.StateOf(m)), winner}
	}
	return []string{
		round,
		fmt.Sprintf("M%d", m.Num),
		participantLabel(m, 1),
		participantLabel(m, 2),
		renderState(bracket.StateOf(m)),
		results(m),
	}
}

// results formats the recorded elapsed times, "-" for a missing one.
func results(m bracket.Match) string {
	if m.Result1 == "" && m.Result2 == "" {
		return ""
	}
	r1, r2 := m.Result1, m.Result2
	if r1 == "" {
		r1 = "-"
	}
	if r2 == "" {
		r2 = "-"
	}
	return r1 + " / " + r2
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
