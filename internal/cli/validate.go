package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bracketeer/pkg/bracket"
	"github.com/matzehuels/bracketeer/pkg/errors"
)

// validateCommand creates the validate command. It lists every structural
// problem and fails when there is at least one.
func (c *CLI) validateCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the bracket's structure",
		Long: `Check that every winner and loser link points to an existing match,
that round-robin sub-matches exist, and that winner links do not form a
cycle. Matches failing these checks are skipped by render unless --strict
is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			matches, err := c.fetchMatches(cmd.Context(), file)
			if err != nil {
				return err
			}

			problems := bracket.Problems(matches)
			topology := bracket.Classify(matches)
			if len(problems) == 0 {
				rounds := bracket.GroupRounds(bracket.WithoutThirdPlace(matches)).Count()
				printSuccess("Valid %s bracket", topology)
				printDetail("%d matches · %d rounds", len(matches), rounds)
				return nil
			}

			printError("%s bracket has %d problems", topology, len(problems))
			for _, p := range problems {
				printDetail("%s", p)
			}
			return errors.New(errors.ErrCodeMalformedTopology, "%s", pluralize(len(problems), "problem"))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the bracket from a JSON file instead of the backend")
	return cmd
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
