package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/bracketeer/pkg/bracket"
	"github.com/matzehuels/bracketeer/pkg/errors"
)

// createCommand creates the create command, which asks the backend to
// generate a bracket from its participant list.
func (c *CLI) createCommand() *cobra.Command {
	var save string

	cmd := &cobra.Command{
		Use:       "create single|double|hybrid",
		Short:     "Generate a new bracket on the backend",
		ValidArgs: []string{"single", "double", "hybrid"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := bracket.ParseTopology(args[0])
			if !ok {
				return errors.New(errors.ErrCodeInvalidInput, "unknown bracket kind %q", args[0])
			}

			ctx := cmd.Context()
			svc, err := c.connect(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			spinner := newSpinnerWithContext(ctx, "Creating "+kind.String()+" bracket...")
			spinner.Start()
			matches, err := svc.client.CreateBracket(ctx, kind)
			spinner.Stop()
			if err != nil {
				return err
			}

			printSuccess("Created %s bracket with %d matches", kind, len(matches))
			if save != "" {
				if err := bracket.WriteFile(save, matches); err != nil {
					return err
				}
				printFile(save)
			}
			printNextStep("Render it", "bracketeer render")
			return nil
		},
	}
	cmd.Flags().StringVarP(&save, "save", "o", "", "also save the generated match list to a JSON file")
	return cmd
}
