package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bracketeer/pkg/pipeline"
)

// renderFlags holds the command-line flags for the render command.
type renderFlags struct {
	file    string // local bracket.json instead of the backend
	output  string // output file (one format) or base path (several)
	formats string // comma-separated output formats
	opts    pipeline.Options
}

// localSource reads the match list from a file and problem markup from the
// backend, so --titles works for saved brackets too.
type localSource struct {
	pipeline.FileSource
	problems pipeline.ProblemSource
}

func (s localSource) FetchProblem(ctx context.Context, id string, refresh bool) (string, error) {
	return s.problems.FetchProblem(ctx, id, refresh)
}

// sourceFor returns the file at path, or the backend when path is empty.
func sourceFor(svc *services, path string) pipeline.Source {
	if path == "" {
		return svc.client
	}
	return localSource{FileSource: pipeline.FileSource(path), problems: svc.client}
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the bracket to SVG, PNG, JSON or DOT",
		Long: `Render the current bracket from the tournament backend, or a saved
bracket.json with --file.

The bracket view lays the matches out in rounds with connectors between
them. The nodelink view draws the raw match graph with Graphviz and works
even when the bracket is too malformed to lay out.`,
		Example: `  bracketeer render
  bracketeer render -f bracket.json --format svg,png -o out/final
  bracketeer render --style handdrawn --titles --interactive
  bracketeer render --view nodelink --format dot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.opts.Formats = parseFormats(flags.formats)
			c.setCLIDefaults(&flags.opts)
			if err := flags.opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), &flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.file, "file", "f", "", "read the bracket from a JSON file instead of the backend")
	f.StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (several formats)")
	f.StringVar(&flags.formats, "format", "", "output format(s): svg (default), png, json, dot (comma-separated)")
	f.StringVar(&flags.opts.View, "view", pipeline.DefaultView, "visualization: bracket, nodelink")
	f.StringVar(&flags.opts.Style, "style", "", "visual style: simple, handdrawn (default from config)")
	f.Uint64Var(&flags.opts.Seed, "seed", pipeline.DefaultSeed, "random seed for the hand-drawn style")
	f.Float64Var(&flags.opts.Scale, "scale", 0, "PNG pixel scale (default from config)")
	f.BoolVar(&flags.opts.Strict, "strict", false, "fail on malformed matches instead of skipping them")
	f.BoolVar(&flags.opts.Titles, "titles", false, "fetch problem titles for the third box line")
	f.BoolVar(&flags.opts.Interactive, "interactive", false, "highlight a participant's path on hover (SVG)")
	f.BoolVar(&flags.opts.Detailed, "detailed", false, "show state and results in nodelink labels")
	f.BoolVar(&flags.opts.Refresh, "refresh", false, "bypass the artifact and problem caches")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, flags *renderFlags) error {
	logger := loggerFromContext(ctx)

	svc, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	src := sourceFor(svc, flags.file)
	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Rendering bracket...")
	spinner.Start()
	result, err := svc.runner.Execute(ctx, src, flags.opts)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done("Rendered bracket")

	base := basePath(flags.output, flags.file)
	var written []string
	for _, format := range flags.opts.Formats {
		path := outputPath(flags.output, base, format, len(flags.opts.Formats))
		if flags.file != "" && filepath.Clean(path) == filepath.Clean(flags.file) {
			path = base + ".layout." + format
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	printSuccess("Rendered %s bracket", result.Topology)
	printRenderStats(result.Stats.MatchCount, result.Stats.BoxCount, result.Stats.Skipped, result.CacheInfo.RenderHit)
	for _, path := range written {
		printFile(path)
	}
	if result.Stats.Skipped > 0 && !flags.opts.Strict {
		printWarning("%d malformed matches were left out; run bracketeer validate for details", result.Stats.Skipped)
	}
	return nil
}

// basePath derives the base output path. Without --output it is the input
// file name without extension, or "bracket" for the backend. A known format
// extension on --output is stripped.
func basePath(output, input string) string {
	if output == "" {
		if input == "" {
			return defaultOutputBase
		}
		return strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	for _, formats := range pipeline.ValidFormats {
		if formats[ext] {
			return strings.TrimSuffix(output, "."+ext)
		}
	}
	return output
}

// outputPath returns where one format is written. A single format with an
// explicit --output is written to exactly that path.
func outputPath(output, base, format string, count int) string {
	if count == 1 && output != "" && filepath.Ext(output) != "" {
		return output
	}
	return base + "." + format
}
