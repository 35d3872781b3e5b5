package pipeline

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/bracketeer/pkg/bracket"
	"github.com/matzehuels/bracketeer/pkg/observability"
	"github.com/matzehuels/bracketeer/pkg/workflow"
)

// Source supplies a match list. *arena.Client and [FileSource] implement it.
type Source interface {
	FetchBracket(ctx context.Context) ([]bracket.Match, error)
}

// ProblemSource supplies problem markup. When the Source passed to
// [Runner.Execute] also implements it, Options.Titles fetches a display
// title for every problem in the bracket.
type ProblemSource interface {
	FetchProblem(ctx context.Context, id string, refresh bool) (string, error)
}

// FileSource reads a match list saved as JSON, in the backend's shape.
type FileSource string

// FetchBracket reads and decodes the file.
func (f FileSource) FetchBracket(context.Context) ([]bracket.Match, error) {
	return bracket.ReadFile(string(f))
}

// String returns the file path.
func (f FileSource) String() string { return string(f) }

// sourceName identifies src in hooks and logs.
func sourceName(src Source) string {
	switch s := src.(type) {
	case interface{ BaseURL() string }:
		return s.BaseURL()
	case interface{ String() string }:
		return s.String()
	}
	return "source"
}

// Fetch reads the match list from src.
func Fetch(ctx context.Context, src Source) ([]bracket.Match, error) {
	name := sourceName(src)
	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, name)
	start := time.Now()

	matches, err := src.FetchBracket(ctx)
	hooks.OnFetchComplete(ctx, name, len(matches), time.Since(start), err)
	return matches, err
}

// FetchTitles fetches the markup of every distinct problem in matches and
// extracts its heading. Problems that fail to load or have no heading are
// left out; a missing title never fails a render.
func FetchTitles(ctx context.Context, ps ProblemSource, matches []bracket.Match, refresh bool, logger *log.Logger) map[string]string {
	ids := problemIDs(matches)
	if len(ids) == 0 {
		return nil
	}

	var (
		mu     sync.Mutex
		titles = make(map[string]string, len(ids))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultTitleWorkers)
	for _, id := range ids {
		g.Go(func() error {
			markup, err := ps.FetchProblem(gctx, id, refresh)
			if err != nil {
				logger.Debug("problem title unavailable", "problem", id, "error", err)
				return nil
			}
			if title := workflow.ProblemTitle(markup); title != "" {
				mu.Lock()
				titles[id] = title
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return titles
}

func problemIDs(matches []bracket.Match) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, m := range matches {
		if m.Problem == "" || seen[m.Problem] {
			continue
		}
		seen[m.Problem] = true
		ids = append(ids, m.Problem)
	}
	sort.Strings(ids)
	return ids
}
