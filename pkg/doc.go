// Package pkg provides the core libraries for bracketeer, a tournament
// bracket layout engine and match runner.
//
// # Overview
//
// Bracketeer reads the flat match list a tournament backend serves,
// recognizes which kind of bracket it describes (single elimination,
// double elimination or a knockout feeding a three-way round-robin) and
// places every match on a canvas. The same match list drives the match
// workflow: starting a match, recording who finished first and resetting it.
//
// # Package Organization
//
// ## Domain
//
// [bracket] - The match model, bracket classification, round derivation,
// match state (not ready, ready, in progress, complete) and winner
// resolution. Everything else builds on these types.
//
// [layout] - Pure geometry. Builds match boxes and connector paths for each
// topology. No I/O, no styling.
//
// [workflow] - The detail view of one match: countdown, start, complete,
// reset and a live elapsed-time clock. Never owns match state.
//
// ## Rendering
//
// [render] - Output of a layout:
//
//   - [render/sink]: SVG, PNG and JSON
//   - [render/styles]: simple and hand-drawn looks, team colours
//   - [render/nodelink]: Graphviz diagram of the raw match graph
//
// ## Infrastructure
//
// [pipeline] - Fetch, validate, lay out and render in one call. Shared by
// the CLI and the HTTP server so both produce identical artifacts.
//
// [integrations] - HTTP client plumbing (retries, rate limiting, caching)
// and the [integrations/arena] client for the tournament backend.
//
// [cache] - File, Redis, MongoDB and no-op caches for problem markup and
// rendered artifacts.
//
// [config] - TOML file, environment and .env layering.
//
// [errors] - Coded errors with user-facing messages.
//
// [observability] - Hooks for backend requests, renders and match actions.
//
// # Data Flow
//
//	Tournament backend (JSON match list)
//	     ↓
//	[integrations/arena] fetch
//	     ↓
//	[bracket] decode, validate, classify
//	     ↓
//	[layout] boxes and connectors
//	     ↓
//	[render/sink] SVG / PNG / JSON
//
// # Common Workflows
//
// Render a bracket file:
//
//	matches, _ := bracket.ReadFile("bracket.json")
//	l, _ := layout.Build(matches)
//	svg := sink.RenderSVG(l, sink.WithStyle(handdrawn.New(42)))
//
// Run a match:
//
//	client := arena.NewClient(arena.DefaultURL, nil, time.Hour)
//	m, _ := client.FetchMatch(ctx, 3)
//	view, _ := workflow.Open(ctx, client, m, workflow.WithCountdown(3))
//	defer view.Close()
//	_ = view.Start(ctx)
//
// [bracket]: https://pkg.go.dev/github.com/matzehuels/bracketeer/pkg/bracket
// [layout]: https://pkg.go.dev/github.com/matzehuels/bracketeer/pkg/layout
// [workflow]: https://pkg.go.dev/github.com/matzehuels/bracketeer/pkg/workflow
// [render]: https://pkg.go.dev/github.com/matzehuels/bracketeer/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/bracketeer/pkg/render/sink
// [render/styles]: https://pkg.go.dev/github.com/matzehuels/bracketeer/pkg/render/styles
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/bracketeer/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/bracketeer/pkg/pipeline
// [integrations]: https://pkg.go.dev/github.com/matzehuels/bracketeer/pkg/integrations
// [integrations/arena]: https://pkg.go.dev/github.com/matzehuels/bracketeer/pkg/integrations/arena
// [cache]: https://pkg.go.dev/github.com/matzehuels/bracketeer/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/bracketeer/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/bracketeer/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/bracketeer/pkg/observability
package pkg
