// Package render groups the presentation side of bracketeer.
//
// # Overview
//
// Layouts computed by package layout are pure geometry. The subpackages
// here turn them into files:
//
//   - [sink]: SVG, JSON and PNG output of a layout
//   - [styles]: the look of boxes, connectors and text ([styles.Simple],
//     [handdrawn])
//   - [nodelink]: a Graphviz diagram of the raw match graph, useful for
//     checking backend wiring
//
// A typical render:
//
//	l, err := layout.Build(matches)
//	svg := sink.RenderSVG(l, sink.WithStyle(handdrawn.New(42)))
//	png, err := sink.RenderPNG(l, sink.WithScale(2))
//
// [sink]: github.com/matzehuels/bracketeer/pkg/render/sink
// [styles]: github.com/matzehuels/bracketeer/pkg/render/styles
// [styles.Simple]: github.com/matzehuels/bracketeer/pkg/render/styles.Simple
// [handdrawn]: github.com/matzehuels/bracketeer/pkg/render/styles/handdrawn
// [nodelink]: github.com/matzehuels/bracketeer/pkg/render/nodelink
package render
