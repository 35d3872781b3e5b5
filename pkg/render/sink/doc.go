// Package sink provides output format renderers for bracket layouts.
//
// # Overview
//
// A "sink" transforms a computed [layout.Layout] into a final output format:
//
//   - SVG: vector drawing with an optional hover script
//   - JSON: the drawing instruction list for clients that draw themselves
//   - PNG: raster output drawn with fogleman/gg
//
// # SVG Output
//
// [RenderSVG] draws labels, connectors, boxes and box text in that order
// through a [styles.Style]:
//
//	svg := sink.RenderSVG(l,
//	    sink.WithStyle(handdrawn.New(seed)),
//	    sink.WithInteraction(),
//	)
//
// Box ids are "match-N" and "champion". Connectors carry data-from and
// data-to attributes with the same ids, or "roundrobin-N" for the
// round-robin center point.
//
// # JSON Output
//
// [RenderJSON] keeps match numbers, line roles and elapsed results
// separate so a client can restyle the bracket without parsing text.
//
// # PNG Output
//
// [RenderPNG] rasterizes in-process and needs no external tools:
//
//	png, err := sink.RenderPNG(l, sink.WithScale(2))
//
// [layout.Layout]: github.com/matzehuels/bracketeer/pkg/layout.Layout
// [styles.Style]: github.com/matzehuels/bracketeer/pkg/render/styles.Style
package sink
