// Package handdrawn provides a sketch-like bracket style.
//
// Box outlines are quadratic paths whose control points are nudged by a
// seeded generator, connectors bow slightly along long runs, and box text
// is tilted by a small stable angle. A pencil displacement filter roughens
// the outlines further.
//
// # Reproducible Randomness
//
// Every shape draws from its own stream derived from the style seed and the
// shape's identifier:
//
//	style := handdrawn.New(42)
//	svg := sink.RenderSVG(l, sink.WithStyle(style))
//
// Rendering the same layout with the same seed always yields the same SVG,
// which keeps cached renders valid.
package handdrawn
