// Package layout computes bracket diagrams from a flat match list.
//
// # Overview
//
// The layout engine is the geometric core of bracketeer. It receives the
// complete match list once, classifies it with [bracket.Classify] and
// dispatches to one of three algorithms:
//
//   - [Single]: single elimination with an enlarged final and an optional
//     third-place match.
//   - [Double]: upper and lower brackets joined by a grand final.
//   - [Hybrid]: a knockout bracket feeding a three-way round-robin.
//
// [Build] performs the dispatch. Each algorithm returns a [Layout], an
// explicit drawing instruction list of positioned [Box] values, [Connector]
// polylines and round [Label] captions. Rendering is a separate step; see
// the sink package.
//
// # Coordinates
//
// Coordinates are in user units with the origin in the top-left corner and
// Y growing downward, matching SVG. A box's X and Y are its top-left corner.
//
// # Midpoint Invariant
//
// In single elimination and in the upper bracket of double elimination,
// every match after round 1 is vertically centered on the mean of its two
// feeders' centers. The enlarged final keeps this property: it is scaled
// first and then re-centered.
//
// # Malformed Input
//
// A match that cannot be placed (for example a later-round match with one
// feeder) is left out of the box map and of all connectors, and recorded in
// [Layout.Skipped]. Pass [WithStrict] to turn any skip into an error:
//
//	l, err := layout.Build(matches, layout.WithStrict())
//	if errors.Is(err, errors.ErrCodeMalformedTopology) {
//	    // report and keep the previous diagram
//	}
//
// # Determinism
//
// A layout pass only reads its input. Laying out the same list twice yields
// identical boxes, connectors and labels.
//
// [bracket.Classify]: github.com/matzehuels/bracketeer/pkg/bracket.Classify
package layout
