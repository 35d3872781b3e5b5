// Package styles defines how bracket drawings look.
//
// A [Style] receives flattened boxes, connectors and labels and writes SVG
// fragments into a buffer. The sink package converts a layout into these
// values, so styles never depend on bracket semantics.
//
// Two styles ship with bracketeer:
//
//   - [Simple]: flat rounded boxes, blue outlines, house-coloured rows
//   - handdrawn.New: sketchy outlines with seeded wobble
//
// Text helpers ([FontSize], [Baseline], [TruncateLine]) are shared so that
// every style, and the PNG sink, place lines identically.
package styles
