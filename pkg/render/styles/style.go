package styles

import "bytes"

// Style defines the visual appearance of a rendered bracket.
// Implementations control how boxes, connectors, text and round labels are drawn.
type Style interface {
	// RenderDefs writes SVG <defs> content (filters, fonts, gradients).
	RenderDefs(buf *bytes.Buffer)
	// RenderBox writes the SVG for a single match or champion box.
	RenderBox(buf *bytes.Buffer, b Box)
	// RenderConnector writes the SVG for a connector polyline.
	RenderConnector(buf *bytes.Buffer, c Connector)
	// RenderText writes the SVG for the lines inside a box.
	RenderText(buf *bytes.Buffer, b Box)
	// RenderLabel writes the SVG for a free-standing round label.
	RenderLabel(buf *bytes.Buffer, l Label)
}

// Box contains all data needed to render a single box.
type Box struct {
	ID         string  // DOM identifier, e.g. "match-7" or "champion"
	Kind       string  // layout kind: match, final, grand_final, champion, ...
	State      string  // match state, empty for the champion
	X, Y, W, H float64 // Position and dimensions
	CX, CY     float64 // Center coordinates
	Border     float64 // Stroke width
	Fill       string  // Fill colour
	Lines      []Line  // Text lines, top to bottom
}

// Line is one line of text inside a box.
type Line struct {
	Text    string // Display text including any elapsed time
	House   string // Team code; selects a background colour
	Winner  bool   // Drawn bold
	Muted   bool   // Secondary line such as a problem title
	Caption bool   // Centered caption (champion box)
}

// Point is a connector vertex.
type Point struct {
	X, Y float64
}

// Connector contains the polyline for one edge between boxes.
type Connector struct {
	FromID, ToID string
	Kind         string
	Points       []Point
	Dashed       bool
	Color        string
}

// Label is a round caption centered on X.
type Label struct {
	Text string
	X, Y float64
}
