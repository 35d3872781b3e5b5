package sink

import (
	"encoding/json"

	"github.com/matzehuels/bracketeer/pkg/layout"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	style string
	seed  uint64
}

// WithJSONStyle records the style name (e.g., "simple", "handdrawn") in the
// output so that a client can render the same look.
func WithJSONStyle(s string) JSONOption { return func(r *jsonRenderer) { r.style = s } }

// WithJSONSeed records the handdrawn seed.
func WithJSONSeed(seed uint64) JSONOption { return func(r *jsonRenderer) { r.seed = seed } }

type jsonOutput struct {
	Topology   string          `json:"topology"`
	Width      float64         `json:"width"`
	Height     float64         `json:"height"`
	Style      string          `json:"style,omitempty"`
	Seed       uint64          `json:"seed,omitempty"`
	Boxes      []jsonBox       `json:"boxes"`
	Connectors []jsonConnector `json:"connectors"`
	Labels     []jsonLabel     `json:"labels,omitempty"`
	Skipped    []jsonSkip      `json:"skipped,omitempty"`
}

type jsonBox struct {
	ID       string     `json:"id"`
	MatchNum int        `json:"match_num,omitempty"`
	Kind     string     `json:"kind"`
	State    string     `json:"state,omitempty"`
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
	Width    float64    `json:"width"`
	Height   float64    `json:"height"`
	Border   float64    `json:"border"`
	Fill     string     `json:"fill"`
	Lines    []jsonLine `json:"lines"`
}

type jsonLine struct {
	Role   string `json:"role"`
	Text   string `json:"text"`
	House  string `json:"house,omitempty"`
	Result string `json:"result,omitempty"`
	Winner bool   `json:"winner,omitempty"`
}

type jsonConnector struct {
	From   int          `json:"from"`
	To     int          `json:"to"`
	Kind   string       `json:"kind"`
	Points [][2]float64 `json:"points"`
	Dashed bool         `json:"dashed,omitempty"`
	Color  string       `json:"color"`
}

type jsonLabel struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type jsonSkip struct {
	MatchNum int    `json:"match_num"`
	Reason   string `json:"reason"`
}

// RenderJSON exports the drawing instruction list as pretty-printed JSON,
// for clients that draw the bracket themselves.
//
// Boxes are ordered by match number with the champion last. RenderJSON does
// not modify l and is safe to call concurrently.
func RenderJSON(l layout.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Topology:   l.Topology.String(),
		Width:      l.FrameWidth,
		Height:     l.FrameHeight,
		Style:      r.style,
		Seed:       r.seed,
		Boxes:      buildJSONBoxes(l),
		Connectors: buildJSONConnectors(l),
	}
	for _, lb := range l.Labels {
		out.Labels = append(out.Labels, jsonLabel{Text: lb.Text, X: lb.X, Y: lb.Y})
	}
	for _, s := range l.Skipped {
		out.Skipped = append(out.Skipped, jsonSkip{MatchNum: s.MatchNum, Reason: s.Reason})
	}
	return json.MarshalIndent(out, "", "  ")
}

func buildJSONBoxes(l layout.Layout) []jsonBox {
	ordered := l.OrderedBoxes()
	boxes := make([]jsonBox, 0, len(ordered))
	for _, b := range ordered {
		jb := jsonBox{
			ID:     boxID(b),
			Kind:   string(b.Kind),
			X:      b.X,
			Y:      b.Y,
			Width:  b.W,
			Height: b.H,
			Border: b.Border,
			Fill:   b.Fill,
			Lines:  make([]jsonLine, len(b.Lines)),
		}
		if b.Kind != layout.KindChampion {
			jb.MatchNum = b.MatchNum
			jb.State = b.State.String()
		}
		for i, ln := range b.Lines {
			jb.Lines[i] = jsonLine{Role: string(ln.Role), Text: ln.Text, House: ln.House, Result: ln.Result, Winner: ln.Winner}
		}
		boxes = append(boxes, jb)
	}
	return boxes
}

func buildJSONConnectors(l layout.Layout) []jsonConnector {
	out := make([]jsonConnector, len(l.Connectors))
	for i, c := range l.Connectors {
		pts := make([][2]float64, len(c.Points))
		for j, p := range c.Points {
			pts[j] = [2]float64{p.X, p.Y}
		}
		out[i] = jsonConnector{From: c.From, To: c.To, Kind: string(c.Kind), Points: pts, Dashed: c.Dashed, Color: c.Color}
	}
	return out
}
