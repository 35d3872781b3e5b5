package layout

import (
	"fmt"

	"github.com/matzehuels/bracketeer/pkg/bracket"
)

// Kind identifies what a box represents.
type Kind string

const (
	KindMatch      Kind = "match"
	KindFinal      Kind = "final"
	KindThirdPlace Kind = "third_place"
	KindGrandFinal Kind = "grand_final"
	KindSubMatch   Kind = "sub_match"
	KindChampion   Kind = "champion"
)

// LineRole says what a line of box text holds.
type LineRole string

const (
	RoleParticipant LineRole = "participant"
	RoleProblem     LineRole = "problem"
	RoleCaption     LineRole = "caption"
)

// Line is one line of box text.
type Line struct {
	Role   LineRole
	Text   string
	House  string // team code used for the background colour
	Result string // recorded elapsed time, if any
	Winner bool   // set on the winning side of a decided match
}

// String formats the line the way it is printed inside a box.
func (l Line) String() string {
	if l.Result == "" {
		return l.Text
	}
	return fmt.Sprintf("%s (%s)", l.Text, l.Result)
}

// Point is a position in layout units (pixels in SVG output).
type Point struct {
	X, Y float64
}

// Box is a positioned rectangle for a match, or for the champion.
// X and Y are the top-left corner; Y grows downward.
type Box struct {
	MatchNum int
	Kind     Kind
	X, Y     float64
	W, H     float64
	Border   float64
	Fill     string
	State    bracket.State
	Lines    []Line
}

// Right returns the x coordinate of the right edge.
func (b Box) Right() float64 { return b.X + b.W }

// Bottom returns the y coordinate of the bottom edge.
func (b Box) Bottom() float64 { return b.Y + b.H }

// CenterX returns the horizontal center.
func (b Box) CenterX() float64 { return b.X + b.W/2 }

// CenterY returns the vertical center.
func (b Box) CenterY() float64 { return b.Y + b.H/2 }

func (b Box) LeftCenter() Point   { return Point{b.X, b.CenterY()} }
func (b Box) RightCenter() Point  { return Point{b.Right(), b.CenterY()} }
func (b Box) TopCenter() Point    { return Point{b.CenterX(), b.Y} }
func (b Box) BottomCenter() Point { return Point{b.CenterX(), b.Bottom()} }

// Label is a free-standing caption such as a round name.
type Label struct {
	Text  string
	X, Y  float64 // anchor point; text is centered on X
	Round int
	Side  bracket.Side
}

// Skip records a match the layout could not place.
type Skip struct {
	MatchNum int
	Reason   string
}

func (s Skip) String() string { return fmt.Sprintf("match %d: %s", s.MatchNum, s.Reason) }
