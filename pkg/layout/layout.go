package layout

import (
	"cmp"
	"slices"
	"strings"

	"github.com/matzehuels/bracketeer/pkg/bracket"
	"github.com/matzehuels/bracketeer/pkg/errors"
)

const (
	margin = 50.0
	labelY = 25.0

	fillBox      = "#f9f9f9"
	fillChampion = "#ffd700"

	borderNormal = 2.0
	borderFinal  = 4.0

	finalScale = 1.5
)

// Layout is the drawing instruction list for one bracket: positioned boxes,
// connector polylines and round labels. It is produced fresh by every
// layout pass and holds no references to the input list.
type Layout struct {
	Topology    bracket.Topology
	FrameWidth  float64
	FrameHeight float64
	Boxes       map[int]Box // keyed by match number
	Extras      []Box       // boxes not tied to a single match (champion)
	Connectors  []Connector
	Labels      []Label
	Skipped     []Skip // matches left out because their feeders were unusable
}

// Box returns the box placed for a match.
func (l Layout) Box(num int) (Box, bool) {
	b, ok := l.Boxes[num]
	return b, ok
}

// OrderedBoxes returns match boxes sorted by match number followed by the
// extra boxes, giving sinks a stable drawing order.
func (l Layout) OrderedBoxes() []Box {
	out := make([]Box, 0, len(l.Boxes)+len(l.Extras))
	for _, b := range l.Boxes {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b Box) int { return cmp.Compare(a.MatchNum, b.MatchNum) })
	return append(out, l.Extras...)
}

// Option configures a layout pass.
type Option func(*config)

type config struct {
	strict bool
	titles map[string]string
}

// WithStrict turns skipped matches into an [errors.ErrCodeMalformedTopology]
// error instead of leaving them out silently.
func WithStrict() Option { return func(c *config) { c.strict = true } }

// WithProblemTitles supplies display titles keyed by problem identifier.
// Boxes whose problem has a title get it as a third text line.
func WithProblemTitles(titles map[string]string) Option {
	return func(c *config) { c.titles = titles }
}

// Build classifies matches and dispatches to [Single], [Double] or [Hybrid].
// An empty list cannot be classified and is reported as malformed.
func Build(matches []bracket.Match, opts ...Option) (Layout, error) {
	switch topo := bracket.Classify(matches); topo {
	case bracket.SingleElimination:
		return Single(matches, opts...)
	case bracket.DoubleElimination:
		return Double(matches, opts...)
	case bracket.Hybrid:
		return Hybrid(matches, opts...)
	default:
		return Layout{}, errors.New(errors.ErrCodeMalformedTopology, "cannot lay out an empty match list")
	}
}

// builder accumulates one layout pass.
type builder struct {
	l   Layout
	cfg config
	idx *bracket.Index
}

func newBuilder(topo bracket.Topology, matches []bracket.Match, opts []Option) *builder {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return &builder{
		l:   Layout{Topology: topo, Boxes: make(map[int]Box, len(matches))},
		cfg: cfg,
		idx: bracket.NewIndex(matches),
	}
}

func (b *builder) place(m bracket.Match, kind Kind, x, y, w, h, border float64) Box {
	box := Box{
		MatchNum: m.Num,
		Kind:     kind,
		X:        x, Y: y,
		W: w, H: h,
		Border: border,
		Fill:   fillBox,
		State:  bracket.StateOf(m),
		Lines:  b.lines(m),
	}
	b.l.Boxes[m.Num] = box
	return box
}

func (b *builder) placed(num int) (Box, bool) {
	box, ok := b.l.Boxes[num]
	return box, ok
}

func (b *builder) skip(num int, reason string) {
	b.l.Skipped = append(b.l.Skipped, Skip{MatchNum: num, Reason: reason})
}

func (b *builder) label(text string, x, y float64, round int, side bracket.Side) {
	b.l.Labels = append(b.l.Labels, Label{Text: text, X: x, Y: y, Round: round, Side: side})
}

func (b *builder) connect(c Connector) {
	b.l.Connectors = append(b.l.Connectors, c)
}

// lines builds the box text: both participants with their results and, when
// known, the problem title.
func (b *builder) lines(m bracket.Match) []Line {
	winner, decided := bracket.WinnerOf(m)
	out := make([]Line, 0, 3)
	for slot := 1; slot <= 2; slot++ {
		p := m.Participant(slot)
		out = append(out, Line{
			Role:   RoleParticipant,
			Text:   p.Label(),
			House:  p.House(),
			Result: m.Result(slot),
			Winner: decided && winner == slot,
		})
	}
	if title, ok := b.cfg.titles[m.Problem]; ok && title != "" {
		out = append(out, Line{Role: RoleProblem, Text: title})
	}
	return out
}

// positionedFeeders returns the placed boxes of feeders, in list order, and
// the number of feeders that have no box yet.
func (b *builder) positionedFeeders(feeders []bracket.Match) (boxes []Box, missing int) {
	for _, f := range feeders {
		if box, ok := b.placed(f.Num); ok {
			boxes = append(boxes, box)
		} else {
			missing++
		}
	}
	return boxes, missing
}

// finish sizes the frame to the placed content and applies strict mode.
func (b *builder) finish() (Layout, error) {
	var maxX, maxY float64
	grow := func(x, y float64) {
		maxX = max(maxX, x)
		maxY = max(maxY, y)
	}
	for _, box := range b.l.Boxes {
		grow(box.Right(), box.Bottom())
	}
	for _, box := range b.l.Extras {
		grow(box.Right(), box.Bottom())
	}
	for _, c := range b.l.Connectors {
		for _, p := range c.Points {
			grow(p.X, p.Y)
		}
	}
	for _, lb := range b.l.Labels {
		grow(lb.X, lb.Y)
	}
	b.l.FrameWidth = maxX + margin
	b.l.FrameHeight = maxY + margin

	if b.cfg.strict && len(b.l.Skipped) > 0 {
		reasons := make([]string, len(b.l.Skipped))
		for i, s := range b.l.Skipped {
			reasons[i] = s.String()
		}
		return b.l, errors.New(errors.ErrCodeMalformedTopology, "%d match(es) could not be placed: %s",
			len(b.l.Skipped), strings.Join(reasons, "; "))
	}
	return b.l, nil
}

// connectEdges draws winner and loser edges between placed boxes, in list
// order. Loser edges are built by loser when it is non-nil, otherwise they
// use a dashed elbow.
func (b *builder) connectEdges(matches []bracket.Match, loser func(src, dst Box, m bracket.Match) Connector) {
	for _, m := range matches {
		src, ok := b.placed(m.Num)
		if !ok {
			continue
		}
		if to, ok := m.WinnerTarget(); ok {
			if dst, ok := b.placed(to); ok {
				b.connect(Connector{
					From: m.Num, To: to, Kind: ConnWinner,
					Points: elbow(src.RightCenter(), dst.LeftCenter()),
					Color:  colorEdge,
				})
			}
		}
		if to, ok := m.LoserTarget(); ok {
			if dst, ok := b.placed(to); ok {
				if loser != nil {
					b.connect(loser(src, dst, m))
				} else {
					b.connect(Connector{
						From: m.Num, To: to, Kind: ConnLoser,
						Points: elbow(src.RightCenter(), dst.LeftCenter()),
						Dashed: true,
						Color:  colorEdge,
					})
				}
			}
		}
	}
}
