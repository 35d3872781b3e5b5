package layout

import (
	"fmt"

	"github.com/matzehuels/bracketeer/pkg/bracket"
)

const (
	doubleBoxWidth  = 180.0
	doubleBoxHeight = 60.0
	doubleHGap      = 80.0
	doubleVGap      = 30.0
	lowerAreaGap    = 120.0 // space between the upper extent and the lower area
)

// dropOffset pushes a lower match fed only by upper matches below its
// feeders' mean.
const dropOffset = doubleBoxHeight + 2*doubleVGap

// Double lays out a double-elimination bracket.
//
// The upper bracket is placed exactly like a single-elimination bracket
// without the enlarged final. The lower bracket gets its own drawing area
// below the upper extent: upper centers are projected into that area by the
// distance between the two area tops, and each lower match sits on the mean
// of its placed feeders' centers (winner or loser edges), plus dropOffset
// when every placed feeder is an upper match. Lower matches without any
// placed feeder are stacked at the top of the lower area.
//
// The grand final goes one column right of the rightmost segment terminal,
// centered between the upper and lower terminals, at 1.5x. Loser edges use
// the drop path, dashed red.
func Double(matches []bracket.Match, opts ...Option) (Layout, error) {
	b := newBuilder(bracket.DoubleElimination, matches, opts)

	upper := bracket.OnSide(matches, bracket.SideUpper)
	lower := bracket.OnSide(matches, bracket.SideLower)
	upperRounds := bracket.GroupRounds(upper)
	lowerRounds := bracket.GroupRounds(lower)
	column := func(r int) float64 { return margin + float64(r-1)*(doubleBoxWidth+doubleHGap) }

	// Upper bracket.
	for _, r := range upperRounds.Numbers() {
		for i, m := range upperRounds[r] {
			if r == 1 {
				y := margin + float64(i)*(doubleBoxHeight+doubleVGap)
				b.place(m, KindMatch, column(r), y, doubleBoxWidth, doubleBoxHeight, borderNormal)
				continue
			}
			feeders := bracket.OnSide(b.idx.WinnerFeeders(m.Num), bracket.SideUpper)
			if len(feeders) != 2 {
				b.skip(m.Num, fmt.Sprintf("has %d upper feeders, want 2", len(feeders)))
				continue
			}
			boxes, missing := b.positionedFeeders(feeders)
			if missing > 0 {
				b.skip(m.Num, fmt.Sprintf("%d of its feeders could not be placed", missing))
				continue
			}
			cy := (boxes[0].CenterY() + boxes[1].CenterY()) / 2
			b.place(m, KindMatch, column(r), cy-doubleBoxHeight/2, doubleBoxWidth, doubleBoxHeight, borderNormal)
		}
	}

	upperTop, upperBottom := margin, margin
	first := true
	for _, m := range upper {
		if box, ok := b.placed(m.Num); ok {
			if first {
				upperTop, upperBottom = box.Y, box.Bottom()
				first = false
			}
			upperTop = min(upperTop, box.Y)
			upperBottom = max(upperBottom, box.Bottom())
		}
	}
	lowerTop := upperBottom + lowerAreaGap
	shift := lowerTop - upperTop

	// Lower bracket.
	for _, r := range lowerRounds.Numbers() {
		stacked := 0
		for _, m := range lowerRounds[r] {
			feeders := append(b.idx.WinnerFeeders(m.Num), b.idx.LoserFeeders(m.Num)...)
			var sum float64
			n, fromUpper := 0, 0
			for _, f := range feeders {
				box, ok := b.placed(f.Num)
				if !ok {
					continue
				}
				cy := box.CenterY()
				if f.Side == bracket.SideUpper {
					cy += shift
					fromUpper++
				}
				sum += cy
				n++
			}

			var cy float64
			if n == 0 {
				cy = lowerTop + float64(stacked)*(doubleBoxHeight+doubleVGap) + doubleBoxHeight/2
				stacked++
			} else {
				cy = sum / float64(n)
				if fromUpper == n {
					cy += dropOffset
				}
			}
			b.place(m, KindMatch, column(r), cy-doubleBoxHeight/2, doubleBoxWidth, doubleBoxHeight, borderNormal)
		}
	}

	b.placeGrandFinal(matches, upper, lower, upperRounds, lowerRounds)

	for _, m := range matches {
		if m.Side != bracket.SideUpper && m.Side != bracket.SideLower && !m.GrandFinal {
			b.skip(m.Num, "not part of the upper or lower bracket")
		}
	}

	upperTotal := upperRounds.Count()
	for _, r := range upperRounds.Numbers() {
		b.label("Upper "+bracket.RoundName(r, upperTotal), column(r)+doubleBoxWidth/2, labelY, r, bracket.SideUpper)
	}
	lowerTotal := lowerRounds.Count()
	for _, r := range lowerRounds.Numbers() {
		text := fmt.Sprintf("Lower Round %d", r)
		if r == lowerTotal {
			text = "Lower Final"
		}
		b.label(text, column(r)+doubleBoxWidth/2, lowerTop-labelY, r, bracket.SideLower)
	}

	b.connectEdges(matches, func(src, dst Box, m bracket.Match) Connector {
		kind := ConnLoser
		if dstMatch, ok := b.idx.Get(dst.MatchNum); ok && m.Side == bracket.SideUpper && dstMatch.Side == bracket.SideLower {
			kind = ConnDrop
		}
		return Connector{
			From: m.Num, To: dst.MatchNum, Kind: kind,
			Points: dropPath(src.BottomCenter(), dst.LeftCenter(), doubleVGap, doubleHGap),
			Dashed: true,
			Color:  colorDrop,
		}
	})
	return b.finish()
}

func (b *builder) placeGrandFinal(matches, upper, lower []bracket.Match, upperRounds, lowerRounds bracket.Rounds) {
	var grand []bracket.Match
	for _, m := range matches {
		if m.GrandFinal {
			grand = append(grand, m)
		}
	}
	if len(grand) == 0 {
		return
	}
	for _, m := range grand[1:] {
		b.skip(m.Num, "more than one grand final")
	}

	ut, okU := b.terminal(upper, upperRounds)
	lt, okL := b.terminal(lower, lowerRounds)
	var x, cy float64
	switch {
	case okU && okL:
		x = max(ut.X, lt.X) + doubleBoxWidth + doubleHGap
		cy = (ut.CenterY() + lt.CenterY()) / 2
	case okU:
		x, cy = ut.X+doubleBoxWidth+doubleHGap, ut.CenterY()
	case okL:
		x, cy = lt.X+doubleBoxWidth+doubleHGap, lt.CenterY()
	default:
		b.skip(grand[0].Num, "no placed upper or lower final to attach to")
		return
	}

	w, h := doubleBoxWidth*finalScale, doubleBoxHeight*finalScale
	gf := b.place(grand[0], KindGrandFinal, x, cy-h/2, w, h, borderFinal)
	b.label("Grand Final", gf.CenterX(), gf.Y-labelY/2, 0, bracket.SideFinal)
}

// terminal finds the placed match of a segment whose winner edge is absent
// or leaves the segment, preferring the highest round.
func (b *builder) terminal(segment []bracket.Match, rounds bracket.Rounds) (Box, bool) {
	inSegment := make(map[int]bool, len(segment))
	for _, m := range segment {
		inSegment[m.Num] = true
	}
	roundOf := make(map[int]int, len(segment))
	for r, ms := range rounds {
		for _, m := range ms {
			roundOf[m.Num] = r
		}
	}

	var best Box
	bestRound, found := 0, false
	for _, m := range segment {
		if to, ok := m.WinnerTarget(); ok && inSegment[to] {
			continue
		}
		box, ok := b.placed(m.Num)
		if !ok {
			continue
		}
		if !found || roundOf[m.Num] > bestRound {
			best, bestRound, found = box, roundOf[m.Num], true
		}
	}
	return best, found
}
