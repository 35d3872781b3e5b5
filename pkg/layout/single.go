package layout

import (
	"fmt"

	"github.com/matzehuels/bracketeer/pkg/bracket"
)

const (
	singleBoxWidth  = 180.0
	singleBoxHeight = 60.0
	singlePitch     = 220.0 // horizontal distance between round columns
	singleGap       = 40.0  // vertical gap between stacked boxes
	thirdPlaceGap   = 80.0
)

// Single lays out a single-elimination bracket.
//
// Round 1 is stacked top to bottom in list order. Every later match is
// centered on the midpoint of its two feeders; a match without exactly two
// placed feeders is skipped along with its connectors. The final (the match
// with no winner target) is drawn at 1.5x with a heavier border, still
// centered on its feeders. A third-place match hangs below the final.
func Single(matches []bracket.Match, opts ...Option) (Layout, error) {
	b := newBuilder(bracket.SingleElimination, matches, opts)

	pool := bracket.WithoutThirdPlace(matches)
	rounds := bracket.GroupRounds(pool)
	total := rounds.Count()
	finalNum, hasFinal := findFinal(pool)
	isFinal := func(m bracket.Match) bool { return hasFinal && m.Num == finalNum }

	for i, m := range rounds[1] {
		y := margin + float64(i)*(singleBoxHeight+singleGap)
		if isFinal(m) {
			b.place(m, KindFinal, margin, y, singleBoxWidth*finalScale, singleBoxHeight*finalScale, borderFinal)
			continue
		}
		b.place(m, KindMatch, margin, y, singleBoxWidth, singleBoxHeight, borderNormal)
	}

	for r := 2; r <= total; r++ {
		x := margin + float64(r-1)*singlePitch
		for _, m := range rounds[r] {
			feeders := b.idx.WinnerFeeders(m.Num)
			if len(feeders) != 2 {
				b.skip(m.Num, fmt.Sprintf("has %d feeders, want 2", len(feeders)))
				continue
			}
			boxes, missing := b.positionedFeeders(feeders)
			if missing > 0 {
				b.skip(m.Num, fmt.Sprintf("%d of its feeders could not be placed", missing))
				continue
			}
			cy := (boxes[0].CenterY() + boxes[1].CenterY()) / 2

			kind, w, h, border := KindMatch, singleBoxWidth, singleBoxHeight, borderNormal
			if isFinal(m) {
				kind, w, h, border = KindFinal, w*finalScale, h*finalScale, borderFinal
			}
			b.place(m, kind, x, cy-h/2, w, h, border)
		}
	}

	b.placeThirdPlace(matches, finalNum, hasFinal)

	for _, r := range rounds.Numbers() {
		x := margin + float64(r-1)*singlePitch + singleBoxWidth/2
		b.label(bracket.RoundName(r, total), x, labelY, r, bracket.SideNone)
	}

	b.connectEdges(matches, nil)
	return b.finish()
}

// findFinal returns the first match with no winner target.
func findFinal(pool []bracket.Match) (int, bool) {
	for _, m := range pool {
		if _, ok := m.WinnerTarget(); !ok {
			return m.Num, true
		}
	}
	return 0, false
}

func (b *builder) placeThirdPlace(matches []bracket.Match, finalNum int, hasFinal bool) {
	var final Box
	ok := false
	if hasFinal {
		final, ok = b.placed(finalNum)
	}
	y := final.Bottom() + thirdPlaceGap
	for _, m := range matches {
		if !m.ThirdPlace {
			continue
		}
		if !ok {
			b.skip(m.Num, "third-place match has no placed final to attach to")
			continue
		}
		b.place(m, KindThirdPlace, final.X, y, singleBoxWidth, singleBoxHeight, borderNormal)
		y += singleBoxHeight + singleGap
	}
}
