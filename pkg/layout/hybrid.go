package layout

import (
	"github.com/matzehuels/bracketeer/pkg/bracket"
)

const (
	hybridBoxWidth  = 150.0
	hybridBoxHeight = 60.0
	hybridVGap      = 40.0
	hybridHGap      = 60.0

	championWidthScale  = 1.5
	championHeightScale = 1.2

	// ChampionPlaceholder labels the champion box until a winner is recorded.
	ChampionPlaceholder = "CHAMPION"
)

// Hybrid lays out a knockout bracket that ends in a three-way round-robin.
//
// The round-robin match and its sub-matches are set aside. Round 1 is every
// remaining match that no other regular match feeds; each following round
// is the set of regular winner targets of the one before. Rounds run left to
// right, each stack centered on one horizontal axis.
//
// The round-robin match has no box of its own. It is a center point two gaps
// right of the regular bracket, with its three sub-matches at fixed offsets
// around it (top, bottom-left, bottom-right) and the champion box below.
func Hybrid(matches []bracket.Match, opts ...Option) (Layout, error) {
	b := newBuilder(bracket.Hybrid, matches, opts)

	rr, _ := b.idx.RoundRobin()
	special := map[int]bool{rr.Num: true}
	for _, s := range rr.SubMatches {
		special[s] = true
	}
	for _, m := range matches {
		if m.IsRoundRobin() && m.Num != rr.Num {
			b.skip(m.Num, "more than one round-robin match")
			special[m.Num] = true
		}
	}
	regular := bracket.Filter(matches, func(m bracket.Match) bool { return !special[m.Num] })

	rounds := hybridRounds(b.idx, regular, special)
	inRound := make(map[int]bool, len(regular))
	for _, round := range rounds {
		for _, m := range round {
			inRound[m.Num] = true
		}
	}
	for _, m := range regular {
		if !inRound[m.Num] {
			b.skip(m.Num, "not reachable from the first round")
		}
	}

	var tallest float64
	for _, round := range rounds {
		tallest = max(tallest, stackHeight(len(round)))
	}
	axis := max(margin+tallest/2, margin+1.5*hybridBoxHeight+hybridVGap)

	right := margin - hybridHGap
	for ri, round := range rounds {
		x := margin + float64(ri)*(hybridBoxWidth+hybridHGap)
		top := axis - stackHeight(len(round))/2
		for i, m := range round {
			y := top + float64(i)*(hybridBoxHeight+hybridVGap)
			box := b.place(m, KindMatch, x, y, hybridBoxWidth, hybridBoxHeight, borderNormal)
			right = max(right, box.Right())
		}
	}

	center := Point{X: right + 2*hybridHGap + hybridBoxWidth/2, Y: axis}
	if len(rounds) == 0 {
		center.X = margin + hybridBoxWidth + hybridHGap/2
	}

	offsets := []Point{
		{center.X - hybridBoxWidth/2, center.Y - 1.5*hybridBoxHeight - hybridVGap},
		{center.X - hybridBoxWidth - hybridHGap/2, center.Y + hybridBoxHeight/2},
		{center.X + hybridHGap/2, center.Y + hybridBoxHeight/2},
	}
	var subs []Box
	for i, num := range rr.SubMatches {
		sub, ok := b.idx.Get(num)
		switch {
		case !ok:
			b.skip(num, "round-robin sub-match does not exist")
		case i >= len(offsets):
			b.skip(num, "round-robin has more than three sub-matches")
		default:
			subs = append(subs, b.place(sub, KindSubMatch, offsets[i].X, offsets[i].Y, hybridBoxWidth, hybridBoxHeight, borderNormal))
		}
	}

	champion := b.placeChampion(rr, center)

	total := len(rounds) + 1
	headY := axis - tallest/2 - labelY
	for ri := range rounds {
		x := margin + float64(ri)*(hybridBoxWidth+hybridHGap) + hybridBoxWidth/2
		b.label(bracket.RoundName(ri+1, total), x, headY, ri+1, bracket.SideNone)
	}
	b.label("Round Robin", center.X, offsets[0].Y-labelY/2, total, bracket.SideFinal)

	for _, m := range regular {
		src, ok := b.placed(m.Num)
		if !ok {
			continue
		}
		if to, ok := m.WinnerTarget(); ok {
			var end Point
			switch dst, placed := b.placed(to); {
			case to == rr.Num:
				end = center
			case placed:
				end = dst.LeftCenter()
			default:
				continue
			}
			b.connect(Connector{
				From: m.Num, To: to, Kind: ConnWinner,
				Points: elbow(src.RightCenter(), end),
				Color:  colorEdge,
			})
		}
	}
	for _, sub := range subs {
		b.connect(Connector{
			From: rr.Num, To: sub.MatchNum, Kind: ConnRoundRobin,
			Points: elbow(center, sub.TopCenter()),
			Color:  colorEdge,
		})
	}
	b.connect(Connector{
		From: rr.Num, To: ChampionTarget, Kind: ConnChampion,
		Points: elbow(Point{center.X, center.Y + hybridBoxHeight + hybridVGap}, champion.TopCenter()),
		Color:  colorEdge,
	})

	return b.finish()
}

// hybridRounds walks the regular bracket forward from its first round: the
// regular matches no other regular match feeds. Participants are not
// consulted; a second round whose names are already known is still round 2.
func hybridRounds(idx *bracket.Index, regular []bracket.Match, special map[int]bool) [][]bracket.Match {
	var first []bracket.Match
	for _, m := range regular {
		fed := false
		for _, f := range idx.WinnerFeeders(m.Num) {
			if !special[f.Num] {
				fed = true
				break
			}
		}
		if !fed {
			first = append(first, m)
		}
	}

	var rounds [][]bracket.Match
	seen := make(map[int]bool, len(regular))
	for cur := first; len(cur) > 0; {
		rounds = append(rounds, cur)
		for _, m := range cur {
			seen[m.Num] = true
		}
		var next []bracket.Match
		queued := make(map[int]bool)
		for _, m := range cur {
			to, ok := m.WinnerTarget()
			if !ok || special[to] || seen[to] || queued[to] {
				continue
			}
			if target, ok := idx.Get(to); ok {
				next = append(next, target)
				queued[to] = true
			}
		}
		cur = next
	}
	return rounds
}

func stackHeight(n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(n)*hybridBoxHeight + float64(n-1)*hybridVGap
}

func (b *builder) placeChampion(rr bracket.Match, center Point) Box {
	w, h := hybridBoxWidth*championWidthScale, hybridBoxHeight*championHeightScale
	text := rr.Winner
	if text == "" {
		text = ChampionPlaceholder
	}
	box := Box{
		MatchNum: rr.Num,
		Kind:     KindChampion,
		X:        center.X - w/2,
		Y:        center.Y + 2*hybridBoxHeight + 2*hybridVGap,
		W:        w,
		H:        h,
		Border:   borderNormal,
		Fill:     fillChampion,
		State:    bracket.StateOf(rr),
		Lines:    []Line{{Role: RoleCaption, Text: text, Winner: rr.Winner != ""}},
	}
	b.l.Extras = append(b.l.Extras, box)
	return box
}
