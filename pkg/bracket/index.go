package bracket

// Index provides lookups over a match list for a single pass. It holds
// a reference to the slice it was built from and never modifies it.
type Index struct {
	matches []Match
	byNum   map[int]int
	winners map[int][]int
	losers  map[int][]int
}

// NewIndex indexes matches by number and by incoming edge. When numbers are
// duplicated the first occurrence wins; [Validate] reports the duplicate.
func NewIndex(matches []Match) *Index {
	idx := &Index{
		matches: matches,
		byNum:   make(map[int]int, len(matches)),
		winners: make(map[int][]int),
		losers:  make(map[int][]int),
	}
	for i, m := range matches {
		if _, dup := idx.byNum[m.Num]; !dup {
			idx.byNum[m.Num] = i
		}
		if to, ok := m.WinnerTarget(); ok {
			idx.winners[to] = append(idx.winners[to], i)
		}
		if to, ok := m.LoserTarget(); ok {
			idx.losers[to] = append(idx.losers[to], i)
		}
	}
	return idx
}

// Matches returns the indexed list in its original order.
func (idx *Index) Matches() []Match { return idx.matches }

// Len returns the number of indexed matches.
func (idx *Index) Len() int { return len(idx.matches) }

// Get looks up a match by number.
func (idx *Index) Get(num int) (Match, bool) {
	i, ok := idx.byNum[num]
	if !ok {
		return Match{}, false
	}
	return idx.matches[i], true
}

// Has reports whether num names an indexed match.
func (idx *Index) Has(num int) bool {
	_, ok := idx.byNum[num]
	return ok
}

// WinnerFeeders returns the matches whose winner advances to num, in list
// order.
func (idx *Index) WinnerFeeders(num int) []Match { return idx.collect(idx.winners[num]) }

// LoserFeeders returns the matches whose loser drops to num, in list order.
func (idx *Index) LoserFeeders(num int) []Match { return idx.collect(idx.losers[num]) }

// RoundRobin returns the aggregate round-robin match, if any.
func (idx *Index) RoundRobin() (Match, bool) {
	for _, m := range idx.matches {
		if m.IsRoundRobin() {
			return m, true
		}
	}
	return Match{}, false
}

func (idx *Index) collect(positions []int) []Match {
	if len(positions) == 0 {
		return nil
	}
	out := make([]Match, len(positions))
	for i, p := range positions {
		out[i] = idx.matches[p]
	}
	return out
}
