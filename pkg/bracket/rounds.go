package bracket

import (
	"fmt"
	"sort"
)

// Rounds groups matches by derived round number, starting at 1.
type Rounds map[int][]Match

// Numbers returns the round numbers in ascending order.
func (r Rounds) Numbers() []int {
	nums := make([]int, 0, len(r))
	for n := range r {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// Count returns the highest round number, or 0 for no rounds.
func (r Rounds) Count() int {
	max := 0
	for n := range r {
		if n > max {
			max = n
		}
	}
	return max
}

// Round computes the round number of m within pool: 1 plus the number of
// steps from m back through "the match whose winner advances here". When
// several matches feed m, the first in pool order is followed. The walk only
// considers matches in pool, so callers restrict it by filtering first (for
// example [WithoutThirdPlace] or [OnSide]). Cyclic links stop the walk.
func Round(m Match, pool []Match) int {
	return roundOf(m.Num, firstFeeders(pool))
}

// GroupRounds assigns every match in pool to its round.
func GroupRounds(pool []Match) Rounds {
	parents := firstFeeders(pool)
	rounds := make(Rounds)
	for _, m := range pool {
		r := roundOf(m.Num, parents)
		rounds[r] = append(rounds[r], m)
	}
	return rounds
}

// RoundIndex maps match numbers in pool to their round.
func RoundIndex(pool []Match) map[int]int {
	parents := firstFeeders(pool)
	out := make(map[int]int, len(pool))
	for _, m := range pool {
		out[m.Num] = roundOf(m.Num, parents)
	}
	return out
}

// firstFeeders maps each match number to the first match in pool whose
// winner advances to it.
func firstFeeders(pool []Match) map[int]int {
	parents := make(map[int]int, len(pool))
	for _, m := range pool {
		to, ok := m.WinnerTarget()
		if !ok {
			continue
		}
		if _, seen := parents[to]; !seen {
			parents[to] = m.Num
		}
	}
	return parents
}

func roundOf(num int, parents map[int]int) int {
	visited := map[int]bool{num: true}
	round := 1
	cur := num
	for {
		p, ok := parents[cur]
		if !ok || visited[p] {
			return round
		}
		visited[p] = true
		round++
		cur = p
	}
}

// Filter returns the matches satisfying keep, preserving order.
func Filter(matches []Match, keep func(Match) bool) []Match {
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

// WithoutThirdPlace drops the third-place match.
func WithoutThirdPlace(matches []Match) []Match {
	return Filter(matches, func(m Match) bool { return !m.ThirdPlace })
}

// OnSide keeps the matches of one bracket segment.
func OnSide(matches []Match, side Side) []Match {
	return Filter(matches, func(m Match) bool { return m.Side == side })
}

// RoundName returns the label for round r of total.
func RoundName(r, total int) string {
	switch {
	case r == total:
		return "Final"
	case r == total-1:
		return "Semi-Finals"
	case total-r == 2:
		return "Quarter-Finals"
	default:
		return fmt.Sprintf("Round %d", r)
	}
}
