// Package brackettest builds deterministic match lists for tests.
//
// The generators wire matches the way the tournament backend does, without
// shuffling, so layouts computed from them are stable across runs.
package brackettest

import (
	"fmt"

	"github.com/matzehuels/bracketeer/pkg/bracket"
)

var houses = []string{"RED", "BLUE", "GREEN", "GOLD"}

// Players returns n resolved participants named "Player 1".."Player n".
func Players(n int) []bracket.Participant {
	out := make([]bracket.Participant, n)
	for i := range out {
		out[i] = bracket.Resolved(fmt.Sprintf("Player %d", i+1), houses[i%len(houses)])
	}
	return out
}

func problem(num int) string { return fmt.Sprintf("problem-%d.md", num) }

func isPowerOfTwo(n int) bool { return n > 0 && n&(n-1) == 0 }

// Single returns a single-elimination bracket for n players, plus a
// third-place match fed by the semifinal losers when n >= 4. It panics if n
// is not a power of two of at least 2.
func Single(n int) []bracket.Match {
	if n < 2 || !isPowerOfTwo(n) {
		panic(fmt.Sprintf("brackettest: single elimination needs a power of two, got %d", n))
	}
	players := Players(n)
	total := n - 1
	matches := make([]bracket.Match, total)
	for i := range matches {
		matches[i] = bracket.Match{Num: i + 1, Problem: problem(i + 1)}
	}
	for i := 0; i < n/2; i++ {
		matches[i].Participant1 = players[2*i]
		matches[i].Participant2 = players[2*i+1]
	}

	start, size, next := 0, n/2, n/2
	for size > 1 {
		for i := 0; i < size; i += 2 {
			parent := next + i/2 + 1
			matches[start+i].WinnerTo = bracket.Ref(parent)
			matches[start+i+1].WinnerTo = bracket.Ref(parent)
		}
		start = next
		size /= 2
		next += size
	}

	if n >= 4 {
		third := total + 1
		for i := range matches {
			if to, ok := matches[i].WinnerTarget(); ok && to == total {
				matches[i].LoserTo = bracket.Ref(third)
			}
		}
		matches = append(matches, bracket.Match{Num: third, ThirdPlace: true, Problem: problem(third)})
	}
	return matches
}

// Double returns a double-elimination bracket for n players: n-1 upper
// matches, n-2 lower matches and a grand final. It panics unless n is a
// power of two of at least 4.
func Double(n int) []bracket.Match {
	if n < 4 || !isPowerOfTwo(n) {
		panic(fmt.Sprintf("brackettest: double elimination needs a power of two >= 4, got %d", n))
	}
	upper := bracket.WithoutThirdPlace(Single(n))
	for i := range upper {
		upper[i].Side = bracket.SideUpper
		upper[i].LoserTo = nil
	}
	upperRounds := bracket.GroupRounds(upper)
	pos := make(map[int]int, len(upper))
	for i, m := range upper {
		pos[m.Num] = i
	}

	matches := upper
	num := len(upper)
	newLower := func() int {
		num++
		matches = append(matches, bracket.Match{Num: num, Side: bracket.SideLower, Problem: problem(num)})
		return len(matches) - 1
	}

	// Lower round 1 pairs the losers of upper round 1.
	var prev []int
	first := upperRounds[1]
	for i := 0; i < len(first); i += 2 {
		l := newLower()
		matches[pos[first[i].Num]].LoserTo = bracket.Ref(matches[l].Num)
		matches[pos[first[i+1].Num]].LoserTo = bracket.Ref(matches[l].Num)
		prev = append(prev, l)
	}

	for r := 2; r <= upperRounds.Count(); r++ {
		// Minor round: lower survivors meet the losers dropping from upper round r.
		dropping := upperRounds[r]
		minor := make([]int, 0, len(prev))
		for i, p := range prev {
			l := newLower()
			matches[p].WinnerTo = bracket.Ref(matches[l].Num)
			matches[pos[dropping[i].Num]].LoserTo = bracket.Ref(matches[l].Num)
			minor = append(minor, l)
		}
		if len(minor) == 1 {
			prev = minor
			break
		}
		// Major round: lower survivors play each other.
		major := make([]int, 0, len(minor)/2)
		for i := 0; i < len(minor); i += 2 {
			l := newLower()
			matches[minor[i]].WinnerTo = bracket.Ref(matches[l].Num)
			matches[minor[i+1]].WinnerTo = bracket.Ref(matches[l].Num)
			major = append(major, l)
		}
		prev = major
	}

	num++
	grand := bracket.Match{Num: num, Side: bracket.SideFinal, GrandFinal: true, Problem: problem(num)}
	for i := range matches {
		if matches[i].WinnerTo == nil {
			matches[i].WinnerTo = bracket.Ref(grand.Num)
		}
	}
	return append(matches, grand)
}

// Hybrid returns a hybrid bracket: knockout rounds halving the field until
// three players remain, then a three-way round-robin of three sub-matches.
// Winners of the last knockout round advance to the round-robin match. It
// panics unless n is 12 or 24.
func Hybrid(n int) []bracket.Match {
	if n != 12 && n != 24 {
		panic(fmt.Sprintf("brackettest: hybrid brackets need 12 or 24 players, got %d", n))
	}
	players := Players(n)
	var matches []bracket.Match
	num := 0
	current := players
	var last []int
	for len(current) > 3 {
		var round []int
		var winners []bracket.Participant
		for i := 0; i < len(current)/2; i++ {
			num++
			matches = append(matches, bracket.Match{
				Num:          num,
				Participant1: current[2*i],
				Participant2: current[2*i+1],
				Problem:      problem(num),
			})
			round = append(round, len(matches)-1)
			winners = append(winners, bracket.Placeholder(fmt.Sprintf("Winner of M%d", num)))
		}
		for i, p := range last {
			matches[p].WinnerTo = bracket.Ref(matches[round[i/2]].Num)
		}
		last = round
		current = winners
	}

	var subs []int
	for i := 0; i < 3; i++ {
		num++
		matches = append(matches, bracket.Match{Num: num, Problem: problem(num)})
		subs = append(subs, num)
	}
	num++
	for _, p := range last {
		matches[p].WinnerTo = bracket.Ref(num)
	}
	return append(matches, bracket.Match{Num: num, Type: bracket.TypeRoundRobin, SubMatches: subs})
}
