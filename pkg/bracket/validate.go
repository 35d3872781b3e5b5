package bracket

import (
	"fmt"
	"strings"

	"github.com/matzehuels/bracketeer/pkg/errors"
)

// Problems lists every structural defect found in matches. An empty result
// means the list can be laid out without skipping anything.
func Problems(matches []Match) []string {
	var out []string
	add := func(format string, args ...any) { out = append(out, fmt.Sprintf(format, args...)) }

	if len(matches) == 0 {
		return []string{"match list is empty"}
	}

	idx := NewIndex(matches)
	seen := make(map[int]bool, len(matches))
	for _, m := range matches {
		if seen[m.Num] {
			add("match %d appears more than once", m.Num)
		}
		seen[m.Num] = true
	}

	var roundRobins []Match
	terminals := 0
	for _, m := range matches {
		if to, ok := m.WinnerTarget(); ok {
			switch {
			case to == m.Num:
				add("match %d advances its winner to itself", m.Num)
			case !idx.Has(to):
				add("match %d advances its winner to unknown match %d", m.Num, to)
			}
		} else if !m.ThirdPlace && !isSubMatch(idx, m.Num) && !m.IsRoundRobin() {
			terminals++
		}
		if to, ok := m.LoserTarget(); ok {
			switch {
			case to == m.Num:
				add("match %d drops its loser to itself", m.Num)
			case !idx.Has(to):
				add("match %d drops its loser to unknown match %d", m.Num, to)
			}
		}
		if m.IsRoundRobin() {
			roundRobins = append(roundRobins, m)
			if len(m.SubMatches) != 3 {
				add("round-robin match %d has %d sub-matches, want 3", m.Num, len(m.SubMatches))
			}
			for _, sub := range m.SubMatches {
				if !idx.Has(sub) {
					add("round-robin match %d lists unknown sub-match %d", m.Num, sub)
				}
			}
		}
	}

	if len(roundRobins) > 1 {
		add("found %d round-robin matches, want at most 1", len(roundRobins))
	}
	// In a hybrid bracket the round-robin match is the final and the last
	// regular round may leave its winner links open.
	if len(roundRobins) == 0 && terminals != 1 {
		add("found %d terminal matches, want exactly 1", terminals)
	}
	if n, ok := winnerCycle(matches); ok {
		add("winner links form a cycle through match %d", n)
	}
	return out
}

// Validate checks the structural invariants of a match list and reports all
// problems at once as an [errors.ErrCodeMalformedTopology] error.
func Validate(matches []Match) error {
	problems := Problems(matches)
	if len(problems) == 0 {
		return nil
	}
	return errors.New(errors.ErrCodeMalformedTopology, "%s", strings.Join(problems, "; "))
}

func isSubMatch(idx *Index, num int) bool {
	rr, ok := idx.RoundRobin()
	if !ok {
		return false
	}
	for _, s := range rr.SubMatches {
		if s == num {
			return true
		}
	}
	return false
}

// winnerCycle follows winner links from every match and reports the first
// match found on a cycle.
func winnerCycle(matches []Match) (int, bool) {
	next := make(map[int]int, len(matches))
	for _, m := range matches {
		if to, ok := m.WinnerTarget(); ok && to != m.Num {
			next[m.Num] = to
		}
	}
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[int]int, len(matches))
	for _, m := range matches {
		path := []int{}
		cur := m.Num
		for state[cur] == unvisited {
			state[cur] = inProgress
			path = append(path, cur)
			to, ok := next[cur]
			if !ok {
				break
			}
			cur = to
		}
		if state[cur] == inProgress {
			if _, ok := next[cur]; ok {
				return cur, true
			}
		}
		for _, p := range path {
			state[p] = done
		}
	}
	return 0, false
}
