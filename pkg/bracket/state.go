package bracket

import "fmt"

// State is the workflow state of a single match. It is always derived from
// the match record and never stored.
type State int

const (
	// NotReady: at least one participant is unresolved or a placeholder.
	NotReady State = iota
	// Ready: both participants are known and the match has not started.
	Ready
	// InProgress: the match has started and at least one result is missing.
	InProgress
	// Complete: both results are recorded.
	Complete
)

func (s State) String() string {
	switch s {
	case NotReady:
		return "not ready"
	case Ready:
		return "ready"
	case InProgress:
		return "in progress"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StateOf derives the workflow state of m. The aggregate round-robin match
// has no participants of its own and is complete once a winner is recorded.
func StateOf(m Match) State {
	if m.IsRoundRobin() {
		if m.Winner != "" {
			return Complete
		}
		return NotReady
	}
	if m.Result1 != "" && m.Result2 != "" {
		return Complete
	}
	if !m.Participant1.IsResolved() || !m.Participant2.IsResolved() {
		return NotReady
	}
	if m.Started() || m.Result1 != "" || m.Result2 != "" {
		return InProgress
	}
	return Ready
}

// WinnerOf decides a completed match: the participant with the smaller
// elapsed result wins, and a tie goes to participant 2. It returns the
// winning slot (1 or 2), or false when the match is not decided.
func WinnerOf(m Match) (int, bool) {
	if m.Result1 == "" || m.Result2 == "" {
		return 0, false
	}
	t1, err := ParseElapsed(m.Result1)
	if err != nil {
		return 0, false
	}
	t2, err := ParseElapsed(m.Result2)
	if err != nil {
		return 0, false
	}
	if t1 < t2 {
		return 1, true
	}
	return 2, true
}
