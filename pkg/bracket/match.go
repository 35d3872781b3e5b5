package bracket

import (
	"strings"
	"time"
)

// Side is the bracket segment a match belongs to in double elimination.
type Side string

const (
	SideNone  Side = ""
	SideUpper Side = "upper"
	SideLower Side = "lower"
	SideFinal Side = "final"
)

// MatchType distinguishes regular head-to-head matches from the aggregate
// round-robin match of a hybrid bracket.
type MatchType string

const (
	TypeRegular    MatchType = ""
	TypeRoundRobin MatchType = "three_way_round_robin"
)

// Match is one record of the backend's match list.
type Match struct {
	Num          int         `json:"match_num"`
	Participant1 Participant `json:"participant1"`
	Participant2 Participant `json:"participant2"`
	Result1      string      `json:"participant1_result,omitempty"`
	Result2      string      `json:"participant2_result,omitempty"`
	WinnerTo     *int        `json:"winner_proceeds_to,omitempty"`
	LoserTo      *int        `json:"loser_proceeds_to,omitempty"`
	Side         Side        `json:"bracket,omitempty"`
	GrandFinal   bool        `json:"is_grand_final,omitempty"`
	ThirdPlace   bool        `json:"is_third_place,omitempty"`
	Type         MatchType   `json:"match_type,omitempty"`
	SubMatches   []int       `json:"sub_matches,omitempty"`
	Problem      string      `json:"problem,omitempty"`
	Winner       string      `json:"winner,omitempty"`
	StartTime    string      `json:"start_time,omitempty"`
}

// Ref returns a pointer to n, for building WinnerTo and LoserTo links.
func Ref(n int) *int { return &n }

// WinnerTarget returns the match the winner advances to.
func (m Match) WinnerTarget() (int, bool) {
	if m.WinnerTo == nil {
		return 0, false
	}
	return *m.WinnerTo, true
}

// LoserTarget returns the match the loser drops to.
func (m Match) LoserTarget() (int, bool) {
	if m.LoserTo == nil {
		return 0, false
	}
	return *m.LoserTo, true
}

// IsRoundRobin reports whether m is the aggregate round-robin match.
func (m Match) IsRoundRobin() bool { return m.Type == TypeRoundRobin }

// Participant returns participant slot 1 or 2.
func (m Match) Participant(slot int) Participant {
	if slot == 2 {
		return m.Participant2
	}
	return m.Participant1
}

// Result returns the recorded elapsed result for slot 1 or 2.
func (m Match) Result(slot int) string {
	if slot == 2 {
		return m.Result2
	}
	return m.Result1
}

// Started reports whether the backend recorded a start time.
func (m Match) Started() bool { return strings.TrimSpace(m.StartTime) != "" }

// startLayouts are the timestamp forms the backend is known to send. Naive
// timestamps are read as UTC.
var startLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// StartedAt parses StartTime.
func (m Match) StartedAt() (time.Time, bool) {
	s := strings.TrimSpace(m.StartTime)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range startLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
