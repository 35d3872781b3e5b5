package bracket

import "fmt"

// Topology is the overall bracket format.
type Topology int

const (
	TopologyUnknown Topology = iota
	SingleElimination
	DoubleElimination
	Hybrid
)

func (t Topology) String() string {
	switch t {
	case SingleElimination:
		return "single"
	case DoubleElimination:
		return "double"
	case Hybrid:
		return "hybrid"
	case TopologyUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("Topology(%d)", int(t))
	}
}

// ParseTopology accepts the bracket kinds used when creating a bracket.
func ParseTopology(s string) (Topology, bool) {
	switch s {
	case "single":
		return SingleElimination, true
	case "double":
		return DoubleElimination, true
	case "hybrid":
		return Hybrid, true
	default:
		return TopologyUnknown, false
	}
}

// Classify detects the bracket format from marker fields. A round-robin
// match makes the bracket hybrid; otherwise any lower-bracket or grand-final
// match makes it double elimination. No other validation is done. An empty
// list is [TopologyUnknown].
func Classify(matches []Match) Topology {
	if len(matches) == 0 {
		return TopologyUnknown
	}
	double := false
	for _, m := range matches {
		if m.IsRoundRobin() {
			return Hybrid
		}
		if m.Side == SideLower || m.GrandFinal {
			double = true
		}
	}
	if double {
		return DoubleElimination
	}
	return SingleElimination
}
