package layout

import (
	"testing"

	"github.com/matzehuels/bracketeer/pkg/bracket"
	"github.com/matzehuels/bracketeer/pkg/bracket/brackettest"
)

// scenarioB is a four-player double-elimination bracket whose segment
// finals have open winner links, as the backend sends them before the grand
// final is wired.
func scenarioB() []bracket.Match {
	ada, bob := bracket.Resolved("Ada", "RED"), bracket.Resolved("Bob", "BLUE")
	cy, dan := bracket.Resolved("Cy", "GOLD"), bracket.Resolved("Dan", "GREEN")
	return []bracket.Match{
		{Num: 1, Side: bracket.SideUpper, Participant1: ada, Participant2: bob, WinnerTo: bracket.Ref(3), LoserTo: bracket.Ref(4)},
		{Num: 2, Side: bracket.SideUpper, Participant1: cy, Participant2: dan, WinnerTo: bracket.Ref(3), LoserTo: bracket.Ref(4)},
		{Num: 3, Side: bracket.SideUpper, LoserTo: bracket.Ref(5)},
		{Num: 4, Side: bracket.SideLower, WinnerTo: bracket.Ref(5)},
		{Num: 5, Side: bracket.SideLower},
		{Num: 6, Side: bracket.SideFinal, GrandFinal: true},
	}
}

func TestDoubleScenarioB(t *testing.T) {
	l, err := Double(scenarioB())
	if err != nil {
		t.Fatalf("Double: %v", err)
	}

	want := map[int]Point{
		1: {50, 50},
		2: {50, 140},
		3: {310, 95},
		4: {50, 485},
		5: {310, 425},
		6: {570, 245},
	}
	for num, p := range want {
		b := mustBox(t, l, num)
		if b.X != p.X || b.Y != p.Y {
			t.Errorf("match %d at (%v,%v), want (%v,%v)", num, b.X, b.Y, p.X, p.Y)
		}
	}

	upperFinal, lowerFinal, grand := mustBox(t, l, 3), mustBox(t, l, 5), mustBox(t, l, 6)
	if grand.X <= upperFinal.Right() || grand.X <= lowerFinal.Right() {
		t.Errorf("grand final x=%v not right of finals (%v, %v)", grand.X, upperFinal.Right(), lowerFinal.Right())
	}
	if mid := (upperFinal.CenterY() + lowerFinal.CenterY()) / 2; grand.CenterY() != mid {
		t.Errorf("grand final center %v, want midpoint %v", grand.CenterY(), mid)
	}
	if grand.Kind != KindGrandFinal || grand.W != doubleBoxWidth*finalScale {
		t.Errorf("grand final box = %+v", grand)
	}
}

func TestDoubleGeneratedGrandFinal(t *testing.T) {
	for _, n := range []int{4, 8, 16} {
		matches := brackettest.Double(n)
		l, err := Double(matches, WithStrict())
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}

		var grand Box
		var finals []Box
		for _, m := range matches {
			if m.GrandFinal {
				grand = mustBox(t, l, m.Num)
			} else if to, ok := m.WinnerTarget(); ok && matches[len(matches)-1].Num == to {
				finals = append(finals, mustBox(t, l, m.Num))
			}
		}
		if len(finals) != 2 {
			t.Fatalf("n=%d: found %d segment finals", n, len(finals))
		}
		for _, f := range finals {
			if grand.X <= f.Right() {
				t.Errorf("n=%d: grand final not right of match %d", n, f.MatchNum)
			}
		}
		if mid := (finals[0].CenterY() + finals[1].CenterY()) / 2; grand.CenterY() != mid {
			t.Errorf("n=%d: grand final center %v, want %v", n, grand.CenterY(), mid)
		}
	}
}

func TestDoubleUpperMidpointInvariant(t *testing.T) {
	matches := brackettest.Double(16)
	l, err := Double(matches)
	if err != nil {
		t.Fatal(err)
	}
	upper := bracket.OnSide(matches, bracket.SideUpper)
	idx := bracket.NewIndex(matches)
	for num, r := range bracket.RoundIndex(upper) {
		if r == 1 {
			continue
		}
		feeders := bracket.OnSide(idx.WinnerFeeders(num), bracket.SideUpper)
		a, b := mustBox(t, l, feeders[0].Num), mustBox(t, l, feeders[1].Num)
		if got, mid := mustBox(t, l, num).CenterY(), (a.CenterY()+b.CenterY())/2; got != mid {
			t.Errorf("match %d center %v, want %v", num, got, mid)
		}
	}
}

func TestDoubleLowerBelowUpper(t *testing.T) {
	matches := brackettest.Double(8)
	l, err := Double(matches)
	if err != nil {
		t.Fatal(err)
	}
	var upperBottom float64
	for _, m := range bracket.OnSide(matches, bracket.SideUpper) {
		upperBottom = max(upperBottom, mustBox(t, l, m.Num).Bottom())
	}
	for _, m := range bracket.OnSide(matches, bracket.SideLower) {
		if b := mustBox(t, l, m.Num); b.Y <= upperBottom {
			t.Errorf("lower match %d at y=%v overlaps upper extent %v", m.Num, b.Y, upperBottom)
		}
	}
}

func TestDoubleLoserEdges(t *testing.T) {
	l, err := Double(scenarioB())
	if err != nil {
		t.Fatal(err)
	}
	drops, dashed := countConnectors(l, ConnDrop)
	if drops != 3 || dashed != 3 {
		t.Errorf("drop connectors = %d, dashed = %d, want 3", drops, dashed)
	}
	for _, c := range l.Connectors {
		if c.Kind != ConnDrop {
			continue
		}
		if c.Color != colorDrop {
			t.Errorf("drop color = %q", c.Color)
		}
		src := mustBox(t, l, c.From)
		dst := mustBox(t, l, c.To)
		if c.Start() != src.BottomCenter() || c.End() != dst.LeftCenter() {
			t.Errorf("drop %d->%d runs %v..%v", c.From, c.To, c.Start(), c.End())
		}
	}
	// Segment finals are terminal and have no winner edge to draw.
	if winners, _ := countConnectors(l, ConnWinner); winners != 3 {
		t.Errorf("winner connectors = %d, want 3", winners)
	}
}

func TestDoubleLabels(t *testing.T) {
	l, err := Double(scenarioB())
	if err != nil {
		t.Fatal(err)
	}
	texts := map[string]bool{}
	for _, lb := range l.Labels {
		texts[lb.Text] = true
	}
	for _, want := range []string{"Upper Semi-Finals", "Upper Final", "Lower Round 1", "Lower Final", "Grand Final"} {
		if !texts[want] {
			t.Errorf("missing label %q in %v", want, l.Labels)
		}
	}
}
