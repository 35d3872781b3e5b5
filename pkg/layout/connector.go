package layout

// ConnectorKind identifies the relationship a connector draws.
type ConnectorKind string

const (
	ConnWinner     ConnectorKind = "winner"
	ConnLoser      ConnectorKind = "loser"
	ConnDrop       ConnectorKind = "drop"
	ConnRoundRobin ConnectorKind = "roundrobin"
	ConnChampion   ConnectorKind = "champion"
)

const (
	colorEdge = "#333333"
	colorDrop = "#ef4444"
)

// ChampionTarget is the To of a ConnChampion connector. The champion box
// is not a match; it is the KindChampion box in Layout.Extras.
const ChampionTarget = 0

// Connector is a polyline between two boxes (or the round-robin center).
// From and To are match numbers, except that a ConnChampion connector runs
// from the round-robin match to [ChampionTarget].
type Connector struct {
	From, To int
	Kind     ConnectorKind
	Points   []Point
	Dashed   bool
	Color    string
}

// Start returns the first point of the connector.
func (c Connector) Start() Point { return c.Points[0] }

// End returns the last point of the connector.
func (c Connector) End() Point { return c.Points[len(c.Points)-1] }

// elbow routes a right-angle polyline: horizontal to the midpoint column,
// vertical to the target row, then horizontal into the target.
func elbow(from, to Point) []Point {
	midX := from.X + (to.X-from.X)/2
	return compact([]Point{from, {midX, from.Y}, {midX, to.Y}, to})
}

// dropPath routes an upper-to-lower loser edge: down from the source's bottom
// center by vgap, across to half an hgap before the target, then vertically
// to the target row and into its left side.
func dropPath(from, to Point, vgap, hgap float64) []Point {
	turnY := from.Y + vgap
	turnX := to.X - hgap/2
	return compact([]Point{from, {from.X, turnY}, {turnX, turnY}, {turnX, to.Y}, to})
}

// compact drops consecutive duplicate points.
func compact(pts []Point) []Point {
	out := pts[:1]
	for _, p := range pts[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}
