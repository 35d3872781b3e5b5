package sink

import (
	"fmt"

	"github.com/matzehuels/bracketeer/pkg/layout"
	"github.com/matzehuels/bracketeer/pkg/render/styles"
)

const championID = "champion"

func boxID(b layout.Box) string {
	if b.Kind == layout.KindChampion {
		return championID
	}
	return fmt.Sprintf("match-%d", b.MatchNum)
}

func connectorEndID(l layout.Layout, num int, kind layout.ConnectorKind) string {
	if kind == layout.ConnChampion {
		return championID
	}
	if _, ok := l.Box(num); !ok {
		return fmt.Sprintf("roundrobin-%d", num)
	}
	return fmt.Sprintf("match-%d", num)
}

// buildBoxes flattens layout boxes in drawing order.
func buildBoxes(l layout.Layout) []styles.Box {
	ordered := l.OrderedBoxes()
	boxes := make([]styles.Box, 0, len(ordered))
	for _, b := range ordered {
		sb := styles.Box{
			ID:   boxID(b),
			Kind: string(b.Kind),
			X:    b.X, Y: b.Y, W: b.W, H: b.H,
			CX: b.CenterX(), CY: b.CenterY(),
			Border: b.Border,
			Fill:   b.Fill,
			Lines:  buildLines(b.Lines),
		}
		if b.Kind != layout.KindChampion {
			sb.State = b.State.String()
		}
		boxes = append(boxes, sb)
	}
	return boxes
}

func buildLines(lines []layout.Line) []styles.Line {
	out := make([]styles.Line, len(lines))
	for i, l := range lines {
		out[i] = styles.Line{
			Text:    l.String(),
			House:   l.House,
			Winner:  l.Winner,
			Muted:   l.Role == layout.RoleProblem,
			Caption: l.Role == layout.RoleCaption,
		}
	}
	return out
}

func buildConnectors(l layout.Layout) []styles.Connector {
	out := make([]styles.Connector, len(l.Connectors))
	for i, c := range l.Connectors {
		pts := make([]styles.Point, len(c.Points))
		for j, p := range c.Points {
			pts[j] = styles.Point{X: p.X, Y: p.Y}
		}
		from := connectorEndID(l, c.From, "")
		to := connectorEndID(l, c.To, c.Kind)
		out[i] = styles.Connector{
			FromID: from, ToID: to,
			Kind:   string(c.Kind),
			Points: pts,
			Dashed: c.Dashed,
			Color:  c.Color,
		}
	}
	return out
}

func buildLabels(l layout.Layout) []styles.Label {
	out := make([]styles.Label, len(l.Labels))
	for i, lb := range l.Labels {
		out[i] = styles.Label{Text: lb.Text, X: lb.X, Y: lb.Y}
	}
	return out
}
