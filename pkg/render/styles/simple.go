package styles

import (
	"bytes"
	"fmt"
)

const (
	simpleFont     = "Helvetica,Arial,sans-serif"
	simpleStroke   = "#3b82f6"
	simpleInk      = "#111"
	simpleLabelInk = "#111827"
	simpleRadius   = 12.0
)

// Simple is a flat style with rounded boxes and straight connectors.
type Simple struct{}

func (Simple) RenderDefs(buf *bytes.Buffer) {}

func (Simple) RenderBox(buf *bytes.Buffer, b Box) {
	stroke := simpleStroke
	if b.Kind == "champion" {
		stroke = "#333"
	}
	rx := min(simpleRadius, b.W/4, b.H/4)
	fmt.Fprintf(buf, `  <rect id="%s" class="box %s %s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.1f" ry="%.1f" fill="%s" stroke="%s" stroke-width="%.1f"/>`+"\n",
		EscapeXML(b.ID), ClassName(b.Kind), ClassName(b.State), b.X, b.Y, b.W, b.H, rx, rx, b.Fill, stroke, b.Border)
}

func (Simple) RenderConnector(buf *bytes.Buffer, c Connector) {
	dash := ""
	if c.Dashed {
		dash = ` stroke-dasharray="5,5"`
	}
	fmt.Fprintf(buf, `  <polyline class="connector %s" data-from="%s" data-to="%s" points="%s" fill="none" stroke="%s" stroke-width="2"%s/>`+"\n",
		ClassName(c.Kind), EscapeXML(c.FromID), EscapeXML(c.ToID), PolylinePoints(c.Points), c.Color, dash)
}

func (Simple) RenderText(buf *bytes.Buffer, b Box) {
	size := FontSize(b)
	fmt.Fprintf(buf, `  <g class="box-text" data-box="%s">`+"\n", EscapeXML(b.ID))
	for i, l := range b.Lines {
		if l.Caption {
			fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" text-anchor="middle" font-family="%s" font-size="18" font-weight="bold" fill="%s">%s</text>`+"\n",
				b.CX, b.CY+5, simpleFont, simpleInk, EscapeXML(TruncateLine(l.Text, b.W-2*textPadding, 18)))
			continue
		}
		if bg := HouseColor(l.House); bg != "" {
			fmt.Fprintf(buf, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" opacity="0.8"/>`+"\n",
				b.X+b.Border, RowTop(b, i)+1, b.W-2*b.Border, RowHeight(b)-2, bg)
		}
		weight, fill := "normal", simpleInk
		if l.Winner {
			weight = "bold"
		}
		if l.Muted {
			fill = "#6b7280"
		}
		fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-family="%s" font-size="%.1f" font-weight="%s" fill="%s">%s</text>`+"\n",
			b.X+textPadding, Baseline(b, i), simpleFont, size, weight, fill, EscapeXML(TruncateLine(l.Text, b.W-2*textPadding, size)))
	}
	buf.WriteString("  </g>\n")
}

func (Simple) RenderLabel(buf *bytes.Buffer, l Label) {
	fmt.Fprintf(buf, `  <text class="round-label" x="%.2f" y="%.2f" text-anchor="middle" font-family="%s" font-size="16" font-weight="bold" fill="%s">%s</text>`+"\n",
		l.X, l.Y, simpleFont, simpleLabelInk, EscapeXML(l.Text))
}
