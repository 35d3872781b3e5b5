package handdrawn

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/bracketeer/pkg/render/styles"
)

// FontFamily lists handwriting fonts with a generic fallback.
const FontFamily = `'xkcd Script', 'Comic Sans MS', 'Bradley Hand', 'Segoe Script', sans-serif`

// HandDrawn renders brackets with sketchy outlines. The seed fixes every
// wobble so repeated renders are byte-identical.
type HandDrawn struct {
	seed uint64
}

func New(seed uint64) *HandDrawn {
	return &HandDrawn{seed: seed}
}

func (h *HandDrawn) RenderDefs(buf *bytes.Buffer) {
	buf.WriteString("  <defs>\n")
	buf.WriteString(`    <filter id="pencil" x="-5%" y="-5%" width="110%" height="110%">` + "\n")
	fmt.Fprintf(buf, `      <feTurbulence type="fractalNoise" baseFrequency="0.03" numOctaves="2" seed="%d" result="noise"/>`+"\n", h.seed%1000)
	buf.WriteString(`      <feDisplacementMap in="SourceGraphic" in2="noise" scale="1.5"/>` + "\n")
	buf.WriteString("    </filter>\n")
	buf.WriteString("  </defs>\n")
	fmt.Fprintf(buf, "  <style>text { font-family: %s; }</style>\n", FontFamily)
	fmt.Fprintf(buf, `  <rect class="paper" x="0" y="0" width="100%%" height="100%%" fill="%s"/>`+"\n", paperColor)
}

func (h *HandDrawn) RenderBox(buf *bytes.Buffer, b styles.Box) {
	path := wobbledRect(b.X, b.Y, b.W, b.H, h.seed, b.ID)
	fmt.Fprintf(buf, `  <path id="%s" class="box %s %s" d="%s" fill="%s" stroke="%s" stroke-width="%.1f" stroke-linejoin="round" filter="url(#pencil)"/>`+"\n",
		styles.EscapeXML(b.ID), styles.ClassName(b.Kind), styles.ClassName(b.State), path, b.Fill, greyForID(b.ID), b.Border)
}

func (h *HandDrawn) RenderConnector(buf *bytes.Buffer, c styles.Connector) {
	dash := ""
	if c.Dashed {
		dash = ` stroke-dasharray="8,6"`
	}
	fmt.Fprintf(buf, `  <path class="connector %s" data-from="%s" data-to="%s" d="%s" fill="none" stroke="%s" stroke-width="2" stroke-linecap="round"%s/>`+"\n",
		styles.ClassName(c.Kind), styles.EscapeXML(c.FromID), styles.EscapeXML(c.ToID), sketchPolyline(c.Points), strokeFor(c.Color), dash)
}

func (h *HandDrawn) RenderText(buf *bytes.Buffer, b styles.Box) {
	size := styles.FontSize(b)
	rot := rotationFor(b.ID, b.W, b.H)
	fmt.Fprintf(buf, `  <g class="box-text" data-box="%s" transform="rotate(%.2f %.2f %.2f)">`+"\n",
		styles.EscapeXML(b.ID), rot, b.CX, b.CY)
	for i, l := range b.Lines {
		if l.Caption {
			fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" text-anchor="middle" font-size="20" fill="%s">%s</text>`+"\n",
				b.CX, b.CY+6, inkColor, styles.EscapeXML(l.Text))
			continue
		}
		if bg := styles.HouseColor(l.House); bg != "" {
			top := styles.RowTop(b, i)
			fmt.Fprintf(buf, `    <path d="%s" fill="%s" opacity="0.7"/>`+"\n",
				wobbledRect(b.X+4, top+2, b.W-8, styles.RowHeight(b)-4, h.seed, fmt.Sprintf("%s/%d", b.ID, i)), bg)
		}
		weight, fill := "normal", inkColor
		if l.Winner {
			weight = "bold"
		}
		if l.Muted {
			fill = "#777"
		}
		fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-size="%.1f" font-weight="%s" fill="%s">%s</text>`+"\n",
			b.X+10, styles.Baseline(b, i), size, weight, fill, styles.EscapeXML(styles.TruncateLine(l.Text, b.W-20, size)))
	}
	buf.WriteString("  </g>\n")
}

func (h *HandDrawn) RenderLabel(buf *bytes.Buffer, l styles.Label) {
	fmt.Fprintf(buf, `  <text class="round-label" x="%.2f" y="%.2f" text-anchor="middle" font-size="18" fill="%s">%s</text>`+"\n",
		l.X, l.Y, inkColor, styles.EscapeXML(l.Text))
}
