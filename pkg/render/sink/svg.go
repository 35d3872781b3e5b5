package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/bracketeer/pkg/layout"
	"github.com/matzehuels/bracketeer/pkg/render/styles"
)

const boxInteractionCSS = `
    .box { transition: stroke-width 0.2s ease; }
    .box.highlight { stroke-width: 5; }
    .connector.highlight { stroke-width: 4; }
    .box.complete { opacity: 0.85; }`

const boxInteractionJS = `
    function highlight(id) {
      document.querySelectorAll('.connector').forEach(c => c.classList.toggle('highlight', c.dataset.from === id || c.dataset.to === id));
      document.getElementById(id).classList.add('highlight');
    }
    function clearHighlight() {
      document.querySelectorAll('.highlight').forEach(el => el.classList.remove('highlight'));
    }
    document.querySelectorAll('.box').forEach(el => {
      el.addEventListener('mouseenter', () => highlight(el.id));
      el.addEventListener('mouseleave', clearHighlight);
    });`

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style       styles.Style
	interactive bool
	background  string
}

func WithStyle(s styles.Style) SVGOption { return func(r *svgRenderer) { r.style = s } }

// WithInteraction adds hover highlighting of a box and its connectors.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// WithBackground fills the frame before anything else is drawn.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// RenderSVG draws l as a standalone SVG document. Connectors are drawn
// first so that box outlines cover their ends.
func RenderSVG(l layout.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		l.FrameWidth, l.FrameHeight, l.FrameWidth, l.FrameHeight)

	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%.1f" height="%.1f" fill="%s"/>`+"\n", l.FrameWidth, l.FrameHeight, r.background)
	}
	r.style.RenderDefs(&buf)
	renderContent(&buf, r.style, l)
	if r.interactive {
		renderBoxInteraction(&buf)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{style: styles.Simple{}}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func renderContent(buf *bytes.Buffer, s styles.Style, l layout.Layout) {
	boxes := buildBoxes(l)
	for _, lb := range buildLabels(l) {
		s.RenderLabel(buf, lb)
	}
	for _, c := range buildConnectors(l) {
		s.RenderConnector(buf, c)
	}
	for _, b := range boxes {
		s.RenderBox(buf, b)
	}
	for _, b := range boxes {
		s.RenderText(buf, b)
	}
}

func renderBoxInteraction(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", boxInteractionCSS)
	fmt.Fprintf(buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", boxInteractionJS)
}
