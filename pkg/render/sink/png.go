package sink

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/matzehuels/bracketeer/pkg/layout"
	"github.com/matzehuels/bracketeer/pkg/render/styles"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale      float64
	background string
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithPNGBackground sets the canvas colour (default white).
func WithPNGBackground(color string) PNGOption {
	return func(r *pngRenderer) { r.background = color }
}

var (
	fontsOnce     sync.Once
	regular, bold *truetype.Font
	fontsErr      error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		if regular, fontsErr = truetype.Parse(goregular.TTF); fontsErr != nil {
			return
		}
		bold, fontsErr = truetype.Parse(gobold.TTF)
	})
	return fontsErr
}

// RenderPNG rasterizes l with the flat look of [styles.Simple]. Text uses
// the embedded Go fonts, so no system fonts are needed.
func RenderPNG(l layout.Layout, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0, background: "#ffffff"}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		return nil, fmt.Errorf("invalid scale %v", r.scale)
	}
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}

	w := int(l.FrameWidth*r.scale + 0.5)
	h := int(l.FrameHeight*r.scale + 0.5)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("empty frame %vx%v", l.FrameWidth, l.FrameHeight)
	}

	dc := gg.NewContext(w, h)
	dc.SetHexColor(r.background)
	dc.Clear()

	p := &pngPainter{dc: dc, scale: r.scale, faces: map[faceKey]font.Face{}}
	dc.Scale(r.scale, r.scale)

	for _, lb := range buildLabels(l) {
		p.text(lb.Text, lb.X, lb.Y, 16, true, "#111827", 0.5)
	}
	for _, c := range buildConnectors(l) {
		p.connector(c)
	}
	for _, b := range buildBoxes(l) {
		p.box(b)
		p.lines(b)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

type faceKey struct {
	size float64
	bold bool
}

type pngPainter struct {
	dc    *gg.Context
	scale float64
	faces map[faceKey]font.Face
}

func (p *pngPainter) face(size float64, isBold bool) font.Face {
	k := faceKey{size * p.scale, isBold}
	if f, ok := p.faces[k]; ok {
		return f
	}
	src := regular
	if isBold {
		src = bold
	}
	f := truetype.NewFace(src, &truetype.Options{Size: k.size})
	p.faces[k] = f
	return f
}

func (p *pngPainter) connector(c styles.Connector) {
	if len(c.Points) < 2 {
		return
	}
	dc := p.dc
	dc.SetHexColor(c.Color)
	dc.SetLineWidth(2)
	if c.Dashed {
		dc.SetDash(5, 5)
	} else {
		dc.SetDash()
	}
	dc.MoveTo(c.Points[0].X, c.Points[0].Y)
	for _, pt := range c.Points[1:] {
		dc.LineTo(pt.X, pt.Y)
	}
	dc.Stroke()
	dc.SetDash()
}

func (p *pngPainter) box(b styles.Box) {
	dc := p.dc
	rx := min(12, b.W/4, b.H/4)
	dc.DrawRoundedRectangle(b.X, b.Y, b.W, b.H, rx)
	dc.SetHexColor(b.Fill)
	dc.FillPreserve()
	if b.Kind == string(layout.KindChampion) {
		dc.SetHexColor("#333333")
	} else {
		dc.SetHexColor("#3b82f6")
	}
	dc.SetLineWidth(b.Border)
	dc.Stroke()

	for i, l := range b.Lines {
		bg := styles.HouseColor(l.House)
		if bg == "" || l.Caption {
			continue
		}
		dc.DrawRectangle(b.X+b.Border, styles.RowTop(b, i)+1, b.W-2*b.Border, styles.RowHeight(b)-2)
		dc.SetHexColor(bg)
		dc.Fill()
	}
}

func (p *pngPainter) lines(b styles.Box) {
	size := styles.FontSize(b)
	for i, l := range b.Lines {
		if l.Caption {
			p.text(l.Text, b.CX, b.CY+5, 18, true, "#111111", 0.5)
			continue
		}
		color := "#111111"
		if l.Muted {
			color = "#6b7280"
		}
		text := styles.TruncateLine(l.Text, b.W-20, size)
		p.text(text, b.X+10, styles.Baseline(b, i), size, l.Winner, color, 0)
	}
}

// text draws at a baseline in layout units. Glyphs are rasterized at the
// output scale with the transform reset, so they stay sharp.
func (p *pngPainter) text(s string, x, y, size float64, isBold bool, color string, ax float64) {
	dc := p.dc
	dc.Push()
	dc.Identity()
	dc.SetFontFace(p.face(size, isBold))
	dc.SetHexColor(color)
	dc.DrawStringAnchored(s, x*p.scale, y*p.scale, ax, 0)
	dc.Pop()
}
