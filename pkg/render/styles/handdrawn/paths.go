package handdrawn

import (
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/bracketeer/pkg/render/styles"
)

const (
	wobbleAmp     = 1.6
	cornerInset   = 6.0
	curveMinLen   = 40.0
	curveBowRatio = 0.02
)

// wobbledRect outlines a rectangle with slightly bent sides and rounded
// corners. The shape depends only on the geometry, seed and id.
func wobbledRect(x, y, w, h float64, seed uint64, id string) string {
	r := newRNG(hash(id, seed))
	in := min(cornerInset, w/4, h/4)
	j := func() float64 { return r.jitter(min(wobbleAmp, in)) }

	var b strings.Builder
	fmt.Fprintf(&b, "M%.2f,%.2f ", x+in+j(), y+j())
	fmt.Fprintf(&b, "Q%.2f,%.2f %.2f,%.2f ", x+w/2+j(), y+j(), x+w-in+j(), y+j())
	fmt.Fprintf(&b, "Q%.2f,%.2f %.2f,%.2f ", x+w+j(), y+j(), x+w+j(), y+in+j())
	fmt.Fprintf(&b, "Q%.2f,%.2f %.2f,%.2f ", x+w+j(), y+h/2+j(), x+w+j(), y+h-in+j())
	fmt.Fprintf(&b, "Q%.2f,%.2f %.2f,%.2f ", x+w+j(), y+h+j(), x+w-in+j(), y+h+j())
	fmt.Fprintf(&b, "Q%.2f,%.2f %.2f,%.2f ", x+w/2+j(), y+h+j(), x+in+j(), y+h+j())
	fmt.Fprintf(&b, "Q%.2f,%.2f %.2f,%.2f ", x+j(), y+h+j(), x+j(), y+h-in+j())
	fmt.Fprintf(&b, "Q%.2f,%.2f %.2f,%.2f ", x+j(), y+h/2+j(), x+j(), y+in+j())
	fmt.Fprintf(&b, "Q%.2f,%.2f %.2f,%.2f Z", x+j(), y+j(), x+in, y)
	return b.String()
}

// sketchSegment draws one connector segment. Short segments stay straight,
// longer ones bow slightly like a freehand stroke.
func sketchSegment(b *strings.Builder, x1, y1, x2, y2 float64) {
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length < curveMinLen {
		fmt.Fprintf(b, " L%.2f,%.2f", x2, y2)
		return
	}
	bow := length * curveBowRatio
	nx, ny := -dy/length*bow, dx/length*bow
	fmt.Fprintf(b, " C%.2f,%.2f %.2f,%.2f %.2f,%.2f",
		x1+dx/3+nx, y1+dy/3+ny, x1+2*dx/3-nx, y1+2*dy/3-ny, x2, y2)
}

// sketchPolyline turns connector points into a hand-drawn path.
func sketchPolyline(pts []styles.Point) string {
	if len(pts) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "M%.2f,%.2f", pts[0].X, pts[0].Y)
	for i := 1; i < len(pts); i++ {
		sketchSegment(&b, pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y)
	}
	return b.String()
}

// rotationFor tilts text by a small, stable angle. Wider boxes tilt less.
func rotationFor(id string, w, h float64) float64 {
	r := newRNG(hash(id, 7))
	limit := 2.5
	if w > 0 && h > 0 && w/h > 4 {
		limit = 1.5
	}
	return r.jitter(limit)
}
