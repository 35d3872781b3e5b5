package styles

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

const (
	fontHeightRatio = 0.6
	fontCharWidth   = 0.55
	fontSizeMin     = 8.0
	fontSizeMax     = 18.0
	textPadding     = 10.0
)

// FontSize picks a size that fits the longest line of b into its row.
func FontSize(b Box) float64 {
	n := max(1, len(b.Lines))
	longest := 1
	for _, l := range b.Lines {
		longest = max(longest, len(l.Text))
	}
	return fontSizeFor(b.W-2*textPadding, b.H/float64(n), longest)
}

func fontSizeFor(availWidth, availHeight float64, textLen int) float64 {
	n := max(1, textLen)
	byHeight := availHeight * fontHeightRatio
	byWidth := availWidth / (float64(n) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, min(byHeight, byWidth)))
}

// Baseline returns the text baseline of line i in b. Lines share the box
// height evenly.
func Baseline(b Box, i int) float64 {
	n := max(1, len(b.Lines))
	row := b.H / float64(n)
	return b.Y + row*float64(i) + row/2 + FontSize(b)/3
}

// RowTop returns the top of line i's row, used for house backgrounds.
func RowTop(b Box, i int) float64 {
	n := max(1, len(b.Lines))
	return b.Y + b.H/float64(n)*float64(i)
}

// RowHeight returns the height of one text row in b.
func RowHeight(b Box) float64 {
	return b.H / float64(max(1, len(b.Lines)))
}

// TruncateLine shortens text so that it fits width at fontSize.
func TruncateLine(text string, width, fontSize float64) string {
	maxChars := int(width / (fontSize * fontCharWidth))
	if maxChars < 3 {
		maxChars = 3
	}
	r := []rune(text)
	if len(r) <= maxChars {
		return text
	}
	return string(r[:maxChars-2]) + ".."
}

func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// ClassName turns a state or kind such as "in progress" into a CSS class.
func ClassName(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "-")
}

// PolylinePoints formats points for an SVG points attribute.
func PolylinePoints(pts []Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = fmt.Sprintf("%.2f,%.2f", p.X, p.Y)
	}
	return strings.Join(parts, " ")
}
