package handdrawn

import "fmt"

const (
	greyMin = 0x30
	greyMax = 0x60

	inkColor   = "#2a2a2a"
	paperColor = "#fffdf7"
	dropColor  = "#c0392b"
)

// greyForID picks a dark grey outline so neighbouring boxes differ slightly.
func greyForID(id string) string {
	v := greyMin + int(hash(id, 0)%uint64(greyMax-greyMin+1))
	return fmt.Sprintf("#%02x%02x%02x", v, v, v)
}

// strokeFor keeps the colour of emphasised connectors and replaces the
// neutral edge colour with ink.
func strokeFor(color string) string {
	switch color {
	case "", "#333", "#333333":
		return inkColor
	case "#ef4444":
		return dropColor
	}
	return color
}
