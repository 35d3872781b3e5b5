package styles

import (
	"hash/fnv"
	"strings"
)

var houseColors = map[string]string{
	"RED":    "#fecaca",
	"BLUE":   "#bfdbfe",
	"GREEN":  "#bbf7d0",
	"GOLD":   "#fde68a",
	"YELLOW": "#fef08a",
	"PURPLE": "#e9d5ff",
	"ORANGE": "#fed7aa",
}

// Unknown houses get a stable pick from this palette.
var housePalette = []string{
	"#fbcfe8", "#c7d2fe", "#a5f3fc", "#d9f99d", "#fecdd3", "#ddd6fe",
}

// HouseColor returns the background colour for a team code, or "" when the
// code is empty.
func HouseColor(house string) string {
	if house == "" {
		return ""
	}
	key := strings.ToUpper(strings.TrimSpace(house))
	if c, ok := houseColors[key]; ok {
		return c
	}
	h := fnv.New32a()
	h.Write([]byte(key))
	return housePalette[h.Sum32()%uint32(len(housePalette))]
}
