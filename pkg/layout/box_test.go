package layout

import (
	"reflect"
	"testing"
)

func TestBoxEdges(t *testing.T) {
	tests := []struct {
		name       string
		box        Box
		right, bot float64
		cx, cy     float64
	}{
		{"unit", Box{X: 0, Y: 0, W: 10, H: 20}, 10, 20, 5, 10},
		{"offset", Box{X: 50, Y: 100, W: 180, H: 60}, 230, 160, 140, 130},
		{"empty", Box{X: 5, Y: 5}, 5, 5, 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.box.Right(); got != tt.right {
				t.Errorf("Right() = %v, want %v", got, tt.right)
			}
			if got := tt.box.Bottom(); got != tt.bot {
				t.Errorf("Bottom() = %v, want %v", got, tt.bot)
			}
			if got := tt.box.CenterX(); got != tt.cx {
				t.Errorf("CenterX() = %v, want %v", got, tt.cx)
			}
			if got := tt.box.CenterY(); got != tt.cy {
				t.Errorf("CenterY() = %v, want %v", got, tt.cy)
			}
		})
	}
}

func TestBoxAnchors(t *testing.T) {
	b := Box{X: 10, Y: 20, W: 100, H: 40}
	tests := []struct {
		name string
		got  Point
		want Point
	}{
		{"left", b.LeftCenter(), Point{10, 40}},
		{"right", b.RightCenter(), Point{110, 40}},
		{"top", b.TopCenter(), Point{60, 20}},
		{"bottom", b.BottomCenter(), Point{60, 60}},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLineString(t *testing.T) {
	if got := (Line{Text: "Ada"}).String(); got != "Ada" {
		t.Errorf("got %q", got)
	}
	if got := (Line{Text: "Ada", Result: "0:01:00"}).String(); got != "Ada (0:01:00)" {
		t.Errorf("got %q", got)
	}
}

func TestElbow(t *testing.T) {
	tests := []struct {
		name     string
		from, to Point
		want     []Point
	}{
		{
			name: "down",
			from: Point{0, 0}, to: Point{100, 50},
			want: []Point{{0, 0}, {50, 0}, {50, 50}, {100, 50}},
		},
		{
			name: "straight",
			from: Point{0, 10}, to: Point{100, 10},
			want: []Point{{0, 10}, {50, 10}, {100, 10}},
		},
		{
			name: "vertical",
			from: Point{20, 0}, to: Point{20, 40},
			want: []Point{{20, 0}, {20, 40}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := elbow(tt.from, tt.to); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("elbow() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDropPath(t *testing.T) {
	got := dropPath(Point{100, 60}, Point{300, 200}, 30, 80)
	want := []Point{{100, 60}, {100, 90}, {260, 90}, {260, 200}, {300, 200}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("dropPath() = %v, want %v", got, want)
	}
}
