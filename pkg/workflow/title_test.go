package workflow

import "testing"

func TestProblemTitle(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{"h1", "<h1>Two Sum</h1><p>Given an array...</p>", "Two Sum"},
		{"nested inline", "<h2>Longest <em>Common</em> Prefix</h2>", "Longest Common Prefix"},
		{"first heading wins", "<p>intro</p><h3>First</h3><h1>Second</h1>", "First"},
		{"whitespace", "<h1>\n  Valid\n  Parentheses </h1>", "Valid Parentheses"},
		{"entities", "<h1>A &amp; B</h1>", "A & B"},
		{"no heading", "<p>just text</p>", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProblemTitle(tt.markup); got != tt.want {
				t.Errorf("ProblemTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
