package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/bracketeer/pkg/bracket"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds state, results and problem to each node label.
	// When false, only the match number and participants are shown.
	Detailed bool
}

// ToDOT converts a match list to Graphviz DOT. Winner links are solid, loser
// links dashed red and round-robin sub-match links dotted. Upper, lower and
// final matches are grouped into clusters for double elimination.
func ToDOT(matches []bracket.Match, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=\"#f9f9f9\", color=\"#3b82f6\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	if bracket.Classify(matches) == bracket.DoubleElimination {
		writeClusters(&buf, matches, opts)
	} else {
		for _, m := range matches {
			writeNode(&buf, m, opts, "  ")
		}
	}

	buf.WriteString("\n")
	idx := bracket.NewIndex(matches)
	for _, m := range matches {
		if to, ok := m.WinnerTarget(); ok && idx.Has(to) {
			fmt.Fprintf(&buf, "  %s -> %s;\n", nodeID(m.Num), nodeID(to))
		}
		if to, ok := m.LoserTarget(); ok && idx.Has(to) {
			fmt.Fprintf(&buf, "  %s -> %s [style=dashed, color=\"#ef4444\"];\n", nodeID(m.Num), nodeID(to))
		}
		for _, sub := range m.SubMatches {
			if idx.Has(sub) {
				fmt.Fprintf(&buf, "  %s -> %s [style=dotted, arrowhead=none];\n", nodeID(m.Num), nodeID(sub))
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeClusters(buf *bytes.Buffer, matches []bracket.Match, opts Options) {
	for _, side := range []bracket.Side{bracket.SideUpper, bracket.SideLower, bracket.SideFinal} {
		group := bracket.OnSide(matches, side)
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(buf, "  subgraph cluster_%s {\n", side)
		fmt.Fprintf(buf, "    label=%q;\n", clusterLabel(side))
		buf.WriteString("    style=dashed;\n    color=\"#9ca3af\";\n")
		for _, m := range group {
			writeNode(buf, m, opts, "    ")
		}
		buf.WriteString("  }\n")
	}
	for _, m := range matches {
		switch m.Side {
		case bracket.SideUpper, bracket.SideLower, bracket.SideFinal:
		default:
			writeNode(buf, m, opts, "  ")
		}
	}
}

func clusterLabel(side bracket.Side) string {
	switch side {
	case bracket.SideUpper:
		return "Upper Bracket"
	case bracket.SideLower:
		return "Lower Bracket"
	default:
		return "Grand Final"
	}
}

func nodeID(num int) string { return fmt.Sprintf("m%d", num) }

func writeNode(buf *bytes.Buffer, m bracket.Match, opts Options, indent string) {
	label := fmtLabel(m, opts.Detailed)
	attrs := fmtAttrs(m, label)
	fmt.Fprintf(buf, "%s%s [%s];\n", indent, nodeID(m.Num), strings.Join(attrs, ", "))
}

func fmtLabel(m bracket.Match, detailed bool) string {
	if m.IsRoundRobin() {
		label := fmt.Sprintf("M%d round robin", m.Num)
		if m.Winner != "" {
			label += "\nwinner: " + m.Winner
		}
		return label
	}

	lines := []string{fmt.Sprintf("M%d", m.Num)}
	for slot := 1; slot <= 2; slot++ {
		line := m.Participant(slot).Label()
		if detailed {
			if r := m.Result(slot); r != "" {
				line += " (" + r + ")"
			}
		}
		lines = append(lines, line)
	}
	if detailed {
		lines = append(lines, "state: "+bracket.StateOf(m).String())
		if m.Problem != "" {
			lines = append(lines, "problem: "+m.Problem)
		}
	}
	return strings.Join(lines, "\n")
}

func fmtAttrs(m bracket.Match, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case m.IsRoundRobin():
		attrs = append(attrs, "shape=ellipse", "fillcolor=\"#ffd700\"")
	case m.GrandFinal:
		attrs = append(attrs, "penwidth=4")
	case m.ThirdPlace:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	if bracket.StateOf(m) == bracket.Complete && !m.IsRoundRobin() {
		attrs = append(attrs, "fillcolor=\"#e5e7eb\"")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	out, err := render(dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg tag with one whose
// width and height match the viewBox, like the native sink emits.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
