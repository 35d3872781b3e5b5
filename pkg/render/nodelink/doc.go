// Package nodelink renders brackets as Graphviz node-link diagrams.
//
// # Overview
//
// The bracket layouts in package layout reproduce the classic tournament
// tree. This package is a debugging view: every match becomes a node and
// every winner, loser and sub-match reference an edge, so wiring mistakes
// that the tree layout would hide (cycles, dangling links, stray matches)
// are visible at a glance.
//
// # Usage
//
//	dot := nodelink.ToDOT(matches, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(dot)
//	png, err := nodelink.RenderPNG(dot)
//
// Double-elimination brackets are grouped into upper, lower and grand final
// clusters. References to matches missing from the list are not drawn.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz], which runs Graphviz
// in-process, so no system installation is required.
package nodelink
