package pipeline

import (
	"fmt"

	"github.com/matzehuels/bracketeer/pkg/bracket"
	"github.com/matzehuels/bracketeer/pkg/layout"
	"github.com/matzehuels/bracketeer/pkg/render/nodelink"
	"github.com/matzehuels/bracketeer/pkg/render/sink"
	"github.com/matzehuels/bracketeer/pkg/render/styles"
	"github.com/matzehuels/bracketeer/pkg/render/styles/handdrawn"
)

// RenderFromLayout produces every requested format. The bracket view draws
// l; the node-link view ignores l and renders matches through Graphviz.
func RenderFromLayout(l layout.Layout, matches []bracket.Match, opts Options) (map[string][]byte, error) {
	if opts.IsNodelink() {
		return renderNodelink(matches, opts)
	}
	return renderBracket(l, opts)
}

func renderBracket(l layout.Layout, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatSVG:
			data = sink.RenderSVG(l, svgOptions(opts)...)
		case FormatJSON:
			data, err = sink.RenderJSON(l, sink.WithJSONStyle(opts.Style), sink.WithJSONSeed(opts.Seed))
		case FormatPNG:
			data, err = sink.RenderPNG(l, sink.WithScale(opts.Scale))
		default:
			err = ValidateFormat(ViewBracket, format)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func svgOptions(opts Options) []sink.SVGOption {
	out := []sink.SVGOption{sink.WithStyle(newStyle(opts))}
	if opts.Interactive {
		out = append(out, sink.WithInteraction())
	}
	return out
}

func newStyle(opts Options) styles.Style {
	if opts.Style == StyleHanddrawn {
		return handdrawn.New(opts.Seed)
	}
	return styles.Simple{}
}

func renderNodelink(matches []bracket.Match, opts Options) (map[string][]byte, error) {
	dot := nodelink.ToDOT(matches, nodelink.Options{Detailed: opts.Detailed})
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = nodelink.RenderSVG(dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(dot)
		default:
			err = ValidateFormat(ViewNodelink, format)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
