package pipeline

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bracketeer/pkg/bracket"
	"github.com/matzehuels/bracketeer/pkg/bracket/brackettest"
	"github.com/matzehuels/bracketeer/pkg/cache"
	"github.com/matzehuels/bracketeer/pkg/errors"
	"github.com/matzehuels/bracketeer/pkg/integrations/arena"
	"github.com/matzehuels/bracketeer/pkg/integrations/arena/arenatest"
	"github.com/matzehuels/bracketeer/pkg/layout"
	"github.com/matzehuels/bracketeer/pkg/observability"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(&bytes.Buffer{}, log.Options{})
}

// staticSource serves a fixed match list.
type staticSource []bracket.Match

func (s staticSource) FetchBracket(context.Context) ([]bracket.Match, error) { return s, nil }

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		view, format string
		wantErr      bool
	}{
		{ViewBracket, FormatSVG, false},
		{ViewBracket, FormatPNG, false},
		{ViewBracket, FormatJSON, false},
		{ViewBracket, FormatDOT, true},
		{ViewNodelink, FormatDOT, false},
		{ViewNodelink, FormatSVG, false},
		{ViewNodelink, FormatJSON, true},
		{ViewBracket, "pdf", true},
	}
	for _, tt := range tests {
		t.Run(tt.view+"/"+tt.format, func(t *testing.T) {
			err := ValidateFormat(tt.view, tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateFormat(%q, %q) = %v, wantErr %v", tt.view, tt.format, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("code = %s, want INVALID_FORMAT", errors.GetCode(err))
			}
		})
	}
}

func TestValidateStyle(t *testing.T) {
	for _, s := range []string{StyleSimple, StyleHanddrawn} {
		if err := ValidateStyle(s); err != nil {
			t.Errorf("ValidateStyle(%q) = %v", s, err)
		}
	}
	if err := ValidateStyle("crayon"); !errors.Is(err, errors.ErrCodeInvalidStyle) {
		t.Errorf("ValidateStyle(crayon) = %v, want INVALID_STYLE", err)
	}
}

func TestValidateView(t *testing.T) {
	if err := ValidateView("tower"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ValidateView(tower) = %v, want INVALID_INPUT", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.View != DefaultView {
		t.Errorf("View = %q, want %q", opts.View, DefaultView)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Style != DefaultStyle {
		t.Errorf("Style = %q, want %q", opts.Style, DefaultStyle)
	}
	if opts.Seed != DefaultSeed || opts.Scale != DefaultScale {
		t.Errorf("Seed, Scale = %d, %g", opts.Seed, opts.Scale)
	}
	if opts.Logger == nil {
		t.Error("Logger not defaulted")
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Style: StyleHanddrawn}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	before := opts.ArtifactKeyOpts(FormatSVG)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.ArtifactKeyOpts(FormatSVG) != before {
		t.Error("second ValidateAndSetDefaults changed the options")
	}
}

func TestOptionsInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"format", Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"view format", Options{View: ViewNodelink, Formats: []string{FormatJSON}}, errors.ErrCodeInvalidFormat},
		{"style", Options{Style: "neon"}, errors.ErrCodeInvalidStyle},
		{"view", Options{View: "tower"}, errors.ErrCodeInvalidInput},
		{"scale", Options{Scale: -1}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Style: StyleHanddrawn, Seed: 7, Scale: 3, Interactive: true}
	opts.SetDefaults()

	png := opts.ArtifactKeyOpts(FormatPNG)
	if png.Style != "" || png.Seed != 0 || png.Scale != 3 {
		t.Errorf("png key = %+v, want scale only", png)
	}
	svg := opts.ArtifactKeyOpts(FormatSVG)
	if svg.Style != StyleHanddrawn || svg.Seed != 7 || !svg.Interactive || svg.Scale != 0 {
		t.Errorf("svg key = %+v", svg)
	}

	opts.View = ViewNodelink
	dot := opts.ArtifactKeyOpts(FormatDOT)
	if dot.Style != "" || dot.Seed != 0 || dot.View != ViewNodelink {
		t.Errorf("nodelink key = %+v", dot)
	}
}

func TestExecuteFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bracket.json")
	if err := bracket.WriteFile(path, brackettest.Single(8)); err != nil {
		t.Fatal(err)
	}

	runner := NewRunner(nil, nil, quietLogger())
	result, err := runner.Execute(context.Background(), FileSource(path), Options{
		Formats: []string{FormatSVG, FormatJSON, FormatPNG},
	})
	if err != nil {
		t.Fatalf("Execute() = %v", err)
	}

	if result.Topology != bracket.SingleElimination {
		t.Errorf("Topology = %s", result.Topology)
	}
	if result.Stats.MatchCount != 8 || result.Stats.BoxCount != 8 {
		t.Errorf("Stats = %+v, want 8 matches and 8 boxes", result.Stats)
	}
	if result.BracketHash == "" {
		t.Error("BracketHash is empty")
	}
	if !bytes.HasPrefix(result.Artifacts[FormatSVG], []byte("<svg")) {
		t.Error("svg artifact is not an SVG document")
	}
	if !bytes.Contains(result.Artifacts[FormatJSON], []byte(`"topology"`)) {
		t.Errorf("json artifact = %.80s", result.Artifacts[FormatJSON])
	}
	if !bytes.HasPrefix(result.Artifacts[FormatPNG], []byte("\x89PNG")) {
		t.Error("png artifact is not a PNG")
	}
}

func TestExecuteMissingFile(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	_, err := runner.Execute(context.Background(), FileSource(filepath.Join(t.TempDir(), "nope.json")), Options{})
	if err == nil {
		t.Fatal("Execute() on a missing file should fail")
	}
}

func TestExecuteArtifactCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, quietLogger())
	src := staticSource(brackettest.Double(8))
	ctx := context.Background()

	first, err := runner.Execute(ctx, src, Options{Formats: []string{FormatSVG, FormatJSON}})
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first run should miss the artifact cache")
	}

	second, err := runner.Execute(ctx, src, Options{Formats: []string{FormatSVG, FormatJSON}})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should hit the artifact cache")
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached svg differs from rendered svg")
	}

	restyled, err := runner.Execute(ctx, src, Options{Style: StyleHanddrawn})
	if err != nil {
		t.Fatal(err)
	}
	if restyled.CacheInfo.RenderHit {
		t.Error("a different style must not hit the cache")
	}

	refreshed, err := runner.Execute(ctx, src, Options{Formats: []string{FormatSVG, FormatJSON}, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheInfo.RenderHit {
		t.Error("Refresh must bypass the artifact cache")
	}
}

func TestExecuteChangedBracketMissesCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, quietLogger())
	ctx := context.Background()

	matches := brackettest.Single(4)
	if _, err := runner.Execute(ctx, staticSource(matches), Options{}); err != nil {
		t.Fatal(err)
	}
	matches[0].Result1 = "0:01:00.000000"
	result, err := runner.Execute(ctx, staticSource(matches), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if result.CacheInfo.RenderHit {
		t.Error("a changed match list must be rendered again")
	}
}

func TestExecuteStrict(t *testing.T) {
	matches := brackettest.Single(4)
	// Match 2 no longer feeds the final, which is left with one feeder.
	matches[1].WinnerTo = nil

	runner := NewRunner(nil, nil, quietLogger())
	lenient, err := runner.Execute(context.Background(), staticSource(matches), Options{})
	if err != nil {
		t.Fatalf("lenient Execute() = %v", err)
	}
	if lenient.Stats.Skipped == 0 {
		t.Error("expected skipped matches in lenient mode")
	}

	_, err = runner.Execute(context.Background(), staticSource(matches), Options{Strict: true})
	if !errors.Is(err, errors.ErrCodeMalformedTopology) {
		t.Errorf("strict Execute() = %v, want MALFORMED_TOPOLOGY", err)
	}
}

func TestExecuteEmptyBracket(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	_, err := runner.Execute(context.Background(), staticSource(nil), Options{})
	if !errors.Is(err, errors.ErrCodeMalformedTopology) {
		t.Errorf("Execute() = %v, want MALFORMED_TOPOLOGY", err)
	}
}

func TestExecuteFromArena(t *testing.T) {
	backend := arenatest.New(brackettest.Single(4))
	backend.SetProblem("problem-1.md", "<h1>Two Sum</h1><p>Given an array...</p>")
	srv := backend.Start(t)

	client := arena.NewClient(srv.URL, nil, time.Hour)
	runner := NewRunner(nil, nil, quietLogger())
	result, err := runner.Execute(context.Background(), client, Options{Titles: true})
	if err != nil {
		t.Fatalf("Execute() = %v", err)
	}

	box, ok := result.Layout.Box(1)
	if !ok {
		t.Fatal("match 1 has no box")
	}
	if len(box.Lines) != 3 || box.Lines[2].Role != layout.RoleProblem || box.Lines[2].Text != "Two Sum" {
		t.Errorf("match 1 lines = %+v, want the problem title last", box.Lines)
	}
	// Problems that fail to load are left without a title.
	if box2, _ := result.Layout.Box(2); len(box2.Lines) != 2 {
		t.Errorf("match 2 lines = %+v, want participants only", box2.Lines)
	}
	if !strings.Contains(string(result.Artifacts[FormatSVG]), "Two Sum") {
		t.Error("svg does not show the problem title")
	}
}

func TestExecuteNodelinkDOT(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	result, err := runner.Execute(context.Background(), staticSource(brackettest.Hybrid(12)), Options{
		View:    ViewNodelink,
		Formats: []string{FormatDOT},
	})
	if err != nil {
		t.Fatalf("Execute() = %v", err)
	}
	if result.Topology != bracket.Hybrid {
		t.Errorf("Topology = %s", result.Topology)
	}
	if len(result.Layout.Boxes) != 0 {
		t.Error("node-link view should not compute a bracket layout")
	}
	if !strings.HasPrefix(string(result.Artifacts[FormatDOT]), "digraph G {") {
		t.Errorf("dot artifact = %.40s", result.Artifacts[FormatDOT])
	}
}

func TestProblemIDs(t *testing.T) {
	matches := []bracket.Match{
		{Num: 1, Problem: "b"},
		{Num: 2, Problem: "a"},
		{Num: 3, Problem: "b"},
		{Num: 4},
	}
	got := problemIDs(matches)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("problemIDs() = %v, want [a b]", got)
	}
}

// recordingHooks counts pipeline events.
type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) add(e string) {
	h.mu.Lock()
	h.events = append(h.events, e)
	h.mu.Unlock()
}

func (h *recordingHooks) OnFetchStart(context.Context, string) { h.add("fetch") }
func (h *recordingHooks) OnLayoutStart(_ context.Context, topo string, _ int) {
	h.add("layout:" + topo)
}
func (h *recordingHooks) OnRenderStart(context.Context, []string) { h.add("render") }

func TestExecuteHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	runner := NewRunner(nil, nil, quietLogger())
	if _, err := runner.Execute(context.Background(), staticSource(brackettest.Double(4)), Options{}); err != nil {
		t.Fatal(err)
	}
	want := []string{"fetch", "layout:double", "render"}
	if strings.Join(hooks.events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", hooks.events, want)
	}
}
