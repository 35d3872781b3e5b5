package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/bracketeer/pkg/bracket"
	"github.com/matzehuels/bracketeer/pkg/bracket/brackettest"
	"github.com/matzehuels/bracketeer/pkg/cache"
	"github.com/matzehuels/bracketeer/pkg/errors"
	"github.com/matzehuels/bracketeer/pkg/integrations/arena"
	"github.com/matzehuels/bracketeer/pkg/integrations/arena/arenatest"
	"github.com/matzehuels/bracketeer/pkg/pipeline"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

type fixture struct {
	backend *arenatest.Backend
	server  *Server
	http    *httptest.Server
}

func newFixture(t *testing.T, matches []bracket.Match) *fixture {
	t.Helper()
	backend := arenatest.New(matches)
	api := backend.Start(t)

	client := arena.NewClient(api.URL, nil, time.Hour)
	client.SetBackoff(cache.Backoff{Attempts: 1})

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := pipeline.NewRunner(fc, nil, quietLogger())
	srv := New(Config{PollInterval: time.Hour}, client, runner, quietLogger())

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go srv.Hub().Run(ctx)

	return &fixture{backend: backend, server: srv, http: ts}
}

func (f *fixture) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(f.http.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestRenderEndpoints(t *testing.T) {
	f := newFixture(t, brackettest.Single(8))

	tests := []struct {
		path        string
		status      int
		contentType string
		prefix      string
	}{
		{"/bracket.svg", http.StatusOK, "image/svg+xml", "<svg"},
		{"/bracket.svg?style=handdrawn&seed=3&interactive=true", http.StatusOK, "image/svg+xml", "<svg"},
		{"/bracket.json", http.StatusOK, "application/json; charset=utf-8", "{"},
		{"/bracket.png?scale=1", http.StatusOK, "image/png", "\x89PNG"},
		{"/bracket.dot?view=nodelink", http.StatusOK, "text/vnd.graphviz; charset=utf-8", "digraph G {"},
		{"/bracket.dot", http.StatusBadRequest, "", ""},
		{"/bracket.svg?style=neon", http.StatusBadRequest, "", ""},
		{"/bracket.svg?seed=abc", http.StatusBadRequest, "", ""},
		{"/bracket.png?scale=-2", http.StatusBadRequest, "", ""},
		{"/bracket.svg?strict=maybe", http.StatusBadRequest, "", ""},
		{"/bracket.svg?view=tower", http.StatusBadRequest, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := f.get(t, tt.path)
			body := readBody(t, resp)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.status, body)
			}
			if tt.status != http.StatusOK {
				var e map[string]string
				if err := json.Unmarshal(body, &e); err != nil || e["error"] == "" {
					t.Errorf("error body = %s", body)
				}
				return
			}
			if got := resp.Header.Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			if !bytes.HasPrefix(body, []byte(tt.prefix)) {
				t.Errorf("body starts %q, want %q", body[:min(len(body), 20)], tt.prefix)
			}
		})
	}
}

func TestRenderUsesArtifactCache(t *testing.T) {
	f := newFixture(t, brackettest.Double(4))

	first := f.get(t, "/bracket.svg")
	if got := first.Header.Get("X-Cache"); got != "miss" {
		t.Errorf("first X-Cache = %q, want miss", got)
	}
	second := f.get(t, "/bracket.svg")
	if got := second.Header.Get("X-Cache"); got != "hit" {
		t.Errorf("second X-Cache = %q, want hit", got)
	}
	if first.Header.Get("ETag") == "" || first.Header.Get("ETag") != second.Header.Get("ETag") {
		t.Errorf("ETags = %q, %q", first.Header.Get("ETag"), second.Header.Get("ETag"))
	}
	refreshed := f.get(t, "/bracket.svg?refresh=true")
	if got := refreshed.Header.Get("X-Cache"); got != "miss" {
		t.Errorf("refresh X-Cache = %q, want miss", got)
	}
}

func TestRenderMalformedStrict(t *testing.T) {
	matches := brackettest.Single(4)
	matches[1].WinnerTo = nil
	f := newFixture(t, matches)

	if resp := f.get(t, "/bracket.svg"); resp.StatusCode != http.StatusOK {
		t.Errorf("lenient status = %d, want 200", resp.StatusCode)
	}
	if resp := f.get(t, "/bracket.svg?strict=true"); resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("strict status = %d, want 422", resp.StatusCode)
	}
}

func TestBracketAPI(t *testing.T) {
	f := newFixture(t, brackettest.Hybrid(12))

	resp := f.get(t, "/api/bracket")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.Topology != "hybrid" || len(snap.Matches) == 0 || snap.Hash == "" {
		t.Errorf("snapshot = %s with %d matches, hash %q", snap.Topology, len(snap.Matches), snap.Hash)
	}
	if resp.Header.Get("ETag") != `"`+snap.Hash+`"` {
		t.Errorf("ETag = %q", resp.Header.Get("ETag"))
	}
}

func TestNoBracket(t *testing.T) {
	f := newFixture(t, nil)

	resp := f.get(t, "/api/bracket")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("/api/bracket status = %d, want 404", resp.StatusCode)
	}
	resp = f.get(t, "/bracket.svg")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("/bracket.svg status = %d, want 404", resp.StatusCode)
	}
	// No bracket is not a health problem.
	if resp := f.get(t, "/healthz"); resp.StatusCode != http.StatusOK {
		t.Errorf("/healthz status = %d, want 200", resp.StatusCode)
	}
}

func TestHealthBackendDown(t *testing.T) {
	client := arena.NewClient("http://127.0.0.1:1", nil, time.Hour)
	client.SetBackoff(cache.Backoff{Attempts: 1})
	srv := New(Config{}, client, pipeline.NewRunner(nil, nil, quietLogger()), quietLogger())

	if err := srv.Poller().Poll(context.Background()); err == nil {
		t.Fatal("Poll() against a closed port should fail")
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	var body map[string]struct{ Status string }
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["backend"].Status != "error" || body["cache"].Status != "ok" {
		t.Errorf("checks = %+v", body)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidStyle, http.StatusBadRequest},
		{errors.ErrCodeNoBracket, http.StatusNotFound},
		{errors.ErrCodeMalformedTopology, http.StatusUnprocessableEntity},
		{errors.ErrCodeRateLimited, http.StatusTooManyRequests},
		{errors.ErrCodeTimeout, http.StatusGatewayTimeout},
		{errors.ErrCodeNetwork, http.StatusBadGateway},
		{errors.ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := statusFor(errors.New(tt.code, "x")); got != tt.want {
				t.Errorf("statusFor(%s) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func dial(t *testing.T, f *fixture, room string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws?room=" + room
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", room, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var raw struct {
		Type    string          `json:"type"`
		Room    string          `json:"room"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := conn.ReadJSON(&raw); err != nil {
		t.Fatalf("read: %v", err)
	}
	return Message{Type: raw.Type, Room: raw.Room, Payload: raw.Payload}
}

func waitForClients(t *testing.T, h *Hub, room string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Clients(room) != n {
		if time.Now().After(deadline) {
			t.Fatalf("room %s has %d clients, want %d", room, h.Clients(room), n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestWebsocketUpdates(t *testing.T) {
	f := newFixture(t, brackettest.Single(4))
	ctx := context.Background()
	if err := f.server.Poller().Poll(ctx); err != nil {
		t.Fatal(err)
	}

	bracketConn := dial(t, f, RoomBracket)
	matchConn := dial(t, f, MatchRoom(1))
	otherConn := dial(t, f, MatchRoom(2))
	waitForClients(t, f.server.Hub(), RoomBracket, 1)

	// Joining replays the latest state.
	if msg := readMessage(t, bracketConn); msg.Type != MessageBracket {
		t.Fatalf("first bracket message type = %q", msg.Type)
	}
	if msg := readMessage(t, matchConn); msg.Type != MessageMatch || msg.Room != MatchRoom(1) {
		t.Fatalf("first match message = %+v", msg)
	}
	readMessage(t, otherConn)

	// Unchanged polls broadcast nothing; a changed match reaches its room.
	if err := f.server.Poller().Poll(ctx); err != nil {
		t.Fatal(err)
	}
	matches := f.backend.Matches()
	matches[0].StartTime = "2025-03-01T12:00:00"
	f.backend.SetMatches(matches)
	if err := f.server.Poller().Poll(ctx); err != nil {
		t.Fatal(err)
	}

	msg := readMessage(t, matchConn)
	var m bracket.Match
	if err := json.Unmarshal(msg.Payload.(json.RawMessage), &m); err != nil {
		t.Fatal(err)
	}
	if m.Num != 1 || m.StartTime == "" {
		t.Errorf("match update = %+v", m)
	}
	if msg := readMessage(t, bracketConn); msg.Type != MessageBracket {
		t.Errorf("bracket update type = %q", msg.Type)
	}

	_ = otherConn.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
	if _, _, err := otherConn.ReadMessage(); err == nil {
		t.Error("match 2 room received an update for match 1")
	}
}

func TestWebsocketUnknownRoom(t *testing.T) {
	f := newFixture(t, brackettest.Single(4))
	for _, room := range []string{"lobby", "match:", "match:x", "match:0"} {
		if resp := f.get(t, "/ws?room="+room); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("room %q status = %d, want 400", room, resp.StatusCode)
		}
	}
}

func TestServeShutdown(t *testing.T) {
	backend := arenatest.New(brackettest.Single(4))
	api := backend.Start(t)
	client := arena.NewClient(api.URL, nil, time.Hour)
	srv := New(Config{PollInterval: 10 * time.Millisecond}, client, pipeline.NewRunner(nil, nil, quietLogger()), quietLogger())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	deadline := time.Now().Add(2 * time.Second)
	for srv.Poller().Current() == nil {
		if time.Now().After(deadline) {
			t.Fatal("poller never fetched the bracket")
		}
		time.Sleep(time.Millisecond)
	}
	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}
