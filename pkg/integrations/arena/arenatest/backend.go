// Package arenatest provides an in-memory tournament backend for tests.
//
// The fake serves the same endpoints as the real backend and mutates its
// match list the same way: start records a start time, complete records the
// elapsed time and advances the winner (and loser) once both results are in,
// and the round-robin winner is decided when all three sub-matches finish.
package arenatest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/bracketeer/pkg/bracket"
	"github.com/matzehuels/bracketeer/pkg/bracket/brackettest"
)

// StartLayout is the naive UTC timestamp form the backend stores.
const StartLayout = "2006-01-02T15:04:05.999999"

// Backend is a fake tournament backend. The zero value is not usable; call
// [New].
type Backend struct {
	mu       sync.Mutex
	matches  []bracket.Match
	problems map[string]string
	requests []string

	// Now supplies the clock for start and completion times.
	Now func() time.Time
}

// New creates a backend serving a copy of matches. A nil list means no
// bracket exists yet.
func New(matches []bracket.Match) *Backend {
	return &Backend{
		matches: clone(matches),
		Now:     time.Now,
	}
}

// Start serves the backend on a test server that is closed with t.
func (b *Backend) Start(t testing.TB) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)
	return srv
}

// SetProblem registers markup for a problem identifier. Without any
// registered problems every identifier gets generated markup.
func (b *Backend) SetProblem(id, markup string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.problems == nil {
		b.problems = map[string]string{}
	}
	b.problems[id] = markup
}

// SetMatches replaces the match list.
func (b *Backend) SetMatches(matches []bracket.Match) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.matches = clone(matches)
}

// Matches returns a copy of the current match list.
func (b *Backend) Matches() []bracket.Match {
	b.mu.Lock()
	defer b.mu.Unlock()
	return clone(b.matches)
}

// Requests returns "METHOD path" for every request served so far.
func (b *Backend) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

// Handler returns the backend's routes.
func (b *Backend) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(b.record)
	r.Get("/api/bracket", b.getBracket)
	r.Post("/api/create_bracket", b.createBracket)
	r.Get("/api/match/{num}", b.withMatch(b.getMatch))
	r.Post("/api/start/{num}", b.withMatch(b.startMatch))
	r.Post("/api/complete/{num}", b.withMatch(b.completeMatch))
	r.Post("/api/reset/{num}", b.withMatch(b.resetMatch))
	r.Get("/api/problem/{id}", b.getProblem)
	return r
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, r.Method+" "+r.URL.Path)
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (b *Backend) getBracket(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.matches) == 0 {
		writeError(w, http.StatusOK, "No bracket")
		return
	}
	writeJSON(w, http.StatusOK, b.matches)
}

func (b *Backend) createBracket(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	var matches []bracket.Match
	switch req.Type {
	case "single":
		matches = brackettest.Single(8)
	case "double":
		matches = brackettest.Double(8)
	case "hybrid":
		matches = brackettest.Hybrid(12)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported bracket type: %s", req.Type))
		return
	}
	b.mu.Lock()
	b.matches = matches
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, matches)
}

// withMatch resolves {num} and runs h with the lock held.
func (b *Backend) withMatch(h func(http.ResponseWriter, *http.Request, *bracket.Match)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		num, err := strconv.Atoi(chi.URLParam(r, "num"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid match number")
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		m := b.find(num)
		if m == nil {
			writeError(w, http.StatusNotFound, "Match not found")
			return
		}
		h(w, r, m)
	}
}

func (b *Backend) find(num int) *bracket.Match {
	for i := range b.matches {
		if b.matches[i].Num == num {
			return &b.matches[i]
		}
	}
	return nil
}

func (b *Backend) getMatch(w http.ResponseWriter, _ *http.Request, m *bracket.Match) {
	writeJSON(w, http.StatusOK, m)
}

func (b *Backend) startMatch(w http.ResponseWriter, _ *http.Request, m *bracket.Match) {
	m.StartTime = b.Now().UTC().Format(StartLayout)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (b *Backend) resetMatch(w http.ResponseWriter, _ *http.Request, m *bracket.Match) {
	m.StartTime = ""
	m.Result1 = ""
	m.Result2 = ""
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (b *Backend) completeMatch(w http.ResponseWriter, r *http.Request, m *bracket.Match) {
	var req struct {
		Participant int `json:"participant"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	start, ok := m.StartedAt()
	if !ok {
		writeError(w, http.StatusBadRequest, "Match not started")
		return
	}
	elapsed := bracket.FormatElapsed(b.Now().Sub(start))
	if req.Participant == 1 {
		m.Result1 = elapsed
	} else {
		m.Result2 = elapsed
	}
	if slot, decided := bracket.WinnerOf(*m); decided {
		b.advance(*m, slot)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// advance moves the winner and loser of a decided match to their next
// matches and settles the round-robin when its last sub-match finishes.
func (b *Backend) advance(m bracket.Match, slot int) {
	winner, loser := m.Participant(slot), m.Participant(3-slot)

	if to, ok := m.WinnerTarget(); ok {
		if next := b.find(to); next != nil {
			if next.IsRoundRobin() {
				b.seedRoundRobin(*next)
			} else {
				fill(next, winner)
			}
		}
	}
	if to, ok := m.LoserTarget(); ok {
		if next := b.find(to); next != nil {
			fill(next, loser)
		}
	}

	for i := range b.matches {
		rr := &b.matches[i]
		if !rr.IsRoundRobin() || !contains(rr.SubMatches, m.Num) {
			continue
		}
		wins := map[string]int{}
		for _, n := range rr.SubMatches {
			sub := b.find(n)
			if sub == nil {
				return
			}
			s, ok := bracket.WinnerOf(*sub)
			if !ok {
				return
			}
			wins[sub.Participant(s).Name()]++
		}
		for name, n := range wins {
			if n >= 2 {
				rr.Winner = name
			}
		}
	}
}

// seedRoundRobin fills the sub-matches once all three finalists are known.
func (b *Backend) seedRoundRobin(rr bracket.Match) {
	var finalists []bracket.Participant
	for _, f := range b.matches {
		if to, ok := f.WinnerTarget(); !ok || to != rr.Num {
			continue
		}
		if s, ok := bracket.WinnerOf(f); ok {
			finalists = append(finalists, f.Participant(s))
		}
	}
	if len(finalists) != 3 || len(rr.SubMatches) != 3 {
		return
	}
	for i, n := range rr.SubMatches {
		if sub := b.find(n); sub != nil {
			sub.Participant1 = finalists[i]
			sub.Participant2 = finalists[(i+1)%3]
		}
	}
}

func fill(m *bracket.Match, p bracket.Participant) {
	if !m.Participant1.IsResolved() {
		m.Participant1 = p
		return
	}
	m.Participant2 = p
}

func contains(nums []int, n int) bool {
	for _, x := range nums {
		if x == n {
			return true
		}
	}
	return false
}

func (b *Backend) getProblem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b.mu.Lock()
	markup, ok := b.problems[id]
	registered := b.problems != nil
	b.mu.Unlock()
	if !ok {
		if registered {
			http.NotFound(w, r)
			return
		}
		markup = fmt.Sprintf("<h1>Problem %s</h1>\n<p>Solve it.</p>", id)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(markup))
}

func clone(matches []bracket.Match) []bracket.Match {
	if matches == nil {
		return nil
	}
	data, err := json.Marshal(matches)
	if err != nil {
		panic(err)
	}
	var out []bracket.Match
	if err := json.Unmarshal(data, &out); err != nil {
		panic(err)
	}
	return out
}
