package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bracketeer/pkg/bracket"
	"github.com/matzehuels/bracketeer/pkg/cache"
	"github.com/matzehuels/bracketeer/pkg/errors"
	"github.com/matzehuels/bracketeer/pkg/pipeline"
)

// DefaultPollInterval is used when Config.PollInterval is unset.
const DefaultPollInterval = 2 * time.Second

// Snapshot is one fetched state of the bracket. Snapshots are never
// modified after they are published.
type Snapshot struct {
	Hash      string          `json:"hash"`
	Topology  string          `json:"topology"`
	FetchedAt time.Time       `json:"fetched_at"`
	Matches   []bracket.Match `json:"matches"`
}

// Poller refetches the bracket and broadcasts what changed.
type Poller struct {
	src      pipeline.Source
	hub      *Hub
	interval time.Duration
	logger   *log.Logger

	mu      sync.RWMutex
	current *Snapshot
	matches map[int]string // match number → hash of its JSON
	lastErr error
}

// NewPoller creates a poller. A non-positive interval means
// DefaultPollInterval.
func NewPoller(src pipeline.Source, hub *Hub, interval time.Duration, logger *log.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		src:      src,
		hub:      hub,
		interval: interval,
		logger:   logger,
		matches:  make(map[int]string),
	}
}

// Run polls immediately and then every interval until ctx is cancelled.
// Fetch failures are logged and retried on the next tick; they never stop
// the loop.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		_ = p.Poll(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Poll fetches the bracket once and broadcasts the changes.
func (p *Poller) Poll(ctx context.Context) error {
	matches, err := p.src.FetchBracket(ctx)
	if err != nil {
		p.setErr(err)
		if ctx.Err() != nil {
			return err
		}
		if errors.Is(err, errors.ErrCodeNoBracket) {
			p.logger.Debug("no bracket yet")
		} else {
			p.logger.Warn("poll bracket", "error", err)
		}
		return err
	}

	hash, err := cache.HashJSON(matches)
	if err != nil {
		p.setErr(err)
		return err
	}

	p.mu.Lock()
	p.lastErr = nil
	if p.current != nil && p.current.Hash == hash {
		refreshed := *p.current
		refreshed.FetchedAt = time.Now()
		p.current = &refreshed
		p.mu.Unlock()
		return nil
	}
	snap := &Snapshot{
		Hash:      hash,
		Topology:  bracket.Classify(matches).String(),
		FetchedAt: time.Now(),
		Matches:   matches,
	}
	p.current = snap
	changed := p.diffLocked(matches)
	p.mu.Unlock()

	p.logger.Info("bracket changed", "matches", len(matches), "changed", len(changed))
	p.hub.Broadcast(RoomBracket, MessageBracket, snap)
	for _, m := range changed {
		p.hub.Broadcast(MatchRoom(m.Num), MessageMatch, m)
	}
	return nil
}

// diffLocked records the per-match hashes and returns the matches whose
// JSON changed since the previous poll.
func (p *Poller) diffLocked(matches []bracket.Match) []bracket.Match {
	seen := make(map[int]string, len(matches))
	var changed []bracket.Match
	for _, m := range matches {
		data, err := json.Marshal(m)
		if err != nil {
			continue
		}
		h := cache.Hash(data)
		seen[m.Num] = h
		if p.matches[m.Num] != h {
			changed = append(changed, m)
		}
	}
	p.matches = seen
	return changed
}

func (p *Poller) setErr(err error) {
	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()
}

// Current returns the latest snapshot, or nil before the first
// successful poll.
func (p *Poller) Current() *Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Err returns the error of the latest poll, or nil if it succeeded.
func (p *Poller) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastErr
}
