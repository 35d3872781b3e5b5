// Package workflow drives the per-match detail view: open, start, record
// completion, reset.
//
// The backend owns all match state. A [View] issues the backend calls and
// shows their results; it never changes a match on its own. The match state
// ([bracket.StateOf]) gates every action locally:
//
//	Not Ready ─open─✗   Ready ─Start─▶ In Progress ─Complete×2─▶ Complete
//	                      ▲                 │                        │
//	                      └─────Reset───────┴────────Reset───────────┘
//
// # Timer ownership
//
// A view owns at most one elapsed-time ticker, acquired when the match is
// in progress and released on Close, completion and reset. A [Session]
// closes the previous view before opening the next one. Responses that
// arrive after Close are dropped and return [ErrViewClosed].
//
// # Countdown
//
// Starting may be preceded by a [Countdown], the explicit state machine
// Idle → CountingDown(n) → Revealing → Started. It is ticked by a single
// [Ticker] from the view's [Clock]; tests drive it with a manual clock.
//
// # Problems
//
// Problem markup is shown title-only ([ProblemTitle]) until the match has
// started, and in full afterwards.
//
// [bracket.StateOf]: github.com/matzehuels/bracketeer/pkg/bracket.StateOf
package workflow
