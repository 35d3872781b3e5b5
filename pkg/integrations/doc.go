// Package integrations provides the shared HTTP client used to talk to the
// tournament backend.
//
// # Overview
//
// The backend API client lives in a subpackage:
//
//   - [arena]: bracket, match, problem and match-action endpoints
//
// # Client Pattern
//
//	client := arena.NewClient("http://localhost:5000", c, cache.TTLProblem)
//	matches, err := client.FetchBracket(ctx)
//
// The shared [Client] handles:
//   - JSON and text requests with per-request IDs (X-Request-ID)
//   - retry with backoff for network failures and 5xx responses
//   - optional rate limiting via golang.org/x/time/rate
//   - response caching through [cache.Cache] for immutable resources
//
// # Errors
//
// Non-2xx responses are returned as [*StatusError], which wraps one of
// [ErrNotFound], [ErrRateLimited], [ErrNetwork] or [ErrRejected] and keeps
// the response body so the backend's {"error": "..."} message can be shown.
//
// [arena]: github.com/matzehuels/bracketeer/pkg/integrations/arena
// [cache.Cache]: github.com/matzehuels/bracketeer/pkg/cache.Cache
package integrations
