// Package arena provides a client for the tournament backend API.
//
// The backend owns all tournament state: the match list, participants,
// problems and start/completion times. This client issues the reads and
// match actions and maps failures onto bracketeer's error codes:
//
//   - no bracket yet: [errors.ErrCodeNoBracket]
//   - start/complete/reset refused: [errors.ErrCodeActionRejected]
//   - unknown match: [errors.ErrCodeMatchNotFound]
//
// Problem markup is cached by backend address and problem identifier.
// Match lists are always fetched fresh.
//
// # Usage
//
//	client := arena.NewClient("http://localhost:5000", cache.NewNullCache(), cache.TTLProblem)
//	matches, err := client.FetchBracket(ctx)
//	if errors.Is(err, errors.ErrCodeNoBracket) {
//	    matches, err = client.CreateBracket(ctx, bracket.SingleElimination)
//	}
//
// [errors.ErrCodeNoBracket]: github.com/matzehuels/bracketeer/pkg/errors.ErrCodeNoBracket
// [errors.ErrCodeActionRejected]: github.com/matzehuels/bracketeer/pkg/errors.ErrCodeActionRejected
// [errors.ErrCodeMatchNotFound]: github.com/matzehuels/bracketeer/pkg/errors.ErrCodeMatchNotFound
package arena
