// Package bracket defines the tournament match model consumed by the layout
// engine and the match workflow.
//
// # Overview
//
// A bracket is a flat list of [Match] records. Structure is expressed only
// through links: a match names the match its winner advances to
// (winner_proceeds_to) and, in double elimination, the match its loser drops
// to (loser_proceeds_to). Everything else is derived:
//
//   - Round membership ([Round], [GroupRounds]) is found by walking from a
//     match to the match that feeds it, counting steps.
//   - The bracket's shape ([Classify]) is read from a few marker fields.
//   - A match's workflow [State] is read from its participants, start time
//     and recorded results.
//
// Nothing in this package mutates a match list. [Index] gives constant-time
// lookups for one pass and is discarded afterwards.
//
// # Participants
//
// The backend sends a participant as null, a bare string or an object.
// [Participant] turns that into a closed variant with three kinds:
//
//	switch p.Kind() {
//	case bracket.KindUnresolved:  // nobody has advanced here yet
//	case bracket.KindPlaceholder: // "Winner of M3"
//	case bracket.KindResolved:    // p.Name(), p.House()
//	}
//
// # Wire format
//
// [Decode] reads the backend's JSON list. A bracket-less backend answers with
// an {"error": "..."} object, which Decode reports as
// [errors.ErrCodeNoBracket].
package bracket
