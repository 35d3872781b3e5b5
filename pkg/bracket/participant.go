package bracket

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ParticipantKind tags the variant held by a [Participant].
type ParticipantKind int

const (
	// KindUnresolved means no one has advanced into the slot yet.
	KindUnresolved ParticipantKind = iota
	// KindPlaceholder is a label standing in for a future participant.
	KindPlaceholder
	// KindResolved is a known participant with a name and house code.
	KindResolved
)

func (k ParticipantKind) String() string {
	switch k {
	case KindUnresolved:
		return "unresolved"
	case KindPlaceholder:
		return "placeholder"
	case KindResolved:
		return "resolved"
	default:
		return fmt.Sprintf("ParticipantKind(%d)", int(k))
	}
}

// TBD is the label shown for an unresolved participant slot.
const TBD = "TBD"

// placeholderPrefixes mark bare strings that name a future participant
// rather than a real one.
var placeholderPrefixes = []string{"Winner of ", "Loser of "}

// Participant is one side of a match. The zero value is unresolved.
type Participant struct {
	kind  ParticipantKind
	text  string
	house string
}

// Unresolved returns an empty participant slot.
func Unresolved() Participant { return Participant{} }

// Placeholder returns a participant standing in for text, e.g. "Winner of M3".
func Placeholder(text string) Participant {
	return Participant{kind: KindPlaceholder, text: text}
}

// Resolved returns a known participant.
func Resolved(name, house string) Participant {
	return Participant{kind: KindResolved, text: name, house: house}
}

// Kind reports which variant p holds.
func (p Participant) Kind() ParticipantKind { return p.kind }

// IsResolved reports whether p is a real participant.
func (p Participant) IsResolved() bool { return p.kind == KindResolved }

// Name returns the participant name for resolved participants and the label
// text for placeholders. It is empty for unresolved slots.
func (p Participant) Name() string { return p.text }

// House returns the house or team code of a resolved participant.
func (p Participant) House() string { return p.house }

// Label returns the display text for p.
func (p Participant) Label() string {
	switch p.kind {
	case KindResolved, KindPlaceholder:
		return p.text
	default:
		return TBD
	}
}

// Equal reports whether p and o hold the same variant and values.
func (p Participant) Equal(o Participant) bool { return p == o }

type participantObject struct {
	Name  string `json:"name"`
	House string `json:"house,omitempty"`
}

// UnmarshalJSON accepts null, a bare string or a {"name","house"} object.
// Bare strings with a placeholder prefix decode as placeholders; any other
// string is a resolved participant without a house.
func (p *Participant) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*p = Unresolved()
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = fromString(s)
		return nil
	case data[0] == '{':
		var obj participantObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		if obj.Name == "" {
			*p = Unresolved()
			return nil
		}
		*p = Resolved(obj.Name, obj.House)
		return nil
	default:
		return fmt.Errorf("participant: unexpected JSON %s", data)
	}
}

// MarshalJSON writes the wire form UnmarshalJSON reads.
func (p Participant) MarshalJSON() ([]byte, error) {
	switch p.kind {
	case KindPlaceholder:
		return json.Marshal(p.text)
	case KindResolved:
		if p.house == "" {
			return json.Marshal(p.text)
		}
		return json.Marshal(participantObject{Name: p.text, House: p.house})
	default:
		return []byte("null"), nil
	}
}

func fromString(s string) Participant {
	s = strings.TrimSpace(s)
	if s == "" {
		return Unresolved()
	}
	for _, prefix := range placeholderPrefixes {
		if strings.HasPrefix(s, prefix) {
			return Placeholder(s)
		}
	}
	return Resolved(s, "")
}
