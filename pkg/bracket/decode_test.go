package bracket

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/bracketeer/pkg/errors"
)

const sampleList = `[
  {"match_num": 1, "participant1": "Ada", "participant2": {"name": "Bob", "house": "BLUE"},
   "participant1_result": "0:01:02.500000", "participant2_result": null,
   "winner_proceeds_to": 3, "loser_proceeds_to": 4, "problem": "two-sum.md",
   "start_time": "2024-05-01T10:00:00.123456"},
  {"match_num": 2, "participant1": null, "participant2": null, "winner_proceeds_to": 3},
  {"match_num": 3, "participant1": "Winner of M1", "participant2": "Winner of M2", "winner_proceeds_to": null},
  {"match_num": 4, "is_third_place": true}
]`

func TestDecode(t *testing.T) {
	matches, err := Decode(strings.NewReader(sampleList))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(matches) != 4 {
		t.Fatalf("got %d matches, want 4", len(matches))
	}

	m := matches[0]
	if to, ok := m.WinnerTarget(); !ok || to != 3 {
		t.Errorf("WinnerTarget = %d, %v", to, ok)
	}
	if to, ok := m.LoserTarget(); !ok || to != 4 {
		t.Errorf("LoserTarget = %d, %v", to, ok)
	}
	if m.Participant2.House() != "BLUE" {
		t.Errorf("house = %q, want BLUE", m.Participant2.House())
	}
	if m.Result1 != "0:01:02.500000" || m.Result2 != "" {
		t.Errorf("results = %q, %q", m.Result1, m.Result2)
	}
	if _, ok := m.StartedAt(); !ok {
		t.Errorf("StartedAt failed for %q", m.StartTime)
	}
	if _, ok := matches[2].WinnerTarget(); ok {
		t.Error("null winner_proceeds_to should be absent")
	}
	if matches[2].Participant1.Kind() != KindPlaceholder {
		t.Errorf("kind = %v, want placeholder", matches[2].Participant1.Kind())
	}
	if !matches[3].ThirdPlace {
		t.Error("expected third place flag")
	}
}

func TestDecodeErrorEnvelope(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"error": "No bracket"}`))
	if !errors.Is(err, errors.ErrCodeNoBracket) {
		t.Fatalf("got %v, want NO_BRACKET", err)
	}
	if errors.UserMessage(err) != "No bracket" {
		t.Errorf("message = %q", errors.UserMessage(err))
	}
}

func TestDecodeInvalid(t *testing.T) {
	tests := []string{``, `   `, `{}`, `[{"match_num": "x"}]`, `not json`}
	for _, input := range tests {
		if _, err := Decode(strings.NewReader(input)); !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("Decode(%q) = %v, want INVALID_FORMAT", input, err)
		}
	}
}

func TestReadWriteFile(t *testing.T) {
	matches, err := DecodeBytes([]byte(sampleList))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "bracket.json")
	if err := WriteFile(path, matches); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != len(matches) {
		t.Fatalf("got %d matches, want %d", len(got), len(matches))
	}
	if !got[0].Participant2.Equal(matches[0].Participant2) {
		t.Errorf("participant changed across write: %+v", got[0].Participant2)
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("got %v, want FILE_NOT_FOUND", err)
	}
}
