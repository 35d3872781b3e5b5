package bracket

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/bracketeer/pkg/errors"
)

type errorEnvelope struct {
	Error string `json:"error"`
}

// Decode reads a match list in the backend's wire format.
//
// A JSON object carrying an "error" field is the backend's way of saying no
// bracket exists; it is returned as an [errors.ErrCodeNoBracket] error.
func Decode(r io.Reader) ([]Match, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read match list")
	}
	return DecodeBytes(data)
}

// DecodeBytes is [Decode] for an in-memory payload.
func DecodeBytes(data []byte) ([]Match, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "empty match list payload")
	}

	if data[0] == '{' {
		var env errorEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode response")
		}
		if env.Error != "" {
			return nil, errors.New(errors.ErrCodeNoBracket, "%s", env.Error)
		}
		return nil, errors.New(errors.ErrCodeInvalidFormat, "expected a match list, got an object")
	}

	var matches []Match
	if err := json.Unmarshal(data, &matches); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode match list")
	}
	return matches, nil
}

// ReadFile decodes a match list stored on disk.
func ReadFile(path string) ([]Match, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open %s", path)
	}
	defer f.Close()
	return Decode(f)
}

// WriteFile stores matches in the wire format.
func WriteFile(path string, matches []Match) error {
	data, err := json.MarshalIndent(matches, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode match list")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}
