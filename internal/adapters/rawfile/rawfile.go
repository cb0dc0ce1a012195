// Package rawfile reads the vendor sleep document from disk.
package rawfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/okian/sleeplab/internal/domain/model"
)

// Sentinel error kinds for this package.
var (
	ErrNotFound  = errors.New("raw file not found")
	ErrMalformed = errors.New("malformed raw document")
)

// Load reads and validates the document at path.
func Load(path string) ([]model.RawNightRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open raw file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

// Decode validates that r holds a JSON object with a "data" array and
// decodes its elements. Unknown keys and the per-interval series are dropped.
func Decode(r io.Reader) ([]model.RawNightRecord, error) {
	var top map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&top); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	data, ok := top["data"]
	if !ok {
		return nil, fmt.Errorf("%w: missing \"data\" key", ErrMalformed)
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: \"data\" is not a list", ErrMalformed)
	}
	var records []model.RawNightRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return records, nil
}
