package correlation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Report formats.
const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// FormatR renders a coefficient with explicit sign, or n/a when undefined.
func FormatR(e Entry) string {
	if !e.Defined {
		return "n/a"
	}
	return fmt.Sprintf("%+.3f", e.R)
}

// WriteText writes the plain report, one block per reference:
//
//	=== Effect of <reference> ===
//	+0.512 : HR average
//
// followed by a blank line.
func WriteText(w io.Writer, results []Result) error {
	var b strings.Builder
	for _, res := range results {
		fmt.Fprintf(&b, "=== Effect of %s ===\n", res.Reference)
		for _, e := range res.Entries {
			fmt.Fprintf(&b, "%s : %s\n", FormatR(e), e.Column)
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// EntryDoc is the serializable form of an Entry; R is null when undefined.
type EntryDoc struct {
	Column string   `json:"column" yaml:"column"`
	R      *float64 `json:"r" yaml:"r"`
	Pairs  int      `json:"pairs" yaml:"pairs"`
	Sign   string   `json:"sign" yaml:"sign"`
}

// ResultDoc is the serializable form of a Result.
type ResultDoc struct {
	Reference string     `json:"reference" yaml:"reference"`
	Threshold float64    `json:"threshold" yaml:"threshold"`
	Entries   []EntryDoc `json:"entries" yaml:"entries"`
}

// Documents converts results for yaml and json encoding.
func Documents(results []Result) []ResultDoc {
	docs := make([]ResultDoc, len(results))
	for i, res := range results {
		d := ResultDoc{Reference: res.Reference, Threshold: res.Threshold, Entries: make([]EntryDoc, len(res.Entries))}
		for j, e := range res.Entries {
			ed := EntryDoc{Column: e.Column, Pairs: e.Pairs, Sign: e.Sign.String()}
			if e.Defined {
				r := e.R
				ed.R = &r
			}
			d.Entries[j] = ed
		}
		docs[i] = d
	}
	return docs
}

// Render encodes results in the named format.
func Render(results []Result, format string) ([]byte, error) {
	switch format {
	case FormatText, "":
		var buf bytes.Buffer
		if err := WriteText(&buf, results); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatYAML:
		return yaml.Marshal(Documents(results))
	case FormatJSON:
		data, err := json.MarshalIndent(Documents(results), "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
