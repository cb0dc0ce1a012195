// Package snapshot writes the tabular exports of a pipeline run.
//
// Exports are staged fully in memory and only then written, each through a
// temporary file renamed over the target, so a failed run never leaves a
// half-written file in place of a previous one.
package snapshot

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/sleeplab/internal/domain/model"
	"github.com/okian/sleeplab/internal/domain/prep"
)

// Kinds label staged files in logs and metrics.
const (
	KindOrig     = "orig"
	KindModified = "modified"
	KindWorkbook = "workbook"
)

// Table is a header plus text cells, ready to encode.
type Table struct {
	Header []string
	Rows   [][]string
}

// File is an encoded export waiting to be committed.
type File struct {
	Kind string
	Path string
	Data []byte
}

// RecordTable lays out the filtered, normalized records before derivation.
func RecordTable(records []model.NormalizedRecord) Table {
	cols := model.RecordColumns()
	t := Table{Header: make([]string, len(cols)), Rows: make([][]string, len(records))}
	for i, c := range cols {
		t.Header[i] = c.Name
	}
	for r := range records {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = c.Text(&records[r])
		}
		t.Rows[r] = row
	}
	return t
}

// DatasetTable lays out the derived nights.
func DatasetTable(ds *model.Dataset) Table {
	cols := model.NightColumns()
	rows := ds.Rows()
	t := Table{Header: make([]string, len(cols)), Rows: make([][]string, len(rows))}
	for i, c := range cols {
		t.Header[i] = c.Name
	}
	for r := range rows {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = c.Text(&rows[r])
		}
		t.Rows[r] = row
	}
	return t
}

// EncodeTSV renders a table tab-separated with \n line endings.
func EncodeTSV(t Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = '\t'
	if err := w.Write(t.Header); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrEncode, err)
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return buf.Bytes(), nil
}

// Stage encodes both TSV snapshots of a run.
func Stage(res *prep.Result, origPath, modifiedPath string) ([]File, error) {
	orig, err := EncodeTSV(RecordTable(res.Normalized))
	if err != nil {
		return nil, err
	}
	modified, err := EncodeTSV(DatasetTable(res.Dataset))
	if err != nil {
		return nil, err
	}
	return []File{
		{Kind: KindOrig, Path: origPath, Data: orig},
		{Kind: KindModified, Path: modifiedPath, Data: modified},
	}, nil
}

// Commit writes every staged file to a temporary sibling first and renames
// them over their targets only once all were written. A failed write leaves
// every target untouched.
func Commit(files []File) error {
	temps := make([]string, 0, len(files))
	for _, f := range files {
		name, err := writeTemp(f.Path, f.Data)
		if err != nil {
			for _, t := range temps {
				_ = os.Remove(t)
			}
			return err
		}
		temps = append(temps, name)
	}
	for i, f := range files {
		if err := os.Rename(temps[i], f.Path); err != nil {
			for _, t := range temps[i:] {
				_ = os.Remove(t)
			}
			return fmt.Errorf("%w: %s: %w", ErrWrite, f.Path, err)
		}
	}
	return nil
}

// WriteFileAtomic replaces path with data through a temporary sibling file.
func WriteFileAtomic(path string, data []byte) error {
	name, err := writeTemp(path, data)
	if err != nil {
		return err
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	return nil
}

// writeTemp stores data in a synced temporary file next to path and
// returns its name.
func writeTemp(path string, data []byte) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrWrite, dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	name := tmp.Name()
	fail := func(err error) (string, error) {
		_ = tmp.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}

	if _, err := tmp.Write(data); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		return fail(err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		return fail(err)
	}
	return name, nil
}
