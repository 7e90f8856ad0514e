// Package csvfile implements the tabular interchange files exchanged with
// ParaTranz: comma-separated, UTF-8, header row "key,source,target", one
// row per translation key.
package csvfile

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Ext is the file extension of tabular files.
const Ext = ".csv"

// Header is the column order written by Marshal.
var Header = []string{"key", "source", "target"}

// Row is one translation key with its source and target text.
type Row struct {
	Key    string
	Source string
	Target string
}

// File is an ordered list of rows.
type File struct {
	Rows []Row
}

// Add appends a row.
func (f *File) Add(key, source, target string) {
	f.Rows = append(f.Rows, Row{Key: key, Source: source, Target: target})
}

// ParseFile reads and parses a tabular file.
func ParseFile(fs afero.Fs, path string) (*File, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// Parse reads rows by header name. Columns are matched case-insensitively;
// a missing column or a short record yields "" for that field. All values
// are trimmed. Rows are returned as-is, including rows with an empty key.
// A quote inside an unquoted field is kept literally.
func Parse(data []byte) (*File, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, err
	}

	col := map[string]int{}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if _, dup := col[name]; !dup {
			col[name] = i
		}
	}
	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	f := &File{}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		f.Add(field(rec, "key"), field(rec, "source"), field(rec, "target"))
	}
	return f, nil
}

// Marshal writes the header followed by one record per row.
func (f *File) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return nil, err
	}
	for _, row := range f.Rows {
		if err := w.Write([]string{row.Key, row.Source, row.Target}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile serialises and writes to path, creating parent directories.
func (f *File) WriteFile(fs afero.Fs, path string) error {
	data, err := f.Marshal()
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
