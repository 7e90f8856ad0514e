// Package propfile implements the key-value string files exchanged with
// Transifex.
//
// Format: one key=value pair per line, UTF-8. Blank lines and lines starting
// with '#' are skipped on read and never written. Only the first '=' splits a
// line, so values may contain '='. Values are not escaped and cannot span
// lines.
//
// A File keeps keys in first-seen order so that re-emitting a file, or
// converting it to a table, preserves the original ordering.
package propfile

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Ext is the file extension of key-value files.
const Ext = ".properties"

type entry struct {
	key   string
	value string
}

// File is an ordered set of key-value pairs.
type File struct {
	entries []entry
	// index maps key → position in entries.
	index map[string]int
}

// New returns an empty File.
func New() *File {
	return &File{index: make(map[string]int)}
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses a key-value file.
func ParseFile(fs afero.Fs, path string) (*File, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses key-value content. A repeated key keeps its first position
// and takes the last value. Lines without '=' and lines with an empty key
// are ignored.
func Parse(data []byte) (*File, error) {
	f := New()

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		f.Set(k, strings.TrimSpace(v))
	}

	return f, nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Keys returns all keys in insertion order.
func (f *File) Keys() []string {
	keys := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		keys = append(keys, e.key)
	}
	return keys
}

// Len returns the number of keys.
func (f *File) Len() int {
	return len(f.entries)
}

// Get returns the value for key and whether it was found.
func (f *File) Get(key string) (string, bool) {
	if idx, ok := f.index[key]; ok {
		return f.entries[idx].value, true
	}
	return "", false
}

// Value returns the value for key, or "" when absent.
func (f *File) Value(key string) string {
	v, _ := f.Get(key)
	return v
}

// Set stores value under key. An existing key keeps its position; a new key
// is appended.
func (f *File) Set(key, value string) {
	if idx, ok := f.index[key]; ok {
		f.entries[idx].value = value
		return
	}
	f.index[key] = len(f.entries)
	f.entries = append(f.entries, entry{key: key, value: value})
}

// Stats counts, over keys, how many have a non-empty value in f.
// It returns (total, translated, percentTranslated).
func (f *File) Stats(keys []string) (int, int, float64) {
	translated := 0
	for _, k := range keys {
		if f.Value(k) != "" {
			translated++
		}
	}
	pct := 0.0
	if len(keys) > 0 {
		pct = float64(translated) / float64(len(keys)) * 100
	}
	return len(keys), translated, pct
}

// ---------------------------------------------------------------------------
// Serialization
// ---------------------------------------------------------------------------

// Marshal serialises the file, one key=value line per entry.
func (f *File) Marshal() []byte {
	var buf bytes.Buffer
	for _, e := range f.entries {
		buf.WriteString(e.key)
		buf.WriteByte('=')
		buf.WriteString(e.value)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// WriteFile serialises and writes to path, creating parent directories
// with 0755 permissions.
func (f *File) WriteFile(fs afero.Fs, path string) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := afero.WriteFile(fs, path, f.Marshal(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
