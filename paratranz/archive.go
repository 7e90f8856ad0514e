package paratranz

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"

	"github.com/minios-linux/transync/syncerr"
)

// Archive is a downloaded artifact export held in memory.
type Archive struct {
	r    *zip.Reader
	size int
}

// OpenArchive parses data as a zip archive.
func OpenArchive(data []byte) (*Archive, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, syncerr.IO("open archive", "", err)
	}
	return &Archive{r: r, size: len(data)}, nil
}

// Size is the compressed size in bytes.
func (a *Archive) Size() int {
	return a.size
}

type extractTarget struct {
	file *zip.File
	path string
}

// Extract writes the archive under dest, dropping the first path segment of
// every entry (the archive's own root folder). Entries that are only the
// root segment are skipped. No file is written if any entry would land
// outside dest. Returns the number of files written.
func (a *Archive) Extract(fs afero.Fs, dest string) (int, error) {
	targets := make([]extractTarget, 0, len(a.r.File))
	for _, f := range a.r.File {
		rel, ok := stripRoot(f.Name)
		if !ok {
			continue
		}
		clean := path.Clean(rel)
		if clean == ".." || strings.HasPrefix(clean, "../") || path.IsAbs(clean) {
			return 0, syncerr.IO("extract", f.Name, fmt.Errorf("entry escapes %s", dest))
		}
		targets = append(targets, extractTarget{file: f, path: filepath.Join(dest, filepath.FromSlash(clean))})
	}

	files := 0
	for _, t := range targets {
		if t.file.FileInfo().IsDir() {
			if err := fs.MkdirAll(t.path, 0o755); err != nil {
				return files, syncerr.IO("mkdir", t.path, err)
			}
			continue
		}
		if err := writeEntry(fs, t); err != nil {
			return files, err
		}
		files++
	}
	return files, nil
}

// stripRoot removes the first segment of a slash-separated entry name.
func stripRoot(name string) (string, bool) {
	_, rest, found := strings.Cut(name, "/")
	if !found {
		return "", false
	}
	if rest == "" {
		return ".", true
	}
	return rest, true
}

func writeEntry(fs afero.Fs, t extractTarget) error {
	if err := fs.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return syncerr.IO("mkdir", filepath.Dir(t.path), err)
	}
	src, err := t.file.Open()
	if err != nil {
		return syncerr.IO("extract", t.file.Name, err)
	}
	defer src.Close()

	dst, err := fs.Create(t.path)
	if err != nil {
		return syncerr.IO("create", t.path, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return syncerr.IO("write", t.path, err)
	}
	if err := dst.Close(); err != nil {
		return syncerr.IO("write", t.path, err)
	}
	return nil
}
