// Package convert moves strings between the tabular CSV files used with
// ParaTranz and the key-value files used with Transifex.
//
// Only the top level of each input folder is read, in name order. Both
// directions overwrite existing outputs.
package convert

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/minios-linux/transync/config"
	"github.com/minios-linux/transync/csvfile"
	"github.com/minios-linux/transync/i18n"
	"github.com/minios-linux/transync/propfile"
	"github.com/minios-linux/transync/report"
	"github.com/minios-linux/transync/syncerr"
	"github.com/minios-linux/transync/ui"
)

// ToProperties splits every "<stem>.csv" in the tabular folder into a
// source "<stem>.properties" (key=source) and a translated one
// (key=target). Rows with an empty key are dropped; a repeated key keeps
// its first position and its last values.
func ToProperties(fs afero.Fs, folders config.Folders, log *ui.Logger) (report.Summary, error) {
	var sum report.Summary
	names, err := listExt(fs, folders.Tabular, csvfile.Ext)
	if err != nil {
		return sum, err
	}
	for _, dir := range []string{folders.SourceStrings, folders.TranslatedStrings} {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return sum, syncerr.IO("mkdir", dir, err)
		}
	}

	for _, name := range names {
		in := filepath.Join(folders.Tabular, name)
		table, err := csvfile.ParseFile(fs, in)
		if err != nil {
			return sum, syncerr.IO("parse", in, err)
		}

		source, target := propfile.New(), propfile.New()
		for _, row := range table.Rows {
			if row.Key == "" {
				continue
			}
			source.Set(row.Key, row.Source)
			target.Set(row.Key, row.Target)
		}

		out := strings.TrimSuffix(name, csvfile.Ext) + propfile.Ext
		sourcePath := filepath.Join(folders.SourceStrings, out)
		targetPath := filepath.Join(folders.TranslatedStrings, out)
		if err := source.WriteFile(fs, sourcePath); err != nil {
			return sum, syncerr.IO("write", sourcePath, err)
		}
		if err := target.WriteFile(fs, targetPath); err != nil {
			return sum, syncerr.IO("write", targetPath, err)
		}
		log.Success(i18n.T("Processed '%s' into '%s' and '%s'"), name, sourcePath, targetPath)
		sum.Succeeded++
	}
	return sum, nil
}

// ToCSV joins each source "<stem>.properties" with its translated
// counterpart into "<stem>.csv" in the tabular folder. Rows follow the
// source file's key order; keys that exist only in the translated file are
// not emitted. A source file without a translated counterpart is skipped
// with a warning.
func ToCSV(fs afero.Fs, folders config.Folders, log *ui.Logger) (report.Summary, error) {
	var sum report.Summary
	names, err := listExt(fs, folders.SourceStrings, propfile.Ext)
	if err != nil {
		return sum, err
	}
	if err := fs.MkdirAll(folders.Tabular, 0o755); err != nil {
		return sum, syncerr.IO("mkdir", folders.Tabular, err)
	}

	for _, name := range names {
		sourcePath := filepath.Join(folders.SourceStrings, name)
		targetPath := filepath.Join(folders.TranslatedStrings, name)

		exists, err := afero.Exists(fs, targetPath)
		if err != nil {
			return sum, syncerr.IO("stat", targetPath, err)
		}
		if !exists {
			log.Warn(i18n.T("Translation file for '%s' not found. Skipping."), name)
			sum.Skipped++
			continue
		}

		source, err := propfile.ParseFile(fs, sourcePath)
		if err != nil {
			return sum, syncerr.IO("parse", sourcePath, err)
		}
		target, err := propfile.ParseFile(fs, targetPath)
		if err != nil {
			return sum, syncerr.IO("parse", targetPath, err)
		}

		table := &csvfile.File{}
		for _, key := range source.Keys() {
			table.Add(key, source.Value(key), target.Value(key))
		}

		out := strings.TrimSuffix(name, propfile.Ext) + csvfile.Ext
		outPath := filepath.Join(folders.Tabular, out)
		if err := table.WriteFile(fs, outPath); err != nil {
			return sum, syncerr.IO("write", outPath, err)
		}
		log.Success(i18n.T("Processed '%s' into '%s'"), name, out)
		sum.Succeeded++
	}
	return sum, nil
}

// FileProgress is the translation state of one key-value file.
type FileProgress struct {
	Name       string
	Total      int
	Translated int
	Percent    float64
	// Missing is set when the translated counterpart does not exist.
	Missing bool
}

// Progress reports, for every source key-value file, how many of its keys
// have a non-empty translation.
func Progress(fs afero.Fs, folders config.Folders) ([]FileProgress, error) {
	names, err := listExt(fs, folders.SourceStrings, propfile.Ext)
	if err != nil {
		return nil, err
	}

	result := make([]FileProgress, 0, len(names))
	for _, name := range names {
		sourcePath := filepath.Join(folders.SourceStrings, name)
		source, err := propfile.ParseFile(fs, sourcePath)
		if err != nil {
			return nil, syncerr.IO("parse", sourcePath, err)
		}

		p := FileProgress{Name: name, Total: source.Len()}
		targetPath := filepath.Join(folders.TranslatedStrings, name)
		target, err := propfile.ParseFile(fs, targetPath)
		switch {
		case err == nil:
			p.Total, p.Translated, p.Percent = target.Stats(source.Keys())
		case errors.Is(err, os.ErrNotExist):
			p.Missing = true
		default:
			return nil, syncerr.IO("parse", targetPath, err)
		}
		result = append(result, p)
	}
	return result, nil
}

// listExt returns the names of the regular files directly in dir that end
// in ext, sorted.
func listExt(fs afero.Fs, dir, ext string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, syncerr.IO("read dir", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.Mode().IsRegular() && strings.HasSuffix(e.Name(), ext) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
