package paratranz

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/go-resty/resty/v2"
	"github.com/spf13/afero"

	"github.com/minios-linux/transync/credentials"
	"github.com/minios-linux/transync/i18n"
	"github.com/minios-linux/transync/report"
	"github.com/minios-linux/transync/syncerr"
	"github.com/minios-linux/transync/ui"
)

// Syncer runs the ParaTranz workflows for one project.
type Syncer struct {
	HTTP        *resty.Client
	Credentials credentials.Provider
	Fs          afero.Fs
	Log         *ui.Logger
	ProjectID   int
}

func (s *Syncer) client() (*Client, error) {
	token, err := s.Credentials.Token()
	if err != nil {
		return nil, syncerr.Preconditionf("ParaTranz token: %v", err)
	}
	return NewClient(s.HTTP, token), nil
}

// Pull downloads the project's artifact archive and replaces dir with its
// contents. Summary.Succeeded counts the extracted files.
func (s *Syncer) Pull(ctx context.Context, dir string) (report.Summary, error) {
	var sum report.Summary
	client, err := s.client()
	if err != nil {
		return sum, err
	}

	s.Log.Info(i18n.T("Downloading zip file..."))
	data, err := client.DownloadArtifacts(ctx, s.ProjectID)
	if err != nil {
		return sum, syncerr.Preconditionf("%v", err)
	}
	archive, err := OpenArchive(data)
	if err != nil {
		return sum, err
	}
	s.Log.Info(i18n.T("Downloaded archive (%s)"), humanize.Bytes(uint64(archive.Size())))

	if err := s.Fs.RemoveAll(dir); err != nil {
		return sum, syncerr.IO("remove", dir, err)
	}
	if err := s.Fs.MkdirAll(dir, 0o755); err != nil {
		return sum, syncerr.IO("mkdir", dir, err)
	}
	n, err := archive.Extract(s.Fs, dir)
	sum.Succeeded = n
	if err != nil {
		return sum, err
	}
	s.Log.Success(i18n.T("Extracted %d files to %s"), n, dir)
	return sum, nil
}

// Push uploads every file under dir whose basename matches a remote file.
// Local files without a remote counterpart are skipped; nothing is created
// remotely. When several remote files share a basename the last one listed
// wins.
func (s *Syncer) Push(ctx context.Context, dir string) (report.Summary, error) {
	var sum report.Summary
	if err := s.requireDir(dir); err != nil {
		return sum, err
	}
	client, err := s.client()
	if err != nil {
		return sum, err
	}

	remote, err := client.ListFiles(ctx, s.ProjectID)
	if err != nil {
		return sum, syncerr.Preconditionf("%v", err)
	}
	if len(remote) == 0 {
		return sum, syncerr.Preconditionf("no files found in project %d", s.ProjectID)
	}
	byName := s.indexByBasename(remote)

	var local []string
	err = afero.Walk(s.Fs, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return syncerr.IO("walk", p, err)
		}
		if !info.IsDir() {
			local = append(local, p)
		}
		return nil
	})
	if err != nil {
		return sum, err
	}

	for _, p := range local {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		name := filepath.Base(p)
		fileID, ok := byName[name]
		if !ok {
			s.Log.Warn(i18n.T("No matching remote file for local file: %s"), name)
			sum.Skipped++
			continue
		}

		f, err := s.Fs.Open(p)
		if err != nil {
			return sum, syncerr.IO("open", p, err)
		}
		s.Log.Info(i18n.T("Uploading %s ..."), name)
		err = client.UploadFile(ctx, s.ProjectID, fileID, name, f)
		f.Close()
		if err != nil {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}
			s.Log.Error(i18n.T("Error uploading %s: %v"), name, err)
			sum.Failed++
			continue
		}
		s.Log.Success(i18n.T("Uploaded %s successfully."), name)
		sum.Succeeded++
	}
	return sum, nil
}

func (s *Syncer) indexByBasename(files []File) map[string]int {
	byName := make(map[string]int, len(files))
	for _, f := range files {
		base := path.Base(f.Name)
		if prev, dup := byName[base]; dup {
			s.Log.Warn(i18n.T("Remote files %d and %d are both named %s, uploads go to %d"), prev, f.ID, base, f.ID)
		}
		byName[base] = f.ID
	}
	return byName
}

func (s *Syncer) requireDir(dir string) error {
	info, err := s.Fs.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return syncerr.Preconditionf("folder %s does not exist", dir)
		}
		return syncerr.IO("stat", dir, err)
	}
	if !info.IsDir() {
		return syncerr.Preconditionf("%s is not a directory", dir)
	}
	return nil
}
