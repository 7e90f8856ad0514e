package transifex

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"

	"github.com/minios-linux/transync/credentials"
	"github.com/minios-linux/transync/i18n"
	"github.com/minios-linux/transync/poll"
	"github.com/minios-linux/transync/propfile"
	"github.com/minios-linux/transync/report"
	"github.com/minios-linux/transync/syncerr"
	"github.com/minios-linux/transync/ui"
)

// Syncer runs the Transifex workflows for one project and language.
type Syncer struct {
	HTTP        *resty.Client
	Credentials credentials.Provider
	Fs          afero.Fs
	Log         *ui.Logger
	// Clock drives upload polling; nil means the real clock.
	Clock      clockwork.Clock
	ProjectID  string
	LanguageID string
	Poll       poll.Policy
}

// Pull downloads the source strings of every project resource into dir as
// "<slug>.properties". dir must already exist. Per-resource failures are
// logged and counted; precondition failures abort before any download.
func (s *Syncer) Pull(ctx context.Context, dir string) (report.Summary, error) {
	var sum report.Summary
	if err := s.requireDir(dir); err != nil {
		return sum, err
	}
	client, resources, err := s.connect(ctx)
	if err != nil {
		return sum, err
	}

	s.Log.Info(i18n.T("Found %d resources in project %s"), len(resources), s.ProjectID)
	for _, r := range resources {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		slug := r.Slug()
		s.Log.Info(i18n.T("Processing resource: %s"), slug)

		link, err := client.StartDownload(ctx, r.ID)
		if err != nil {
			s.Log.Error(i18n.T("Failed to initiate download for resource %s: %v"), r.ID, err)
			sum.Failed++
			continue
		}
		content, err := client.Download(ctx, link)
		if err != nil {
			s.Log.Error(i18n.T("Failed to retrieve content for resource %s: %v"), slug, err)
			sum.Failed++
			continue
		}

		name := slug + propfile.Ext
		if err := afero.WriteFile(s.Fs, filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			s.Log.Error(i18n.T("Failed to write '%s' to disk: %v"), name, err)
			sum.Failed++
			continue
		}
		s.Log.Success(i18n.T("Downloaded '%s' successfully."), name)
		sum.Succeeded++
	}
	return sum, nil
}

// Push uploads every "<slug>.properties" file in dir as the translation of
// the resource with the same slug, waiting for each import to finish.
// Files without a matching resource are skipped with a warning.
func (s *Syncer) Push(ctx context.Context, dir string) (report.Summary, error) {
	var sum report.Summary
	if err := s.requireDir(dir); err != nil {
		return sum, err
	}
	client, resources, err := s.connect(ctx)
	if err != nil {
		return sum, err
	}

	bySlug := make(map[string]string, len(resources))
	for _, r := range resources {
		bySlug[r.Slug()] = r.ID
	}

	names, err := propertiesFiles(s.Fs, dir)
	if err != nil {
		return sum, err
	}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		slug := strings.TrimSuffix(name, propfile.Ext)
		resourceID, ok := bySlug[slug]
		if !ok {
			s.Log.Warn(i18n.T("No matching resource found for file '%s'."), name)
			sum.Skipped++
			continue
		}

		path := filepath.Join(dir, name)
		data, err := afero.ReadFile(s.Fs, path)
		if err != nil {
			return sum, syncerr.IO("read", path, err)
		}

		s.Log.Info(i18n.T("Uploading '%s' to resource '%s'..."), name, slug)
		status, err := client.StartUpload(ctx, resourceID, s.LanguageID, string(data))
		if err != nil {
			s.Log.Error(i18n.T("Failed to initiate upload for '%s': %v"), name, err)
			sum.Failed++
			continue
		}

		err = s.Poll.Wait(ctx, s.Clock, func(ctx context.Context) (bool, error) {
			return client.UploadStatus(ctx, status)
		})
		switch {
		case err == nil:
			s.Log.Success(i18n.T("Uploaded '%s' successfully."), name)
			sum.Succeeded++
		case errors.Is(err, poll.ErrTimeout):
			s.Log.Error(i18n.T("Upload of '%s' did not complete: %v"), name, err)
			sum.Failed++
		case ctx.Err() != nil:
			return sum, ctx.Err()
		default:
			s.Log.Error(i18n.T("Upload of '%s' failed: %v"), name, err)
			sum.Failed++
		}
	}
	return sum, nil
}

// connect obtains the token and lists the project's resources. Failures are
// preconditions: nothing can be synced without them.
func (s *Syncer) connect(ctx context.Context) (*Client, []Resource, error) {
	token, err := s.Credentials.Token()
	if err != nil {
		return nil, nil, syncerr.Preconditionf("Transifex token: %v", err)
	}
	client := NewClient(s.HTTP, token)

	resources, err := client.ListResources(ctx, s.ProjectID)
	if err != nil {
		return nil, nil, syncerr.Preconditionf("%v", err)
	}
	if len(resources) == 0 {
		return nil, nil, syncerr.Preconditionf("no resources found in project %s", s.ProjectID)
	}
	return client, resources, nil
}

func (s *Syncer) requireDir(dir string) error {
	info, err := s.Fs.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return syncerr.Preconditionf("directory %s does not exist, create it first", dir)
		}
		return syncerr.IO("stat", dir, err)
	}
	if !info.IsDir() {
		return syncerr.Preconditionf("%s is not a directory", dir)
	}
	return nil
}

// propertiesFiles lists the top-level .properties files of dir, sorted.
func propertiesFiles(fs afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, syncerr.IO("read dir", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), propfile.Ext) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
