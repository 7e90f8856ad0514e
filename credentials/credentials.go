// Package credentials provides the API tokens used by the platform
// workflows.
//
// Each platform has one plaintext token file holding a single trimmed line.
// Lookup order for a token:
//  1. the platform's environment variable (process env, then the project .env)
//  2. the token file
//  3. an interactive prompt, whose answer is saved to the token file
//
// Token files are written with 0600 permissions. There is no expiry or
// refresh: a stored token is reused until replaced or removed.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/minios-linux/transync/i18n"
)

// ErrNoToken is returned when no token could be obtained.
var ErrNoToken = errors.New("no API token provided")

// Provider supplies an API token.
type Provider interface {
	Token() (string, error)
}

// Static is a Provider returning a fixed token.
type Static string

// Token returns the token itself.
func (s Static) Token() (string, error) {
	if s == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}

// Prompter asks the user for a secret.
type Prompter interface {
	Prompt(label string) (string, error)
}

// Notifier receives informational messages about where a token came from.
type Notifier interface {
	Info(format string, args ...any)
}

// FileProvider reads a token from the environment or a file, prompting once
// and persisting the answer when neither has one.
type FileProvider struct {
	// Fs defaults to the OS filesystem.
	Fs afero.Fs
	// Path is the token file.
	Path string
	// EnvVar names the environment variable checked first; empty disables it.
	EnvVar string
	// Lookup resolves EnvVar; defaults to os.LookupEnv.
	Lookup func(key string) (string, bool)
	// Label is the platform name shown in prompts, e.g. "Transifex".
	Label string
	// Prompter is asked when no token is stored. Nil means never prompt.
	Prompter Prompter
	// Log is optional.
	Log Notifier
}

func (p *FileProvider) fs() afero.Fs {
	if p.Fs == nil {
		return afero.NewOsFs()
	}
	return p.Fs
}

func (p *FileProvider) infof(format string, args ...any) {
	if p.Log != nil {
		p.Log.Info(format, args...)
	}
}

// Token returns the first non-empty token from the lookup chain.
func (p *FileProvider) Token() (string, error) {
	if p.EnvVar != "" {
		lookup := p.Lookup
		if lookup == nil {
			lookup = os.LookupEnv
		}
		if v, ok := lookup(p.EnvVar); ok && strings.TrimSpace(v) != "" {
			p.infof(i18n.T("Using %s token from $%s"), p.Label, p.EnvVar)
			return strings.TrimSpace(v), nil
		}
	}

	if token, ok := p.Stored(); ok {
		p.infof(i18n.T("Using %s token from %s"), p.Label, filepath.Base(p.Path))
		return token, nil
	}

	if p.Prompter == nil {
		return "", fmt.Errorf("%w for %s (set $%s or create %s)", ErrNoToken, p.Label, p.EnvVar, p.Path)
	}
	token, err := p.Prompter.Prompt(fmt.Sprintf(i18n.T("Enter your %s API token: "), p.Label))
	if err != nil {
		return "", fmt.Errorf("reading %s token: %w", p.Label, err)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("%w for %s", ErrNoToken, p.Label)
	}
	if err := p.Save(token); err != nil {
		return "", err
	}
	p.infof(i18n.T("Token saved to %s"), p.Path)
	return token, nil
}

// Stored returns the token saved in the token file, if any.
func (p *FileProvider) Stored() (string, bool) {
	data, err := afero.ReadFile(p.fs(), p.Path)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(data))
	return token, token != ""
}

// Save writes token to the token file with 0600 permissions.
func (p *FileProvider) Save(token string) error {
	fs := p.fs()
	if dir := filepath.Dir(p.Path); dir != "." {
		if err := fs.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := afero.WriteFile(fs, p.Path, []byte(strings.TrimSpace(token)), 0600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}

// Remove deletes the token file. A missing file is not an error.
func (p *FileProvider) Remove() error {
	if err := p.fs().Remove(p.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", p.Path, err)
	}
	return nil
}

// MaskKey returns a masked version of a key/token for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
