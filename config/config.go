// Package config — .transync.yaml configuration file support.
//
// Every field is optional: a missing file, or a missing field, falls back to
// the defaults of the Shattered Pixel Dungeon translation project, so running
// any command with no configuration reproduces the historical behaviour.
//
// Relative paths (folders, token files) resolve against the project root
// passed to Load. A .env file in the root is read for token variables; it
// never overrides the real environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = ".transync.yaml"

// EnvFileName is the optional dotenv file read from the project root.
const EnvFileName = ".env"

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// Config is the top-level .transync.yaml structure.
type Config struct {
	Folders   Folders   `yaml:"folders"`
	Transifex Transifex `yaml:"transifex"`
	ParaTranz ParaTranz `yaml:"paratranz"`
	HTTP      HTTP      `yaml:"http"`

	root string            `yaml:"-"`
	env  map[string]string `yaml:"-"`
}

// Folders names the four folder roles shared by the converters and the
// platform workflows.
type Folders struct {
	// Tabular holds the key,source,target CSV files.
	Tabular string `yaml:"tabular"`
	// SourceStrings holds key-value files with source text.
	SourceStrings string `yaml:"source_strings"`
	// TranslatedStrings holds key-value files with translated text.
	TranslatedStrings string `yaml:"translated_strings"`
	// Archive is where the ParaTranz export archive is extracted and where
	// ParaTranz uploads are read from.
	Archive string `yaml:"archive"`
}

// Transifex configures the REST platform.
type Transifex struct {
	BaseURL string `yaml:"base_url"`
	// ProjectID is the composite project id, e.g. "o:org:p:project".
	ProjectID string `yaml:"project_id"`
	// TargetLanguage is the locale code uploads are attached to, e.g. "zh-Hans".
	TargetLanguage string `yaml:"target_language"`
	TokenFile      string `yaml:"token_file"`
	TokenEnv       string `yaml:"token_env"`
	// PollInterval and PollTimeout bound the wait for an upload to finish.
	PollInterval time.Duration `yaml:"poll_interval"`
	PollTimeout  time.Duration `yaml:"poll_timeout"`
}

// ParaTranz configures the file-upload platform.
type ParaTranz struct {
	BaseURL   string `yaml:"base_url"`
	ProjectID int    `yaml:"project_id"`
	TokenFile string `yaml:"token_file"`
	TokenEnv  string `yaml:"token_env"`
}

// HTTP holds transport settings shared by both platforms.
type HTTP struct {
	Timeout time.Duration `yaml:"timeout"`
}

// ---------------------------------------------------------------------------
// Defaults
// ---------------------------------------------------------------------------

// Default returns the built-in configuration rooted at root.
func Default(root string) *Config {
	c := &Config{}
	c.setRoot(root)
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	f := &c.Folders
	if f.Tabular == "" {
		f.Tabular = "paratranz_output"
	}
	if f.SourceStrings == "" {
		f.SourceStrings = "transifex_sourcestrings"
	}
	if f.TranslatedStrings == "" {
		f.TranslatedStrings = "transifex_strings"
	}
	if f.Archive == "" {
		f.Archive = "paratranz_output"
	}

	tx := &c.Transifex
	if tx.BaseURL == "" {
		tx.BaseURL = "https://rest.api.transifex.com"
	}
	if tx.ProjectID == "" {
		tx.ProjectID = "o:shattered-pixel:p:shattered-pixel-dungeon"
	}
	if tx.TargetLanguage == "" {
		tx.TargetLanguage = "zh-Hans"
	}
	if tx.TokenFile == "" {
		tx.TokenFile = "token.txt"
	}
	if tx.TokenEnv == "" {
		tx.TokenEnv = "TRANSIFEX_API_TOKEN"
	}
	if tx.PollInterval == 0 {
		tx.PollInterval = 2 * time.Second
	}
	if tx.PollTimeout == 0 {
		tx.PollTimeout = 60 * time.Second
	}

	pt := &c.ParaTranz
	if pt.BaseURL == "" {
		pt.BaseURL = "https://paratranz.cn/api"
	}
	if pt.ProjectID == 0 {
		pt.ProjectID = 13957
	}
	if pt.TokenFile == "" {
		pt.TokenFile = "paratranz_token.txt"
	}
	if pt.TokenEnv == "" {
		pt.TokenEnv = "PARATRANZ_API_TOKEN"
	}

	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = 60 * time.Second
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the configuration for the project at root. path overrides the
// config file location; when empty, root/.transync.yaml is used and a
// missing file yields the defaults.
func Load(root, path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(root, FileName)
	}

	c := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// Defaults only.
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	c.setRoot(root)
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	env, err := godotenv.Read(filepath.Join(root, EnvFileName))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", filepath.Join(root, EnvFileName), err)
	}
	c.env = env

	return c, nil
}

func (c *Config) setRoot(root string) {
	if root == "" {
		root = "."
	}
	c.root = root
}

// Validate checks values that have no usable default.
func (c *Config) Validate() error {
	if c.Transifex.PollInterval <= 0 {
		return fmt.Errorf("transifex.poll_interval must be positive, got %s", c.Transifex.PollInterval)
	}
	if c.Transifex.PollTimeout <= 0 {
		return fmt.Errorf("transifex.poll_timeout must be positive, got %s", c.Transifex.PollTimeout)
	}
	if c.ParaTranz.ProjectID <= 0 {
		return fmt.Errorf("paratranz.project_id must be positive, got %d", c.ParaTranz.ProjectID)
	}
	if strings.Count(c.Transifex.ProjectID, ":") < 1 {
		return fmt.Errorf("transifex.project_id %q is not a composite id like o:org:p:project", c.Transifex.ProjectID)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Resolving
// ---------------------------------------------------------------------------

// Path resolves p against the project root unless it is absolute.
func (c *Config) Path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.root, p)
}

// ResolvedFolders returns Folders with every path resolved against the root.
func (c *Config) ResolvedFolders() Folders {
	return Folders{
		Tabular:           c.Path(c.Folders.Tabular),
		SourceStrings:     c.Path(c.Folders.SourceStrings),
		TranslatedStrings: c.Path(c.Folders.TranslatedStrings),
		Archive:           c.Path(c.Folders.Archive),
	}
}

// LookupEnv returns key from the process environment, falling back to the
// project's .env file.
func (c *Config) LookupEnv(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	v, ok := c.env[key]
	return v, ok
}

// LanguageID returns the Transifex language id for the target language,
// e.g. "zh-Hans" → "l:zh-Hans".
func (t Transifex) LanguageID() string {
	if strings.HasPrefix(t.TargetLanguage, "l:") {
		return t.TargetLanguage
	}
	return "l:" + t.TargetLanguage
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// WriteDefault writes the default configuration to root/.transync.yaml.
// An existing file is left untouched unless force is set.
func WriteDefault(root string, force bool) (string, error) {
	path := filepath.Join(root, FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return path, fmt.Errorf("%s already exists", path)
	}
	data, err := Default(root).Marshal()
	if err != nil {
		return path, fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return path, fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
