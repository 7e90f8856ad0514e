package main

import (
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/minios-linux/transync/config"
	"github.com/minios-linux/transync/credentials"
	"github.com/minios-linux/transync/i18n"
	"github.com/minios-linux/transync/paratranz"
	"github.com/minios-linux/transync/poll"
	"github.com/minios-linux/transync/transifex"
)

// Platform labels, also accepted by auth --platform.
const (
	platformTransifex = "transifex"
	platformParaTranz = "paratranz"
)

func transifexToken(cfg *config.Config) *credentials.FileProvider {
	return &credentials.FileProvider{
		Fs:       afero.NewOsFs(),
		Path:     cfg.Path(cfg.Transifex.TokenFile),
		EnvVar:   cfg.Transifex.TokenEnv,
		Lookup:   cfg.LookupEnv,
		Label:    "Transifex",
		Prompter: credentials.NewTerminalPrompter(),
		Log:      console,
	}
}

func paratranzToken(cfg *config.Config) *credentials.FileProvider {
	return &credentials.FileProvider{
		Fs:       afero.NewOsFs(),
		Path:     cfg.Path(cfg.ParaTranz.TokenFile),
		EnvVar:   cfg.ParaTranz.TokenEnv,
		Lookup:   cfg.LookupEnv,
		Label:    "ParaTranz",
		Prompter: credentials.NewTerminalPrompter(),
		Log:      console,
	}
}

// ---------------------------------------------------------------------------
// transifex
// ---------------------------------------------------------------------------

// transifexFlags override the matching .transync.yaml values when set.
type transifexFlags struct {
	project      string
	language     string
	pollInterval time.Duration
	pollTimeout  time.Duration
}

func (f *transifexFlags) apply(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("project") {
		cfg.Transifex.ProjectID = f.project
	}
	if flags.Changed("language") {
		cfg.Transifex.TargetLanguage = f.language
	}
	if flags.Changed("poll-interval") {
		cfg.Transifex.PollInterval = f.pollInterval
	}
	if flags.Changed("poll-timeout") {
		cfg.Transifex.PollTimeout = f.pollTimeout
	}
}

func newTransifexSyncer(cfg *config.Config) *transifex.Syncer {
	return &transifex.Syncer{
		HTTP:        newHTTPClient(cfg, cfg.Transifex.BaseURL),
		Credentials: transifexToken(cfg),
		Fs:          afero.NewOsFs(),
		Log:         console,
		ProjectID:   cfg.Transifex.ProjectID,
		LanguageID:  cfg.Transifex.LanguageID(),
		Poll: poll.Policy{
			Interval: cfg.Transifex.PollInterval,
			Timeout:  cfg.Transifex.PollTimeout,
		},
	}
}

func newTransifexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transifex",
		Short: i18n.T("Pull source strings from / push translations to Transifex"),
		Long: `Transfer .properties files to and from a Transifex project.

pull  downloads the source strings of every project resource into the
      source folder as <slug>.properties.
push  uploads every <slug>.properties in the translated folder as the
      target-language translation of the resource with the same slug,
      waiting for each import to finish.

The API token is read from $TRANSIFEX_API_TOKEN, then the token file;
if neither has one you are prompted and the answer is saved.`,
	}

	var pullFlags, pushFlags transifexFlags

	pull := &cobra.Command{
		Use:   "pull",
		Short: i18n.T("Download source strings of every resource"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pullFlags.apply(cmd.Flags(), cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			s := newTransifexSyncer(cfg)
			return finish(s.Pull(cmd.Context(), cfg.ResolvedFolders().SourceStrings))
		},
	}
	pull.Flags().StringVar(&pullFlags.project, "project", "", i18n.T("Transifex project id (o:org:p:project)"))

	push := &cobra.Command{
		Use:   "push",
		Short: i18n.T("Upload translated .properties files"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pushFlags.apply(cmd.Flags(), cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			s := newTransifexSyncer(cfg)
			return finish(s.Push(cmd.Context(), cfg.ResolvedFolders().TranslatedStrings))
		},
	}
	push.Flags().StringVar(&pushFlags.project, "project", "", i18n.T("Transifex project id (o:org:p:project)"))
	push.Flags().StringVar(&pushFlags.language, "language", "", i18n.T("Target language code, e.g. zh-Hans"))
	push.Flags().DurationVar(&pushFlags.pollInterval, "poll-interval", 0, i18n.T("Time between upload status checks"))
	push.Flags().DurationVar(&pushFlags.pollTimeout, "poll-timeout", 0, i18n.T("Give up waiting for an upload after this long"))

	cmd.AddCommand(pull, push)
	return cmd
}

// ---------------------------------------------------------------------------
// paratranz
// ---------------------------------------------------------------------------

func newParaTranzSyncer(cfg *config.Config) *paratranz.Syncer {
	return &paratranz.Syncer{
		HTTP:        newHTTPClient(cfg, cfg.ParaTranz.BaseURL),
		Credentials: paratranzToken(cfg),
		Fs:          afero.NewOsFs(),
		Log:         console,
		ProjectID:   cfg.ParaTranz.ProjectID,
	}
}

func newParaTranzCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paratranz",
		Short: i18n.T("Pull the export archive from / push files to ParaTranz"),
		Long: `Transfer files to and from a ParaTranz project.

pull  downloads the project's artifact archive and replaces the archive
      folder with its contents (the archive's top-level folder is dropped).
push  uploads every file under the archive folder whose name matches a
      remote file. Files without a remote counterpart are skipped; nothing
      is created remotely.

The API token is read from $PARATRANZ_API_TOKEN, then the token file;
if neither has one you are prompted and the answer is saved.`,
	}

	var project int
	withProject := func(c *cobra.Command) *cobra.Command {
		c.Flags().IntVar(&project, "project", 0, i18n.T("ParaTranz project id"))
		return c
	}
	load := func(cmd *cobra.Command) (*config.Config, error) {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		if cmd.Flags().Changed("project") {
			cfg.ParaTranz.ProjectID = project
		}
		return cfg, cfg.Validate()
	}

	cmd.AddCommand(
		withProject(&cobra.Command{
			Use:   "pull",
			Short: i18n.T("Download and extract the project archive"),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := load(cmd)
				if err != nil {
					return err
				}
				s := newParaTranzSyncer(cfg)
				return finish(s.Pull(cmd.Context(), cfg.ResolvedFolders().Archive))
			},
		}),
		withProject(&cobra.Command{
			Use:   "push",
			Short: i18n.T("Upload files matching remote file names"),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := load(cmd)
				if err != nil {
					return err
				}
				s := newParaTranzSyncer(cfg)
				return finish(s.Push(cmd.Context(), cfg.ResolvedFolders().Archive))
			},
		}),
	)

	return cmd
}
