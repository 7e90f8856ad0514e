package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/minios-linux/transync/config"
	"github.com/minios-linux/transync/convert"
	"github.com/minios-linux/transync/i18n"
	"github.com/minios-linux/transync/ui"
)

// ---------------------------------------------------------------------------
// convert (CSV <-> .properties)
// ---------------------------------------------------------------------------

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: i18n.T("Convert between CSV and .properties files"),
		Long: `Convert between the key,source,target CSV files used with ParaTranz and
the key=value .properties files used with Transifex.

Only files directly inside the input folder are converted. Existing output
files are overwritten.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "to-properties",
			Short: i18n.T("Split CSV files into source and translated .properties files"),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				return finish(convert.ToProperties(afero.NewOsFs(), cfg.ResolvedFolders(), console))
			},
		},
		&cobra.Command{
			Use:   "to-csv",
			Short: i18n.T("Join source and translated .properties files into CSV files"),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				return finish(convert.ToCSV(afero.NewOsFs(), cfg.ResolvedFolders(), console))
			},
		},
	)

	return cmd
}

// ---------------------------------------------------------------------------
// status (read-only: configuration + translation progress)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: i18n.T("Show translation progress"),
		Long: `Show the active configuration and, for every source .properties file,
how many keys have a non-empty translation. Does not modify any files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runStatus(cfg, console)
		},
	}
}

func runStatus(cfg *config.Config, log *ui.Logger) error {
	w := log.Writer()
	folders := cfg.ResolvedFolders()

	log.Header(i18n.T("Project"))
	fmt.Fprintf(w, "  %-22s %s\n", "Transifex project:", cfg.Transifex.ProjectID)
	fmt.Fprintf(w, "  %-22s %s\n", "Target language:", cfg.Transifex.TargetLanguage)
	fmt.Fprintf(w, "  %-22s %d\n", "ParaTranz project:", cfg.ParaTranz.ProjectID)
	fmt.Fprintf(w, "  %-22s %s\n", "CSV folder:", folders.Tabular)
	fmt.Fprintf(w, "  %-22s %s\n", "Source folder:", folders.SourceStrings)
	fmt.Fprintf(w, "  %-22s %s\n", "Translated folder:", folders.TranslatedStrings)

	progress, err := convert.Progress(afero.NewOsFs(), folders)
	if err != nil {
		return err
	}

	log.Header(i18n.T("Translation progress"))
	if len(progress) == 0 {
		log.Warn(i18n.T("No .properties files in %s"), folders.SourceStrings)
		return nil
	}
	log.Info(i18n.N("Found %d source file", "Found %d source files", len(progress)), len(progress))

	nameWidth := 0
	for _, p := range progress {
		nameWidth = max(nameWidth, len(p.Name))
	}
	total, translated := 0, 0
	for _, p := range progress {
		total += p.Total
		if p.Missing {
			fmt.Fprintf(w, "  %-*s %s\n", nameWidth, p.Name, i18n.T("no translation file"))
			continue
		}
		translated += p.Translated
		fmt.Fprintf(w, "  %-*s %s  %d/%d\n", nameWidth, p.Name, ui.ProgressBar(int(p.Percent), 30), p.Translated, p.Total)
	}

	pct := 0
	if total > 0 {
		pct = translated * 100 / total
	}
	fmt.Fprintf(w, "\n  %-*s %s  %d/%d\n\n", nameWidth, i18n.T("Total"), ui.ProgressBar(pct, 30), translated, total)
	return nil
}

// ---------------------------------------------------------------------------
// config (create / show .transync.yaml)
// ---------------------------------------------------------------------------

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: i18n.T("Create or show the project configuration"),
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: i18n.T("Write a .transync.yaml with the default settings"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.WriteDefault(rootDir, force)
			if err != nil {
				return err
			}
			console.Success(i18n.T("Created %s"), path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, i18n.T("Overwrite an existing file"))

	show := &cobra.Command{
		Use:   "show",
		Short: i18n.T("Print the effective configuration"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.AddCommand(initCmd, show)
	return cmd
}
