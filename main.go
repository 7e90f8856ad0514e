// transync moves game translation strings between Transifex and ParaTranz:
// CSV/.properties conversion plus pull and push for both platforms.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/minios-linux/transync/apiclient"
	"github.com/minios-linux/transync/config"
	"github.com/minios-linux/transync/i18n"
	"github.com/minios-linux/transync/report"
	"github.com/minios-linux/transync/ui"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// console receives all user-facing log lines.
var console = ui.New(os.Stderr)

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir    string
	configPath string
	verbose    bool
)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "transync",
		Short: i18n.T("Sync translation strings between Transifex and ParaTranz"),
		Long: `transync - keep Transifex and ParaTranz translations in step.

ParaTranz works with key,source,target CSV files; Transifex works with
key=value .properties files. transync converts between the two and moves
files to and from both platforms.

Typical round trip:
  transync transifex pull        Download source strings from Transifex
  transync convert to-csv        Build CSV files for ParaTranz
  transync paratranz push        Upload them to ParaTranz
  transync paratranz pull        Download the translated export
  transync convert to-properties Split CSV files back into .properties
  transync transifex push        Upload translations to Transifex

Commands:
  convert     Convert between CSV and .properties files
  transifex   Pull source strings from / push translations to Transifex
  paratranz   Pull the export archive from / push files to ParaTranz
  status      Show translation progress
  auth        Manage API tokens
  config      Create or show the project configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flags, inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", i18n.T("Project root directory"))
	root.PersistentFlags().StringVar(&configPath, "config", "", i18n.T("Config file (default: <root>/.transync.yaml)"))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, i18n.T("Log every HTTP request"))

	root.AddCommand(
		newConvertCmd(),
		newTransifexCmd(),
		newParaTranzCmd(),
		newStatusCmd(),
		newAuthCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		reportError(err)
		os.Exit(1)
	}
}

func reportError(err error) {
	if errors.Is(err, context.Canceled) {
		console.Error(i18n.T("Interrupted"))
		return
	}
	console.Error("%v", err)
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: i18n.T("Show version information"),
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "transync version %s\n", version)
			fmt.Fprintf(w, "  commit:    %s\n", commit)
			fmt.Fprintf(w, "  built:     %s\n", date)
			if lang := i18n.Language(); lang != "" {
				fmt.Fprintf(w, "  language:  %s\n", lang)
			}
		},
	}
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

func loadConfig() (*config.Config, error) {
	return config.Load(rootDir, configPath)
}

// newHTTPLogger returns the zap logger used for HTTP traces: development
// output on stderr with --verbose, nothing otherwise.
func newHTTPLogger() *zap.SugaredLogger {
	if !verbose {
		return zap.NewNop().Sugar()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

func newHTTPClient(cfg *config.Config, baseURL string) *resty.Client {
	return apiclient.New(apiclient.Options{
		BaseURL:   baseURL,
		UserAgent: "transync/" + version,
		Timeout:   cfg.HTTP.Timeout,
		Logger:    newHTTPLogger(),
	})
}

// finish prints the run summary. Per-item failures are reported but do not
// change the exit status.
func finish(sum report.Summary, err error) error {
	if err != nil {
		return err
	}
	switch {
	case sum.Total() == 0:
		console.Warn(i18n.T("Nothing to do"))
	case sum.OK():
		console.Success(i18n.T("Done: %s"), sum)
	default:
		console.Warn(i18n.T("Done with errors: %s"), sum)
	}
	return nil
}
