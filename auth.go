package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/minios-linux/transync/config"
	"github.com/minios-linux/transync/credentials"
	"github.com/minios-linux/transync/i18n"
)

// ---------------------------------------------------------------------------
// auth (token management)
// ---------------------------------------------------------------------------

// allPlatforms is the ordered list of platforms for menus and completion.
var allPlatforms = []struct {
	id   string
	name string
}{
	{platformTransifex, "Transifex"},
	{platformParaTranz, "ParaTranz"},
}

// tokenProviders returns the token provider of every platform, keyed by id.
func tokenProviders(cfg *config.Config) map[string]*credentials.FileProvider {
	return map[string]*credentials.FileProvider{
		platformTransifex: transifexToken(cfg),
		platformParaTranz: paratranzToken(cfg),
	}
}

func completePlatforms(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	completions := make([]string, 0, len(allPlatforms))
	for _, p := range allPlatforms {
		completions = append(completions, fmt.Sprintf("%s\t%s", p.id, p.name))
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: i18n.T("Manage API tokens"),
		Long: `Manage the API tokens of both platforms.

Each platform keeps one token in a plain text file (see token_file in
.transync.yaml), written with 0600 permissions. An environment variable
(token_env, also read from .env) takes precedence over the file.

Examples:
  transync auth login --platform transifex   Store a Transifex token
  transync auth logout --platform paratranz  Remove the ParaTranz token
  transync auth logout                       Remove all tokens
  transync auth list                         Show stored tokens`,
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthLogoutCmd(),
		newAuthListCmd(),
	)

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var platform string

	cmd := &cobra.Command{
		Use:   "login",
		Short: i18n.T("Store an API token"),
		Long: `Prompt for a platform's API token and save it to its token file.

If --platform is not specified, you will be prompted to choose.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			menu, secret := loginPrompters(cmd.InOrStdin())
			if platform == "" {
				platform, err = choosePlatform(menu, console.Writer())
				if err != nil {
					return err
				}
			}
			provider, ok := tokenProviders(cfg)[platform]
			if !ok {
				return fmt.Errorf("unknown platform %q (use transifex or paratranz)", platform)
			}

			token, err := secret.Prompt(fmt.Sprintf(i18n.T("Enter your %s API token: "), provider.Label))
			if err != nil {
				return err
			}
			token = strings.TrimSpace(token)
			if token == "" {
				return credentials.ErrNoToken
			}
			if err := provider.Save(token); err != nil {
				return err
			}
			console.Success(i18n.T("Token saved to %s"), provider.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&platform, "platform", "", i18n.T("Platform to authenticate (transifex, paratranz)"))
	_ = cmd.RegisterFlagCompletionFunc("platform", completePlatforms)

	return cmd
}

// loginPrompters returns the prompter for the platform menu and the one for
// the token. On a terminal the token is read without echo.
func loginPrompters(in io.Reader) (menu, secret credentials.Prompter) {
	out := console.Writer()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return credentials.NewReaderPrompter(f, out), &credentials.TerminalPrompter{In: f, Out: out}
	}
	p := credentials.NewReaderPrompter(in, out)
	return p, p
}

// choosePlatform shows the platform menu and reads a number or name.
func choosePlatform(prompter credentials.Prompter, out io.Writer) (string, error) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s\n\n", color.BlueString(i18n.T("Select platform to authenticate:")))
	for i, p := range allPlatforms {
		fmt.Fprintf(out, "  %d. %s\n", i+1, color.YellowString("%-10s", p.id))
	}
	fmt.Fprintln(out)

	choice, err := prompter.Prompt(i18n.T("Enter choice (number or name): "))
	if err != nil {
		return "", err
	}
	choice = strings.ToLower(strings.TrimSpace(choice))
	for i, p := range allPlatforms {
		if choice == strconv.Itoa(i+1) || choice == p.id {
			return p.id, nil
		}
	}
	return "", fmt.Errorf("invalid choice %q, use: transync auth login --platform PLATFORM", choice)
}

func newAuthLogoutCmd() *cobra.Command {
	var platform string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: i18n.T("Remove stored tokens"),
		Long: `Remove the stored token of one or all platforms.

If --platform is not specified, tokens of ALL platforms are removed.
Environment variables are not touched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			providers := tokenProviders(cfg)

			if platform != "" {
				provider, ok := providers[platform]
				if !ok {
					return fmt.Errorf("unknown platform %q (use transifex or paratranz)", platform)
				}
				if err := provider.Remove(); err != nil {
					return err
				}
				console.Success(i18n.T("%s token removed"), provider.Label)
				return nil
			}

			errCount := 0
			for _, p := range allPlatforms {
				if err := providers[p.id].Remove(); err != nil {
					console.Error(i18n.T("Failed to remove %s token: %v"), p.name, err)
					errCount++
				}
			}
			if errCount > 0 {
				return fmt.Errorf("%d token files could not be removed", errCount)
			}
			console.Success(i18n.T("All stored tokens removed"))
			return nil
		},
	}

	cmd.Flags().StringVar(&platform, "platform", "", i18n.T("Platform to log out of (default: all)"))
	_ = cmd.RegisterFlagCompletionFunc("platform", completePlatforms)

	return cmd
}

func newAuthListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   i18n.T("Show stored tokens and their source"),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			w := console.Writer()
			providers := tokenProviders(cfg)

			console.Header(i18n.T("Stored Tokens"))
			for _, p := range allPlatforms {
				fmt.Fprintf(w, "  %-10s %s\n", p.id, tokenStatus(cfg, providers[p.id]))
			}
			fmt.Fprintln(w)
			return nil
		},
	}
}

func tokenStatus(cfg *config.Config, p *credentials.FileProvider) string {
	if v, ok := cfg.LookupEnv(p.EnvVar); ok && strings.TrimSpace(v) != "" {
		return fmt.Sprintf("%s (key: %s, from $%s)", color.GreenString("configured"), credentials.MaskKey(strings.TrimSpace(v)), p.EnvVar)
	}
	if token, ok := p.Stored(); ok {
		return fmt.Sprintf("%s (key: %s, file: %s)", color.GreenString("configured"), credentials.MaskKey(token), p.Path)
	}
	return color.RedString("not configured")
}
