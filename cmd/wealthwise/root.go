package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/wealthwise/wealthwise/internal/browser"
	"github.com/wealthwise/wealthwise/internal/config"
	"github.com/wealthwise/wealthwise/internal/log"
	"github.com/wealthwise/wealthwise/internal/notify"
	"github.com/wealthwise/wealthwise/internal/tui"
	"github.com/wealthwise/wealthwise/pkg/auth"
	"github.com/wealthwise/wealthwise/pkg/client"
	"github.com/wealthwise/wealthwise/pkg/dashboard"
)

// app holds what every command shares: flags, configuration and the
// authenticated client built from them.
type app struct {
	cfgFile  string
	apiURL   string
	pageSize int
	verbose  bool
	month    string

	cfg      *config.Config
	logger   *log.Logger
	logFile  io.Closer
	keycloak *auth.Keycloak
	store    *auth.Store
	client   *client.Client
	static   bool // token from the environment; no refresh, no logout

	openURL func(string) error
}

func newRootCmd() *cobra.Command {
	a := &app{openURL: browser.Open}

	rootCmd := &cobra.Command{
		Use:   "wealthwise",
		Short: "Personal finance in the terminal",
		Long: "wealthwise tracks transactions, recurring payments and receipts.\n" +
			"Run it with no arguments for the interactive dashboard.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file path (default ~/.config/wealthwise/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "override the API base URL")
	rootCmd.PersistentFlags().IntVar(&a.pageSize, "page-size", 0, "override the page size")
	rootCmd.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "log requests to stderr")
	rootCmd.Flags().StringVar(&a.month, "month", "", "dashboard month to open, YYYY-MM (default current)")

	rootCmd.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newVersionCmd(),
		newTransactionsCmd(a),
		newRecurringCmd(a),
		newDashboardCmd(a),
		newReceiptCmd(a),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wealthwise %s\n", version)
		},
	}
}

// loadConfig reads the configuration and applies flag overrides.
func (a *app) loadConfig() error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.APIURL = a.apiURL
	}
	if a.pageSize > 0 {
		cfg.PageSize = a.pageSize
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// setup builds the logger, session store and client. One-shot commands log
// to stderr at warn level; the TUI owns the terminal and logs to a file.
func (a *app) setup(cmd *cobra.Command, interactive bool) error {
	if err := a.loadConfig(); err != nil {
		return err
	}

	level, err := log.ParseLevel(a.cfg.Log.Level)
	if err != nil {
		return err
	}
	logCfg := log.Config{Level: slog.LevelWarn, Output: cmd.ErrOrStderr()}
	if a.verbose {
		logCfg.Level = slog.LevelDebug
	}
	if interactive {
		path, err := a.cfg.LogPath()
		if err != nil {
			return err
		}
		f, err := log.OpenFile(path)
		if err != nil {
			return err
		}
		a.logFile = f
		logCfg = log.Config{Level: level, Output: f}
	}
	a.logger = log.New(logCfg)

	a.keycloak = auth.NewKeycloak(a.cfg.Auth.URL, a.cfg.Auth.Realm, a.cfg.Auth.ClientID)
	tokenPath, err := a.cfg.TokenPath()
	if err != nil {
		return err
	}
	a.store = auth.NewStore(a.keycloak,
		auth.WithTokenFile(auth.TokenFile{Path: tokenPath}),
		auth.WithLogoutURL(a.keycloak.LogoutURL),
		auth.WithLogger(a.logger),
	)
	if _, err := a.store.Initialize(cmd.Context()); err != nil {
		return err
	}

	var tokens client.TokenSource = a.store
	if tok := os.Getenv(config.EnvToken); tok != "" {
		tokens = client.StaticToken(tok)
		a.static = true
	}
	a.client = client.New(a.cfg.APIURL, tokens,
		client.WithTimeout(a.cfg.Timeout),
		client.WithMinValidity(a.cfg.Auth.MinValidity),
		client.WithLogger(a.logger),
	)
	return nil
}

func (a *app) signedIn() bool {
	return a.static || a.store.Authenticated()
}

func (a *app) close() {
	if a.logFile != nil {
		a.logFile.Close() //nolint:errcheck
		a.logFile = nil
	}
}

func (a *app) runTUI(cmd *cobra.Command) error {
	if a.month != "" {
		if err := dashboard.ValidateMonth(a.month); err != nil {
			return err
		}
	}
	defer a.close()
	if err := a.setup(cmd, true); err != nil {
		return err
	}
	if !a.signedIn() {
		printSignedOut(cmd.ErrOrStderr())
		return nil
	}

	deps := tui.ClientDeps(a.client)
	deps.Bus = notify.NewBus(16)
	deps.Logger = a.logger
	deps.PageSize = a.cfg.PageSize
	deps.Month = a.month
	deps.Version = version

	a.logger.Info("starting tui", "api_url", a.cfg.APIURL)
	p := tea.NewProgram(tui.NewApp(deps), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
