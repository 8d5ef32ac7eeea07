package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/mailclient/internal/api"
	"github.com/nhle/mailclient/internal/app"
	"github.com/nhle/mailclient/internal/auth"
	"github.com/nhle/mailclient/internal/credential"
	"github.com/nhle/mailclient/internal/logger"
	"github.com/nhle/mailclient/internal/mailbox"
	"github.com/nhle/mailclient/internal/model"
	"github.com/nhle/mailclient/internal/session"
	"github.com/nhle/mailclient/internal/store"
)

// Version is set via ldflags at build time.
var Version = "dev"

var (
	configPath  string
	serverURL   string
	storageKind string

	cfg      *model.AppConfig
	log      *zap.Logger
	sessions *session.Store
	client   *api.Client
	closers  []func() error
)

var rootCmd = &cobra.Command{
	Use:           "mailclient",
	Short:         "mailclient - terminal client for the webmail service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cmd.Name() {
		case "version", "init":
			return nil
		}
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		teardown()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		authCtl := auth.NewController(client, sessions, cfg.Display.RedirectDelay(), log.Named("auth"))
		mailCtl := mailbox.NewController(client, sessions,
			mailbox.WithLogger(log.Named("mailbox")),
			mailbox.WithToastDuration(cfg.Display.ToastDuration()),
			mailbox.WithLocale(cfg.Display.Locale),
		)

		root := app.New(app.Deps{
			Auth:    authCtl,
			Mailbox: mailCtl,
			Locale:  cfg.Display.Locale,
			Logger:  log.Named("app"),
		})

		if _, err := tea.NewProgram(root, tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("running TUI: %w", err)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mailclient version %s\n", Version)
	},
}

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
		}

		c := model.DefaultAppConfig()
		if serverURL != "" {
			c.Server.BaseURL = serverURL
		}
		if storageKind != "" {
			c.Storage.Backend = storageKind
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := model.SaveConfig(configPath, c); err != nil {
			return err
		}

		fmt.Printf("Wrote %s\n", configPath)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "config file")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&storageKind, "storage", "", "session storage: keyring or sqlite (overrides config)")

	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")

	rootCmd.AddCommand(versionCmd, initCmd, whoamiCmd, logoutCmd)
}

// setup loads the configuration and wires the session store and API
// client shared by every command.
func setup() error {
	var err error
	cfg, err = model.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if serverURL != "" {
		cfg.Server.BaseURL = serverURL
	}
	if storageKind != "" {
		cfg.Storage.Backend = storageKind
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err = logger.New(cfg.Log)
	if err != nil {
		return err
	}
	closers = append(closers, func() error {
		_ = log.Sync()
		return nil
	})

	backend, err := openBackend(cfg.Storage)
	if err != nil {
		return err
	}

	sessions, err = session.NewStore(backend)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	client = api.NewClient(cfg.Server.BaseURL, sessions,
		api.WithTimeout(cfg.Server.Timeout()),
		api.WithLogger(log.Named("api")),
		api.WithUnauthorizedHandler(func() {
			if err := sessions.Clear(); err != nil {
				log.Error("clearing session after 401", zap.Error(err))
			}
		}),
	)

	log.Info("started",
		zap.String("version", Version),
		zap.String("server", cfg.Server.BaseURL),
		zap.String("storage", cfg.Storage.Backend),
	)
	return nil
}

// openBackend returns the durable key/value store the session lives in.
func openBackend(sc model.StorageConfig) (session.Backend, error) {
	if sc.Backend == model.StorageSQLite {
		if err := os.MkdirAll(filepath.Dir(sc.Path), 0o755); err != nil {
			return nil, fmt.Errorf("creating storage directory: %w", err)
		}
		db, err := store.NewSQLiteStore(sc.Path)
		if err != nil {
			return nil, fmt.Errorf("opening session database: %w", err)
		}
		closers = append(closers, db.Close)
		return db, nil
	}
	return credential.Open(filepath.Dir(sc.Path))
}

func teardown() {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}
	closers = nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		teardown()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
