package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/services"
)

const metricsNamespace = "fintrack"

var version = "dev"

type rootFlags struct {
	logLevel  string
	logFormat string
	backend   string
	dbPath    string
}

func main() {
	ctx, stop := cli.SignalContext(context.Background(), log.Nop())
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	cfg := new(config.Config)

	root := &cobra.Command{
		Use:           "fintrack",
		Short:         "Personal finance tracker",
		Long:          "fintrack records income and expenses, reports on them and tracks savings goals.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			*cfg = *loaded
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&flags.logFormat, "log-format", "", "log format (text, json)")
	pf.StringVar(&flags.backend, "backend", "", "data backend (sqlite, memory)")
	pf.StringVar(&flags.dbPath, "db", "", "SQLite database path")

	root.AddCommand(
		serveCmd(cfg),
		migrateCmd(cfg),
		categoriesCmd(cfg),
		transactionsCmd(cfg),
		reportCmd(cfg),
		goalsCmd(cfg),
	)
	return root
}

// loadConfig reads .env and the environment, then lets explicitly set
// flags win.
func loadConfig(cmd *cobra.Command, flags rootFlags) (*config.Config, error) {
	cli.LoadEnvFile()
	cfg := config.Load()

	pf := cmd.Flags()
	if pf.Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if pf.Changed("log-format") {
		cfg.LogFormat = flags.logFormat
	}
	if pf.Changed("backend") {
		cfg.DataBackend = flags.backend
	}
	if pf.Changed("db") {
		cfg.SQLiteDBPath = flags.dbPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runtime is the wired service graph for one command.
type runtime struct {
	logger   *log.Logger
	backend  *backend.BackendResult
	services *services.Services
}

func (r *runtime) Close() {
	if err := r.backend.Cleanup(); err != nil {
		r.logger.Error("Failed to release backend", log.FieldError, err)
	}
}

// openRuntime wires backend and services around an existing logger.
func openRuntime(ctx context.Context, cfg *config.Config, logger *log.Logger, collector metrics.Collector, withEvents bool) (*runtime, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	if !withEvents {
		bcfg.AMQPURL = ""
	}
	res, err := backend.NewFactory(logger, collector).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}
	svc := services.New(services.Config{
		Store:            res.Store,
		Publisher:        res.Publisher(),
		Logger:           logger,
		Metrics:          collector,
		Now:              time.Now,
		DefaultsCacheTTL: cfg.DefaultsCacheTTL,
	})
	return &runtime{logger: logger, backend: res, services: svc}, nil
}

// commandRuntime serves the one-shot commands: logs go to stderr so
// tables stay clean on stdout, and no events are published.
func commandRuntime(ctx context.Context, cfg *config.Config) (*runtime, error) {
	logger, err := cli.SetupLogger(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}
	return openRuntime(ctx, cfg, logger, metrics.NoOpCollector{}, false)
}

// userFlag registers the --user flag shared by the read commands.
func userFlag(cmd *cobra.Command, user *string) {
	cmd.Flags().StringVarP(user, "user", "u", "", "user id whose data to read")
	_ = cmd.MarkFlagRequired("user")
}

func userID(raw string) (core.UserID, error) {
	u := core.UserID(raw)
	if err := u.Validate(); err != nil {
		return "", err
	}
	return u, nil
}
