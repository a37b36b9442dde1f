package cli

import (
	"context"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"stock-outlook/internal/advisor"
	"stock-outlook/internal/analysis/outlook"
	"stock-outlook/internal/analysis/strategy"
	"stock-outlook/internal/config"
	"stock-outlook/internal/feed"
	"stock-outlook/internal/logging"
	"stock-outlook/internal/models"
	"stock-outlook/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2024-03-01"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Registry *strategy.Registry
	Engine   *outlook.Engine
	Provider feed.Provider
	Store    store.RunStore
	Advisor  *advisor.Advisor
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	registry := strategy.NewRegistry()
	app := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: registry,
		Engine:   outlook.NewEngine(registry),
	}

	switch cfg.Feed.Provider {
	case "yahoo":
		app.Provider = feed.NewYahooProvider(cfg.Feed.MaxRetries)
	default:
		app.Provider = feed.NewCSVProvider(cfg.Feed.CSVDir)
	}
	logger.Debug().Str("provider", app.Provider.Name()).Msg("data provider initialized")

	if cfg.Store.Enabled {
		runStore, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize run store, runs will not be recorded")
		} else {
			app.Store = runStore
			logger.Debug().Str("path", cfg.Store.Path).Msg("run store initialized")
		}
	}

	if cfg.AdvisorReady() {
		client := advisor.NewOpenAIClient(
			cfg.Credentials.OpenAIAPIKey,
			cfg.Advisor.Model,
			cfg.Advisor.MaxTokens,
			cfg.Advisor.Temperature,
		)
		app.Advisor = advisor.New(client)
		logger.Debug().Str("model", cfg.Advisor.Model).Msg("advisor initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "outlook",
		Short: "Stock Outlook - trading outlook classification from price history",
		Long: `Stock Outlook classifies a stock's trading outlook from its price history.

It computes moving averages, RSI, MACD, KDJ and Bollinger Bands over daily,
weekly or monthly bars and reduces them to one outlook per symbol, together
with the rule readings that produced it.

Use 'outlook help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			jsonMode, _ := cmd.Flags().GetBool("json")
			if jsonMode || !cfg.UI.ColorEnabled {
				color.NoColor = true
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Store != nil {
				if err := app.Store.Close(); err != nil {
					app.Logger.Warn().Err(err).Msg("failed to close run store")
				}
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/stock-outlook)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newAnalyzeCmd(app))
	rootCmd.AddCommand(newWatchCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
	rootCmd.AddCommand(newExplainCmd(app))
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// analyzeSymbol fetches history for one symbol and classifies it. Feed
// failures are real errors; data problems inside a fetched series come
// back as diagnostic outlooks on the result itself.
func (app *App) analyzeSymbol(ctx context.Context, symbol, timeframe string, bars int) (*models.AnalysisResult, error) {
	if timeframe == "" {
		timeframe = app.Config.General.DefaultTimeframe
	}
	if bars <= 0 {
		bars = app.Config.General.HistoryBars
	}

	logger := logging.WithTimeframe(logging.WithSymbol(app.Logger, symbol), timeframe)

	start := time.Now()
	series, err := app.Provider.History(ctx, symbol, timeframe, bars)
	logging.LogFetch(logger, app.Provider.Name(), symbol, len(series), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	flow, err := app.Provider.FundFlow(ctx, symbol)
	if err != nil {
		logger.Warn().Err(err).Msg("fund flow unavailable")
		flow = nil
	}

	result := app.Engine.Analyze(ctx, series, flow, timeframe)
	result.Symbol = symbol
	logging.LogAnalysis(logger, symbol, timeframe, string(result.Outlook), result.LatestClose)
	return result, nil
}

// saveRun records a run when the store is configured. Failures are
// logged, not fatal.
func (app *App) saveRun(ctx context.Context, result *models.AnalysisResult) (string, bool) {
	if app.Store == nil {
		return "", false
	}
	id, err := app.Store.SaveRun(ctx, result)
	if err != nil {
		app.Logger.Warn().Err(err).Str("symbol", result.Symbol).Msg("failed to record run")
		return "", false
	}
	return id, true
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Stock Outlook v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("General")
	output.Printf("  Default Timeframe: %s\n", cfg.General.DefaultTimeframe)
	output.Printf("  History Bars:      %d\n", cfg.General.HistoryBars)
	output.Println()

	output.Bold("Feed")
	output.Printf("  Provider:    %s\n", cfg.Feed.Provider)
	output.Printf("  CSV Dir:     %s\n", cfg.Feed.CSVDir)
	output.Printf("  Timeout:     %s\n", cfg.Feed.Timeout)
	output.Printf("  Max Retries: %d\n", cfg.Feed.MaxRetries)
	output.Println()

	output.Bold("Store")
	output.Printf("  Enabled: %v\n", cfg.Store.Enabled)
	output.Printf("  Path:    %s\n", cfg.Store.Path)
	output.Println()

	output.Bold("Advisor")
	output.Printf("  Enabled:     %v\n", cfg.Advisor.Enabled)
	output.Printf("  Model:       %s\n", cfg.Advisor.Model)
	output.Printf("  Max Tokens:  %d\n", cfg.Advisor.MaxTokens)
	output.Printf("  Temperature: %.1f\n", cfg.Advisor.Temperature)
	output.Printf("  Credentials: %v\n", cfg.Credentials.OpenAIAPIKey != "")
	output.Println()

	output.Bold("Watch")
	output.Printf("  Schedule:  %s\n", cfg.Watch.Schedule)
	output.Printf("  Watchlist: %s\n", cfg.Watch.Watchlist)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:   %s\n", cfg.Logging.Level)
	output.Printf("  Console: %v\n", cfg.Logging.Console)
	output.Printf("  File:    %v (%s)\n", cfg.Logging.File, cfg.Logging.FilePath)
}
