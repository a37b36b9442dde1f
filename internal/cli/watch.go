package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"stock-outlook/internal/config"
	"stock-outlook/internal/feed"
	"stock-outlook/internal/logging"
	"stock-outlook/internal/models"
	"stock-outlook/internal/notify"
)

func newWatchCmd(app *App) *cobra.Command {
	var (
		watchlistPath string
		schedule      string
		once          bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Periodically re-classify a watchlist of symbols",
		Long: `Run the outlook classification for every symbol on a watchlist, on a
cron schedule, and flag symbols whose outlook changed since the last
sweep. Each sweep is recorded in the run store when it is enabled.`,
		Example: `  outlook watch
  outlook watch --once
  outlook watch --schedule "*/30 * * * *"
  outlook watch --watchlist ./mylist.yaml --once`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if watchlistPath == "" {
				watchlistPath = app.Config.Watch.Watchlist
			}
			if schedule == "" {
				schedule = app.Config.Watch.Schedule
			}

			list, err := feed.LoadWatchlist(watchlistPath)
			if errors.Is(err, os.ErrNotExist) {
				if createErr := config.CreateTemplateWatchlist(watchlistPath); createErr != nil {
					output.Error("Failed to create watchlist template: %v", createErr)
					return createErr
				}
				output.Info("Created a template watchlist at %s. Edit it and rerun.", watchlistPath)
				return nil
			}
			if err != nil {
				output.Error("Failed to load watchlist: %v", err)
				return err
			}
			if len(list.Symbols) == 0 {
				output.Warning("Watchlist %s has no symbols.", watchlistPath)
				return nil
			}

			w := &watcher{
				app:      app,
				output:   output,
				entries:  list.Symbols,
				previous: make(map[string]models.Outlook),
			}

			if once {
				w.sweep(cmd.Context())
				return nil
			}
			if app.Config.Watch.Notify {
				w.notifier = notify.NewTerminal(true)
			}

			c := cron.New()
			if _, err := c.AddFunc(schedule, func() { w.sweep(context.Background()) }); err != nil {
				output.Error("Invalid schedule %q: %v", schedule, err)
				return err
			}

			output.Info("Watching %d symbols on schedule %q. Press Ctrl+C to stop.", len(list.Symbols), schedule)
			w.sweep(cmd.Context())
			c.Start()
			defer c.Stop()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig
			output.Println()
			output.Info("Stopped.")
			return nil
		},
	}

	cmd.Flags().StringVar(&watchlistPath, "watchlist", "", "watchlist file (default from config)")
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron schedule (default from config)")
	cmd.Flags().BoolVar(&once, "once", false, "run a single sweep and exit")

	return cmd
}

// watcher re-classifies watchlist entries and tracks outlook changes
// between sweeps.
type watcher struct {
	app      *App
	output   *Output
	entries  []feed.WatchEntry
	previous map[string]models.Outlook
	notifier notify.Notifier
}

func (w *watcher) sweep(ctx context.Context) {
	w.output.Dim("Sweep at %s", time.Now().Format("2006-01-02 15:04:05"))

	for _, entry := range w.entries {
		timeout := w.app.Config.Feed.Timeout
		if timeout <= 0 {
			timeout = defaultFeedTimeout
		}
		entryCtx, cancel := context.WithTimeout(ctx, timeout)
		result, err := w.app.analyzeSymbol(entryCtx, entry.Symbol, entry.Timeframe, 0)
		if err != nil {
			cancel()
			w.output.Warning("%s: %v", entry.Symbol, err)
			continue
		}

		// Colored text goes last on the line so padding stays aligned.
		w.output.Printf("%-10s %-8s close %-10s %s\n",
			entry.Symbol,
			entry.Timeframe,
			FormatPrice(result.LatestClose),
			w.output.OutlookText(result.Outlook))

		key := entry.Symbol + "|" + entry.Timeframe
		if prev, seen := w.previous[key]; seen && prev != result.Outlook {
			logging.LogOutlookChange(w.app.Logger, entry.Symbol, entry.Timeframe, string(prev), string(result.Outlook))
			w.output.Warning("%s outlook changed: %s -> %s", entry.Symbol, prev, result.Outlook)
			if w.notifier != nil {
				w.notifier.OutlookChange(entry.Symbol, entry.Timeframe, prev, result.Outlook)
			}
		}
		w.previous[key] = result.Outlook

		w.app.saveRun(entryCtx, result)
		cancel()
	}
}
