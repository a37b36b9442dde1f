package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"stock-outlook/internal/store"
)

func newHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [symbol]",
		Short: "Show recorded analysis runs",
		Long: `List past analysis runs from the run store, newest first. With a
symbol argument only that symbol's runs are shown.`,
		Example: `  outlook history
  outlook history 600519
  outlook history --limit 50 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if app.Store == nil {
				output.Error("Run store is disabled. Enable [store] in the config to record runs.")
				return fmt.Errorf("run store disabled")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			var (
				runs []store.Run
				err  error
			)
			if len(args) == 1 {
				runs, err = app.Store.BySymbol(ctx, args[0], limit)
			} else {
				runs, err = app.Store.Recent(ctx, limit)
			}
			if err != nil {
				output.Error("Failed to load run history: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(newRunViews(runs))
			}
			renderRuns(output, runs)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs to show")

	return cmd
}

func renderRuns(output *Output, runs []store.Run) {
	if len(runs) == 0 {
		output.Dim("No recorded runs.")
		return
	}

	table := NewTable(output, "WHEN", "SYMBOL", "TIMEFRAME", "OUTLOOK", "CLOSE", "EXPLANATION")
	for _, r := range runs {
		table.AddRow(
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.Symbol,
			r.Timeframe,
			output.OutlookText(r.Outlook),
			FormatPrice(r.LatestClose),
			TruncateString(r.Explanation, 60),
		)
	}
	table.Render()
}

// runView is the JSON shape of one recorded run.
type runView struct {
	ID          string                   `json:"id"`
	Symbol      string                   `json:"symbol"`
	Timeframe   string                   `json:"timeframe"`
	Outlook     string                   `json:"outlook"`
	LatestClose *float64                 `json:"latest_close"`
	Explanation string                   `json:"explanation"`
	Indicators  map[string]indicatorView `json:"indicators"`
	CreatedAt   time.Time                `json:"created_at"`
}

func newRunViews(runs []store.Run) []runView {
	views := make([]runView, 0, len(runs))
	for _, r := range runs {
		indicators := make(map[string]indicatorView, len(r.Indicators))
		for name, iv := range r.Indicators {
			indicators[name] = indicatorView{
				Value:     jsonFloat(iv.Value),
				Sentiment: string(iv.Sentiment),
			}
		}
		views = append(views, runView{
			ID:          r.ID,
			Symbol:      r.Symbol,
			Timeframe:   r.Timeframe,
			Outlook:     string(r.Outlook),
			LatestClose: jsonFloat(r.LatestClose),
			Explanation: r.Explanation,
			Indicators:  indicators,
			CreatedAt:   r.CreatedAt,
		})
	}
	return views
}
