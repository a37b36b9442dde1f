package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"stock-outlook/internal/models"
)

const defaultFeedTimeout = 30 * time.Second

func newAnalyzeCmd(app *App) *cobra.Command {
	var (
		timeframe   string
		bars        int
		withHistory bool
		noSave      bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <symbol>",
		Short: "Classify the trading outlook for a symbol",
		Long: `Fetch price history for a symbol and classify its trading outlook.

The classification runs every configured indicator rule over the series
and reduces the votes to BULLISH, BEARISH or NEUTRAL_WAIT. Series that
cannot be analyzed come back as a diagnostic outlook (NO_DATA,
INSUFFICIENT_DATA, ...) instead of an error.`,
		Example: `  outlook analyze 600519
  outlook analyze AAPL --timeframe weekly
  outlook analyze 600519 --bars 120 --json
  outlook analyze 600519 --json --history`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := args[0]

			timeout := app.Config.Feed.Timeout
			if timeout <= 0 {
				timeout = defaultFeedTimeout
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			result, err := app.analyzeSymbol(ctx, symbol, timeframe, bars)
			if err != nil {
				output.Error("Analysis failed: %v", err)
				return err
			}

			if !noSave {
				app.saveRun(ctx, result)
			}

			if output.IsJSON() {
				return output.JSON(newResultView(result, withHistory))
			}
			renderResult(output, result, app.Config.UI.DateFormat)
			return nil
		},
	}

	cmd.Flags().StringVarP(&timeframe, "timeframe", "t", "", "bar timeframe: daily, weekly or monthly (default from config)")
	cmd.Flags().IntVarP(&bars, "bars", "b", 0, "number of bars to analyze (default from config)")
	cmd.Flags().BoolVar(&withHistory, "history", false, "include the trailing indicator history in JSON output")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not record this run in the store")

	return cmd
}

// renderResult prints one analysis result as text.
func renderResult(output *Output, result *models.AnalysisResult, dateFormat string) {
	if dateFormat == "" {
		dateFormat = "2006-01-02"
	}

	output.Printf("%s  %s  %s\n",
		output.BoldText(result.Symbol),
		result.Timeframe,
		output.DimText(result.GeneratedAt.Format(dateFormat+" 15:04")))
	output.Printf("Close: %s    Outlook: %s\n",
		FormatPrice(result.LatestClose),
		output.OutlookText(result.Outlook))
	if result.Explanation != "" {
		output.Println(result.Explanation)
	}
	if result.FundFlow != nil {
		output.Printf("Main fund flow (%s): %s (%s)\n",
			result.FundFlow.Date.Format(dateFormat),
			FormatSigned(result.FundFlow.MainInflow),
			FormatSignedPercent(result.FundFlow.MainInflowPct))
	}

	if len(result.IndicatorValues) == 0 {
		return
	}
	output.Println()

	table := NewTable(output, "INDICATOR", "VALUE", "READ")
	for _, name := range indicatorDisplayOrder(result.IndicatorValues) {
		iv := result.IndicatorValues[name]
		table.AddRow(name, FormatPrice(iv.Value), output.SentimentText(iv.Sentiment))
	}
	table.Render()
}
