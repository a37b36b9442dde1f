package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// advisorTimeout allows for LLM completion latency on top of the feed
// fetch.
const advisorTimeout = 90 * time.Second

func newExplainCmd(app *App) *cobra.Command {
	var (
		timeframe string
		bars      int
	)

	cmd := &cobra.Command{
		Use:   "explain <symbol>",
		Short: "Narrate an analysis result in plain language",
		Long: `Run the outlook classification for a symbol and have the configured
language model narrate the result. Requires OPENAI_API_KEY and an
enabled [advisor] section in the config.

The commentary is descriptive only. It never contains trading advice.`,
		Example: `  outlook explain 600519
  outlook explain AAPL --timeframe weekly --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := args[0]

			if app.Advisor == nil {
				output.Error("Advisor not configured. Set OPENAI_API_KEY and enable [advisor] in the config.")
				return fmt.Errorf("advisor not configured")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), advisorTimeout)
			defer cancel()

			result, err := app.analyzeSymbol(ctx, symbol, timeframe, bars)
			if err != nil {
				output.Error("Analysis failed: %v", err)
				return err
			}
			app.saveRun(ctx, result)

			commentary, err := app.Advisor.Explain(ctx, result)
			if err != nil {
				output.Error("Advisor failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(struct {
					Result     resultView `json:"result"`
					Commentary string     `json:"commentary"`
				}{
					Result:     newResultView(result, false),
					Commentary: commentary,
				})
			}

			renderResult(output, result, app.Config.UI.DateFormat)
			output.Println()
			output.Println(commentary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&timeframe, "timeframe", "t", "", "bar timeframe: daily, weekly or monthly (default from config)")
	cmd.Flags().IntVarP(&bars, "bars", "b", 0, "number of bars to analyze (default from config)")

	return cmd
}
