// Package advisor turns a completed analysis into a short plain-language
// commentary using an LLM. The commentary is display-only and never
// feeds back into classification.
package advisor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"stock-outlook/internal/models"
)

// LLMClient is the completion surface the advisor needs.
type LLMClient interface {
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

const systemPrompt = `You are a cautious equity analyst. You receive one technical ` +
	`snapshot of a stock: its outlook classification, the rule summary that produced ` +
	`it, and the latest indicator readings. Write a short commentary (3-5 sentences, ` +
	`plain language) explaining what the readings say about current momentum and ` +
	`where the tension between them lies. Refer to indicators by name. Do not give ` +
	`buy or sell advice and do not predict prices.`

// Advisor produces commentary for analysis results.
type Advisor struct {
	llm LLMClient
}

// New creates an advisor backed by the given client.
func New(llm LLMClient) *Advisor {
	return &Advisor{llm: llm}
}

// Explain asks the model to comment on the result.
func (a *Advisor) Explain(ctx context.Context, result *models.AnalysisResult) (string, error) {
	text, err := a.llm.CompleteWithSystem(ctx, systemPrompt, BuildPrompt(result))
	if err != nil {
		return "", fmt.Errorf("advisor completion failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// BuildPrompt renders the user prompt for a result. Indicator lines are
// sorted by name so identical results always produce identical prompts.
func BuildPrompt(result *models.AnalysisResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Symbol: %s\n", result.Symbol)
	fmt.Fprintf(&b, "Timeframe: %s\n", result.Timeframe)
	fmt.Fprintf(&b, "Outlook: %s\n", result.Outlook)
	if result.HasClose() {
		fmt.Fprintf(&b, "Latest close: %.2f\n", result.LatestClose)
	} else {
		b.WriteString("Latest close: N/A\n")
	}
	fmt.Fprintf(&b, "Rule summary: %s\n", result.Explanation)

	if flow := result.FundFlow; flow != nil {
		fmt.Fprintf(&b, "Main fund flow (%s): %.2f (%.2f%%)\n",
			flow.Date.Format("2006-01-02"), flow.MainInflow, flow.MainInflowPct)
	}

	names := make([]string, 0, len(result.IndicatorValues))
	for name := range result.IndicatorValues {
		names = append(names, name)
	}
	sort.Strings(names)

	b.WriteString("\nIndicator readings:\n")
	for _, name := range names {
		v := result.IndicatorValues[name]
		if v.Valid() {
			fmt.Fprintf(&b, "- %s: %.2f (%s)\n", name, v.Value, v.Sentiment)
		} else {
			fmt.Fprintf(&b, "- %s: N/A (%s)\n", name, v.Sentiment)
		}
	}

	return b.String()
}
