package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/secmon-lab/techinsights/pkg/domain/model"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	scoreColor   = color.New(color.FgGreen)
	urlColor     = color.New(color.FgBlue, color.Underline)
	mutedColor   = color.New(color.FgHiBlack)
)

func printInsights(w io.Writer, query string, insights []*model.Insight) {
	headingColor.Fprintf(w, "Results for %q: %d\n", query, len(insights))
	if len(insights) == 0 {
		mutedColor.Fprintln(w, "No matching insights.")
		return
	}

	for i, x := range insights {
		fmt.Fprintln(w)
		headingColor.Fprintf(w, "%d. %s\n", i+1, x.Title)
		scoreColor.Fprintf(w, "   score: %.3f", x.Score)
		if x.Category != "" {
			mutedColor.Fprintf(w, "  [%s]", x.Category)
		}
		fmt.Fprintln(w)
		if x.HasRelevance() {
			fmt.Fprintf(w, "   %s\n", x.Relevance)
		}
		if x.HasURL() {
			urlColor.Fprintf(w, "   %s\n", x.URL)
		}
	}
}

func printIngestion(w io.Writer, result *model.IngestionResult) {
	headingColor.Fprintf(w, "Ingested %d new articles (%d already stored)\n", result.NewCount, result.ExistingCount)
	mutedColor.Fprintf(w, "Finished in %s\n\n", result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))
	fmt.Fprintln(w, result.Summary)
}
