package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spigell/skill-mapper/internal/matcher"
)

const (
	outputText = "text"
	outputJSON = "json"
)

type resultRow struct {
	matcher.Result
	Tier matcher.Tier `json:"tier"`
}

func validOutput(format string) error {
	switch format {
	case outputText, outputJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want %s or %s)", format, outputText, outputJSON)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeResults prints one row per result with its display tier.
func writeResults(w io.Writer, results []matcher.Result, format string) error {
	if format == outputJSON {
		rows := make([]resultRow, 0, len(results))
		for _, r := range results {
			rows = append(rows, resultRow{Result: r, Tier: matcher.TierOf(r.Confidence)})
		}
		return writeJSON(w, rows)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INPUT\tSKILL\tCATEGORY\tCONFIDENCE\tTIER")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%s\n", r.Input, r.Skill, r.Category, r.Confidence, matcher.TierOf(r.Confidence))
	}
	return tw.Flush()
}

func writeLines(w io.Writer, lines []string, format string) error {
	if format == outputJSON {
		return writeJSON(w, lines)
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
