package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/skill-mapper/internal/filtering"
)

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "Show the filters applied to classified skills and their settings",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		logger, config := bootstrap()
		format := outputFlag(cmd, logger)

		keepSaved, _ := cmd.Flags().GetBool("keep-saved")
		steps := filtering.Defaults(keepSaved)
		cfg := filtersConfig(config)
		for _, step := range steps {
			if err := step.Validate(cfg); err != nil {
				logger.Fatal("invalid filter config", zap.String("name", step.Name()), zap.Error(err))
			}
		}

		if err := writeFilterStatus(cmd.OutOrStdout(), filtering.Describe(steps), format); err != nil {
			logger.Fatal("writing results", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(filtersCmd)

	filtersCmd.Flags().Bool("keep-saved", false, "show the pipeline as run with classify --keep-saved")
	filtersCmd.Flags().StringP("output", "o", outputText, "output format: text or json")
}

func writeFilterStatus(w io.Writer, statuses []filtering.Status, format string) error {
	if format == outputJSON {
		return writeJSON(w, statuses)
	}

	for _, s := range statuses {
		state := "enabled"
		if !s.Enabled {
			state = "disabled"
		}
		line := fmt.Sprintf("%s: %s", s.Name, state)
		if s.Reason != "" {
			line += " (" + s.Reason + ")"
		}

		keys := make([]string, 0, len(s.Details))
		for k := range s.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		details := make([]string, 0, len(keys))
		for _, k := range keys {
			details = append(details, k+"="+s.Details[k])
		}
		if len(details) > 0 {
			line += " " + strings.Join(details, " ")
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
