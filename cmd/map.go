package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	logfields "github.com/spigell/skill-mapper/internal/logger"
	"github.com/spigell/skill-mapper/internal/matcher"
)

var mapCmd = &cobra.Command{
	Use:   "map <phrase>...",
	Short: "Map free-text phrases to canonical taxonomy skills",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runMap(cmd, args)
	},
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize <phrase>...",
	Short: "Print the canonical skill names of phrases, dropping weak matches",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runNormalize(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(mapCmd)
	rootCmd.AddCommand(normalizeCmd)

	mapCmd.Flags().StringP("output", "o", outputText, "output format: text or json")
	mapCmd.Flags().Bool("dedupe", false, "keep one result per canonical skill")
	normalizeCmd.Flags().StringP("output", "o", outputText, "output format: text or json")
}

func runMap(cmd *cobra.Command, args []string) {
	logger, config := bootstrap()
	format, _ := cmd.Flags().GetString("output")
	if err := validOutput(format); err != nil {
		logger.Fatal("bad flag", zap.Error(err))
	}

	m := newMatcher(logger, config)

	var results []matcher.Result
	if dedupe, _ := cmd.Flags().GetBool("dedupe"); dedupe {
		results = m.MapAll(args)
	} else {
		results = make([]matcher.Result, 0, len(args))
		for _, phrase := range args {
			results = append(results, m.Map(phrase))
		}
	}

	for _, r := range results {
		logger.Debug("mapped phrase", logfields.MatchFields(r)...)
	}

	if err := writeResults(cmd.OutOrStdout(), results, format); err != nil {
		logger.Fatal("writing results", zap.Error(err))
	}
}

func runNormalize(cmd *cobra.Command, args []string) {
	logger, config := bootstrap()
	format, _ := cmd.Flags().GetString("output")
	if err := validOutput(format); err != nil {
		logger.Fatal("bad flag", zap.Error(err))
	}

	names := newMatcher(logger, config).Normalize(args)
	logger.Info("normalized skills", zap.Int("inputs", len(args)), zap.Int("skills", len(names)))

	if err := writeLines(cmd.OutOrStdout(), names, format); err != nil {
		logger.Fatal("writing results", zap.Error(err))
	}
}
