package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/skill-mapper/internal/ai"
	logfields "github.com/spigell/skill-mapper/internal/logger"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <phrase>",
	Short: "Suggest the best matching skill for a typed phrase",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runSuggest(cmd, strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)

	suggestCmd.Flags().Bool("save", false, "offer to save the suggested skill")
	suggestCmd.Flags().BoolP("yes", "y", false, "save without asking for confirmation")
}

func runSuggest(cmd *cobra.Command, phrase string) {
	logger, config := bootstrap()
	m := newMatcher(logger, config)

	s := m.Suggest(phrase)
	logger.Debug("suggestion", logfields.MatchFields(s.Match)...)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, s.Message)
	if s.Offered {
		fmt.Fprintf(out, "confidence: %.2f (%s)\n", s.Match.Confidence, s.Tier)
	}

	save, _ := cmd.Flags().GetBool("save")
	if !save {
		return
	}
	if !s.Offered {
		logger.Info("nothing to save", zap.String("reason", "no good match"))
		return
	}

	yes, _ := cmd.Flags().GetBool("yes")
	ok, err := confirm(fmt.Sprintf("Save %q?", s.Match.Skill), yes)
	if err != nil {
		logger.Fatal("exiting", zap.Error(err))
	}
	if !ok {
		return
	}

	st := openStore(logger, config)
	confidence := s.Match.Confidence
	added, err := st.Save(s.Match.Skill, s.Match.Category, ai.SourceText, &confidence)
	if err != nil {
		logger.Fatal("saving skill", zap.Error(err))
	}
	if !added {
		logger.Info("skill already saved", zap.String("skill", s.Match.Skill))
		return
	}
	logger.Info("skill saved", zap.String("skill", s.Match.Skill), zap.String("store", st.Path()))
}
