package cmd

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/skill-mapper/internal/ai"
	"github.com/spigell/skill-mapper/internal/store"
	"github.com/spigell/skill-mapper/internal/taxonomy"
)

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Manage saved skills",
}

var savedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved skills",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		logger, config := bootstrap()
		format := outputFlag(cmd, logger)
		st := openStore(logger, config)

		skills := st.List()
		if category, _ := cmd.Flags().GetString("category"); category != "" {
			name, ok := newMatcher(logger, config).Taxonomy().ParseCategory(category)
			if !ok {
				name = taxonomy.Category(category)
			}
			skills = st.ByCategory(name)
		}
		if source, _ := cmd.Flags().GetString("source"); source != "" {
			src, err := ai.ParseSource(source)
			if err != nil {
				logger.Fatal("bad flag", zap.Error(err))
			}
			bySource := make([]store.IdentifiedSkill, 0, len(skills))
			for _, s := range skills {
				if s.Source == src {
					bySource = append(bySource, s)
				}
			}
			skills = bySource
		}

		if err := writeSaved(cmd.OutOrStdout(), skills, format); err != nil {
			logger.Fatal("writing results", zap.Error(err))
		}
	},
}

var savedStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show counts of saved skills by category and source",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		logger, config := bootstrap()
		format := outputFlag(cmd, logger)

		stats := openStore(logger, config).Stats()
		if err := writeStats(cmd.OutOrStdout(), stats, format); err != nil {
			logger.Fatal("writing results", zap.Error(err))
		}
	},
}

var savedRemoveCmd = &cobra.Command{
	Use:   "remove <skill>",
	Short: "Remove a saved skill",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		logger, config := bootstrap()
		st := openStore(logger, config)

		if err := st.Remove(args[0]); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				logger.Fatal("skill is not saved", zap.String("skill", args[0]), zap.Strings("saved", st.Names()))
			}
			logger.Fatal("removing skill", zap.Error(err))
		}
		logger.Info("skill removed", zap.String("skill", args[0]))
	},
}

var savedClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every saved skill",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		logger, config := bootstrap()
		st := openStore(logger, config)

		yes, _ := cmd.Flags().GetBool("yes")
		ok, err := confirm(fmt.Sprintf("Remove all %d saved skills?", len(st.Names())), yes)
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if !ok {
			return
		}

		if err := st.Clear(); err != nil {
			logger.Fatal("clearing skills", zap.Error(err))
		}
		logger.Info("all skills cleared", zap.String("store", st.Path()))
	},
}

var savedStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show every taxonomy skill and whether it was identified",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		logger, config := bootstrap()
		format := outputFlag(cmd, logger)

		t := newMatcher(logger, config).Taxonomy()
		status := openStore(logger, config).TaxonomyStatus(t)

		if err := writeStatus(cmd.OutOrStdout(), status, format); err != nil {
			logger.Fatal("writing results", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(savedCmd)
	savedCmd.AddCommand(savedListCmd, savedStatsCmd, savedRemoveCmd, savedClearCmd, savedStatusCmd)

	for _, c := range []*cobra.Command{savedListCmd, savedStatsCmd, savedStatusCmd} {
		c.Flags().StringP("output", "o", outputText, "output format: text or json")
	}
	savedListCmd.Flags().StringP("category", "c", "", "only skills of this category")
	savedListCmd.Flags().StringP("source", "s", "", "only skills identified from this source: image, voice or text")
	savedClearCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
}

func outputFlag(cmd *cobra.Command, logger *zap.Logger) string {
	format, _ := cmd.Flags().GetString("output")
	if err := validOutput(format); err != nil {
		logger.Fatal("bad flag", zap.Error(err))
	}
	return format
}

func writeSaved(w io.Writer, skills []store.IdentifiedSkill, format string) error {
	if format == outputJSON {
		return writeJSON(w, skills)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SKILL\tCATEGORY\tSOURCE\tIDENTIFIED")
	for _, s := range skills {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Skill, s.Category, s.Source, s.DateIdentified.Format(time.DateOnly))
	}
	return tw.Flush()
}

func writeStats(w io.Writer, stats store.Stats, format string) error {
	if format == outputJSON {
		return writeJSON(w, stats)
	}

	fmt.Fprintf(w, "total: %d\n", stats.Total)
	if !stats.LastUpdated.IsZero() {
		fmt.Fprintf(w, "last updated: %s\n", stats.LastUpdated.Format(time.RFC3339))
	}

	fmt.Fprintln(w, "by category:")
	categories := make([]string, 0, len(stats.ByCategory))
	for c := range stats.ByCategory {
		categories = append(categories, string(c))
	}
	sort.Strings(categories)
	for _, c := range categories {
		fmt.Fprintf(w, "  %s: %d\n", c, stats.ByCategory[taxonomy.Category(c)])
	}

	fmt.Fprintln(w, "by source:")
	sources := make([]string, 0, len(stats.BySource))
	for s := range stats.BySource {
		sources = append(sources, string(s))
	}
	sort.Strings(sources)
	for _, s := range sources {
		fmt.Fprintf(w, "  %s: %d\n", s, stats.BySource[ai.Source(s)])
	}

	fmt.Fprintln(w, "recent:")
	for _, s := range stats.Recent {
		fmt.Fprintf(w, "  %s (%s)\n", s.Skill, s.DateIdentified.Format(time.DateOnly))
	}
	return nil
}

func writeStatus(w io.Writer, status []store.CategoryStatus, format string) error {
	if format == outputJSON {
		return writeJSON(w, status)
	}

	for _, c := range status {
		identified := 0
		for _, s := range c.Skills {
			if s.Identified {
				identified++
			}
		}
		fmt.Fprintf(w, "%s (%d/%d)\n", c.Category, identified, len(c.Skills))
		for _, s := range c.Skills {
			mark := " "
			if s.Identified {
				mark = "x"
			}
			fmt.Fprintf(w, "  [%s] %s\n", mark, s.Name)
		}
	}
	return nil
}
