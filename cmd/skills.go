package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/skill-mapper/internal/taxonomy"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "Browse the skills taxonomy",
	Long: `Without flags the whole taxonomy is printed.
--category lists one category (partial, case insensitive names are accepted),
--find reports the category of a canonical skill and --complete lists skills
containing the given text.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		runSkills(cmd)
	},
}

var taxonomyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the active taxonomy as yaml, ready to be edited and used with --taxonomy-file",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		logger, config := bootstrap()
		t, err := loadTaxonomy(config)
		if err != nil {
			logger.Fatal("loading the taxonomy", zap.Error(err))
		}
		if err := t.Encode(cmd.OutOrStdout()); err != nil {
			logger.Fatal("encoding the taxonomy", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(skillsCmd)
	skillsCmd.AddCommand(taxonomyExportCmd)

	skillsCmd.Flags().StringP("category", "c", "", "list skills of a category")
	skillsCmd.Flags().StringP("find", "f", "", "print the category of a skill")
	skillsCmd.Flags().String("complete", "", "list skills containing this text")
	skillsCmd.Flags().Int("limit", 10, "maximum number of completions, 0 for all")
	skillsCmd.Flags().StringP("output", "o", outputText, "output format: text or json")
	skillsCmd.MarkFlagsMutuallyExclusive("category", "find", "complete")
}

func runSkills(cmd *cobra.Command) {
	logger, config := bootstrap()
	format, _ := cmd.Flags().GetString("output")
	if err := validOutput(format); err != nil {
		logger.Fatal("bad flag", zap.Error(err))
	}

	m := newMatcher(logger, config)
	t := m.Taxonomy()
	out := cmd.OutOrStdout()

	category, _ := cmd.Flags().GetString("category")
	find, _ := cmd.Flags().GetString("find")
	complete, _ := cmd.Flags().GetString("complete")

	var err error
	switch {
	case category != "":
		name, ok := t.ParseCategory(category)
		if !ok {
			logger.Fatal("unknown category", zap.String("category", category), zap.Any("categories", t.Categories()))
		}
		err = writeLines(out, t.SkillsByCategory(string(name)), format)

	case find != "":
		found, ok := t.FindSkillCategory(find)
		if !ok {
			logger.Fatal("skill is not in the taxonomy", zap.String("skill", find))
		}
		if format == outputJSON {
			err = writeJSON(out, map[string]string{"skill": find, "category": found.String()})
		} else {
			_, err = fmt.Fprintln(out, found)
		}

	case complete != "":
		limit, _ := cmd.Flags().GetInt("limit")
		err = writeLines(out, m.Complete(complete, limit), format)

	default:
		err = writeTaxonomy(out, t, format)
	}

	if err != nil {
		logger.Fatal("writing results", zap.Error(err))
	}
}

func writeTaxonomy(w io.Writer, t *taxonomy.Taxonomy, format string) error {
	if format == outputJSON {
		return writeJSON(w, t.Groups())
	}
	for _, g := range t.Groups() {
		if _, err := fmt.Fprintf(w, "%s (%d)\n", g.Category, len(g.Skills)); err != nil {
			return err
		}
		for _, s := range g.Skills {
			if _, err := fmt.Fprintf(w, "  - %s\n", s); err != nil {
				return err
			}
		}
	}
	return nil
}
