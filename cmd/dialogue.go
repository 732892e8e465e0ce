package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/skill-mapper/internal/ai/gemini"
	"github.com/spigell/skill-mapper/internal/dialogue"
)

var dialogueCmd = &cobra.Command{
	Use:   "dialogue",
	Short: "Answer questions until every experience category is mapped",
	Long: `Start or resume a question and answer session. Each answer is mapped by
Gemini onto at most one of eight broad experience categories and the next
question builds on what was said so far. An empty answer ends the session; it
can be resumed later.

With --answer or --audio a single answer to the pending question is mapped
without prompting.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		runDialogue(cmd)
	},
}

var dialogueStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show mapped categories and session progress",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		logger, config := bootstrap()
		format := outputFlag(cmd, logger)

		h := openHistory(logger, config)
		if err := writeDialogueStatus(cmd.OutOrStdout(), h.Mapped(), h.Stats(), format); err != nil {
			logger.Fatal("writing results", zap.Error(err))
		}
	},
}

var dialogueHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show every answered question",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		logger, config := bootstrap()
		format := outputFlag(cmd, logger)

		h := openHistory(logger, config)
		if err := writeInteractions(cmd.OutOrStdout(), h.Interactions(), format); err != nil {
			logger.Fatal("writing results", zap.Error(err))
		}
	},
}

var dialogueCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the experience categories answers are mapped onto",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		logger, _ := bootstrap()
		format := outputFlag(cmd, logger)

		if err := writeDefinitions(cmd.OutOrStdout(), dialogue.Categories(), format); err != nil {
			logger.Fatal("writing results", zap.Error(err))
		}
	},
}

var dialogueResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget mapped categories and the conversation",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		logger, config := bootstrap()
		h := openHistory(logger, config)

		yes, _ := cmd.Flags().GetBool("yes")
		ok, err := confirm(fmt.Sprintf("Forget %d mapped categories and %d answers?", len(h.MappedNames()), len(h.Interactions())), yes)
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if !ok {
			return
		}

		if err := h.Clear(); err != nil {
			logger.Fatal("clearing dialogue history", zap.Error(err))
		}
		logger.Info("dialogue history cleared", zap.String("path", h.Path()))
	},
}

func init() {
	rootCmd.AddCommand(dialogueCmd)
	dialogueCmd.AddCommand(dialogueStatusCmd, dialogueHistoryCmd, dialogueCategoriesCmd, dialogueResetCmd)

	dialogueCmd.PersistentFlags().String("dialogue-file", "", "json file holding the dialogue history (default is dialogue.json)")
	viper.BindPFlag("dialogue-file", dialogueCmd.PersistentFlags().Lookup("dialogue-file"))

	dialogueCmd.Flags().String("answer", "", "answer the pending question and exit")
	dialogueCmd.Flags().StringP("audio", "a", "", "voice recording answering the pending question")
	dialogueCmd.Flags().StringP("output", "o", outputText, "output format of a single answer: text or json")
	dialogueCmd.MarkFlagsMutuallyExclusive("answer", "audio")

	for _, c := range []*cobra.Command{dialogueStatusCmd, dialogueHistoryCmd, dialogueCategoriesCmd} {
		c.Flags().StringP("output", "o", outputText, "output format: text or json")
	}
	dialogueResetCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
}

type answerOutput struct {
	RequestID string `json:"request_id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	*dialogue.Outcome
}

func runDialogue(cmd *cobra.Command) {
	ctx := context.Background()

	logger, config := bootstrap()
	format := outputFlag(cmd, logger)

	requestID := uuid.NewString()
	logger = logger.With(zap.String("request_id", requestID))

	gcfg := geminiConfig(config)
	generator, logger := newGenerator(ctx, logger, gcfg)

	h := openHistory(logger, config)
	mapper := gemini.NewDialogueMapper(
		generator.WithTemperature(gemini.MapTemperature),
		generator.WithTemperature(gemini.QuestionTemperature),
		gcfg.MaxLogLength,
		logger,
	)
	session := dialogue.NewSession(mapper, h, logger)

	question, err := session.Question(ctx)
	if errors.Is(err, dialogue.ErrComplete) {
		logger.Info("exiting", zap.String("reason", "every category is mapped already"), zap.String("hint", "run 'dialogue reset' to start over"))
		return
	}
	if err != nil {
		logger.Fatal("getting a question", zap.Error(err))
	}

	answer, oneShot, err := dialogueAnswer(ctx, cmd, gemini.NewTranscriber(generator, logger))
	if err != nil {
		logger.Fatal("preparing answer", zap.Error(err))
	}

	out := cmd.OutOrStdout()
	if oneShot {
		outcome, err := session.Answer(ctx, question, answer)
		if err != nil {
			logger.Fatal("mapping answer", zap.Error(err))
		}
		if format == outputJSON {
			err = writeJSON(out, answerOutput{RequestID: requestID, Question: question, Answer: answer, Outcome: outcome})
		} else {
			err = writeOutcome(out, outcome)
		}
		if err != nil {
			logger.Fatal("writing results", zap.Error(err))
		}
		return
	}

	for {
		answer, err := ask(question)
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if strings.TrimSpace(answer) == "" {
			logger.Info("session paused", zap.Int("mapped", len(h.MappedNames())), zap.String("path", h.Path()))
			return
		}

		outcome, err := session.Answer(ctx, question, answer)
		if err != nil {
			logger.Fatal("mapping answer", zap.Error(err))
		}
		if err := writeOutcome(out, outcome); err != nil {
			logger.Fatal("writing results", zap.Error(err))
		}

		if outcome.Complete {
			logger.Info("every category is mapped")
			return
		}
		if outcome.Status != dialogue.StatusWeakFit {
			question = outcome.NextQuestion
		}
	}
}

// dialogueAnswer returns the answer given by flag and whether there was one.
func dialogueAnswer(ctx context.Context, cmd *cobra.Command, transcriber *gemini.Transcriber) (string, bool, error) {
	if answer, _ := cmd.Flags().GetString("answer"); strings.TrimSpace(answer) != "" {
		return answer, true, nil
	}

	path, _ := cmd.Flags().GetString("audio")
	if path == "" {
		return "", false, nil
	}
	media, err := readMedia(path, "audio/")
	if err != nil {
		return "", false, err
	}
	text, err := transcriber.Transcribe(ctx, *media)
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

func writeOutcome(w io.Writer, o *dialogue.Outcome) error {
	switch o.Status {
	case dialogue.StatusMapped:
		fmt.Fprintf(w, "mapped: %s\n", o.Category)
	case dialogue.StatusWeakFit:
		fmt.Fprintln(w, "weak fit, tell me more")
	case dialogue.StatusAlreadyMapped:
		fmt.Fprintf(w, "already mapped: %s\n", o.Category)
	default:
		fmt.Fprintf(w, "could not map the answer (got %q)\n", o.Category)
	}
	if o.Justification != "" {
		fmt.Fprintf(w, "  %s\n", o.Justification)
	}
	fmt.Fprintf(w, "progress: %d%%\n", o.Completion)
	if o.NextQuestion != "" {
		fmt.Fprintf(w, "next: %s\n", o.NextQuestion)
	}
	return nil
}

type dialogueStatus struct {
	Mapped []dialogue.MappedCategory `json:"mappedCategories"`
	dialogue.Stats
}

func writeDialogueStatus(w io.Writer, mapped []dialogue.MappedCategory, stats dialogue.Stats, format string) error {
	if format == outputJSON {
		return writeJSON(w, dialogueStatus{Mapped: mapped, Stats: stats})
	}

	fmt.Fprintf(w, "mapped: %d/%d (%d%%)\n", stats.TotalMapped, dialogue.Total, stats.Completion)
	fmt.Fprintf(w, "answers: %d\n", stats.TotalInteractions)
	if stats.LastInteraction != nil {
		fmt.Fprintf(w, "last answer: %s\n", stats.LastInteraction.Format(time.RFC3339))
	}
	for _, m := range mapped {
		fmt.Fprintf(w, "  [x] %s\n", m.Category)
		if m.Justification != "" {
			fmt.Fprintf(w, "      %s\n", m.Justification)
		}
	}
	for _, name := range stats.Unmapped {
		fmt.Fprintf(w, "  [ ] %s\n", name)
	}
	return nil
}

func writeInteractions(w io.Writer, interactions []dialogue.Interaction, format string) error {
	if format == outputJSON {
		return writeJSON(w, interactions)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tQUESTION\tANSWER\tMAPPED")
	for _, in := range interactions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", in.Timestamp.Format(time.RFC3339), in.Question, in.Answer, in.MappedCategory)
	}
	return tw.Flush()
}

func writeDefinitions(w io.Writer, defs []dialogue.Definition, format string) error {
	if format == outputJSON {
		return writeJSON(w, defs)
	}
	for _, d := range defs {
		fmt.Fprintf(w, "%s\n  %s\n  stamps: %s\n", d.Name, d.Description, d.Stamps)
	}
	return nil
}
