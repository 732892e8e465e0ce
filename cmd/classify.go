package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/skill-mapper/internal/ai"
	"github.com/spigell/skill-mapper/internal/ai/gemini"
	"github.com/spigell/skill-mapper/internal/filtering"
	logfields "github.com/spigell/skill-mapper/internal/logger"
	"github.com/spigell/skill-mapper/internal/matcher"
	"github.com/spigell/skill-mapper/internal/secrets"
)

const (
	PromptSaveAll = "Save all"
	PromptPick    = "Pick skills"
	PromptDone    = "done"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Ask Gemini which taxonomy skills an activity shows",
	Long: `Classify a text description, a photo or a voice recording of an activity.
Voice recordings are transcribed first. The skills returned by the model are
mapped back onto the taxonomy and passed through the filters before they are
printed and, with --save, stored.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		runClassify(cmd)
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringP("text", "t", "", "activity description")
	classifyCmd.Flags().StringP("image", "i", "", "photo of the activity")
	classifyCmd.Flags().StringP("audio", "a", "", "voice recording describing the activity")
	classifyCmd.Flags().Bool("save", false, "save the identified skills")
	classifyCmd.Flags().BoolP("yes", "y", false, "save without asking for confirmation")
	classifyCmd.Flags().Bool("keep-saved", false, "do not drop skills that are already saved")
	classifyCmd.Flags().StringP("output", "o", outputText, "output format: text or json")

	classifyCmd.MarkFlagsMutuallyExclusive("text", "image", "audio")
	classifyCmd.MarkFlagsOneRequired("text", "image", "audio")
}

type classifyOutput struct {
	RequestID string           `json:"request_id"`
	Source    ai.Source        `json:"source"`
	Summary   string           `json:"summary,omitempty"`
	Text      string           `json:"text,omitempty"`
	Skills    []matcher.Result `json:"skills"`
}

func runClassify(cmd *cobra.Command) {
	ctx := context.Background()

	logger, config := bootstrap()
	format, _ := cmd.Flags().GetString("output")
	if err := validOutput(format); err != nil {
		logger.Fatal("bad flag", zap.Error(err))
	}

	requestID := uuid.NewString()
	logger = logger.With(zap.String("request_id", requestID))

	gcfg := geminiConfig(config)
	generator, logger := newGenerator(ctx, logger, gcfg)

	m := newMatcher(logger, config)
	st := openStore(logger, config)

	input, err := classifyInput(ctx, cmd, gemini.NewTranscriber(generator, logger))
	if err != nil {
		logger.Fatal("preparing input", zap.Error(err))
	}

	logger.Info("classifying activity", zap.String("source", string(input.Source)))

	classifier := gemini.NewClassifier(generator, m, gcfg.MaxLogLength, logger)
	result, err := classifier.Classify(ctx, input)
	if err != nil {
		logger.Fatal("classifying activity", zap.Error(err))
	}

	logger.Info("skills identified",
		zap.Int("returned", len(result.OriginalSkills)),
		zap.Int("canonical", len(result.Skills)),
	)

	keepSaved, _ := cmd.Flags().GetBool("keep-saved")
	skills, err := filtering.Run(ctx, filtersConfig(config), filtering.Deps{Logger: logger, Store: st}, filtering.Defaults(keepSaved), result.Skills)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	out := cmd.OutOrStdout()
	if format == outputJSON {
		err = writeJSON(out, classifyOutput{
			RequestID: requestID,
			Source:    input.Source,
			Summary:   result.Summary,
			Text:      input.Text,
			Skills:    skills,
		})
	} else {
		if result.Summary != "" {
			fmt.Fprintf(out, "%s\n\n", result.Summary)
		}
		err = writeResults(out, skills, format)
	}
	if err != nil {
		logger.Fatal("writing results", zap.Error(err))
	}

	if len(skills) == 0 {
		logger.Info("exiting", zap.String("reason", "no new skills left after filters"))
		return
	}

	if save, _ := cmd.Flags().GetBool("save"); !save {
		return
	}

	yes, _ := cmd.Flags().GetBool("yes")
	selected, err := selectToSave(skills, yes)
	if err != nil {
		logger.Fatal("exiting", zap.Error(err))
	}
	if len(selected) == 0 {
		logger.Info("nothing saved")
		return
	}

	added, err := st.SaveAll(selected, input.Source)
	if err != nil {
		logger.Fatal("saving skills", zap.Error(err))
	}
	logger.Info("skills saved", zap.Strings("skills", added), zap.String("store", st.Path()))
}

func geminiConfig(config *Config) *GeminiConfig {
	if config.AI == nil || config.AI.Gemini == nil {
		return &GeminiConfig{}
	}
	return config.AI.Gemini
}

// newGenerator loads the api key and builds the gemini generator. The returned
// logger carries the provider and model fields.
func newGenerator(ctx context.Context, logger *zap.Logger, gcfg *GeminiConfig) (*gemini.Generator, *zap.Logger) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: gcfg.APIKey,
		File:  gcfg.APIKeyFile,
	})
	if err != nil {
		logger.Fatal(
			"loading gemini api key",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY_FILE or GEMINI_API_KEY environment variable or the 'ai.gemini' keys in the configuration file"),
		)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, gcfg.Model, logger)
	if err != nil {
		logger.Fatal("creating gemini client", zap.Error(err))
	}
	return generator, logfields.WithCommonFields(logger, defaultProvider, generator.Model())
}

func classifyInput(ctx context.Context, cmd *cobra.Command, transcriber ai.Transcriber) (ai.Input, error) {
	if text, _ := cmd.Flags().GetString("text"); strings.TrimSpace(text) != "" {
		return ai.Input{Source: ai.SourceText, Text: text}, nil
	}

	if path, _ := cmd.Flags().GetString("image"); path != "" {
		media, err := readMedia(path, "image/")
		if err != nil {
			return ai.Input{}, err
		}
		return ai.Input{Source: ai.SourceImage, Media: media}, nil
	}

	if path, _ := cmd.Flags().GetString("audio"); path != "" {
		media, err := readMedia(path, "audio/")
		if err != nil {
			return ai.Input{}, err
		}
		text, err := transcriber.Transcribe(ctx, *media)
		if err != nil {
			return ai.Input{}, err
		}
		return ai.Input{Source: ai.SourceVoice, Text: text}, nil
	}

	return ai.Input{}, fmt.Errorf("one of --text, --image or --audio is required")
}

// readMedia loads a file and checks its detected type starts with kind.
func readMedia(path, kind string) (*ai.Media, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("file %q is empty", path)
	}

	mimeType := mimetype.Detect(data).String()
	if i := strings.Index(mimeType, ";"); i != -1 {
		mimeType = mimeType[:i]
	}
	if !strings.HasPrefix(mimeType, kind) {
		// voice memos usually come in an mp4 container
		if kind == "audio/" && strings.HasPrefix(mimeType, "video/") {
			mimeType = "audio/" + strings.TrimPrefix(mimeType, "video/")
		} else {
			return nil, fmt.Errorf("file %q is %s, want %s*", path, mimeType, kind)
		}
	}

	return &ai.Media{MIMEType: mimeType, Data: data}, nil
}

func selectToSave(skills []matcher.Result, autoApprove bool) ([]matcher.Result, error) {
	if autoApprove {
		return skills, nil
	}

	names := make([]string, 0, len(skills))
	for _, s := range skills {
		names = append(names, s.Skill)
	}

	prompt := promptui.Select{
		Label: "Save identified skills?",
		Items: []string{PromptSaveAll, PromptPick, PromptNo},
	}
	_, action, err := prompt.Run()
	if err != nil {
		return nil, err
	}

	switch action {
	case PromptSaveAll:
		return skills, nil
	case PromptPick:
		picked, err := choose("Select a skill to save", PromptDone, names)
		if err != nil {
			return nil, err
		}
		selected := make([]matcher.Result, 0, len(picked))
		for _, name := range picked {
			for _, s := range skills {
				if s.Skill == name {
					selected = append(selected, s)
				}
			}
		}
		return selected, nil
	default:
		return nil, nil
	}
}
