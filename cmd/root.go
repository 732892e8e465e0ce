package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/skill-mapper/internal/dialogue"
	"github.com/spigell/skill-mapper/internal/filtering"
	"github.com/spigell/skill-mapper/internal/logger"
	"github.com/spigell/skill-mapper/internal/matcher"
	"github.com/spigell/skill-mapper/internal/store"
	"github.com/spigell/skill-mapper/internal/taxonomy"
)

const (
	app = "skill-mapper"

	defaultStoreFile    = "skills.json"
	defaultDialogueFile = "dialogue.json"
	defaultProvider     = "gemini"
	defaultModel        = "gemini-2.5-flash"
)

type Config struct {
	TaxonomyFile string            `mapstructure:"taxonomy-file"`
	StoreFile    string            `mapstructure:"store-file" validate:"required"`
	DialogueFile string            `mapstructure:"dialogue-file" validate:"required"`
	Filters      *filtering.Config `mapstructure:"filters"`
	AI           *AIConfig         `mapstructure:"ai"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider" validate:"omitempty,oneof=gemini"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key" json:"-"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length" validate:"gte=0"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "skill-mapper maps free-text activity descriptions to a fixed skills taxonomy",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"store-file":             "SKILL_MAPPER_STORE",
		"dialogue-file":          "SKILL_MAPPER_DIALOGUE",
		"taxonomy-file":          "SKILL_MAPPER_TAXONOMY",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"ai.gemini.api-key":      "GEMINI_API_KEY",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("store-file", defaultStoreFile)
	viper.SetDefault("dialogue-file", defaultDialogueFile)
	viper.SetDefault("filters.min-confidence", matcher.MinConfidence)
	viper.SetDefault("ai.provider", defaultProvider)
	viper.SetDefault("ai.gemini.model", defaultModel)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is skill-mapper.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("taxonomy-file", "", "yaml file with a custom taxonomy. Default is the built-in one.")
	rootCmd.PersistentFlags().String("store-file", "", "json file holding saved skills (default is skills.json)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("taxonomy-file", rootCmd.PersistentFlags().Lookup("taxonomy-file"))
	viper.BindPFlag("store-file", rootCmd.PersistentFlags().Lookup("store-file"))
}

func initConfig() {
	// .env is optional; variables already set in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Without an explicit --config a missing file means defaults.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}

	config.StoreFile = strings.TrimSpace(config.StoreFile)
	config.DialogueFile = strings.TrimSpace(config.DialogueFile)
	config.TaxonomyFile = strings.TrimSpace(config.TaxonomyFile)

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// bootstrap builds the logger and the config every command needs. Failing
// here is fatal.
func bootstrap() (*zap.Logger, *Config) {
	logger, err := logger.New(logger.Options{
		App:   app,
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if viper.ConfigFileUsed() != "" {
		logger.Debug("config loaded", zap.String("path", viper.ConfigFileUsed()))
	}

	return logger, config
}

func loadTaxonomy(config *Config) (*taxonomy.Taxonomy, error) {
	if config.TaxonomyFile == "" {
		return taxonomy.Default(), nil
	}
	t, err := taxonomy.Load(config.TaxonomyFile)
	if err != nil {
		return nil, fmt.Errorf("loading taxonomy from %q: %w", config.TaxonomyFile, err)
	}
	return t, nil
}

func newMatcher(logger *zap.Logger, config *Config) *matcher.Matcher {
	t, err := loadTaxonomy(config)
	if err != nil {
		logger.Fatal("loading the taxonomy", zap.Error(err))
	}

	logger.Debug("taxonomy ready",
		zap.Int("categories", len(t.Categories())),
		zap.Int("skills", t.Len()),
		zap.String("source", taxonomySource(config)),
	)

	return matcher.New(t)
}

func taxonomySource(config *Config) string {
	if config.TaxonomyFile == "" {
		return "built-in"
	}
	return config.TaxonomyFile
}

func openStore(logger *zap.Logger, config *Config) *store.Store {
	s, err := store.Open(config.StoreFile)
	if err != nil {
		logger.Fatal("opening the skill store", zap.Error(err), zap.String("path", config.StoreFile))
	}
	return s
}

func openHistory(logger *zap.Logger, config *Config) *dialogue.History {
	h, err := dialogue.OpenHistory(config.DialogueFile)
	if err != nil {
		logger.Fatal("opening the dialogue history", zap.Error(err), zap.String("path", config.DialogueFile))
	}
	return h
}

func filtersConfig(config *Config) *filtering.Config {
	if config.Filters == nil {
		return &filtering.Config{}
	}
	return config.Filters
}
