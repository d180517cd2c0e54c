package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankfeed/internal/categorize"
	"github.com/cleared-dev/bankfeed/internal/config"
	"github.com/cleared-dev/bankfeed/internal/logger"
)

var (
	// Version will be set via ldflags during build.
	Version = "dev"
	// Commit will be set via ldflags during build.
	Commit = "none"
	// Date will be set via ldflags during build.
	Date = "unknown"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:     "bankfeed",
		Short:   "Import bank statement CSVs into a small business ledger",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			log := logger.New(logLevel)
			cmd.SetContext(logger.WithContext(cmd.Context(), log))
		},
	}

	rootCmd.PersistentFlags().String("repo", ".", "repository directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newAccountsCommand())
	rootCmd.AddCommand(newDetectCommand())
	rootCmd.AddCommand(newImportCommand())

	return rootCmd
}

// project is an initialized bankfeed repository.
type project struct {
	root  string
	cfg   *config.Config
	rules *categorize.RuleSet
	log   zerolog.Logger
}

// loadProject reads bankfeed.yaml, .env overrides and the category rules of
// the repository named by --repo. A log level in config or env replaces the
// default when --log-level is not given.
func loadProject(cmd *cobra.Command) (*project, error) {
	root, err := filepath.Abs(cmd.Flag("repo").Value.String())
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s is not a bankfeed project (run bankfeed init)", root)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(filepath.Join(root, ".env")); err != nil {
		return nil, err
	}

	log := logger.FromContext(cmd.Context())
	if !cmd.Flags().Changed("log-level") && cfg.LogLevel != "" {
		log = log.Level(logger.ParseLevel(cfg.LogLevel))
	}

	rules, err := loadRules(root, cfg.RulesPath)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("rules", len(rules.Rules())).Str("root", root).Msg("project loaded")

	return &project{root: root, cfg: cfg, rules: rules, log: log}, nil
}

// loadRules reads the rules file, falling back to the built-in table when
// the file does not exist.
func loadRules(root, rulesPath string) (*categorize.RuleSet, error) {
	if rulesPath == "" {
		return categorize.DefaultRules(), nil
	}
	if !filepath.IsAbs(rulesPath) {
		rulesPath = filepath.Join(root, rulesPath)
	}
	rules, err := categorize.LoadRules(rulesPath)
	if errors.Is(err, os.ErrNotExist) {
		return categorize.DefaultRules(), nil
	}
	return rules, err
}
