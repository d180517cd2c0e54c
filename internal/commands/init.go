package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankfeed/internal/accounts"
	"github.com/cleared-dev/bankfeed/internal/categorize"
	"github.com/cleared-dev/bankfeed/internal/config"
	"github.com/cleared-dev/bankfeed/internal/gitops"
)

func newInitCommand() *cobra.Command {
	var name string
	var useGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new bankfeed project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, name, useGit)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().BoolVar(&useGit, "git", false, "initialize a git repository and commit every import")

	return cmd
}

func runInit(cmd *cobra.Command, dir, name string, useGit bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	// Create directory structure.
	dirs := []string{
		"accounts",
		"rules",
		"logs",
		"ledger",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Write bankfeed.yaml.
	cfg := config.Default(name)
	cfg.Git.Enabled = useGit
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Write an empty account registry.
	if err := accounts.NewService(nil).Save(dir); err != nil {
		return fmt.Errorf("writing accounts: %w", err)
	}

	// Seed categorization rules with the built-in table.
	if err := os.WriteFile(filepath.Join(dir, cfg.RulesPath), categorize.DefaultRulesYAML(), 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}

	// Write .gitignore.
	gitignore := ".env\ndata/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	// Write import/.gitkeep.
	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	out := cmd.OutOrStdout()
	if !useGit {
		fmt.Fprintf(out, "Initialized bankfeed project at %s\n", dir)
		return nil
	}

	// Initialize git and create initial commit.
	if err := gitops.Init(cmd.Context(), dir); err != nil {
		return err
	}
	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	hash, err := gitops.CommitAll(cmd.Context(), dir, "init: Initialize "+name, author)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(out, "Initialized bankfeed project at %s (%s)\n", dir, hash)
	return nil
}
