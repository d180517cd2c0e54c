package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankfeed/internal/accounts"
	"github.com/cleared-dev/bankfeed/internal/gitops"
	"github.com/cleared-dev/bankfeed/internal/importer"
	"github.com/cleared-dev/bankfeed/internal/importlog"
	"github.com/cleared-dev/bankfeed/internal/model"
	"github.com/cleared-dev/bankfeed/internal/report"
	"github.com/cleared-dev/bankfeed/internal/store"
)

type importOptions struct {
	account         string
	dateFormat      string
	profile         string
	mappings        []string
	allowDuplicates bool
	noCategorize    bool
	dryRun          bool
	jsonOut         bool
	all             bool
}

func newImportCommand() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a bank statement CSV into an account",
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.all {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd)
			if err != nil {
				return err
			}
			return runImport(cmd.Context(), cmd.OutOrStdout(), p, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.account, "account", "", "target account id (default from bankfeed.yaml)")
	cmd.Flags().StringVar(&opts.dateFormat, "date-format", "", "DD/MM/YYYY, MM/DD/YYYY or YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.profile, "profile", "", "saved bank profile (chase, anz)")
	cmd.Flags().StringArrayVar(&opts.mappings, "map", nil, "column override as field=header (repeatable)")
	cmd.Flags().BoolVar(&opts.allowDuplicates, "allow-duplicates", false, "import rows already in the ledger")
	cmd.Flags().BoolVar(&opts.noCategorize, "no-categorize", false, "skip category rules")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "preview without writing")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&opts.all, "all", false, "import every CSV in import/ and move it to import/processed/")

	return cmd
}

type importSource struct {
	name string
	path string
}

func runImport(ctx context.Context, out io.Writer, p *project, args []string, opts importOptions) error {
	accountID := opts.account
	if accountID == "" {
		accountID = p.cfg.Import.DefaultAccount
	}
	if accountID == "" {
		return errors.New("no target account: pass --account or set import.default_account")
	}

	// The target account must exist before any file is read.
	svc, err := accounts.Load(p.root)
	if err != nil {
		return err
	}
	if _, err := svc.Require(accountID); err != nil {
		return err
	}

	var sources []importSource
	if opts.all {
		files, err := importer.Scan(p.root)
		if err != nil {
			return err
		}
		for _, f := range files {
			sources = append(sources, importSource{name: f.Name, path: f.Path})
		}
		if len(sources) == 0 {
			fmt.Fprintln(out, "No CSV files in import/.")
			return nil
		}
	} else {
		sources = append(sources, importSource{name: filepath.Base(args[0]), path: args[0]})
	}

	st, closeStore, err := store.Open(ctx, p.cfg.Store, p.root)
	if err != nil {
		return err
	}
	defer closeStore()

	im := importer.New(st, p.rules, p.log)
	for _, src := range sources {
		if err := importFile(ctx, out, p, im, accountID, src, opts); err != nil {
			return fmt.Errorf("%s: %w", src.name, err)
		}
	}
	return nil
}

func importFile(ctx context.Context, out io.Writer, p *project, im *importer.Importer, accountID string, src importSource, opts importOptions) error {
	data, err := os.ReadFile(src.path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	text := string(data)

	cfg, err := batchConfig(p, accountID, text, opts)
	if err != nil {
		return err
	}

	b, err := im.Preview(ctx, text, cfg)
	if err != nil {
		return err
	}

	if opts.dryRun {
		if opts.jsonOut {
			return report.WriteJSON(out, report.NewDocument(src.name, b, true))
		}
		fmt.Fprintf(out, "Preview of %s -> %s (dry run, nothing written)\n\n", src.name, accountID)
		if err := report.WritePreview(out, b); err != nil {
			return err
		}
		fmt.Fprintln(out)
		return report.WriteSummary(out, b.Result())
	}

	res, err := im.Commit(ctx, b)
	if err != nil {
		return err
	}

	if err := importlog.Append(p.root, []importlog.Entry{importlog.NewEntry(time.Now().UTC(), accountID, src.name, res)}); err != nil {
		p.log.Warn().Err(err).Msg("failed to write import log")
	}
	if opts.all {
		if err := importer.MarkProcessed(p.root, src.name); err != nil {
			return err
		}
	}
	if p.cfg.Git.Enabled && gitops.IsRepo(p.root) {
		author := gitops.Author{Name: p.cfg.Git.AuthorName, Email: p.cfg.Git.AuthorEmail}
		msg := fmt.Sprintf("import: %s -> %s (%d imported, %d skipped)", src.name, accountID, res.Imported, res.Skipped)
		if _, err := gitops.CommitAll(ctx, p.root, msg, author); err != nil {
			return err
		}
	}

	if opts.jsonOut {
		return report.WriteJSON(out, report.NewDocument(src.name, b, false))
	}
	fmt.Fprintf(out, "Imported %s -> %s (batch %s)\n\n", src.name, accountID, res.BatchID)
	if len(b.Rejected) > 0 {
		for _, e := range b.Rejected {
			fmt.Fprintf(out, "  %s\n", e.Error())
		}
		fmt.Fprintln(out)
	}
	return report.WriteSummary(out, res)
}

// batchConfig resolves the mapping and date format for one file. Precedence,
// lowest first: auto-detection, then --profile, then --map; config default,
// then profile, then --date-format.
func batchConfig(p *project, accountID, text string, opts importOptions) (importer.Config, error) {
	cfg := importer.DefaultConfig(accountID)
	cfg.SkipDuplicates = p.cfg.Import.SkipDuplicates && !opts.allowDuplicates
	cfg.Categorize = p.cfg.Import.Categorize && !opts.noCategorize

	if p.cfg.Import.DateFormat != "" {
		f, err := importer.ParseDateFormat(p.cfg.Import.DateFormat)
		if err != nil {
			return cfg, fmt.Errorf("import.date_format: %w", err)
		}
		cfg.DateFormat = f
	}

	// An unreadable file still goes through Preview so it fails at the
	// parsing stage.
	if headers, _, err := importer.Tokenize(text); err == nil {
		cfg.Mapping = importer.DetectMapping(headers)
	}

	if opts.profile != "" {
		prof, ok := importer.DefaultRegistry().Get(opts.profile)
		if !ok {
			return cfg, fmt.Errorf("unknown profile %q", opts.profile)
		}
		cfg.Mapping = prof.Mapping
		cfg.DateFormat = prof.DateFormat
	}

	overrides := make(map[model.Field]string, len(opts.mappings))
	for _, s := range opts.mappings {
		f, h, err := importer.ParseOverride(s)
		if err != nil {
			return cfg, err
		}
		overrides[f] = h
	}
	cfg.Mapping = importer.ApplyOverrides(cfg.Mapping, overrides)

	if opts.dateFormat != "" {
		f, err := importer.ParseDateFormat(opts.dateFormat)
		if err != nil {
			return cfg, err
		}
		cfg.DateFormat = f
	}
	return cfg, nil
}
