package importer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cleared-dev/bankfeed/internal/categorize"
	"github.com/cleared-dev/bankfeed/internal/model"
)

// Store is the transaction store a batch reads fingerprints from and
// appends to. Implementations must apply AppendTransactions atomically.
type Store interface {
	ListFingerprints(ctx context.Context, accountID string) (FingerprintSet, error)
	AppendTransactions(ctx context.Context, accountID string, txns []model.ImportedTransaction) error
}

// Stage is a step of the batch state machine.
type Stage int

const (
	StageParsing Stage = iota
	StageMapping
	StageValidating
	StageDeduplicating
	StageCategorizing
	StagePersisting
	StageCompleted
	StageFailed
)

var stageNames = [...]string{"parsing", "mapping", "validating", "deduplicating", "categorizing", "persisting", "completed", "failed"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// BatchError is a failure that aborts a whole batch. Nothing is written
// when one is returned.
type BatchError struct {
	Stage Stage
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("import %s: %v", e.Stage, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// Config describes one import run.
type Config struct {
	TargetAccountID string
	Mapping         model.ColumnMapping
	DateFormat      DateFormat
	SkipDuplicates  bool
	Categorize      bool
}

// DefaultConfig returns a Config with duplicate skipping and categorization on.
func DefaultConfig(accountID string) Config {
	return Config{
		TargetAccountID: accountID,
		DateFormat:      DayMonthYear,
		SkipDuplicates:  true,
		Categorize:      true,
	}
}

// Batch is a previewed import, ready to commit.
type Batch struct {
	ID         string
	Config     Config
	Stage      Stage
	Headers    []string
	Total      int
	Accepted   []model.ImportedTransaction
	Duplicates []model.ImportedTransaction // skipped, or imported anyway when SkipDuplicates is off
	Rejected   []model.RowError
}

// Result reports the batch counters and summary over accepted transactions.
func (b *Batch) Result() model.ImportResult {
	skipped := 0
	if b.Config.SkipDuplicates {
		skipped = len(b.Duplicates)
	}
	return model.ImportResult{
		BatchID:  b.ID,
		Total:    b.Total,
		Imported: len(b.Accepted),
		Skipped:  skipped,
		Errors:   len(b.Rejected),
		Summary:  Summarize(b.Accepted),
	}
}

// Importer runs import batches against a Store. It holds no per-batch state.
type Importer struct {
	store Store
	rules *categorize.RuleSet
	log   zerolog.Logger
}

// New creates an Importer. A nil rules table disables categorization.
func New(store Store, rules *categorize.RuleSet, log zerolog.Logger) *Importer {
	return &Importer{store: store, rules: rules, log: log}
}

// Preview runs every stage except persistence.
func (im *Importer) Preview(ctx context.Context, text string, cfg Config) (*Batch, error) {
	b := &Batch{ID: uuid.NewString(), Config: cfg, Stage: StageParsing}
	log := im.log.With().Str("batch_id", b.ID).Str("account_id", cfg.TargetAccountID).Logger()

	headers, rows, err := Tokenize(text)
	if err != nil {
		b.Stage = StageFailed
		return b, &BatchError{Stage: StageParsing, Err: err}
	}
	b.Headers = headers
	b.Total = len(rows)

	b.Stage = StageMapping
	cols, err := ValidateMapping(cfg.Mapping, headers)
	if err != nil {
		b.Stage = StageFailed
		return b, &BatchError{Stage: StageMapping, Err: err}
	}
	if _, err := ParseDateFormat(string(cfg.DateFormat)); err != nil {
		b.Stage = StageFailed
		return b, &BatchError{Stage: StageMapping, Err: err}
	}

	b.Stage = StageValidating
	var built []model.ImportedTransaction
	for i, row := range rows {
		res := BuildRow(i, row, cols, cfg.DateFormat)
		if !res.Accepted() {
			log.Debug().Int("row", i+1).Str("reason", string(res.Err.Reason)).Msg("row rejected")
			b.Rejected = append(b.Rejected, *res.Err)
			continue
		}
		res.Txn.BatchID = b.ID
		built = append(built, res.Txn)
	}

	b.Stage = StageDeduplicating
	prior, err := im.store.ListFingerprints(ctx, cfg.TargetAccountID)
	if err != nil {
		log.Warn().Err(err).Msg("fingerprint lookup failed")
		b.Stage = StageFailed
		return b, &BatchError{Stage: StageDeduplicating, Err: fmt.Errorf("listing fingerprints: %w", err)}
	}
	seen := make(FingerprintSet, len(built))
	for _, t := range built {
		dup := IsDuplicate(t.Fingerprint, prior, seen)
		seen.Add(t.Fingerprint)
		if dup {
			log.Debug().Int("row", t.SourceRowIndex+1).Str("fingerprint", string(t.Fingerprint)).Msg("duplicate")
			b.Duplicates = append(b.Duplicates, t)
			if cfg.SkipDuplicates {
				continue
			}
		}
		b.Accepted = append(b.Accepted, t)
	}

	b.Stage = StageCategorizing
	if cfg.Categorize {
		for i := range b.Accepted {
			t := &b.Accepted[i]
			if cat, merchant, ok := im.rules.Categorize(t.Description, t.Amount); ok {
				t.Category, t.Merchant = cat, merchant
			}
		}
	}

	log.Info().
		Int("total", b.Total).
		Int("accepted", len(b.Accepted)).
		Int("duplicates", len(b.Duplicates)).
		Int("rejected", len(b.Rejected)).
		Msg("batch previewed")
	return b, nil
}

// Commit persists the accepted transactions of b in one write. A cancelled
// ctx before the write leaves the store untouched.
func (im *Importer) Commit(ctx context.Context, b *Batch) (model.ImportResult, error) {
	if b.Stage != StageCategorizing {
		return model.ImportResult{}, fmt.Errorf("batch %s is %s, not ready to commit", b.ID, b.Stage)
	}
	if err := ctx.Err(); err != nil {
		return model.ImportResult{}, err
	}

	b.Stage = StagePersisting
	if len(b.Accepted) > 0 {
		if err := im.store.AppendTransactions(ctx, b.Config.TargetAccountID, b.Accepted); err != nil {
			b.Stage = StageFailed
			return model.ImportResult{}, &BatchError{Stage: StagePersisting, Err: err}
		}
	}
	b.Stage = StageCompleted

	res := b.Result()
	im.log.Info().
		Str("batch_id", b.ID).
		Str("account_id", b.Config.TargetAccountID).
		Int("imported", res.Imported).
		Int("skipped", res.Skipped).
		Int("errors", res.Errors).
		Msg("batch committed")
	return res, nil
}

// Run previews and commits in one call.
func (im *Importer) Run(ctx context.Context, text string, cfg Config) (model.ImportResult, error) {
	b, err := im.Preview(ctx, text, cfg)
	if err != nil {
		return model.ImportResult{}, err
	}
	return im.Commit(ctx, b)
}
