// Package csvstore keeps imported transactions in one CSV ledger per account
// under <root>/ledger/<account>/transactions.csv.
package csvstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/cleared-dev/bankfeed/internal/importer"
	"github.com/cleared-dev/bankfeed/internal/model"
)

var validAccountID = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Store is a file-backed transaction store.
type Store struct {
	root string
	mu   sync.Mutex
}

// New creates a Store rooted at repoRoot.
func New(repoRoot string) *Store {
	return &Store{root: repoRoot}
}

// Read returns every stored transaction for accountID in append order.
func (s *Store) Read(accountID string) ([]model.ImportedTransaction, error) {
	path, err := s.ledgerPath(accountID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	defer f.Close()

	txns, err := ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}
	return txns, nil
}

// ListFingerprints returns the fingerprints already stored for accountID.
func (s *Store) ListFingerprints(_ context.Context, accountID string) (importer.FingerprintSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txns, err := s.Read(accountID)
	if err != nil {
		return nil, err
	}
	set := importer.NewFingerprintSet()
	for _, t := range txns {
		set.Add(t.Fingerprint)
	}
	return set, nil
}

// AppendTransactions adds txns to the account ledger. The new ledger is
// written to a temp file and renamed over the old one, so a failed append
// leaves the ledger unchanged.
func (s *Store) AppendTransactions(ctx context.Context, accountID string, txns []model.ImportedTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.Read(accountID)
	if err != nil {
		return err
	}
	path, _ := s.ledgerPath(accountID)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "transactions-*.csv.tmp")
	if err != nil {
		return fmt.Errorf("creating temp ledger: %w", err)
	}
	defer os.Remove(tmp.Name())

	all := append(existing, txns...)
	if err := WriteTransactions(tmp, all); err != nil {
		tmp.Close()
		return fmt.Errorf("writing ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp ledger: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing ledger: %w", err)
	}
	return nil
}

func (s *Store) ledgerPath(accountID string) (string, error) {
	if !validAccountID.MatchString(accountID) || accountID == "." || accountID == ".." {
		return "", fmt.Errorf("invalid account id %q", accountID)
	}
	return filepath.Join(s.root, "ledger", accountID, "transactions.csv"), nil
}
