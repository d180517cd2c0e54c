package accounts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/cleared-dev/bankfeed/internal/model"
)

// ErrUnknownAccount is returned when an import targets an unregistered account.
var ErrUnknownAccount = errors.New("unknown account")

var validID = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Service provides in-memory lookup over the registered bank accounts.
type Service struct {
	accounts []model.Account
	byID     map[string]model.Account
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.Account) *Service {
	byID := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	return &Service{accounts: accounts, byID: byID}
}

// Load reads accounts/accounts.csv from a repo root. A missing file yields
// an empty registry.
func Load(repoRoot string) (*Service, error) {
	f, err := os.Open(path(repoRoot))
	if errors.Is(err, os.ErrNotExist) {
		return NewService(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading accounts: %w", err)
	}
	return NewService(accts), nil
}

// All returns all accounts.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Get returns an account by ID.
func (s *Service) Get(id string) (model.Account, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// Exists reports whether an account ID is registered.
func (s *Service) Exists(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Require returns the account or ErrUnknownAccount.
func (s *Service) Require(id string) (model.Account, error) {
	a, ok := s.byID[id]
	if !ok {
		return model.Account{}, fmt.Errorf("%w: %q", ErrUnknownAccount, id)
	}
	return a, nil
}

// Add registers a new account.
func (s *Service) Add(acct model.Account) error {
	if !validID.MatchString(acct.ID) {
		return fmt.Errorf("invalid account id %q: use letters, digits, '.', '_' or '-'", acct.ID)
	}
	if s.Exists(acct.ID) {
		return fmt.Errorf("account %q already exists", acct.ID)
	}
	s.accounts = append(s.accounts, acct)
	s.byID[acct.ID] = acct
	return nil
}

// Save writes the registry to accounts/accounts.csv.
func (s *Service) Save(repoRoot string) error {
	p := path(repoRoot)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("creating accounts file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, s.accounts); err != nil {
		return fmt.Errorf("writing accounts: %w", err)
	}
	return nil
}

func path(repoRoot string) string {
	return filepath.Join(repoRoot, "accounts", "accounts.csv")
}
