package accounts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cleared-dev/ledgercore/internal/model"
)

// ErrDuplicateNumber is returned when two accounts share a number.
var ErrDuplicateNumber = errors.New("duplicate account number")

// Service provides in-memory lookup over the chart of accounts.
type Service struct {
	accounts []model.Account
	byID     map[int]model.Account
	byNumber map[string]model.Account
}

// NewService creates a Service from a slice of accounts. Account numbers and
// IDs must be unique.
func NewService(accounts []model.Account) (*Service, error) {
	byID := make(map[int]model.Account, len(accounts))
	byNumber := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		if prev, ok := byNumber[a.Number]; ok {
			return nil, fmt.Errorf("%w: %q used by accounts %d and %d", ErrDuplicateNumber, a.Number, prev.ID, a.ID)
		}
		if _, ok := byID[a.ID]; ok {
			return nil, fmt.Errorf("duplicate account id %d", a.ID)
		}
		byID[a.ID] = a
		byNumber[a.Number] = a
	}
	return &Service{accounts: accounts, byID: byID, byNumber: byNumber}, nil
}

// Load reads chart-of-accounts.csv from a data directory and returns a Service.
func Load(dataDir string) (*Service, error) {
	path := filepath.Join(dataDir, "accounts", "chart-of-accounts.csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chart of accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading chart of accounts: %w", err)
	}
	return NewService(accts)
}

// All returns all accounts.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Get returns an account by ID.
func (s *Service) Get(id int) (model.Account, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// ByNumber returns an account by its number.
func (s *Service) ByNumber(number string) (model.Account, bool) {
	a, ok := s.byNumber[number]
	return a, ok
}

// Exists reports whether an account ID exists.
func (s *Service) Exists(id int) bool {
	_, ok := s.byID[id]
	return ok
}

// ByType returns all accounts of the given type.
func (s *Service) ByType(accountType model.AccountType) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.Type == accountType {
			result = append(result, a)
		}
	}
	return result
}

// Hierarchy builds the chart-of-accounts forest.
func (s *Service) Hierarchy() []*Node {
	return BuildHierarchy(s.accounts)
}

// Save writes the chart of accounts to accounts/chart-of-accounts.csv.
func (s *Service) Save(dataDir string) error {
	dir := filepath.Join(dataDir, "accounts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	path := filepath.Join(dir, "chart-of-accounts.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart of accounts file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, s.accounts); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}
	return nil
}
