package journal

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/cleared-dev/ledgercore/internal/balance"
	"github.com/cleared-dev/ledgercore/internal/id"
	"github.com/cleared-dev/ledgercore/internal/model"
)

// ErrDuplicateJournal is returned when a journal ID is already posted.
var ErrDuplicateJournal = errors.New("journal already posted")

// Service validates and appends journals to the month files under a data
// directory. Posts through one Service are serialized.
type Service struct {
	dataDir  string
	accounts AccountChecker

	mu      sync.Mutex
	tracker *balance.Tracker
}

// NewService creates a journal Service.
func NewService(dataDir string, accounts AccountChecker) *Service {
	return &Service{dataDir: dataDir, accounts: accounts}
}

// Track loads every posted journal into tr and keeps it updated on each
// accepted post.
func (s *Service) Track(tr *balance.Tracker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	journals, err := s.readAll()
	if err != nil {
		return err
	}
	tr.Reset(model.FlattenJournals(journals))
	s.tracker = tr
	return nil
}

// Use keeps tr updated on each accepted post without reloading it.
func (s *Service) Use(tr *balance.Tracker) {
	s.mu.Lock()
	s.tracker = tr
	s.mu.Unlock()
}

// Post validates a candidate journal, assigns its journal and entry IDs when
// unset, and appends it to the month's journal.csv as one write. A rejected
// journal leaves the store untouched.
func (s *Service) Post(j model.Journal) (model.Journal, error) {
	if err := ValidateJournal(j, s.accounts); err != nil {
		return model.Journal{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	year, month := j.TransactionDate.Year(), int(j.TransactionDate.Month())
	existing, err := s.ReadMonth(year, month)
	if err != nil {
		return model.Journal{}, err
	}

	if j.ID == "" {
		j.ID = id.FormatJournalID(year, month, nextSeq(existing))
	} else if err := checkSuppliedID(j, existing); err != nil {
		return model.Journal{}, err
	}

	entries := make([]model.JournalEntry, len(j.Entries))
	for i, e := range j.Entries {
		e.ID = id.FormatEntryID(j.ID, i)
		e.JournalID = j.ID
		entries[i] = e
	}
	j.Entries = entries

	if err := s.appendJournal(year, month, j); err != nil {
		return model.Journal{}, err
	}
	if s.tracker != nil {
		s.tracker.Apply(j)
	}
	return j, nil
}

func checkSuppliedID(j model.Journal, existing []model.Journal) error {
	y, m, _, err := id.ParseJournalID(j.ID)
	if err != nil {
		return err
	}
	if y != j.TransactionDate.Year() || m != int(j.TransactionDate.Month()) {
		return fmt.Errorf("journal ID %s does not match date %s", j.ID, j.TransactionDate.Format(dateFormat))
	}
	for _, e := range existing {
		if e.ID == j.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateJournal, j.ID)
		}
	}
	return nil
}

// appendJournal writes all rows in one call and truncates back to the prior
// size if the write fails.
func (s *Service) appendJournal(year, month int, j model.Journal) error {
	journalPath := s.monthPath(year, month)
	if err := os.MkdirAll(filepath.Dir(journalPath), 0o755); err != nil {
		return fmt.Errorf("creating journal dir: %w", err)
	}

	var buf bytes.Buffer
	if _, err := os.Stat(journalPath); errors.Is(err, fs.ErrNotExist) {
		buf.WriteString(Header + "\n")
	}
	if err := AppendJournal(&buf, j); err != nil {
		return err
	}

	f, err := os.OpenFile(journalPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat journal: %w", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Truncate(info.Size())
		return fmt.Errorf("appending journal %s: %w", j.ID, err)
	}
	return nil
}

// ReadMonth reads all journals for a given year/month.
func (s *Service) ReadMonth(year, month int) ([]model.Journal, error) {
	path := s.monthPath(year, month)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	defer f.Close()

	journals, err := ReadJournals(f)
	if err != nil {
		return nil, fmt.Errorf("reading journal %s: %w", path, err)
	}
	return journals, nil
}

// All reads every posted journal in month order.
func (s *Service) All() ([]model.Journal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

// Postings returns the postings dated within rng. A zero accountID selects
// every account.
func (s *Service) Postings(accountID int, rng model.DateRange) ([]model.Posting, error) {
	journals, err := s.All()
	if err != nil {
		return nil, err
	}
	var out []model.Posting
	for _, ps := range model.FlattenJournals(journals) {
		if accountID != 0 && ps.AccountID != accountID {
			continue
		}
		if rng.Contains(ps.Date) {
			out = append(out, ps)
		}
	}
	return out, nil
}

// Get returns the journal with the given ID.
func (s *Service) Get(journalID string) (model.Journal, bool, error) {
	year, month, _, err := id.ParseJournalID(journalID)
	if err != nil {
		return model.Journal{}, false, err
	}
	journals, err := s.ReadMonth(year, month)
	if err != nil {
		return model.Journal{}, false, err
	}
	for _, j := range journals {
		if j.ID == journalID {
			return j, true, nil
		}
	}
	return model.Journal{}, false, nil
}

func (s *Service) readAll() ([]model.Journal, error) {
	months, err := s.months()
	if err != nil {
		return nil, err
	}
	var all []model.Journal
	for _, ym := range months {
		js, err := s.ReadMonth(ym[0], ym[1])
		if err != nil {
			return nil, err
		}
		all = append(all, js...)
	}
	return all, nil
}

// months lists the YYYY/MM directories holding a journal.csv, oldest first.
func (s *Service) months() ([][2]int, error) {
	matches, err := filepath.Glob(filepath.Join(s.dataDir, "[0-9][0-9][0-9][0-9]", "[0-9][0-9]", "journal.csv"))
	if err != nil {
		return nil, fmt.Errorf("listing journals: %w", err)
	}
	out := make([][2]int, 0, len(matches))
	for _, m := range matches {
		monthDir := filepath.Dir(m)
		year, yerr := strconv.Atoi(filepath.Base(filepath.Dir(monthDir)))
		month, merr := strconv.Atoi(filepath.Base(monthDir))
		if yerr != nil || merr != nil {
			continue
		}
		out = append(out, [2]int{year, month})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out, nil
}

// nextSeq returns the next available sequence number for a month.
func nextSeq(existing []model.Journal) int {
	maxSeq := 0
	for _, j := range existing {
		_, _, seq, err := id.ParseJournalID(j.ID)
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq + 1
}

func (s *Service) monthPath(year, month int) string {
	return filepath.Join(s.dataDir, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month), "journal.csv")
}
