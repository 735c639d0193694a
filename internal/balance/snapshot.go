package balance

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// SnapshotHeader is the CSV header for balances.csv.
const SnapshotHeader = "account_id,net"

const snapshotFile = "accounts/balances.csv"

// Snapshot returns a copy of the materialized debit-minus-credit totals.
func (t *Tracker) Snapshot() map[int]decimal.Decimal {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[int]decimal.Decimal, len(t.net))
	for k, v := range t.net {
		out[k] = v
	}
	return out
}

// Restore replaces the materialized totals with net.
func (t *Tracker) Restore(net map[int]decimal.Decimal) {
	cp := make(map[int]decimal.Decimal, len(net))
	for k, v := range net {
		cp[k] = v
	}
	t.mu.Lock()
	t.net = cp
	t.mu.Unlock()
}

// WriteSnapshot writes net totals ordered by account ID.
func WriteSnapshot(w io.Writer, net map[int]decimal.Decimal) error {
	ids := make([]int, 0, len(net))
	for id := range net {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(SnapshotHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, id := range ids {
		if err := cw.Write([]string{strconv.Itoa(id), net[id].String()}); err != nil {
			return fmt.Errorf("writing account %d: %w", id, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadSnapshot reads totals written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (map[int]decimal.Decimal, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading balances CSV: %w", err)
	}
	net := make(map[int]decimal.Decimal)
	if len(records) <= 1 {
		return net, nil
	}
	for i, rec := range records[1:] {
		id, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing account_id %q: %w", i+2, rec[0], err)
		}
		v, err := decimal.NewFromString(rec[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing net %q: %w", i+2, rec[1], err)
		}
		net[id] = v
	}
	return net, nil
}

// LoadSnapshot reads <dataDir>/accounts/balances.csv. ok is false when no
// snapshot has been saved.
func LoadSnapshot(dataDir string) (net map[int]decimal.Decimal, ok bool, err error) {
	f, err := os.Open(filepath.Join(dataDir, snapshotFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("opening balances: %w", err)
	}
	defer f.Close()
	net, err = ReadSnapshot(f)
	if err != nil {
		return nil, false, err
	}
	return net, true, nil
}

// SaveSnapshot writes the tracker's totals to <dataDir>/accounts/balances.csv.
func SaveSnapshot(dataDir string, t *Tracker) error {
	path := filepath.Join(dataDir, snapshotFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating balances: %w", err)
	}
	if err := WriteSnapshot(f, t.Snapshot()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
