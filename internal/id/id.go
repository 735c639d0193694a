package id

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatJournalID returns a journal ID like "2025-01-001".
func FormatJournalID(year, month, seq int) string {
	return fmt.Sprintf("%04d-%02d-%03d", year, month, seq)
}

// FormatEntryID returns an entry ID like "2025-01-001a" (leg 0='a', 25='z', 26='aa').
func FormatEntryID(journalID string, leg int) string {
	return journalID + legSuffix(leg)
}

func legSuffix(leg int) string {
	var b []byte
	for n := leg + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('a' + (n-1)%26)}, b...)
	}
	return string(b)
}

func legIndex(suffix string) int {
	n := 0
	for i := 0; i < len(suffix); i++ {
		n = n*26 + int(suffix[i]-'a') + 1
	}
	return n - 1
}

// ParseJournalID parses "2025-01-001" into year, month, seq. A leg suffix is ignored.
func ParseJournalID(id string) (year, month, seq int, err error) {
	base := JournalOf(id)

	parts := strings.SplitN(base, "-", 3)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid journal ID format: %q", id)
	}

	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid year in journal ID %q: %w", id, err)
	}

	month, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid month in journal ID %q: %w", id, err)
	}

	seq, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid sequence in journal ID %q: %w", id, err)
	}

	return year, month, seq, nil
}

// ParseEntryID parses "2025-01-001b" into its journal parts and leg index.
func ParseEntryID(id string) (year, month, seq, leg int, err error) {
	year, month, seq, err = ParseJournalID(id)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	suffix := id[len(JournalOf(id)):]
	if suffix == "" {
		return 0, 0, 0, 0, fmt.Errorf("missing leg suffix in entry ID %q", id)
	}
	return year, month, seq, legIndex(suffix), nil
}

// JournalOf strips the leg suffix from an entry ID.
// "2025-01-001a" -> "2025-01-001"
func JournalOf(entryID string) string {
	i := len(entryID)
	for i > 0 && entryID[i-1] >= 'a' && entryID[i-1] <= 'z' {
		i--
	}
	return entryID[:i]
}

// Compare orders entry IDs by creation sequence: year, month, journal
// sequence, then leg. IDs that do not parse sort after those that do and
// compare as strings among themselves.
func Compare(a, b string) int {
	ay, am, as, al, aerr := ParseEntryID(a)
	by, bm, bs, bl, berr := ParseEntryID(b)
	switch {
	case aerr != nil && berr != nil:
		return strings.Compare(a, b)
	case aerr != nil:
		return 1
	case berr != nil:
		return -1
	}
	for _, d := range [][2]int{{ay, by}, {am, bm}, {as, bs}, {al, bl}} {
		if d[0] != d[1] {
			if d[0] < d[1] {
				return -1
			}
			return 1
		}
	}
	return 0
}
