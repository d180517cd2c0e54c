// Package importlog records committed import batches in logs/import-log.csv.
package importlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cleared-dev/bankfeed/internal/model"
)

// Entry is one committed batch.
type Entry struct {
	Timestamp time.Time
	BatchID   string
	AccountID string
	Source    string
	Total     int
	Imported  int
	Skipped   int
	Errors    int
	Net       string
}

// NewEntry builds a log entry from a batch result.
func NewEntry(ts time.Time, accountID, source string, res model.ImportResult) Entry {
	return Entry{
		Timestamp: ts,
		BatchID:   res.BatchID,
		AccountID: accountID,
		Source:    source,
		Total:     res.Total,
		Imported:  res.Imported,
		Skipped:   res.Skipped,
		Errors:    res.Errors,
		Net:       res.Summary.NetAmount.StringFixed(2),
	}
}

// Header is the CSV header for import-log.csv.
const Header = "timestamp,batch_id,account_id,source,total,imported,skipped,errors,net_amount"

const (
	numFields   = 9
	logDir      = "logs"
	logFile     = "logs/import-log.csv"
	colTime     = 0
	colBatch    = 1
	colAccount  = 2
	colSource   = 3
	colTotal    = 4
	colImported = 5
	colSkipped  = 6
	colErrors   = 7
	colNet      = 8
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTime] = e.Timestamp.Format(time.RFC3339)
	row[colBatch] = e.BatchID
	row[colAccount] = e.AccountID
	row[colSource] = e.Source
	row[colTotal] = strconv.Itoa(e.Total)
	row[colImported] = strconv.Itoa(e.Imported)
	row[colSkipped] = strconv.Itoa(e.Skipped)
	row[colErrors] = strconv.Itoa(e.Errors)
	row[colNet] = e.Net
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTime])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTime], err)
	}

	counts := make([]int, 4)
	for i, col := range []int{colTotal, colImported, colSkipped, colErrors} {
		n, err := strconv.Atoi(record[col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[col], err)
		}
		counts[i] = n
	}

	return Entry{
		Timestamp: ts,
		BatchID:   record[colBatch],
		AccountID: record[colAccount],
		Source:    record[colSource],
		Total:     counts[0],
		Imported:  counts[1],
		Skipped:   counts[2],
		Errors:    counts[3],
		Net:       record[colNet],
	}, nil
}

// Append writes entries to <repoRoot>/logs/import-log.csv, creating the file and header if needed.
func Append(repoRoot string, entries []Entry) error {
	dir := filepath.Join(repoRoot, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(repoRoot, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <repoRoot>/logs/import-log.csv.
// Returns nil if the file does not exist.
func Read(repoRoot string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(repoRoot, logFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading import log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
