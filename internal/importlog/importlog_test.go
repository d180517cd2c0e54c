package importlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/bankfeed/internal/model"
)

var testTime = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return NewEntry(testTime, "checking", "anz_jan.csv", model.ImportResult{
		BatchID:  "6f1c2b0e-batch",
		Total:    6,
		Imported: 5,
		Skipped:  1,
		Summary:  model.Summary{NetAmount: decimal.RequireFromString("3313.33")},
	})
}

func TestNewEntry(t *testing.T) {
	e := testEntry()
	assert.Equal(t, "6f1c2b0e-batch", e.BatchID)
	assert.Equal(t, 5, e.Imported)
	assert.Equal(t, "3313.33", e.Net)
}

func TestAppend_NewFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, testEntry(), entries[0])
}

func TestAppend_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	e2 := testEntry()
	e2.AccountID = "savings"
	require.NoError(t, Append(dir, []Entry{e2}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "checking", entries[0].AccountID)
	assert.Equal(t, "savings", entries[1].AccountID)

	data, err := os.ReadFile(filepath.Join(dir, "logs", "import-log.csv"))
	require.NoError(t, err)
	assert.Equal(t, 1, countOccurrences(string(data), "timestamp,batch_id"), "header written once")
}

func TestRead_NoFile(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestUnmarshalEntry_Errors(t *testing.T) {
	good := MarshalEntry(testEntry())

	_, err := UnmarshalEntry(good[:2])
	assert.Error(t, err)

	bad := append([]string(nil), good...)
	bad[colTime] = "yesterday"
	_, err = UnmarshalEntry(bad)
	assert.Error(t, err)

	bad = append([]string(nil), good...)
	bad[colSkipped] = "many"
	_, err = UnmarshalEntry(bad)
	assert.Error(t, err)
}

func countOccurrences(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}
