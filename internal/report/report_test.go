package report

import (
	"bytes"
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/go-json-experiment/json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/bankfeed/internal/importer"
	"github.com/cleared-dev/bankfeed/internal/model"
)

func txn(row int, date civil.Date, desc, amount, category string) model.ImportedTransaction {
	return model.ImportedTransaction{
		Date:           date,
		Description:    desc,
		Amount:         decimal.RequireFromString(amount),
		Category:       category,
		Fingerprint:    model.Fingerprint("fp" + desc),
		SourceRowIndex: row,
	}
}

func testBatch() *importer.Batch {
	cfg := importer.DefaultConfig("checking")
	cfg.Mapping = model.ColumnMapping{Date: "Date", Description: "Description", Amount: "Amount"}

	github := txn(0, civil.Date{Year: 2025, Month: 1, Day: 3}, "GITHUB", "-4.00", "Software & SaaS")
	github.Balance = decimal.NewNullDecimal(decimal.RequireFromString("1996"))

	return &importer.Batch{
		ID:     "batch-1",
		Config: cfg,
		Stage:  importer.StageCategorizing,
		Total:  4,
		Accepted: []model.ImportedTransaction{
			github,
			txn(1, civil.Date{Year: 2025, Month: 1, Day: 10}, "ACME", "3500", "Sales"),
		},
		Duplicates: []model.ImportedTransaction{
			txn(2, civil.Date{Year: 2025, Month: 1, Day: 10}, "ACME", "3500", ""),
		},
		Rejected: []model.RowError{
			{RowIndex: 3, RawCells: model.RawRow{"31/02/2025", "Bad", "1"}, Reason: model.ReasonInvalidDate, Detail: "day out of range"},
		},
	}
}

func TestNewDocument(t *testing.T) {
	doc := NewDocument("jan.csv", testBatch(), true)

	assert.Equal(t, "checking", doc.Account)
	assert.Equal(t, "categorizing", doc.Stage)
	assert.True(t, doc.DryRun)
	require.Len(t, doc.Transactions, 2)
	assert.Equal(t, 1, doc.Transactions[0].Row)
	assert.Equal(t, "2025-01-03", doc.Transactions[0].Date)
	assert.Equal(t, "-4.00", doc.Transactions[0].Amount)
	assert.Equal(t, "1996.00", doc.Transactions[0].Balance)
	assert.Empty(t, doc.Transactions[1].Balance)
	require.Len(t, doc.Duplicates, 1)
	assert.True(t, doc.Duplicates[0].Duplicate)
	require.Len(t, doc.Rejected, 1)
	assert.Equal(t, 4, doc.Rejected[0].Row)
	assert.Equal(t, "invalid date", doc.Rejected[0].Reason)

	assert.Equal(t, 2, doc.Result.Imported)
	assert.Equal(t, 1, doc.Result.Skipped)
	assert.Equal(t, 1, doc.Result.Errors)
}

func TestNewDocument_DuplicatesImported(t *testing.T) {
	b := testBatch()
	b.Config.SkipDuplicates = false
	b.Accepted = append(b.Accepted, b.Duplicates...)

	doc := NewDocument("", b, false)
	assert.Empty(t, doc.Duplicates)
	require.Len(t, doc.Transactions, 3)
	assert.True(t, doc.Transactions[2].Duplicate)
	assert.Equal(t, 0, doc.Result.Skipped)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, NewDocument("jan.csv", testBatch(), false)))

	out := buf.String()
	assert.True(t, strings.HasSuffix(out, "}\n"))
	assert.Greater(t, strings.Count(out, "\n"), 10, "indented")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "checking", decoded["account"])
	result := decoded["result"].(map[string]any)
	assert.Equal(t, float64(2), result["imported"])
	summary := result["summary"].(map[string]any)
	assert.Equal(t, "3496", summary["net_amount"])
}

func TestWritePreview(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePreview(&buf, testBatch()))

	out := buf.String()
	assert.Contains(t, out, "DESCRIPTION")
	assert.Contains(t, out, "GITHUB")
	assert.Contains(t, out, "Software & SaaS")
	assert.Contains(t, out, "Skipped 1 duplicate(s)")
	assert.Contains(t, out, "row 4: invalid date: day out of range")
}

func TestWriteSummary(t *testing.T) {
	b := testBatch()
	b.Accepted = append(b.Accepted, txn(5, civil.Date{Year: 2025, Month: 1, Day: 22}, "Coffee", "-6.50", ""))

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, b.Result()))

	out := buf.String()
	assert.Contains(t, out, "3500.00")
	assert.Contains(t, out, "10.50")
	assert.Contains(t, out, "3489.50")
	assert.Contains(t, out, "Uncategorized")
}

func TestSortedCategories(t *testing.T) {
	got := sortedCategories(map[string]int{"b": 1, "a": 1, "c": 3})
	assert.Equal(t, []string{"c", "a", "b"}, got)
}
