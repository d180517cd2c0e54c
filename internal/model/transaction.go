package model

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// RawRow is one data row of a bank CSV, aligned to the header row.
type RawRow []string

// Cell returns the cell at i, or "" when the row is too short.
func (r RawRow) Cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// Fingerprint is the duplicate-detection identity of a transaction.
type Fingerprint string

// ImportedTransaction is a validated bank transaction produced by an import batch.
type ImportedTransaction struct {
	Date           civil.Date
	Description    string
	Amount         decimal.Decimal     // negative = debit, positive = credit
	Balance        decimal.NullDecimal // running balance, when the bank supplies one
	Reference      string
	Category       string
	Merchant       string
	Fingerprint    Fingerprint
	SourceRowIndex int // zero-based index among data rows
	BatchID        string
}

// IsCredit reports whether money came into the account.
func (t ImportedTransaction) IsCredit() bool {
	return !t.Amount.IsNegative()
}
