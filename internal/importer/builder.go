package importer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankfeed/internal/model"
)

// RowResult is the outcome of building one row: exactly one of Txn or Err
// is meaningful.
type RowResult struct {
	Txn model.ImportedTransaction
	Err *model.RowError
}

// Accepted reports whether the row produced a transaction.
func (r RowResult) Accepted() bool { return r.Err == nil }

// BuildRow converts a raw row into a transaction. Failures of required
// fields reject the row; optional fields that fail to parse are dropped.
func BuildRow(index int, row model.RawRow, cols ColumnIndex, format DateFormat) RowResult {
	reject := func(reason model.RowErrorReason, detail string) RowResult {
		return RowResult{Err: &model.RowError{
			RowIndex: index,
			RawCells: row,
			Reason:   reason,
			Detail:   detail,
		}}
	}

	date, err := ParseDate(row.Cell(cols[model.FieldDate]), format)
	if err != nil {
		return reject(model.ReasonInvalidDate, err.Error())
	}

	amountCell := row.Cell(cols[model.FieldAmount])
	amount, err := ParseAmount(amountCell)
	if err != nil {
		return reject(model.ReasonInvalidAmount, err.Error())
	}

	desc := strings.TrimSpace(row.Cell(cols[model.FieldDescription]))
	if desc == "" {
		return reject(model.ReasonMissingDescription, "")
	}

	var balance decimal.NullDecimal
	if pos := cols[model.FieldBalance]; pos >= 0 {
		if b, err := ParseAmount(row.Cell(pos)); err == nil {
			balance = decimal.NewNullDecimal(b)
		}
	}

	var ref string
	if pos := cols[model.FieldReference]; pos >= 0 {
		ref = strings.TrimSpace(row.Cell(pos))
	}

	return RowResult{Txn: model.ImportedTransaction{
		Date:           date,
		Description:    desc,
		Amount:         amount,
		Balance:        balance,
		Reference:      ref,
		Fingerprint:    Fingerprint(date, amount, desc, ref),
		SourceRowIndex: index,
	}}
}

// ParseAmount parses a locale-invariant decimal: an optional leading minus,
// digits, and at most one decimal point.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	digits, dots := 0, 0
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		case r == '-' && i == 0:
		default:
			return decimal.Zero, fmt.Errorf("amount %q: unexpected %q", s, r)
		}
	}
	if digits == 0 || dots > 1 {
		return decimal.Zero, fmt.Errorf("amount %q is not a number", s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d, nil
}
