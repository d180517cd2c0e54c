package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RowErrorReason classifies why a row was rejected.
type RowErrorReason string

const (
	ReasonInvalidDate        RowErrorReason = "invalid date"
	ReasonInvalidAmount      RowErrorReason = "invalid amount"
	ReasonMissingDescription RowErrorReason = "missing description"
)

// RowError records a rejected row. It never aborts a batch.
type RowError struct {
	RowIndex int
	RawCells RawRow
	Reason   RowErrorReason
	Detail   string
}

func (e RowError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("row %d: %s", e.RowIndex+1, e.Reason)
	}
	return fmt.Sprintf("row %d: %s: %s", e.RowIndex+1, e.Reason, e.Detail)
}

// UncategorizedLabel is the summary bucket for transactions without a category.
const UncategorizedLabel = "Uncategorized"

// Summary aggregates the accepted transactions of a batch.
type Summary struct {
	TotalCredits   decimal.Decimal `json:"total_credits"`
	TotalDebits    decimal.Decimal `json:"total_debits"`
	NetAmount      decimal.Decimal `json:"net_amount"`
	CategoryCounts map[string]int  `json:"category_counts"`
}

// ImportResult is the outcome of one batch.
type ImportResult struct {
	BatchID  string  `json:"batch_id"`
	Total    int     `json:"total"`
	Imported int     `json:"imported"`
	Skipped  int     `json:"skipped"`
	Errors   int     `json:"errors"`
	Summary  Summary `json:"summary"`
}
