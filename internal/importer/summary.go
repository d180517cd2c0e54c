package importer

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankfeed/internal/model"
)

// Summarize totals credits, debits and categories of accepted transactions.
func Summarize(txns []model.ImportedTransaction) model.Summary {
	s := model.Summary{
		TotalCredits:   decimal.Zero,
		TotalDebits:    decimal.Zero,
		CategoryCounts: make(map[string]int),
	}
	for _, t := range txns {
		if t.Amount.IsNegative() {
			s.TotalDebits = s.TotalDebits.Add(t.Amount.Abs())
		} else {
			s.TotalCredits = s.TotalCredits.Add(t.Amount)
		}
		cat := t.Category
		if cat == "" {
			cat = model.UncategorizedLabel
		}
		s.CategoryCounts[cat]++
	}
	s.NetAmount = s.TotalCredits.Sub(s.TotalDebits)
	return s
}
