package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cleared-dev/bankfeed/internal/model"
)

func TestSummarize(t *testing.T) {
	txns := []model.ImportedTransaction{
		{Amount: dec("3500.00"), Category: "Income"},
		{Amount: dec("-45.67"), Category: "Groceries"},
		{Amount: dec("-4.00"), Category: "Software & SaaS"},
		{Amount: dec("-6.50")},
		{Amount: dec("0")},
	}
	s := Summarize(txns)

	assert.Equal(t, "3500.00", s.TotalCredits.StringFixed(2))
	assert.Equal(t, "56.17", s.TotalDebits.StringFixed(2))
	assert.Equal(t, "3443.83", s.NetAmount.StringFixed(2))
	assert.True(t, s.NetAmount.Equal(s.TotalCredits.Sub(s.TotalDebits)))
	assert.Equal(t, 2, s.CategoryCounts[model.UncategorizedLabel])
	assert.Equal(t, 1, s.CategoryCounts["Groceries"])

	total := 0
	for _, n := range s.CategoryCounts {
		total += n
	}
	assert.Equal(t, len(txns), total)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.True(t, s.TotalCredits.IsZero())
	assert.True(t, s.TotalDebits.IsZero())
	assert.True(t, s.NetAmount.IsZero())
	assert.NotNil(t, s.CategoryCounts)
	assert.Empty(t, s.CategoryCounts)
}
