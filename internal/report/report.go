// Package report renders import previews and results for the terminal and as JSON.
package report

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/cleared-dev/bankfeed/internal/importer"
	"github.com/cleared-dev/bankfeed/internal/model"
)

// Transaction is the JSON view of an accepted transaction.
type Transaction struct {
	Row         int    `json:"row"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Balance     string `json:"balance,omitempty"`
	Reference   string `json:"reference,omitempty"`
	Category    string `json:"category,omitempty"`
	Merchant    string `json:"merchant,omitempty"`
	Fingerprint string `json:"fingerprint"`
	Duplicate   bool   `json:"duplicate,omitempty"`
}

// Rejection is the JSON view of a rejected row.
type Rejection struct {
	Row    int      `json:"row"`
	Reason string   `json:"reason"`
	Detail string   `json:"detail,omitempty"`
	Cells  []string `json:"cells"`
}

// Document is the machine-readable report of one batch.
type Document struct {
	Account      string              `json:"account"`
	Source       string              `json:"source,omitempty"`
	Stage        string              `json:"stage"`
	DryRun       bool                `json:"dry_run"`
	Mapping      model.ColumnMapping `json:"mapping"`
	Result       model.ImportResult  `json:"result"`
	Transactions []Transaction       `json:"transactions"`
	Duplicates   []Transaction       `json:"duplicates,omitempty"`
	Rejected     []Rejection         `json:"rejected,omitempty"`
}

// NewDocument builds the report of b. Row numbers are 1-based data rows.
func NewDocument(source string, b *importer.Batch, dryRun bool) Document {
	doc := Document{
		Account:      b.Config.TargetAccountID,
		Source:       source,
		Stage:        b.Stage.String(),
		DryRun:       dryRun,
		Mapping:      b.Config.Mapping,
		Result:       b.Result(),
		Transactions: []Transaction{},
	}
	dups := make(map[int]bool, len(b.Duplicates))
	for _, t := range b.Duplicates {
		dups[t.SourceRowIndex] = true
		if b.Config.SkipDuplicates {
			doc.Duplicates = append(doc.Duplicates, newTransaction(t, true))
		}
	}
	for _, t := range b.Accepted {
		doc.Transactions = append(doc.Transactions, newTransaction(t, dups[t.SourceRowIndex]))
	}
	for _, e := range b.Rejected {
		doc.Rejected = append(doc.Rejected, Rejection{
			Row:    e.RowIndex + 1,
			Reason: string(e.Reason),
			Detail: e.Detail,
			Cells:  []string(e.RawCells),
		})
	}
	return doc
}

func newTransaction(t model.ImportedTransaction, dup bool) Transaction {
	out := Transaction{
		Row:         t.SourceRowIndex + 1,
		Date:        t.Date.String(),
		Description: t.Description,
		Amount:      t.Amount.StringFixed(2),
		Reference:   t.Reference,
		Category:    t.Category,
		Merchant:    t.Merchant,
		Fingerprint: string(t.Fingerprint),
		Duplicate:   dup,
	}
	if t.Balance.Valid {
		out.Balance = t.Balance.Decimal.StringFixed(2)
	}
	return out
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	out, err := json.Marshal(v, json.Deterministic(true))
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := (*jsontext.Value)(&out).Indent(); err != nil {
		return fmt.Errorf("indenting report: %w", err)
	}
	out = append(out, '\n')
	_, err = w.Write(out)
	return err
}

// WritePreview prints the accepted, duplicate and rejected rows of b as tables.
func WritePreview(w io.Writer, b *importer.Batch) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "ROW\tDATE\tDESCRIPTION\tAMOUNT\tCATEGORY\n")
	for _, t := range b.Accepted {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			t.SourceRowIndex+1, t.Date, t.Description, t.Amount.StringFixed(2), orDash(t.Category))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if b.Config.SkipDuplicates && len(b.Duplicates) > 0 {
		fmt.Fprintf(w, "\nSkipped %d duplicate(s):\n", len(b.Duplicates))
		for _, t := range b.Duplicates {
			fmt.Fprintf(w, "  row %d: %s %s %s\n",
				t.SourceRowIndex+1, t.Date, t.Description, t.Amount.StringFixed(2))
		}
	}
	if len(b.Rejected) > 0 {
		fmt.Fprintf(w, "\nRejected %d row(s):\n", len(b.Rejected))
		for _, e := range b.Rejected {
			fmt.Fprintf(w, "  %s\n", e.Error())
		}
	}
	return nil
}

// WriteSummary prints the counters and totals of res.
func WriteSummary(w io.Writer, res model.ImportResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Rows:\t%d\n", res.Total)
	fmt.Fprintf(tw, "Imported:\t%d\n", res.Imported)
	fmt.Fprintf(tw, "Skipped:\t%d\n", res.Skipped)
	fmt.Fprintf(tw, "Errors:\t%d\n", res.Errors)
	fmt.Fprintf(tw, "Credits:\t%s\n", res.Summary.TotalCredits.StringFixed(2))
	fmt.Fprintf(tw, "Debits:\t%s\n", res.Summary.TotalDebits.StringFixed(2))
	fmt.Fprintf(tw, "Net:\t%s\n", res.Summary.NetAmount.StringFixed(2))
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(res.Summary.CategoryCounts) == 0 {
		return nil
	}
	fmt.Fprintln(w, "\nBy category:")
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, cat := range sortedCategories(res.Summary.CategoryCounts) {
		fmt.Fprintf(tw, "  %s\t%d\n", cat, res.Summary.CategoryCounts[cat])
	}
	return tw.Flush()
}

// sortedCategories orders by count descending, then name.
func sortedCategories(counts map[string]int) []string {
	cats := make([]string, 0, len(counts))
	for c := range counts {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		if counts[cats[i]] != counts[cats[j]] {
			return counts[cats[i]] > counts[cats[j]]
		}
		return cats[i] < cats[j]
	})
	return cats
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
