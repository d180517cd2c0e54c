package accounts

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/cleared-dev/bankfeed/internal/model"
)

const (
	numFields      = 5
	colID          = 0
	colName        = 1
	colInstitution = 2
	colCurrency    = 3
	colLastFour    = 4
)

// ReadAccounts reads accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"account_id", "name", "institution", "currency", "last_four"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colID] = acct.ID
	row[colName] = acct.Name
	row[colInstitution] = acct.Institution
	row[colCurrency] = acct.Currency
	row[colLastFour] = acct.LastFour
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	if record[colID] == "" {
		return model.Account{}, fmt.Errorf("account_id is empty")
	}
	return model.Account{
		ID:          record[colID],
		Name:        record[colName],
		Institution: record[colInstitution],
		Currency:    record[colCurrency],
		LastFour:    record[colLastFour],
	}, nil
}
