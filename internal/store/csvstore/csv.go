package csvstore

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankfeed/internal/model"
)

// Header is the CSV header for transactions.csv.
const Header = "fingerprint,date,description,amount,balance,reference,category,merchant,batch_id,source_row"

const (
	numFields = 10
	colFP     = 0
	colDate   = 1
	colDesc   = 2
	colAmount = 3
	colBal    = 4
	colRef    = 5
	colCat    = 6
	colMerch  = 7
	colBatch  = 8
	colRow    = 9
)

// ReadTransactions reads all rows from a transactions.csv reader.
func ReadTransactions(r io.Reader) ([]model.ImportedTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var txns []model.ImportedTransaction
	for i, rec := range records[1:] {
		txn, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// WriteTransactions writes txns to w, including the header.
func WriteTransactions(w io.Writer, txns []model.ImportedTransaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, txn := range txns {
		if err := cw.Write(MarshalTransaction(txn)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a transaction to a CSV row.
func MarshalTransaction(txn model.ImportedTransaction) []string {
	row := make([]string, numFields)
	row[colFP] = string(txn.Fingerprint)
	row[colDate] = txn.Date.String()
	row[colDesc] = txn.Description
	row[colAmount] = txn.Amount.String()
	if txn.Balance.Valid {
		row[colBal] = txn.Balance.Decimal.String()
	}
	row[colRef] = txn.Reference
	row[colCat] = txn.Category
	row[colMerch] = txn.Merchant
	row[colBatch] = txn.BatchID
	row[colRow] = strconv.Itoa(txn.SourceRowIndex)
	return row
}

// UnmarshalTransaction converts a CSV row to a transaction.
func UnmarshalTransaction(record []string) (model.ImportedTransaction, error) {
	if len(record) != numFields {
		return model.ImportedTransaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := civil.ParseDate(record[colDate])
	if err != nil {
		return model.ImportedTransaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.ImportedTransaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	var balance decimal.NullDecimal
	if record[colBal] != "" {
		b, err := decimal.NewFromString(record[colBal])
		if err != nil {
			return model.ImportedTransaction{}, fmt.Errorf("parsing balance %q: %w", record[colBal], err)
		}
		balance = decimal.NewNullDecimal(b)
	}

	srcRow, err := strconv.Atoi(record[colRow])
	if err != nil {
		return model.ImportedTransaction{}, fmt.Errorf("parsing source_row %q: %w", record[colRow], err)
	}

	return model.ImportedTransaction{
		Fingerprint:    model.Fingerprint(record[colFP]),
		Date:           date,
		Description:    record[colDesc],
		Amount:         amount,
		Balance:        balance,
		Reference:      record[colRef],
		Category:       record[colCat],
		Merchant:       record[colMerch],
		BatchID:        record[colBatch],
		SourceRowIndex: srcRow,
	}, nil
}
