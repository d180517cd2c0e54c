// Package sqlstore keeps imported transactions in a SQL database. SQLite
// (modernc.org/sqlite) and PostgreSQL (lib/pq) are supported.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/cleared-dev/bankfeed/internal/importer"
	"github.com/cleared-dev/bankfeed/internal/model"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS bank_transactions (
	id          %s,
	account_id  TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	txn_date    TEXT NOT NULL,
	description TEXT NOT NULL,
	amount      TEXT NOT NULL,
	balance     TEXT,
	reference   TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT '',
	merchant    TEXT NOT NULL DEFAULT '',
	batch_id    TEXT NOT NULL,
	source_row  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS bank_transactions_fp ON bank_transactions (account_id, fingerprint);
`

// Store is a database-backed transaction store.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to dsn with driver and applies the schema.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if driver == DriverSQLite {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	s := &Store{db: db, driver: driver}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	idCol := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == DriverPostgres {
		idCol = "BIGSERIAL PRIMARY KEY"
	}
	for _, stmt := range strings.Split(fmt.Sprintf(schema, idCol), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ListFingerprints returns the fingerprints already stored for accountID.
func (s *Store) ListFingerprints(ctx context.Context, accountID string) (importer.FingerprintSet, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT fingerprint FROM bank_transactions WHERE account_id = ?
	`), accountID)
	if err != nil {
		return nil, fmt.Errorf("query fingerprints: %w", err)
	}
	defer rows.Close()

	set := importer.NewFingerprintSet()
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, fmt.Errorf("scan fingerprint: %w", err)
		}
		set.Add(model.Fingerprint(fp))
	}
	return set, rows.Err()
}

// AppendTransactions inserts txns in one database transaction.
func (s *Store) AppendTransactions(ctx context.Context, accountID string, txns []model.ImportedTransaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, s.rebind(`
		INSERT INTO bank_transactions
			(account_id, fingerprint, txn_date, description, amount, balance, reference, category, merchant, batch_id, source_row)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range txns {
		var balance sql.NullString
		if t.Balance.Valid {
			balance = sql.NullString{String: t.Balance.Decimal.String(), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			accountID,
			string(t.Fingerprint),
			t.Date.String(),
			t.Description,
			t.Amount.String(),
			balance,
			t.Reference,
			t.Category,
			t.Merchant,
			t.BatchID,
			t.SourceRowIndex,
		); err != nil {
			return fmt.Errorf("insert row %d: %w", t.SourceRowIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Transactions returns the stored transactions of accountID in insertion order.
func (s *Store) Transactions(ctx context.Context, accountID string) ([]model.ImportedTransaction, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT fingerprint, txn_date, description, amount, balance, reference, category, merchant, batch_id, source_row
		FROM bank_transactions
		WHERE account_id = ?
		ORDER BY id
	`), accountID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []model.ImportedTransaction
	for rows.Next() {
		var (
			t             model.ImportedTransaction
			fp, date, amt string
			balance       sql.NullString
		)
		if err := rows.Scan(&fp, &date, &t.Description, &amt, &balance, &t.Reference, &t.Category, &t.Merchant, &t.BatchID, &t.SourceRowIndex); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Fingerprint = model.Fingerprint(fp)
		if t.Date, err = civil.ParseDate(date); err != nil {
			return nil, fmt.Errorf("parsing date %q: %w", date, err)
		}
		if t.Amount, err = decimal.NewFromString(amt); err != nil {
			return nil, fmt.Errorf("parsing amount %q: %w", amt, err)
		}
		if balance.Valid {
			b, err := decimal.NewFromString(balance.String)
			if err != nil {
				return nil, fmt.Errorf("parsing balance %q: %w", balance.String, err)
			}
			t.Balance = decimal.NewNullDecimal(b)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
