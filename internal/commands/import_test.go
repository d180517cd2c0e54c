package commands_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/bankfeed/internal/importlog"
	"github.com/cleared-dev/bankfeed/internal/store/csvstore"
)

func TestImport_Fixture(t *testing.T) {
	dir := newProject(t)

	out, err := runBankfeed(t, "import", fixture(t, "bank_statement.csv"), "--account", "checking", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Imported bank_statement.csv -> checking")
	assert.Regexp(t, `Imported:\s+6`, out)
	assert.Regexp(t, `Net:\s+3313.33`, out)

	txns, err := csvstore.New(dir).Read("checking")
	require.NoError(t, err)
	require.Len(t, txns, 6)
	assert.Equal(t, "Software & SaaS", txns[0].Category)
	assert.Equal(t, "GitHub", txns[0].Merchant)
	assert.False(t, txns[5].Balance.Valid)

	entries, err := importlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 6, entries[0].Imported)
	assert.Equal(t, "bank_statement.csv", entries[0].Source)
}

func TestImport_ReimportSkipsEverything(t *testing.T) {
	dir := newProject(t)
	file := fixture(t, "bank_statement.csv")

	_, err := runBankfeed(t, "import", file, "--account", "checking", "--repo", dir)
	require.NoError(t, err)

	out, err := runBankfeed(t, "import", file, "--account", "checking", "--repo", dir)
	require.NoError(t, err, out)
	assert.Regexp(t, `Imported:\s+0`, out)
	assert.Regexp(t, `Skipped:\s+6`, out)

	txns, err := csvstore.New(dir).Read("checking")
	require.NoError(t, err)
	assert.Len(t, txns, 6)
}

func TestImport_AllowDuplicates(t *testing.T) {
	dir := newProject(t)
	file := fixture(t, "bank_statement.csv")

	_, err := runBankfeed(t, "import", file, "--account", "checking", "--repo", dir)
	require.NoError(t, err)
	_, err = runBankfeed(t, "import", file, "--account", "checking", "--allow-duplicates", "--repo", dir)
	require.NoError(t, err)

	txns, err := csvstore.New(dir).Read("checking")
	require.NoError(t, err)
	assert.Len(t, txns, 12)
}

func TestImport_DryRunWritesNothing(t *testing.T) {
	dir := newProject(t)

	out, err := runBankfeed(t, "import", fixture(t, "bank_statement.csv"), "--account", "checking", "--dry-run", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "dry run")
	assert.Contains(t, out, "WOOLWORTHS")

	_, err = os.Stat(filepath.Join(dir, "ledger", "checking", "transactions.csv"))
	assert.True(t, os.IsNotExist(err))
	entries, err := importlog.Read(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestImport_JSON(t *testing.T) {
	dir := newProject(t)

	out, err := runBankfeed(t, "import", fixture(t, "bank_statement.csv"), "--account", "checking", "--json", "--no-categorize", "--repo", dir)
	require.NoError(t, err, out)

	var doc struct {
		Account string `json:"account"`
		Stage   string `json:"stage"`
		Result  struct {
			Imported int `json:"imported"`
			Summary  struct {
				CategoryCounts map[string]int `json:"category_counts"`
			} `json:"summary"`
		} `json:"result"`
		Transactions []struct {
			Category string `json:"category"`
		} `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc), out)
	assert.Equal(t, "checking", doc.Account)
	assert.Equal(t, "completed", doc.Stage)
	assert.Equal(t, 6, doc.Result.Imported)
	assert.Equal(t, map[string]int{"Uncategorized": 6}, doc.Result.Summary.CategoryCounts)
	require.Len(t, doc.Transactions, 6)
	assert.Empty(t, doc.Transactions[0].Category)
}

func TestImport_UnknownAccount(t *testing.T) {
	dir := newProject(t)

	out, err := runBankfeed(t, "import", "does-not-exist.csv", "--account", "nope", "--repo", dir)
	require.Error(t, err)
	assert.Contains(t, out, "unknown account")
	assert.NotContains(t, out, "does-not-exist.csv")
}

func TestImport_NoAccount(t *testing.T) {
	dir := newProject(t)

	out, err := runBankfeed(t, "import", fixture(t, "bank_statement.csv"), "--repo", dir)
	require.Error(t, err)
	assert.Contains(t, out, "no target account")
}

func TestImport_ChaseProfile(t *testing.T) {
	dir := newProject(t)

	out, err := runBankfeed(t, "import", fixture(t, "chase_checking.csv"), "--account", "checking", "--profile", "chase", "--repo", dir)
	require.NoError(t, err, out)
	assert.Regexp(t, `Imported:\s+4`, out)

	txns, err := csvstore.New(dir).Read("checking")
	require.NoError(t, err)
	require.Len(t, txns, 4)
	assert.Equal(t, "GITHUB *PRO SUBSCRIPTION", txns[0].Description)
	assert.Equal(t, 3, txns[0].Date.Day)
	assert.Equal(t, "1001", txns[3].Reference)
	assert.Equal(t, "Shipping & Postage", txns[1].Category)
}

func TestImport_MapOverride(t *testing.T) {
	dir := newProject(t)

	out, err := runBankfeed(t, "import", fixture(t, "chase_checking.csv"),
		"--account", "checking",
		"--map", "description=Description",
		"--date-format", "MM/DD/YYYY",
		"--repo", dir)
	require.NoError(t, err, out)

	txns, err := csvstore.New(dir).Read("checking")
	require.NoError(t, err)
	require.Len(t, txns, 4)
	assert.Equal(t, "USPS PO 1234", txns[1].Description)
}

func TestImport_WrongDateFormatRejectsRows(t *testing.T) {
	dir := newProject(t)

	// DD/MM/YYYY against 01/15/2025 fails; the other rows parse as the wrong day.
	out, err := runBankfeed(t, "import", fixture(t, "chase_checking.csv"), "--account", "checking", "--profile", "chase", "--date-format", "DD/MM/YYYY", "--repo", dir)
	require.NoError(t, err, out)
	assert.Regexp(t, `Errors:\s+1`, out)
	assert.Contains(t, out, "row 4: invalid date")
}

func TestImport_IncompleteMapping(t *testing.T) {
	dir := newProject(t)
	file := filepath.Join(t.TempDir(), "odd.csv")
	require.NoError(t, os.WriteFile(file, []byte("When,What,HowMuch\n01/01/2025,x,1\n"), 0o644))

	out, err := runBankfeed(t, "import", file, "--account", "checking", "--repo", dir)
	require.Error(t, err)
	assert.Contains(t, out, "import mapping")
	assert.Contains(t, out, "incomplete")
}

func TestImport_All(t *testing.T) {
	dir := newProject(t)
	data, err := os.ReadFile(fixture(t, "bank_statement.csv"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "jan.csv"), data, 0o644))

	out, err := runBankfeed(t, "import", "--all", "--account", "checking", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Imported jan.csv")

	_, err = os.Stat(filepath.Join(dir, "import", "processed", "jan.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "import", "jan.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestImport_SQLiteFromEnvFile(t *testing.T) {
	dir := newProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BANKFEED_STORE_DRIVER=sqlite\n"), 0o644))
	file := fixture(t, "bank_statement.csv")

	out, err := runBankfeed(t, "import", file, "--account", "checking", "--repo", dir)
	require.NoError(t, err, out)
	assert.Regexp(t, `Imported:\s+6`, out)

	_, err = os.Stat(filepath.Join(dir, "data", "bankfeed.db"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "ledger", "checking", "transactions.csv"))
	assert.True(t, os.IsNotExist(err))

	out, err = runBankfeed(t, "import", file, "--account", "checking", "--repo", dir)
	require.NoError(t, err, out)
	assert.True(t, strings.Contains(out, "Skipped:") && strings.Contains(out, "6"))
	assert.Regexp(t, `Imported:\s+0`, out)
}

func TestImport_CommitsToGit(t *testing.T) {
	dir := t.TempDir()
	_, err := runBankfeed(t, "init", dir, "--name", "Test Biz", "--git")
	require.NoError(t, err)
	_, err = runBankfeed(t, "accounts", "add", "checking", "--name", "Business Checking", "--repo", dir)
	require.NoError(t, err)

	out, err := runBankfeed(t, "import", fixture(t, "bank_statement.csv"), "--account", "checking", "--repo", dir)
	require.NoError(t, err, out)

	log := gitLog(t, dir)
	assert.Contains(t, log, "import: bank_statement.csv -> checking (6 imported, 0 skipped)")
	assert.Contains(t, log, "init: Initialize Test Biz")
}
