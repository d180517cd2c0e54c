package accounts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/bankfeed/internal/model"
)

func TestService_Lookup(t *testing.T) {
	svc := NewService([]model.Account{{ID: "checking", Name: "Business Checking"}})

	acct, ok := svc.Get("checking")
	assert.True(t, ok)
	assert.Equal(t, "Business Checking", acct.Name)

	_, ok = svc.Get("nope")
	assert.False(t, ok)
	assert.True(t, svc.Exists("checking"))

	_, err := svc.Require("nope")
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

func TestService_Add(t *testing.T) {
	svc := NewService(nil)
	require.NoError(t, svc.Add(model.Account{ID: "checking"}))
	assert.Error(t, svc.Add(model.Account{ID: "checking"}), "duplicate")
	assert.Error(t, svc.Add(model.Account{ID: "../etc"}), "invalid id")
	assert.Error(t, svc.Add(model.Account{ID: ""}), "empty id")
	assert.Len(t, svc.All(), 1)
}

func TestLoad_Missing(t *testing.T) {
	svc, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, svc.All())
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(nil)
	require.NoError(t, svc.Add(model.Account{ID: "checking", Name: "Checking", Currency: "NZD"}))
	require.NoError(t, svc.Add(model.Account{ID: "card", Name: "Credit Card", LastFour: "9876"}))
	require.NoError(t, svc.Save(dir))

	_, err := os.Stat(filepath.Join(dir, "accounts", "accounts.csv"))
	require.NoError(t, err)

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, got.All(), 2)
	card, ok := got.Get("card")
	require.True(t, ok)
	assert.Equal(t, "9876", card.LastFour)
}

func TestLoad_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "accounts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "accounts", "accounts.csv"), []byte("a,b\n"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}
