package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"deeptracex/internal/models"
	"deeptracex/internal/storage/sqlite"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func setupTestStore(t *testing.T) *sqlite.Storage {
	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// seedAccount inserts a verified, device-bound account ready for lookups
func seedAccount(t *testing.T, store *sqlite.Storage, username string, credits int64) *models.Account {
	t.Helper()
	ctx := context.Background()

	now := time.Now()
	fp := Fingerprint("192.0.2.1", "agent-"+username)
	code := NewBindCode()
	acc := &models.Account{
		Username:         username,
		Token:            "token-" + username,
		Fingerprint:      &fp,
		Credits:          credits,
		CreatedAt:        now,
		LastLogin:        now,
		LastIP:           "192.0.2.1",
		LastCreditRefill: now,
		BindCode:         &code,
	}
	require.NoError(t, store.CreateAccount(ctx, acc))

	_, err := store.RedeemBindCode(ctx, code, int64(len(username))*1000)
	require.NoError(t, err)

	verified, err := store.GetAccount(ctx, username)
	require.NoError(t, err)
	return verified
}

// seedPendingAccount inserts an unverified account still holding its code
func seedPendingAccount(t *testing.T, store *sqlite.Storage, username, code string) *models.Account {
	t.Helper()

	now := time.Now()
	fp := Fingerprint("192.0.2.1", "agent-"+username)
	acc := &models.Account{
		Username:         username,
		Token:            "token-" + username,
		Fingerprint:      &fp,
		Credits:          10,
		CreatedAt:        now,
		LastLogin:        now,
		LastIP:           "192.0.2.1",
		LastCreditRefill: now,
		BindCode:         &code,
	}
	require.NoError(t, store.CreateAccount(context.Background(), acc))
	return acc
}
