package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deeptracex/internal/constants"
	apperrors "deeptracex/internal/errors"
	"deeptracex/internal/models"
	"deeptracex/internal/storage/sqlite"
	"deeptracex/internal/validation"
)

func newAccountService(store *sqlite.Storage) *AccountService {
	logger := testLogger()
	ledger := NewCreditLedger(store, logger)
	binding := NewDeviceBindingManager(store, logger)
	return NewAccountService(store, store, binding, ledger, logger)
}

func TestAccountService_Register(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	svc := newAccountService(store)

	session, err := svc.RegisterOrLogin(ctx, "newuser", "192.0.2.1", "Mozilla/5.0")
	require.NoError(t, err)
	assert.True(t, session.IsNew)
	assert.Equal(t, "newuser", session.Username)
	assert.Equal(t, int64(constants.InitialCredits), session.Credits)
	assert.NotEmpty(t, session.Token)
	require.NotNil(t, session.BindCode)
	assert.NoError(t, validation.ValidateBindCode(*session.BindCode))

	acc, err := store.GetAccount(ctx, "newuser")
	require.NoError(t, err)
	assert.False(t, acc.TelegramVerified)
	require.NotNil(t, acc.Fingerprint)
	assert.Equal(t, Fingerprint("192.0.2.1", "Mozilla/5.0"), *acc.Fingerprint)
}

func TestAccountService_Register_InvalidUsername(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	svc := newAccountService(store)

	tests := []struct {
		name     string
		username string
	}{
		{name: "too short", username: "ab"},
		{name: "too long", username: "a_very_long_username_over_the_thirty_two_limit"},
		{name: "bad characters", username: "user name!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RegisterOrLogin(ctx, tt.username, "192.0.2.1", "ua")
			var validationErr *apperrors.ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestAccountService_Register_DeviceAlreadyBound(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	svc := newAccountService(store)

	_, err := svc.RegisterOrLogin(ctx, "first", "192.0.2.1", "Mozilla/5.0")
	require.NoError(t, err)

	// A second username from the same device is refused.
	_, err = svc.RegisterOrLogin(ctx, "second", "192.0.2.1", "Mozilla/5.0")
	var bound *apperrors.AlreadyBoundError
	assert.ErrorAs(t, err, &bound)
}

func TestAccountService_Login_UnverifiedBlocked(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	svc := newAccountService(store)

	session, err := svc.RegisterOrLogin(ctx, "pending", "192.0.2.1", "Mozilla/5.0")
	require.NoError(t, err)

	// A repeat login before verification re-surfaces the pending code.
	_, err = svc.RegisterOrLogin(ctx, "pending", "192.0.2.1", "Mozilla/5.0")
	var verify *apperrors.VerificationRequiredError
	require.ErrorAs(t, err, &verify)
	assert.Equal(t, "pending", verify.Username)
	assert.Equal(t, *session.BindCode, verify.BindCode)
}

func TestAccountService_Login_Verified(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	svc := newAccountService(store)

	first, err := svc.RegisterOrLogin(ctx, "member", "192.0.2.1", "Mozilla/5.0")
	require.NoError(t, err)
	_, err = store.RedeemBindCode(ctx, *first.BindCode, 777)
	require.NoError(t, err)

	session, err := svc.RegisterOrLogin(ctx, "member", "192.0.2.1", "Mozilla/5.0")
	require.NoError(t, err)
	assert.False(t, session.IsNew)
	assert.Equal(t, first.Token, session.Token)
	assert.Nil(t, session.BindCode)
}

func TestAccountService_Login_DeviceMismatch(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	svc := newAccountService(store)

	first, err := svc.RegisterOrLogin(ctx, "roamer", "192.0.2.1", "Mozilla/5.0")
	require.NoError(t, err)
	_, err = store.RedeemBindCode(ctx, *first.BindCode, 777)
	require.NoError(t, err)

	_, err = svc.RegisterOrLogin(ctx, "roamer", "198.51.100.7", "curl/8.0")
	var mismatch *apperrors.DeviceMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestAccountService_Login_Banned(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	svc := newAccountService(store)

	seedAccount(t, store, "outlaw", 10)
	require.NoError(t, store.Ban(ctx, &models.BanRecord{Username: "outlaw", BannedBy: "admin"}))

	_, err := svc.RegisterOrLogin(ctx, "outlaw", "192.0.2.1", "agent-outlaw")
	var banned *apperrors.BannedError
	assert.ErrorAs(t, err, &banned)
}

func TestAccountService_CheckSession(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	svc := newAccountService(store)

	acc := seedAccount(t, store, "checker", 6)

	session, err := svc.CheckSession(ctx, "checker", acc.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(6), session.Credits)

	_, err = svc.CheckSession(ctx, "checker", "wrong-token")
	var authErr *apperrors.AuthError
	assert.ErrorAs(t, err, &authErr)

	_, err = svc.CheckSession(ctx, "ghost", "whatever")
	assert.ErrorAs(t, err, &authErr)
}
