package sqlite

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deeptracex/internal/models"
	"deeptracex/internal/storage"
)

func TestAccountStorage_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	acc := testAccount("alice")
	require.NoError(t, s.CreateAccount(ctx, acc))

	retrieved, err := s.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, acc.Username, retrieved.Username)
	assert.Equal(t, acc.Token, retrieved.Token)
	assert.Equal(t, acc.Credits, retrieved.Credits)
	require.NotNil(t, retrieved.Fingerprint)
	assert.Equal(t, *acc.Fingerprint, *retrieved.Fingerprint)
	require.NotNil(t, retrieved.BindCode)
	assert.Equal(t, *acc.BindCode, *retrieved.BindCode)
	assert.False(t, retrieved.TelegramVerified)
	assert.Nil(t, retrieved.TelegramID)
}

func TestAccountStorage_Create_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	require.NoError(t, s.CreateAccount(ctx, testAccount("bob")))

	dup := testAccount("bob")
	dup.Fingerprint = strPtr("ffffffffffffffff")
	dup.BindCode = strPtr("999999")
	assert.ErrorIs(t, s.CreateAccount(ctx, dup), storage.ErrAccountExists)
}

func TestAccountStorage_Create_FingerprintTaken(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	first := testAccount("first")
	require.NoError(t, s.CreateAccount(ctx, first))

	second := testAccount("second")
	second.Fingerprint = first.Fingerprint
	second.BindCode = strPtr("999999")
	assert.ErrorIs(t, s.CreateAccount(ctx, second), storage.ErrFingerprintTaken)
}

func TestAccountStorage_GetAccount_NotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	acc, err := s.GetAccount(ctx, "nobody")
	assert.ErrorIs(t, err, storage.ErrAccountNotFound)
	assert.Nil(t, acc)
}

func TestAccountStorage_FindByFingerprint(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	acc := testAccount("carol")
	require.NoError(t, s.CreateAccount(ctx, acc))

	found, err := s.FindByFingerprint(ctx, *acc.Fingerprint)
	require.NoError(t, err)
	assert.Equal(t, "carol", found.Username)

	_, err = s.FindByFingerprint(ctx, "0000000000000000")
	assert.ErrorIs(t, err, storage.ErrAccountNotFound)
}

func TestAccountStorage_SetBinding(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	acc := testAccount("dave")
	require.NoError(t, s.CreateAccount(ctx, acc))

	// Rebinding a still-bound account must fail.
	err := s.SetBinding(ctx, "dave", "1111111111111111", "newtoken")
	assert.ErrorIs(t, err, storage.ErrBindingPresent)

	require.NoError(t, s.ClearBinding(ctx, "dave", "rotated"))

	cleared, err := s.GetAccount(ctx, "dave")
	require.NoError(t, err)
	assert.Nil(t, cleared.Fingerprint)
	assert.Equal(t, "rotated", cleared.Token)

	require.NoError(t, s.SetBinding(ctx, "dave", "1111111111111111", "newtoken"))

	rebound, err := s.GetAccount(ctx, "dave")
	require.NoError(t, err)
	require.NotNil(t, rebound.Fingerprint)
	assert.Equal(t, "1111111111111111", *rebound.Fingerprint)
	assert.Equal(t, "newtoken", rebound.Token)
}

func TestAccountStorage_SetBinding_FingerprintTaken(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	holder := testAccount("holder")
	require.NoError(t, s.CreateAccount(ctx, holder))

	other := testAccount("other")
	other.Fingerprint = nil
	other.BindCode = strPtr("999999")
	require.NoError(t, s.CreateAccount(ctx, other))

	err := s.SetBinding(ctx, "other", *holder.Fingerprint, "tok")
	assert.ErrorIs(t, err, storage.ErrFingerprintTaken)
}

func TestAccountStorage_Debit(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	acc := testAccount("payer")
	acc.Credits = 2
	require.NoError(t, s.CreateAccount(ctx, acc))

	remaining, err := s.Debit(ctx, "payer")
	require.NoError(t, err)
	assert.Equal(t, int64(1), remaining)

	remaining, err = s.Debit(ctx, "payer")
	require.NoError(t, err)
	assert.Equal(t, int64(0), remaining)

	_, err = s.Debit(ctx, "payer")
	assert.ErrorIs(t, err, storage.ErrInsufficientCredits)

	_, err = s.Debit(ctx, "ghost")
	assert.ErrorIs(t, err, storage.ErrAccountNotFound)
}

func TestAccountStorage_Debit_Concurrent(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	acc := testAccount("racer")
	acc.Credits = 10
	require.NoError(t, s.CreateAccount(ctx, acc))

	const attempts = 25
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Debit(ctx, "racer")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		default:
			require.ErrorIs(t, err, storage.ErrInsufficientCredits)
			rejected++
		}
	}

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, attempts-10, rejected)

	final, err := s.GetAccount(ctx, "racer")
	require.NoError(t, err)
	assert.Equal(t, int64(0), final.Credits)
}

func TestAccountStorage_Credit(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	acc := testAccount("grantee")
	acc.Credits = 3
	require.NoError(t, s.CreateAccount(ctx, acc))

	require.NoError(t, s.Credit(ctx, "grantee", 50))

	updated, err := s.GetAccount(ctx, "grantee")
	require.NoError(t, err)
	assert.Equal(t, int64(53), updated.Credits)

	assert.ErrorIs(t, s.Credit(ctx, "ghost", 50), storage.ErrAccountNotFound)
}

func TestAccountStorage_RefillIfDue(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	now := time.Now()

	acc := testAccount("stale")
	acc.Credits = 0
	acc.LastCreditRefill = now.Add(-25 * time.Hour)
	require.NoError(t, s.CreateAccount(ctx, acc))

	fired, err := s.RefillIfDue(ctx, "stale", 10, 24*time.Hour, now)
	require.NoError(t, err)
	assert.True(t, fired)

	refilled, err := s.GetAccount(ctx, "stale")
	require.NoError(t, err)
	assert.Equal(t, int64(10), refilled.Credits)

	// A second check inside the interval must not fire.
	fired, err = s.RefillIfDue(ctx, "stale", 10, 24*time.Hour, now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, fired)
}

func TestAccountStorage_RefillIfDue_ResetsNotAdds(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	now := time.Now()

	acc := testAccount("hoarder")
	acc.Credits = 37
	acc.LastCreditRefill = now.Add(-48 * time.Hour)
	require.NoError(t, s.CreateAccount(ctx, acc))

	fired, err := s.RefillIfDue(ctx, "hoarder", 10, 24*time.Hour, now)
	require.NoError(t, err)
	assert.True(t, fired)

	refilled, err := s.GetAccount(ctx, "hoarder")
	require.NoError(t, err)
	assert.Equal(t, int64(10), refilled.Credits)
}

func TestAccountStorage_SetCredits(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	acc := testAccount("wiped")
	acc.Credits = 42
	require.NoError(t, s.CreateAccount(ctx, acc))

	old, err := s.SetCredits(ctx, "wiped", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(42), old)

	updated, err := s.GetAccount(ctx, "wiped")
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated.Credits)

	_, err = s.SetCredits(ctx, "ghost", 0)
	assert.ErrorIs(t, err, storage.ErrAccountNotFound)
}

func TestAccountStorage_HalveCredits(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	tests := []struct {
		name    string
		credits int64
		wantNew int64
	}{
		{name: "odd balance rounds up", credits: 7, wantNew: 4},
		{name: "even balance", credits: 8, wantNew: 4},
		{name: "single credit stays", credits: 1, wantNew: 1},
		{name: "zero balance stays", credits: 0, wantNew: 0},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			username := fmt.Sprintf("halve%d", i)
			acc := testAccount(username)
			acc.Credits = tt.credits
			acc.Fingerprint = strPtr(fmt.Sprintf("%016d", i))
			acc.BindCode = strPtr(fmt.Sprintf("%06d", 100100+i))
			require.NoError(t, s.CreateAccount(ctx, acc))

			old, updated, err := s.HalveCredits(ctx, username)
			require.NoError(t, err)
			assert.Equal(t, tt.credits, old)
			assert.Equal(t, tt.wantNew, updated)

			retrieved, err := s.GetAccount(ctx, username)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNew, retrieved.Credits)
		})
	}
}

func TestAccountStorage_RedeemBindCode(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	acc := testAccount("pending")
	require.NoError(t, s.CreateAccount(ctx, acc))

	username, err := s.RedeemBindCode(ctx, *acc.BindCode, 777)
	require.NoError(t, err)
	assert.Equal(t, "pending", username)

	verified, err := s.GetAccount(ctx, "pending")
	require.NoError(t, err)
	assert.True(t, verified.TelegramVerified)
	require.NotNil(t, verified.TelegramID)
	assert.Equal(t, int64(777), *verified.TelegramID)
	assert.Nil(t, verified.BindCode)

	// The code is consumed; a replay finds nothing.
	_, err = s.RedeemBindCode(ctx, *acc.BindCode, 888)
	assert.ErrorIs(t, err, storage.ErrBindCodeNotFound)
}

func TestAccountStorage_RedeemBindCode_Unknown(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.RedeemBindCode(ctx, "123456", 777)
	assert.ErrorIs(t, err, storage.ErrBindCodeNotFound)
}

func TestAccountStorage_FindByTelegramID(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	acc := testAccount("linked")
	require.NoError(t, s.CreateAccount(ctx, acc))

	// Unverified accounts are invisible to identity lookups.
	_, err := s.FindByTelegramID(ctx, 777)
	assert.ErrorIs(t, err, storage.ErrAccountNotFound)

	_, err = s.RedeemBindCode(ctx, *acc.BindCode, 777)
	require.NoError(t, err)

	found, err := s.FindByTelegramID(ctx, 777)
	require.NoError(t, err)
	assert.Equal(t, "linked", found.Username)
}

func TestAccountStorage_ListAccounts(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	base := time.Now()
	for i := 0; i < 3; i++ {
		acc := testAccount(fmt.Sprintf("user%d", i))
		acc.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		acc.Fingerprint = strPtr(fmt.Sprintf("%016d", i))
		acc.BindCode = strPtr(fmt.Sprintf("%06d", 200200+i))
		require.NoError(t, s.CreateAccount(ctx, acc))
	}

	accounts, err := s.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, "user0", accounts[0].Username)
	assert.Equal(t, "user2", accounts[2].Username)
}

func TestAccountStorage_TouchLogin(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	acc := testAccount("visitor")
	require.NoError(t, s.CreateAccount(ctx, acc))

	at := time.Now().Add(time.Hour)
	require.NoError(t, s.TouchLogin(ctx, "visitor", "10.0.0.9", at))

	updated, err := s.GetAccount(ctx, "visitor")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.9", updated.LastIP)
	assert.WithinDuration(t, at, updated.LastLogin, time.Second)

	assert.ErrorIs(t, s.TouchLogin(ctx, "ghost", "10.0.0.9", at), storage.ErrAccountNotFound)
}

func setupTestStorage(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	storage, err := New(ctx, ":memory:")
	require.NoError(t, err)

	cleanup := func() {
		_ = storage.Close()
	}

	return storage, cleanup
}

func testAccount(username string) *models.Account {
	now := time.Now()
	fp := fingerprintFor(username)
	code := codeFor(username)
	return &models.Account{
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
}

// fingerprintFor derives a unique 16-char fingerprint per username so the
// partial unique index does not trip across fixtures
func fingerprintFor(username string) string {
	return fmt.Sprintf("%-16.16s", "fp_"+username)
}

func codeFor(username string) string {
	sum := 0
	for _, r := range username {
		sum += int(r)
	}
	return fmt.Sprintf("%06d", 100000+sum)
}

func strPtr(s string) *string {
	return &s
}
