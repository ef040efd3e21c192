package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deeptracex/internal/models"
	"deeptracex/internal/storage"
)

func TestBanRegistry_BanAndCheck(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	banned, err := s.IsBanned(ctx, "mallory")
	require.NoError(t, err)
	assert.False(t, banned)

	tgID := int64(4242)
	rec := &models.BanRecord{
		Username:   "mallory",
		BannedAt:   time.Now(),
		BannedBy:   "admin1",
		TelegramID: &tgID,
	}
	require.NoError(t, s.Ban(ctx, rec))

	banned, err = s.IsBanned(ctx, "mallory")
	require.NoError(t, err)
	assert.True(t, banned)
}

func TestBanRegistry_Ban_NoAccountNeeded(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	// Preemptive bans are allowed before the username ever registers.
	rec := &models.BanRecord{Username: "future", BannedAt: time.Now(), BannedBy: "admin1"}
	require.NoError(t, s.Ban(ctx, rec))

	banned, err := s.IsBanned(ctx, "future")
	require.NoError(t, err)
	assert.True(t, banned)
}

func TestBanRegistry_Ban_Idempotent(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	rec := &models.BanRecord{Username: "repeat", BannedAt: time.Now(), BannedBy: "admin1"}
	require.NoError(t, s.Ban(ctx, rec))

	rec.BannedBy = "admin2"
	require.NoError(t, s.Ban(ctx, rec))

	bans, err := s.ListBans(ctx)
	require.NoError(t, err)
	require.Len(t, bans, 1)
	assert.Equal(t, "admin2", bans[0].BannedBy)
}

func TestBanRegistry_Unban(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	rec := &models.BanRecord{Username: "redeemed", BannedAt: time.Now(), BannedBy: "admin1"}
	require.NoError(t, s.Ban(ctx, rec))

	require.NoError(t, s.Unban(ctx, "redeemed"))

	banned, err := s.IsBanned(ctx, "redeemed")
	require.NoError(t, err)
	assert.False(t, banned)

	assert.ErrorIs(t, s.Unban(ctx, "redeemed"), storage.ErrNotBanned)
}
