package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"deeptracex/internal/constants"
	apperrors "deeptracex/internal/errors"
	"deeptracex/internal/models"
	"deeptracex/internal/storage"
)

// AdminService is the administrative capability set, dual-surfaced through
// the HTTP API and the bot. Both surfaces call these methods; neither has
// its own path to the store.
type AdminService struct {
	accounts storage.AccountStore
	bans     storage.BanRegistry
	history  storage.HistoryLog
	ledger   *CreditLedger
	binding  *DeviceBindingManager
	logger   *logrus.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(
	accounts storage.AccountStore,
	bans storage.BanRegistry,
	history storage.HistoryLog,
	ledger *CreditLedger,
	binding *DeviceBindingManager,
	logger *logrus.Logger,
) *AdminService {
	return &AdminService{
		accounts: accounts,
		bans:     bans,
		history:  history,
		ledger:   ledger,
		binding:  binding,
		logger:   logger,
	}
}

// ListUsers returns all registered accounts
func (a *AdminService) ListUsers(ctx context.Context) ([]models.Account, error) {
	return a.accounts.ListAccounts(ctx)
}

// RecentHistory returns the most recent lookups, newest first
func (a *AdminService) RecentHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 || limit > constants.HistoryCap {
		limit = constants.HistoryCap
	}
	return a.history.RecentHistory(ctx, limit)
}

// Ban records a ban for the username. The Telegram identity is snapshotted
// at ban time; banning a username with no account is allowed.
func (a *AdminService) Ban(ctx context.Context, username, actor string) (*models.BanRecord, error) {
	rec := &models.BanRecord{
		Username: username,
		BannedAt: time.Now(),
		BannedBy: actor,
	}

	acc, err := a.accounts.GetAccount(ctx, username)
	switch {
	case err == nil:
		rec.TelegramID = acc.TelegramID
	case errors.Is(err, storage.ErrAccountNotFound):
		// fine, ban is independent of account existence
	default:
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if err := a.bans.Ban(ctx, rec); err != nil {
		return nil, err
	}

	a.logger.Infof("Banned %s (by %s)", username, actor)
	return rec, nil
}

// Unban lifts a ban
func (a *AdminService) Unban(ctx context.Context, username string) error {
	if err := a.bans.Unban(ctx, username); err != nil {
		return err
	}
	a.logger.Infof("Unbanned %s", username)
	return nil
}

// AddCredits grants credits and returns the new balance
func (a *AdminService) AddCredits(ctx context.Context, username string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, &apperrors.ValidationError{Field: "amount", Message: "amount must be positive"}
	}

	if err := a.ledger.Credit(ctx, username, amount); err != nil {
		return 0, err
	}

	acc, err := a.accounts.GetAccount(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("failed to reload account: %w", err)
	}
	return acc.Credits, nil
}

// WipeAll zeroes a balance and returns the pre-image
func (a *AdminService) WipeAll(ctx context.Context, username string) (int64, error) {
	return a.ledger.WipeAll(ctx, username)
}

// WipeHalf halves a balance (rounding up) and returns the pre and post values
func (a *AdminService) WipeHalf(ctx context.Context, username string) (int64, int64, error) {
	return a.ledger.WipeHalf(ctx, username)
}

// ResetDevice clears an account's device binding for a one-time rebind
func (a *AdminService) ResetDevice(ctx context.Context, username string) error {
	return a.binding.ResetBinding(ctx, username)
}

// GetAccount returns a single account
func (a *AdminService) GetAccount(ctx context.Context, username string) (*models.Account, error) {
	return a.accounts.GetAccount(ctx, username)
}
