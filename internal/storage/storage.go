// Package storage defines the persistence contracts for accounts, bans and
// lookup history. Implementations must provide the atomic primitives the
// credit invariant depends on: Debit is a single conditional decrement and
// RedeemBindCode is a single find-and-clear.
package storage

import (
	"context"
	"time"

	"deeptracex/internal/models"
)

// AccountStore persists accounts keyed by username. Accounts are never
// deleted, only banned. Field-targeted updates are deliberate: concurrent
// writers touching disjoint fields must not clobber each other.
type AccountStore interface {
	// CreateAccount inserts a new account. Returns ErrAccountExists on a
	// username collision and ErrFingerprintTaken if another account already
	// holds the fingerprint.
	CreateAccount(ctx context.Context, acc *models.Account) error

	// GetAccount returns the account or ErrAccountNotFound.
	GetAccount(ctx context.Context, username string) (*models.Account, error)

	// FindByFingerprint resolves an account by its bound fingerprint.
	FindByFingerprint(ctx context.Context, fingerprint string) (*models.Account, error)

	// FindByTelegramID resolves a verified account by its Telegram identity.
	FindByTelegramID(ctx context.Context, telegramID int64) (*models.Account, error)

	// FindByBindCode resolves the account holding a pending bind code.
	FindByBindCode(ctx context.Context, code string) (*models.Account, error)

	// ListAccounts returns all accounts ordered by creation time.
	ListAccounts(ctx context.Context) ([]models.Account, error)

	// TouchLogin records a successful login.
	TouchLogin(ctx context.Context, username, ip string, at time.Time) error

	// SetBinding binds a fingerprint and a fresh token to an account whose
	// binding was cleared. Returns ErrBindingPresent if the account is still
	// bound and ErrFingerprintTaken if the fingerprint belongs to another
	// account.
	SetBinding(ctx context.Context, username, fingerprint, token string) error

	// ClearBinding removes the device binding and rotates the session token,
	// permitting exactly one subsequent rebind.
	ClearBinding(ctx context.Context, username, newToken string) error

	// Debit atomically decrements the balance by one only if at least one
	// credit remains. Returns ErrInsufficientCredits or ErrAccountNotFound;
	// on success it reports the remaining balance.
	Debit(ctx context.Context, username string) (int64, error)

	// Credit atomically increments the balance by amount.
	Credit(ctx context.Context, username string, amount int64) error

	// RefillIfDue resets the balance to amount and advances the refill
	// timestamp, but only when the previous refill is older than the
	// interval. Reports whether the refill fired.
	RefillIfDue(ctx context.Context, username string, amount int64, interval time.Duration, now time.Time) (bool, error)

	// SetCredits overwrites the balance and returns the previous value.
	SetCredits(ctx context.Context, username string, value int64) (int64, error)

	// HalveCredits rounds the balance up to half its previous value and
	// returns both the previous and the new value.
	HalveCredits(ctx context.Context, username string) (int64, int64, error)

	// RedeemBindCode atomically consumes a pending bind code: it marks the
	// matching unverified account verified, stores the Telegram identity and
	// clears the code. Returns the claimed username or ErrBindCodeNotFound.
	RedeemBindCode(ctx context.Context, code string, telegramID int64) (string, error)
}

// BanRegistry persists ban records keyed by username, independent of account
// existence.
type BanRegistry interface {
	Ban(ctx context.Context, rec *models.BanRecord) error
	// Unban removes a ban record. Returns ErrNotBanned if none exists.
	Unban(ctx context.Context, username string) error
	IsBanned(ctx context.Context, username string) (bool, error)
	ListBans(ctx context.Context) ([]models.BanRecord, error)
}

// HistoryLog is the append-only record of completed lookups, capped at the
// most recent entries.
type HistoryLog interface {
	// AppendHistory inserts an entry and prunes everything older than the cap.
	AppendHistory(ctx context.Context, entry *models.HistoryEntry) error
	// RecentHistory returns up to limit entries, newest first.
	RecentHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error)
}
