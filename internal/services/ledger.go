package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"deeptracex/internal/constants"
	apperrors "deeptracex/internal/errors"
	"deeptracex/internal/storage"
)

// CreditLedger performs atomic balance operations over the account store.
// Every debit handed out by the ledger is owed exactly one terminating
// adjustment: either the lookup succeeds and the credit stays consumed, or
// the caller refunds it through Credit.
type CreditLedger struct {
	accounts storage.AccountStore
	logger   *logrus.Logger
}

// NewCreditLedger creates a new credit ledger
func NewCreditLedger(accounts storage.AccountStore, logger *logrus.Logger) *CreditLedger {
	return &CreditLedger{
		accounts: accounts,
		logger:   logger,
	}
}

// Debit consumes one credit and returns the remaining balance
func (l *CreditLedger) Debit(ctx context.Context, username string) (int64, error) {
	remaining, err := l.accounts.Debit(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrInsufficientCredits) {
			return 0, &apperrors.InsufficientCreditsError{Username: username}
		}
		if errors.Is(err, storage.ErrAccountNotFound) {
			return 0, &apperrors.AuthError{Reason: "user not found"}
		}
		return 0, fmt.Errorf("debit failed: %w", err)
	}

	l.logger.Debugf("Debited 1 credit from %s, %d remaining", username, remaining)
	return remaining, nil
}

// Credit grants credits unconditionally; used for refunds and admin grants.
// Amount validation (> 0) is the caller's job for admin grants.
func (l *CreditLedger) Credit(ctx context.Context, username string, amount int64) error {
	if err := l.accounts.Credit(ctx, username, amount); err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			return &apperrors.AuthError{Reason: "user not found"}
		}
		return fmt.Errorf("credit failed: %w", err)
	}

	l.logger.Debugf("Credited %d to %s", amount, username)
	return nil
}

// Refill lazily resets the balance to the daily baseline when the previous
// refill is at least a day old. It is evaluated on auth checks, not on a
// schedule, and reports whether it fired.
func (l *CreditLedger) Refill(ctx context.Context, username string) (bool, error) {
	fired, err := l.accounts.RefillIfDue(ctx, username,
		constants.RefillAmount, constants.RefillInterval, time.Now())
	if err != nil {
		return false, fmt.Errorf("refill failed: %w", err)
	}

	if fired {
		l.logger.Infof("Refilled credits for %s to %d", username, constants.RefillAmount)
	}
	return fired, nil
}

// WipeAll zeroes the balance and returns the previous value
func (l *CreditLedger) WipeAll(ctx context.Context, username string) (int64, error) {
	old, err := l.accounts.SetCredits(ctx, username, 0)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			return 0, &apperrors.AuthError{Reason: "user not found"}
		}
		return 0, fmt.Errorf("wipe failed: %w", err)
	}

	l.logger.Infof("Wiped all credits for %s (was %d)", username, old)
	return old, nil
}

// WipeHalf rounds the balance up to half its previous value and returns the
// previous and new values
func (l *CreditLedger) WipeHalf(ctx context.Context, username string) (int64, int64, error) {
	old, updated, err := l.accounts.HalveCredits(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			return 0, 0, &apperrors.AuthError{Reason: "user not found"}
		}
		return 0, 0, fmt.Errorf("wipe failed: %w", err)
	}

	l.logger.Infof("Halved credits for %s: %d -> %d", username, old, updated)
	return old, updated, nil
}
