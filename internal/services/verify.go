package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"deeptracex/internal/constants"
	apperrors "deeptracex/internal/errors"
	"deeptracex/internal/storage"
)

// RedeemStatus classifies the outcome of a bind-code redemption
type RedeemStatus int

const (
	// Verified means the code was consumed and the account is now linked
	Verified RedeemStatus = iota
	// AlreadyLinkedSelf means this Telegram identity already owns a verified
	// account; its code was consumed earlier
	AlreadyLinkedSelf
	// AlreadyLinkedOther means this Telegram identity is linked to a
	// different account than the one the code belongs to
	AlreadyLinkedOther
)

// RedeemResult carries the outcome of a redemption and the account it
// resolved to
type RedeemResult struct {
	Status   RedeemStatus
	Username string
	Credits  int64
}

// TelegramVerificationFlow issues one-time bind codes at registration and
// redeems them when the code arrives through the bot. Verification is
// terminal: there is no path back to unverified through this flow.
type TelegramVerificationFlow struct {
	accounts storage.AccountStore
	logger   *logrus.Logger
}

// NewTelegramVerificationFlow creates a new verification flow
func NewTelegramVerificationFlow(accounts storage.AccountStore, logger *logrus.Logger) *TelegramVerificationFlow {
	return &TelegramVerificationFlow{
		accounts: accounts,
		logger:   logger,
	}
}

// NewBindCode generates a 6-digit one-time binding code
func NewBindCode() string {
	span := constants.BindCodeMax - constants.BindCodeMin + 1
	return fmt.Sprintf("%d", constants.BindCodeMin+rand.Intn(span))
}

// Redeem consumes a bind code on behalf of a Telegram identity. One external
// identity links to at most one verified account; consumption is
// exactly-once even when two redemptions of the same code race.
func (f *TelegramVerificationFlow) Redeem(ctx context.Context, code string, telegramID int64) (*RedeemResult, error) {
	linked, err := f.accounts.FindByTelegramID(ctx, telegramID)
	if err != nil && !errors.Is(err, storage.ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to check linked account: %w", err)
	}

	if linked != nil {
		// This identity is already spoken for. If the code still points at
		// some other pending account, refuse the second link; otherwise the
		// sender is most likely replaying their own consumed code.
		if _, err := f.accounts.FindByBindCode(ctx, code); err == nil {
			return &RedeemResult{Status: AlreadyLinkedOther, Username: linked.Username}, nil
		}
		return &RedeemResult{
			Status:   AlreadyLinkedSelf,
			Username: linked.Username,
			Credits:  linked.Credits,
		}, nil
	}

	username, err := f.accounts.RedeemBindCode(ctx, code, telegramID)
	if err != nil {
		if errors.Is(err, storage.ErrBindCodeNotFound) {
			return nil, &apperrors.BindCodeInvalidError{Code: code}
		}
		return nil, fmt.Errorf("failed to redeem bind code: %w", err)
	}

	acc, err := f.accounts.GetAccount(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load verified account: %w", err)
	}

	f.logger.Infof("Account %s verified by Telegram ID %d", username, telegramID)
	return &RedeemResult{Status: Verified, Username: username, Credits: acc.Credits}, nil
}
