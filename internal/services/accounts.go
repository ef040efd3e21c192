package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"deeptracex/internal/constants"
	apperrors "deeptracex/internal/errors"
	"deeptracex/internal/models"
	"deeptracex/internal/storage"
	"deeptracex/internal/validation"
)

// Session is what the HTTP surface returns for register and auth checks
type Session struct {
	Username string
	Token    string
	Credits  int64
	IsNew    bool
	BindCode *string
}

// AccountService handles registration and session checks. It composes the
// binding manager, the ledger and the verification flow over one store.
type AccountService struct {
	accounts storage.AccountStore
	bans     storage.BanRegistry
	binding  *DeviceBindingManager
	ledger   *CreditLedger
	logger   *logrus.Logger
}

// NewAccountService creates a new account service
func NewAccountService(
	accounts storage.AccountStore,
	bans storage.BanRegistry,
	binding *DeviceBindingManager,
	ledger *CreditLedger,
	logger *logrus.Logger,
) *AccountService {
	return &AccountService{
		accounts: accounts,
		bans:     bans,
		binding:  binding,
		ledger:   ledger,
		logger:   logger,
	}
}

// RegisterOrLogin registers a new account for the device, or logs an
// existing one in. New accounts start with the initial credit balance and a
// pending bind code; lookups stay locked until the code is redeemed.
func (s *AccountService) RegisterOrLogin(ctx context.Context, username, sourceIP, userAgent string) (*Session, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, &apperrors.ValidationError{Field: "username", Message: err.Error()}
	}

	banned, err := s.bans.IsBanned(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check ban: %w", err)
	}
	if banned {
		return nil, &apperrors.BannedError{Username: username}
	}

	fingerprint := Fingerprint(sourceIP, userAgent)

	acc, err := s.accounts.GetAccount(ctx, username)
	switch {
	case err == nil:
		return s.login(ctx, acc, fingerprint, sourceIP)
	case errors.Is(err, storage.ErrAccountNotFound):
		return s.register(ctx, username, fingerprint, sourceIP)
	default:
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
}

func (s *AccountService) login(ctx context.Context, acc *models.Account, fingerprint, sourceIP string) (*Session, error) {
	// Unverified accounts may learn their pending code but go no further.
	if !acc.TelegramVerified {
		code := ""
		if acc.BindCode != nil {
			code = *acc.BindCode
		}
		return nil, &apperrors.VerificationRequiredError{Username: acc.Username, BindCode: code}
	}

	if _, err := s.binding.BindOrValidate(ctx, acc.Username, fingerprint); err != nil {
		return nil, err
	}

	if _, err := s.ledger.Refill(ctx, acc.Username); err != nil {
		return nil, err
	}

	if err := s.accounts.TouchLogin(ctx, acc.Username, sourceIP, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	// Reload: the token rotates on a fresh bind and the refill may have
	// reset the balance.
	acc, err := s.accounts.GetAccount(ctx, acc.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to reload account: %w", err)
	}

	return &Session{
		Username: acc.Username,
		Token:    acc.Token,
		Credits:  acc.Credits,
	}, nil
}

func (s *AccountService) register(ctx context.Context, username, fingerprint, sourceIP string) (*Session, error) {
	if err := s.binding.AssertFingerprintFree(ctx, fingerprint); err != nil {
		return nil, err
	}

	now := time.Now()
	code := NewBindCode()
	acc := &models.Account{
		Username:         username,
		Token:            NewToken(username, fingerprint),
		Fingerprint:      &fingerprint,
		Credits:          constants.InitialCredits,
		CreatedAt:        now,
		LastLogin:        now,
		LastIP:           sourceIP,
		LastCreditRefill: now,
		BindCode:         &code,
	}

	if err := s.accounts.CreateAccount(ctx, acc); err != nil {
		// The unique index on fingerprint closes the find-then-insert race.
		if errors.Is(err, storage.ErrFingerprintTaken) {
			return nil, &apperrors.AlreadyBoundError{Fingerprint: fingerprint}
		}
		if errors.Is(err, storage.ErrAccountExists) {
			return nil, &apperrors.ValidationError{Field: "username", Message: "username is already taken"}
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Infof("Registered account %s from %s", username, sourceIP)
	return &Session{
		Username: username,
		Token:    acc.Token,
		Credits:  acc.Credits,
		IsNew:    true,
		BindCode: &code,
	}, nil
}

// CheckSession validates a username/token pair and reports the account's
// standing: ban state, verification state and current balance (after a lazy
// refill).
func (s *AccountService) CheckSession(ctx context.Context, username, token string) (*Session, error) {
	acc, err := s.accounts.GetAccount(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			return nil, &apperrors.AuthError{Reason: "user not found"}
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(acc.Token), []byte(token)) != 1 {
		return nil, &apperrors.AuthError{Reason: "invalid token"}
	}

	banned, err := s.bans.IsBanned(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check ban: %w", err)
	}
	if banned {
		return nil, &apperrors.BannedError{Username: username}
	}

	if !acc.TelegramVerified {
		code := ""
		if acc.BindCode != nil {
			code = *acc.BindCode
		}
		return nil, &apperrors.VerificationRequiredError{Username: username, BindCode: code}
	}

	if fired, err := s.ledger.Refill(ctx, username); err != nil {
		return nil, err
	} else if fired {
		if acc, err = s.accounts.GetAccount(ctx, username); err != nil {
			return nil, fmt.Errorf("failed to reload account: %w", err)
		}
	}

	return &Session{
		Username: acc.Username,
		Token:    acc.Token,
		Credits:  acc.Credits,
	}, nil
}

// Credits returns the account's current balance
func (s *AccountService) Credits(ctx context.Context, username string) (int64, error) {
	acc, err := s.accounts.GetAccount(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			return 0, &apperrors.AuthError{Reason: "user not found"}
		}
		return 0, fmt.Errorf("failed to load account: %w", err)
	}
	return acc.Credits, nil
}
