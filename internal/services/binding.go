package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "deeptracex/internal/errors"
	"deeptracex/internal/storage"
)

// BindOutcome is the result of validating a login device against an
// account's stored fingerprint
type BindOutcome int

const (
	// Bound means the fingerprint matched the existing binding
	Bound BindOutcome = iota
	// FreshBind means the account had no binding and this device claimed it
	FreshBind
	// Mismatch means the account is bound to a different device
	Mismatch
)

// DeviceBindingManager computes device fingerprints and enforces the
// at-most-one-account-per-device rule
type DeviceBindingManager struct {
	accounts storage.AccountStore
	logger   *logrus.Logger
}

// NewDeviceBindingManager creates a new device binding manager
func NewDeviceBindingManager(accounts storage.AccountStore, logger *logrus.Logger) *DeviceBindingManager {
	return &DeviceBindingManager{
		accounts: accounts,
		logger:   logger,
	}
}

// Fingerprint derives the device identifier from the source IP and
// User-Agent string: the first 16 hex characters of sha256(ip + ":" + ua).
// Collisions between genuinely distinct devices are an accepted heuristic
// limitation.
func Fingerprint(sourceIP, userAgent string) string {
	sum := sha256.Sum256([]byte(sourceIP + ":" + userAgent))
	return hex.EncodeToString(sum[:])[:16]
}

// NewToken derives a fresh opaque session token
func NewToken(username, salt string) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s:%s:%s", username, salt, time.Now().Format(time.RFC3339Nano)))
	return hex.EncodeToString(sum[:])
}

// BindOrValidate checks a login device against the account's binding. A
// cleared binding (after an admin reset) is claimed by this device and the
// session token is rotated; a different stored fingerprint is a hard
// rejection, never a silent overwrite.
func (m *DeviceBindingManager) BindOrValidate(ctx context.Context, username, fingerprint string) (BindOutcome, error) {
	acc, err := m.accounts.GetAccount(ctx, username)
	if err != nil {
		return Mismatch, fmt.Errorf("failed to load account: %w", err)
	}

	if acc.Fingerprint != nil {
		if *acc.Fingerprint != fingerprint {
			return Mismatch, &apperrors.DeviceMismatchError{Username: username}
		}
		return Bound, nil
	}

	token := NewToken(username, fingerprint)
	if err := m.accounts.SetBinding(ctx, username, fingerprint, token); err != nil {
		switch {
		case errors.Is(err, storage.ErrFingerprintTaken):
			return Mismatch, &apperrors.AlreadyBoundError{Fingerprint: fingerprint}
		case errors.Is(err, storage.ErrBindingPresent):
			// Lost a race with a concurrent login; re-validate against the
			// binding that won.
			return m.BindOrValidate(ctx, username, fingerprint)
		default:
			return Mismatch, fmt.Errorf("failed to bind device: %w", err)
		}
	}

	m.logger.Infof("Account %s re-bound to a new device", username)
	return FreshBind, nil
}

// ResetBinding clears the device binding and rotates the token, permitting
// exactly one subsequent re-bind. Admin-only; verification state survives.
func (m *DeviceBindingManager) ResetBinding(ctx context.Context, username string) error {
	token := NewToken(username, "reset")
	if err := m.accounts.ClearBinding(ctx, username, token); err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			return &apperrors.AuthError{Reason: "user not found"}
		}
		return fmt.Errorf("failed to reset binding: %w", err)
	}

	m.logger.Infof("Device binding reset for %s", username)
	return nil
}

// AssertFingerprintFree rejects a registration when another account already
// holds the device fingerprint
func (m *DeviceBindingManager) AssertFingerprintFree(ctx context.Context, fingerprint string) error {
	_, err := m.accounts.FindByFingerprint(ctx, fingerprint)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check fingerprint: %w", err)
	}
	return &apperrors.AlreadyBoundError{Fingerprint: fingerprint}
}
