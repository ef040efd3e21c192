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
	"deeptracex/internal/lookup"
	"deeptracex/internal/models"
	"deeptracex/internal/storage"
)

// LookupRequest is one credit-gated lookup attempt
type LookupRequest struct {
	Username string
	Token    string
	Kind     lookup.Kind
	Query    string
	SourceIP string
}

// LookupResponse is a successful, billed lookup
type LookupResponse struct {
	Result  *lookup.Result
	Credits int64
}

// LookupGate runs the ordered checks in front of every provider call:
// validation, authentication, ban, verification, lazy refill, debit. No
// check before the debit ever consumes a credit, and every debit resolves to
// exactly one net effect: consumed on success, refunded on any other exit.
type LookupGate struct {
	accounts  storage.AccountStore
	bans      storage.BanRegistry
	history   storage.HistoryLog
	ledger    *CreditLedger
	providers *lookup.Registry
	logger    *logrus.Logger
}

// NewLookupGate creates a new lookup gate
func NewLookupGate(
	accounts storage.AccountStore,
	bans storage.BanRegistry,
	history storage.HistoryLog,
	ledger *CreditLedger,
	providers *lookup.Registry,
	logger *logrus.Logger,
) *LookupGate {
	return &LookupGate{
		accounts:  accounts,
		bans:      bans,
		history:   history,
		ledger:    ledger,
		providers: providers,
		logger:    logger,
	}
}

// Execute runs one gated lookup
func (g *LookupGate) Execute(ctx context.Context, req LookupRequest) (*LookupResponse, error) {
	provider, err := g.providers.Get(req.Kind)
	if err != nil {
		return nil, &apperrors.ValidationError{Field: "type", Message: err.Error()}
	}

	// Malformed input must never consume a credit.
	if err := provider.Validate(req.Query); err != nil {
		return nil, err
	}

	acc, err := g.accounts.GetAccount(ctx, req.Username)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			return nil, &apperrors.AuthError{Reason: "user not found"}
		}
		// Store fault: fail closed rather than guess.
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(acc.Token), []byte(req.Token)) != 1 {
		return nil, &apperrors.AuthError{Reason: "invalid token"}
	}

	banned, err := g.bans.IsBanned(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check ban: %w", err)
	}
	if banned {
		return nil, &apperrors.BannedError{Username: req.Username}
	}

	if !acc.TelegramVerified {
		code := ""
		if acc.BindCode != nil {
			code = *acc.BindCode
		}
		return nil, &apperrors.VerificationRequiredError{Username: req.Username, BindCode: code}
	}

	if _, err := g.ledger.Refill(ctx, req.Username); err != nil {
		return nil, err
	}

	balance, err := g.ledger.Debit(ctx, req.Username)
	if err != nil {
		return nil, err
	}

	// From here on the debit is in flight. Exactly one terminating
	// adjustment: the deferred refund fires on every exit path that did not
	// mark the credit consumed.
	consumed := false
	defer func() {
		if consumed {
			return
		}
		// Refund survives request cancellation; a timed-out provider call
		// must still restore the balance.
		refundCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.ShutdownTimeout)
		defer cancel()
		if err := g.ledger.Credit(refundCtx, req.Username, 1); err != nil {
			g.logger.Errorf("Failed to refund credit to %s: %v", req.Username, err)
		}
	}()

	providerCtx, cancel := context.WithTimeout(ctx, constants.ProviderTimeout)
	defer cancel()

	result, err := provider.Lookup(providerCtx, req.Query)
	if err != nil {
		var upstream *apperrors.UpstreamError
		var notFound *apperrors.NotFoundError
		if errors.As(err, &upstream) || errors.As(err, &notFound) {
			return nil, err
		}
		return nil, &apperrors.UpstreamError{Provider: string(req.Kind), Err: err}
	}

	consumed = true

	entry := &models.HistoryEntry{
		Username:   req.Username,
		LookupType: provider.Label(),
		Query:      req.Query,
		SourceIP:   req.SourceIP,
		Timestamp:  time.Now(),
	}
	if err := g.history.AppendHistory(ctx, entry); err != nil {
		// The user paid for the result; a history fault must not eat it.
		g.logger.Errorf("Failed to append history for %s: %v", req.Username, err)
	}

	g.logger.Infof("Lookup %s for %s succeeded, %d credits left", req.Kind, req.Username, balance)
	return &LookupResponse{Result: result, Credits: balance}, nil
}
