package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"deeptracex/internal/models"
	"deeptracex/internal/storage"
)

const accountColumns = `username, token, fingerprint, credits, created_at,
	last_login, last_ip, last_credit_refill, telegram_id, telegram_verified, bind_code`

// CreateAccount inserts a new account row
func (s *Storage) CreateAccount(ctx context.Context, acc *models.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		acc.Username,
		acc.Token,
		acc.Fingerprint,
		acc.Credits,
		acc.CreatedAt.UTC(),
		acc.LastLogin.UTC(),
		acc.LastIP,
		acc.LastCreditRefill.UTC(),
		acc.TelegramID,
		acc.TelegramVerified,
		acc.BindCode,
	)

	if err != nil {
		if strings.Contains(err.Error(), "idx_accounts_fingerprint") {
			return storage.ErrFingerprintTaken
		}
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return storage.ErrAccountExists
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}

// GetAccount retrieves an account by username
func (s *Storage) GetAccount(ctx context.Context, username string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = ?`
	return s.scanAccount(s.db.QueryRowContext(ctx, query, username))
}

// FindByFingerprint retrieves the account bound to a fingerprint
func (s *Storage) FindByFingerprint(ctx context.Context, fingerprint string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE fingerprint = ?`
	return s.scanAccount(s.db.QueryRowContext(ctx, query, fingerprint))
}

// FindByTelegramID retrieves the verified account linked to a Telegram identity
func (s *Storage) FindByTelegramID(ctx context.Context, telegramID int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		WHERE telegram_id = ? AND telegram_verified = 1`
	return s.scanAccount(s.db.QueryRowContext(ctx, query, telegramID))
}

// FindByBindCode retrieves the account holding a pending bind code
func (s *Storage) FindByBindCode(ctx context.Context, code string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE bind_code = ?`
	return s.scanAccount(s.db.QueryRowContext(ctx, query, code))
}

// ListAccounts returns all accounts ordered by creation time
func (s *Storage) ListAccounts(ctx context.Context) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at, username`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		acc, err := scanAccountRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acc)
	}
	return accounts, rows.Err()
}

// TouchLogin records a successful login
func (s *Storage) TouchLogin(ctx context.Context, username, ip string, at time.Time) error {
	query := `UPDATE accounts SET last_login = ?, last_ip = ? WHERE username = ?`
	return s.execOnAccount(ctx, query, at.UTC(), ip, username)
}

// SetBinding performs the one-time rebind of a cleared device binding
func (s *Storage) SetBinding(ctx context.Context, username, fingerprint, token string) error {
	query := `
		UPDATE accounts SET fingerprint = ?, token = ?
		WHERE username = ? AND fingerprint IS NULL
	`

	result, err := s.db.ExecContext(ctx, query, fingerprint, token, username)
	if err != nil {
		if strings.Contains(err.Error(), "idx_accounts_fingerprint") {
			return storage.ErrFingerprintTaken
		}
		return fmt.Errorf("failed to set binding: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		if _, err := s.GetAccount(ctx, username); err != nil {
			return err
		}
		return storage.ErrBindingPresent
	}
	return nil
}

// ClearBinding removes the device binding and rotates the session token
func (s *Storage) ClearBinding(ctx context.Context, username, newToken string) error {
	query := `UPDATE accounts SET fingerprint = NULL, token = ? WHERE username = ?`
	return s.execOnAccount(ctx, query, newToken, username)
}

// Debit atomically decrements the balance if at least one credit remains.
// The conditional UPDATE is the invariant: two concurrent debits of a
// balance of one can never both succeed.
func (s *Storage) Debit(ctx context.Context, username string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin debit: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE accounts SET credits = credits - 1 WHERE username = ? AND credits >= 1`,
		username)
	if err != nil {
		return 0, fmt.Errorf("failed to debit: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM accounts WHERE username = ?`, username).Scan(&exists); err != nil {
			return 0, fmt.Errorf("failed to check account: %w", err)
		}
		if exists == 0 {
			return 0, storage.ErrAccountNotFound
		}
		return 0, storage.ErrInsufficientCredits
	}

	var remaining int64
	if err := tx.QueryRowContext(ctx,
		`SELECT credits FROM accounts WHERE username = ?`, username).Scan(&remaining); err != nil {
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit debit: %w", err)
	}
	return remaining, nil
}

// Credit atomically increments the balance
func (s *Storage) Credit(ctx context.Context, username string, amount int64) error {
	query := `UPDATE accounts SET credits = credits + ? WHERE username = ?`
	return s.execOnAccount(ctx, query, amount, username)
}

// RefillIfDue resets the balance to amount when the last refill is older than
// the interval. The interval check lives in the WHERE clause so two
// concurrent auth checks cannot both apply it.
func (s *Storage) RefillIfDue(ctx context.Context, username string, amount int64, interval time.Duration, now time.Time) (bool, error) {
	query := `
		UPDATE accounts SET credits = ?, last_credit_refill = ?
		WHERE username = ? AND last_credit_refill <= ?
	`

	result, err := s.db.ExecContext(ctx, query,
		amount, now.UTC(), username, now.Add(-interval).UTC())
	if err != nil {
		return false, fmt.Errorf("failed to refill: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// SetCredits overwrites the balance and returns the previous value
func (s *Storage) SetCredits(ctx context.Context, username string, value int64) (int64, error) {
	var old int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`SELECT credits FROM accounts WHERE username = ?`, username).Scan(&old); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return storage.ErrAccountNotFound
			}
			return fmt.Errorf("failed to read balance: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE accounts SET credits = ? WHERE username = ?`, value, username); err != nil {
			return fmt.Errorf("failed to set balance: %w", err)
		}
		return nil
	})
	return old, err
}

// HalveCredits rounds the balance up to half its previous value
func (s *Storage) HalveCredits(ctx context.Context, username string) (int64, int64, error) {
	var old, updated int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`SELECT credits FROM accounts WHERE username = ?`, username).Scan(&old); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return storage.ErrAccountNotFound
			}
			return fmt.Errorf("failed to read balance: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE accounts SET credits = (credits + 1) / 2 WHERE username = ?`, username); err != nil {
			return fmt.Errorf("failed to halve balance: %w", err)
		}
		updated = (old + 1) / 2
		return nil
	})
	return old, updated, err
}

// RedeemBindCode atomically consumes a pending bind code. The code lives in
// the UPDATE's WHERE clause, so a second redemption of the same code finds
// nothing to update and reports ErrBindCodeNotFound.
func (s *Storage) RedeemBindCode(ctx context.Context, code string, telegramID int64) (string, error) {
	var username string
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`SELECT username FROM accounts WHERE bind_code = ?`, code).Scan(&username); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return storage.ErrBindCodeNotFound
			}
			return fmt.Errorf("failed to look up bind code: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE accounts
			SET telegram_id = ?, telegram_verified = 1, bind_code = NULL
			WHERE bind_code = ? AND telegram_verified = 0
		`, telegramID, code)
		if err != nil {
			return fmt.Errorf("failed to redeem bind code: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return storage.ErrBindCodeNotFound
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return username, nil
}

// execOnAccount runs an UPDATE that must match exactly one account row
func (s *Storage) execOnAccount(ctx context.Context, query string, args ...any) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrAccountNotFound
	}
	return nil
}

func (s *Storage) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Storage) scanAccount(row *sql.Row) (*models.Account, error) {
	acc, err := scanAccountRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrAccountNotFound
		}
		return nil, err
	}
	return acc, nil
}

func scanAccountRow(scan func(dest ...any) error) (*models.Account, error) {
	acc := &models.Account{}
	var (
		fingerprint sql.NullString
		telegramID  sql.NullInt64
		bindCode    sql.NullString
	)

	err := scan(
		&acc.Username,
		&acc.Token,
		&fingerprint,
		&acc.Credits,
		&acc.CreatedAt,
		&acc.LastLogin,
		&acc.LastIP,
		&acc.LastCreditRefill,
		&telegramID,
		&acc.TelegramVerified,
		&bindCode,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}

	if fingerprint.Valid {
		acc.Fingerprint = &fingerprint.String
	}
	if telegramID.Valid {
		acc.TelegramID = &telegramID.Int64
	}
	if bindCode.Valid {
		acc.BindCode = &bindCode.String
	}
	return acc, nil
}
