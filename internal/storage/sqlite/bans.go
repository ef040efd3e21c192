package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"deeptracex/internal/models"
	"deeptracex/internal/storage"
)

// Ban upserts a ban record for a username
func (s *Storage) Ban(ctx context.Context, rec *models.BanRecord) error {
	query := `
		INSERT INTO bans (username, banned_at, banned_by, telegram_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (username) DO UPDATE SET
			banned_at = excluded.banned_at,
			banned_by = excluded.banned_by,
			telegram_id = excluded.telegram_id
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.Username, rec.BannedAt.UTC(), rec.BannedBy, rec.TelegramID)
	if err != nil {
		return fmt.Errorf("failed to insert ban: %w", err)
	}
	return nil
}

// Unban removes a ban record
func (s *Storage) Unban(ctx context.Context, username string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM bans WHERE username = ?`, username)
	if err != nil {
		return fmt.Errorf("failed to delete ban: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrNotBanned
	}
	return nil
}

// IsBanned reports whether a ban record exists for the username
func (s *Storage) IsBanned(ctx context.Context, username string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bans WHERE username = ?`, username).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check ban: %w", err)
	}
	return count > 0, nil
}

// ListBans returns all ban records, most recent first
func (s *Storage) ListBans(ctx context.Context) ([]models.BanRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT username, banned_at, banned_by, telegram_id FROM bans ORDER BY banned_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list bans: %w", err)
	}
	defer rows.Close()

	var records []models.BanRecord
	for rows.Next() {
		var rec models.BanRecord
		var telegramID sql.NullInt64
		if err := rows.Scan(&rec.Username, &rec.BannedAt, &rec.BannedBy, &telegramID); err != nil {
			return nil, fmt.Errorf("failed to scan ban: %w", err)
		}
		if telegramID.Valid {
			rec.TelegramID = &telegramID.Int64
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
