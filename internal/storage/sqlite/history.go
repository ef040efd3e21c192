package sqlite

import (
	"context"
	"fmt"

	"deeptracex/internal/constants"
	"deeptracex/internal/models"
)

// AppendHistory inserts a lookup entry and prunes everything older than the
// newest HistoryCap rows. Insert and prune run in one transaction so the cap
// holds after every append completes.
func (s *Storage) AppendHistory(ctx context.Context, entry *models.HistoryEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin history append: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO history (username, lookup_type, query, source_ip, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, entry.Username, entry.LookupType, entry.Query, entry.SourceIP, entry.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM history WHERE id NOT IN (
			SELECT id FROM history ORDER BY id DESC LIMIT ?
		)
	`, constants.HistoryCap)
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}

	return tx.Commit()
}

// RecentHistory returns up to limit entries, newest first
func (s *Storage) RecentHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, lookup_type, query, source_ip, timestamp
		FROM history ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(&e.ID, &e.Username, &e.LookupType, &e.Query, &e.SourceIP, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
