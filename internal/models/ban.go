package models

import "time"

// BanRecord represents a banned username. The record is independent of the
// Account itself: presence of a record is the sole ban predicate, and banning
// a username that was never registered is allowed.
type BanRecord struct {
	Username   string    `json:"username"`
	BannedAt   time.Time `json:"banned_at"`
	BannedBy   string    `json:"banned_by"`
	TelegramID *int64    `json:"telegram_id"`
}
