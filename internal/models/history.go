package models

import "time"

// HistoryEntry is one completed lookup. The log is append-only and capped at
// the most recent entries; older ones are pruned after each insert.
type HistoryEntry struct {
	ID         int64     `json:"-"`
	Username   string    `json:"username"`
	LookupType string    `json:"type"`
	Query      string    `json:"query"`
	SourceIP   string    `json:"ip"`
	Timestamp  time.Time `json:"timestamp"`
}
