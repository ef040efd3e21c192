package models

import "time"

// Account represents a registered user of the lookup service.
//
// Username is the primary key and never changes after creation. Fingerprint,
// TelegramID and BindCode are optional and modeled as pointers: a nil
// Fingerprint means the device binding was reset and the next login re-binds,
// a nil BindCode means the account has no pending Telegram verification.
type Account struct {
	Username         string     `json:"username"`
	Token            string     `json:"token"`
	Fingerprint      *string    `json:"fingerprint"`
	Credits          int64      `json:"credits"`
	CreatedAt        time.Time  `json:"created_at"`
	LastLogin        time.Time  `json:"last_login"`
	LastIP           string     `json:"last_ip"`
	LastCreditRefill time.Time  `json:"last_credit_refill"`
	TelegramID       *int64     `json:"telegram_id"`
	TelegramVerified bool       `json:"telegram_verified"`
	BindCode         *string    `json:"bind_code"`
}
