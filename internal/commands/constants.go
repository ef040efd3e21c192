package commands

// TelegramCommands contains all commands for the Telegram bot
const (
	// Main commands
	Start  = "/start"
	Cancel = "/cancel"

	// Administrator commands
	ViewUsers    = "/viewuser"
	History      = "/history"
	AddCredit    = "/addcredit"
	RemoveCredit = "/rmcredit"
	Ban          = "/ban"
	Unban        = "/unban"
	Reset        = "/reset"
)

// Callback data prefixes for inline keyboards
const (
	// CreditCallbackPrefix prefixes credit package callbacks: credit_<username>_<amount>
	CreditCallbackPrefix = "credit_"
	// WipeCallbackPrefix prefixes credit wipe callbacks: rm_<all|half>_<username>
	WipeCallbackPrefix = "rm_"
)

// Wipe actions carried in callback data
const (
	WipeAll  = "all"
	WipeHalf = "half"
)
