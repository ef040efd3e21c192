package constants

import "time"

const (
	// User validation constants
	MinUsernameLength = 3
	MaxUsernameLength = 32

	// Credit constants
	InitialCredits = 10
	RefillAmount   = 10
	RefillInterval = 24 * time.Hour

	// Bind code constants
	BindCodeMin = 100000
	BindCodeMax = 999999

	// History constants
	HistoryCap         = 1000
	HistoryRenderLimit = 20

	// Network constants
	ProviderTimeout      = 10 * time.Second
	DefaultRetryCount    = 2
	DefaultRetryWaitTime = 1 * time.Second
	ShutdownTimeout      = 5 * time.Second

	// Cache constants
	StateExpiration      = 30 * time.Minute
	StateCleanupInterval = 10 * time.Minute

	// Formatting constants
	TimestampFormat = "2006-01-02 15:04:05"
	MaxMessageSize  = 4000
)

// CreditPackages are the grant sizes offered on the admin inline keyboard.
var CreditPackages = []int64{50, 120}
