package domain

// Session statuses. The terminal status is written exactly once; there is
// no partial-success status.
const (
	SessionStatusRunning   = "running"
	SessionStatusCompleted = "completed"
	SessionStatusFailed    = "failed"
)

// Session is the umbrella context for one full chain-walk run on a market.
type Session struct {
	SessionID   string // UUID
	ConditionID string
	TokenID     string
	Volume      float64
	Iterations  int
	WalletCount int
	Status      string
	StartTime   int64 // unix ms
	EndTime     *int64
}
