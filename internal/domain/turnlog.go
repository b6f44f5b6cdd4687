package domain

// TurnRecord is one audit entry of the turn log.
type TurnRecord struct {
	PK              string
	SK              string
	Session         string
	Intent          string
	ResponseID      string
	EndConversation bool
	CreatedAt       string
	TTL             int64
}
