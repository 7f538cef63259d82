package progress

import "time"

// Record marks one completion of a topic by a user. The ledger is
// append-only: records are never updated or deleted, and "already passed" is
// derived from the existence of at least one record, never from a count.
type Record struct {
	UserID    string    `json:"user_id" db:"user_id"`
	Topic     string    `json:"topic" db:"topic"`
	Passed    bool      `json:"passed" db:"passed"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}
