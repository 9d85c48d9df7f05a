package store

import "time"

// Actions recorded in Run.Action.
const (
	ActionFriends    = "suggest_friends"
	ActionBusinesses = "suggest_businesses"
)

// Run is one saved result set.
type Run struct {
	ID        string
	TargetID  string
	Action    string
	InputPath string
	RowCount  int
	CreatedAt time.Time
}
