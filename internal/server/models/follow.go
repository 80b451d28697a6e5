package models

import "time"

// Follow is a directed edge: UserID follows FollowedUserID.
type Follow struct {
	ID             string
	UserID         string
	FollowedUserID string
	CreatedAt      time.Time
}
