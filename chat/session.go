package chat

import "time"

// Session is the durable log of one conversation. Questions and answers are
// parallel sequences appended one pair at a time; no reader ever observes
// them at different lengths.
type Session struct {
	ID        string
	OwnerID   string
	Questions []string
	Answers   []string
	CreatedAt time.Time
	UpdatedAt time.Time
}
