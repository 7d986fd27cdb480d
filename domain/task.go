package domain

import "time"

// Task is a to-do entry owned by exactly one user. UserID is set from the
// authenticated identity at creation and never reassigned through the API.
type Task struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	IsComplete bool      `json:"isComplete"`
	UserID     int64     `json:"userId"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}
