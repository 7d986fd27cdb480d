package domain

import "time"

// User represents a registered account. Password holds the bcrypt hash and
// never leaves the service.
type User struct {
	ID        int64     `json:"id"`
	UserName  string    `json:"userName"`
	Mail      string    `json:"mail"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"-"`
}

// RoleUser is the only role the service issues.
const RoleUser = "User"
