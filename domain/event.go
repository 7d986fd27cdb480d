package domain

import "time"

// Audit actions recorded by the service.
const (
	AuditUserRegistered = "user.registered"
	AuditUserLoggedIn   = "user.logged_in"
	AuditTaskCreated    = "task.created"
	AuditTaskUpdated    = "task.updated"
	AuditTaskDeleted    = "task.deleted"
)

// Event is one append-only audit record. Events are spooled locally first and
// drained into the relational store by a background processor.
type Event struct {
	ID        string    `json:"id"`
	ActorID   int64     `json:"actor_id"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  int64     `json:"entity_id"`
	CreatedAt time.Time `json:"created_at"`
}
