package usecase

import (
	"context"

	"github.com/tasklight/backend/domain"
)

// AuditSink abstracts the audit recorder so use cases stay storage-agnostic.
// Recording is best-effort: a sink failure never fails the calling operation.
type AuditSink interface {
	Record(ctx context.Context, event domain.Event) error
}
