package services

import (
	"context"

	"github.com/tasklight/backend/domain"
	"github.com/tasklight/backend/internal/infrastructure/auditlog"
	"github.com/tasklight/backend/usecase"
)

// AuditRecorder is the usecase-facing audit sink. It only appends to the
// local spool; the processor moves events to the relational store later.
type AuditRecorder struct {
	spool *auditlog.Spool
}

func NewAuditRecorder(spool *auditlog.Spool) *AuditRecorder {
	return &AuditRecorder{spool: spool}
}

func (r *AuditRecorder) Record(ctx context.Context, event domain.Event) error {
	if r == nil || r.spool == nil {
		return domain.ErrInvalidPayload
	}
	return r.spool.Append(event)
}

var _ usecase.AuditSink = (*AuditRecorder)(nil)
