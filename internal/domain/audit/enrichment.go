// Package audit provides the audit-trail contract and audit field stamping
// for domain entities.
package audit

import (
	"context"

	appctx "stockroom/internal/core/context"
	"stockroom/internal/core/id"
)

// Action classifies an audited operation.
type Action string

const (
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDeactivate Action = "deactivate"
	ActionDelete     Action = "delete"
)

// Trail records entity changes. Implemented by the postgres audit service;
// domain services call it best effort after a successful commit.
type Trail interface {
	LogChange(ctx context.Context, entityType string, entityID id.ID, action Action, changes map[string]any) error
}

// StampCreated sets CreatedBy and UpdatedBy from the context user.
// If no user is in context, this is a no-op.
func StampCreated(ctx context.Context, createdBy, updatedBy *string) {
	userID := appctx.GetUserID(ctx)
	if userID != "" && createdBy != nil && updatedBy != nil {
		*createdBy = userID
		*updatedBy = userID
	}
}

// StampUpdated sets UpdatedBy from the context user.
// If no user is in context, this is a no-op.
func StampUpdated(ctx context.Context, updatedBy *string) {
	userID := appctx.GetUserID(ctx)
	if userID != "" && updatedBy != nil {
		*updatedBy = userID
	}
}
