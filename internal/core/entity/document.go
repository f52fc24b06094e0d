package entity

import (
	"context"
	"time"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
)

// Document is the base type for stock-affecting business records.
// Examples: Movement, Sale, Reception.
type Document struct {
	BaseDocument

	// Number is the document number (auto-generated, unique within type)
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// Active indicates the document currently contributes to stock and totals.
	// Deactivation is terminal: an inactive document is never reactivated.
	Active bool `db:"active" json:"active"`

	// Comment is an optional user comment
	Comment string `db:"comment" json:"comment,omitempty"`
}

// NewDocument creates a new active Document with generated ID.
func NewDocument() Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		Date:         time.Now().UTC(),
		Active:       true,
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	return nil
}

// CanModify checks if document can be modified.
// Inactive documents are read-only.
func (d *Document) CanModify(entityName string) error {
	if !d.Active {
		return apperror.NewRecordInactive(entityName, d.ID.String())
	}
	return nil
}

// Deactivate clears the active flag. Idempotent.
func (d *Document) Deactivate() {
	if !d.Active {
		return
	}
	d.Active = false
	d.Touch()
}

// GetID returns the document ID.
func (d *Document) GetID() id.ID {
	return d.ID
}

// IsBackdated checks if document date is in the past.
func (d *Document) IsBackdated() bool {
	return d.Date.Before(time.Now().UTC().Truncate(24 * time.Hour))
}
