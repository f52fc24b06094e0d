package paymode

import (
	"stockroom/internal/domain"
)

// Repository defines the interface for PayMode persistence.
type Repository interface {
	domain.CatalogRepository[*PayMode]
}
