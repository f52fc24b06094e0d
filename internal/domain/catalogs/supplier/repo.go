package supplier

import (
	"stockroom/internal/domain"
)

// Repository defines the interface for Supplier persistence.
type Repository interface {
	domain.CatalogRepository[*Supplier]
}
