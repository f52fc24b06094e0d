package catalog_repo

import (
	"stockroom/internal/domain/catalogs/supplier"
	"stockroom/internal/infrastructure/storage/postgres"
)

const supplierTable = "cat_suppliers"

// SupplierRepo implements supplier.Repository.
type SupplierRepo struct {
	*BaseCatalogRepo[*supplier.Supplier]
}

// NewSupplierRepo creates a new supplier repository.
func NewSupplierRepo(txm *postgres.TxManager) *SupplierRepo {
	return &SupplierRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			supplierTable,
			postgres.ExtractDBColumns[supplier.Supplier](),
			func() *supplier.Supplier { return &supplier.Supplier{} },
		),
	}
}
