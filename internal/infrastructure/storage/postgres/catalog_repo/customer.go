package catalog_repo

import (
	"stockroom/internal/domain/catalogs/customer"
	"stockroom/internal/infrastructure/storage/postgres"
)

const customerTable = "cat_customers"

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	*BaseCatalogRepo[*customer.Customer]
}

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo(txm *postgres.TxManager) *CustomerRepo {
	return &CustomerRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			customerTable,
			postgres.ExtractDBColumns[customer.Customer](),
			func() *customer.Customer { return &customer.Customer{} },
		),
	}
}
