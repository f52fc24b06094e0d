package catalog_repo

import (
	"stockroom/internal/domain/catalogs/paymode"
	"stockroom/internal/infrastructure/storage/postgres"
)

const payModeTable = "cat_pay_modes"

// PayModeRepo implements paymode.Repository.
type PayModeRepo struct {
	*BaseCatalogRepo[*paymode.PayMode]
}

// NewPayModeRepo creates a new payment mode repository.
func NewPayModeRepo(txm *postgres.TxManager) *PayModeRepo {
	return &PayModeRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			payModeTable,
			postgres.ExtractDBColumns[paymode.PayMode](),
			func() *paymode.PayMode { return &paymode.PayMode{} },
		),
	}
}
