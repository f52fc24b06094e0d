package document_repo

import (
	"stockroom/internal/domain/movements"
	"stockroom/internal/infrastructure/storage/postgres"
)

const movementTable = "doc_movements"

// MovementRepo implements movements.Repository.
type MovementRepo struct {
	*BaseDocumentRepo[*movements.Movement]
}

// NewMovementRepo creates a new movement repository.
func NewMovementRepo(txm *postgres.TxManager) *MovementRepo {
	return &MovementRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			movementTable,
			postgres.ExtractDBColumns[movements.Movement](),
			func() *movements.Movement { return &movements.Movement{} },
		),
	}
}
