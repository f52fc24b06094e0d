package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stockroom/internal/core/entity"
	"stockroom/internal/core/id"
)

type testCatalog struct {
	entity.Catalog
	Symbol string `db:"symbol" json:"symbol"`
	Hidden string `db:"-" json:"-"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[testCatalog]()

	expected := []string{"id", "deletion_mark", "version", "code", "name", "symbol"}
	for _, col := range expected {
		assert.Contains(t, cols, col)
	}
	assert.NotContains(t, cols, "-")
	assert.Len(t, cols, len(expected))
}

func TestStructToMap(t *testing.T) {
	cat := testCatalog{
		Catalog: entity.Catalog{
			BaseCatalog: entity.BaseCatalog{
				BaseEntity: entity.BaseEntity{
					ID:           id.New(),
					DeletionMark: true,
					Version:      5,
				},
			},
			Code: "UN-001",
			Name: "Piece",
		},
		Symbol: "pc",
		Hidden: "not stored",
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "UN-001", m["code"])
	assert.Equal(t, "Piece", m["name"])
	assert.Equal(t, "pc", m["symbol"])
	_, hasHidden := m["Hidden"]
	assert.False(t, hasHidden)
}
