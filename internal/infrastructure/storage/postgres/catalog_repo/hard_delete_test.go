package catalog_repo

import (
	"testing"

	"stockroom/internal/core/id"
)

func TestBaseCatalogRepo_Delete_SQL(t *testing.T) {
	repo := newTestRepo()
	entityID := id.New()

	q := repo.Builder().
		Delete(repo.tableName).
		Where("id = ?", entityID)

	sql, args, err := q.ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	wantSQL := "DELETE FROM test_table WHERE id = $1"
	if sql != wantSQL {
		t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", wantSQL, sql)
	}
	if len(args) != 1 || args[0] != entityID {
		t.Errorf("Args mismatch\nwant: [%v]\ngot:  %v", entityID, args)
	}
}
