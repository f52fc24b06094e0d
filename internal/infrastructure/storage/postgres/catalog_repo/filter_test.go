package catalog_repo

import (
	"testing"

	"stockroom/internal/domain/filter"
)

func newTestRepo() *BaseCatalogRepo[any] {
	return NewBaseCatalogRepo[any](nil, "test_table", []string{"id", "col1"}, func() any { return nil })
}

func TestApplyAdvancedFilters_Operators(t *testing.T) {
	repo := newTestRepo()

	tests := []struct {
		name     string
		item     filter.Item
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "GreaterOrEqual",
			item:     filter.Item{Field: "col1", Operator: filter.GreaterOrEqual, Value: 10},
			wantSQL:  "SELECT id, col1 FROM test_table WHERE col1 >= $1",
			wantArgs: []any{10},
		},
		{
			name:     "LessOrEqual",
			item:     filter.Item{Field: "col1", Operator: filter.LessOrEqual, Value: 5},
			wantSQL:  "SELECT id, col1 FROM test_table WHERE col1 <= $1",
			wantArgs: []any{5},
		},
		{
			name:     "Contains",
			item:     filter.Item{Field: "col1", Operator: filter.Contains, Value: "abc"},
			wantSQL:  "SELECT id, col1 FROM test_table WHERE col1 ILIKE $1",
			wantArgs: []any{"%abc%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			baseQ := repo.baseSelect()
			q, err := repo.applyAdvancedFilters(baseQ, []filter.Item{tt.item})
			if err != nil {
				t.Fatalf("applyAdvancedFilters failed: %v", err)
			}

			sql, args, err := q.ToSql()
			if err != nil {
				t.Fatalf("ToSql failed: %v", err)
			}

			if sql != tt.wantSQL {
				t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", tt.wantSQL, sql)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("Args count mismatch\nwant: %d\ngot:  %d", len(tt.wantArgs), len(args))
			}
			if args[0] != tt.wantArgs[0] {
				t.Errorf("Args mismatch\nwant: %v\ngot:  %v", tt.wantArgs[0], args[0])
			}
		})
	}
}

func TestApplyAdvancedFilters_RejectsUnknownColumn(t *testing.T) {
	repo := newTestRepo()

	_, err := repo.applyAdvancedFilters(repo.baseSelect(), []filter.Item{
		{Field: "evil; DROP TABLE test_table", Operator: filter.Equal, Value: 1},
	})
	if err == nil {
		t.Fatal("expected error for unknown column")
	}
}

func TestParseOrderBy(t *testing.T) {
	repo := newTestRepo()

	got, err := repo.parseOrderBy("-col1")
	if err != nil {
		t.Fatalf("parseOrderBy failed: %v", err)
	}
	if got != "col1 DESC" {
		t.Errorf("want %q, got %q", "col1 DESC", got)
	}

	if _, err := repo.parseOrderBy("unknown_col"); err == nil {
		t.Fatal("expected error for unknown orderBy column")
	}
}
