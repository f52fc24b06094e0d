// Package filter describes ad-hoc list filters applied by repositories.
package filter

// ComparisonType enumerates the supported comparison operators.
type ComparisonType string

const (
	Equal          ComparisonType = "eq"
	NotEqual       ComparisonType = "neq"
	LessOrEqual    ComparisonType = "lte"
	GreaterOrEqual ComparisonType = "gte"
	InList         ComparisonType = "in"
	NotInList      ComparisonType = "nin"
	Contains       ComparisonType = "contains"  // ILIKE %val%
	NotContains    ComparisonType = "ncontains" // NOT ILIKE %val%

	IsNull    ComparisonType = "null"
	IsNotNull ComparisonType = "not_null"
)

// Item represents a single filter condition.
type Item struct {
	Field    string         `json:"field"`    // column name (snake_case)
	Operator ComparisonType `json:"operator"` // comparison operator
	Value    any            `json:"value"`    // value (string, number, ID list)
}
