package category

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/core/apperror"
)

func TestCategory_Validate(t *testing.T) {
	c := NewCategory("CAT-001", "Beverages")
	require.NoError(t, c.Validate(context.Background()))

	c.Name = ""
	err := c.Validate(context.Background())
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}
