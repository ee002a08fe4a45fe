package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/rakesh-tirumalaparapu/zipp/pkg/domain-errors"
)

func TestParseRole(t *testing.T) {
	t.Run("accepts any casing", func(t *testing.T) {
		for _, in := range []string{"maker", "MAKER", " Maker "} {
			r, err := ParseRole(in)
			require.NoError(t, err)
			assert.Equal(t, RoleMaker, r)
		}
	})

	t.Run("rejects unknown and empty roles", func(t *testing.T) {
		for _, in := range []string{"", "   ", "admin", "maker;"} {
			_, err := ParseRole(in)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		}
	})

	t.Run("only makers and checkers are staff", func(t *testing.T) {
		assert.True(t, RoleMaker.IsStaff())
		assert.True(t, RoleChecker.IsStaff())
		assert.False(t, RoleCustomer.IsStaff())
	})
}
