package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("client123")
	require.NoError(t, err)
	assert.NotEqual(t, "client123", h)

	assert.True(t, CheckPassword(h, "client123"))
	assert.False(t, CheckPassword(h, "client124"))
	assert.False(t, CheckPassword("not-a-hash", "client123"))
}
