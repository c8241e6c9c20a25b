package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPin(t *testing.T) {
	t.Parallel()

	hash, err := HashPin("1234")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, VerifyPin(hash, "1234"))
	assert.False(t, VerifyPin(hash, "4321"))
	assert.False(t, VerifyPin(nil, "1234"))
}
