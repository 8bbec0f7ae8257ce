package sec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.NoError(t, ComparePassword("correct horse battery staple", hash))
	assert.Error(t, ComparePassword("wrong password", hash))
	assert.Error(t, ComparePassword("", hash))
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("secret123")
	require.NoError(t, err)
	h2, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestHashPasswordTooLong(t *testing.T) {
	t.Parallel()

	long := make([]byte, 80)
	for i := range long {
		long[i] = 'a'
	}
	_, err := HashPassword(string(long))
	require.Error(t, err)
}
