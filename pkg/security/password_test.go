package security_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakibul/healthdir-api/pkg/security"
)

func TestHashAndCompare(t *testing.T) {
	hasher := security.NewBcryptHasher(4)

	hash, err := hasher.Hash("s3cret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.NoError(t, hasher.Compare(hash, "s3cret-pass"))
	assert.Error(t, hasher.Compare(hash, "wrong-password"))
}

func TestHashesAreSalted(t *testing.T) {
	hasher := security.NewBcryptHasher(4)

	first, err := hasher.Hash("s3cret-pass")
	require.NoError(t, err)
	second, err := hasher.Hash("s3cret-pass")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestOutOfRangeCostFallsBack(t *testing.T) {
	hasher := security.NewBcryptHasher(99)

	hash, err := hasher.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NoError(t, hasher.Compare(hash, "s3cret-pass"))
}
