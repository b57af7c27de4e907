package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("s3cure-password")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "s3cure-password", hash)

	assert.True(t, Verify("s3cure-password", hash))
	assert.False(t, Verify("wrong-password", hash))
}

func TestHash_SamePasswordDifferentHashes(t *testing.T) {
	h1, err := Hash("s3cure-password")
	require.NoError(t, err)
	h2, err := Hash("s3cure-password")
	require.NoError(t, err)
	// Salted hashing: identical inputs never produce identical digests.
	assert.NotEqual(t, h1, h2)
	assert.True(t, Verify("s3cure-password", h1))
	assert.True(t, Verify("s3cure-password", h2))
}

func TestVerify_CorruptHash_ReturnsFalse(t *testing.T) {
	assert.False(t, Verify("anything", ""))
	assert.False(t, Verify("anything", "not-a-bcrypt-hash"))
	assert.False(t, Verify("anything", "$2a$10$invalid"))
}
