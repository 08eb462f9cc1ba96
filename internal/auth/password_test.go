package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery", hash)

	assert.NoError(t, ComparePassword(hash, "correct horse battery"))
	assert.Error(t, ComparePassword(hash, "wrong password"))
}

func TestHashPasswordProducesDistinctHashes(t *testing.T) {
	first, err := HashPassword("same input", bcrypt.MinCost)
	require.NoError(t, err)
	second, err := HashPassword("same input", bcrypt.MinCost)
	require.NoError(t, err)

	// salted, so two hashes of the same input must differ
	assert.NotEqual(t, first, second)
}

func TestCompareDummyNeverMatches(t *testing.T) {
	// the sentinel hash must stay valid bcrypt so the comparison burns the
	// full cost on the unknown-email login path
	err := bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte("anything"))
	assert.ErrorIs(t, err, bcrypt.ErrMismatchedHashAndPassword)

	CompareDummy("anything")
}
