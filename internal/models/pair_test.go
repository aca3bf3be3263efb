package models_test

import (
	"testing"

	"studiohub/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

// TestCanonicalPair_OrderIndependent verifies that the pair identity is the
// same no matter which side initiates.
func TestCanonicalPair_OrderIndependent(t *testing.T) {
	cases := []struct {
		a, b   uint
		lo, hi uint
	}{
		{7, 42, 7, 42},
		{42, 7, 7, 42},
		{1, 2, 1, 2},
		{1000, 3, 3, 1000},
	}

	for _, tc := range cases {
		lo, hi := models.CanonicalPair(tc.a, tc.b)
		assert.Equal(t, tc.lo, lo)
		assert.Equal(t, tc.hi, hi)

		// Swapping the arguments must not change the identity.
		lo2, hi2 := models.CanonicalPair(tc.b, tc.a)
		assert.Equal(t, lo, lo2)
		assert.Equal(t, hi, hi2)
	}
}

func TestPairKey(t *testing.T) {
	assert.Equal(t, "7-42", models.PairKey(7, 42))
	assert.Equal(t, "7-42", models.PairKey(42, 7))
	assert.NotEqual(t, models.PairKey(7, 42), models.PairKey(7, 43))
}
