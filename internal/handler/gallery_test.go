package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPermutation(t *testing.T) {
	current := []uint64{1, 2, 3}

	assert.True(t, isPermutation(current, []uint64{1, 2, 3}))
	assert.True(t, isPermutation(current, []uint64{3, 1, 2}))

	// Partial lists are not a total order.
	assert.False(t, isPermutation(current, []uint64{1, 2}))
	// Strangers and duplicates are rejected.
	assert.False(t, isPermutation(current, []uint64{1, 2, 4}))
	assert.False(t, isPermutation(current, []uint64{1, 2, 2}))
	assert.False(t, isPermutation(current, []uint64{1, 2, 3, 4}))
}

func TestIsPermutationEmpty(t *testing.T) {
	assert.True(t, isPermutation(nil, nil))
	assert.True(t, isPermutation([]uint64{}, []uint64{}))
	assert.False(t, isPermutation([]uint64{1}, nil))
}
