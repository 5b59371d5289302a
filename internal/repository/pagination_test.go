package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalPages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		total, size, want int
	}{
		{0, 5, 1},
		{5, 5, 1},
		{6, 5, 2},
		{11, 5, 3},
		{-3, 5, 1},
	}
	for _, tt := range tests {
		got, err := TotalPages(tt.total, tt.size)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "total=%d size=%d", tt.total, tt.size)
	}

	_, err := TotalPages(10, 0)
	assert.ErrorIs(t, err, ErrInvalidPageSize)
}

func TestPageSlice(t *testing.T) {
	t.Parallel()

	items := []int{1, 2, 3, 4, 5, 6, 7}

	first, err := PageSlice(items, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, first)

	last, err := PageSlice(items, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{7}, last)

	zero, err := PageSlice(items, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, zero)

	beyond, err := PageSlice(items, 9, 3)
	require.NoError(t, err)
	assert.Empty(t, beyond)

	_, err = PageSlice(items, 1, -1)
	assert.ErrorIs(t, err, ErrInvalidPageSize)
}
