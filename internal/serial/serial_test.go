package serial

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocatorMonotone(t *testing.T) {
	a := NewAllocator(0)
	n1, err := a.Next()
	require.NoError(t, err)
	n2, err := a.Next()
	require.NoError(t, err)
	require.Greater(t, n2, n1)
	require.Equal(t, n2, a.Last())
}

func TestRestoreNeverGoesBackwards(t *testing.T) {
	a := NewAllocator(10)
	a.Restore(3)
	require.EqualValues(t, 10, a.Last())
	a.Restore(20)
	require.EqualValues(t, 20, a.Last())
}
