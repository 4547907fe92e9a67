package stack64

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPushPopBasic(t *testing.T) {
	s := New()
	require.NoError(t, s.Push(1))
	require.NoError(t, s.Push(2))
	require.NoError(t, s.Push(3))
	require.Equal(t, 3, s.Size())
	require.Equal(t, uint64(3), s.Pop())
	require.Equal(t, uint64(2), s.Pop())
	require.Equal(t, 1, s.Size())
}

func TestReserveBlockZeroesSlots(t *testing.T) {
	s := New()
	require.NoError(t, s.Push(42))
	view, err := s.ReserveBlock(3)
	require.NoError(t, err)
	require.Equal(t, 3, view.Len())
	for i := 0; i < 3; i++ {
		v, err := view.Get(i)
		require.NoError(t, err)
		require.Equal(t, uint64(0), v)
	}
	require.NoError(t, view.Set(1, 99))
	v, err := view.Get(1)
	require.NoError(t, err)
	require.Equal(t, uint64(99), v)
}

func TestViewInvalidatedByReallocation(t *testing.T) {
	s := NewWithCapacity(2)
	view, err := s.ReserveBlock(2)
	require.NoError(t, err)
	require.True(t, view.Valid())

	// Force growth beyond initial capacity.
	for i := 0; i < 100; i++ {
		require.NoError(t, s.Push(uint64(i)))
	}

	require.False(t, view.Valid())
	_, err = view.Get(0)
	require.ErrorIs(t, err, ErrViewInvalidated)
	require.ErrorIs(t, view.Set(0, 1), ErrViewInvalidated)
}

func TestRemoveAllElementsInvalidatesViews(t *testing.T) {
	s := New()
	view, err := s.ReserveBlock(4)
	require.NoError(t, err)
	s.RemoveAllElements()
	require.False(t, view.Valid())
	require.Equal(t, 0, s.Size())
	require.True(t, s.IsEmpty())
}

func TestPopFrameReturnsRemovedSlots(t *testing.T) {
	s := New()
	require.NoError(t, s.Push(10))
	view, err := s.ReserveBlock(2)
	require.NoError(t, err)
	require.NoError(t, view.Set(0, 111))
	require.NoError(t, view.Set(1, 222))

	popped := s.PopFrame(2)
	require.Equal(t, 2, popped.Len())
	v0, err := popped.Get(0)
	require.NoError(t, err)
	require.Equal(t, uint64(111), v0)
	v1, err := popped.Get(1)
	require.NoError(t, err)
	require.Equal(t, uint64(222), v1)
	require.Equal(t, 1, s.Size())
}

func TestLastBlockMatchesReserveBlock(t *testing.T) {
	s := New()
	require.NoError(t, s.Push(7))
	reserved, err := s.ReserveBlock(3)
	require.NoError(t, err)
	require.NoError(t, reserved.Set(2, 55))

	last := s.LastBlock(3)
	v, err := last.Get(2)
	require.NoError(t, err)
	require.Equal(t, uint64(55), v)
}

func TestMaxCapacityRaisesOverflow(t *testing.T) {
	s := New()
	s.SetMaxCapacity(4)
	for i := 0; i < 4; i++ {
		require.NoError(t, s.Push(uint64(i)))
	}
	require.ErrorIs(t, s.Push(99), ErrStackOverflow)
}
