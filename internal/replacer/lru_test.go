package replacer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLRU_VictimOrder(t *testing.T) {
	r := New()
	r.Unpin(1)
	r.Unpin(2)
	r.Unpin(3)
	require.Equal(t, 3, r.Size())

	id, ok := r.Victim()
	require.True(t, ok)
	require.Equal(t, 1, id)

	id, ok = r.Victim()
	require.True(t, ok)
	require.Equal(t, 2, id)

	require.Equal(t, 1, r.Size())
}

func TestLRU_Victim_EmptyReturnsFalse(t *testing.T) {
	r := New()
	_, ok := r.Victim()
	require.False(t, ok)
}

func TestLRU_Pin_RemovesFromTracking(t *testing.T) {
	r := New()
	r.Unpin(1)
	r.Unpin(2)
	r.Pin(1)
	require.Equal(t, 1, r.Size())

	id, ok := r.Victim()
	require.True(t, ok)
	require.Equal(t, 2, id)
}

func TestLRU_Pin_IdempotentWhenNotTracked(t *testing.T) {
	r := New()
	r.Pin(99) // no-op, never tracked
	require.Equal(t, 0, r.Size())
}

func TestLRU_Unpin_IdempotentDoesNotReorder(t *testing.T) {
	// Frame 1 unpinned, then frame 2 unpinned, then frame 1 unpinned
	// again while still tracked: order must stay [2, 1] front-to-back,
	// meaning 1 (the back) is still the next victim, not 2.
	r := New()
	r.Unpin(1)
	r.Unpin(2)
	r.Unpin(1) // no-op: 1 is already tracked

	id, ok := r.Victim()
	require.True(t, ok)
	require.Equal(t, 1, id, "victim order must reflect time since pin-count-hit-zero, not last unpin call")
}

func TestLRU_OrderingContract_UnpinBeforeIsVictimBefore(t *testing.T) {
	r := New()
	r.Unpin(10)
	r.Unpin(20)
	r.Unpin(30)

	var order []int
	for {
		id, ok := r.Victim()
		if !ok {
			break
		}
		order = append(order, id)
	}
	require.Equal(t, []int{10, 20, 30}, order)
}
