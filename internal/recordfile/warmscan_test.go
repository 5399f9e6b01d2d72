package recordfile

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWarmScan_YieldsSameSequenceAsScan(t *testing.T) {
	file, _, _ := newTestFile(t, 16)
	var rids []Rid
	for i := 0; i < 250; i++ {
		rid, err := file.InsertRecord(rec(fmt.Sprintf("r%d", i)))
		require.NoError(t, err)
		rids = append(rids, rid)
	}

	ws, err := NewWarmScan(file, 2)
	require.NoError(t, err)

	var seen []Rid
	for !ws.IsEnd() {
		seen = append(seen, ws.Rid())
		_, err := ws.Next()
		require.NoError(t, err)
	}
	require.Equal(t, rids, seen)
}

func TestWarmScan_EmptyFile(t *testing.T) {
	file, _, _ := newTestFile(t, 8)
	ws, err := NewWarmScan(file, 4)
	require.NoError(t, err)
	require.True(t, ws.IsEnd())
}
