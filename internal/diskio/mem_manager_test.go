package diskio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemManager_RoundTrip(t *testing.T) {
	m := NewMemManager(4096)
	fd := m.Open()

	pageNo, err := m.AllocatePage(fd)
	require.NoError(t, err)
	require.Equal(t, int64(0), pageNo)

	buf := make([]byte, 4096)
	buf[3] = 9
	require.NoError(t, m.WritePage(fd, pageNo, buf))

	readBack := make([]byte, 4096)
	require.NoError(t, m.ReadPage(fd, pageNo, readBack))
	require.Equal(t, byte(9), readBack[3])
}

func TestMemManager_UnwrittenPageIsZero(t *testing.T) {
	m := NewMemManager(4096)
	fd := m.Open()
	readBack := make([]byte, 4096)
	require.NoError(t, m.ReadPage(fd, 5, readBack))
	for _, b := range readBack {
		require.Equal(t, byte(0), b)
	}
}
