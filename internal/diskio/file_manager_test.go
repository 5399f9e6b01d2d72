package diskio

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileManager_AllocateWriteRead(t *testing.T) {
	dir := t.TempDir()
	m := NewFileManager()
	fd, err := m.Open(filepath.Join(dir, "data.db"), 4096)
	require.NoError(t, err)

	pageNo, err := m.AllocatePage(fd)
	require.NoError(t, err)
	require.Equal(t, int64(0), pageNo)

	buf := make([]byte, 4096)
	require.NoError(t, m.ReadPage(fd, pageNo, buf))
	for _, b := range buf {
		require.Equal(t, byte(0), b)
	}

	buf[0] = 7
	require.NoError(t, m.WritePage(fd, pageNo, buf))

	readBack := make([]byte, 4096)
	require.NoError(t, m.ReadPage(fd, pageNo, readBack))
	require.Equal(t, byte(7), readBack[0])
}

func TestFileManager_AllocatePage_Monotonic(t *testing.T) {
	dir := t.TempDir()
	m := NewFileManager()
	fd, err := m.Open(filepath.Join(dir, "data.db"), 4096)
	require.NoError(t, err)

	for want := int64(0); want < 5; want++ {
		got, err := m.AllocatePage(fd)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestFileManager_ReadPage_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.db")

	m1 := NewFileManager()
	fd1, err := m1.Open(path, 4096)
	require.NoError(t, err)
	pageNo, err := m1.AllocatePage(fd1)
	require.NoError(t, err)
	buf := make([]byte, 4096)
	buf[100] = 42
	require.NoError(t, m1.WritePage(fd1, pageNo, buf))
	require.NoError(t, m1.Close(fd1))

	m2 := NewFileManager()
	fd2, err := m2.Open(path, 4096)
	require.NoError(t, err)
	readBack := make([]byte, 4096)
	require.NoError(t, m2.ReadPage(fd2, pageNo, readBack))
	require.Equal(t, byte(42), readBack[100])
}

func TestFileManager_UnknownFile(t *testing.T) {
	m := NewFileManager()
	buf := make([]byte, 4096)
	err := m.ReadPage(42, 0, buf)
	require.ErrorIs(t, err, ErrUnknownFile)
}
