package buffer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nvdb/recordcore/internal/diskio"
)

const testPageSize = 4096

func newTestPool(t *testing.T, capacity int) (*Pool, diskio.FileID, *diskio.MemManager) {
	t.Helper()
	disk := diskio.NewMemManager(testPageSize)
	fd := disk.Open()
	pool := NewPool(disk, capacity, testPageSize, nil)
	return pool, fd, disk
}

func allocPage(t *testing.T, disk *diskio.MemManager, fd diskio.FileID) PageId {
	t.Helper()
	pageNo, err := disk.AllocatePage(fd)
	require.NoError(t, err)
	return PageId{Fd: fd, PageNo: pageNo}
}

func TestPool_FetchPage_LoadsAndPins(t *testing.T) {
	pool, fd, disk := newTestPool(t, 4)
	pid := allocPage(t, disk, fd)

	f, ok := pool.FetchPage(pid)
	require.True(t, ok)
	require.Equal(t, pid, f.PageId)
	require.Equal(t, 1, f.PinCount)
	require.False(t, f.Dirty)

	f2, ok := pool.FetchPage(pid)
	require.True(t, ok)
	require.Same(t, f, f2)
	require.Equal(t, 2, f.PinCount)
}

func TestPool_FetchPage_PoolExhausted(t *testing.T) {
	pool, fd, disk := newTestPool(t, 1)
	pid0 := allocPage(t, disk, fd)
	pid1 := allocPage(t, disk, fd)

	_, ok := pool.FetchPage(pid0)
	require.True(t, ok)

	_, ok = pool.FetchPage(pid1)
	require.False(t, ok, "pid0 is still pinned, no frame available")
}

func TestPool_NewPage_ZeroFilled(t *testing.T) {
	pool, fd, _ := newTestPool(t, 2)

	f, pid, ok := pool.NewPage(fd)
	require.True(t, ok)
	require.Equal(t, int64(0), pid.PageNo)
	require.Equal(t, 1, f.PinCount)
	for _, b := range f.Data {
		require.Equal(t, byte(0), b)
	}
}

func TestPool_UnpinPage_MonotonicDirty(t *testing.T) {
	pool, fd, disk := newTestPool(t, 1)
	pid := allocPage(t, disk, fd)

	f, ok := pool.FetchPage(pid)
	require.True(t, ok)
	f.Data[0] = 1

	require.True(t, pool.UnpinPage(pid, true))
	require.Equal(t, 0, f.PinCount)
	require.True(t, f.Dirty)

	// Pin again then unpin with markDirty=false: dirty must stay true.
	_, ok = pool.FetchPage(pid)
	require.True(t, ok)
	require.True(t, pool.UnpinPage(pid, false))
	require.True(t, f.Dirty, "dirty flag must be monotonic-up, never cleared by unpin")
}

func TestPool_UnpinPage_OverUnpinFails(t *testing.T) {
	pool, fd, disk := newTestPool(t, 1)
	pid := allocPage(t, disk, fd)

	_, ok := pool.FetchPage(pid)
	require.True(t, ok)
	require.True(t, pool.UnpinPage(pid, false))
	require.False(t, pool.UnpinPage(pid, false), "second unpin of already-zero pin count must fail")
}

func TestPool_UnpinPage_UnknownPageFails(t *testing.T) {
	pool, fd, _ := newTestPool(t, 1)
	require.False(t, pool.UnpinPage(PageId{Fd: fd, PageNo: 7}, false))
}

func TestPool_Eviction_PreservesIdentity(t *testing.T) {
	pool, fd, disk := newTestPool(t, 3)
	var pids []PageId
	for i := 0; i < 3; i++ {
		pid := allocPage(t, disk, fd)
		_, ok := pool.FetchPage(pid)
		require.True(t, ok)
		pids = append(pids, pid)
	}
	for _, pid := range pids {
		require.True(t, pool.UnpinPage(pid, false))
	}

	pid4 := allocPage(t, disk, fd)
	f4, ok := pool.FetchPage(pid4)
	require.True(t, ok)
	require.Equal(t, pid4, f4.PageId)

	_, stillResident := pool.pageTable[pids[0]]
	require.False(t, stillResident, "least-recently-unpinned page must have been evicted")
	_, resident := pool.pageTable[pid4]
	require.True(t, resident)
}

func TestPool_DirtyWriteBack_OnEviction(t *testing.T) {
	pool, fd, disk := newTestPool(t, 1)
	pid0 := allocPage(t, disk, fd)

	f, ok := pool.FetchPage(pid0)
	require.True(t, ok)
	f.Data[5] = 77
	require.True(t, pool.UnpinPage(pid0, true))

	pid1 := allocPage(t, disk, fd)
	_, ok = pool.FetchPage(pid1)
	require.True(t, ok)

	readBack := make([]byte, testPageSize)
	require.NoError(t, disk.ReadPage(fd, pid0.PageNo, readBack))
	require.Equal(t, byte(77), readBack[5])
}

func TestPool_DeletePage_PinGuard(t *testing.T) {
	pool, fd, disk := newTestPool(t, 2)
	pid := allocPage(t, disk, fd)

	_, ok := pool.FetchPage(pid)
	require.True(t, ok)
	require.False(t, pool.DeletePage(pid), "pinned page must not be deletable")

	require.True(t, pool.UnpinPage(pid, false))
	require.True(t, pool.DeletePage(pid))

	stats := pool.Stats()
	require.Equal(t, 2, stats.FreeFrames)
	require.Equal(t, 0, stats.ResidentPages)
}

func TestPool_DeletePage_AbsentIsNoOp(t *testing.T) {
	pool, fd, _ := newTestPool(t, 1)
	require.True(t, pool.DeletePage(PageId{Fd: fd, PageNo: 123}))
}

func TestPool_FlushAllPages(t *testing.T) {
	pool, fd, disk := newTestPool(t, 2)
	pid0 := allocPage(t, disk, fd)
	pid1 := allocPage(t, disk, fd)

	f0, ok := pool.FetchPage(pid0)
	require.True(t, ok)
	f0.Data[0] = 1
	require.True(t, pool.UnpinPage(pid0, true))

	f1, ok := pool.FetchPage(pid1)
	require.True(t, ok)
	f1.Data[0] = 2
	require.True(t, pool.UnpinPage(pid1, true))

	require.NoError(t, pool.FlushAllPages(fd))
	require.False(t, f0.Dirty)
	require.False(t, f1.Dirty)
}
