package diskio

import (
	"fmt"
	"sync"
)

// MemManager is an in-memory Manager, used by internal/buffer and
// internal/recordfile tests so they don't need a real filesystem. It
// implements the same zero-fill-on-unwritten-page contract as FileManager.
type MemManager struct {
	mu        sync.Mutex
	pageSize  int
	pages     map[FileID]map[int64][]byte
	pageCount map[FileID]int64
	next      FileID
}

// NewMemManager returns a MemManager whose pages are all pageSize bytes.
func NewMemManager(pageSize int) *MemManager {
	return &MemManager{
		pageSize:  pageSize,
		pages:     make(map[FileID]map[int64][]byte),
		pageCount: make(map[FileID]int64),
	}
}

// Open registers a new, empty in-memory file and returns its FileID.
func (m *MemManager) Open() FileID {
	m.mu.Lock()
	defer m.mu.Unlock()
	fd := m.next
	m.next++
	m.pages[fd] = make(map[int64][]byte)
	m.pageCount[fd] = 0
	return fd
}

func (m *MemManager) ReadPage(fd FileID, pageNo int64, dst []byte) error {
	if len(dst) != m.pageSize {
		return fmt.Errorf("diskio: dst must be exactly %d bytes, got %d", m.pageSize, len(dst))
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.pages[fd]
	if !ok {
		return ErrUnknownFile
	}
	if buf, ok := file[pageNo]; ok {
		copy(dst, buf)
		return nil
	}
	for i := range dst {
		dst[i] = 0
	}
	return nil
}

func (m *MemManager) WritePage(fd FileID, pageNo int64, src []byte) error {
	if len(src) != m.pageSize {
		return fmt.Errorf("diskio: src must be exactly %d bytes, got %d", m.pageSize, len(src))
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.pages[fd]
	if !ok {
		return ErrUnknownFile
	}
	buf := make([]byte, m.pageSize)
	copy(buf, src)
	file[pageNo] = buf
	if pageNo+1 > m.pageCount[fd] {
		m.pageCount[fd] = pageNo + 1
	}
	return nil
}

func (m *MemManager) AllocatePage(fd FileID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pages[fd]; !ok {
		return 0, ErrUnknownFile
	}
	pageNo := m.pageCount[fd]
	m.pageCount[fd]++
	return pageNo, nil
}

var _ Manager = (*MemManager)(nil)
