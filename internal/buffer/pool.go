// Package buffer implements the buffer pool manager: a fixed array of
// frames, a page table mapping PageIds to frames, and pin/unpin/fetch/
// new/delete/flush operations over them, with LRU-driven eviction.
//
// Grounded on internal/bufferpool/pool.go and internal/bufferpool/
// global_pool.go (frame/page-table shape, free-slot-before-eviction scan
// order, slog structured logging around each branch), with the CLOCK
// replacer swapped for internal/replacer.LRU and the pin/dirty rules
// tightened to spec section 4.2's monotonic-dirty, boolean-return
// contract.
package buffer

import (
	"fmt"
	"log/slog"
	"sync"

	"go.uber.org/multierr"

	"github.com/nvdb/recordcore/internal/diskio"
	"github.com/nvdb/recordcore/internal/replacer"
)

const logPrefix = "buffer: "

// ErrNoFreeFrame is PoolExhausted: every frame is pinned and the replacer
// has nothing to offer (spec section 7).
var ErrNoFreeFrame = fmt.Errorf("buffer: no free frame available (pool exhausted)")

// Pool is the buffer pool manager described in spec section 4.2. A single
// mutex serializes every public operation; the replacer has its own,
// independent mutex, and the lock order is always (pool, replacer).
type Pool struct {
	mu sync.Mutex

	frames     []*Frame
	pageTable  map[PageId]int
	freeFrames []int
	replacer   *replacer.LRU
	disk       diskio.Manager
	pageSize   int
	logger     *slog.Logger
}

// NewPool creates a pool of capacity frames, each pageSize bytes, backed
// by disk. A nil logger defaults to slog.Default(), matching the
// teacher's own optional-logger convention.
func NewPool(disk diskio.Manager, capacity, pageSize int, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	frames := make([]*Frame, capacity)
	free := make([]int, capacity)
	for i := 0; i < capacity; i++ {
		frames[i] = newFrame(i, pageSize)
		free[i] = i
	}
	return &Pool{
		frames:     frames,
		pageTable:  make(map[PageId]int),
		freeFrames: free,
		replacer:   replacer.New(),
		disk:       disk,
		pageSize:   pageSize,
		logger:     logger,
	}
}

// Capacity returns the number of frames the pool manages.
func (p *Pool) Capacity() int { return len(p.frames) }

// PageSize returns the fixed page size every frame in this pool holds.
func (p *Pool) PageSize() int { return p.pageSize }

// findVictimFrame implements spec section 4.2.1: prefer a genuinely free
// frame, otherwise ask the replacer for one to evict. Caller holds p.mu.
func (p *Pool) findVictimFrame() (int, bool) {
	if len(p.freeFrames) > 0 {
		idx := p.freeFrames[0]
		p.freeFrames = p.freeFrames[1:]
		return idx, true
	}
	return p.replacer.Victim()
}

// replaceFrameContents implements spec section 4.2.2. It is the only
// path that may change a frame's identity: it always updates the page
// table and the frame's PageId, regardless of whether the old page was
// dirty — a conditional "only if dirty" path here is the exact bug
// pattern spec section 4.2.2 warns against. Caller holds p.mu and is
// responsible for setting pin count and replacer tracking afterward.
func (p *Pool) replaceFrameContents(frameIdx int, newPageId PageId) error {
	f := p.frames[frameIdx]

	if f.PageId.IsValid() {
		delete(p.pageTable, f.PageId)
	}

	if f.Dirty {
		if err := p.disk.WritePage(f.PageId.Fd, f.PageId.PageNo, f.Data); err != nil {
			return fmt.Errorf("buffer: flush frame %d before replace: %w", frameIdx, err)
		}
		f.Dirty = false
	}

	f.PageId = newPageId
	f.zero()
	p.pageTable[newPageId] = frameIdx
	return nil
}

// FetchPage returns the frame holding pageId, pinning it. If the page is
// not already resident, it is loaded from disk into a victim frame. ok is
// false if the pool is exhausted, or if writing back the victim's dirty
// bytes or reading the page from disk fails (spec section 4.2.3).
func (p *Pool) FetchPage(pageId PageId) (*Frame, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if idx, ok := p.pageTable[pageId]; ok {
		f := p.frames[idx]
		f.PinCount++
		p.replacer.Pin(idx)
		p.logger.Debug(logPrefix+"fetch hit", "pageId", pageId.String(), "frame", idx, "pin", f.PinCount)
		return f, true
	}

	idx, ok := p.findVictimFrame()
	if !ok {
		p.logger.Debug(logPrefix + "fetch: pool exhausted")
		return nil, false
	}

	if err := p.replaceFrameContents(idx, pageId); err != nil {
		p.logger.Warn(logPrefix+"fetch: replace frame contents failed", "frame", idx, "err", err)
		return nil, false
	}

	f := p.frames[idx]
	if err := p.disk.ReadPage(pageId.Fd, pageId.PageNo, f.Data); err != nil {
		p.logger.Warn(logPrefix+"fetch: read page failed", "pageId", pageId.String(), "err", err)
		delete(p.pageTable, pageId)
		f.PageId = InvalidPageId
		p.freeFrames = append(p.freeFrames, idx)
		return nil, false
	}

	f.PinCount = 1
	p.replacer.Pin(idx)
	p.logger.Debug(logPrefix+"fetch miss loaded", "pageId", pageId.String(), "frame", idx)
	return f, true
}

// NewPage allocates a fresh page number in file fd via the disk manager,
// binds it to a victim frame (zero-filled, pinned once), and returns the
// frame together with its new PageId (spec section 4.2.4).
func (p *Pool) NewPage(fd diskio.FileID) (*Frame, PageId, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.findVictimFrame()
	if !ok {
		p.logger.Debug(logPrefix + "new_page: pool exhausted")
		return nil, InvalidPageId, false
	}

	pageNo, err := p.disk.AllocatePage(fd)
	if err != nil {
		p.logger.Warn(logPrefix+"new_page: allocate_page failed", "fd", fd, "err", err)
		p.freeFrames = append(p.freeFrames, idx)
		return nil, InvalidPageId, false
	}

	pageId := PageId{Fd: fd, PageNo: pageNo}
	if err := p.replaceFrameContents(idx, pageId); err != nil {
		p.logger.Warn(logPrefix+"new_page: replace frame contents failed", "frame", idx, "err", err)
		p.freeFrames = append(p.freeFrames, idx)
		return nil, InvalidPageId, false
	}

	f := p.frames[idx]
	f.PinCount = 1
	p.replacer.Pin(idx)
	p.logger.Debug(logPrefix+"new_page allocated", "pageId", pageId.String(), "frame", idx)
	return f, pageId, true
}

// UnpinPage decrements pageId's pin count and ORs markDirty into its
// dirty flag (monotonic: a true dirty flag is never cleared here). Once
// the pin count reaches zero the frame becomes evictable. Returns false
// if pageId is not resident or was already fully unpinned (spec 4.2.5).
func (p *Pool) UnpinPage(pageId PageId, markDirty bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.pageTable[pageId]
	if !ok {
		return false
	}
	f := p.frames[idx]
	if f.PinCount <= 0 {
		p.logger.Warn(logPrefix+"unpin: pin count already zero", "pageId", pageId.String())
		return false
	}

	f.PinCount--
	if markDirty {
		f.Dirty = true
	}
	if f.PinCount == 0 {
		p.replacer.Unpin(idx)
	}
	p.logger.Debug(logPrefix+"unpin", "pageId", pageId.String(), "pin", f.PinCount, "dirty", f.Dirty)
	return true
}

// FlushPage unconditionally writes pageId's bytes to disk and clears its
// dirty flag, without affecting pinning. Returns false if pageId is not
// resident (spec 4.2.6).
func (p *Pool) FlushPage(pageId PageId) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flushLocked(pageId)
}

func (p *Pool) flushLocked(pageId PageId) bool {
	idx, ok := p.pageTable[pageId]
	if !ok {
		return false
	}
	f := p.frames[idx]
	if err := p.disk.WritePage(pageId.Fd, pageId.PageNo, f.Data); err != nil {
		p.logger.Warn(logPrefix+"flush failed", "pageId", pageId.String(), "err", err)
		return false
	}
	f.Dirty = false
	return true
}

// FlushAllPages flushes every resident page of file fd (spec 4.2.7). All
// per-page failures are collected and returned together via
// go.uber.org/multierr instead of stopping at the first one, so a caller
// flushing a whole file on shutdown learns about every page that failed
// to persist.
func (p *Pool) FlushAllPages(fd diskio.FileID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Snapshot first: flushLocked mutates pageTable-adjacent state (the
	// dirty flag) but never pageTable itself, so this is purely to avoid
	// iterating a map while reasoning about it under one lock acquisition,
	// matching spec section 9's guidance to acquire the pool latch (or a
	// snapshot of page IDs) rather than iterate lock-free.
	var toFlush []PageId
	for pid := range p.pageTable {
		if pid.Fd == fd {
			toFlush = append(toFlush, pid)
		}
	}

	var errs error
	for _, pid := range toFlush {
		if !p.flushLocked(pid) {
			errs = multierr.Append(errs, fmt.Errorf("buffer: flush page %s failed", pid.String()))
		}
	}
	return errs
}

// DeletePage removes pageId from the pool entirely. Returns true if
// pageId was not resident (nothing to do), or once removed; returns
// false if pageId is pinned (spec 4.2.8). The deleted frame is flushed
// if dirty, zeroed, and returned to the free list; it must not remain
// tracked by the replacer.
func (p *Pool) DeletePage(pageId PageId) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.pageTable[pageId]
	if !ok {
		return true
	}
	f := p.frames[idx]
	if f.PinCount != 0 {
		return false
	}

	if f.Dirty {
		if !p.flushLocked(pageId) {
			p.logger.Warn(logPrefix+"delete_page: flush failed, proceeding anyway", "pageId", pageId.String())
		}
	}

	f.zero()
	delete(p.pageTable, pageId)
	f.PageId = InvalidPageId
	p.replacer.Pin(idx) // ensure it is not left tracked as evictable
	p.freeFrames = append(p.freeFrames, idx)
	return true
}

// Stats summarizes pool occupancy for diagnostics (supplemented, see
// SPEC_FULL.md section 11).
type Stats struct {
	Capacity     int
	ResidentPages int
	PinnedFrames  int
	DirtyFrames   int
	FreeFrames    int
}

// Stats returns a snapshot of the pool's current occupancy.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Stats{
		Capacity:      len(p.frames),
		ResidentPages: len(p.pageTable),
		FreeFrames:    len(p.freeFrames),
	}
	for _, f := range p.frames {
		if f.IsPinned() {
			s.PinnedFrames++
		}
		if f.Dirty {
			s.DirtyFrames++
		}
	}
	return s
}
