// Package recordfile is the record file handle and scan described in
// spec sections 4.3 and 4.4: it interprets pages fetched through a
// buffer.Pool as slotted pages carrying fixed-size records, maintains
// the file-level free-page chain, and provides insert/delete/update/get
// plus a forward iterator over the live records.
//
// Grounded on internal/heap/table.go's RecordFile (file-header-resident
// bookkeeping fetched through a pool, page-handle helpers) for overall
// shape, with the page layout itself departing from the teacher's
// variable-length line-pointer design in favor of the fixed-record +
// occupancy-bitmap design spec section 3 requires — the teacher's
// offset-arithmetic technique (GetU16/PutU16-style) is kept via
// internal/bx, the bitmap technique is grounded on duber000-kuzu's
// phase1/page-manager/bitmap.go.
package recordfile

import (
	"fmt"
	"log/slog"

	"github.com/nvdb/recordcore/internal/buffer"
	"github.com/nvdb/recordcore/internal/diskio"
)

const logPrefix = "recordfile: "

// Rid is the record identifier from spec section 3: (page_no, slot_no).
type Rid struct {
	PageNo int64
	SlotNo int
}

func (r Rid) String() string {
	return fmt.Sprintf("(%d,%d)", r.PageNo, r.SlotNo)
}

// File owns a file descriptor, an in-memory copy of the file header, and
// a reference to the buffer pool (spec section 4.3). It performs no
// locking of its own; every mutation travels through the pool, whose
// latch is the only synchronization this package relies on (spec
// section 5).
type File struct {
	pool   *buffer.Pool
	fd     diskio.FileID
	header FileHeader
	logger *slog.Logger
}

// CreateFile formats a brand-new record file: it allocates the header
// page (page_no 0) and writes record_size/slots_per_page into it, with
// an empty free-page chain (spec section 3/4.3.6's precondition that
// create_new_page_handle only ever runs against an empty chain).
func CreateFile(pool *buffer.Pool, fd diskio.FileID, recordSize, slotsPerPage int32, logger *slog.Logger) (*File, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if pageHeaderSize(slotsPerPage)+int(slotsPerPage)*int(recordSize) > pool.PageSize() {
		return nil, ErrLayoutTooLarge
	}

	f, pid, ok := pool.NewPage(fd)
	if !ok {
		return nil, ErrAllocationFailed
	}
	if pid.PageNo != headerPageNo {
		pool.UnpinPage(pid, false)
		return nil, fmt.Errorf("recordfile: file %d already has pages, cannot CreateFile", fd)
	}

	header := FileHeader{
		RecordSize:      recordSize,
		SlotsPerPage:    slotsPerPage,
		NumPages:        1,
		FirstFreePageNo: NoPage,
	}
	header.encode(f.Data)
	pool.UnpinPage(pid, true)

	logger.Debug(logPrefix+"created file", "fd", fd, "recordSize", recordSize, "slotsPerPage", slotsPerPage)
	return &File{pool: pool, fd: fd, header: header, logger: logger}, nil
}

// OpenFile reads the header of an existing record file from page 0.
func OpenFile(pool *buffer.Pool, fd diskio.FileID, logger *slog.Logger) (*File, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pid := buffer.PageId{Fd: fd, PageNo: headerPageNo}
	f, ok := pool.FetchPage(pid)
	if !ok {
		return nil, fmt.Errorf("%w: page %d", ErrPageNotExist, headerPageNo)
	}
	header := decodeFileHeader(f.Data)
	pool.UnpinPage(pid, false)

	return &File{pool: pool, fd: fd, header: header, logger: logger}, nil
}

// FD returns the file descriptor this handle operates on.
func (f *File) FD() diskio.FileID { return f.fd }

// RecordSize returns the file's fixed record size in bytes.
func (f *File) RecordSize() int32 { return f.header.RecordSize }

// SlotsPerPage returns the number of record slots on each data page.
func (f *File) SlotsPerPage() int32 { return f.header.SlotsPerPage }

// NumPages returns the total page count, including the header page.
func (f *File) NumPages() int64 { return f.header.NumPages }

// FirstFreePageNo returns the current head of the free-page chain, or
// NoPage if the chain is empty.
func (f *File) FirstFreePageNo() int64 { return f.header.FirstFreePageNo }

func (f *File) persistHeader() error {
	pid := buffer.PageId{Fd: f.fd, PageNo: headerPageNo}
	frame, ok := f.pool.FetchPage(pid)
	if !ok {
		return fmt.Errorf("%w: page %d", ErrPageNotExist, headerPageNo)
	}
	f.header.encode(frame.Data)
	f.pool.UnpinPage(pid, true)
	return nil
}

func (f *File) unpinPageHandle(ph *PageHandle, dirty bool) {
	f.pool.UnpinPage(buffer.PageId{Fd: f.fd, PageNo: ph.PageNo()}, dirty)
}

// fetchPageHandle implements spec section 4.3.6's fetch_page_handle.
func (f *File) fetchPageHandle(pageNo int64) (*PageHandle, error) {
	pid := buffer.PageId{Fd: f.fd, PageNo: pageNo}
	frame, ok := f.pool.FetchPage(pid)
	if !ok {
		return nil, fmt.Errorf("%w: page %d", ErrPageNotExist, pageNo)
	}
	return newPageHandle(frame, pageNo, f.header.RecordSize, f.header.SlotsPerPage), nil
}

// createNewPageHandle implements spec section 4.3.6's create_new_page_handle.
// Only ever called with an empty free-page chain (see createPageHandle).
func (f *File) createNewPageHandle() (*PageHandle, error) {
	frame, pid, ok := f.pool.NewPage(f.fd)
	if !ok {
		return nil, ErrAllocationFailed
	}

	hdr := pageHeader{NumRecords: 0, NextFreePageNo: NoPage}
	hdr.encode(frame.Data)

	f.header.FirstFreePageNo = pid.PageNo
	f.header.NumPages++
	if err := f.persistHeader(); err != nil {
		f.pool.UnpinPage(pid, true)
		return nil, err
	}

	f.logger.Debug(logPrefix+"new page allocated, became free-chain head", "pageNo", pid.PageNo)
	return newPageHandle(frame, pid.PageNo, f.header.RecordSize, f.header.SlotsPerPage), nil
}

// createPageHandle implements spec section 4.3.6's create_page_handle.
func (f *File) createPageHandle() (*PageHandle, error) {
	if f.header.FirstFreePageNo == NoPage {
		return f.createNewPageHandle()
	}
	return f.fetchPageHandle(f.header.FirstFreePageNo)
}

// spliceOutOfFreeChain removes pageNo from the free-page chain, used
// when a page transitions from non-full to full (spec section 4.3.2
// step 5 and 4.3.3's positioned-insert full case). nextOfThisPage is
// the removed page's own next_free_page_no, inherited by whichever
// link pointed at it.
func (f *File) spliceOutOfFreeChain(pageNo, nextOfThisPage int64) error {
	if f.header.FirstFreePageNo == pageNo {
		f.header.FirstFreePageNo = nextOfThisPage
		return f.persistHeader()
	}

	prevNo := f.header.FirstFreePageNo
	for prevNo != NoPage {
		prevPH, err := f.fetchPageHandle(prevNo)
		if err != nil {
			return err
		}
		prevHdr := prevPH.header()
		if prevHdr.NextFreePageNo == pageNo {
			prevHdr.NextFreePageNo = nextOfThisPage
			prevPH.setHeader(prevHdr)
			f.unpinPageHandle(prevPH, true)
			return nil
		}
		nextNo := prevHdr.NextFreePageNo
		f.unpinPageHandle(prevPH, false)
		prevNo = nextNo
	}
	f.logger.Warn(logPrefix+"splice: page not found in free chain", "pageNo", pageNo)
	return nil
}

// releasePageHandle implements spec section 4.3.6's release_page_handle:
// insert ph's page into the free chain in ascending page-number order.
// ph must already be fetched/pinned by the caller; it is not unpinned
// here.
func (f *File) releasePageHandle(ph *PageHandle) error {
	pageNo := ph.PageNo()
	hdr := ph.header()

	if f.header.FirstFreePageNo == NoPage || f.header.FirstFreePageNo > pageNo {
		hdr.NextFreePageNo = f.header.FirstFreePageNo
		ph.setHeader(hdr)
		f.header.FirstFreePageNo = pageNo
		return f.persistHeader()
	}

	prevNo := f.header.FirstFreePageNo
	for {
		prevPH, err := f.fetchPageHandle(prevNo)
		if err != nil {
			return err
		}
		prevHdr := prevPH.header()
		if prevHdr.NextFreePageNo == NoPage || prevHdr.NextFreePageNo > pageNo {
			hdr.NextFreePageNo = prevHdr.NextFreePageNo
			ph.setHeader(hdr)
			prevHdr.NextFreePageNo = pageNo
			prevPH.setHeader(prevHdr)
			f.unpinPageHandle(prevPH, true)
			return nil
		}
		nextNo := prevHdr.NextFreePageNo
		f.unpinPageHandle(prevPH, false)
		prevNo = nextNo
	}
}

// GetRecord implements spec section 4.3.1.
func (f *File) GetRecord(rid Rid) ([]byte, error) {
	ph, err := f.fetchPageHandle(rid.PageNo)
	if err != nil {
		return nil, err
	}
	defer f.unpinPageHandle(ph, false)

	if !ph.bitmap().Test(rid.SlotNo) {
		return nil, ErrNotRecord
	}
	buf := make([]byte, f.header.RecordSize)
	copy(buf, ph.slot(rid.SlotNo))
	return buf, nil
}

// InsertRecord implements spec section 4.3.2.
func (f *File) InsertRecord(buf []byte) (Rid, error) {
	if int32(len(buf)) != f.header.RecordSize {
		return Rid{}, ErrRecordSize
	}

	ph, err := f.createPageHandle()
	if err != nil {
		return Rid{}, err
	}

	bm := ph.bitmap()
	slotNo := bm.FirstBit(false)
	copy(ph.slot(slotNo), buf)
	bm.Set(slotNo)

	hdr := ph.header()
	hdr.NumRecords++
	ph.setHeader(hdr)

	pageNo := ph.PageNo()
	nowFull := bm.FirstBit(false) == int(f.header.SlotsPerPage)
	if nowFull && f.header.FirstFreePageNo == pageNo {
		if err := f.spliceOutOfFreeChain(pageNo, hdr.NextFreePageNo); err != nil {
			f.unpinPageHandle(ph, true)
			return Rid{}, err
		}
	}

	f.unpinPageHandle(ph, true)
	return Rid{PageNo: pageNo, SlotNo: slotNo}, nil
}

// InsertRecordAt implements spec section 4.3.3, the positioned insert.
// The spec leaves it an open question whether to check the precondition
// that the slot is empty; this implementation strengthens it to an
// explicit ErrSlotOccupied failure (see DESIGN.md).
func (f *File) InsertRecordAt(rid Rid, buf []byte) error {
	if int32(len(buf)) != f.header.RecordSize {
		return ErrRecordSize
	}

	ph, err := f.fetchPageHandle(rid.PageNo)
	if err != nil {
		return err
	}

	bm := ph.bitmap()
	if bm.Test(rid.SlotNo) {
		f.unpinPageHandle(ph, false)
		return ErrSlotOccupied
	}

	copy(ph.slot(rid.SlotNo), buf)
	bm.Set(rid.SlotNo)

	hdr := ph.header()
	hdr.NumRecords++
	ph.setHeader(hdr)

	if bm.FirstBit(false) == int(f.header.SlotsPerPage) {
		if err := f.spliceOutOfFreeChain(rid.PageNo, hdr.NextFreePageNo); err != nil {
			f.unpinPageHandle(ph, true)
			return err
		}
	}

	f.unpinPageHandle(ph, true)
	return nil
}

// DeleteRecord implements spec section 4.3.4.
func (f *File) DeleteRecord(rid Rid) error {
	ph, err := f.fetchPageHandle(rid.PageNo)
	if err != nil {
		return err
	}

	bm := ph.bitmap()
	if !bm.Test(rid.SlotNo) {
		f.unpinPageHandle(ph, false)
		return ErrNotRecord
	}

	hdr := ph.header()
	wasFull := hdr.NumRecords == f.header.SlotsPerPage
	bm.Clear(rid.SlotNo)
	hdr.NumRecords--
	ph.setHeader(hdr)

	if wasFull {
		if err := f.releasePageHandle(ph); err != nil {
			f.unpinPageHandle(ph, true)
			return err
		}
	}

	f.unpinPageHandle(ph, true)
	return nil
}

// UpdateRecord implements spec section 4.3.5.
func (f *File) UpdateRecord(rid Rid, buf []byte) error {
	if int32(len(buf)) != f.header.RecordSize {
		return ErrRecordSize
	}

	ph, err := f.fetchPageHandle(rid.PageNo)
	if err != nil {
		return err
	}

	if !ph.bitmap().Test(rid.SlotNo) {
		f.unpinPageHandle(ph, false)
		return ErrNotRecord
	}

	copy(ph.slot(rid.SlotNo), buf)
	f.unpinPageHandle(ph, true)
	return nil
}
