// Package diskio is the disk-manager collaborator described by the record
// storage core: it turns (file, page number) pairs into fixed-size reads
// and writes against a block-oriented backing store, and hands out fresh
// page numbers on demand. Everything above this package (the buffer pool,
// the record file handle) only ever talks to the Manager interface.
package diskio

import "errors"

// FileID identifies one open file to a Manager. It is the "fd" of
// PageId = (fd, page_no) in the record storage core's data model.
type FileID int64

// InvalidFileID is returned by failed Open calls.
const InvalidFileID FileID = -1

// ErrAllocationFailed is returned when a Manager cannot hand out a new
// page number for a file (e.g. the backing file could not be grown).
var ErrAllocationFailed = errors.New("diskio: allocate_page failed")

// ErrUnknownFile is returned when an operation names a FileID the Manager
// has no record of (never opened, or already closed).
var ErrUnknownFile = errors.New("diskio: unknown file id")

// Manager is the disk manager contract consumed by the buffer pool:
// read_page, write_page and allocate_page from spec section 6.
type Manager interface {
	// ReadPage fills dst (exactly one page's worth of bytes) with the
	// contents of page pageNo in file fd. Reading a page beyond the
	// current end of file yields a zero-filled page rather than an error,
	// so that a freshly allocated page can be read before anything has
	// ever been written to it.
	ReadPage(fd FileID, pageNo int64, dst []byte) error

	// WritePage persists src (exactly one page's worth of bytes) as page
	// pageNo of file fd.
	WritePage(fd FileID, pageNo int64, src []byte) error

	// AllocatePage reserves the next page number in file fd and returns
	// it. The page is not written to disk by this call; its bytes read
	// back as zero until the caller writes to it.
	AllocatePage(fd FileID) (int64, error)
}
