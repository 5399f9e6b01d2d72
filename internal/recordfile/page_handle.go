package recordfile

import (
	"github.com/nvdb/recordcore/internal/buffer"
)

// PageHandle is a view over one pinned data page's header, bitmap, and
// slot array, backed directly by the buffer frame's byte slice (spec
// section 4.3.6's fetch_page_handle: "return a view exposing the page
// header, bitmap, and slot-accessor"). Grounded on internal/storage/
// page.go's Page wrapper over a raw byte buffer, generalized from its
// variable-length line-pointer layout to the fixed-record + bitmap
// layout spec section 3 requires.
//
// A PageHandle never unpins its frame; the caller decides when to do so
// (spec section 4.3's "pages are not unpinned by the contracts below").
type PageHandle struct {
	frame        *buffer.Frame
	pageNo       int64
	recordSize   int32
	slotsPerPage int32
}

func newPageHandle(frame *buffer.Frame, pageNo int64, recordSize, slotsPerPage int32) *PageHandle {
	return &PageHandle{frame: frame, pageNo: pageNo, recordSize: recordSize, slotsPerPage: slotsPerPage}
}

// PageNo returns the page number this handle views.
func (h *PageHandle) PageNo() int64 { return h.pageNo }

func (h *PageHandle) header() pageHeader {
	return decodePageHeader(h.frame.Data)
}

func (h *PageHandle) setHeader(hdr pageHeader) {
	hdr.encode(h.frame.Data)
}

func (h *PageHandle) bitmap() bitmap {
	start := pageHeaderFixedSize
	end := start + bitmapSize(h.slotsPerPage)
	return newBitmap(h.frame.Data[start:end], int(h.slotsPerPage))
}

func (h *PageHandle) slot(slotNo int) []byte {
	off := slotOffset(h.slotsPerPage, h.recordSize, slotNo)
	return h.frame.Data[off : off+int(h.recordSize)]
}
