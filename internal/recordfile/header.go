package recordfile

import "github.com/nvdb/recordcore/internal/bx"

// NoPage is RM_NO_PAGE from spec section 3: the sentinel terminating the
// free-page chain and marking "no next page".
const NoPage int64 = -1

// headerPageNo is the reserved page_no holding the file header (spec
// section 3: "page_no = 0 is reserved for the file header page").
const headerPageNo int64 = 0

// fileHeaderSize is the on-disk size of FileHeader: two int32 fields
// (record_size, slots_per_page) followed by two int64 fields (num_pages,
// first_free_page_no). Grounded on internal/storage/page.go's fixed
// header-at-offset-0 layout, generalized from bx's LE integer packing.
const fileHeaderSize = 4 + 4 + 8 + 8

// pageHeaderFixedSize is the on-disk size of PageHeader before its
// bitmap: num_records (int32) followed by next_free_page_no (int64).
const pageHeaderFixedSize = 4 + 8

// FileHeader is the file header persisted on page 0 of a record file
// (spec section 3).
type FileHeader struct {
	RecordSize      int32
	SlotsPerPage    int32
	NumPages        int64
	FirstFreePageNo int64
}

func decodeFileHeader(b []byte) FileHeader {
	return FileHeader{
		RecordSize:      bx.I32At(b, 0),
		SlotsPerPage:    bx.I32At(b, 4),
		NumPages:        bx.I64At(b, 8),
		FirstFreePageNo: bx.I64At(b, 16),
	}
}

func (h FileHeader) encode(b []byte) {
	bx.PutI32At(b, 0, h.RecordSize)
	bx.PutI32At(b, 4, h.SlotsPerPage)
	bx.PutI64At(b, 8, h.NumPages)
	bx.PutI64At(b, 16, h.FirstFreePageNo)
}

// bitmapSize returns ceil(slotsPerPage/8), the number of bytes needed to
// hold one occupancy bit per slot.
func bitmapSize(slotsPerPage int32) int {
	return (int(slotsPerPage) + 7) / 8
}

// pageHeaderSize returns the total header size of a data page, fixed
// fields plus the bitmap (spec section 6's page layout table).
func pageHeaderSize(slotsPerPage int32) int {
	return pageHeaderFixedSize + bitmapSize(slotsPerPage)
}

// slotOffset returns the byte offset of slot `slot` within a data page.
func slotOffset(slotsPerPage int32, recordSize int32, slot int) int {
	return pageHeaderSize(slotsPerPage) + slot*int(recordSize)
}

// pageHeader is the mutable header region of one data page (spec section
// 3's "page header (first bytes of each data page)").
type pageHeader struct {
	NumRecords     int32
	NextFreePageNo int64
}

func decodePageHeader(b []byte) pageHeader {
	return pageHeader{
		NumRecords:     bx.I32At(b, 0),
		NextFreePageNo: bx.I64At(b, 4),
	}
}

func (h pageHeader) encode(b []byte) {
	bx.PutI32At(b, 0, h.NumRecords)
	bx.PutI64At(b, 4, h.NextFreePageNo)
}
