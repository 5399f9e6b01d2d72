package recordfile

import "errors"

// ErrPageNotExist is PageNotExist from spec section 7: fetchPageHandle
// was asked for a page the buffer pool could not load.
var ErrPageNotExist = errors.New("recordfile: page does not exist")

// ErrAllocationFailed is AllocationFailed from spec section 7: the buffer
// pool could not provide a new page, either because the disk manager
// could not hand out a new page number or because no frame was free.
var ErrAllocationFailed = errors.New("recordfile: allocate_page failed")

// ErrSlotOccupied is returned by InsertRecordAt when the target slot
// already holds a live record. spec section 9 leaves this an open
// question ("an implementation may strengthen this to a precondition
// check that fails explicitly"); DESIGN.md records the decision to do so.
var ErrSlotOccupied = errors.New("recordfile: slot already occupied")

// ErrNotRecord is returned by GetRecord/UpdateRecord/DeleteRecord when
// rid does not currently identify a live record.
var ErrNotRecord = errors.New("recordfile: rid does not identify a live record")

// ErrRecordSize is returned when a caller passes a buffer whose length
// does not match the file's fixed record size.
var ErrRecordSize = errors.New("recordfile: buffer length does not match record size")

// ErrLayoutTooLarge is returned by CreateFile when record_size and
// slots_per_page together would not fit in one page.
var ErrLayoutTooLarge = errors.New("recordfile: record_size * slots_per_page exceeds page capacity")
