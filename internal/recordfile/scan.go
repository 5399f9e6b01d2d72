package recordfile

// Scan is the forward record iterator described in spec section 4.4: it
// walks one file in ascending (page_no, slot_no) order, yielding every
// rid with a set bitmap bit. Grounded on internal/heap/table.go's
// TableIterator (file-handle reference + current position, fetch-next-
// page-on-exhaustion loop), adapted from the teacher's variable-length
// tuple walk to a bitmap-driven fixed-slot walk.
type Scan struct {
	file *File
	rid  Rid
}

// NewScan constructs a scan and positions it at the first live record,
// matching spec section 4.4's construction rule: rid = (1, -1), then
// next().
func NewScan(file *File) (*Scan, error) {
	s := &Scan{file: file, rid: Rid{PageNo: 1, SlotNo: -1}}
	if err := s.next(); err != nil {
		return nil, err
	}
	return s, nil
}

// terminal returns the scan's terminal position (spec section 9: "one
// past the last slot of the last page").
func (s *Scan) terminal() Rid {
	return Rid{PageNo: s.file.header.NumPages - 1, SlotNo: int(s.file.header.SlotsPerPage)}
}

// IsEnd reports whether the scan has exhausted the file.
func (s *Scan) IsEnd() bool {
	return s.rid == s.terminal()
}

// Rid returns the scan's current position.
func (s *Scan) Rid() Rid {
	return s.rid
}

// next implements spec section 4.4's next(): look for the next set bit
// on the current page first, then walk subsequent pages in ascending
// order for the first one with any set bit, otherwise land on the
// terminal position.
func (s *Scan) next() error {
	term := s.terminal()

	if s.rid.PageNo <= term.PageNo {
		ph, err := s.file.fetchPageHandle(s.rid.PageNo)
		if err != nil {
			return err
		}
		next := ph.bitmap().NextBit(true, s.rid.SlotNo)
		s.file.unpinPageHandle(ph, false)
		if next != int(s.file.header.SlotsPerPage) {
			s.rid = Rid{PageNo: s.rid.PageNo, SlotNo: next}
			return nil
		}
	}

	for pageNo := s.rid.PageNo + 1; pageNo <= term.PageNo; pageNo++ {
		ph, err := s.file.fetchPageHandle(pageNo)
		if err != nil {
			return err
		}
		first := ph.bitmap().FirstBit(true)
		s.file.unpinPageHandle(ph, false)
		if first != int(s.file.header.SlotsPerPage) {
			s.rid = Rid{PageNo: pageNo, SlotNo: first}
			return nil
		}
	}

	s.rid = term
	return nil
}

// Next advances the scan and reports whether it is now positioned at a
// live record (false once the scan has reached its terminal position).
func (s *Scan) Next() (bool, error) {
	if s.IsEnd() {
		return false, nil
	}
	if err := s.next(); err != nil {
		return false, err
	}
	return !s.IsEnd(), nil
}
