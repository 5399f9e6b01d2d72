package buffer

import (
	"fmt"

	"github.com/nvdb/recordcore/internal/diskio"
)

// PageId identifies one page within one file: (fd, page_no) from spec
// section 3. page_no 0 is reserved for the file header page; data pages
// begin at 1 (enforced by internal/recordfile, not here).
type PageId struct {
	Fd     diskio.FileID
	PageNo int64
}

// InvalidPageId is the sentinel PageId used for "no page" (spec section 3).
var InvalidPageId = PageId{Fd: diskio.InvalidFileID, PageNo: -1}

// IsValid reports whether p is anything other than InvalidPageId.
func (p PageId) IsValid() bool {
	return p != InvalidPageId
}

func (p PageId) String() string {
	return fmt.Sprintf("(%d,%d)", p.Fd, p.PageNo)
}
