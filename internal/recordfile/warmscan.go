package recordfile

import "github.com/sourcegraph/conc/pool"

// warmScanWorkers bounds how many pages WarmScan prefetches concurrently,
// matching the teacher's fondness for small bounded worker pools over
// unbounded goroutine fan-out.
const warmScanWorkers = 4

// WarmScan is a supplemented scan variant (SPEC_FULL.md section 11,
// absent from spec.md's minimal Scan): it prefetches the pages a
// forward scan is about to visit, using a small conc/pool worker pool so
// the page fetches of one window run concurrently with each other. Next
// waits for those fetches to finish before it returns, and each
// prefetched page is unpinned right away, so it stays resident only
// until it is evicted. It never changes the sequence of rids a plain
// Scan would produce — it only warms the buffer pool ahead of the
// cursor.
type WarmScan struct {
	*Scan
	file      *File
	lookahead int64
	warmed    int64
}

// NewWarmScan constructs a WarmScan positioned like a plain Scan, with
// its current page and up to lookahead pages after it (never past the
// last page) already prefetched.
func NewWarmScan(file *File, lookahead int) (*WarmScan, error) {
	s, err := NewScan(file)
	if err != nil {
		return nil, err
	}
	ws := &WarmScan{Scan: s, file: file, lookahead: int64(lookahead), warmed: s.rid.PageNo - 1}
	ws.warmAhead()
	return ws, nil
}

func (ws *WarmScan) warmAhead() {
	term := ws.terminal()
	target := ws.rid.PageNo + ws.lookahead
	if target > term.PageNo {
		target = term.PageNo
	}
	if target <= ws.warmed {
		return
	}

	p := pool.New().WithMaxGoroutines(warmScanWorkers)
	for pageNo := ws.warmed + 1; pageNo <= target; pageNo++ {
		pageNo := pageNo
		p.Go(func() {
			ph, err := ws.file.fetchPageHandle(pageNo)
			if err != nil {
				return
			}
			ws.file.unpinPageHandle(ph, false)
		})
	}
	p.Wait()
	ws.warmed = target
}

// Next advances the scan and extends the prefetch window.
func (ws *WarmScan) Next() (bool, error) {
	ok, err := ws.Scan.Next()
	if err != nil {
		return false, err
	}
	ws.warmAhead()
	return ok, nil
}
