package recordfile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileHeader_RoundTrip(t *testing.T) {
	want := FileHeader{RecordSize: 32, SlotsPerPage: 100, NumPages: 3, FirstFreePageNo: 2}
	buf := make([]byte, fileHeaderSize)
	want.encode(buf)
	require.Equal(t, want, decodeFileHeader(buf))
}

func TestPageHeader_RoundTrip(t *testing.T) {
	want := pageHeader{NumRecords: 7, NextFreePageNo: NoPage}
	buf := make([]byte, pageHeaderFixedSize)
	want.encode(buf)
	require.Equal(t, want, decodePageHeader(buf))
}

func TestPageHeaderSize_MatchesScenarioLayout(t *testing.T) {
	// spec.md's literal scenarios use record_size=32, slots_per_page=100,
	// PAGE_SIZE=4096; the fixed header + bitmap + slot array must fit.
	const recordSize, slotsPerPage, pageSize = 32, 100, 4096
	require.Equal(t, 13, bitmapSize(slotsPerPage))
	total := pageHeaderSize(slotsPerPage) + slotsPerPage*recordSize
	require.LessOrEqual(t, total, pageSize)
}
