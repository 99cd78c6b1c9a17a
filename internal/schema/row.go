package schema

// Script row numbers are 1-based and header-relative: row 1 is the header,
// row 2 is the first data row. Buffer indices are 0-based over the data
// region only. Every component that touches a script row number converts
// through BufferIndex so the offset arithmetic lives in exactly one place.

// BufferIndex converts a 1-based script row number to a 0-based data
// buffer index. The result may be negative or past the end of a buffer;
// callers decide whether out-of-range rows are ignored or rejected.
func BufferIndex(row int) int {
	return row - 2
}

// RowNumber converts a 0-based data buffer index back to the 1-based
// script row numbering. Inverse of BufferIndex.
func RowNumber(idx int) int {
	return idx + 2
}
