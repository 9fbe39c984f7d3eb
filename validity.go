package duckdb

import "unsafe"

// isValid tests the validity bit of row. A nil mask means every row is valid.
func isValid(mask unsafe.Pointer, row uint64) bool {
	if mask == nil {
		return true
	}
	word := *(*uint64)(unsafe.Add(mask, (row/64)*8))
	return word&(1<<(row%64)) != 0
}

// validityWords returns the number of 64-bit words needed to cover n rows.
func validityWords(n uint64) uint64 {
	return (n + 63) / 64
}
