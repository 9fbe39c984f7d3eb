package duckdb

import (
	"github.com/columnar-dev/go-duckdb-marshal/internal/mapping"
)

// DataChunk is one batch of rows pulled from a ResultSet. It owns the native
// chunk, and its vectors borrow from it.
type DataChunk struct {
	// chunk holds the underlying duckdb data chunk.
	chunk mapping.DataChunk
	// columns is a helper slice providing direct access to all columns.
	columns []*Vector
	size    uint64
	closed  bool
}

func newDataChunk(chunk mapping.DataChunk, infos []*TypeInfo, conv *converter) (*DataChunk, error) {
	c := &DataChunk{
		chunk: chunk,
		size:  uint64(mapping.DataChunkGetSize(chunk)),
	}
	c.columns = make([]*Vector, len(infos))
	for i, info := range infos {
		vec, err := newVector(mapping.DataChunkGetVector(chunk, mapping.IdxT(i)), info, conv)
		if err != nil {
			c.Close()
			return nil, columnError(err, i)
		}
		c.columns[i] = vec
	}
	return c, nil
}

// Size returns the number of rows in the chunk.
func (c *DataChunk) Size() uint64 {
	return c.size
}

// ColumnCount returns the number of columns in the chunk.
func (c *DataChunk) ColumnCount() int {
	return len(c.columns)
}

// Column returns the decoder of column i.
func (c *DataChunk) Column(i int) (*Vector, error) {
	if i < 0 || i >= len(c.columns) {
		return nil, columnError(newErrorf(ErrorKindUnsupportedType, "column index out of range: %d of %d", i, len(c.columns)), i)
	}
	return c.columns[i], nil
}

// Value decodes the cell at (col, row).
func (c *DataChunk) Value(col int, row uint64) (any, error) {
	vec, err := c.Column(col)
	if err != nil {
		return nil, err
	}
	val, err := vec.Value(row)
	if err != nil {
		return nil, columnError(err, col)
	}
	return val, nil
}

// Row decodes one row into dst, which must hold one slot per column.
func (c *DataChunk) Row(row uint64, dst []any) error {
	for i, vec := range c.columns {
		val, err := vec.Value(row)
		if err != nil {
			return columnError(err, i)
		}
		dst[i] = val
	}
	return nil
}

// Close destroys the native chunk. Values already decoded stay usable.
func (c *DataChunk) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.columns = nil
	mapping.DestroyDataChunk(&c.chunk)
}
