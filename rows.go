package duckdb

import (
	"iter"
)

// Rows iterates a ResultSet row by row. Each chunk is closed as soon as its
// last row was read, before the next one is pulled. Decoded values never
// alias native memory, but the slice returned by Values is reused.
//
// Rows is single-pass and not safe for concurrent use.
type Rows struct {
	rs     *ResultSet
	chunk  *DataChunk
	row    uint64
	values []any
	err    error
	done   bool
}

// Next advances to the next row. It returns false when the set is
// exhausted or on error; check Err afterwards.
func (r *Rows) Next() bool {
	if r.done {
		return false
	}
	for r.chunk == nil || r.row >= r.chunk.Size() {
		if r.chunk != nil {
			r.chunk.Close()
			r.chunk = nil
		}
		chunk, err := r.rs.NextChunk()
		if err != nil {
			return r.stop(err)
		}
		if chunk == nil {
			return r.stop(nil)
		}
		r.chunk, r.row = chunk, 0
	}

	if err := r.chunk.Row(r.row, r.values); err != nil {
		return r.stop(err)
	}
	r.row++
	return true
}

func (r *Rows) stop(err error) bool {
	r.err = err
	r.done = true
	if r.chunk != nil {
		r.chunk.Close()
		r.chunk = nil
	}
	return false
}

// Values returns the current row. The slice is reused by Next.
func (r *Rows) Values() []any {
	return r.values
}

// Map returns the current row keyed by column name.
func (r *Rows) Map() map[string]any {
	m := make(map[string]any, len(r.values))
	for i, name := range r.rs.names {
		m[name] = r.values[i]
	}
	return m
}

// Columns returns the column names.
func (r *Rows) Columns() []string {
	return r.rs.names
}

func (r *Rows) Err() error {
	return r.err
}

// Close releases the current chunk. The ResultSet stays open.
func (r *Rows) Close() error {
	r.stop(r.err)
	return nil
}

// All yields a copy of every remaining row. Iteration stops after the first
// error, which is yielded with a nil row.
func (rs *ResultSet) All() iter.Seq2[[]any, error] {
	return func(yield func([]any, error) bool) {
		rows := rs.Rows()
		defer rows.Close()
		for rows.Next() {
			if !yield(append([]any(nil), rows.Values()...), nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, err)
		}
	}
}
