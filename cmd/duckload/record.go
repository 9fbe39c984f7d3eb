package main

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	duckdb "github.com/columnar-dev/go-duckdb-marshal"
)

// parseRecord turns CSV fields into values the appender accepts for the
// given columns. Fields equal to null become NULL.
func parseRecord(columns []*duckdb.TypeInfo, record []string, null string) ([]any, error) {
	values := make([]any, len(record))
	for i, field := range record {
		if field == null {
			continue
		}
		v, err := parseField(columns[i], field)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}
		values[i] = v
	}
	return values, nil
}

func parseField(info *duckdb.TypeInfo, field string) (any, error) {
	switch info.Type {
	case duckdb.TYPE_BOOLEAN:
		return strconv.ParseBool(strings.TrimSpace(field))
	case duckdb.TYPE_TINYINT, duckdb.TYPE_SMALLINT, duckdb.TYPE_INTEGER, duckdb.TYPE_BIGINT:
		return strconv.ParseInt(strings.TrimSpace(field), 10, 64)
	case duckdb.TYPE_UTINYINT, duckdb.TYPE_USMALLINT, duckdb.TYPE_UINTEGER, duckdb.TYPE_UBIGINT:
		return strconv.ParseUint(strings.TrimSpace(field), 10, 64)
	case duckdb.TYPE_FLOAT, duckdb.TYPE_DOUBLE:
		return strconv.ParseFloat(strings.TrimSpace(field), 64)
	case duckdb.TYPE_HUGEINT, duckdb.TYPE_UHUGEINT:
		i, ok := new(big.Int).SetString(strings.TrimSpace(field), 10)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", field)
		}
		return i, nil
	case duckdb.TYPE_LIST, duckdb.TYPE_ARRAY, duckdb.TYPE_STRUCT, duckdb.TYPE_MAP, duckdb.TYPE_UNION:
		return nil, fmt.Errorf("cannot load %s from CSV", info)
	}
	// Text, temporal, decimal, uuid and enum columns parse strings themselves.
	return field, nil
}

func formatRow(row []any) string {
	fields := make([]string, len(row))
	for i, v := range row {
		if v == nil {
			fields[i] = "NULL"
			continue
		}
		fields[i] = fmt.Sprint(v)
	}
	return strings.Join(fields, "\t")
}
