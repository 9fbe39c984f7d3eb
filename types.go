package duckdb

import "github.com/columnar-dev/go-duckdb-marshal/internal/mapping"

// Type wraps the native duckdb_type tag.
type Type = mapping.Type

const (
	TYPE_INVALID      = mapping.TypeInvalid
	TYPE_BOOLEAN      = mapping.TypeBoolean
	TYPE_TINYINT      = mapping.TypeTinyInt
	TYPE_SMALLINT     = mapping.TypeSmallInt
	TYPE_INTEGER      = mapping.TypeInteger
	TYPE_BIGINT       = mapping.TypeBigInt
	TYPE_UTINYINT     = mapping.TypeUTinyInt
	TYPE_USMALLINT    = mapping.TypeUSmallInt
	TYPE_UINTEGER     = mapping.TypeUInteger
	TYPE_UBIGINT      = mapping.TypeUBigInt
	TYPE_FLOAT        = mapping.TypeFloat
	TYPE_DOUBLE       = mapping.TypeDouble
	TYPE_TIMESTAMP    = mapping.TypeTimestamp
	TYPE_DATE         = mapping.TypeDate
	TYPE_TIME         = mapping.TypeTime
	TYPE_INTERVAL     = mapping.TypeInterval
	TYPE_HUGEINT      = mapping.TypeHugeInt
	TYPE_UHUGEINT     = mapping.TypeUHugeInt
	TYPE_VARCHAR      = mapping.TypeVarchar
	TYPE_BLOB         = mapping.TypeBlob
	TYPE_DECIMAL      = mapping.TypeDecimal
	TYPE_TIMESTAMP_S  = mapping.TypeTimestampS
	TYPE_TIMESTAMP_MS = mapping.TypeTimestampMS
	TYPE_TIMESTAMP_NS = mapping.TypeTimestampNS
	TYPE_ENUM         = mapping.TypeEnum
	TYPE_LIST         = mapping.TypeList
	TYPE_STRUCT       = mapping.TypeStruct
	TYPE_MAP          = mapping.TypeMap
	TYPE_ARRAY        = mapping.TypeArray
	TYPE_UUID         = mapping.TypeUUID
	TYPE_UNION        = mapping.TypeUnion
	TYPE_BIT          = mapping.TypeBit
	TYPE_TIME_TZ      = mapping.TypeTimeTZ
	TYPE_TIMESTAMP_TZ = mapping.TypeTimestampTZ
	TYPE_ANY          = mapping.TypeAny
	TYPE_SQLNULL      = mapping.TypeSQLNull
)

var typeToStringMap = map[Type]string{
	TYPE_INVALID:      "INVALID",
	TYPE_BOOLEAN:      "BOOLEAN",
	TYPE_TINYINT:      "TINYINT",
	TYPE_SMALLINT:     "SMALLINT",
	TYPE_INTEGER:      "INTEGER",
	TYPE_BIGINT:       "BIGINT",
	TYPE_UTINYINT:     "UTINYINT",
	TYPE_USMALLINT:    "USMALLINT",
	TYPE_UINTEGER:     "UINTEGER",
	TYPE_UBIGINT:      "UBIGINT",
	TYPE_FLOAT:        "FLOAT",
	TYPE_DOUBLE:       "DOUBLE",
	TYPE_TIMESTAMP:    "TIMESTAMP",
	TYPE_DATE:         "DATE",
	TYPE_TIME:         "TIME",
	TYPE_INTERVAL:     "INTERVAL",
	TYPE_HUGEINT:      "HUGEINT",
	TYPE_UHUGEINT:     "UHUGEINT",
	TYPE_VARCHAR:      "VARCHAR",
	TYPE_BLOB:         "BLOB",
	TYPE_DECIMAL:      "DECIMAL",
	TYPE_TIMESTAMP_S:  "TIMESTAMP_S",
	TYPE_TIMESTAMP_MS: "TIMESTAMP_MS",
	TYPE_TIMESTAMP_NS: "TIMESTAMP_NS",
	TYPE_ENUM:         "ENUM",
	TYPE_LIST:         "LIST",
	TYPE_STRUCT:       "STRUCT",
	TYPE_MAP:          "MAP",
	TYPE_ARRAY:        "ARRAY",
	TYPE_UUID:         "UUID",
	TYPE_UNION:        "UNION",
	TYPE_BIT:          "BIT",
	TYPE_TIME_TZ:      "TIMETZ",
	TYPE_TIMESTAMP_TZ: "TIMESTAMPTZ",
	TYPE_ANY:          "ANY",
	TYPE_SQLNULL:      "NULL",
}

// typeName returns the SQL name of t without any parameters.
func typeName(t Type) string {
	if name, ok := typeToStringMap[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Physical is the in-memory layout backing a logical type.
type Physical uint8

const (
	physInvalid Physical = iota
	physBool
	physInt8
	physInt16
	physInt32
	physInt64
	physUint8
	physUint16
	physUint32
	physUint64
	physFloat
	physDouble
	physInt128
	physUint128
	physString
	physInterval
	physTimeTZ
	physList
	physStruct
	physArray
	physNull
)

const (
	// stringTSize is the size of the native string_t descriptor.
	stringTSize = 16
	// stringInlineLength is the longest string stored inside the descriptor itself.
	stringInlineLength = 12
	intervalSize       = 16
	hugeIntSize        = 16
	listEntrySize      = 16
)

// decimalPhysical selects the storage of a DECIMAL from its declared width.
func decimalPhysical(width uint8) Physical {
	switch {
	case width <= 4:
		return physInt16
	case width <= 9:
		return physInt32
	case width <= 18:
		return physInt64
	default:
		return physInt128
	}
}

// enumPhysical selects the storage of an ENUM index from the dictionary size.
func enumPhysical(size int) Physical {
	switch {
	case size <= 0xff:
		return physUint8
	case size <= 0xffff:
		return physUint16
	default:
		return physUint32
	}
}

// physicalOf is a pure function of the logical type.
func physicalOf(info *TypeInfo) Physical {
	switch info.Type {
	case TYPE_BOOLEAN:
		return physBool
	case TYPE_TINYINT:
		return physInt8
	case TYPE_SMALLINT:
		return physInt16
	case TYPE_INTEGER, TYPE_DATE:
		return physInt32
	case TYPE_BIGINT, TYPE_TIME, TYPE_TIMESTAMP, TYPE_TIMESTAMP_S, TYPE_TIMESTAMP_MS, TYPE_TIMESTAMP_NS,
		TYPE_TIMESTAMP_TZ:
		return physInt64
	case TYPE_UTINYINT:
		return physUint8
	case TYPE_USMALLINT:
		return physUint16
	case TYPE_UINTEGER:
		return physUint32
	case TYPE_UBIGINT:
		return physUint64
	case TYPE_FLOAT:
		return physFloat
	case TYPE_DOUBLE:
		return physDouble
	case TYPE_HUGEINT, TYPE_UUID:
		return physInt128
	case TYPE_UHUGEINT:
		return physUint128
	case TYPE_VARCHAR, TYPE_BLOB, TYPE_BIT:
		return physString
	case TYPE_INTERVAL:
		return physInterval
	case TYPE_TIME_TZ:
		return physTimeTZ
	case TYPE_DECIMAL:
		return decimalPhysical(info.Width)
	case TYPE_ENUM:
		return enumPhysical(len(info.Dict))
	case TYPE_LIST, TYPE_MAP:
		return physList
	case TYPE_STRUCT, TYPE_UNION:
		return physStruct
	case TYPE_ARRAY:
		return physArray
	case TYPE_SQLNULL:
		return physNull
	}
	return physInvalid
}

// size returns the width in bytes of one row of a fixed-width layout.
func (p Physical) size() uintptr {
	switch p {
	case physBool, physInt8, physUint8:
		return 1
	case physInt16, physUint16:
		return 2
	case physInt32, physUint32, physFloat:
		return 4
	case physInt64, physUint64, physDouble, physTimeTZ:
		return 8
	case physInt128, physUint128:
		return hugeIntSize
	case physString:
		return stringTSize
	case physInterval:
		return intervalSize
	case physList:
		return listEntrySize
	}
	return 0
}
