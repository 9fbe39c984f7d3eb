package duckdb

import (
	"fmt"
	"strings"

	"github.com/columnar-dev/go-duckdb-marshal/internal/mapping"
)

// TypeInfo describes a logical type, including the parameters and children of
// nested types. A TypeInfo is immutable once built.
type TypeInfo struct {
	Type Type
	// Width and Scale of DECIMAL types.
	Width uint8
	Scale uint8
	// Dict holds the ENUM dictionary in index order.
	Dict []string
	// Names of STRUCT fields or UNION members, parallel to Children.
	Names []string
	// Children holds the element of LIST and ARRAY, the key and value of MAP,
	// and the fields of STRUCT and UNION.
	Children []*TypeInfo
	// Size of ARRAY types.
	Size uint64
}

// StructEntry names one field of a STRUCT or member of a UNION.
type StructEntry struct {
	Name string
	Info *TypeInfo
}

var errEmptyName = newError(ErrorKindUnsupportedType, "empty STRUCT field or UNION member name")

// NewTypeInfo returns the TypeInfo of a type without parameters.
func NewTypeInfo(t Type) (*TypeInfo, error) {
	switch t {
	case TYPE_DECIMAL, TYPE_ENUM, TYPE_LIST, TYPE_STRUCT, TYPE_MAP, TYPE_ARRAY, TYPE_UNION:
		return nil, unsupportedTypeError(typeName(t) + " requires parameters")
	case TYPE_INVALID, TYPE_ANY:
		return nil, unsupportedTypeError(typeName(t))
	}
	if _, ok := typeToStringMap[t]; !ok {
		return nil, unsupportedTypeError(fmt.Sprintf("type id %d", t))
	}
	return &TypeInfo{Type: t}, nil
}

func mustTypeInfo(t Type) *TypeInfo {
	info, err := NewTypeInfo(t)
	if err != nil {
		panic(err)
	}
	return info
}

func NewDecimalInfo(width uint8, scale uint8) (*TypeInfo, error) {
	if width < 1 || width > maxDecimalWidth || scale > width {
		return nil, newErrorf(ErrorKindUnsupportedType, "invalid DECIMAL(%d,%d)", width, scale)
	}
	return &TypeInfo{Type: TYPE_DECIMAL, Width: width, Scale: scale}, nil
}

func NewEnumInfo(first string, others ...string) *TypeInfo {
	return &TypeInfo{Type: TYPE_ENUM, Dict: append([]string{first}, others...)}
}

func NewListInfo(child *TypeInfo) *TypeInfo {
	return &TypeInfo{Type: TYPE_LIST, Children: []*TypeInfo{child}}
}

func NewArrayInfo(child *TypeInfo, size uint64) (*TypeInfo, error) {
	if size == 0 {
		return nil, newError(ErrorKindUnsupportedType, "ARRAY size must be positive")
	}
	return &TypeInfo{Type: TYPE_ARRAY, Children: []*TypeInfo{child}, Size: size}, nil
}

func NewMapInfo(key *TypeInfo, value *TypeInfo) *TypeInfo {
	return &TypeInfo{Type: TYPE_MAP, Children: []*TypeInfo{key, value}}
}

func NewStructInfo(first StructEntry, others ...StructEntry) (*TypeInfo, error) {
	return newMembersInfo(TYPE_STRUCT, append([]StructEntry{first}, others...))
}

func NewUnionInfo(first StructEntry, others ...StructEntry) (*TypeInfo, error) {
	return newMembersInfo(TYPE_UNION, append([]StructEntry{first}, others...))
}

func newMembersInfo(t Type, entries []StructEntry) (*TypeInfo, error) {
	info := &TypeInfo{Type: t}
	for _, e := range entries {
		if e.Name == "" {
			return nil, errEmptyName
		}
		info.Names = append(info.Names, e.Name)
		info.Children = append(info.Children, e.Info)
	}
	return info, nil
}

// String renders the type the way it is written in SQL.
func (info *TypeInfo) String() string {
	switch info.Type {
	case TYPE_DECIMAL:
		return fmt.Sprintf("DECIMAL(%d,%d)", info.Width, info.Scale)
	case TYPE_ENUM:
		quoted := make([]string, len(info.Dict))
		for i, v := range info.Dict {
			quoted[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
		}
		return "ENUM(" + strings.Join(quoted, ", ") + ")"
	case TYPE_LIST:
		return info.Children[0].String() + "[]"
	case TYPE_ARRAY:
		return fmt.Sprintf("%s[%d]", info.Children[0].String(), info.Size)
	case TYPE_MAP:
		return fmt.Sprintf("MAP(%s, %s)", info.Children[0], info.Children[1])
	case TYPE_STRUCT, TYPE_UNION:
		fields := make([]string, len(info.Names))
		for i, name := range info.Names {
			fields[i] = fmt.Sprintf("%q %s", name, info.Children[i])
		}
		return typeName(info.Type) + "(" + strings.Join(fields, ", ") + ")"
	}
	return typeName(info.Type)
}

func (info *TypeInfo) nested() bool {
	switch info.Type {
	case TYPE_LIST, TYPE_MAP, TYPE_ARRAY, TYPE_STRUCT, TYPE_UNION:
		return true
	}
	return false
}

// newTypeInfoFrom reads a native logical type, recursing into children. The
// caller keeps ownership of lt.
func newTypeInfoFrom(lt mapping.LogicalType) (*TypeInfo, error) {
	t := mapping.GetTypeId(lt)
	info := &TypeInfo{Type: t}

	switch t {
	case TYPE_DECIMAL:
		info.Width = mapping.DecimalWidth(lt)
		info.Scale = mapping.DecimalScale(lt)

	case TYPE_ENUM:
		size := mapping.EnumDictionarySize(lt)
		info.Dict = make([]string, size)
		for i := uint32(0); i < size; i++ {
			info.Dict[i] = mapping.EnumDictionaryValue(lt, mapping.IdxT(i))
		}

	case TYPE_LIST:
		child, err := childInfo(mapping.ListTypeChildType(lt))
		if err != nil {
			return nil, err
		}
		info.Children = []*TypeInfo{child}

	case TYPE_ARRAY:
		child, err := childInfo(mapping.ArrayTypeChildType(lt))
		if err != nil {
			return nil, err
		}
		info.Children = []*TypeInfo{child}
		info.Size = uint64(mapping.ArrayTypeArraySize(lt))

	case TYPE_MAP:
		key, err := childInfo(mapping.MapTypeKeyType(lt))
		if err != nil {
			return nil, err
		}
		value, err := childInfo(mapping.MapTypeValueType(lt))
		if err != nil {
			return nil, err
		}
		info.Children = []*TypeInfo{key, value}

	case TYPE_STRUCT:
		count := uint64(mapping.StructTypeChildCount(lt))
		for i := uint64(0); i < count; i++ {
			child, err := childInfo(mapping.StructTypeChildType(lt, mapping.IdxT(i)))
			if err != nil {
				return nil, err
			}
			info.Names = append(info.Names, mapping.StructTypeChildName(lt, mapping.IdxT(i)))
			info.Children = append(info.Children, child)
		}

	case TYPE_UNION:
		count := uint64(mapping.UnionTypeMemberCount(lt))
		for i := uint64(0); i < count; i++ {
			child, err := childInfo(mapping.UnionTypeMemberType(lt, mapping.IdxT(i)))
			if err != nil {
				return nil, err
			}
			info.Names = append(info.Names, mapping.UnionTypeMemberName(lt, mapping.IdxT(i)))
			info.Children = append(info.Children, child)
		}

	case TYPE_INVALID, TYPE_ANY:
		return nil, unsupportedTypeError(typeName(t))
	default:
		if _, ok := typeToStringMap[t]; !ok {
			return nil, unsupportedTypeError(fmt.Sprintf("type id %d", t))
		}
	}
	return info, nil
}

// childInfo reads and then destroys a child logical type.
func childInfo(lt mapping.LogicalType) (*TypeInfo, error) {
	defer mapping.DestroyLogicalType(&lt)
	return newTypeInfoFrom(lt)
}

// logicalType creates the native logical type. The caller must destroy it.
func (info *TypeInfo) logicalType() mapping.LogicalType {
	switch info.Type {
	case TYPE_DECIMAL:
		return mapping.CreateDecimalType(info.Width, info.Scale)
	case TYPE_ENUM:
		return mapping.CreateEnumType(info.Dict)
	case TYPE_LIST:
		child := info.Children[0].logicalType()
		defer mapping.DestroyLogicalType(&child)
		return mapping.CreateListType(child)
	case TYPE_ARRAY:
		child := info.Children[0].logicalType()
		defer mapping.DestroyLogicalType(&child)
		return mapping.CreateArrayType(child, mapping.IdxT(info.Size))
	case TYPE_MAP:
		key := info.Children[0].logicalType()
		defer mapping.DestroyLogicalType(&key)
		value := info.Children[1].logicalType()
		defer mapping.DestroyLogicalType(&value)
		return mapping.CreateMapType(key, value)
	case TYPE_STRUCT, TYPE_UNION:
		types := make([]mapping.LogicalType, len(info.Children))
		for i, child := range info.Children {
			types[i] = child.logicalType()
		}
		defer func() {
			for i := range types {
				mapping.DestroyLogicalType(&types[i])
			}
		}()
		if info.Type == TYPE_STRUCT {
			return mapping.CreateStructType(types, info.Names)
		}
		return mapping.CreateUnionType(types, info.Names)
	}
	return mapping.CreateLogicalType(info.Type)
}

const maxDecimalWidth = 38
