//go:build !duckdb_use_lib && !duckdb_use_static_lib

package mapping

import (
	bindings "github.com/duckdb/duckdb-go-bindings/darwin-amd64"
)

type Type = bindings.Type

const (
	TypeInvalid     = bindings.TypeInvalid
	TypeBoolean     = bindings.TypeBoolean
	TypeTinyInt     = bindings.TypeTinyInt
	TypeSmallInt    = bindings.TypeSmallInt
	TypeInteger     = bindings.TypeInteger
	TypeBigInt      = bindings.TypeBigInt
	TypeUTinyInt    = bindings.TypeUTinyInt
	TypeUSmallInt   = bindings.TypeUSmallInt
	TypeUInteger    = bindings.TypeUInteger
	TypeUBigInt     = bindings.TypeUBigInt
	TypeFloat       = bindings.TypeFloat
	TypeDouble      = bindings.TypeDouble
	TypeTimestamp   = bindings.TypeTimestamp
	TypeDate        = bindings.TypeDate
	TypeTime        = bindings.TypeTime
	TypeInterval    = bindings.TypeInterval
	TypeHugeInt     = bindings.TypeHugeInt
	TypeUHugeInt    = bindings.TypeUHugeInt
	TypeVarchar     = bindings.TypeVarchar
	TypeBlob        = bindings.TypeBlob
	TypeDecimal     = bindings.TypeDecimal
	TypeTimestampS  = bindings.TypeTimestampS
	TypeTimestampMS = bindings.TypeTimestampMS
	TypeTimestampNS = bindings.TypeTimestampNS
	TypeEnum        = bindings.TypeEnum
	TypeList        = bindings.TypeList
	TypeStruct      = bindings.TypeStruct
	TypeMap         = bindings.TypeMap
	TypeArray       = bindings.TypeArray
	TypeUUID        = bindings.TypeUUID
	TypeUnion       = bindings.TypeUnion
	TypeBit         = bindings.TypeBit
	TypeTimeTZ      = bindings.TypeTimeTZ
	TypeTimestampTZ = bindings.TypeTimestampTZ
	TypeAny         = bindings.TypeAny
	TypeSQLNull     = bindings.TypeSQLNull
)

type State = bindings.State

const (
	StateSuccess = bindings.StateSuccess
	StateError   = bindings.StateError
)

type PendingState = bindings.PendingState

const (
	PendingStateResultReady      = bindings.PendingStateResultReady
	PendingStateResultNotReady   = bindings.PendingStateResultNotReady
	PendingStateError            = bindings.PendingStateError
	PendingStateNoTasksAvailable = bindings.PendingStateNoTasksAvailable
)

type ResultType = bindings.ResultType

const (
	ResultTypeInvalid     = bindings.ResultTypeInvalid
	ResultTypeChangedRows = bindings.ResultTypeChangedRows
	ResultTypeNothing     = bindings.ResultTypeNothing
	ResultTypeQueryResult = bindings.ResultTypeQueryResult
)

// Plain value types.

type (
	IdxT              = bindings.IdxT
	Date              = bindings.Date
	DateStruct        = bindings.DateStruct
	Time              = bindings.Time
	TimeStruct        = bindings.TimeStruct
	TimeTZ            = bindings.TimeTZ
	TimeTZStruct      = bindings.TimeTZStruct
	Timestamp         = bindings.Timestamp
	TimestampS        = bindings.TimestampS
	TimestampMS       = bindings.TimestampMS
	TimestampNS       = bindings.TimestampNS
	TimestampStruct   = bindings.TimestampStruct
	Interval          = bindings.Interval
	HugeInt           = bindings.HugeInt
	UHugeInt          = bindings.UHugeInt
	Decimal           = bindings.Decimal
	QueryProgressType = bindings.QueryProgressType
	StringT           = bindings.StringT
	ListEntry         = bindings.ListEntry
)

var (
	NewDate                  = bindings.NewDate
	DateMembers              = bindings.DateMembers
	NewDateStruct            = bindings.NewDateStruct
	DateStructMembers        = bindings.DateStructMembers
	NewTime                  = bindings.NewTime
	TimeMembers              = bindings.TimeMembers
	NewTimeStruct            = bindings.NewTimeStruct
	NewTimestampStruct       = bindings.NewTimestampStruct
	TimeStructMembers        = bindings.TimeStructMembers
	TimeTZStructMembers      = bindings.TimeTZStructMembers
	NewTimestamp             = bindings.NewTimestamp
	TimestampMembers         = bindings.TimestampMembers
	NewTimestampS            = bindings.NewTimestampS
	NewTimestampMS           = bindings.NewTimestampMS
	NewTimestampNS           = bindings.NewTimestampNS
	NewInterval              = bindings.NewInterval
	IntervalMembers          = bindings.IntervalMembers
	NewHugeInt               = bindings.NewHugeInt
	HugeIntMembers           = bindings.HugeIntMembers
	NewUHugeInt              = bindings.NewUHugeInt
	UHugeIntMembers          = bindings.UHugeIntMembers
	NewDecimal               = bindings.NewDecimal
	QueryProgressTypeMembers = bindings.QueryProgressTypeMembers
	NewListEntry             = bindings.NewListEntry
	ListEntryMembers         = bindings.ListEntryMembers
)

// Handle types.

type (
	Vector            = bindings.Vector
	Result            = bindings.Result
	Database          = bindings.Database
	Connection        = bindings.Connection
	PreparedStatement = bindings.PreparedStatement
	PendingResult     = bindings.PendingResult
	Appender          = bindings.Appender
	Config            = bindings.Config
	LogicalType       = bindings.LogicalType
	DataChunk         = bindings.DataChunk
	Value             = bindings.Value
	ProfilingInfo     = bindings.ProfilingInfo

	ExtractedStatements = bindings.ExtractedStatements
)

// Open, connect, and configure.

var (
	OpenExt        = bindings.OpenExt
	Close          = bindings.Close
	Connect        = bindings.Connect
	Interrupt      = bindings.Interrupt
	QueryProgress  = bindings.QueryProgress
	Disconnect     = bindings.Disconnect
	LibraryVersion = bindings.LibraryVersion
	CreateConfig   = bindings.CreateConfig
	SetConfig      = bindings.SetConfig
	DestroyConfig  = bindings.DestroyConfig
)

// Query execution and result functions.

var (
	Query             = bindings.Query
	DestroyResult     = bindings.DestroyResult
	ColumnName        = bindings.ColumnName
	ColumnType        = bindings.ColumnType
	ColumnLogicalType = bindings.ColumnLogicalType
	ColumnCount       = bindings.ColumnCount
	RowsChanged       = bindings.RowsChanged
	ResultError       = bindings.ResultError
	ResultGetChunk    = bindings.ResultGetChunk
	ResultChunkCount  = bindings.ResultChunkCount
	ResultReturnType  = bindings.ResultReturnType
	VectorSize        = bindings.VectorSize
)

// Date, time, and timestamp conversion.

var (
	FromDate      = bindings.FromDate
	ToDate        = bindings.ToDate
	FromTime      = bindings.FromTime
	ToTime        = bindings.ToTime
	CreateTimeTZ  = bindings.CreateTimeTZ
	FromTimeTZ    = bindings.FromTimeTZ
	FromTimestamp = bindings.FromTimestamp
	ToTimestamp   = bindings.ToTimestamp
)

// Prepared statements and parameter binding.

var (
	Prepare            = bindings.Prepare
	DestroyPrepare     = bindings.DestroyPrepare
	PrepareError       = bindings.PrepareError
	NParams            = bindings.NParams
	ParameterName      = bindings.ParameterName
	ParamType          = bindings.ParamType
	ParamLogicalType   = bindings.ParamLogicalType
	ClearBindings      = bindings.ClearBindings
	BindValue          = bindings.BindValue
	BindParameterIndex = bindings.BindParameterIndex
	BindNull           = bindings.BindNull
	ExecutePrepared    = bindings.ExecutePrepared
)

// Pending results.

var (
	PendingPrepared            = bindings.PendingPrepared
	DestroyPending             = bindings.DestroyPending
	PendingError               = bindings.PendingError
	PendingExecuteTask         = bindings.PendingExecuteTask
	PendingExecuteCheckState   = bindings.PendingExecuteCheckState
	ExecutePending             = bindings.ExecutePending
	PendingExecutionIsFinished = bindings.PendingExecutionIsFinished
)

// Value functions.

var (
	DestroyValue       = bindings.DestroyValue
	CreateVarchar      = bindings.CreateVarchar
	CreateBool         = bindings.CreateBool
	CreateInt8         = bindings.CreateInt8
	CreateUInt8        = bindings.CreateUInt8
	CreateInt16        = bindings.CreateInt16
	CreateUInt16       = bindings.CreateUInt16
	CreateInt32        = bindings.CreateInt32
	CreateUInt32       = bindings.CreateUInt32
	CreateUInt64       = bindings.CreateUInt64
	CreateInt64        = bindings.CreateInt64
	CreateHugeInt      = bindings.CreateHugeInt
	CreateUHugeInt     = bindings.CreateUHugeInt
	CreateDecimal      = bindings.CreateDecimal
	CreateFloat        = bindings.CreateFloat
	CreateDouble       = bindings.CreateDouble
	CreateDate         = bindings.CreateDate
	CreateTime         = bindings.CreateTime
	CreateTimeTZValue  = bindings.CreateTimeTZValue
	CreateTimestamp    = bindings.CreateTimestamp
	CreateTimestampTZ  = bindings.CreateTimestampTZ
	CreateTimestampS   = bindings.CreateTimestampS
	CreateTimestampMS  = bindings.CreateTimestampMS
	CreateTimestampNS  = bindings.CreateTimestampNS
	CreateInterval     = bindings.CreateInterval
	CreateBlob         = bindings.CreateBlob
	CreateUUID         = bindings.CreateUUID
	CreateNullValue    = bindings.CreateNullValue
	CreateStructValue  = bindings.CreateStructValue
	CreateListValue    = bindings.CreateListValue
	CreateArrayValue   = bindings.CreateArrayValue
	CreateMapValue     = bindings.CreateMapValue
	CreateUnionValue   = bindings.CreateUnionValue
	CreateEnumValue    = bindings.CreateEnumValue
	GetVarchar         = bindings.GetVarchar
	GetMapSize         = bindings.GetMapSize
	GetMapKey          = bindings.GetMapKey
	GetMapValue        = bindings.GetMapValue
	IsNullValue        = bindings.IsNullValue
	ValueToString      = bindings.ValueToString
)

// Logical type functions.

var (
	CreateLogicalType    = bindings.CreateLogicalType
	CreateListType       = bindings.CreateListType
	CreateArrayType      = bindings.CreateArrayType
	CreateMapType        = bindings.CreateMapType
	CreateUnionType      = bindings.CreateUnionType
	CreateStructType     = bindings.CreateStructType
	CreateEnumType       = bindings.CreateEnumType
	CreateDecimalType    = bindings.CreateDecimalType
	LogicalTypeGetAlias  = bindings.LogicalTypeGetAlias
	GetTypeId            = bindings.GetTypeId
	DecimalWidth         = bindings.DecimalWidth
	DecimalScale         = bindings.DecimalScale
	DecimalInternalType  = bindings.DecimalInternalType
	EnumInternalType     = bindings.EnumInternalType
	EnumDictionarySize   = bindings.EnumDictionarySize
	EnumDictionaryValue  = bindings.EnumDictionaryValue
	ListTypeChildType    = bindings.ListTypeChildType
	ArrayTypeChildType   = bindings.ArrayTypeChildType
	ArrayTypeArraySize   = bindings.ArrayTypeArraySize
	MapTypeKeyType       = bindings.MapTypeKeyType
	MapTypeValueType     = bindings.MapTypeValueType
	StructTypeChildCount = bindings.StructTypeChildCount
	StructTypeChildName  = bindings.StructTypeChildName
	StructTypeChildType  = bindings.StructTypeChildType
	UnionTypeMemberCount = bindings.UnionTypeMemberCount
	UnionTypeMemberName  = bindings.UnionTypeMemberName
	UnionTypeMemberType  = bindings.UnionTypeMemberType
	DestroyLogicalType   = bindings.DestroyLogicalType
)

// Data chunk and vector functions.

var (
	CreateDataChunk              = bindings.CreateDataChunk
	DestroyDataChunk             = bindings.DestroyDataChunk
	DataChunkReset               = bindings.DataChunkReset
	DataChunkGetColumnCount      = bindings.DataChunkGetColumnCount
	DataChunkGetVector           = bindings.DataChunkGetVector
	DataChunkGetSize             = bindings.DataChunkGetSize
	DataChunkSetSize             = bindings.DataChunkSetSize
	VectorGetColumnType          = bindings.VectorGetColumnType
	VectorGetData                = bindings.VectorGetData
	VectorGetValidity            = bindings.VectorGetValidity
	VectorEnsureValidityWritable = bindings.VectorEnsureValidityWritable
	VectorAssignStringElement    = bindings.VectorAssignStringElement
	VectorAssignStringElementLen = bindings.VectorAssignStringElementLen
	ListVectorGetChild           = bindings.ListVectorGetChild
	ListVectorGetSize            = bindings.ListVectorGetSize
	ListVectorSetSize            = bindings.ListVectorSetSize
	ListVectorReserve            = bindings.ListVectorReserve
	StructVectorGetChild         = bindings.StructVectorGetChild
	ArrayVectorGetChild          = bindings.ArrayVectorGetChild
	ValiditySetRowInvalid        = bindings.ValiditySetRowInvalid
	ValiditySetRowValid          = bindings.ValiditySetRowValid
)

// Profiling.

var (
	GetProfilingInfo           = bindings.GetProfilingInfo
	ProfilingInfoGetMetrics    = bindings.ProfilingInfoGetMetrics
	ProfilingInfoGetChildCount = bindings.ProfilingInfoGetChildCount
	ProfilingInfoGetChild      = bindings.ProfilingInfoGetChild
	ProfilingInfoGetValue      = bindings.ProfilingInfoGetValue
	GetDouble                  = bindings.GetDouble
)

// Appender.

var (
	AppenderCreateExt    = bindings.AppenderCreateExt
	AppenderColumnCount  = bindings.AppenderColumnCount
	AppenderColumnType   = bindings.AppenderColumnType
	AppenderError        = bindings.AppenderError
	AppenderFlush        = bindings.AppenderFlush
	AppenderClose        = bindings.AppenderClose
	AppenderDestroy      = bindings.AppenderDestroy
	AppendDefaultToChunk = bindings.AppendDefaultToChunk
	AppendDataChunk      = bindings.AppendDataChunk
)

// Statement extraction and table names.

var (
	ExtractStatements      = bindings.ExtractStatements
	ExtractStatementsError = bindings.ExtractStatementsError
	DestroyExtracted       = bindings.DestroyExtracted
	GetTableNames          = bindings.GetTableNames
	GetListSize            = bindings.GetListSize
	GetListChild           = bindings.GetListChild
)

var VerifyAllocationCounters = bindings.VerifyAllocationCounters
