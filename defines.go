package pathobj

import (
	"encoding"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// constants for the path grammar
const (
	PathSeparator = byte('.')
	BracketOpen   = byte('[')
	BracketClose  = byte(']')
	SingleQuote   = byte('\'')
	DoubleQuote   = byte('"')
	EscapeChar    = byte('\\')
)

// Operation names reported in PathError.Op.
const (
	OpParse     = "parse"
	OpGet       = "get"
	OpSet       = "set"
	OpDelete    = "delete"
	OpToObject  = "to_object"
	OpRawGet    = "raw_get"
	OpRawSet    = "raw_set"
	OpRawDelete = "raw_delete"
)

// DefaultPathCacheSize is the number of parsed paths kept by the package
// level cache.
const DefaultPathCacheSize = 4096

// reflect.TypeOf constants for type checks
var (
	ByteSliceType = reflect.TypeOf([]byte{})
	TimeType      = reflect.TypeOf(time.Time{})
	UUIDType      = reflect.TypeOf(uuid.UUID{})

	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)
