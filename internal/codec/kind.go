package codec

import "github.com/calvinalkan/caf/internal/value"

// Wire tags for Value payloads. Tags are fixed on the wire and must never
// be renumbered — existing corpus entries depend on them.
const (
	tagUndefined = 0
	tagNull      = 1
	tagBoolean   = 2
	tagString    = 3
	tagFunction  = 4
	tagInteger   = 5
	tagFloat     = 6
	tagArray     = 7
	tagBackref   = 8 // also doubles as Placeholder's wire representation
)

// kindToTag maps a value kind to its wire tag. Placeholder shares tag 8
// with identity back-references; the encoder resolves both through writeRef
// before a literal is ever written.
func kindToTag(k value.Kind) byte {
	switch k {
	case value.Undefined:
		return tagUndefined
	case value.Null:
		return tagNull
	case value.Boolean:
		return tagBoolean
	case value.String:
		return tagString
	case value.Function:
		return tagFunction
	case value.Integer:
		return tagInteger
	case value.Float:
		return tagFloat
	case value.Array:
		return tagArray
	case value.Placeholder:
		return tagBackref
	default:
		return 0xff
	}
}
