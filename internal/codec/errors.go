package codec

import "errors"

// Decode errors: fatal for the single test case being parsed.
var (
	ErrTruncated    = errors.New("codec: truncated input")
	ErrUnknownKind  = errors.New("codec: unknown value kind tag")
	ErrBadBackref   = errors.New("codec: back-reference to unassigned slot")
	ErrSizeOverflow = errors.New("codec: size field exceeds remaining input")
)
