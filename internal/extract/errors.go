package extract

import "errors"

var (
	// ErrMalformedLine indicates a keyed line without a ':' separator.
	ErrMalformedLine = errors.New("malformed line")
	// ErrUnterminatedBlock indicates the source ended before the block's end marker.
	ErrUnterminatedBlock = errors.New("unterminated block")
	// ErrNoBlock indicates the block's start marker never matched.
	ErrNoBlock = errors.New("block start not found")
)
