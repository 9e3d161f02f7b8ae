package xorio

import "errors"

// Sentinel errors for obfuscated field decoding and encoding.
var (
	// ErrVarIntUnsupported is returned when a length prefix needs more than
	// 7 bits, either on decode (continuation bit set) or on encode.
	ErrVarIntUnsupported = errors.New("caff: varint support not implemented")

	// ErrInvalidUTF8 is returned when a decoded string is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("caff: invalid utf-8 in string field")
)
