package caff

import (
	"errors"

	"github.com/meigma/caff/internal/xorio"
)

// Sentinel errors re-exported from internal/xorio.
var (
	// ErrVarIntUnsupported is returned when a length prefix does not fit in
	// 7 bits. Longer varint encodings are not supported.
	ErrVarIntUnsupported = xorio.ErrVarIntUnsupported

	// ErrInvalidUTF8 is returned when a string field is not valid UTF-8.
	ErrInvalidUTF8 = xorio.ErrInvalidUTF8
)

// Sentinel errors specific to the caff package.
var (
	// ErrBadMagic is returned when the header signature is not "CAFF" and
	// the magic check is strict.
	ErrBadMagic = errors.New("caff: bad magic in header")

	// ErrEmptyFilename is returned when an entry's file name decodes to "".
	ErrEmptyFilename = errors.New("caff: empty filename in entry metadata")

	// ErrSizeOverflow is returned when a stored size cannot be used to size
	// an in-memory buffer, or exceeds a configured limit.
	ErrSizeOverflow = errors.New("caff: size overflow")

	// ErrBodyMismatch is returned on encode when the payloads do not line up
	// with the metadata records.
	ErrBodyMismatch = errors.New("caff: payloads do not match metadata")
)
