// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package header

import (
	"errors"
	"fmt"
)

// ErrFileNameParity is returned when a name-table entry's stored parity
// does not match the wrapping-16-bit checksum of its upper-case bytes,
// or when a zero-length name carries a non-zero parity.
var ErrFileNameParity = errors.New("dxarchive: invalid file name parity")

// InvalidMagicError is returned when the archive's first two bytes are
// not "DX".
type InvalidMagicError struct{ Magic [2]byte }

func (e *InvalidMagicError) Error() string {
	return fmt.Sprintf("dxarchive: invalid magic %q", e.Magic[:])
}

// InvalidVersionError is returned when the version word is not 6.
type InvalidVersionError struct{ Version uint16 }

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("dxarchive: invalid archive version %d", e.Version)
}

// UnknownCodePageError is returned when code_page is not 932 (Shift-JIS).
type UnknownCodePageError struct{ CodePage uint64 }

func (e *UnknownCodePageError) Error() string {
	return fmt.Sprintf("dxarchive: unknown code page %d", e.CodePage)
}
