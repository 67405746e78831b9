// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package sjis decodes the Shift-JIS (CP932) byte strings used for file
// and directory names inside a DX archive.
package sjis

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// ErrMalformed is returned when a name cannot be decoded as Shift-JIS.
var ErrMalformed = errors.New("dxarchive: malformed Shift-JIS file name")

// DecodeTrimmed decodes b as Shift-JIS and strips the trailing NUL bytes
// that pad every name-table string to a 4-byte boundary.
func DecodeTrimmed(b []byte) (string, error) {
	out, _, err := transform.String(japanese.ShiftJIS.NewDecoder(), string(b))
	if err != nil {
		return "", ErrMalformed
	}
	// The decoder substitutes U+FFFD for malformed input instead of
	// failing, and no valid Shift-JIS sequence decodes to U+FFFD.
	if strings.ContainsRune(out, utf8.RuneError) {
		return "", ErrMalformed
	}
	return strings.TrimRight(out, "\x00"), nil
}
