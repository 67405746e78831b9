// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package dxarchive

import (
	"errors"

	"github.com/wolfrpg/dxarchive/internal/header"
	"github.com/wolfrpg/dxarchive/internal/nav"
	"github.com/wolfrpg/dxarchive/internal/payload"
)

var (
	// ErrHeaderAlreadyRead is returned by (*Archive).ReadHeader when it
	// has already succeeded once for this Archive.
	ErrHeaderAlreadyRead = errors.New("dxarchive: header already read")
	// ErrHeaderNotRead is returned by any navigation or payload
	// operation attempted before a successful ReadHeader call.
	ErrHeaderNotRead = errors.New("dxarchive: header not read yet")
)

// Re-exported sentinel and typed errors from the component packages, so
// callers can write errors.Is(err, dxarchive.ErrReaderBusy) without
// reaching into internal/*.
var (
	ErrFileNameParity            = header.ErrFileNameParity
	ErrNotADir                   = nav.ErrNotADir
	ErrNotAFile                  = payload.ErrNotAFile
	ErrReaderBusy                = payload.ErrReaderBusy
	ErrDecompressionFailed       = payload.ErrDecompressionFailed
	ErrInvalidDirectoryPosition  = nav.ErrInvalidDirectoryPosition
	ErrInvalidFilePosition       = nav.ErrInvalidFilePosition
	ErrInvalidDirectoryFileIndex = nav.ErrInvalidDirectoryFileIndex
	ErrInvalidFileNamePosition   = nav.ErrInvalidFileNamePosition
)

// InvalidMagicError, InvalidVersionError, and UnknownCodePageError carry
// structured data (spec.md §7); match them with errors.As.
type (
	InvalidMagicError    = header.InvalidMagicError
	InvalidVersionError  = header.InvalidVersionError
	UnknownCodePageError = header.UnknownCodePageError
)
