// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package payload implements FileOpener (spec.md §4.7): resolving a
// FileEntry's payload to either a streaming XOR-decoded reader or a
// fully-buffered, decompressed one, under the single-holder exclusive
// borrow discipline of spec.md §5.
package payload

import "errors"

// ErrReaderBusy is returned by Opener.Open when another uncompressed
// file reader already holds the underlying stream.
var ErrReaderBusy = errors.New("dxarchive: archive stream is already in use by another reader")

// ErrNotAFile is returned when Open is given a directory FileEntry.
var ErrNotAFile = errors.New("dxarchive: not a file")
