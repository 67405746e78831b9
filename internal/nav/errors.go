// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package nav implements read-only navigation over a parsed DX archive
// index: root lookup, parent/child traversal, and a pre-order walk. None
// of these operations touch the archive's underlying byte stream.
package nav

import "errors"

var (
	// ErrNotADir is returned when a directory-only operation
	// ([Navigator.DirFromFile]) is given a regular-file entry.
	ErrNotADir = errors.New("dxarchive: not a directory")
	// ErrNotAFile reports a directory entry where a file was expected. No
	// operation in this package returns it; payload.Opener.Open returns
	// payload.ErrNotAFile for that case.
	ErrNotAFile = errors.New("dxarchive: not a file")
	// ErrInvalidDirectoryPosition is returned when a parent_directory_position
	// does not resolve to a known directory entry.
	ErrInvalidDirectoryPosition = errors.New("dxarchive: invalid directory position")
	// ErrInvalidFilePosition is returned when a data_position or
	// directory_position does not resolve to a known file/directory entry.
	ErrInvalidFilePosition = errors.New("dxarchive: invalid file position")
	// ErrInvalidDirectoryFileIndex is returned when nth_child's computed
	// offset does not resolve to a known file entry.
	ErrInvalidDirectoryFileIndex = errors.New("dxarchive: invalid directory file index")
	// ErrInvalidFileNamePosition is returned when a name_position does
	// not resolve to a known name-table entry.
	ErrInvalidFileNamePosition = errors.New("dxarchive: invalid file name position")
)
