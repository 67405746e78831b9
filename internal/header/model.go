// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package header parses the three cross-referenced DX archive header
// tables (file names, file entries, directory entries) and the data
// model they describe.
package header

import "time"

// Attributes is the bitfield stored in every FileEntry.
type Attributes uint64

const (
	// Directory marks a FileEntry as describing a directory rather than
	// a regular file.
	Directory Attributes = 0x10
	// Archive is set on regular (non-directory) entries; reserved bits
	// beyond these two are preserved but not interpreted.
	Archive Attributes = 0x20
)

// Has reports whether bit is set in a.
func (a Attributes) Has(bit Attributes) bool { return a&bit != 0 }

func (a Attributes) String() string {
	s := ""
	if a.Has(Directory) {
		s += "d"
	}
	if a.Has(Archive) {
		s += "a"
	}
	if s == "" {
		return "-"
	}
	return s
}

// filetimeToUnixEpochNanos is the corrected constant for converting a
// FILETIME (already multiplied by 100 to reach nanosecond units) into
// nanoseconds since the Unix epoch. See spec.md §9: the original
// source's constant is off by a factor of 1000 because it mixes
// 100-nanosecond units into a nanosecond-scaled subtraction.
const filetimeToUnixEpochNanos = 11_644_473_600_000_000_000

// FileTimes holds the three Windows FILETIME timestamps (100-nanosecond
// ticks since 1601-01-01 UTC) carried by every FileEntry.
type FileTimes struct {
	Created, Accessed, Modified uint64
}

// filetimeToTime converts a single FILETIME value to a time.Time using
// the corrected epoch constant.
func filetimeToTime(ft uint64) time.Time {
	// Computed in wrapping uint64 arithmetic: the constant itself does not
	// fit in an int64, but the difference does for any date within about
	// 292 years of 1970, so the final conversion recovers the signed value.
	nanos := int64(ft*100 - filetimeToUnixEpochNanos)
	return time.Unix(0, nanos).UTC()
}

// Time returns the created, accessed, and modified timestamps as
// time.Time values.
func (t FileTimes) Time() (created, accessed, modified time.Time) {
	return filetimeToTime(t.Created), filetimeToTime(t.Accessed), filetimeToTime(t.Modified)
}

// FileEntry is the 64-byte on-disk record describing either a file or a
// directory (distinguished by Attributes.Has(Directory)).
type FileEntry struct {
	NamePosition uint64
	Attributes   Attributes
	Times        FileTimes

	// DataPosition means different things depending on IsDir: for a
	// directory it is an offset into the directory table; for a file it
	// is an offset from the archive's data_position base to the file's
	// payload.
	DataPosition uint64

	DataSize uint64

	// CompressedDataSize is nil when the sentinel u64::MAX was stored,
	// meaning the payload is not compressed.
	CompressedDataSize *uint64
}

// IsDir reports whether this entry describes a directory.
func (f FileEntry) IsDir() bool { return f.Attributes.Has(Directory) }

// IsFile reports whether this entry describes a regular file.
func (f FileEntry) IsFile() bool { return !f.IsDir() }

// IsCompressed reports whether the payload is back-reference compressed.
func (f FileEntry) IsCompressed() bool { return f.CompressedDataSize != nil }

// DirEntry is the 32-byte on-disk record describing a directory's
// position in the tree and its children.
type DirEntry struct {
	DirectoryPosition uint64

	// ParentDirectoryPosition is nil for the root, which is the only
	// directory with the u64::MAX sentinel in this field.
	ParentDirectoryPosition *uint64

	NumFiles         uint64
	FileHeadPosition uint64
}

// IsRoot reports whether this is the root directory record.
func (d DirEntry) IsRoot() bool { return d.ParentDirectoryPosition == nil }

const sentinel = ^uint64(0)

// Index is the immutable, fully-populated in-memory model built once by
// [ParseHeader]. It is plain data: shareable across goroutines and
// across navigation operations without touching the archive's
// underlying byte stream.
type Index struct {
	NameByOffset map[uint64]string
	FileByOffset map[uint64]FileEntry
	DirByOffset  map[uint64]DirEntry

	// DataPosition is the archive-absolute offset where file payloads
	// begin; FileEntry.DataPosition for a file is relative to this.
	DataPosition uint64
}
