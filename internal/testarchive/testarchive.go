// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package testarchive assembles byte-exact DX archives for use by this
// module's own tests. It is not part of the public API; it exists so
// that internal/header, internal/nav, internal/payload, and the root
// dxarchive package can each exercise realistic, correctly enciphered
// archives without duplicating the on-disk layout five times over.
package testarchive

import (
	"encoding/binary"
	"strings"

	"github.com/wolfrpg/dxarchive/internal/header"
	"github.com/wolfrpg/dxarchive/internal/key"
)

const sentinel = ^uint64(0)

// Builder accumulates a DX archive's name, file, and directory tables and
// its file payload section, in the same order a real archive would be
// written, then assembles and encrypts the whole thing in Build.
type Builder struct {
	key key.Key

	names   []byte
	files   []byte
	dirs    []byte
	payload []byte
}

// NewBuilder creates a Builder that will encipher against the keystream
// derived from keyStr.
func NewBuilder(keyStr key.KeyString) *Builder {
	return &Builder{key: key.Derive(keyStr)}
}

// DefaultBuilder creates a Builder using the stock runtime's key string,
// matching dxarchive.Options{} / dxarchive.Options{UseDefaultKey: true}.
func DefaultBuilder() *Builder {
	return NewBuilder(key.DefaultKeyString)
}

func le16(v uint16) []byte { b := make([]byte, 2); binary.LittleEndian.PutUint16(b, v); return b }
func le32(v uint32) []byte { b := make([]byte, 4); binary.LittleEndian.PutUint32(b, v); return b }
func le64(v uint64) []byte { b := make([]byte, 8); binary.LittleEndian.PutUint64(b, v); return b }

// AddName appends a name-table entry and returns its offset within the
// name table, suitable for use as a FileEntry's NamePosition. Only ASCII
// names are supported, which is a valid (single-byte) subset of the
// Shift-JIS encoding every name table entry is stored in.
func (b *Builder) AddName(name string) uint64 {
	offset := uint64(len(b.names))
	if name == "" {
		b.names = append(b.names, 0, 0, 0, 0)
		return offset
	}

	raw := []byte(name)
	padded := ((len(raw) + 3) / 4) * 4
	original := make([]byte, padded)
	copy(original, raw)

	upperRaw := []byte(strings.ToUpper(name))
	upper := make([]byte, padded)
	copy(upper, upperRaw)

	var parity uint16
	for _, c := range upper {
		parity += uint16(c)
	}

	b.names = append(b.names, le16(uint16(padded/4))...)
	b.names = append(b.names, le16(parity)...)
	b.names = append(b.names, upper...)
	b.names = append(b.names, original...)
	return offset
}

// CorruptNameParity flips the parity byte of the name-table entry that
// starts at nameOffset, for S5-style corruption-detection tests.
func (b *Builder) CorruptNameParity(nameOffset uint64) {
	b.names[nameOffset+2] ^= 0xFF
}

// FileEntryOpts mirrors header.FileEntry's fields for AddFileEntry.
type FileEntryOpts struct {
	NamePosition       uint64
	Attributes         header.Attributes
	Times              header.FileTimes
	DataPosition       uint64
	DataSize           uint64
	CompressedDataSize *uint64
}

// AddFileEntry appends a 64-byte FileEntry record and returns its offset
// within the file table, suitable for use as a DirEntry's
// FileHeadPosition or a directory FileEntry's DataPosition.
func (b *Builder) AddFileEntry(o FileEntryOpts) uint64 {
	offset := uint64(len(b.files))

	compressed := sentinel
	if o.CompressedDataSize != nil {
		compressed = *o.CompressedDataSize
	}

	b.files = append(b.files, le64(o.NamePosition)...)
	b.files = append(b.files, le64(uint64(o.Attributes))...)
	b.files = append(b.files, le64(o.Times.Created)...)
	b.files = append(b.files, le64(o.Times.Accessed)...)
	b.files = append(b.files, le64(o.Times.Modified)...)
	b.files = append(b.files, le64(o.DataPosition)...)
	b.files = append(b.files, le64(o.DataSize)...)
	b.files = append(b.files, le64(compressed)...)
	return offset
}

// DirEntryOpts mirrors header.DirEntry's fields for AddDirEntry.
type DirEntryOpts struct {
	DirectoryPosition       uint64
	ParentDirectoryPosition *uint64
	NumFiles                uint64
	FileHeadPosition        uint64
}

// AddDirEntry appends a 32-byte DirEntry record and returns its offset
// within the directory table. The first call always returns 0, the
// offset Root() looks up.
func (b *Builder) AddDirEntry(o DirEntryOpts) uint64 {
	offset := uint64(len(b.dirs))

	parent := sentinel
	if o.ParentDirectoryPosition != nil {
		parent = *o.ParentDirectoryPosition
	}

	b.dirs = append(b.dirs, le64(o.DirectoryPosition)...)
	b.dirs = append(b.dirs, le64(parent)...)
	b.dirs = append(b.dirs, le64(o.NumFiles)...)
	b.dirs = append(b.dirs, le64(o.FileHeadPosition)...)
	return offset
}

// AddPayload enciphers plain against xorBase (a FileEntry's DataSize, per
// spec.md §9's offset oddity: the payload keystream index is
// (data_size + offset_in_payload), never the archive-absolute offset)
// and appends it to the payload section, returning the offset the bytes
// start at relative to the archive's data_position, suitable for use as
// a file FileEntry's DataPosition. Call once per file; for a compressed
// file, plain is the already-assembled 9-byte-header-plus-body buffer
// and xorBase is still the FileEntry's uncompressed DataSize.
func (b *Builder) AddPayload(xorBase uint64, plain []byte) uint64 {
	offset := uint64(len(b.payload))
	enc := make([]byte, len(plain))
	for i, c := range plain {
		enc[i] = c ^ b.key[(xorBase+uint64(i))%key.Len]
	}
	b.payload = append(b.payload, enc...)
	return offset
}

const fixedHeaderSize = 48

// DataPosition reports where the payload section will begin once Build
// is called, i.e. the header's data_position field. Table contents
// added after this call still shift it; call it only once all names,
// file entries, and directory entries have been added.
func (b *Builder) DataPosition() uint64 {
	return uint64(fixedHeaderSize) + uint64(len(b.names)) + uint64(len(b.files)) + uint64(len(b.dirs))
}

// Key returns the derived keystream this builder encrypts with, for
// tests that need to construct an Opener directly against the built
// bytes without going through a full header parse.
func (b *Builder) Key() key.Key { return b.key }

// Build assembles the fixed header, the three tables, and the payload
// section into one enciphered archive image.
func (b *Builder) Build() []byte {
	fileNameTablePos := uint64(fixedHeaderSize)
	fileTablePosRel := uint64(len(b.names))
	dirTablePosRel := fileTablePosRel + uint64(len(b.files))
	fileHeaderSizeRel := dirTablePosRel + uint64(len(b.dirs))
	dataPosition := fileNameTablePos + fileHeaderSizeRel

	buf := make([]byte, 0, dataPosition+uint64(len(b.payload)))
	buf = append(buf, 'D', 'X')
	buf = append(buf, le16(6)...)
	buf = append(buf, le32(uint32(fileHeaderSizeRel))...)
	buf = append(buf, le64(dataPosition)...)
	buf = append(buf, le64(fileNameTablePos)...)
	buf = append(buf, le64(fileTablePosRel)...)
	buf = append(buf, le64(dirTablePosRel)...)
	buf = append(buf, le64(932)...)
	buf = append(buf, b.names...)
	buf = append(buf, b.files...)
	buf = append(buf, b.dirs...)

	for i := range buf {
		buf[i] ^= b.key[uint64(i)%key.Len]
	}

	buf = append(buf, b.payload...)
	return buf
}

// CorruptMagic flips every bit of the enciphered archive's third byte (the
// low byte of the version field), for S5-style corruption tests. It
// operates on an already-Build-produced image.
func CorruptMagic(archive []byte) {
	archive[2] ^= 0xFF
}
