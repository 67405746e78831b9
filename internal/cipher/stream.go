// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package cipher implements the offset-addressed XOR stream cipher that
// every byte of a DX archive is enciphered with, plus the little-endian
// integer readers built on top of it.
package cipher

import (
	"encoding/binary"
	"io"

	"github.com/wolfrpg/dxarchive/internal/key"
)

// Stream wraps a seekable byte source and an absolute cipher position.
// Every Read XORs the bytes just filled against key[(pos+i) mod 12], then
// advances pos by the number of bytes consumed. Because the keystream is
// addressed by absolute archive offset rather than by how many bytes have
// been read through this Stream, a Seek resets both the underlying
// source's offset and pos to the same target value: the cipher is
// equivalent to a plain XOR over the whole file with a repeating 12-byte
// pad, independent of read pattern.
type Stream struct {
	src io.ReadSeeker
	key key.Key
	pos int64
}

// New wraps src with the already derived keystream k.
func New(src io.ReadSeeker, k key.Key) *Stream {
	return &Stream{src: src, key: k}
}

// Pos returns the current absolute cipher position.
func (s *Stream) Pos() int64 { return s.pos }

// Seek moves both the underlying source and the cipher position to abs.
func (s *Stream) Seek(abs int64) error {
	n, err := s.src.Seek(abs, io.SeekStart)
	if err != nil {
		return err
	}
	s.pos = n
	return nil
}

// ReadFull reads len(buf) enciphered bytes and decodes them in place.
// On a short read the underlying I/O error is returned verbatim and the
// cipher position is not advanced at all: the whole call fails together,
// never partially.
func (s *Stream) ReadFull(buf []byte) error {
	if _, err := io.ReadFull(s.src, buf); err != nil {
		return err
	}
	for i := range buf {
		buf[i] ^= s.key[(s.pos+int64(i))%key.Len]
	}
	s.pos += int64(len(buf))
	return nil
}

// ReadRaw reads len(buf) bytes straight from the underlying source with
// no XOR applied, advancing pos to match. Used by callers that need to
// apply the keystream with an index other than the absolute stream
// position (spec.md §9's file-payload offset oddity).
func (s *Stream) ReadRaw(buf []byte) error {
	if _, err := io.ReadFull(s.src, buf); err != nil {
		return err
	}
	s.pos += int64(len(buf))
	return nil
}

// ReadUint16 reads a little-endian uint16.
func (s *Stream) ReadUint16() (uint16, error) {
	var b [2]byte
	if err := s.ReadFull(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

// ReadUint32 reads a little-endian uint32.
func (s *Stream) ReadUint32() (uint32, error) {
	var b [4]byte
	if err := s.ReadFull(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// ReadUint64 reads a little-endian uint64.
func (s *Stream) ReadUint64() (uint64, error) {
	var b [8]byte
	if err := s.ReadFull(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
