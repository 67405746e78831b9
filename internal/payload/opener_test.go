// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package payload

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/wolfrpg/dxarchive/internal/cipher"
	"github.com/wolfrpg/dxarchive/internal/header"
	"github.com/wolfrpg/dxarchive/internal/testarchive"
)

func TestOpenerUncompressedFile(t *testing.T) {
	b := testarchive.DefaultBuilder()
	plain := []byte("Hello, world!\n")
	dataPos := b.AddPayload(uint64(len(plain)), plain)
	archive := b.Build()

	o := &Opener{
		Stream:   cipher.New(bytes.NewReader(archive), b.Key()),
		Key:      b.Key(),
		DataBase: b.DataPosition(),
	}
	f := header.FileEntry{Attributes: header.Archive, DataPosition: dataPos, DataSize: uint64(len(plain))}

	var borrow Borrow
	rc, err := o.Open(f, &borrow)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Fatalf("contents = %q, want %q", got, plain)
	}
}

func TestOpenerUncompressedFileHoldsBorrow(t *testing.T) {
	b := testarchive.DefaultBuilder()
	plain := []byte("some bytes")
	dataPos := b.AddPayload(uint64(len(plain)), plain)
	archive := b.Build()

	o := &Opener{
		Stream:   cipher.New(bytes.NewReader(archive), b.Key()),
		Key:      b.Key(),
		DataBase: b.DataPosition(),
	}
	f := header.FileEntry{Attributes: header.Archive, DataPosition: dataPos, DataSize: uint64(len(plain))}

	var borrow Borrow
	rc, err := o.Open(f, &borrow)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, err := o.Open(f, &borrow); err != ErrReaderBusy {
		t.Fatalf("second Open while first unclosed = %v, want ErrReaderBusy", err)
	}

	rc.Close()
	rc2, err := o.Open(f, &borrow)
	if err != nil {
		t.Fatalf("Open after Close: %v", err)
	}
	rc2.Close()
}

func TestOpenerRejectsDirectory(t *testing.T) {
	o := &Opener{}
	var borrow Borrow
	dirEntry := header.FileEntry{Attributes: header.Directory}
	if _, err := o.Open(dirEntry, &borrow); err != ErrNotAFile {
		t.Fatalf("Open(directory) = %v, want ErrNotAFile", err)
	}
}

// compressedPayloadFor builds the 9-byte-header-plus-body compressed
// buffer for plain using only literal bytes (no back-references), which
// is always a valid encoding regardless of plain's contents.
func compressedPayloadFor(plain []byte, keyCode byte) []byte {
	body := make([]byte, 0, len(plain)*2)
	for _, c := range plain {
		body = append(body, c)
		if c == keyCode {
			body = append(body, keyCode) // escape
		}
	}
	out := make([]byte, 9+len(body))
	binary.LittleEndian.PutUint32(out[0:4], uint32(len(plain)))
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(out)))
	out[8] = keyCode
	copy(out[9:], body)
	return out
}

func TestOpenerCompressedFile(t *testing.T) {
	b := testarchive.DefaultBuilder()
	plain := []byte("AAAAAAAAAAAAAAAA")
	const keyCode = 0xFF
	compressed := compressedPayloadFor(plain, keyCode)
	dataPos := b.AddPayload(uint64(len(plain)), compressed)
	archive := b.Build()

	cache, err := NewCache(1)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	o := &Opener{
		Stream:    cipher.New(bytes.NewReader(archive), b.Key()),
		Key:       b.Key(),
		DataBase:  b.DataPosition(),
		Cache:     cache,
		ArchiveID: NextArchiveID(),
	}
	compressedSize := uint64(len(compressed))
	f := header.FileEntry{
		Attributes:         header.Archive,
		DataPosition:       dataPos,
		DataSize:           uint64(len(plain)),
		CompressedDataSize: &compressedSize,
	}

	var borrow Borrow
	rc, err := o.Open(f, &borrow)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Fatalf("contents = %q, want %q", got, plain)
	}

	// A compressed file's Open releases the borrow immediately, unlike
	// an uncompressed file's.
	if _, err := o.Open(f, &borrow); err != nil {
		t.Fatalf("Open again immediately after a compressed read: %v", err)
	}
}

func TestOpenerCompressedFileUsesCache(t *testing.T) {
	b := testarchive.DefaultBuilder()
	plain := []byte("cached payload bytes")
	const keyCode = 0xFF
	compressed := compressedPayloadFor(plain, keyCode)
	dataPos := b.AddPayload(uint64(len(plain)), compressed)
	archive := b.Build()

	cache, err := NewCache(1)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	archiveID := NextArchiveID()
	compressedSize := uint64(len(compressed))
	f := header.FileEntry{
		Attributes:         header.Archive,
		DataPosition:       dataPos,
		DataSize:           uint64(len(plain)),
		CompressedDataSize: &compressedSize,
	}

	// Pre-seed the cache so Open serves the cached buffer instead of
	// reading and decompressing the stored payload.
	cache.Set(archiveID, dataPos, plain)
	o := &Opener{
		Stream:    cipher.New(bytes.NewReader(archive), b.Key()),
		Key:       b.Key(),
		DataBase:  b.DataPosition(),
		Cache:     cache,
		ArchiveID: archiveID,
	}

	var borrow Borrow
	rc, err := o.Open(f, &borrow)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Fatalf("contents = %q, want %q", got, plain)
	}
}
