// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package payload

import (
	"bytes"
	"fmt"
	"io"

	"github.com/wolfrpg/dxarchive/internal/cipher"
	"github.com/wolfrpg/dxarchive/internal/header"
	wolfkey "github.com/wolfrpg/dxarchive/internal/key"
)

// Opener resolves a FileEntry's payload to a reader, implementing
// spec.md §4.7.
type Opener struct {
	Stream    *cipher.Stream
	Key       wolfkey.Key
	DataBase  uint64 // archive-absolute data_position from the header
	Cache     *Cache
	ArchiveID uint64
}

// Open returns a reader over f's decrypted (and, if compressed,
// decompressed) payload. f must satisfy f.IsFile(). For an uncompressed
// file the returned reader holds the exclusive stream borrow for its
// whole lifetime and must be closed; for a compressed file the borrow is
// released before Open returns, since the compressed bytes are read in
// one bulk read up front.
func (o *Opener) Open(f header.FileEntry, borrow *Borrow) (io.ReadCloser, error) {
	if !f.IsFile() {
		return nil, ErrNotAFile
	}

	release, err := borrow.Acquire()
	if err != nil {
		return nil, err
	}

	absolute := int64(o.DataBase + f.DataPosition)
	if err := o.Stream.Seek(absolute); err != nil {
		release()
		return nil, fmt.Errorf("dxarchive: seeking to file payload: %w", err)
	}

	if f.CompressedDataSize == nil {
		return &uncompressedReader{
			stream:  o.Stream,
			key:     o.Key,
			size:    f.DataSize,
			release: release,
		}, nil
	}
	defer release()

	compressedSize := *f.CompressedDataSize
	if cached, ok := o.Cache.Get(o.ArchiveID, f.DataPosition); ok {
		return &staticReader{r: bytes.NewReader(cached)}, nil
	}

	raw := make([]byte, compressedSize)
	if err := o.Stream.ReadRaw(raw); err != nil {
		return nil, fmt.Errorf("dxarchive: reading compressed payload: %w", err)
	}
	cipher.XOR(raw, o.Key, int64(f.DataSize))

	decoded, err := Decompress(raw, f.DataSize)
	if err != nil {
		return nil, err
	}
	o.Cache.Set(o.ArchiveID, f.DataPosition, decoded)

	return &staticReader{r: bytes.NewReader(decoded)}, nil
}

// uncompressedReader streams a file's payload directly against the
// keystream, using the offset oddity documented in spec.md §9: the XOR
// index is (data_size + offset_in_file), not the stream's absolute
// archive position.
type uncompressedReader struct {
	stream  *cipher.Stream
	key     wolfkey.Key
	size    uint64
	offset  uint64
	release func()
	closed  bool
}

func (r *uncompressedReader) Read(p []byte) (int, error) {
	if r.offset == r.size {
		return 0, io.EOF
	}
	remaining := r.size - r.offset
	if uint64(len(p)) > remaining {
		p = p[:remaining]
	}

	if err := r.stream.ReadRaw(p); err != nil {
		return 0, err
	}
	cipher.XOR(p, r.key, int64(r.size+r.offset))
	r.offset += uint64(len(p))
	return len(p), nil
}

func (r *uncompressedReader) Close() error {
	if !r.closed {
		r.closed = true
		r.release()
	}
	return nil
}

// staticReader serves bytes from an already-decompressed buffer and
// holds no exclusive borrow.
type staticReader struct {
	r *bytes.Reader
}

func (s *staticReader) Read(p []byte) (int, error) { return s.r.Read(p) }
func (s *staticReader) Close() error               { return nil }
