// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package dxarchive reads "Data.wolf" (DX archive version 6), the
// encrypted, optionally LZ-compressed archive format used by the Wolf
// RPG Editor runtime. Given a seekable byte stream, it parses the
// header, exposes the directory tree, resolves file names, and streams
// the decrypted (and, where needed, decompressed) contents of any file.
package dxarchive

import (
	"fmt"
	"io"

	"github.com/wolfrpg/dxarchive/internal/cipher"
	"github.com/wolfrpg/dxarchive/internal/header"
	wolfkey "github.com/wolfrpg/dxarchive/internal/key"
	"github.com/wolfrpg/dxarchive/internal/nav"
	"github.com/wolfrpg/dxarchive/internal/payload"
)

// Re-exported data model types: see internal/header for field docs.
type (
	FileEntry  = header.FileEntry
	DirEntry   = header.DirEntry
	Attributes = header.Attributes
	FileTimes  = header.FileTimes
	WalkEntry  = nav.WalkEntry
	WalkIter   = nav.WalkIter
)

const (
	Directory = header.Directory
	Archive   = header.Archive
)

// KeyString is the raw key material an archive's keystream is derived
// from (spec.md §4.1).
type KeyString = wolfkey.KeyString

// DefaultKeyString is the key string baked into the stock Wolf RPG
// Editor runtime.
var DefaultKeyString = wolfkey.DefaultKeyString

// Options configures how an archive is opened.
type Options struct {
	// Key is the key string the keystream is derived from. A zero-valued
	// Key selects DefaultKeyString, so an all-zero key string cannot be
	// requested through Options.
	Key KeyString

	// UseDefaultKey selects DefaultKeyString regardless of Key. Set this
	// (or just use Options{}) for the common case of reading a stock,
	// unmodified Data.wolf.
	UseDefaultKey bool

	// CacheMB bounds the decompressed-payload cache; <= 0 selects a 64MB
	// default. See SPEC_FULL.md §10 for the equivalent
	// WOLFDATA_CACHE_MB environment variable read by cmd/wolfextract.
	CacheMB int
}

// Archive is a reader for a single DX archive. The zero value is not
// usable; construct one with Open.
type Archive struct {
	stream  *cipher.Stream
	key     wolfkey.Key
	id      uint64
	cacheMB int

	idx    *header.Index
	nav    nav.Navigator
	opener *payload.Opener
	borrow payload.Borrow
}

// Open wraps src, deriving the archive's XOR keystream from opts. It
// does not read anything from src; call ReadHeader next.
func Open(src io.ReadSeeker, opts Options) *Archive {
	keyString := opts.Key
	if opts.UseDefaultKey || keyString == (KeyString{}) {
		keyString = DefaultKeyString
	}
	k := wolfkey.Derive(keyString)

	a := &Archive{
		id: payload.NextArchiveID(),
	}
	a.stream = cipher.New(src, k)
	a.key = k
	a.cacheMB = opts.CacheMB
	return a
}

// ReadHeader reads the archive header and the name, file, and directory
// tables (spec.md §4.4). It may be called exactly once; a second call
// fails with ErrHeaderAlreadyRead.
func (a *Archive) ReadHeader() error {
	if a.idx != nil {
		return ErrHeaderAlreadyRead
	}

	release, err := a.borrow.Acquire()
	if err != nil {
		return err
	}
	defer release()

	if err := a.stream.Seek(0); err != nil {
		return fmt.Errorf("dxarchive: seeking to archive start: %w", err)
	}

	idx, err := header.ParseHeader(a.stream)
	if err != nil {
		return err
	}

	cache, err := payload.NewCache(a.cacheMB)
	if err != nil {
		return fmt.Errorf("dxarchive: creating decompression cache: %w", err)
	}

	a.idx = idx
	a.nav = nav.New(idx)
	a.opener = &payload.Opener{
		Stream:    a.stream,
		Key:       a.key,
		DataBase:  idx.DataPosition,
		Cache:     cache,
		ArchiveID: a.id,
	}
	return nil
}

func (a *Archive) requireHeader() error {
	if a.idx == nil {
		return ErrHeaderNotRead
	}
	return nil
}

// Root returns the archive's root directory.
func (a *Archive) Root() (DirEntry, error) {
	if err := a.requireHeader(); err != nil {
		return DirEntry{}, err
	}
	return a.nav.Root()
}

// Parent returns dir's parent directory, or ok == false if dir is root.
func (a *Archive) Parent(dir DirEntry) (parent DirEntry, ok bool, err error) {
	if err := a.requireHeader(); err != nil {
		return DirEntry{}, false, err
	}
	return a.nav.Parent(dir)
}

// DirFromFile resolves the directory a directory-typed FileEntry points to.
func (a *Archive) DirFromFile(f FileEntry) (DirEntry, error) {
	if err := a.requireHeader(); err != nil {
		return DirEntry{}, err
	}
	return a.nav.DirFromFile(f)
}

// FileFromDir resolves the FileEntry whose name is dir's own name.
func (a *Archive) FileFromDir(dir DirEntry) (FileEntry, error) {
	if err := a.requireHeader(); err != nil {
		return FileEntry{}, err
	}
	return a.nav.FileFromDir(dir)
}

// NthChild returns dir's i'th child in on-disk order.
func (a *Archive) NthChild(dir DirEntry, i uint64) (f FileEntry, ok bool, err error) {
	if err := a.requireHeader(); err != nil {
		return FileEntry{}, false, err
	}
	return a.nav.NthChild(dir, i)
}

// Name resolves a FileEntry's decoded, original-case name.
func (a *Archive) Name(f FileEntry) (string, error) {
	if err := a.requireHeader(); err != nil {
		return "", err
	}
	return a.nav.FileName(f)
}

// Walk returns a pre-order, depth-first iterator over dir and its
// descendants. See nav.Walk for iteration semantics.
func (a *Archive) Walk(dir DirEntry) (*WalkIter, error) {
	if err := a.requireHeader(); err != nil {
		return nil, err
	}
	return nav.Walk(a.nav, dir), nil
}

// OpenFile returns a reader over f's decrypted (and, if compressed,
// decompressed) contents. f must satisfy f.IsFile(). The returned reader
// must be closed. While an uncompressed file's reader is open, any other
// attempt to open a file fails with payload.ErrReaderBusy; metadata
// operations (Root, Parent, NthChild, ...) remain unaffected since they
// never touch the stream.
func (a *Archive) OpenFile(f FileEntry) (io.ReadCloser, error) {
	if err := a.requireHeader(); err != nil {
		return nil, err
	}
	return a.opener.Open(f, &a.borrow)
}
