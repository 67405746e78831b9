// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package nav

import "github.com/wolfrpg/dxarchive/internal/header"

// Navigator is a thin, stateless view over a parsed archive [header.Index].
type Navigator struct {
	Idx *header.Index
}

// New wraps idx for navigation.
func New(idx *header.Index) Navigator {
	return Navigator{Idx: idx}
}

// Root returns the archive's root directory entry, which always lives
// at offset 0 of the directory table.
func (n Navigator) Root() (header.DirEntry, error) {
	d, ok := n.Idx.DirByOffset[0]
	if !ok {
		return header.DirEntry{}, ErrInvalidFilePosition
	}
	return d, nil
}

// Parent returns dir's parent, or (zero, false, nil) if dir is the root.
func (n Navigator) Parent(dir header.DirEntry) (header.DirEntry, bool, error) {
	if dir.ParentDirectoryPosition == nil {
		return header.DirEntry{}, false, nil
	}
	parent, ok := n.Idx.DirByOffset[*dir.ParentDirectoryPosition]
	if !ok {
		return header.DirEntry{}, false, ErrInvalidDirectoryPosition
	}
	return parent, true, nil
}

// DirFromFile resolves the directory a directory-typed FileEntry points
// to. f must satisfy f.IsDir().
func (n Navigator) DirFromFile(f header.FileEntry) (header.DirEntry, error) {
	if !f.IsDir() {
		return header.DirEntry{}, ErrNotADir
	}
	d, ok := n.Idx.DirByOffset[f.DataPosition]
	if !ok {
		return header.DirEntry{}, ErrInvalidFilePosition
	}
	return d, nil
}

// FileFromDir resolves the FileEntry whose name is dir's own name.
func (n Navigator) FileFromDir(dir header.DirEntry) (header.FileEntry, error) {
	f, ok := n.Idx.FileByOffset[dir.DirectoryPosition]
	if !ok {
		return header.FileEntry{}, ErrInvalidFilePosition
	}
	return f, nil
}

// NthChild returns the i'th child FileEntry of dir in on-disk order.
// ok is false, with a nil error, once i reaches dir.NumFiles.
func (n Navigator) NthChild(dir header.DirEntry, i uint64) (f header.FileEntry, ok bool, err error) {
	if i >= dir.NumFiles {
		return header.FileEntry{}, false, nil
	}
	offset := dir.FileHeadPosition + 64*i
	f, present := n.Idx.FileByOffset[offset]
	if !present {
		return header.FileEntry{}, false, ErrInvalidDirectoryFileIndex
	}
	return f, true, nil
}

// FileName resolves a FileEntry's decoded, original-case name.
func (n Navigator) FileName(f header.FileEntry) (string, error) {
	name, ok := n.Idx.NameByOffset[f.NamePosition]
	if !ok {
		return "", ErrInvalidFileNamePosition
	}
	return name, nil
}
