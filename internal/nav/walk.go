// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package nav

import "github.com/wolfrpg/dxarchive/internal/header"

// WalkEntry is one item yielded by a [WalkIter]: either a file or a
// directory, together with the path components leading to it from the
// directory the walk started at (exclusive of that starting directory's
// own name).
type WalkEntry struct {
	File           header.FileEntry
	PathComponents []string
}

// WalkIter is a lazy pre-order, depth-first traversal of a directory and
// its descendants, implemented as an explicit stack of (entry, path)
// frames so that a single walk never needs more than one exclusive
// stream borrow at a time downstream, and so it stays cheap to resume at
// any child.
type WalkIter struct {
	nav   Navigator
	stack []frame
	err   error
}

type frame struct {
	file header.FileEntry
	path []string
}

// Walk begins a pre-order walk of dir, starting with dir itself. The
// first item Next returns is dir's own entry (resolved via
// [Navigator.FileFromDir] where possible, or synthesized for a root that
// owns no entry of its own) with no path components.
//
// The cross-table closure invariant (spec.md §7) guarantees every
// non-root directory has an owning FileEntry, so FileFromDir only ever
// fails for the root; the synthesized entry's DataPosition is
// consequently hardcoded to 0, the directory table offset [Navigator.Root]
// always resolves, rather than reused from dir.DirectoryPosition (which
// names dir's *owning FileEntry*, not dir's own table offset, and is
// irrelevant here).
func Walk(n Navigator, dir header.DirEntry) *WalkIter {
	self, err := n.FileFromDir(dir)
	if err != nil {
		self = header.FileEntry{
			Attributes:   header.Directory,
			DataPosition: 0,
		}
	}
	return &WalkIter{
		nav:   n,
		stack: []frame{{file: self}},
	}
}

// Next advances the walk. ok is false once the walk is exhausted, with a
// nil error; a non-nil error aborts the walk at the point of failure.
func (w *WalkIter) Next() (entry WalkEntry, ok bool, err error) {
	if w.err != nil {
		return WalkEntry{}, false, w.err
	}
	if len(w.stack) == 0 {
		return WalkEntry{}, false, nil
	}

	fr := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]

	if fr.file.IsDir() {
		if err := w.pushChildren(fr); err != nil {
			w.err = err
			return WalkEntry{}, false, err
		}
	}

	return WalkEntry{File: fr.file, PathComponents: fr.path}, true, nil
}

// pushChildren pushes fr's children onto the stack in reverse order, so
// that popping the stack visits them in the same order [Navigator.NthChild]
// would enumerate them.
func (w *WalkIter) pushChildren(fr frame) error {
	dirEntry, err := w.nav.DirFromFile(fr.file)
	if err != nil {
		return err
	}

	for i := dirEntry.NumFiles; i > 0; i-- {
		child, ok, err := w.nav.NthChild(dirEntry, i-1)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidFilePosition
		}
		name, err := w.nav.FileName(child)
		if err != nil {
			return err
		}

		path := make([]string, len(fr.path)+1)
		copy(path, fr.path)
		path[len(fr.path)] = name

		w.stack = append(w.stack, frame{file: child, path: path})
	}
	return nil
}
