// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package nav_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/wolfrpg/dxarchive/internal/cipher"
	"github.com/wolfrpg/dxarchive/internal/header"
	"github.com/wolfrpg/dxarchive/internal/key"
	"github.com/wolfrpg/dxarchive/internal/nav"
	"github.com/wolfrpg/dxarchive/internal/testarchive"
)

// buildNested constructs:
//
//	root/
//	  a/
//	    x.bin
//	    y.bin
//	  b/
//
// matching spec.md §8's S4 scenario, and returns the navigator plus the
// root and "a" DirEntry for assertions.
func buildNested(t *testing.T) (nav.Navigator, header.DirEntry, header.DirEntry) {
	t.Helper()
	b := testarchive.DefaultBuilder()

	xName := b.AddName("x.bin")
	yName := b.AddName("y.bin")
	aName := b.AddName("a")
	bName := b.AddName("b")

	// Each FileEntry is 64 bytes and each DirEntry 32 bytes, added in a
	// fixed order below, so their table offsets are known up front:
	// file table [x=0, y=64, a=128, b=192], directory table [root=0, a=32, b=64].
	const (
		xFile = 0
		yFile = 64
		aFile = 128
		bFile = 192

		rootOff = 0
		aDirOff = 32
		bDirOff = 64
	)

	if got := b.AddFileEntry(testarchive.FileEntryOpts{NamePosition: xName, Attributes: header.Archive, DataSize: 1}); got != xFile {
		t.Fatalf("x.bin file offset = %d, want %d", got, xFile)
	}
	if got := b.AddFileEntry(testarchive.FileEntryOpts{NamePosition: yName, Attributes: header.Archive, DataSize: 1}); got != yFile {
		t.Fatalf("y.bin file offset = %d, want %d", got, yFile)
	}
	if got := b.AddFileEntry(testarchive.FileEntryOpts{NamePosition: aName, Attributes: header.Directory, DataPosition: aDirOff}); got != aFile {
		t.Fatalf("a file offset = %d, want %d", got, aFile)
	}
	if got := b.AddFileEntry(testarchive.FileEntryOpts{NamePosition: bName, Attributes: header.Directory, DataPosition: bDirOff}); got != bFile {
		t.Fatalf("b file offset = %d, want %d", got, bFile)
	}

	b.AddPayload(1, []byte("x"))
	b.AddPayload(1, []byte("y"))

	// Root owns no FileEntry of its own; DirectoryPosition is set to a
	// value no real FileEntry ever lands on (table offsets here are all
	// multiples of 64 below 256), so FileFromDir(root) reliably misses
	// and nav.Walk falls back to synthesizing root's self-entry.
	const rootDirectoryPosition = ^uint64(0)

	rootOffVal := uint64(rootOff)
	if got := b.AddDirEntry(testarchive.DirEntryOpts{DirectoryPosition: rootDirectoryPosition, NumFiles: 2, FileHeadPosition: aFile}); got != rootOff {
		t.Fatalf("root dir offset = %d, want %d", got, rootOff)
	}
	if got := b.AddDirEntry(testarchive.DirEntryOpts{DirectoryPosition: aFile, ParentDirectoryPosition: &rootOffVal, NumFiles: 2, FileHeadPosition: xFile}); got != aDirOff {
		t.Fatalf("a dir offset = %d, want %d", got, aDirOff)
	}
	if got := b.AddDirEntry(testarchive.DirEntryOpts{DirectoryPosition: bFile, ParentDirectoryPosition: &rootOffVal, NumFiles: 0}); got != bDirOff {
		t.Fatalf("b dir offset = %d, want %d", got, bDirOff)
	}
	archive := b.Build()

	k := key.Derive(key.DefaultKeyString)
	idx, err := header.ParseHeader(cipher.New(bytes.NewReader(archive), k))
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	n := nav.New(idx)
	root, err := n.Root()
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	aDir, err := n.DirFromFile(idx.FileByOffset[aFile])
	if err != nil {
		t.Fatalf("DirFromFile(a): %v", err)
	}
	return n, root, aDir
}

func TestNavigatorRootAndChildren(t *testing.T) {
	n, root, aDir := buildNested(t)

	if !root.IsRoot() {
		t.Fatal("root.IsRoot() = false")
	}
	if root.NumFiles != 2 {
		t.Fatalf("root.NumFiles = %d, want 2", root.NumFiles)
	}

	first, ok, err := n.NthChild(root, 0)
	if err != nil || !ok {
		t.Fatalf("NthChild(root, 0) = %v, %v, %v", first, ok, err)
	}
	name, err := n.FileName(first)
	if err != nil || name != "a" {
		t.Fatalf("FileName(first child) = %q, %v, want \"a\"", name, err)
	}

	_, ok, err = n.NthChild(root, 2)
	if err != nil || ok {
		t.Fatalf("NthChild(root, 2) = _, %v, %v, want ok=false, err=nil", ok, err)
	}

	if aDir.NumFiles != 2 {
		t.Fatalf("aDir.NumFiles = %d, want 2", aDir.NumFiles)
	}
	xEntry, ok, err := n.NthChild(aDir, 0)
	if err != nil || !ok {
		t.Fatalf("NthChild(a, 0) = %v, %v, %v", xEntry, ok, err)
	}
	xName, _ := n.FileName(xEntry)
	if xName != "x.bin" {
		t.Fatalf("NthChild(a, 0) name = %q, want x.bin", xName)
	}
}

func TestNavigatorParent(t *testing.T) {
	n, root, aDir := buildNested(t)

	parent, ok, err := n.Parent(aDir)
	if err != nil || !ok {
		t.Fatalf("Parent(a) = %v, %v, %v", parent, ok, err)
	}
	if parent.DirectoryPosition != root.DirectoryPosition {
		t.Fatalf("Parent(a) = %+v, want root %+v", parent, root)
	}

	_, ok, err = n.Parent(root)
	if err != nil || ok {
		t.Fatalf("Parent(root) = _, %v, %v, want ok=false, err=nil", ok, err)
	}
}

func TestNavigatorDirFromFileRejectsRegularFile(t *testing.T) {
	n, _, aDir := buildNested(t)

	xEntry, ok, err := n.NthChild(aDir, 0)
	if err != nil || !ok {
		t.Fatalf("NthChild(a, 0) = %v, %v, %v", xEntry, ok, err)
	}
	if _, err := n.DirFromFile(xEntry); !errors.Is(err, nav.ErrNotADir) {
		t.Fatalf("DirFromFile(x.bin) = %v, want ErrNotADir", err)
	}
}
