// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Command wolfextract extracts every file from a Data.wolf archive to
// ./out/, preserving the archive's directory tree.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/wolfrpg/dxarchive"
)

func main() {
	if err := run(); err != nil {
		slog.Error("wolfextractFailed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	glob := flag.String("glob", "", "only extract paths matching this doublestar glob pattern")
	verbose := flag.Bool("v", false, "enable verbose structured logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-glob PATTERN] [-v] <archive>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		return errors.New("wolfextract: exactly one archive path is required")
	}
	archivePath := flag.Arg(0)

	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("wolfextract: %w", err)
	}
	defer f.Close()

	a := dxarchive.Open(f, dxarchive.Options{
		UseDefaultKey: true,
		CacheMB:       cacheMBFromEnv(),
	})
	if err := a.ReadHeader(); err != nil {
		return fmt.Errorf("wolfextract: reading archive header: %w", err)
	}
	slog.Debug("headerRead", "archive", archivePath)

	root, err := a.Root()
	if err != nil {
		return fmt.Errorf("wolfextract: %w", err)
	}

	const outDir = "out"
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("wolfextract: %w", err)
	}

	it, err := a.Walk(root)
	if err != nil {
		return fmt.Errorf("wolfextract: %w", err)
	}

	count := 0
	for {
		entry, ok, err := it.Next()
		if err != nil {
			return fmt.Errorf("wolfextract: walking archive: %w", err)
		}
		if !ok {
			break
		}
		if entry.File.IsDir() || len(entry.PathComponents) == 0 {
			continue
		}

		relPath := strings.Join(entry.PathComponents, "/")
		if *glob != "" {
			matched, err := doublestar.Match(*glob, relPath)
			if err != nil {
				return fmt.Errorf("wolfextract: invalid -glob pattern: %w", err)
			}
			if !matched {
				continue
			}
		}

		if err := extractFile(a, entry.File, filepath.Join(outDir, filepath.FromSlash(relPath))); err != nil {
			return fmt.Errorf("wolfextract: extracting %s: %w", relPath, err)
		}
		slog.Debug("extracted", "path", relPath, "size", entry.File.DataSize, "compressed", entry.File.IsCompressed())
		count++
	}

	slog.Info("wolfextractDone", "archive", archivePath, "files", count)
	return nil
}

func extractFile(a *dxarchive.Archive, f dxarchive.FileEntry, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	rc, err := a.OpenFile(f)
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}

// cacheMBFromEnv reads WOLFDATA_CACHE_MB, the equivalent of the teacher's
// BEGB environment variable for sizing its reopen-handle cache; an unset
// or unparseable value selects payload.NewCache's built-in default.
func cacheMBFromEnv() int {
	v := os.Getenv("WOLFDATA_CACHE_MB")
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalidCacheMBEnv", "value", v)
		return 0
	}
	return n
}
