// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package header

import (
	"fmt"

	"github.com/wolfrpg/dxarchive/internal/cipher"
	"github.com/wolfrpg/dxarchive/internal/sjis"
)

// ParseHeader reads the fixed archive header from s, then the name,
// file, and directory tables that follow it, and returns the populated
// Index. s must be positioned at the very start of the archive. This
// consumes s's exclusive use for its whole duration; callers must not
// read from s again until ParseHeader returns.
func ParseHeader(s *cipher.Stream) (*Index, error) {
	var magic [2]byte
	if err := s.ReadFull(magic[:]); err != nil {
		return nil, fmt.Errorf("dxarchive: reading magic: %w", err)
	}
	if magic != [2]byte{'D', 'X'} {
		return nil, &InvalidMagicError{Magic: magic}
	}

	version, err := s.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("dxarchive: reading version: %w", err)
	}
	if version != 6 {
		return nil, &InvalidVersionError{Version: version}
	}

	fileHeaderSize, err := s.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("dxarchive: reading file_header_size: %w", err)
	}
	dataPosition, err := s.ReadUint64()
	if err != nil {
		return nil, fmt.Errorf("dxarchive: reading data_position: %w", err)
	}
	fileNameTablePosition, err := s.ReadUint64()
	if err != nil {
		return nil, fmt.Errorf("dxarchive: reading file_name_table_position: %w", err)
	}
	fileTablePosition, err := s.ReadUint64()
	if err != nil {
		return nil, fmt.Errorf("dxarchive: reading file_table_position: %w", err)
	}
	directoryTablePosition, err := s.ReadUint64()
	if err != nil {
		return nil, fmt.Errorf("dxarchive: reading directory_table_position: %w", err)
	}
	codePage, err := s.ReadUint64()
	if err != nil {
		return nil, fmt.Errorf("dxarchive: reading code_page: %w", err)
	}
	if codePage != 932 {
		return nil, &UnknownCodePageError{CodePage: codePage}
	}

	if err := s.Seek(int64(fileNameTablePosition)); err != nil {
		return nil, fmt.Errorf("dxarchive: seeking to file name table: %w", err)
	}

	idx := &Index{
		NameByOffset: make(map[uint64]string),
		FileByOffset: make(map[uint64]FileEntry),
		DirByOffset:  make(map[uint64]DirEntry),
		DataPosition: dataPosition,
	}

	for {
		relative := uint64(s.Pos()) - fileNameTablePosition
		if relative >= fileTablePosition {
			break
		}
		name, err := readNameEntry(s)
		if err != nil {
			return nil, err
		}
		idx.NameByOffset[relative] = name
	}

	for {
		headerPosition := uint64(s.Pos()) - fileNameTablePosition
		if headerPosition >= directoryTablePosition {
			break
		}
		relative := headerPosition - fileTablePosition
		entry, err := readFileEntry(s)
		if err != nil {
			return nil, err
		}
		idx.FileByOffset[relative] = entry
	}

	for {
		headerPosition := uint64(s.Pos()) - fileNameTablePosition
		if headerPosition >= uint64(fileHeaderSize) {
			break
		}
		relative := headerPosition - directoryTablePosition
		entry, err := readDirEntry(s)
		if err != nil {
			return nil, err
		}
		idx.DirByOffset[relative] = entry
	}

	return idx, nil
}

// readNameEntry reads one name-table record (spec.md §3, §4.4) and
// returns its original-case name. The upper-case variant is read and
// parity-checked but discarded once it has served its purpose.
func readNameEntry(s *cipher.Stream) (string, error) {
	length, err := s.ReadUint16()
	if err != nil {
		return "", fmt.Errorf("dxarchive: reading name length: %w", err)
	}
	parity, err := s.ReadUint16()
	if err != nil {
		return "", fmt.Errorf("dxarchive: reading name parity: %w", err)
	}

	if length == 0 {
		if parity != 0 {
			return "", ErrFileNameParity
		}
		return "", nil
	}

	upperRaw := make([]byte, int(length)*4)
	if err := s.ReadFull(upperRaw); err != nil {
		return "", fmt.Errorf("dxarchive: reading upper-case name bytes: %w", err)
	}
	var sum uint16
	for _, b := range upperRaw {
		sum += uint16(b)
	}
	if sum != parity {
		return "", ErrFileNameParity
	}

	raw := make([]byte, int(length)*4)
	if err := s.ReadFull(raw); err != nil {
		return "", fmt.Errorf("dxarchive: reading original-case name bytes: %w", err)
	}

	name, err := sjis.DecodeTrimmed(raw)
	if err != nil {
		return "", err
	}
	return name, nil
}

func readFileEntry(s *cipher.Stream) (FileEntry, error) {
	namePosition, err := s.ReadUint64()
	if err != nil {
		return FileEntry{}, fmt.Errorf("dxarchive: reading name_position: %w", err)
	}
	attributes, err := s.ReadUint64()
	if err != nil {
		return FileEntry{}, fmt.Errorf("dxarchive: reading attributes: %w", err)
	}
	created, err := s.ReadUint64()
	if err != nil {
		return FileEntry{}, fmt.Errorf("dxarchive: reading created: %w", err)
	}
	accessed, err := s.ReadUint64()
	if err != nil {
		return FileEntry{}, fmt.Errorf("dxarchive: reading accessed: %w", err)
	}
	modified, err := s.ReadUint64()
	if err != nil {
		return FileEntry{}, fmt.Errorf("dxarchive: reading modified: %w", err)
	}
	dataPosition, err := s.ReadUint64()
	if err != nil {
		return FileEntry{}, fmt.Errorf("dxarchive: reading data_position: %w", err)
	}
	dataSize, err := s.ReadUint64()
	if err != nil {
		return FileEntry{}, fmt.Errorf("dxarchive: reading data_size: %w", err)
	}
	compressedDataSize, err := s.ReadUint64()
	if err != nil {
		return FileEntry{}, fmt.Errorf("dxarchive: reading compressed_data_size: %w", err)
	}

	entry := FileEntry{
		NamePosition: namePosition,
		Attributes:   Attributes(attributes),
		Times: FileTimes{
			Created:  created,
			Accessed: accessed,
			Modified: modified,
		},
		DataPosition: dataPosition,
		DataSize:     dataSize,
	}
	if compressedDataSize != sentinel {
		v := compressedDataSize
		entry.CompressedDataSize = &v
	}
	return entry, nil
}

func readDirEntry(s *cipher.Stream) (DirEntry, error) {
	directoryPosition, err := s.ReadUint64()
	if err != nil {
		return DirEntry{}, fmt.Errorf("dxarchive: reading directory_position: %w", err)
	}
	parentDirectoryPosition, err := s.ReadUint64()
	if err != nil {
		return DirEntry{}, fmt.Errorf("dxarchive: reading parent_directory_position: %w", err)
	}
	numFiles, err := s.ReadUint64()
	if err != nil {
		return DirEntry{}, fmt.Errorf("dxarchive: reading num_files: %w", err)
	}
	fileHeadPosition, err := s.ReadUint64()
	if err != nil {
		return DirEntry{}, fmt.Errorf("dxarchive: reading file_head_position: %w", err)
	}

	entry := DirEntry{
		DirectoryPosition: directoryPosition,
		NumFiles:          numFiles,
		FileHeadPosition:  fileHeadPosition,
	}
	if parentDirectoryPosition != sentinel {
		v := parentDirectoryPosition
		entry.ParentDirectoryPosition = &v
	}
	return entry, nil
}
