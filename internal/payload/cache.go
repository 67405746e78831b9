// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package payload

import (
	"context"
	"encoding/binary"
	"strconv"
	"sync"

	"github.com/allegro/bigcache/v3"
	"github.com/cespare/xxhash/v2"
)

// Cache memoizes the decompressed bytes of a file payload, keyed by
// (archive instance, data position), so that re-opening the same
// compressed file does not repeat the back-reference decode. Grounded on
// the teacher's internal/decompressioncache, which caches expensive
// decompression work in a bigcache.BigCache; adapted here from its
// checkpoint-stepper shape (built for formats whose decompression is
// itself incremental, like the teacher's tar/zip members) down to a
// whole-buffer shape, since spec.md §4.8 always decompresses a complete
// file payload in one call.
type Cache struct {
	bc *bigcache.BigCache
}

// NewCache creates a cache capped at maxMB megabytes. maxMB <= 0 selects
// a 64MB default.
func NewCache(maxMB int) (*Cache, error) {
	if maxMB <= 0 {
		maxMB = 64
	}
	cfg := bigcache.Config{
		Shards:           256,
		HardMaxCacheSize: maxMB,
		MaxEntrySize:     500,
	}
	bc, err := bigcache.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	return &Cache{bc: bc}, nil
}

// cacheKey builds a compact cache key from an archive instance identifier and
// a data-table offset, in the style of the teacher's internal/fileid
// (a xxhash.Digest fed via binary.Write to build a synthetic identifier).
func cacheKey(archiveID uint64, dataPosition uint64) string {
	var h xxhash.Digest
	binary.Write(&h, binary.LittleEndian, archiveID)
	binary.Write(&h, binary.LittleEndian, dataPosition)
	return strconv.FormatUint(h.Sum64(), 36)
}

// Get returns the cached decompressed buffer, if any.
func (c *Cache) Get(archiveID, dataPosition uint64) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	v, err := c.bc.Get(cacheKey(archiveID, dataPosition))
	if err != nil {
		return nil, false
	}
	return v, true
}

// Set stores a decompressed buffer.
func (c *Cache) Set(archiveID, dataPosition uint64, data []byte) {
	if c == nil {
		return
	}
	_ = c.bc.Set(cacheKey(archiveID, dataPosition), data)
}

var nextArchiveID uint64
var archiveIDMu sync.Mutex

// NextArchiveID hands out a process-unique identifier for a freshly
// opened archive, used only to namespace cache keys between archives
// that happen to share data-table offsets.
func NextArchiveID() uint64 {
	archiveIDMu.Lock()
	defer archiveIDMu.Unlock()
	nextArchiveID++
	return nextArchiveID
}
