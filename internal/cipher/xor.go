// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package cipher

import "github.com/wolfrpg/dxarchive/internal/key"

// XOR decodes buf in place against the keystream starting at the given
// logical index. Unlike [Stream], which always indexes the keystream by
// absolute archive offset, file payload data is keyed by an offset that
// is not the archive offset (see spec.md §9); this free function lets
// callers supply whatever index the format actually requires.
func XOR(buf []byte, k key.Key, startIndex int64) {
	for i := range buf {
		buf[i] ^= k[(startIndex+int64(i))%key.Len]
	}
}
