// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package payload

import "sync"

// Borrow is a single-holder exclusive lock over the archive's
// underlying byte stream. It is grounded on the teacher's
// reader2readerat.FS reopen guard (internal/reader2readerat/fswrap.go),
// adapted from a reference-counted "many readers may share a reopened
// copy" scheme to a single-holder "only one reader may touch the stream
// at a time" scheme: a DX archive has exactly one underlying stream, not
// a pool of independently reopenable files.
type Borrow struct {
	mu   sync.Mutex
	held bool
}

// Acquire takes the exclusive borrow, returning ErrReaderBusy if it is
// already held. On success, release must be called exactly once to give
// the stream back.
func (b *Borrow) Acquire() (release func(), err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.held {
		return nil, ErrReaderBusy
	}
	b.held = true
	return b.release, nil
}

func (b *Borrow) release() {
	b.mu.Lock()
	b.held = false
	b.mu.Unlock()
}
