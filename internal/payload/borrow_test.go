// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package payload

import "testing"

func TestBorrowExclusivity(t *testing.T) {
	var b Borrow

	release, err := b.Acquire()
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}

	if _, err := b.Acquire(); err != ErrReaderBusy {
		t.Fatalf("second Acquire while held = %v, want ErrReaderBusy", err)
	}

	release()

	release2, err := b.Acquire()
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	release2()
}
