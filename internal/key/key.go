// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package key derives the 12-byte XOR keystream used throughout a DX
// archive from the fixed 12-byte key string baked into the Wolf RPG
// Editor runtime.
package key

// Len is the width of both the key string and the derived key.
const Len = 12

// KeyString is the raw, undrived 12-byte key material an archive is
// built from. Kept as a distinct type from [Key] so that the derivation
// step in [Derive] cannot accidentally be skipped.
type KeyString [Len]byte

// Key is the derived 12-byte XOR keystream.
type Key [Len]byte

// DefaultKeyString is the key string baked into the stock Wolf RPG
// Editor runtime.
var DefaultKeyString = KeyString{0x38, 0x50, 0x40, 0x28, 0x72, 0x4F, 0x21, 0x70, 0x3B, 0x73, 0x35, 0x38}

func rotl4(b byte) byte { return b<<4 | b>>4 }
func rotl3(b byte) byte { return b<<3 | b>>5 }
func rotl5(b byte) byte { return b<<5 | b>>3 }

// Derive transforms a key string into the keystream used to XOR every
// byte of an archive. See spec.md §4.1 for the per-byte transform table;
// this must match it exactly, byte for byte.
func Derive(s KeyString) Key {
	var k Key
	k[0] = ^s[0]
	k[1] = rotl4(s[1])
	k[2] = s[2] ^ 0x8A
	k[3] = ^rotl4(s[3])
	k[4] = ^s[4]
	k[5] = s[5] ^ 0xAC
	k[6] = ^s[6]
	k[7] = ^rotl5(s[7])
	k[8] = rotl3(s[8])
	k[9] = s[9] ^ 0x7F
	k[10] = rotl4(s[10]) ^ 0xD6
	k[11] = s[11] ^ 0xCC
	return k
}
