package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"
)

// Query is anything the cache engine can memoize. Implementations
// enumerate their own fields in declaration order through FieldHasher
// rather than relying on reflection, so the hash is stable across Go
// versions and struct layout changes in the runtime, not just across
// process restarts.
type Query interface {
	QueryTypeName() string
	HashFields(fh *FieldHasher)
}

// FieldHasher is a streaming leaf-encoder over a hash.Hash: integers as
// little-endian fixed width, strings as length-prefixed UTF-8, booleans
// as one byte, optionals as a presence byte followed by the payload,
// collections as a length prefix followed by each element.
type FieldHasher struct {
	h hash.Hash
}

func newFieldHasher() *FieldHasher {
	return &FieldHasher{h: sha256.New()}
}

func (fh *FieldHasher) String(s string) *FieldHasher {
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(s)))
	fh.h.Write(lenBuf[:])
	fh.h.Write([]byte(s))
	return fh
}

func (fh *FieldHasher) Int(n int64) *FieldHasher {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(n))
	fh.h.Write(buf[:])
	return fh
}

func (fh *FieldHasher) Bool(b bool) *FieldHasher {
	if b {
		fh.h.Write([]byte{0x01})
	} else {
		fh.h.Write([]byte{0x00})
	}
	return fh
}

func (fh *FieldHasher) Bytes(b []byte) *FieldHasher {
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(b)))
	fh.h.Write(lenBuf[:])
	fh.h.Write(b)
	return fh
}

// OptionalString encodes an absent value as a single 0x00 byte, or
// 0x01 followed by the string's own encoding.
func (fh *FieldHasher) OptionalString(present bool, s string) *FieldHasher {
	if !present {
		fh.h.Write([]byte{0x00})
		return fh
	}
	fh.h.Write([]byte{0x01})
	return fh.String(s)
}

// Strings encodes a string slice as a length prefix followed by each
// element's own length-prefixed encoding.
func (fh *FieldHasher) Strings(items []string) *FieldHasher {
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(items)))
	fh.h.Write(lenBuf[:])
	for _, s := range items {
		fh.String(s)
	}
	return fh
}

// Hash computes the stable content hash of q: its type name followed
// by its fields in declaration order, per spec §4.H.
func Hash(q Query) []byte {
	fh := newFieldHasher()
	fh.String(q.QueryTypeName())
	q.HashFields(fh)
	return fh.h.Sum(nil)
}
