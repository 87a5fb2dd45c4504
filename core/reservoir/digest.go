package reservoir

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Digest returns a 64-bit fingerprint of a sample in slot order, using enc
// to serialize each item. Two reservoirs that went through identical draws
// over identical streams produce identical digests, which makes it a cheap
// check for deterministic replay and for detecting sample changes between
// reads.
func Digest[T any](items []T, enc func(T) []byte) uint64 {
	d := xxhash.New()
	var sep [1]byte
	for _, item := range items {
		_, _ = d.Write(enc(item))
		_, _ = d.Write(sep[:])
	}
	return d.Sum64()
}

// Int64Bytes serializes an integer for use with Digest.
func Int64Bytes(n int64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(n))
	return buf[:]
}
