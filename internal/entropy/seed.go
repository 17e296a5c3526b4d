// Package entropy provides seeds for session RNGs. Each run's randomness
// flows from a single int64 seed so any run can be replayed exactly.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// Seed returns a fresh non-negative seed from crypto/rand, falling back to
// the wall clock if the system source fails.
func Seed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return time.Now().UnixNano()
	}
	n := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	return n
}
