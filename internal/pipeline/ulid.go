package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// ULID generation without an external dependency: 26 Crockford Base32
// characters over a 48-bit timestamp plus 80 random bits. A sequence
// counter in the first random bytes keeps IDs unique and sortable within
// one millisecond.

var (
	ulidMu  sync.Mutex
	lastTS  uint64
	lastSeq uint16
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

func generateULID() string {
	ulidMu.Lock()
	defer ulidMu.Unlock()

	ts := uint64(time.Now().UnixMilli())
	if ts == lastTS {
		lastSeq++
	} else {
		lastTS = ts
		lastSeq = 0
	}

	var b [16]byte
	b[0] = byte(ts >> 40)
	b[1] = byte(ts >> 32)
	b[2] = byte(ts >> 24)
	b[3] = byte(ts >> 16)
	b[4] = byte(ts >> 8)
	b[5] = byte(ts)
	rand.Read(b[6:])
	binary.BigEndian.PutUint16(b[6:8], lastSeq)

	return encodeBase32(b)
}

// encodeBase32 renders 128 bits as 26 characters. The first character
// encodes only the top 3 bits; every later character takes the next 5
// bits of the big-endian bit string.
func encodeBase32(b [16]byte) string {
	var out [26]byte
	out[0] = crockford[b[0]>>5]
	for i := 1; i < 26; i++ {
		var v byte
		start := i*5 - 2
		for j := start; j < start+5; j++ {
			v = v<<1 | (b[j/8]>>(7-j%8))&1
		}
		out[i] = crockford[v]
	}
	return string(out[:])
}
