package utils

import (
	"encoding/binary"
	"sync"

	"golang.org/x/crypto/sha3"
)

var shake256Pool = sync.Pool{
	New: func() interface{} {
		return sha3.NewShake256()
	},
}

// Stream is a deterministic, unbounded pseudo-random byte stream read from a
// SHAKE256 XOF. A Stream is owned by a single goroutine; call Close to return
// its state to the pool.
type Stream struct {
	h   sha3.ShakeHash
	buf [8]byte
}

// NewStream absorbs a domain-separated seed and returns a stream positioned
// at the first output byte. The domain is prefixed with its length so streams
// of different domains never collide.
// Panics if domain is longer than 255 bytes.
func NewStream(domain string, seed []byte) *Stream {
	domainBytes := []byte(domain)
	if len(domainBytes) > 255 {
		panic("domain string must be at most 255 bytes")
	}

	h := shake256Pool.Get().(sha3.ShakeHash)
	h.Reset()
	h.Write([]byte{byte(len(domainBytes))})
	h.Write(domainBytes)
	h.Write(seed)
	return &Stream{h: h}
}

// Read fills p with the next bytes of the stream. It never fails.
func (s *Stream) Read(p []byte) (int, error) {
	return s.h.Read(p)
}

// Uint64 returns the next 8 bytes of the stream as a little-endian integer.
func (s *Stream) Uint64() uint64 {
	_, _ = s.h.Read(s.buf[:])
	return binary.LittleEndian.Uint64(s.buf[:])
}

// Float64 returns a uniform value in (0, 1] with 53 bits of precision.
// Zero is excluded so the result is always a valid logarithm argument.
func (s *Stream) Float64() float64 {
	return float64(s.Uint64()>>11+1) / (1 << 53)
}

// Close resets the underlying hash and returns it to the pool. The stream
// must not be used afterwards.
func (s *Stream) Close() {
	if s.h == nil {
		return
	}
	s.h.Reset()
	shake256Pool.Put(s.h)
	s.h = nil
}
