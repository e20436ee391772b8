package utils

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"io"
	"math"
)

var RandReader io.Reader = rand.Reader

// MaxPoissonLambda bounds the mean accepted by SamplePoisson. Sampling cost
// grows linearly with the mean.
const MaxPoissonLambda = 1 << 16

// ErrInvalidLambda is returned for a Poisson mean outside (0, MaxPoissonLambda].
var ErrInvalidLambda = errors.New("poisson lambda must be in (0, 65536]")

// SecureRandomBytes generates n cryptographically secure random bytes.
// It uses crypto/rand, which relies on the operating system's CSPRNG.
func SecureRandomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	_, err := io.ReadFull(RandReader, buf)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// RandomUint32 returns a uniformly random 32-bit value from RandReader.
func RandomUint32() (uint32, error) {
	b, err := SecureRandomBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// CheckLambda validates a Poisson mean.
func CheckLambda(lambda float64) error {
	if math.IsNaN(lambda) || lambda <= 0 || lambda > MaxPoissonLambda {
		return ErrInvalidLambda
	}
	return nil
}

// SamplePoisson draws one sample from a Poisson distribution with the given
// mean. It counts unit-rate exponential inter-arrival times, each taken as
// -ln(u) of a stream uniform u in (0, 1], until their sum exceeds lambda.
// The number of stream reads is data dependent; the result depends only on
// the stream contents. A non-positive or NaN mean yields 0 and a mean above
// MaxPoissonLambda is clamped; use CheckLambda to reject such means instead.
func SamplePoisson(s *Stream, lambda float64) int {
	if !(lambda > 0) {
		return 0
	}
	if lambda > MaxPoissonLambda {
		lambda = MaxPoissonLambda
	}
	k := 0
	for sum := -math.Log(s.Float64()); sum <= lambda; sum -= math.Log(s.Float64()) {
		k++
	}
	return k
}
