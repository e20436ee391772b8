package utils

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestStreamGolden(t *testing.T) {
	s := NewStream("test", []byte{1, 2})
	defer s.Close()

	if v := s.Uint64(); v != 5993884836546528390 {
		t.Errorf("first word = %d", v)
	}
	if v := s.Uint64(); v != 2466181984114734060 {
		t.Errorf("second word = %d", v)
	}
}

func TestStreamDeterministic(t *testing.T) {
	a := NewStream("domain", []byte("seed"))
	b := NewStream("domain", []byte("seed"))
	defer a.Close()
	defer b.Close()

	bufA := make([]byte, 1000)
	bufB := make([]byte, 1000)
	_, _ = a.Read(bufA)
	_, _ = b.Read(bufB)
	if !bytes.Equal(bufA, bufB) {
		t.Error("streams with equal inputs diverged")
	}
}

func TestStreamDomainSeparation(t *testing.T) {
	a := NewStream("ab", []byte("c"))
	b := NewStream("a", []byte("bc"))
	defer a.Close()
	defer b.Close()

	if a.Uint64() == b.Uint64() {
		t.Error("domain and seed boundary is ambiguous")
	}
}

func TestStreamReuseAfterClose(t *testing.T) {
	// A pooled state must be fully reset before it serves a new stream.
	first := NewStream("reuse", []byte{9})
	want := first.Uint64()
	first.Close()
	first.Close()

	for i := 0; i < 10; i++ {
		s := NewStream("reuse", []byte{9})
		if got := s.Uint64(); got != want {
			t.Fatalf("iteration %d: got %d, want %d", i, got, want)
		}
		s.Close()
	}
}

func TestStreamDomainTooLong(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for long domain")
		}
	}()
	NewStream(string(make([]byte, 256)), nil)
}

func TestStreamFloat64Range(t *testing.T) {
	s := NewStream("float", nil)
	defer s.Close()
	for i := 0; i < 10000; i++ {
		u := s.Float64()
		if u <= 0 || u > 1 {
			t.Fatalf("Float64 = %v outside (0, 1]", u)
		}
	}
}

func TestCheckLambda(t *testing.T) {
	for _, ok := range []float64{0.5, 1, 100, MaxPoissonLambda} {
		if err := CheckLambda(ok); err != nil {
			t.Errorf("CheckLambda(%v) = %v", ok, err)
		}
	}
	for _, bad := range []float64{0, -1, math.NaN(), math.Inf(1), MaxPoissonLambda + 1} {
		if err := CheckLambda(bad); !errors.Is(err, ErrInvalidLambda) {
			t.Errorf("CheckLambda(%v) = %v, want ErrInvalidLambda", bad, err)
		}
	}
}

func TestSamplePoissonMean(t *testing.T) {
	for _, lambda := range []float64{1, 10, 100} {
		s := NewStream("poisson", []byte{byte(lambda)})
		const n = 4000
		sum := 0
		for i := 0; i < n; i++ {
			k := SamplePoisson(s, lambda)
			if k < 0 {
				t.Fatalf("negative sample %d", k)
			}
			sum += k
		}
		s.Close()

		mean := float64(sum) / n
		// Standard error of the mean is sqrt(lambda/n); allow 6 of them.
		if tol := 6 * math.Sqrt(lambda/n); math.Abs(mean-lambda) > tol {
			t.Errorf("lambda %v: mean %v outside tolerance %v", lambda, mean, tol)
		}
	}
}

func TestSamplePoissonDegenerateLambda(t *testing.T) {
	s := NewStream("poisson", nil)
	defer s.Close()
	for _, lambda := range []float64{0, -3, math.NaN()} {
		if k := SamplePoisson(s, lambda); k != 0 {
			t.Errorf("SamplePoisson(%v) = %d, want 0", lambda, k)
		}
	}
	if k := SamplePoisson(s, math.Inf(1)); k <= 0 {
		t.Errorf("SamplePoisson(+Inf) = %d, want clamped positive sample", k)
	}
}

func TestSecureRandomBytes(t *testing.T) {
	b, err := SecureRandomBytes(32)
	if err != nil {
		t.Fatalf("SecureRandomBytes failed: %v", err)
	}
	if len(b) != 32 {
		t.Errorf("Expected 32 bytes, got %d", len(b))
	}

	b2, _ := SecureRandomBytes(32)
	if bytes.Equal(b, b2) {
		t.Error("SecureRandomBytes returned duplicate values")
	}
}

func TestRandomUint32(t *testing.T) {
	old := RandReader
	RandReader = bytes.NewReader([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	defer func() { RandReader = old }()

	v, err := RandomUint32()
	if err != nil {
		t.Fatal(err)
	}
	if v != 0xDEADBEEF {
		t.Errorf("RandomUint32 = %#x", v)
	}
}

func TestRandomUint32_RandError(t *testing.T) {
	old := RandReader
	RandReader = &errorReader{}
	defer func() { RandReader = old }()

	if _, err := RandomUint32(); err == nil {
		t.Error("expected error from rand failure")
	}
	if _, err := SecureRandomBytes(8); err == nil {
		t.Error("expected error from rand failure")
	}
}

type errorReader struct{}

func (e *errorReader) Read(p []byte) (n int, err error) {
	return 0, errors.New("simulated rand error")
}
