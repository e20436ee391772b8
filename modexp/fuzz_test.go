package modexp

import (
	"math/big"
	"testing"
)

// FuzzModPow compares ModPow against math/big for arbitrary operands.
func FuzzModPow(f *testing.F) {
	f.Add(uint64(65), uint64(17), uint64(3233))
	f.Add(uint64(0), uint64(0), uint64(1))
	f.Add(^uint64(0), ^uint64(0), ^uint64(0))
	f.Add(uint64(2), uint64(64), uint64(1)<<63)

	f.Fuzz(func(t *testing.T, base, exp, mod uint64) {
		got, err := ModPow(base, exp, mod)
		if mod == 0 {
			if err == nil {
				t.Fatal("zero modulus accepted")
			}
			return
		}
		if err != nil {
			t.Fatal(err)
		}
		if exp == 0 {
			if got != 1 {
				t.Fatalf("ModPow(%d, 0, %d) = %d", base, mod, got)
			}
			return
		}
		want := new(big.Int).Exp(
			new(big.Int).SetUint64(base),
			new(big.Int).SetUint64(exp),
			new(big.Int).SetUint64(mod),
		)
		if want.Uint64() != got {
			t.Fatalf("ModPow(%d, %d, %d) = %d, want %s", base, exp, mod, got, want)
		}
	})
}

// FuzzRoundTrip checks decrypt(encrypt(m)) == m under the textbook keypair.
func FuzzRoundTrip(f *testing.F) {
	f.Add(uint16(65))
	f.Add(uint16(0))
	f.Add(uint16(3232))

	f.Fuzz(func(t *testing.T, m uint16) {
		m %= uint16(smallKey.Modulus)
		ct, err := Encrypt(smallKey, []uint16{m})
		if err != nil {
			t.Fatal(err)
		}
		pt, err := Decrypt(smallKey, ct)
		if err != nil {
			t.Fatal(err)
		}
		if pt[0] != m {
			t.Fatalf("round trip of %d gave %d", m, pt[0])
		}
	})
}
