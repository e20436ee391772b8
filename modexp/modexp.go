// Package modexp implements the modular-exponentiation engine used to encrypt
// and decrypt transaction amounts with a textbook RSA-style keypair.
//
// Arithmetic is on uint64 with double-width intermediates: every product is
// formed as a 128-bit value with bits.Mul64 and reduced with bits.Rem64, so
// results are exact for every modulus in [1, 2^64). No padding or
// randomization is applied; equal plaintexts give equal ciphertexts.
package modexp

import (
	"errors"
	"fmt"
	"math/bits"

	ppch "github.com/BackendStack21/ppch-go"
)

// ErrZeroModulus is returned when the modulus is zero.
var ErrZeroModulus = errors.New("modulus must be non-zero")

// ModPow computes base^exponent mod modulus by right-to-left binary
// exponentiation. An exponent of 0 yields 1 for any base and modulus.
func ModPow(base, exponent, modulus uint64) (uint64, error) {
	if modulus == 0 {
		return 0, ErrZeroModulus
	}
	return modPow(base, exponent, modulus), nil
}

// modPow is ModPow for a modulus already known to be non-zero.
func modPow(base, exponent, modulus uint64) uint64 {
	y := uint64(1)
	a := base
	for exponent > 0 {
		if exponent&1 == 1 {
			y = mulMod(y, a, modulus)
		}
		a = mulMod(a, a, modulus)
		exponent >>= 1
	}
	return y
}

// mulMod returns x*y mod n without overflow. n must be non-zero.
func mulMod(x, y, n uint64) uint64 {
	hi, lo := bits.Mul64(x, y)
	return bits.Rem64(hi, lo, n)
}

// EncryptArray raises every plaintext to the public exponent modulo n.
// Elements are independent. Plaintexts must be below n to decrypt back.
func EncryptArray(plaintexts []uint16, publicExponent, n uint64) ([]uint64, error) {
	if n == 0 {
		return nil, fmt.Errorf("encrypt: %w", ErrZeroModulus)
	}
	out := make([]uint64, len(plaintexts))
	for i, m := range plaintexts {
		out[i] = modPow(uint64(m), publicExponent, n)
	}
	return out, nil
}

// DecryptArray raises every ciphertext to the private exponent modulo n and
// keeps the low 16 bits of each result. Bits above 16 are discarded without
// error.
func DecryptArray(ciphertexts []uint64, privateExponent, n uint64) ([]uint16, error) {
	if n == 0 {
		return nil, fmt.Errorf("decrypt: %w", ErrZeroModulus)
	}
	out := make([]uint16, len(ciphertexts))
	for i, c := range ciphertexts {
		out[i] = uint16(modPow(c, privateExponent, n))
	}
	return out, nil
}

// Encrypt encrypts plaintexts under the keypair's public exponent.
func Encrypt(kp ppch.Keypair, plaintexts []uint16) ([]uint64, error) {
	return EncryptArray(plaintexts, kp.PublicExponent, kp.Modulus)
}

// Decrypt decrypts ciphertexts under the keypair's private exponent.
func Decrypt(kp ppch.Keypair, ciphertexts []uint64) ([]uint16, error) {
	return DecryptArray(ciphertexts, kp.PrivateExponent, kp.Modulus)
}
