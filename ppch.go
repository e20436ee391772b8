// Package ppch holds the shared types of the privacy-preserving payment-channel
// hub core: the tree noise mechanism that masks channel update timing and the
// modular-exponentiation engine that hides transaction amounts.
package ppch

// Version of the ppch Go implementation.
const Version = "0.3.0"

// API summary:
//
// Tree noise:
//   - noise.NodeNoise(node, seed) - Poisson(100) sample bound to one tree node
//   - noise.TreeNoise(timestamp, seed, height) - noise for a timestamp prefix
//   - noise.Cover(timestamp, height) - node ids summed by TreeNoise, in order
//   - noise.Mechanism{...}.Perturb(value, timestamp, seed) - value plus tree noise
//
// Modular exponentiation:
//   - modexp.ModPow(base, exponent, modulus) - right-to-left square-and-multiply
//   - modexp.EncryptArray(plaintexts, e, n) - element-wise encryption
//   - modexp.DecryptArray(ciphertexts, d, n) - element-wise decryption, truncated to 16 bits
//
// Parameters:
//   - core.GetParams(profile) - tree noise parameters for a profile
//   - Tree32 - 32-level tree, the default
//   - Tree16 - 16-level tree for short-lived channels
//
// Caller codec:
//   - hexfield.DecodeRequest(...) - validates the hex request fields
//   - hexfield.DecodeHTLC(segment) - one pending HTLC from the '#' separated list
//   - hexfield.EncodeUint64s / DecodeUint64s - ciphertext arrays as hex
