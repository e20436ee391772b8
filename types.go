// Package ppch implements the numeric core of a privacy-preserving payment-channel hub.
//
// WARNING: the modular-exponentiation scheme is unpadded and deterministic
// textbook RSA over 64-bit integers. It hides amounts from a passive observer
// of the enclave boundary and offers no security beyond that.
package ppch

// Profile names a tree noise parameter set.
type Profile string

const (
	// Tree32 covers every 32-bit timestamp.
	Tree32 Profile = "tree-32"
	// Tree16 covers timestamps below 2^16.
	Tree16 Profile = "tree-16"
)

// Wire sizes, in bytes, of the request fields exchanged with the enclave host.
const (
	ECCPubKeySize      = 64
	TransactionSize    = 4 + 16
	StateEncryptedSize = 16
	// MaxLiquidityDigits bounds the decimal prior-liquidity field.
	MaxLiquidityDigits = 10
)

// =============================================================================
// Tree Noise Types
// =============================================================================

// Timestamp is a discrete channel update counter.
type Timestamp uint32

// Seed is the per-channel secret binding all node noise. It never leaves the
// enclave in clear.
type Seed uint32

// NodeID identifies an implicit node of the noise tree. The id is derived
// arithmetically from a timestamp bit-prefix; no tree is ever materialized.
type NodeID uint32

// NoiseParams contains the parameters of the tree noise mechanism.
type NoiseParams struct {
	Profile Profile `json:"profile" yaml:"profile"`
	Height  uint    `json:"height" yaml:"height"` // Tree height, bounds timestamp bit-width
	Lambda  float64 `json:"lambda" yaml:"lambda"` // Poisson mean of every node sample
}

// =============================================================================
// Modular Exponentiation Types
// =============================================================================

// Keypair holds RSA-style exponents and modulus. The engine assumes, without
// checking, that PublicExponent and PrivateExponent are inverses modulo the
// group order of Modulus.
type Keypair struct {
	PublicExponent  uint64 `json:"public_exponent" yaml:"public_exponent"`
	PrivateExponent uint64 `json:"private_exponent" yaml:"private_exponent"`
	Modulus         uint64 `json:"modulus" yaml:"modulus"`
}
