// Package core provides parameter sets and validation for ppch.
package core

import (
	"errors"
	"fmt"

	ppch "github.com/BackendStack21/ppch-go"
	"github.com/BackendStack21/ppch-go/utils"
)

// DefaultLambda is the Poisson mean of every node noise sample.
const DefaultLambda = 100

// MaxHeight is the largest accepted tree height. Levels above the 32-bit
// timestamp width never contribute noise, so taller trees only cost loop
// iterations.
const MaxHeight = 64

// Tree32Params is the default parameter set, covering every 32-bit timestamp.
var Tree32Params = ppch.NoiseParams{
	Profile: ppch.Tree32,
	Height:  32,
	Lambda:  DefaultLambda,
}

// Tree16Params is the parameter set for channels with fewer than 2^16 updates.
var Tree16Params = ppch.NoiseParams{
	Profile: ppch.Tree16,
	Height:  16,
	Lambda:  DefaultLambda,
}

// GetParams returns the parameter set for the given profile.
func GetParams(profile ppch.Profile) (ppch.NoiseParams, error) {
	switch profile {
	case ppch.Tree32:
		return Tree32Params, nil
	case ppch.Tree16:
		return Tree16Params, nil
	default:
		return ppch.NoiseParams{}, fmt.Errorf("unknown noise profile: %s", profile)
	}
}

// ValidateParams validates the noise parameter set.
// A zero height is accepted: the mechanism then adds no noise.
func ValidateParams(params ppch.NoiseParams) error {
	if params.Height > MaxHeight {
		return fmt.Errorf("tree height %d exceeds %d", params.Height, MaxHeight)
	}
	if err := utils.CheckLambda(params.Lambda); err != nil {
		return err
	}
	return nil
}

// ValidateKeypair rejects keypairs the engine cannot use at all. It does not
// check that the exponents are inverses; that relation is assumed.
func ValidateKeypair(kp ppch.Keypair) error {
	if kp.Modulus < 2 {
		return errors.New("modulus must be at least 2")
	}
	if kp.PublicExponent == 0 || kp.PrivateExponent == 0 {
		return errors.New("exponents must be positive")
	}
	return nil
}

// MaxPlaintext returns the largest plaintext element that survives a round
// trip under modulus n: values must be below n and fit in 16 bits.
func MaxPlaintext(n uint64) uint16 {
	if n == 0 {
		return 0
	}
	if n-1 > 0xFFFF {
		return 0xFFFF
	}
	return uint16(n - 1)
}
