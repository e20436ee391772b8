// Package utils provides utility functions for ppch.
// This file contains bounds helpers that keep caller supplied lengths from
// driving large allocations.

package utils

import (
	"errors"
	"math"
)

// Maximum allowed lengths for caller supplied data.
const (
	// MaxVectorLength is the maximum number of elements in a plaintext or ciphertext array.
	MaxVectorLength = 1 << 20 // 1M elements

	// MaxHexFieldLength is the maximum length, in characters, of a single hex field.
	MaxHexFieldLength = 1 << 25 // 32M characters
)

var (
	// ErrOverflow indicates an integer overflow occurred.
	ErrOverflow = errors.New("integer overflow")

	// ErrExceedsLimit indicates a value exceeds the allowed limit.
	ErrExceedsLimit = errors.New("value exceeds allowed limit")

	// ErrInvalidLength indicates an invalid length value.
	ErrInvalidLength = errors.New("invalid length")
)

// SafeMultiply multiplies two non-negative integers and returns an error if overflow occurs.
func SafeMultiply(a, b int) (int, error) {
	if a < 0 || b < 0 {
		return 0, ErrInvalidLength
	}
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > math.MaxInt/b {
		return 0, ErrOverflow
	}
	return a * b, nil
}

// CheckLength validates that length is within [0, maxAllowed].
func CheckLength(length, maxAllowed int) error {
	if length < 0 {
		return ErrInvalidLength
	}
	if length > maxAllowed {
		return ErrExceedsLimit
	}
	return nil
}

// CheckMultiple validates that length is a non-negative multiple of unit.
func CheckMultiple(length, unit int) error {
	if length < 0 || unit <= 0 || length%unit != 0 {
		return ErrInvalidLength
	}
	return nil
}
