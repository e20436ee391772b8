package utils

import (
	"errors"
	"testing"
)

func TestSafeMultiply(t *testing.T) {
	// Normal cases
	result, err := SafeMultiply(10, 20)
	if err != nil || result != 200 {
		t.Errorf("SafeMultiply(10, 20) = %d, %v; want 200, nil", result, err)
	}

	// Zero cases
	result, err = SafeMultiply(0, 100)
	if err != nil || result != 0 {
		t.Errorf("SafeMultiply(0, 100) = %d, %v; want 0, nil", result, err)
	}

	// Negative input should error
	_, err = SafeMultiply(-1, 10)
	if !errors.Is(err, ErrInvalidLength) {
		t.Error("SafeMultiply(-1, 10) should return ErrInvalidLength")
	}

	// Large values that would overflow on 64-bit
	_, err = SafeMultiply(1<<32, 1<<32)
	if !errors.Is(err, ErrOverflow) {
		t.Error("SafeMultiply with overflow should return ErrOverflow")
	}
}

func TestCheckLength(t *testing.T) {
	if err := CheckLength(100, 1000); err != nil {
		t.Errorf("CheckLength(100, 1000) should pass: %v", err)
	}

	if err := CheckLength(1001, 1000); !errors.Is(err, ErrExceedsLimit) {
		t.Error("CheckLength(1001, 1000) should fail")
	}

	if err := CheckLength(-1, 1000); !errors.Is(err, ErrInvalidLength) {
		t.Error("CheckLength(-1, 1000) should fail")
	}
}

func TestCheckMultiple(t *testing.T) {
	if err := CheckMultiple(32, 16); err != nil {
		t.Errorf("CheckMultiple(32, 16) should pass: %v", err)
	}
	if err := CheckMultiple(0, 4); err != nil {
		t.Errorf("CheckMultiple(0, 4) should pass: %v", err)
	}
	for _, tc := range [][2]int{{33, 16}, {-4, 4}, {8, 0}} {
		if err := CheckMultiple(tc[0], tc[1]); err == nil {
			t.Errorf("CheckMultiple(%d, %d) should fail", tc[0], tc[1])
		}
	}
}
