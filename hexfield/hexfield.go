// Package hexfield encodes and decodes the hexadecimal request and response
// fields exchanged between the enclave host and its clients.
//
// Integer arrays are packed big-endian: plaintext elements take 4 hex
// characters and ciphertext elements 16.
package hexfield

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	ppch "github.com/BackendStack21/ppch-go"
	"github.com/BackendStack21/ppch-go/utils"
)

const (
	uint16Chars = 4
	uint64Chars = 16

	// htlcChars is the hex width of one HTLC segment without its sign.
	htlcChars = ppch.TransactionSize * 4

	htlcSeparator = "#"
)

// DecodeField decodes a fixed-size hex field. The field must hold exactly
// size bytes.
func DecodeField(name, s string, size int) ([]byte, error) {
	want, err := utils.SafeMultiply(size, 2)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(s) != want {
		return nil, fmt.Errorf("%s: expected %d hex characters, got %d", name, want, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return b, nil
}

// Encode returns the upper-case hex form of b.
func Encode(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

// HTLC is a pending transfer carried over from the previous channel update.
type HTLC struct {
	EncryptedOutput []byte
	EncryptedKey    []byte
	Positive        bool
}

// Request holds the decoded fields of one enclave invocation.
type Request struct {
	PeerDHPub       []byte
	EncryptedAmount []byte
	EncryptedKey    []byte
	PrevState       []byte // empty for the first update of a channel
	PrevLiquidity   uint32
	PrevHTLCs       []HTLC
}

// DecodeRequest decodes and validates the raw request fields. Every invalid
// field is reported, not just the first. prevHTLCs is a '#' separated list
// of segments accepted by DecodeHTLC; empty segments are skipped and a bad
// segment i is reported as prev_htlcs[i].
func DecodeRequest(peerDHPub, encryptedAmount, encryptedKey, prevLiquidity, prevHTLCs, prevState string) (*Request, error) {
	var (
		req  Request
		bad  []string
		errs []error
	)
	check := func(name string, err error) {
		if err != nil {
			bad = append(bad, name)
			errs = append(errs, err)
		}
	}

	var err error
	req.PeerDHPub, err = DecodeField("peer_dh_pub", peerDHPub, ppch.ECCPubKeySize)
	check("peer_dh_pub", err)
	req.EncryptedAmount, err = DecodeField("encrypted_amount", encryptedAmount, ppch.TransactionSize)
	check("encrypted_amount", err)
	req.EncryptedKey, err = DecodeField("encrypted_key", encryptedKey, ppch.TransactionSize)
	check("encrypted_key", err)
	req.PrevLiquidity, err = ParseLiquidity(prevLiquidity)
	check("prev_liquidity", err)
	if err := utils.CheckLength(len(prevHTLCs), utils.MaxHexFieldLength); err != nil {
		check("prev_htlcs", fmt.Errorf("prev_htlcs: %w", err))
	} else {
		for i, segment := range strings.Split(prevHTLCs, htlcSeparator) {
			if segment == "" {
				continue
			}
			htlc, err := DecodeHTLC(segment)
			if err != nil {
				check(fmt.Sprintf("prev_htlcs[%d]", i), err)
				continue
			}
			req.PrevHTLCs = append(req.PrevHTLCs, htlc)
		}
	}
	if prevState != "" {
		req.PrevState, err = DecodeField("prev_state", prevState, ppch.StateEncryptedSize)
		check("prev_state", err)
	}

	if len(bad) > 0 {
		return nil, &InputError{Fields: bad, Errs: errs}
	}
	return &req, nil
}

// InputError lists the request fields that failed to decode.
type InputError struct {
	Fields []string
	Errs   []error
}

func (e *InputError) Error() string {
	return "input failure: " + strings.Join(e.Fields, " ")
}

// Unwrap exposes the per-field errors to errors.Is and errors.As.
func (e *InputError) Unwrap() []error {
	return e.Errs
}

// DecodeHTLC decodes one HTLC segment: the encrypted output and encrypted
// key, each TransactionSize bytes of hex, optionally followed by one sign
// character. A missing sign or '0' marks the HTLC positive; any other
// character marks it negative.
func DecodeHTLC(segment string) (HTLC, error) {
	if len(segment) != htlcChars && len(segment) != htlcChars+1 {
		return HTLC{}, fmt.Errorf("prev_htlcs: segment has %d hex characters, want %d or %d: %w",
			len(segment), htlcChars, htlcChars+1, utils.ErrInvalidLength)
	}
	half := htlcChars / 2
	output, err := DecodeField("prev_htlcs output", segment[:half], ppch.TransactionSize)
	if err != nil {
		return HTLC{}, err
	}
	key, err := DecodeField("prev_htlcs key", segment[half:htlcChars], ppch.TransactionSize)
	if err != nil {
		return HTLC{}, err
	}
	return HTLC{
		EncryptedOutput: output,
		EncryptedKey:    key,
		Positive:        len(segment) == htlcChars || segment[htlcChars] == '0',
	}, nil
}

// ParseLiquidity parses the decimal prior-liquidity field.
func ParseLiquidity(s string) (uint32, error) {
	if len(s) == 0 {
		return 0, fmt.Errorf("prev_liquidity: %w", utils.ErrInvalidLength)
	}
	if len(s) > ppch.MaxLiquidityDigits {
		return 0, fmt.Errorf("prev_liquidity: %w", utils.ErrExceedsLimit)
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("prev_liquidity: %w", err)
	}
	return uint32(v), nil
}

// EncodeUint16s packs plaintext elements into hex.
func EncodeUint16s(values []uint16) string {
	buf := make([]byte, 2*len(values))
	for i, v := range values {
		binary.BigEndian.PutUint16(buf[2*i:], v)
	}
	return Encode(buf)
}

// DecodeUint16s unpacks plaintext elements from hex.
func DecodeUint16s(s string) ([]uint16, error) {
	buf, err := decodeArray(s, uint16Chars)
	if err != nil {
		return nil, err
	}
	out := make([]uint16, len(buf)/2)
	for i := range out {
		out[i] = binary.BigEndian.Uint16(buf[2*i:])
	}
	return out, nil
}

// EncodeUint64s packs ciphertext elements into hex.
func EncodeUint64s(values []uint64) string {
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		binary.BigEndian.PutUint64(buf[8*i:], v)
	}
	return Encode(buf)
}

// DecodeUint64s unpacks ciphertext elements from hex.
func DecodeUint64s(s string) ([]uint64, error) {
	buf, err := decodeArray(s, uint64Chars)
	if err != nil {
		return nil, err
	}
	out := make([]uint64, len(buf)/8)
	for i := range out {
		out[i] = binary.BigEndian.Uint64(buf[8*i:])
	}
	return out, nil
}

func decodeArray(s string, unit int) ([]byte, error) {
	if err := utils.CheckLength(len(s), utils.MaxHexFieldLength); err != nil {
		return nil, err
	}
	if err := utils.CheckMultiple(len(s), unit); err != nil {
		return nil, fmt.Errorf("array length %d is not a multiple of %d: %w", len(s), unit, err)
	}
	if err := utils.CheckLength(len(s)/unit, utils.MaxVectorLength); err != nil {
		return nil, err
	}
	return hex.DecodeString(s)
}
