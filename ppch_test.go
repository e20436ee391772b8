// Integration tests across the noise, modexp and hexfield packages.
package ppch_test

import (
	"testing"

	ppch "github.com/BackendStack21/ppch-go"
	"github.com/BackendStack21/ppch-go/core"
	"github.com/BackendStack21/ppch-go/hexfield"
	"github.com/BackendStack21/ppch-go/modexp"
	"github.com/BackendStack21/ppch-go/noise"
)

// TestChannelUpdateFlow follows one channel update: decode the request,
// noise the prior liquidity, then encrypt and recover the amount.
func TestChannelUpdateFlow(t *testing.T) {
	peer := make([]byte, ppch.ECCPubKeySize)
	tx := make([]byte, ppch.TransactionSize)
	for i := range peer {
		peer[i] = byte(i)
	}

	req, err := hexfield.DecodeRequest(hexfield.Encode(peer), hexfield.Encode(tx), hexfield.Encode(tx), "4096", "", "")
	if err != nil {
		t.Fatalf("DecodeRequest failed: %v", err)
	}
	if len(req.PrevState) != 0 {
		t.Fatalf("PrevState = %x, want empty", req.PrevState)
	}

	m, err := noise.New(core.Tree32Params)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	const seed ppch.Seed = 0xDEADBEEF
	noised := m.Perturb(float64(req.PrevLiquidity), 17, seed)
	if noised < float64(req.PrevLiquidity) {
		t.Errorf("noised liquidity %v below prior %d", noised, req.PrevLiquidity)
	}
	if noised != m.Perturb(float64(req.PrevLiquidity), 17, seed) {
		t.Error("perturbation is not reproducible")
	}

	kp := ppch.Keypair{PublicExponent: 17, PrivateExponent: 2753, Modulus: 3233}
	amounts := []uint16{uint16(req.PrevLiquidity % 3233), core.MaxPlaintext(kp.Modulus)}
	cts, err := modexp.Encrypt(kp, amounts)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	wire := hexfield.EncodeUint64s(cts)
	decoded, err := hexfield.DecodeUint64s(wire)
	if err != nil {
		t.Fatalf("DecodeUint64s failed: %v", err)
	}
	pts, err := modexp.Decrypt(kp, decoded)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	for i := range amounts {
		if pts[i] != amounts[i] {
			t.Errorf("amount %d: got %d, want %d", i, pts[i], amounts[i])
		}
	}
}

// TestProfilesAgreeOnShortChannels checks that below 2^16 the upper levels of
// the 32-level tree contribute nothing, so both profiles give the same noise.
func TestProfilesAgreeOnShortChannels(t *testing.T) {
	m32, err := noise.New(core.Tree32Params)
	if err != nil {
		t.Fatal(err)
	}
	m16, err := noise.New(core.Tree16Params)
	if err != nil {
		t.Fatal(err)
	}
	const seed ppch.Seed = 42
	for ts := ppch.Timestamp(0); ts < 1<<10; ts++ {
		if got, want := m16.TreeNoise(ts, seed), m32.TreeNoise(ts, seed); got != want {
			t.Fatalf("ts=%d: tree-16 noise %v, tree-32 noise %v", ts, got, want)
		}
	}
}

func TestVersion(t *testing.T) {
	if ppch.Version == "" {
		t.Error("Version is empty")
	}
}
