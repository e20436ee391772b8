package noise

import (
	"encoding/binary"

	ppch "github.com/BackendStack21/ppch-go"
	"github.com/BackendStack21/ppch-go/core"
	"github.com/BackendStack21/ppch-go/utils"
)

// nodeDomain separates node noise streams from any other SHAKE256 use.
const nodeDomain = "ppch/tree-noise/node"

// timestampBits is the width of ppch.Timestamp.
const timestampBits = 32

// Mechanism is a configured tree noise mechanism. The zero value has height 0
// and adds no noise.
type Mechanism struct {
	Height uint
	Lambda float64
}

// DefaultMechanism is the 32-level tree with Poisson(100) node noise.
var DefaultMechanism = Mechanism{
	Height: core.Tree32Params.Height,
	Lambda: core.DefaultLambda,
}

// New returns the mechanism for a validated parameter set.
func New(params ppch.NoiseParams) (Mechanism, error) {
	if err := core.ValidateParams(params); err != nil {
		return Mechanism{}, err
	}
	return Mechanism{Height: params.Height, Lambda: params.Lambda}, nil
}

// NodeNoise returns the noise sample of one tree node. The stream is keyed by
// seed+node with 32-bit wraparound, so the mapping is total and any pair with
// the same sum yields the same sample.
func (m Mechanism) NodeNoise(node ppch.NodeID, seed ppch.Seed) float64 {
	var key [4]byte
	binary.LittleEndian.PutUint32(key[:], uint32(seed)+uint32(node))

	s := utils.NewStream(nodeDomain, key[:])
	defer s.Close()
	return float64(utils.SamplePoisson(s, m.Lambda))
}

// TreeNoise returns the sum of the node samples covering timestamp ts.
// Samples are added in Cover order.
func (m Mechanism) TreeNoise(ts ppch.Timestamp, seed ppch.Seed) float64 {
	total := 0.0
	walk(ts, m.Height, func(node ppch.NodeID) {
		total += m.NodeNoise(node, seed)
	})
	return total
}

// Perturb adds the tree noise of ts to a cumulative value such as the prior
// channel liquidity.
func (m Mechanism) Perturb(value float64, ts ppch.Timestamp, seed ppch.Seed) float64 {
	return value + m.TreeNoise(ts, seed)
}

// Cover returns the node ids whose samples TreeNoise sums for ts, in
// traversal order.
func (m Mechanism) Cover(ts ppch.Timestamp) []ppch.NodeID {
	return Cover(ts, m.Height)
}

// NodeNoise returns the Poisson(100) sample of one node.
func NodeNoise(node ppch.NodeID, seed ppch.Seed) float64 {
	return DefaultMechanism.NodeNoise(node, seed)
}

// TreeNoise returns the tree noise of ts for a tree of the given height with
// Poisson(100) node noise. A height of 0 yields 0.
func TreeNoise(ts ppch.Timestamp, seed ppch.Seed, height uint) float64 {
	return Mechanism{Height: height, Lambda: core.DefaultLambda}.TreeNoise(ts, seed)
}

// Cover returns the ordered node ids covering ts in a tree of the given height.
func Cover(ts ppch.Timestamp, height uint) []ppch.NodeID {
	var nodes []ppch.NodeID
	walk(ts, height, func(node ppch.NodeID) {
		nodes = append(nodes, node)
	})
	return nodes
}

// walk visits the covering nodes of ts from the most significant level down.
//
// At level i the low height-i bits of ts are split from the high bits. If the
// low bits are all ones, the node named by those bits covers the rest of the
// prefix and the walk stops. Otherwise an odd high part means the left sibling
// subtree lies inside the prefix, and that subtree is named by the high part
// shifted left once.
func walk(ts ppch.Timestamp, height uint, visit func(ppch.NodeID)) {
	i := uint(0)
	if height > timestampBits {
		// Levels wider than the timestamp have a zero high part and low bits
		// that cannot all be ones.
		i = height - timestampBits
	}
	for ; i < height; i++ {
		span := uint64(1) << (height - i)
		right := uint64(ts) % span
		left := uint64(ts) / span

		if right == span-1 {
			visit(ppch.NodeID(right))
			return
		} else if left%2 == 1 {
			visit(ppch.NodeID(left << 1))
		}
	}
}
