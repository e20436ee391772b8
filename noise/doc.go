// Package noise implements the binary-tree noise mechanism used to mask
// channel update timing.
//
// A timestamp t under a tree of height h is decomposed into the minimal set of
// dyadic prefix nodes whose ranges cover [0, t]. Each node carries one noise
// sample drawn deterministically from (node id, seed), so two timestamps that
// share a binary prefix reuse the very same samples. Total noise for a
// timestamp therefore grows with the number of set bits of t, not with t.
//
// Node identity is pure arithmetic on the timestamp; no tree is allocated.
// Every function in this package is pure and safe for concurrent use.
package noise
