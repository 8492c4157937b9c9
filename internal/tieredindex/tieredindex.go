/*
Copyright (C) 2026  LogEngine Contributors

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package tieredindex implements the 1-4-level tree mapping a fixed-width
// token value to a posting list (spec component 5). Rather than a tower
// of per-depth template types with virtual dispatch, the tree is a single
// node type used uniformly at every level: a node is either an array of
// child pointers (interior levels) or an array of posting-list pointers
// (the final level). Dispatch on a token's width happens once, in the
// levels function, which computes the chunk-width table; traversal
// itself does not need to know the width.
package tieredindex

import (
	"sync/atomic"

	"github.com/launix-de/logengine/internal/monolog"
	"github.com/launix-de/logengine/internal/postinglist"
)

// MinWidth and MaxWidth bound the supported token widths in bytes.
const (
	MinWidth = 1
	MaxWidth = 8
)

type level struct {
	shift  uint   // bits to shift right to isolate this level's chunk
	mask   uint64 // mask (already shifted out) selecting this level's bits
	fanout uint32 // number of slots at this level: 256 or 65536
}

// levels computes the chunk decomposition for a token of the given width,
// most-significant chunk first: 16-bit chunks are peeled off the top
// until 16 or fewer bits remain, and the remainder (8 or 16 bits) forms
// the final, leaf-adjacent level. This reproduces spec §3's width/depth
// table exactly (width 1 -> depth 1/fanout 256; width 3 -> depth
// 2/fanouts 65536,256; width 8 -> depth 4/fanouts 65536 x4; etc.).
func levels(width int) []level {
	bits := uint(width * 8)
	var sizes []uint
	for bits > 16 {
		sizes = append(sizes, 16)
		bits -= 16
	}
	sizes = append(sizes, bits)

	totalBits := uint(width * 8)
	shift := totalBits
	out := make([]level, len(sizes))
	for i, size := range sizes {
		shift -= size
		out[i] = level{
			shift:  shift,
			mask:   (uint64(1) << size) - 1,
			fanout: uint32(1) << size,
		}
	}
	return out
}

func (l level) chunk(value uint64) uint32 {
	return uint32((value >> l.shift) & l.mask)
}

// node is the uniform tree node: exactly one of children or postings is
// populated, depending on whether the node sits at an interior level or
// at the final (leaf-adjacent) level.
type node struct {
	children []atomic.Pointer[node]
	postings []atomic.Pointer[postinglist.Relaxed]
}

func newInteriorNode(fanout uint32) *node {
	return &node{children: make([]atomic.Pointer[node], fanout)}
}

func newLeafArrayNode(fanout uint32) *node {
	return &node{postings: make([]atomic.Pointer[postinglist.Relaxed], fanout)}
}

// Index is a tiered index for one fixed token width.
type Index struct {
	Width  int
	levels []level
	root   atomic.Pointer[node]
}

// New returns an Index for the given token width (1..8 bytes).
func New(width int) *Index {
	return &Index{Width: width, levels: levels(width)}
}

func (x *Index) ensureRoot() *node {
	return monolog.Publish(&x.root, func() *node {
		return x.nodeForLevel(0)
	})
}

func (x *Index) nodeForLevel(i int) *node {
	lvl := x.levels[i]
	if i == len(x.levels)-1 {
		return newLeafArrayNode(lvl.fanout)
	}
	return newInteriorNode(lvl.fanout)
}

// AddEntry traverses the tree for value, allocating every missing level
// via compare-and-publish, and appends r to the leaf posting list. Once
// all path nodes exist this is wait-free; concurrent allocators on the
// same branch race harmlessly, with the loser re-reading the winner's
// pointer (I5).
func (x *Index) AddEntry(value uint64, r uint64) {
	cur := x.ensureRoot()
	last := len(x.levels) - 1
	for i, lvl := range x.levels {
		chunk := lvl.chunk(value)
		if i == last {
			pl := monolog.Publish(&cur.postings[chunk], func() *postinglist.Relaxed {
				return &postinglist.Relaxed{}
			})
			pl.PushBack(r)
			return
		}
		next := monolog.Publish(&cur.children[chunk], func() *node {
			return x.nodeForLevel(i + 1)
		})
		cur = next
	}
}

// Lookup traverses the tree for value without allocating; it returns nil
// if any node along the path is absent.
func (x *Index) Lookup(value uint64) *postinglist.Relaxed {
	cur := x.root.Load()
	if cur == nil {
		return nil
	}
	last := len(x.levels) - 1
	for i, lvl := range x.levels {
		chunk := lvl.chunk(value)
		if i == last {
			return cur.postings[chunk].Load()
		}
		cur = cur.children[chunk].Load()
		if cur == nil {
			return nil
		}
	}
	return nil
}

// MaxValue returns the largest representable token value for this
// index's width (2^(8*width) - 1).
func (x *Index) MaxValue() uint64 {
	if x.Width >= 8 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(x.Width*8)) - 1
}

// PopulatedLeaves walks every allocated leaf overlapping [lo, hi], in
// ascending numeric token order, invoking fn with the token value and the
// posting list it maps to. Used by the log store's range-filter iterator.
func (x *Index) PopulatedLeaves(lo, hi uint64, fn func(value uint64, pl *postinglist.Relaxed)) {
	root := x.root.Load()
	if root == nil {
		return
	}
	x.walk(root, 0, 0, lo, hi, fn)
}

// ComputeSize reports the bytes of physical memory currently allocated
// across every node and posting list in the tree.
func (x *Index) ComputeSize() uint64 {
	root := x.root.Load()
	if root == nil {
		return 0
	}
	return x.computeSize(root, 0)
}

func (x *Index) computeSize(n *node, depth int) uint64 {
	last := depth == len(x.levels)-1
	var total uint64
	if last {
		total += uint64(len(n.postings)) * 8
		for i := range n.postings {
			if pl := n.postings[i].Load(); pl != nil {
				total += pl.ComputeSize()
			}
		}
		return total
	}
	total += uint64(len(n.children)) * 8
	for i := range n.children {
		if child := n.children[i].Load(); child != nil {
			total += x.computeSize(child, depth+1)
		}
	}
	return total
}

func (x *Index) walk(n *node, depth int, prefix uint64, lo, hi uint64, fn func(uint64, *postinglist.Relaxed)) {
	lvl := x.levels[depth]
	last := depth == len(x.levels)-1
	for chunk := uint32(0); chunk < lvl.fanout; chunk++ {
		value := prefix | (uint64(chunk) << lvl.shift)
		// prune branches that cannot possibly overlap [lo, hi]: chunks
		// fully partition the bit range, so every bit below this level's
		// shift is still free to vary beneath this branch, and the
		// widest value reachable here is value with all of those bits set.
		maxUnderBranch := value | ((uint64(1) << lvl.shift) - 1)
		if maxUnderBranch < lo || value > hi {
			continue
		}
		if last {
			if pl := n.postings[chunk].Load(); pl != nil {
				fn(value, pl)
			}
			continue
		}
		child := n.children[chunk].Load()
		if child == nil {
			continue
		}
		x.walk(child, depth+1, value, lo, hi, fn)
	}
}
