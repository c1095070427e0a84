package bitmap

import (
	"github.com/sangminoh/vast/bitops"
	"github.com/sangminoh/vast/vasterr"
)

// NPos is the sentinel "not found" result of Select, mirroring bitops.NPos
// widened to the bitmap's 64-bit position space.
const NPos = ^uint64(0)

// Rank returns the number of positions in [0, i] (inclusive) whose bit
// equals b. Pre: i < bm.Size().
func Rank(bm *Bitmap, b bool, i uint64) uint64 {
	vasterr.Assert(i < bm.size, "rank: index %d out of range (size %d)", i, bm.size)

	var prefix, count uint64
	for _, blk := range bm.blocks {
		if i < prefix+blk.N {
			within := i - prefix
			if blk.IsFill() {
				if blk.Bit() == b {
					count += within + 1
				}
				return count
			}
			count += uint64(bitops.Rank(blk.Word, b, uint(within)))
			return count
		}
		if blk.IsFill() {
			if blk.Bit() == b {
				count += blk.N
			}
		} else {
			ones := uint64(bitops.Popcount(blk.Word))
			if b {
				count += ones
			} else {
				count += blk.N - ones
			}
		}
		prefix += blk.N
	}
	panic(vasterr.Precondition{Msg: "rank: fell through block scan"})
}

// Select returns the position of the i-th (1-based) occurrence of bit b, or
// NPos if the bitmap has fewer than i such bits. Pre: i > 0.
func Select(bm *Bitmap, b bool, i uint64) uint64 {
	vasterr.Assert(i > 0, "select: i must be positive, got %d", i)

	var prefix, running uint64
	for _, blk := range bm.blocks {
		var blkCount uint64
		if blk.IsFill() {
			if blk.Bit() == b {
				blkCount = blk.N
			}
		} else {
			ones := uint64(bitops.Popcount(blk.Word))
			if b {
				blkCount = ones
			} else {
				blkCount = blk.N - ones
			}
		}
		if running+blkCount >= i {
			remain := i - running
			if blk.IsFill() {
				return prefix + (remain - 1)
			}
			within := bitops.Select(blk.Word, b, uint(remain))
			if within == bitops.NPos {
				panic(vasterr.Precondition{Msg: "select: literal block rank/select mismatch"})
			}
			return prefix + uint64(within)
		}
		running += blkCount
		prefix += blk.N
	}
	return NPos
}
