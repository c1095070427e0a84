// Package bitmap implements the compressed bitvector described in spec
// §3/§4.2: an ordered sequence of homogeneous fill blocks and literal
// blocks, supporting append, bitwise combination, rank, and select.
//
// The representation and the bitwise-combination algorithm are grounded in
// go-ethereum's common/bitutil run-length codec (fills ~ runs) and in the
// bit-sliced column layout of core/bloombits, generalized from byte-level
// RLE to word-level fill/literal blocks so individual bit positions can be
// addressed directly (rank/select), not just reconstructed in bulk.
package bitmap

import (
	"github.com/sangminoh/vast/bitops"
	"github.com/sangminoh/vast/vasterr"
)

// Width is the machine word width the bitmap is built on.
const Width = bitops.Width

// Block is a single run of the bitmap: a literal if N <= Width, a
// homogeneous fill of length N otherwise. For a fill, Word is either all
// zero or all one; for a literal, only the low N bits of Word are valid and
// every higher bit is guaranteed zero.
type Block struct {
	Word uint64
	N    uint64
}

// IsFill reports whether the block is a homogeneous run longer than a
// single word.
func (b Block) IsFill() bool { return b.N > Width }

// Bit reports the fill's bit value. Only meaningful when IsFill is true.
func (b Block) Bit() bool { return b.Word != 0 }

// Bitmap is an ordered sequence of Blocks.
type Bitmap struct {
	blocks []Block
	size   uint64
}

// New returns an empty bitmap.
func New() *Bitmap {
	return &Bitmap{}
}

// Size returns the number of bit positions the bitmap encodes.
func (bm *Bitmap) Size() uint64 { return bm.size }

// Empty reports whether the bitmap encodes zero positions.
func (bm *Bitmap) Empty() bool { return bm.size == 0 }

// Blocks returns the bitmap's underlying block sequence. Callers must not
// mutate the returned slice.
func (bm *Bitmap) Blocks() []Block { return bm.blocks }

// Clone returns an independent copy of the bitmap.
func (bm *Bitmap) Clone() *Bitmap {
	out := &Bitmap{size: bm.size, blocks: make([]Block, len(bm.blocks))}
	copy(out.blocks, bm.blocks)
	return out
}

// AppendBits appends n copies of bit b, coalescing with a trailing fill of
// the same value and packing into a trailing partial literal where
// possible (spec §4.2 "Representation").
func (bm *Bitmap) AppendBits(b bool, n uint64) {
	for n > 0 {
		if l := len(bm.blocks); l > 0 {
			last := &bm.blocks[l-1]
			if last.IsFill() {
				if last.Bit() == b {
					last.N += n
					bm.size += n
					return
				}
				// Fill of the opposite value: falls through to start a new block.
			} else if last.N < Width {
				room := Width - last.N
				take := n
				if take > room {
					take = room
				}
				if b {
					last.Word |= bitops.LSBMask(uint(take)) << last.N
				}
				last.N += take
				bm.size += take
				n -= take
				continue
			}
		}
		if n >= Width {
			var word uint64
			if b {
				word = ^uint64(0)
			}
			bm.blocks = append(bm.blocks, Block{Word: word, N: n})
			bm.size += n
			return
		}
		var word uint64
		if b {
			word = bitops.LSBMask(uint(n))
		}
		bm.blocks = append(bm.blocks, Block{Word: word, N: n})
		bm.size += n
		return
	}
}

// AppendBlock appends a literal n-bit block (n <= Width) carrying w's low n
// bits, packing into a trailing partial literal where possible.
func (bm *Bitmap) AppendBlock(w uint64, n uint64) {
	if n == 0 {
		return
	}
	vasterr.Assert(n <= Width, "append_block: n=%d exceeds word width %d", n, Width)
	w &= bitops.LSBMask(uint(n))

	if l := len(bm.blocks); l > 0 {
		last := &bm.blocks[l-1]
		if !last.IsFill() && last.N < Width {
			room := Width - last.N
			take := n
			if take > room {
				take = room
			}
			last.Word |= (w & bitops.LSBMask(uint(take))) << last.N
			last.N += take
			bm.size += take
			rem := n - take
			if rem > 0 {
				remWord := (w >> take) & bitops.LSBMask(uint(rem))
				bm.blocks = append(bm.blocks, Block{Word: remWord, N: rem})
				bm.size += rem
			}
			return
		}
	}
	bm.blocks = append(bm.blocks, Block{Word: w, N: n})
	bm.size += n
}

// Count returns the number of positions whose bit equals b.
func (bm *Bitmap) Count(b bool) uint64 {
	var total uint64
	for _, blk := range bm.blocks {
		if blk.IsFill() {
			if blk.Bit() == b {
				total += blk.N
			}
			continue
		}
		ones := uint64(bitops.Popcount(blk.Word))
		if b {
			total += ones
		} else {
			total += blk.N - ones
		}
	}
	return total
}

// Get returns the bit at position i. Pre: i < Size().
func (bm *Bitmap) Get(i uint64) bool {
	vasterr.Assert(i < bm.size, "get: index %d out of range (size %d)", i, bm.size)
	var prefix uint64
	for _, blk := range bm.blocks {
		if i < prefix+blk.N {
			off := i - prefix
			if blk.IsFill() {
				return blk.Bit()
			}
			return (blk.Word>>off)&1 == 1
		}
		prefix += blk.N
	}
	panic(vasterr.Precondition{Msg: "get: fell through block scan"})
}

// Range returns a restartable iterator over the bitmap's blocks in order
// (spec §4.2 "bit_range").
func (bm *Bitmap) Range() *BitRange {
	return &BitRange{blocks: bm.blocks}
}

// BitRange is a lazy, restartable, finite sequence of Blocks.
type BitRange struct {
	blocks []Block
	idx    int
}

// Next returns the next block and true, or a zero Block and false once the
// range is exhausted.
func (r *BitRange) Next() (Block, bool) {
	if r.idx >= len(r.blocks) {
		return Block{}, false
	}
	b := r.blocks[r.idx]
	r.idx++
	return b, true
}

// Restart rewinds the range to its first block.
func (r *BitRange) Restart() { r.idx = 0 }

// ZeroExtend appends zero bits until Size() reaches n. It is a no-op if the
// bitmap is already at least n bits long.
func (bm *Bitmap) ZeroExtend(n uint64) {
	if n > bm.size {
		bm.AppendBits(false, n-bm.size)
	}
}

// Truncate drops any blocks/bits beyond position n. It is a no-op if the
// bitmap is already n bits or shorter.
func (bm *Bitmap) Truncate(n uint64) {
	if n >= bm.size {
		return
	}
	var prefix uint64
	out := bm.blocks[:0:0]
	for _, blk := range bm.blocks {
		if prefix >= n {
			break
		}
		remain := n - prefix
		if blk.N <= remain {
			out = append(out, blk)
			prefix += blk.N
			continue
		}
		// split this block at remain. A fill split down to remain <= Width
		// becomes a literal and must be masked to that width — a fill's Word
		// for bit=1 is all-ones, which otherwise leaves garbage set above
		// bit `remain`, violating the literal invariant that every higher
		// bit is zero.
		if blk.IsFill() && remain > Width {
			out = append(out, Block{Word: blk.Word, N: remain})
		} else {
			out = append(out, Block{Word: blk.Word & bitops.LSBMask(uint(remain)), N: remain})
		}
		prefix += remain
		break
	}
	bm.blocks = out
	bm.size = n
}

// Slice returns a new bitmap containing bits [lo, hi).
func (bm *Bitmap) Slice(lo, hi uint64) *Bitmap {
	vasterr.Assert(lo <= hi && hi <= bm.size, "slice: invalid range [%d,%d) over size %d", lo, hi, bm.size)
	out := New()
	var prefix uint64
	for _, blk := range bm.blocks {
		blkEnd := prefix + blk.N
		if blkEnd <= lo || prefix >= hi {
			prefix = blkEnd
			continue
		}
		start := lo
		if prefix > start {
			start = prefix
		}
		end := hi
		if blkEnd < end {
			end = blkEnd
		}
		n := end - start
		off := start - prefix
		if blk.IsFill() {
			out.AppendBits(blk.Bit(), n)
		} else {
			out.AppendBlock(blk.Word>>off, n)
		}
		prefix = blkEnd
	}
	return out
}
