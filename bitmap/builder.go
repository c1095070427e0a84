package bitmap

import "github.com/bits-and-blooms/bitset"

// Builder accumulates single-bit appends into a fixed-size scratch word
// before handing them to the bitmap, avoiding a Block allocation per bit
// during the common ingest-time pattern of scanning a column one position
// at a time (spec §4.5's per-batch index update). The scratch buffer is a
// bits-and-blooms/bitset.BitSet sized to one word; flush drains it through
// Bitmap.AppendBlock exactly like any other literal append.
type Builder struct {
	bm      *Bitmap
	scratch *bitset.BitSet
	n       uint
}

// NewBuilder returns a Builder writing into a fresh bitmap.
func NewBuilder() *Builder {
	return &Builder{bm: New(), scratch: bitset.New(Width)}
}

// Push appends a single bit, flushing the scratch word to the underlying
// bitmap once it fills.
func (bld *Builder) Push(b bool) {
	if b {
		bld.scratch.Set(bld.n)
	}
	bld.n++
	if bld.n == Width {
		bld.flush()
	}
}

// PushRun appends n copies of bit b directly to the bitmap, first flushing
// any pending scratch bits so ordering is preserved.
func (bld *Builder) PushRun(b bool, n uint64) {
	bld.flush()
	bld.bm.AppendBits(b, n)
}

func (bld *Builder) flush() {
	if bld.n == 0 {
		return
	}
	words := bld.scratch.Bytes()
	var word uint64
	if len(words) > 0 {
		word = words[0]
	}
	bld.bm.AppendBlock(word, uint64(bld.n))
	bld.scratch.ClearAll()
	bld.n = 0
}

// Bitmap flushes any pending bits and returns the built bitmap. The
// Builder must not be used afterwards.
func (bld *Builder) Bitmap() *Bitmap {
	bld.flush()
	return bld.bm
}
