package index

import (
	"math"

	"github.com/sangminoh/vast/bitmap"
	"github.com/sangminoh/vast/value"
	"github.com/sangminoh/vast/vasterr"
)

// arithmeticWidth is the number of bit-sliced columns kept for int, uint,
// double, duration, and time_point values: spec §4.3 "one bitmap per bit
// of the integer (or quantized floating value)".
const arithmeticWidth = 64

// ArithmeticIndex is the bit-sliced index for int, uint, double, duration,
// and time_point (spec §4.3). Range lookups decompose into a bit-sliced
// comparison (core/bloombits-style column walk); equality additionally
// consults a direct value->bitmap map so repeated `==` lookups on a value
// already seen during ingest don't have to replay the bit-slice walk.
type ArithmeticIndex struct {
	base
	kind value.Kind
	cols [arithmeticWidth]*bitmap.Bitmap
	eq   map[uint64]*bitmap.Bitmap
}

// NewArithmeticIndex returns an index for the given numeric kind (one of
// KindInt, KindUint, KindDouble, KindDuration, KindTimePoint).
func NewArithmeticIndex(kind value.Kind) *ArithmeticIndex {
	idx := &ArithmeticIndex{base: newBase(), kind: kind, eq: make(map[uint64]*bitmap.Bitmap)}
	for i := range idx.cols {
		idx.cols[i] = bitmap.New()
	}
	return idx
}

// encodeOrdered maps a numeric value onto a uint64 whose unsigned order
// matches the value's natural order, so the bit-sliced comparison below
// can treat every kind uniformly.
func encodeOrdered(kind value.Kind, v value.Value) (uint64, bool) {
	switch kind {
	case value.KindUint:
		if v.Kind != value.KindUint {
			return 0, false
		}
		return v.Uint, true
	case value.KindInt:
		if v.Kind != value.KindInt {
			return 0, false
		}
		return uint64(v.Int) ^ (1 << 63), true
	case value.KindDuration:
		if v.Kind != value.KindDuration {
			return 0, false
		}
		return uint64(int64(v.Duration)) ^ (1 << 63), true
	case value.KindTimePoint:
		if v.Kind != value.KindTimePoint {
			return 0, false
		}
		return uint64(v.Time.UnixNano()) ^ (1 << 63), true
	case value.KindDouble:
		if v.Kind != value.KindDouble {
			return 0, false
		}
		bits := math.Float64bits(v.Double)
		if bits&(1<<63) != 0 {
			return ^bits, true
		}
		return bits | (1 << 63), true
	}
	return 0, false
}

// Push indexes v at the next position.
func (idx *ArithmeticIndex) Push(v *value.Value) {
	var code uint64
	var ok bool
	if v != nil {
		code, ok = encodeOrdered(idx.kind, *v)
	}
	for i := 0; i < arithmeticWidth; i++ {
		bit := ok && (code>>uint(i))&1 == 1
		idx.cols[i].AppendBits(bit, 1)
	}
	for k, bm := range idx.eq {
		bm.AppendBits(ok && k == code, 1)
	}
	if ok {
		if _, exists := idx.eq[code]; !exists {
			nb := bitmap.New()
			nb.AppendBits(false, idx.n)
			nb.AppendBits(true, 1)
			idx.eq[code] = nb
		}
	}
	idx.advance(ok)
}

// compareColumns walks the bit-sliced columns from the most to the least
// significant bit, producing the strictly-less-than and equal-to bitmaps
// for code in a single pass: two bitmap operations for a clear bit of
// code and four for a set bit, so at most 4*width in all.
func (idx *ArithmeticIndex) compareColumns(code uint64) (lt, eq *bitmap.Bitmap) {
	eqSoFar := allTrue(idx.n)
	lt = allFalse(idx.n)
	for i := arithmeticWidth - 1; i >= 0; i-- {
		colBit := (code >> uint(i)) & 1
		if colBit == 1 {
			ltHere := bitmap.Apply(bitmap.Not(idx.cols[i]), eqSoFar, bitmap.AND)
			lt = bitmap.Apply(lt, ltHere, bitmap.OR)
			eqSoFar = bitmap.Apply(eqSoFar, idx.cols[i], bitmap.AND)
		} else {
			eqSoFar = bitmap.Apply(eqSoFar, bitmap.Not(idx.cols[i]), bitmap.AND)
		}
	}
	return lt, eqSoFar
}

func allTrue(n uint64) *bitmap.Bitmap {
	bm := bitmap.New()
	bm.AppendBits(true, n)
	return bm
}

func allFalse(n uint64) *bitmap.Bitmap {
	bm := bitmap.New()
	bm.AppendBits(false, n)
	return bm
}

// Lookup implements Index.Lookup for the arithmetic encodings.
func (idx *ArithmeticIndex) Lookup(op Operator, v value.Value) (*bitmap.Bitmap, error) {
	code, ok := encodeOrdered(idx.kind, v)
	if !ok {
		return nil, &vasterr.ValidationError{Msg: "value of kind " + v.Kind.String() + " is not comparable with index kind " + idx.kind.String()}
	}
	mask := func(bm *bitmap.Bitmap) *bitmap.Bitmap {
		return bitmap.Apply(bm, idx.universe, bitmap.AND)
	}
	switch op {
	case OpEQ:
		if bm, found := idx.eq[code]; found {
			out := bm.Clone()
			out.ZeroExtend(idx.n)
			return mask(out), nil
		}
		return allFalse(idx.n), nil
	case OpNE:
		if bm, found := idx.eq[code]; found {
			out := bm.Clone()
			out.ZeroExtend(idx.n)
			return mask(bitmap.Not(out)), nil
		}
		return mask(idx.universe.Clone()), nil
	case OpLT:
		lt, _ := idx.compareColumns(code)
		return mask(lt), nil
	case OpLE:
		lt, eq := idx.compareColumns(code)
		return mask(bitmap.Apply(lt, eq, bitmap.OR)), nil
	case OpGT:
		lt, eq := idx.compareColumns(code)
		le := bitmap.Apply(lt, eq, bitmap.OR)
		return mask(bitmap.Not(le)), nil
	case OpGE:
		lt, _ := idx.compareColumns(code)
		return mask(bitmap.Not(lt)), nil
	}
	return nil, &vasterr.ValidationError{Msg: "operator not legal for arithmetic index"}
}
