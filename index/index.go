// Package index implements VAST's per-type value indexes (spec §4.3): a
// uniform Push/Lookup interface over the arithmetic (bit-sliced),
// string, pattern, address, port, and container encodings.
//
// The bit-sliced indexes are grounded directly on go-ethereum's
// core/bloombits design: one bitmap per bit of the encoded value, with a
// range query decomposed into a handful of bitmap operations over those
// columns instead of a per-value bitmap. core/filtermaps's row/bitset
// storage informed the universe-tracking scheme (every index keeps a
// bitmap of positions that received *any* value, so NOT has a
// well-defined complement, spec §3 "Index").
package index

import (
	"github.com/sangminoh/vast/bitmap"
	"github.com/sangminoh/vast/value"
)

// Operator is a clause-level relational operator (spec §4.4 grammar).
type Operator uint8

const (
	OpEQ Operator = iota
	OpNE
	OpLT
	OpLE
	OpGT
	OpGE
	OpMatch   // ~
	OpNoMatch // !~
	OpIn      // in
	OpNotIn   // !in
)

// Negate returns the operator's negation per spec §4.4's negate(op) table.
func (op Operator) Negate() Operator {
	switch op {
	case OpEQ:
		return OpNE
	case OpNE:
		return OpEQ
	case OpLT:
		return OpGE
	case OpLE:
		return OpGT
	case OpGT:
		return OpLE
	case OpGE:
		return OpLT
	case OpMatch:
		return OpNoMatch
	case OpNoMatch:
		return OpMatch
	case OpIn:
		return OpNotIn
	case OpNotIn:
		return OpIn
	}
	return op
}

// Index maps indexed values to positions. Push advances the index by one
// position per call (v == nil means "no value here", per spec §4.3); the
// position count therefore always equals the number of Push calls, and
// every returned bitmap is exactly that long.
type Index interface {
	// Push indexes v (nil for "no value") at the next position.
	Push(v *value.Value)

	// Lookup evaluates op against v and returns the matching positions.
	Lookup(op Operator, v value.Value) (*bitmap.Bitmap, error)

	// Universe returns the bitmap of positions that received any value.
	Universe() *bitmap.Bitmap

	// Len returns the current position count.
	Len() uint64
}

// base is embedded by every concrete index to track the shared position
// counter and universe bitmap.
type base struct {
	universe *bitmap.Bitmap
	n        uint64
}

func newBase() base {
	return base{universe: bitmap.New()}
}

func (b *base) advance(hasValue bool) {
	b.universe.AppendBits(hasValue, 1)
	b.n++
}

func (b *base) Universe() *bitmap.Bitmap { return b.universe }
func (b *base) Len() uint64              { return b.n }
