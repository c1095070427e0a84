package index

import (
	"github.com/sangminoh/vast/bitmap"
	"github.com/sangminoh/vast/value"
	"github.com/sangminoh/vast/vasterr"
)

// portWidth is the number of bit-sliced columns kept for the port number
// (16 bits, spec §4.3), allowing range queries on port number alongside
// equality on the (number, protocol) pair.
const portWidth = 16

// PortIndex is the index for port values (spec §4.3): the port number is
// bit-sliced like ArithmeticIndex so `<`/`<=`/`>`/`>=` on bare numbers
// work, while protocol is kept as a direct categorical map. Equality
// requires both number and protocol to match, except that an empty
// protocol string in the query value acts as a wildcard matching any
// protocol for that number (spec §3 "port: number + optional protocol
// tag").
type PortIndex struct {
	base
	cols     [portWidth]*bitmap.Bitmap
	protocol map[string]*bitmap.Bitmap
}

// NewPortIndex returns an empty port index.
func NewPortIndex() *PortIndex {
	idx := &PortIndex{base: newBase(), protocol: make(map[string]*bitmap.Bitmap)}
	for i := range idx.cols {
		idx.cols[i] = bitmap.New()
	}
	return idx
}

// Push indexes v at the next position.
func (idx *PortIndex) Push(v *value.Value) {
	var p value.Port
	var ok bool
	if v != nil && v.Kind == value.KindPort {
		p, ok = v.Port, true
	}
	for i := 0; i < portWidth; i++ {
		bit := ok && (p.Number>>uint(i))&1 == 1
		idx.cols[i].AppendBits(bit, 1)
	}
	for proto, bm := range idx.protocol {
		bm.AppendBits(ok && proto == p.Protocol, 1)
	}
	if ok {
		if _, exists := idx.protocol[p.Protocol]; !exists {
			nb := bitmap.New()
			nb.AppendBits(false, idx.n)
			nb.AppendBits(true, 1)
			idx.protocol[p.Protocol] = nb
		}
	}
	idx.advance(ok)
}

// numberEqual returns the bitmap of positions whose port number equals n.
func (idx *PortIndex) numberEqual(n uint16) *bitmap.Bitmap {
	out := allTrue(idx.n)
	for i := 0; i < portWidth; i++ {
		bit := (n >> uint(i)) & 1
		if bit == 1 {
			out = bitmap.Apply(out, idx.cols[i], bitmap.AND)
		} else {
			out = bitmap.Apply(out, bitmap.Not(idx.cols[i]), bitmap.AND)
		}
	}
	return out
}

func (idx *PortIndex) numberCompare(n uint16) (lt, eq *bitmap.Bitmap) {
	eqSoFar := allTrue(idx.n)
	lt = allFalse(idx.n)
	for i := portWidth - 1; i >= 0; i-- {
		colBit := (n >> uint(i)) & 1
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

func (idx *PortIndex) protocolBitmap(proto string) *bitmap.Bitmap {
	if proto == "" {
		return allTrue(idx.n)
	}
	bm, found := idx.protocol[proto]
	if !found {
		return allFalse(idx.n)
	}
	out := bm.Clone()
	out.ZeroExtend(idx.n)
	return out
}

// Lookup implements Index.Lookup for port equality and range queries.
func (idx *PortIndex) Lookup(op Operator, v value.Value) (*bitmap.Bitmap, error) {
	if v.Kind != value.KindPort {
		return nil, &vasterr.ValidationError{Msg: "port index lookup requires a port literal"}
	}
	mask := func(bm *bitmap.Bitmap) *bitmap.Bitmap {
		return bitmap.Apply(bm, idx.universe, bitmap.AND)
	}
	switch op {
	case OpEQ, OpNE:
		eq := bitmap.Apply(idx.numberEqual(v.Port.Number), idx.protocolBitmap(v.Port.Protocol), bitmap.AND)
		if op == OpNE {
			return mask(bitmap.Not(eq)), nil
		}
		return mask(eq), nil
	case OpLT:
		lt, _ := idx.numberCompare(v.Port.Number)
		return mask(lt), nil
	case OpLE:
		lt, eq := idx.numberCompare(v.Port.Number)
		return mask(bitmap.Apply(lt, eq, bitmap.OR)), nil
	case OpGT:
		lt, eq := idx.numberCompare(v.Port.Number)
		le := bitmap.Apply(lt, eq, bitmap.OR)
		return mask(bitmap.Not(le)), nil
	case OpGE:
		lt, _ := idx.numberCompare(v.Port.Number)
		return mask(bitmap.Not(lt)), nil
	}
	return nil, &vasterr.ValidationError{Msg: "operator not legal for port index"}
}
