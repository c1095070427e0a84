package index

import (
	"net/netip"

	"github.com/holiman/uint256"

	"github.com/sangminoh/vast/bitmap"
	"github.com/sangminoh/vast/value"
	"github.com/sangminoh/vast/vasterr"
)

// addressWidth is the number of bit-sliced columns kept for addresses:
// every address, v4 or v6, is stored as its 128-bit IPv4-mapped-IPv6
// form (spec §4.3 "addresses bit-sliced over all 128 bits, with IPv4
// addresses treated as IPv4-mapped IPv6"), one column per bit.
const addressWidth = 128

// AddressIndex is the bit-sliced index for address values (spec §4.3).
// Subnet membership is computed by ANDing together only the columns
// covered by the subnet's prefix length, a restricted form of
// ArithmeticIndex's compareColumns that needs no less-than tracking
// since subnet membership is a pure prefix match rather than an order
// comparison.
type AddressIndex struct {
	base
	cols [addressWidth]*bitmap.Bitmap
	eq   map[netip.Addr]*bitmap.Bitmap
}

// NewAddressIndex returns an empty address index.
func NewAddressIndex() *AddressIndex {
	idx := &AddressIndex{base: newBase(), eq: make(map[netip.Addr]*bitmap.Bitmap)}
	for i := range idx.cols {
		idx.cols[i] = bitmap.New()
	}
	return idx
}

// mappedBits returns a's 128-bit representation as a uint256, with IPv4
// addresses embedded in the IPv4-mapped-IPv6 range.
func mappedBits(a netip.Addr) uint256.Int {
	a16 := a.As16()
	var u uint256.Int
	u.SetBytes(a16[:])
	return u
}

// Push indexes v at the next position.
func (idx *AddressIndex) Push(v *value.Value) {
	var addr netip.Addr
	var ok bool
	if v != nil && v.Kind == value.KindAddress {
		addr, ok = v.Address, true
	}
	var bits uint256.Int
	if ok {
		bits = mappedBits(addr)
	}
	for i := 0; i < addressWidth; i++ {
		bit := ok && bits.Bit(uint(i)) == 1
		idx.cols[i].AppendBits(bit, 1)
	}
	for k, bm := range idx.eq {
		bm.AppendBits(ok && k == addr, 1)
	}
	if ok {
		if _, exists := idx.eq[addr]; !exists {
			nb := bitmap.New()
			nb.AppendBits(false, idx.n)
			nb.AppendBits(true, 1)
			idx.eq[addr] = nb
		}
	}
	idx.advance(ok)
}

// inSubnet computes the bitmap of positions whose address falls inside p,
// ANDing together the columns covered by the prefix, most significant
// bit first.
func (idx *AddressIndex) inSubnet(p netip.Prefix) *bitmap.Bitmap {
	base := mappedBits(p.Masked().Addr())
	bits := p.Bits()
	if p.Addr().Is4() {
		// Within the IPv4-mapped-IPv6 form, an IPv4 /n prefix covers the
		// low 32 bits, offset by the fixed ::ffff:0:0/96 mapping prefix.
		bits += 96
	}
	out := allTrue(idx.n)
	for i := addressWidth - 1; i >= addressWidth-bits; i-- {
		if base.Bit(uint(i)) == 1 {
			out = bitmap.Apply(out, idx.cols[i], bitmap.AND)
		} else {
			out = bitmap.Apply(out, bitmap.Not(idx.cols[i]), bitmap.AND)
		}
	}
	return out
}

// Lookup implements Index.Lookup for address equality and subnet
// membership.
func (idx *AddressIndex) Lookup(op Operator, v value.Value) (*bitmap.Bitmap, error) {
	mask := func(bm *bitmap.Bitmap) *bitmap.Bitmap {
		return bitmap.Apply(bm, idx.universe, bitmap.AND)
	}
	switch op {
	case OpEQ, OpNE:
		if v.Kind != value.KindAddress {
			return nil, &vasterr.ValidationError{Msg: "== on an address index requires an address literal"}
		}
		bm, found := idx.eq[v.Address]
		if !found {
			bm = allFalse(idx.n)
		} else {
			bm = bm.Clone()
			bm.ZeroExtend(idx.n)
		}
		if op == OpNE {
			return mask(bitmap.Not(bm)), nil
		}
		return mask(bm), nil

	case OpIn, OpNotIn:
		if v.Kind != value.KindSubnet {
			return nil, &vasterr.ValidationError{Msg: "in on an address index requires a subnet literal"}
		}
		in := idx.inSubnet(v.Subnet)
		if op == OpNotIn {
			return mask(bitmap.Not(in)), nil
		}
		return mask(in), nil
	}
	return nil, &vasterr.ValidationError{Msg: "operator not legal for address index"}
}
