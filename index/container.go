package index

import (
	"github.com/sangminoh/vast/bitmap"
	"github.com/sangminoh/vast/value"
	"github.com/sangminoh/vast/vasterr"
)

// ContainerIndex implements spec §4.3's container index: vectors, sets,
// and tables are flattened element-by-element into a single child index
// for the element type, and each container position remembers the
// [start,end) range of child sub-positions it contributed. A lookup
// against the child index is collapsed back to container positions by
// checking whether any sub-position in a container's range matched —
// deliberately the simplest correct reduction rather than a
// performance-tuned one (see the grounding ledger entry for this file).
type ContainerIndex struct {
	base
	child   Index
	offsets [][2]uint64
}

// NewContainerIndex returns a container index that flattens elements
// into child, which must be a freshly constructed, empty index for the
// container's element type.
func NewContainerIndex(child Index) *ContainerIndex {
	return &ContainerIndex{base: newBase(), child: child}
}

// Push flattens v's elements into the child index, recording the
// [start,end) range of child positions this container occupies. Tables
// contribute both the key and the value of each pair, in that order.
func (idx *ContainerIndex) Push(v *value.Value) {
	start := idx.child.Len()
	ok := v != nil
	if ok {
		switch v.Kind {
		case value.KindVector:
			for _, e := range v.VectorElems() {
				e := e
				idx.child.Push(&e)
			}
		case value.KindSet:
			if s := v.SetElems(); s != nil {
				for e := range s.Iter() {
					e := e
					idx.child.Push(&e)
				}
			}
		case value.KindTable:
			for k, val := range v.TableElems() {
				k, val := k, val
				idx.child.Push(&k)
				idx.child.Push(&val)
			}
		default:
			ok = false
		}
	}
	end := idx.child.Len()
	idx.offsets = append(idx.offsets, [2]uint64{start, end})
	idx.advance(ok)
}

// Lookup evaluates op against the child index and collapses the result
// to container-level positions: a container matches if any of its
// flattened sub-positions matched.
func (idx *ContainerIndex) Lookup(op Operator, v value.Value) (*bitmap.Bitmap, error) {
	hits, err := idx.child.Lookup(op, v)
	if err != nil {
		return nil, &vasterr.ValidationError{Msg: "container element lookup: " + err.Error()}
	}
	b := bitmap.NewBuilder()
	for _, rng := range idx.offsets {
		match := false
		for i := rng[0]; i < rng[1]; i++ {
			if hits.Get(i) {
				match = true
				break
			}
		}
		b.Push(match)
	}
	out := b.Bitmap()
	out.ZeroExtend(idx.n)
	return bitmap.Apply(out, idx.universe, bitmap.AND), nil
}
