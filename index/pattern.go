package index

import (
	"github.com/sangminoh/vast/bitmap"
	"github.com/sangminoh/vast/value"
	"github.com/sangminoh/vast/vasterr"
)

// PatternIndex implements spec §4.3's pattern index: used when the
// indexed field's own value type is `pattern` (as opposed to StringIndex,
// which indexes strings and matches a regex literal against them).
// Pattern values are stored keyed by source text; `~` returns the stored
// key's bitmap, `!~` its complement masked by the universe.
type PatternIndex struct {
	base
	values map[string]*bitmap.Bitmap
}

// NewPatternIndex returns an empty pattern index.
func NewPatternIndex() *PatternIndex {
	return &PatternIndex{base: newBase(), values: make(map[string]*bitmap.Bitmap)}
}

// Push indexes v at the next position.
func (idx *PatternIndex) Push(v *value.Value) {
	var key string
	var ok bool
	if v != nil && v.Kind == value.KindPattern && v.Pattern != nil {
		key, ok = v.Pattern.String(), true
	}
	for k, bm := range idx.values {
		bm.AppendBits(ok && k == key, 1)
	}
	if ok {
		if _, exists := idx.values[key]; !exists {
			nb := bitmap.New()
			nb.AppendBits(false, idx.n)
			nb.AppendBits(true, 1)
			idx.values[key] = nb
		}
	}
	idx.advance(ok)
}

// Lookup implements Index.Lookup: the query value must itself be a
// pattern (or a string naming one verbatim), matched against the stored
// keys by source text.
func (idx *PatternIndex) Lookup(op Operator, v value.Value) (*bitmap.Bitmap, error) {
	var key string
	switch v.Kind {
	case value.KindPattern:
		key = v.Pattern.String()
	case value.KindString:
		key = v.Str
	default:
		return nil, &vasterr.ValidationError{Msg: "pattern index lookup requires a pattern or string literal"}
	}
	mask := func(bm *bitmap.Bitmap) *bitmap.Bitmap {
		return bitmap.Apply(bm, idx.universe, bitmap.AND)
	}
	bm, found := idx.values[key]
	if !found {
		bm = allFalse(idx.n)
	} else {
		bm = bm.Clone()
		bm.ZeroExtend(idx.n)
	}
	switch op {
	case OpMatch, OpEQ, OpIn:
		return mask(bm), nil
	case OpNoMatch, OpNE, OpNotIn:
		return mask(bitmap.Not(bm)), nil
	}
	return nil, &vasterr.ValidationError{Msg: "operator not legal for pattern index"}
}
