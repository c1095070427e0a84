package index

import (
	"github.com/dlclark/regexp2"

	"github.com/sangminoh/vast/bitmap"
	"github.com/sangminoh/vast/value"
	"github.com/sangminoh/vast/vasterr"
)

// StringIndex implements spec §4.3's string index: exact equality via a
// direct map, and `~`/`!~` (and their `in`/`!in` aliases, spec §4.4
// grammar) via a linear scan of known keys against the query regex,
// OR-ing the matching keys' bitmaps. Keys that use regexp2 rather than
// stdlib regexp keep pattern semantics consistent with the pattern value
// type (value.MakePattern), which is also regexp2-backed.
type StringIndex struct {
	base
	values map[string]*bitmap.Bitmap
}

// NewStringIndex returns an empty string index.
func NewStringIndex() *StringIndex {
	return &StringIndex{base: newBase(), values: make(map[string]*bitmap.Bitmap)}
}

// Push indexes v at the next position.
func (idx *StringIndex) Push(v *value.Value) {
	var s string
	var ok bool
	if v != nil && v.Kind == value.KindString {
		s, ok = v.Str, true
	}
	for k, bm := range idx.values {
		bm.AppendBits(ok && k == s, 1)
	}
	if ok {
		if _, exists := idx.values[s]; !exists {
			nb := bitmap.New()
			nb.AppendBits(false, idx.n)
			nb.AppendBits(true, 1)
			idx.values[s] = nb
		}
	}
	idx.advance(ok)
}

// Lookup implements Index.Lookup for string equality and pattern queries.
func (idx *StringIndex) Lookup(op Operator, v value.Value) (*bitmap.Bitmap, error) {
	mask := func(bm *bitmap.Bitmap) *bitmap.Bitmap {
		return bitmap.Apply(bm, idx.universe, bitmap.AND)
	}
	switch op {
	case OpEQ, OpNE:
		if v.Kind != value.KindString {
			return nil, &vasterr.ValidationError{Msg: "== on a string index requires a string literal"}
		}
		bm, found := idx.values[v.Str]
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

	case OpMatch, OpNoMatch, OpIn, OpNotIn:
		var re *regexp2.Regexp
		switch v.Kind {
		case value.KindPattern:
			re = v.Pattern
		case value.KindString:
			var err error
			re, err = regexp2.Compile(v.Str, regexp2.None)
			if err != nil {
				return nil, &vasterr.ValidationError{Msg: "invalid pattern: " + err.Error()}
			}
		default:
			return nil, &vasterr.ValidationError{Msg: "~ requires a pattern or string literal"}
		}
		out := allFalse(idx.n)
		for key, bm := range idx.values {
			matched, err := re.MatchString(key)
			if err != nil {
				return nil, &vasterr.ValidationError{Msg: "pattern evaluation failed: " + err.Error()}
			}
			if matched {
				padded := bm.Clone()
				padded.ZeroExtend(idx.n)
				out = bitmap.Apply(out, padded, bitmap.OR)
			}
		}
		if op == OpNoMatch || op == OpNotIn {
			return mask(bitmap.Not(out)), nil
		}
		return mask(out), nil
	}
	return nil, &vasterr.ValidationError{Msg: "operator not legal for string index"}
}
