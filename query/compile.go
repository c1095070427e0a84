package query

import (
	"github.com/sangminoh/vast/index"
	"github.com/sangminoh/vast/value"
	"github.com/sangminoh/vast/vasterr"
)

// IndexSet resolves a validated Leaf's field path to the concrete index
// backing it: "namespace.field" for event clauses, "@type_name" for the
// type clause, and "&name"/"&time"/"&id" for tag clauses.
type IndexSet struct {
	Indexes map[string]index.Index
}

// Lookup returns the index registered for path.
func (s *IndexSet) Lookup(path string) (index.Index, bool) {
	if s == nil || s.Indexes == nil {
		return nil, false
	}
	idx, ok := s.Indexes[path]
	return idx, ok
}

// CompiledNode is a Node lowered to direct index.Index references,
// ready for exec.go to evaluate.
type CompiledNode interface{ isCompiled() }

type CompiledAnd struct{ L, R CompiledNode }
type CompiledOr struct{ L, R CompiledNode }

// CompiledLeaf is a single index.Lookup call.
type CompiledLeaf struct {
	Idx   index.Index
	Op    index.Operator
	Value value.Value
}

func (CompiledAnd) isCompiled()  {}
func (CompiledOr) isCompiled()   {}
func (CompiledLeaf) isCompiled() {}

// Compile lowers a validated Node tree to a CompiledNode tree (spec
// §4.4 "lowering to index lookups").
func Compile(n Node, indexes *IndexSet) (CompiledNode, error) {
	switch t := n.(type) {
	case AndNode:
		l, err := Compile(t.L, indexes)
		if err != nil {
			return nil, err
		}
		r, err := Compile(t.R, indexes)
		if err != nil {
			return nil, err
		}
		return CompiledAnd{L: l, R: r}, nil
	case OrNode:
		l, err := Compile(t.L, indexes)
		if err != nil {
			return nil, err
		}
		r, err := Compile(t.R, indexes)
		if err != nil {
			return nil, err
		}
		return CompiledOr{L: l, R: r}, nil
	case Leaf:
		idx, ok := indexes.Lookup(t.FieldPath)
		if !ok {
			return nil, &vasterr.ValidationError{Msg: "no index registered for " + t.FieldPath}
		}
		return CompiledLeaf{Idx: idx, Op: toIndexOp(t.Op), Value: t.Value}, nil
	}
	return nil, &vasterr.ValidationError{Msg: "unrecognized validated node"}
}
