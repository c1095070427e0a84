package query

import (
	"fmt"

	"github.com/sangminoh/vast/index"
	"github.com/sangminoh/vast/value"
	"github.com/sangminoh/vast/vasterr"
)

// Schema resolves dotted event_clause identifiers to field types (spec
// §6 "Typed records; names are dotted identifiers namespace.field").
type Schema struct {
	// Fields maps "namespace.field" to the field's value kind.
	Fields map[string]value.Kind
}

// Resolve looks up namespace.field. This is the Open Question #1 fix
// (spec §9): the pair is resolved against the full schema map, never
// truncated to a single placeholder component the way the source's
// `lhs[1] = "0"` shortcut did.
func (s *Schema) Resolve(namespace, field string) (value.Kind, bool) {
	if s == nil || s.Fields == nil {
		return value.KindInvalid, false
	}
	k, ok := s.Fields[namespace+"."+field]
	return k, ok
}

// Node is a validated query node: either a Boolean combination or a
// single leaf ready for compilation to an index lookup.
type Node interface{ isNode() }

// AndNode / OrNode mirror BinaryQuery after validation.
type AndNode struct{ L, R Node }
type OrNode struct{ L, R Node }

func (AndNode) isNode() {}
func (OrNode) isNode()  {}

// Leaf is a single validated predicate: a field path (dotted event
// field, "@type", or one of the three tags), the field's resolved kind,
// the relational operator, and the folded constant it compares against.
type Leaf struct {
	FieldPath string
	Kind      value.Kind
	Op        RelOp
	Value     value.Value
}

func (Leaf) isNode() {}

// Validate type-checks a normalized query against schema: operator
// legality per spec §4.3's per-kind table, and — for event clauses —
// schema resolution of the namespace.field pair.
func Validate(q Query, schema *Schema) (Node, error) {
	switch n := q.(type) {
	case BinaryQuery:
		l, err := Validate(n.Left, schema)
		if err != nil {
			return nil, err
		}
		r, err := Validate(n.Right, schema)
		if err != nil {
			return nil, err
		}
		if n.Op == "&&" {
			return AndNode{L: l, R: r}, nil
		}
		return OrNode{L: l, R: r}, nil

	case EventClause:
		kind, ok := schema.Resolve(n.Namespace, n.Field)
		if !ok {
			return nil, &vasterr.ValidationError{Msg: fmt.Sprintf("unknown field %s.%s", n.Namespace, n.Field)}
		}
		v, err := Fold(n.Expr)
		if err != nil {
			return nil, err
		}
		if !operatorLegal(kind, n.Op) {
			return nil, &vasterr.ValidationError{Msg: fmt.Sprintf("operator %s not legal for field %s.%s of kind %s", n.Op, n.Namespace, n.Field, kind)}
		}
		return Leaf{FieldPath: n.Namespace + "." + n.Field, Kind: kind, Op: n.Op, Value: v}, nil

	case TypeClause:
		v, err := Fold(n.Expr)
		if err != nil {
			return nil, err
		}
		if !operatorLegal(value.KindString, n.Op) {
			return nil, &vasterr.ValidationError{Msg: fmt.Sprintf("operator %s not legal for @%s", n.Op, n.TypeName)}
		}
		return Leaf{FieldPath: "@" + n.TypeName, Kind: value.KindString, Op: n.Op, Value: v}, nil

	case TagClause:
		kind := tagKind(n.Tag)
		v, err := Fold(n.Expr)
		if err != nil {
			return nil, err
		}
		if !operatorLegal(kind, n.Op) {
			return nil, &vasterr.ValidationError{Msg: fmt.Sprintf("operator %s not legal for %s", n.Op, n.Tag)}
		}
		return Leaf{FieldPath: string(n.Tag), Kind: kind, Op: n.Op, Value: v}, nil
	}
	return nil, &vasterr.ValidationError{Msg: fmt.Sprintf("unrecognized query node %T", q)}
}

// tagKind fixes the LHS type of a tag clause per spec §4.4
// ("name"->string|regex, "time"->time_point, "id"->uint).
func tagKind(tag Tag) value.Kind {
	switch tag {
	case TagName:
		return value.KindString
	case TagTime:
		return value.KindTimePoint
	case TagID:
		return value.KindUint
	}
	return value.KindInvalid
}

// operatorLegal mirrors the per-index operator legality enforced at
// Lookup time (spec §4.3), checked here so a malformed query fails at
// validation rather than deep inside index dispatch.
func operatorLegal(kind value.Kind, op RelOp) bool {
	switch kind {
	case value.KindInt, value.KindUint, value.KindDouble, value.KindDuration, value.KindTimePoint:
		switch op {
		case RelEQ, RelNE, RelLT, RelLE, RelGT, RelGE:
			return true
		}
	case value.KindString:
		switch op {
		case RelEQ, RelNE, RelMatch, RelNoMatch, RelIn, RelNotIn:
			return true
		}
	case value.KindPattern:
		switch op {
		case RelMatch, RelNoMatch, RelEQ, RelNE, RelIn, RelNotIn:
			return true
		}
	case value.KindAddress:
		switch op {
		case RelEQ, RelNE, RelIn, RelNotIn:
			return true
		}
	case value.KindSubnet:
		switch op {
		case RelEQ, RelNE:
			return true
		}
	case value.KindPort:
		switch op {
		case RelEQ, RelNE, RelLT, RelLE, RelGT, RelGE:
			return true
		}
	case value.KindBool:
		switch op {
		case RelEQ, RelNE:
			return true
		}
	case value.KindVector, value.KindSet, value.KindTable, value.KindRecord:
		switch op {
		case RelEQ, RelNE, RelIn, RelNotIn:
			return true
		}
	}
	return false
}

// toIndexOp translates a validated RelOp to the index package's
// Operator enum used at compile time.
func toIndexOp(op RelOp) index.Operator {
	switch op {
	case RelEQ:
		return index.OpEQ
	case RelNE:
		return index.OpNE
	case RelLT:
		return index.OpLT
	case RelLE:
		return index.OpLE
	case RelGT:
		return index.OpGT
	case RelGE:
		return index.OpGE
	case RelMatch:
		return index.OpMatch
	case RelNoMatch:
		return index.OpNoMatch
	case RelIn:
		return index.OpIn
	case RelNotIn:
		return index.OpNotIn
	}
	return index.OpEQ
}
