// Package value implements VAST's tagged-union value type (spec §3): the
// primitive types an event's record-value is built from, plus the
// container types (vector, set, table, record) and the none/invalid
// markers.
//
// The type dispatches once, at construction, on a Kind tag rather than
// boxing every value behind interface{} — the same monomorphic-dispatch
// preference the teacher applies to its own tagged unions (e.g.
// core/types distinguishing transaction types by a leading byte before
// ever touching a field), so hot-path comparisons in the index layer never
// pay for a type switch per element.
package value

import (
	"fmt"
	"net/netip"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/dlclark/regexp2"
)

// Kind identifies which field of Value is populated.
type Kind uint8

const (
	KindNone Kind = iota
	KindInvalid
	KindBool
	KindInt
	KindUint
	KindDouble
	KindDuration
	KindTimePoint
	KindString
	KindPattern
	KindAddress
	KindSubnet
	KindPort
	KindVector
	KindSet
	KindTable
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInvalid:
		return "invalid"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindDouble:
		return "double"
	case KindDuration:
		return "duration"
	case KindTimePoint:
		return "time"
	case KindString:
		return "string"
	case KindPattern:
		return "pattern"
	case KindAddress:
		return "address"
	case KindSubnet:
		return "subnet"
	case KindPort:
		return "port"
	case KindVector:
		return "vector"
	case KindSet:
		return "set"
	case KindTable:
		return "table"
	case KindRecord:
		return "record"
	default:
		return "unknown"
	}
}

// Port is the (number, protocol) pair of spec §4.3.
type Port struct {
	Number   uint16
	Protocol string // "tcp", "udp", "icmp", or "" for unknown
}

// container holds the three collection variants out-of-line, behind a
// pointer. This keeps Value itself a comparable type (every direct field
// is comparable) so Value can be used as a map key and as the element
// type of a mapset.Set[Value] — required for the container value index
// (spec §4.3) and for table keys — at the cost of container equality
// being by identity rather than by deep structural comparison; Equal
// (compare.go) falls back to element-wise comparison for vectors, sets,
// tables and records so that cost is not visible to callers.
type container struct {
	Vector []Value
	Set    mapset.Set[Value]
	Table  map[Value]Value
	Record map[string]Value
}

// Value is the tagged union of spec §3. Only the field matching Kind is
// populated; all others are the zero value.
type Value struct {
	Kind Kind

	Bool     bool
	Int      int64
	Uint     uint64
	Double   float64
	Duration time.Duration
	Time     time.Time
	Str      string
	Pattern  *regexp2.Regexp
	Address  netip.Addr
	Subnet   netip.Prefix
	Port     Port
	c        *container
}

// VectorElems returns the element values of a KindVector value.
func (v Value) VectorElems() []Value {
	if v.c == nil {
		return nil
	}
	return v.c.Vector
}

// SetElems returns the backing set of a KindSet value.
func (v Value) SetElems() mapset.Set[Value] {
	if v.c == nil {
		return nil
	}
	return v.c.Set
}

// TableElems returns the backing map of a KindTable value.
func (v Value) TableElems() map[Value]Value {
	if v.c == nil {
		return nil
	}
	return v.c.Table
}

// RecordFields returns the field map of a KindRecord value.
func (v Value) RecordFields() map[string]Value {
	if v.c == nil {
		return nil
	}
	return v.c.Record
}

// None is the absence-of-value marker: a position was indexed but had no
// value for this field (spec §3, §4.3 "value absent marks no value").
var None = Value{Kind: KindNone}

// Invalid is returned by operations that cannot produce a meaningful
// value (e.g. folding an operator/type pair the lattice doesn't define).
var Invalid = Value{Kind: KindInvalid}

func Bool(b bool) Value         { return Value{Kind: KindBool, Bool: b} }
func Int(i int64) Value         { return Value{Kind: KindInt, Int: i} }
func Uint(u uint64) Value       { return Value{Kind: KindUint, Uint: u} }
func Double(f float64) Value    { return Value{Kind: KindDouble, Double: f} }
func Dur(d time.Duration) Value { return Value{Kind: KindDuration, Duration: d} }
func Time(t time.Time) Value    { return Value{Kind: KindTimePoint, Time: t} }
func String(s string) Value     { return Value{Kind: KindString, Str: s} }

// MakePattern compiles re and returns a pattern value, or an error if the
// regex is malformed.
func MakePattern(re string) (Value, error) {
	compiled, err := regexp2.Compile(re, regexp2.None)
	if err != nil {
		return Invalid, fmt.Errorf("compile pattern %q: %w", re, err)
	}
	return Value{Kind: KindPattern, Pattern: compiled}, nil
}

func Addr(a netip.Addr) Value     { return Value{Kind: KindAddress, Address: a} }
func MakeSubnet(p netip.Prefix) Value { return Value{Kind: KindSubnet, Subnet: p} }
func MakePort(n uint16, proto string) Value {
	return Value{Kind: KindPort, Port: Port{Number: n, Protocol: proto}}
}

func MakeVector(vs []Value) Value { return Value{Kind: KindVector, c: &container{Vector: vs}} }

func MakeSet(vs []Value) Value {
	s := mapset.NewThreadUnsafeSet[Value]()
	for _, v := range vs {
		s.Add(v)
	}
	return Value{Kind: KindSet, c: &container{Set: s}}
}

func MakeTable(m map[Value]Value) Value { return Value{Kind: KindTable, c: &container{Table: m}} }
func MakeRecord(m map[string]Value) Value {
	return Value{Kind: KindRecord, c: &container{Record: m}}
}

// IsNone reports whether v carries no value.
func (v Value) IsNone() bool { return v.Kind == KindNone }

// IsInvalid reports whether v is the invalid marker.
func (v Value) IsInvalid() bool { return v.Kind == KindInvalid }
