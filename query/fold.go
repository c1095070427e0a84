package query

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/sangminoh/vast/value"
	"github.com/sangminoh/vast/vasterr"
)

// Fold constant-folds an expression tree down to a single value.Value
// (spec §4.4: "expression is a constant-foldable arithmetic tree over
// literal values"), delegating the actual arithmetic to
// value.FoldUnary/FoldBinary (spec §9 Open Question #3).
func Fold(e Expr) (value.Value, error) {
	switch n := e.(type) {
	case Literal:
		return foldLiteral(n.Tok)
	case UnaryExpr:
		x, err := Fold(n.X)
		if err != nil {
			return value.Invalid, err
		}
		return value.FoldUnary(n.Op, x)
	case BinaryExpr:
		l, err := Fold(n.L)
		if err != nil {
			return value.Invalid, err
		}
		r, err := Fold(n.R)
		if err != nil {
			return value.Invalid, err
		}
		return value.FoldBinary(n.Op, l, r)
	case CollectionExpr:
		elems := make([]value.Value, 0, len(n.Elems))
		for _, sub := range n.Elems {
			v, err := Fold(sub)
			if err != nil {
				return value.Invalid, err
			}
			elems = append(elems, v)
		}
		switch n.Kind {
		case "vector":
			return value.MakeVector(elems), nil
		case "set":
			return value.MakeSet(elems), nil
		}
	}
	return value.Invalid, &vasterr.ValidationError{Msg: fmt.Sprintf("cannot fold expression of type %T", e)}
}

// foldLiteral turns a raw lexer token into a typed value, trying each
// literal form the grammar's type_name list enumerates in turn: bool,
// duration, port (n/proto), subnet (CIDR), address, then falling back
// to a bare signed/unsigned integer or a double.
func foldLiteral(tok LitToken) (value.Value, error) {
	switch tok.Kind {
	case TTrue:
		return value.Bool(true), nil
	case TFalse:
		return value.Bool(false), nil
	case TStr:
		return value.String(tok.Text), nil
	case TRegex:
		return value.MakePattern(tok.Text)
	case TAtom:
		return parseAtom(tok.Text)
	}
	return value.Invalid, &vasterr.ValidationError{Msg: "unrecognized literal"}
}

func parseAtom(text string) (value.Value, error) {
	if d, err := time.ParseDuration(text); err == nil {
		return value.Dur(d), nil
	}
	if num, proto, ok := strings.Cut(text, "/"); ok {
		if n, err := strconv.ParseUint(num, 10, 16); err == nil && isProtoName(proto) {
			return value.MakePort(uint16(n), proto), nil
		}
	}
	if p, err := netip.ParsePrefix(text); err == nil {
		return value.MakeSubnet(p), nil
	}
	if a, err := netip.ParseAddr(text); err == nil {
		return value.Addr(a), nil
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return value.Int(i), nil
	}
	if u, err := strconv.ParseUint(text, 10, 64); err == nil {
		return value.Uint(u), nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return value.Double(f), nil
	}
	return value.Invalid, &vasterr.ValidationError{Msg: fmt.Sprintf("unrecognized literal %q", text)}
}

func isProtoName(s string) bool {
	switch s {
	case "tcp", "udp", "icmp":
		return true
	}
	return false
}
