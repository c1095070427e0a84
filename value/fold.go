package value

import (
	"time"

	"github.com/sangminoh/vast/vasterr"
)

// FoldUnary implements the constant folder spec §9 Open Question #3 calls
// for: the source left unary/arithmetic folding for expressions
// unimplemented. Every unsupported operator/kind pair yields a
// ValidationError instead of the precondition-violation/abort the source
// would have hit had it tried.
func FoldUnary(op string, v Value) (Value, error) {
	switch op {
	case "-":
		switch v.Kind {
		case KindInt:
			return Int(-v.Int), nil
		case KindDouble:
			return Double(-v.Double), nil
		case KindDuration:
			return Dur(-v.Duration), nil
		}
	case "!":
		if v.Kind == KindBool {
			return Bool(!v.Bool), nil
		}
	case "+":
		switch v.Kind {
		case KindInt, KindDouble, KindDuration, KindUint:
			return v, nil
		}
	}
	return Invalid, &vasterr.ValidationError{Msg: "unary " + op + " not defined for " + v.Kind.String()}
}

// FoldBinary folds a binary arithmetic expression over two literal values.
// It implements the full numeric lattice the source's arithmetic folder
// left unimplemented (spec §9 Open Question #3): int/uint/double/duration
// combine pairwise per normal promotion rules (int+double -> double,
// duration arithmetic stays duration), everything else is a validation
// error.
func FoldBinary(op string, l, r Value) (Value, error) {
	switch {
	case l.Kind == KindInt && r.Kind == KindInt:
		return foldIntInt(op, l.Int, r.Int)
	case l.Kind == KindUint && r.Kind == KindUint:
		return foldUintUint(op, l.Uint, r.Uint)
	case isNumeric(l.Kind) && isNumeric(r.Kind):
		return foldDoubleDouble(op, asDouble(l), asDouble(r))
	case l.Kind == KindDuration && r.Kind == KindDuration:
		return foldDurationDuration(op, l.Duration, r.Duration)
	case l.Kind == KindTimePoint && r.Kind == KindDuration && op == "+":
		return Time(l.Time.Add(r.Duration)), nil
	case l.Kind == KindTimePoint && r.Kind == KindDuration && op == "-":
		return Time(l.Time.Add(-r.Duration)), nil
	case l.Kind == KindString && r.Kind == KindString && op == "+":
		return String(l.Str + r.Str), nil
	}
	return Invalid, &vasterr.ValidationError{Msg: "binary " + op + " not defined for " + l.Kind.String() + " and " + r.Kind.String()}
}

func isNumeric(k Kind) bool {
	return k == KindInt || k == KindUint || k == KindDouble
}

func asDouble(v Value) float64 {
	switch v.Kind {
	case KindInt:
		return float64(v.Int)
	case KindUint:
		return float64(v.Uint)
	case KindDouble:
		return v.Double
	}
	return 0
}

func foldIntInt(op string, a, b int64) (Value, error) {
	switch op {
	case "+":
		return Int(a + b), nil
	case "-":
		return Int(a - b), nil
	case "*":
		return Int(a * b), nil
	case "/":
		if b == 0 {
			return Invalid, &vasterr.ValidationError{Msg: "division by zero"}
		}
		return Int(a / b), nil
	case "%":
		if b == 0 {
			return Invalid, &vasterr.ValidationError{Msg: "modulo by zero"}
		}
		return Int(a % b), nil
	}
	return Invalid, &vasterr.ValidationError{Msg: "unsupported int operator " + op}
}

func foldUintUint(op string, a, b uint64) (Value, error) {
	switch op {
	case "+":
		return Uint(a + b), nil
	case "-":
		return Uint(a - b), nil
	case "*":
		return Uint(a * b), nil
	case "/":
		if b == 0 {
			return Invalid, &vasterr.ValidationError{Msg: "division by zero"}
		}
		return Uint(a / b), nil
	case "%":
		if b == 0 {
			return Invalid, &vasterr.ValidationError{Msg: "modulo by zero"}
		}
		return Uint(a % b), nil
	}
	return Invalid, &vasterr.ValidationError{Msg: "unsupported uint operator " + op}
}

func foldDoubleDouble(op string, a, b float64) (Value, error) {
	switch op {
	case "+":
		return Double(a + b), nil
	case "-":
		return Double(a - b), nil
	case "*":
		return Double(a * b), nil
	case "/":
		return Double(a / b), nil
	}
	return Invalid, &vasterr.ValidationError{Msg: "unsupported double operator " + op}
}

func foldDurationDuration(op string, a, b time.Duration) (Value, error) {
	switch op {
	case "+":
		return Dur(a + b), nil
	case "-":
		return Dur(a - b), nil
	}
	return Invalid, &vasterr.ValidationError{Msg: "unsupported duration operator " + op}
}
