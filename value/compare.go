package value

// Equal reports whether a and b are equal. Per spec §4.3, equality is
// defined only within compatible type pairs; across kinds it is always
// false (never an error — callers needing to reject the comparison
// statically do so in the predicate engine's validation pass, spec §4.4).
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNone, KindInvalid:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindInt:
		return a.Int == b.Int
	case KindUint:
		return a.Uint == b.Uint
	case KindDouble:
		return a.Double == b.Double
	case KindDuration:
		return a.Duration == b.Duration
	case KindTimePoint:
		return a.Time.Equal(b.Time)
	case KindString:
		return a.Str == b.Str
	case KindPattern:
		return a.Pattern == b.Pattern || (a.Pattern != nil && b.Pattern != nil && a.Pattern.String() == b.Pattern.String())
	case KindAddress:
		return a.Address == b.Address
	case KindSubnet:
		return a.Subnet == b.Subnet
	case KindPort:
		return a.Port == b.Port
	case KindVector:
		av, bv := a.VectorElems(), b.VectorElems()
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case KindSet:
		as, bs := a.SetElems(), b.SetElems()
		if as == nil || bs == nil {
			return as == nil && bs == nil
		}
		return as.Equal(bs)
	case KindTable:
		at, bt := a.TableElems(), b.TableElems()
		if len(at) != len(bt) {
			return false
		}
		for k, v := range at {
			bv, ok := bt[k]
			if !ok || !Equal(v, bv) {
				return false
			}
		}
		return true
	case KindRecord:
		ar, br := a.RecordFields(), b.RecordFields()
		if len(ar) != len(br) {
			return false
		}
		for k, v := range ar {
			bv, ok := br[k]
			if !ok || !Equal(v, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Compare orders a and b within a compatible type pair: negative if a<b,
// zero if equal, positive if a>b. ok is false when the kinds are
// incompatible or the kind is not ordered here: only int, uint, double,
// duration, time, string, bool, and port (by number alone) compare.
func Compare(a, b Value) (n int, ok bool) {
	if a.Kind != b.Kind {
		return 0, false
	}
	switch a.Kind {
	case KindInt:
		return cmpOrdered(a.Int, b.Int), true
	case KindUint:
		return cmpOrdered(a.Uint, b.Uint), true
	case KindDouble:
		return cmpOrdered(a.Double, b.Double), true
	case KindDuration:
		return cmpOrdered(a.Duration, b.Duration), true
	case KindTimePoint:
		switch {
		case a.Time.Before(b.Time):
			return -1, true
		case a.Time.After(b.Time):
			return 1, true
		default:
			return 0, true
		}
	case KindString:
		return cmpOrdered(a.Str, b.Str), true
	case KindBool:
		return cmpOrdered(boolInt(a.Bool), boolInt(b.Bool)), true
	case KindPort:
		return cmpOrdered(a.Port.Number, b.Port.Number), true
	default:
		return 0, false
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type ordered interface {
	~int | ~int64 | ~uint64 | ~float64 | ~string | ~uint16
}

func cmpOrdered[T ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
