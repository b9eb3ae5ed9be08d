package value

import "fmt"

// NotComparableError is returned by Compare when two values cannot be
// ordered against each other: anything outside "both numeric" or "both
// string" pairs, per spec §3 and the open question resolved in §9 (mixed
// numeric kinds are permitted; every other cross-kind pairing is an error).
type NotComparableError struct {
	Left, Right Kind
}

func (e *NotComparableError) Error() string {
	return fmt.Sprintf("value: cannot compare %s with %s", e.Left, e.Right)
}

func isNumeric(k Kind) bool {
	return k == Int64 || k == Uint64 || k == Float64
}

// asFloat64 promotes a numeric Value to float64 for cross-kind comparison.
// Uint64 values above 2^53 lose precision under this promotion; the engine
// accepts that in exchange for a single comparison code path, matching the
// "numeric pairs are comparable" rule from spec §3 literally rather than
// special-casing each of the nine numeric-kind combinations.
func asFloat64(v Value) float64 {
	switch v.kind {
	case Int64:
		return float64(v.i)
	case Uint64:
		return float64(v.u)
	case Float64:
		return v.f
	default:
		return 0
	}
}

// Compare orders a against b, returning a negative number if a < b, zero if
// a == b, and a positive number if a > b. Ordering is defined only between
// two numeric values (Int64/Uint64/Float64 in any combination) or two
// strings; any other pairing returns a *NotComparableError.
func Compare(a, b Value) (int, error) {
	if isNumeric(a.kind) && isNumeric(b.kind) {
		fa, fb := asFloat64(a), asFloat64(b)
		switch {
		case fa < fb:
			return -1, nil
		case fa > fb:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if a.kind == String && b.kind == String {
		switch {
		case a.s < b.s:
			return -1, nil
		case a.s > b.s:
			return 1, nil
		default:
			return 0, nil
		}
	}
	return 0, &NotComparableError{Left: a.kind, Right: b.kind}
}
