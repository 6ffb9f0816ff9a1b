package infra

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is a constraint that permits any unsigned integer type.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

type Integer interface {
	Signed | Unsigned
}

// Float keys must not carry NaN, it breaks the strict weak ordering.
type Float interface {
	~float32 | ~float64
}

// OrderedKey
// byte => ~uint8
type OrderedKey interface {
	Integer | Float | ~string
}

// KeyLess reports whether i is ordered before j.
// It has to be a strict weak ordering:
//  1. irreflexive, less(i, i) is false.
//  2. asymmetric, less(i, j) implies !less(j, i).
//  3. transitive, less(i, j) && less(j, k) implies less(i, k).
//
// Two keys are equivalent if neither is less than the other.
type KeyLess[K any] func(i, j K) bool

func NaturalLess[K OrderedKey](i, j K) bool {
	return i < j
}

// Reverse turns the ascending order into the descending order.
func (less KeyLess[K]) Reverse() KeyLess[K] {
	return func(i, j K) bool {
		return less(j, i)
	}
}

func (less KeyLess[K]) Equivalent(i, j K) bool {
	return !less(i, j) && !less(j, i)
}

// Compare
// Assume i is the new key.
//  1. i equivalent to j, return 0.
//  2. i after j, return 1, turn to right part.
//  3. i before j, return -1, turn to left part.
func (less KeyLess[K]) Compare(i, j K) int64 {
	if less(i, j) {
		return -1
	} else if less(j, i) {
		return 1
	}
	return 0
}
