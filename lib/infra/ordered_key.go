package infra

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is a constraint that permits any unsigned integer type.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Integer is a constraint that permits any integer type.
type Integer interface {
	Signed | Unsigned
}

// Float is a constraint that permits any floating-point type.
// NaN is a member of the type set but not of the total order,
// so the containers reject it (see IsNaN).
type Float interface {
	~float32 | ~float64
}

// OrderedKey
// byte => ~uint8
// Complex numbers are excluded, they have no total order.
type OrderedKey interface {
	Integer | Float | ~string
}

// OrderedKeyComparator
// Assume i is the new key.
//  1. i == j (i-j == 0, return 0)
//  2. i > j (i-j > 0, return 1), turn to right part.
//  3. i < j (i-j < 0, return -1), turn to left part.
type OrderedKeyComparator[K OrderedKey] func(i, j K) int64

// IsNaN reports whether the key is a floating-point NaN.
// Only NaN is unequal to itself.
func IsNaN[K OrderedKey](key K) bool {
	return key != key
}

// AscKeyComparator orders the keys from the smallest to the largest.
func AscKeyComparator[K OrderedKey](i, j K) int64 {
	if i == j {
		return 0
	} else if i < j {
		return -1
	}
	return 1
}

// DescKeyComparator orders the keys from the largest to the smallest.
func DescKeyComparator[K OrderedKey](i, j K) int64 {
	return -AscKeyComparator[K](i, j)
}
