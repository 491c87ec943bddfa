package infra

import "cmp"

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

type Integer interface {
	Signed | Unsigned
}

type Float interface {
	~float32 | ~float64
}

// OrderedKey
// byte => ~uint8
// Complex numbers are excluded, they have no total order.
// NaN breaks the strict total order of floats, callers must not store it.
type OrderedKey interface {
	Integer | Float | ~string
}

// OrderedKeyComparator
// Assume i is the new key.
//  1. i == j (return 0)
//  2. i > j (return 1), turn to right part.
//  3. i < j (return -1), turn to left part.
//
// The comparator must be a strict total order, otherwise the structure
// built on top of it is undefined.
type OrderedKeyComparator[K OrderedKey] func(i, j K) int64

func AscendingComparator[K OrderedKey](i, j K) int64 {
	return int64(cmp.Compare(i, j))
}

func DescendingComparator[K OrderedKey](i, j K) int64 {
	return int64(cmp.Compare(j, i))
}
