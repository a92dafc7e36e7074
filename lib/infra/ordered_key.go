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
type Float interface {
	~float32 | ~float64
}

// OrderedKey
// byte => ~uint8
type OrderedKey interface {
	Integer | Float | ~string
}

// Comparator is a strict weak order over T.
// Assume i is the new key.
//  1. i == j (return 0)
//  2. i > j (return > 0), turn to right part.
//  3. i < j (return < 0), turn to left part.
type Comparator[T any] func(i, j T) int64

// OrderedKeyComparator keeps the historical name used by the ordered
// containers for built-in keys.
type OrderedKeyComparator[K OrderedKey] Comparator[K]

// OrderedKeyCompare is the ascending comparator of the built-in ordered keys.
// NaN compares equal to everything, callers storing floats have to filter it.
func OrderedKeyCompare[K OrderedKey](i, j K) int64 {
	if i == j {
		return 0
	} else if i < j {
		return -1
	}
	if i > j {
		return 1
	}
	return 0
}

// OrderedKeyDescCompare reverses OrderedKeyCompare.
func OrderedKeyDescCompare[K OrderedKey](i, j K) int64 {
	return OrderedKeyCompare[K](j, i)
}

// Reverse flips the order of an arbitrary comparator.
func (cmp Comparator[T]) Reverse() Comparator[T] {
	return func(i, j T) int64 {
		return cmp(j, i)
	}
}

// Less adapts the comparator into a less function, i.e. for slices.SortFunc users.
func (cmp Comparator[T]) Less(i, j T) bool {
	return cmp(i, j) < 0
}
