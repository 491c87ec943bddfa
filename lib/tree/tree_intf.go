package tree

import "github.com/benz9527/xtree/lib/infra"

// AVLNode is the read-only view of a tree node.
// Balance is height(right) - height(left), in [-1, 1] between operations.
type AVLNode[K infra.OrderedKey, V any] interface {
	Key() K
	Val() V
	Balance() int8
	Left() AVLNode[K, V]
	Right() AVLNode[K, V]
}

// AVLTree is an ordered map (or set, with V = struct{}) kept height
// balanced on every insert and remove.
// It is not thread safe. Guard the whole tree by a single mutex if it
// has to be shared between goroutines.
type AVLTree[K infra.OrderedKey, V any] interface {
	Len() int64
	// Height returns the number of levels, 0 for an empty tree.
	Height() int64
	Root() AVLNode[K, V]
	// Insert ignores a duplicate key, the stored value is kept.
	Insert(key K, val V) bool
	Add(key K) bool
	// Remove of an absent key is a no-op.
	Remove(key K) bool
	Contains(key K) bool
	Get(key K) (V, bool)
	Min() (K, bool)
	Max() (K, bool)
	// Iter creates a new iterator. Mutating the tree during the iteration
	// is undefined behavior.
	Iter() AVLIterator[K, V]
	Foreach(action func(idx int64, key K, val V) bool)
	Keys() []K
	Release()
}

type AVLIterator[K infra.OrderedKey, V any] interface {
	HasNext() bool
	Next() (key K, val V, ok bool)
}
