package tree

import "github.com/benz9527/xtree/lib/infra"

var _ AVLIterator[int, struct{}] = (*avlIterator[int, struct{}])(nil)

// avlIterator keeps the left spine ancestors of the next node.
// The top of the stack is always the next node in order.
type avlIterator[K infra.OrderedKey, V any] struct {
	stack []*avlNode[K, V]
}

func (iter *avlIterator[K, V]) pushLeftSpine(aux *avlNode[K, V]) {
	for ; aux != nil; aux = aux.left {
		iter.stack = append(iter.stack, aux)
	}
}

func (iter *avlIterator[K, V]) HasNext() bool {
	return len(iter.stack) > 0
}

func (iter *avlIterator[K, V]) Next() (key K, val V, ok bool) {
	size := len(iter.stack)
	if size <= 0 {
		return key, val, false
	}
	aux := iter.stack[size-1]
	iter.stack[size-1] = nil
	iter.stack = iter.stack[:size-1]
	iter.pushLeftSpine(aux.right)
	return aux.key, aux.val, true
}

func newAVLIterator[K infra.OrderedKey, V any](root *avlNode[K, V], height int64) *avlIterator[K, V] {
	iter := &avlIterator[K, V]{
		stack: make([]*avlNode[K, V], 0, height),
	}
	iter.pushLeftSpine(root)
	return iter
}
