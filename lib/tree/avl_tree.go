package tree

import (
	"github.com/benz9527/xtree/lib/infra"
)

// References:
// https://en.wikipedia.org/wiki/AVL_tree
// Niklaus Wirth, Algorithms + Data Structures = Programs, 4.5
//
// AVL properties:
// p1. Every node keeps balance = height(right) - height(left).
// p2. After any public operation, balance is in [-1, 1] for every node.
// p3. Keys in the left subtree < node key < keys in the right subtree,
//   duplicates are never stored.
//
// Every engine below returns (new subtree root, height delta). The delta is
// 0 or 1 and tells the caller whether the subtree grew (insert) or shrank
// (remove), which decides whether the caller keeps rebalancing or stops.

type avlTree[K infra.OrderedKey, V any] struct {
	root   *avlNode[K, V]
	cmp    infra.OrderedKeyComparator[K]
	count  int64
	height int64
}

func (tree *avlTree[K, V]) Len() int64 {
	return tree.count
}

func (tree *avlTree[K, V]) Height() int64 {
	return tree.height
}

func (tree *avlTree[K, V]) Root() AVLNode[K, V] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

func (tree *avlTree[K, V]) Insert(key K, val V) bool {
	prev := tree.count
	var delta int8
	tree.root, delta = tree.insert(tree.root, key, val)
	tree.height += int64(delta)
	return tree.count > prev
}

func (tree *avlTree[K, V]) Add(key K) bool {
	var zero V
	return tree.Insert(key, zero)
}

/*
i1: Empty subtree, create a leaf, the subtree grew by 1.

i2: Duplicate key, nothing changes, the delta is 0.

i3: Descend, then fold the child's growth into the balance.
Left growth decreases the balance, right growth increases it.

i4: Balance reaches -2 or 2, rotate. The rotated subtree has the
height it had before the insert, so the delta becomes 0.

i5: Balance moved 0 -> -1/1, the subtree really grew, pass 1 upward.
Balance moved -1/1 -> 0, the growth is absorbed, pass 0 upward.
*/
func (tree *avlTree[K, V]) insert(root *avlNode[K, V], key K, val V) (*avlNode[K, V], int8) {
	if /* i1 */ root == nil {
		tree.count++
		return &avlNode[K, V]{
			key: key,
			val: val,
		}, 1
	}

	var delta int8
	res := tree.cmp(key, root.key)
	if /* i2 */ res == 0 {
		return root, 0
	} else /* i3 less */ if res < 0 {
		root.left, delta = tree.insert(root.left, key, val)
		root.balance -= delta
	} else /* i3 greater */ {
		root.right, delta = tree.insert(root.right, key, val)
		root.balance += delta
	}

	if delta == 0 {
		return root, 0
	}

	switch root.balance {
	case /* i4 */ -2:
		return rotateRight[K, V](root), 0
	case /* i4 */ 2:
		return rotateLeft[K, V](root), 0
	case /* i5 absorbed */ 0:
		return root, 0
	default:
	}
	return /* i5 grew */ root, 1
}

func (tree *avlTree[K, V]) Remove(key K) bool {
	prev := tree.count
	var delta int8
	tree.root, delta = tree.remove(tree.root, key)
	tree.height -= int64(delta)
	return tree.count < prev
}

func (tree *avlTree[K, V]) search(key K) *avlNode[K, V] {
	for aux := tree.root; aux != nil; {
		res := tree.cmp(key, aux.key)
		if res == 0 {
			return aux
		} else if res > 0 {
			aux = aux.right
		} else {
			aux = aux.left
		}
	}
	return nil
}

func (tree *avlTree[K, V]) Contains(key K) bool {
	return tree.search(key) != nil
}

func (tree *avlTree[K, V]) Get(key K) (val V, ok bool) {
	if node := tree.search(key); node != nil {
		return node.val, true
	}
	return val, false
}

func (tree *avlTree[K, V]) Min() (key K, ok bool) {
	if tree.root == nil {
		return key, false
	}
	return tree.root.minimum().key, true
}

func (tree *avlTree[K, V]) Max() (key K, ok bool) {
	if tree.root == nil {
		return key, false
	}
	return tree.root.maximum().key, true
}

func (tree *avlTree[K, V]) Iter() AVLIterator[K, V] {
	return newAVLIterator[K, V](tree.root, tree.height)
}

// Inorder traversal to implement the DFS.
func (tree *avlTree[K, V]) Foreach(action func(idx int64, key K, val V) bool) {
	if action == nil {
		return
	}
	iter := newAVLIterator[K, V](tree.root, tree.height)
	for idx := int64(0); iter.HasNext(); idx++ {
		key, val, _ := iter.Next()
		if !action(idx, key, val) {
			return
		}
	}
}

func (tree *avlTree[K, V]) Keys() []K {
	keys := make([]K, 0, tree.count)
	tree.Foreach(func(_ int64, key K, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Release unlinks every node iteratively, the tree is empty afterward.
func (tree *avlTree[K, V]) Release() {
	aux := tree.root
	tree.root = nil
	tree.count = 0
	if aux == nil {
		tree.height = 0
		return
	}

	stack := make([]*avlNode[K, V], 0, tree.height)
	tree.height = 0
	defer func() {
		clear(stack)
	}()

	stack = append(stack, aux)
	for size := len(stack); size > 0; size = len(stack) {
		aux = stack[size-1]
		stack = stack[:size-1]
		if aux.left != nil {
			stack = append(stack, aux.left)
		}
		if aux.right != nil {
			stack = append(stack, aux.right)
		}
		aux.left, aux.right = nil, nil
	}
}

type AVLTreeOpt[K infra.OrderedKey, V any] func(*avlTree[K, V])

func WithAVLTreeDesc[K infra.OrderedKey, V any]() AVLTreeOpt[K, V] {
	return func(tree *avlTree[K, V]) {
		tree.cmp = infra.DescendingComparator[K]
	}
}

// WithAVLTreeComparator replaces the natural order of K.
// cmp must be a strict total order.
func WithAVLTreeComparator[K infra.OrderedKey, V any](cmp infra.OrderedKeyComparator[K]) AVLTreeOpt[K, V] {
	return func(tree *avlTree[K, V]) {
		if cmp != nil {
			tree.cmp = cmp
		}
	}
}

func NewAVLTree[K infra.OrderedKey, V any](opts ...AVLTreeOpt[K, V]) AVLTree[K, V] {
	tree := &avlTree[K, V]{
		cmp: infra.AscendingComparator[K],
	}

	for _, o := range opts {
		if o != nil {
			o(tree)
		}
	}
	return tree
}

func NewAVLSet[K infra.OrderedKey](opts ...AVLTreeOpt[K, struct{}]) AVLTree[K, struct{}] {
	return NewAVLTree[K, struct{}](opts...)
}
