package tree

import (
	"fmt"

	"github.com/benz9527/xtree/lib/infra"
)

type avlNode[K infra.OrderedKey, V any] struct {
	left    *avlNode[K, V]
	right   *avlNode[K, V]
	key     K
	val     V
	balance int8
}

func (node *avlNode[K, V]) Key() K {
	return node.key
}

func (node *avlNode[K, V]) Val() V {
	return node.val
}

func (node *avlNode[K, V]) Balance() int8 {
	return node.balance
}

func (node *avlNode[K, V]) Left() AVLNode[K, V] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *avlNode[K, V]) Right() AVLNode[K, V] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

func (node *avlNode[K, V]) minimum() *avlNode[K, V] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *avlNode[K, V]) maximum() *avlNode[K, V] {
	aux := node
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}

// (root balance, child balance) before a rotation.
type balancePair [2]int8

/*
Heavy child opposite to the root is rotated first (RL), so the pairs
below are the only legal inputs.

	  |                         |
	  X                         S
	 / \     rotateLeft(X)     / \
	L   S    ============>    X   Sd
	   / \                   / \
	 Sc   Sd                L   Sc
*/
func rotateLeft[K infra.OrderedKey, V any](x *avlNode[K, V]) *avlNode[K, V] {
	if x == nil || x.right == nil {
		// impossible run to here
		panic( /* debug assertion */ "[avltree] left rotate node x is nil or x.right is nil")
	}

	s := x.right
	if /* RL */ s.balance < 0 {
		s = rotateRight[K, V](s)
	}

	switch pair := (balancePair{x.balance, s.balance}); pair {
	case balancePair{2, 1}:
		x.balance, s.balance = 0, 0
	case balancePair{2, 0}:
		x.balance, s.balance = 1, -1
	case balancePair{1, 1}:
		x.balance, s.balance = -1, -1
	case balancePair{1, 0}:
		x.balance, s.balance = 0, -1
	default:
		// impossible run to here
		panic( /* debug assertion */ fmt.Sprintf("[avltree] left rotate with illegal balances %v", pair))
	}

	x.right, s.left = s.left, x
	return s
}

/*
Mirror of rotateLeft (LR pre-rotation).

	    |                         |
	    X                         S
	   / \     rotateRight(X)    / \
	  S   R    ============>   Sd   X
	 / \                           / \
	Sd  Sc                        Sc  R
*/
func rotateRight[K infra.OrderedKey, V any](x *avlNode[K, V]) *avlNode[K, V] {
	if x == nil || x.left == nil {
		// impossible run to here
		panic( /* debug assertion */ "[avltree] right rotate node x is nil or x.left is nil")
	}

	s := x.left
	if /* LR */ s.balance > 0 {
		s = rotateLeft[K, V](s)
	}

	switch pair := (balancePair{x.balance, s.balance}); pair {
	case balancePair{-2, -1}:
		x.balance, s.balance = 0, 0
	case balancePair{-2, 0}:
		x.balance, s.balance = -1, 1
	case balancePair{-1, -1}:
		x.balance, s.balance = 1, 1
	case balancePair{-1, 0}:
		x.balance, s.balance = 0, 1
	default:
		// impossible run to here
		panic( /* debug assertion */ fmt.Sprintf("[avltree] right rotate with illegal balances %v", pair))
	}

	x.left, s.right = s.right, x
	return s
}
