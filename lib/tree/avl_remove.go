package tree

import (
	"fmt"

	"github.com/benz9527/xtree/lib/infra"
)

/*
r1: Empty subtree, the key is absent. Nothing changes, the delta is 0.

r2: Found node X has at most one child. Replace X by the child (or nil),
the subtree shrank by 1.

r3: Found node X has two children. Borrow the heir from the heavier side
to reduce the rebalancing work.
(1) X is right heavy or balanced, borrow the succ (least of right).
(2) X is left heavy, borrow the pred (greatest of left).
Only the key & value are swapped into X, then the heir's shrink is
folded into X's balance like r4.

	  |                  |
	  X                  S
	 / \   borrow(S)    / \
	L   R  ========>   L   R'
	   /
	  S

r4: Descend, then fold the child's shrink into the balance.
Left shrink increases the balance, right shrink decreases it.
*/
func (tree *avlTree[K, V]) remove(root *avlNode[K, V], key K) (*avlNode[K, V], int8) {
	if /* r1 */ root == nil {
		return nil, 0
	}

	var delta int8
	res := tree.cmp(key, root.key)
	if /* r4 less */ res < 0 {
		root.left, delta = tree.remove(root.left, key)
		root.balance += delta
	} else /* r4 greater */ if res > 0 {
		root.right, delta = tree.remove(root.right, key)
		root.balance -= delta
	} else {
		tree.count--
		if /* r2 */ root.left == nil || root.right == nil {
			child := root.left
			if child == nil {
				child = root.right
			}
			root.left, root.right = nil, nil
			return child, 1
		}

		var heir *avlNode[K, V]
		if /* r3 (1) */ root.balance >= 0 {
			root.right, heir, delta = removeLeast[K, V](root.right)
			root.balance -= delta
		} else /* r3 (2) */ {
			root.left, heir, delta = removeGreatest[K, V](root.left)
			root.balance += delta
		}
		root.key, root.val = heir.key, heir.val
	}

	if delta == 0 {
		return root, 0
	}
	return rebalanceShrunk[K, V](root)
}

// removeLeast detaches the leftmost node of the subtree.
func removeLeast[K infra.OrderedKey, V any](root *avlNode[K, V]) (*avlNode[K, V], *avlNode[K, V], int8) {
	if root.left == nil {
		right := root.right
		root.right = nil
		return right, root, 1
	}

	var (
		least *avlNode[K, V]
		delta int8
	)
	root.left, least, delta = removeLeast[K, V](root.left)
	root.balance += delta
	if delta != 0 {
		root, delta = rebalanceShrunk[K, V](root)
	}
	return root, least, delta
}

// removeGreatest detaches the rightmost node of the subtree.
func removeGreatest[K infra.OrderedKey, V any](root *avlNode[K, V]) (*avlNode[K, V], *avlNode[K, V], int8) {
	if root.right == nil {
		left := root.left
		root.left = nil
		return left, root, 1
	}

	var (
		greatest *avlNode[K, V]
		delta    int8
	)
	root.right, greatest, delta = removeGreatest[K, V](root.right)
	root.balance -= delta
	if delta != 0 {
		root, delta = rebalanceShrunk[K, V](root)
	}
	return root, greatest, delta
}

/*
One of root's subtrees shrank by 1 and root.balance already holds the
adjusted value.

rm1: Balance reaches -2 or 2, rotate toward the lighter side.
The pre-rotation balance of the heavy child decides the delta:
child balance 0 keeps the subtree height (delta 0), any other value
means the subtree lost one level (delta 1).

	     X(+2)                    S(-1)
	    / \                       / \
	   L   S(0)    ========>  (+1)X  Sd
	      / \                   / \
	    Sc   Sd                L   Sc

rm2: Balance became -1/1 from 0, the sibling keeps the height, delta 0.

rm3: Balance became 0 from -1/1, the subtree lost one level, delta 1.
*/
func rebalanceShrunk[K infra.OrderedKey, V any](root *avlNode[K, V]) (*avlNode[K, V], int8) {
	switch root.balance {
	case /* rm1 */ 2:
		if root.right == nil {
			// impossible run to here
			panic( /* debug assertion */ "[avltree] right heavy node without right child")
		}
		delta := int8(1)
		if root.right.balance == 0 {
			delta = 0
		}
		return rotateLeft[K, V](root), delta
	case /* rm1 */ -2:
		if root.left == nil {
			// impossible run to here
			panic( /* debug assertion */ "[avltree] left heavy node without left child")
		}
		delta := int8(1)
		if root.left.balance == 0 {
			delta = 0
		}
		return rotateRight[K, V](root), delta
	case /* rm2 */ 1, -1:
		return root, 0
	case /* rm3 */ 0:
		return root, 1
	default:
	}
	// impossible run to here
	panic( /* debug assertion */ fmt.Sprintf("[avltree] node balance out of range: %d", root.balance))
}
