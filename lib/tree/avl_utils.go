package tree

import (
	"fmt"
	"strings"

	"github.com/benz9527/xtree/lib/infra"
)

// avltree rule validation utilities.
// They never panic, a violation is reported as an error.

func comparatorOf[K infra.OrderedKey, V any](tree AVLTree[K, V]) infra.OrderedKeyComparator[K] {
	if t, ok := tree.(*avlTree[K, V]); ok && t.cmp != nil {
		return t.cmp
	}
	return infra.AscendingComparator[K]
}

// levels returns the subtree height counted in levels.
func levels[K infra.OrderedKey, V any](node AVLNode[K, V]) int64 {
	if node == nil {
		return 0
	}
	return 1 + max(levels[K, V](node.Left()), levels[K, V](node.Right()))
}

// Postorder traversal, returns the subtree levels or the first violation.
func balanceCheck[K infra.OrderedKey, V any](node AVLNode[K, V]) (int64, error) {
	if node == nil {
		return 0, nil
	}
	lh, err := balanceCheck[K, V](node.Left())
	if err != nil {
		return 0, err
	}
	rh, err := balanceCheck[K, V](node.Right())
	if err != nil {
		return 0, err
	}
	if diff := rh - lh; diff < -1 || diff > 1 {
		return 0, infra.NewErrorStackf("avltree balance violation at key %v, height diff %d", node.Key(), diff)
	} else if int64(node.Balance()) != diff {
		return 0, infra.NewErrorStackf("avltree balance factor mismatch at key %v, stored %d, actual %d",
			node.Key(), node.Balance(), diff)
	}
	return 1 + max(lh, rh), nil
}

// BalanceViolationValidate checks |height(right) - height(left)| <= 1 for
// every node and that the stored balance factors are exact.
func BalanceViolationValidate[K infra.OrderedKey, V any](tree AVLTree[K, V]) error {
	_, err := balanceCheck[K, V](tree.Root())
	return err
}

// OrderViolationValidate checks the inorder sequence is strictly ascending
// under the tree comparator and its length equals Len().
func OrderViolationValidate[K infra.OrderedKey, V any](tree AVLTree[K, V]) error {
	cmp := comparatorOf[K, V](tree)
	var (
		prev  K
		count int64
		err   error
	)
	tree.Foreach(func(idx int64, key K, _ V) bool {
		if idx > 0 && cmp(prev, key) >= 0 {
			err = infra.NewErrorStackf("avltree order violation at index %d, %v is not less than %v", idx, prev, key)
			return false
		}
		prev = key
		count++
		return true
	})
	if err != nil {
		return err
	}
	if count != tree.Len() {
		return infra.NewErrorStackf("avltree length violation, len %d, iterated %d", tree.Len(), count)
	}
	return nil
}

// HeightViolationValidate checks the tracked height against the real one.
func HeightViolationValidate[K infra.OrderedKey, V any](tree AVLTree[K, V]) error {
	if actual := levels[K, V](tree.Root()); actual != tree.Height() {
		return infra.NewErrorStackf("avltree height violation, tracked %d, actual %d", tree.Height(), actual)
	}
	return nil
}

type branch uint8

const (
	rootBranch branch = iota
	leftBranch
	rightBranch
)

/*
Render draws the tree sideways, the right subtree on top.
Each node is printed as key:balance.

	        /------ 3:+0
	|------ 2:+0
	        \------ 1:+0
*/
func Render[K infra.OrderedKey, V any](tree AVLTree[K, V]) string {
	builder := &strings.Builder{}
	renderNode[K, V](builder, tree.Root(), "", rootBranch)
	return builder.String()
}

func renderNode[K infra.OrderedKey, V any](builder *strings.Builder, node AVLNode[K, V], prefix string, br branch) {
	if node == nil {
		return
	}
	if r := node.Right(); r != nil {
		indent := "        "
		if br == leftBranch {
			indent = "|       "
		}
		renderNode[K, V](builder, r, prefix+indent, rightBranch)
	}

	builder.WriteString(prefix)
	switch br {
	case rootBranch:
		builder.WriteString("|------ ")
	case leftBranch:
		builder.WriteString("\\------ ")
	case rightBranch:
		builder.WriteString("/------ ")
	}
	_, _ = fmt.Fprintf(builder, "%v:%+d\n", node.Key(), node.Balance())

	if l := node.Left(); l != nil {
		indent := "        "
		if br == rightBranch {
			indent = "|       "
		}
		renderNode[K, V](builder, l, prefix+indent, leftBranch)
	}
}
