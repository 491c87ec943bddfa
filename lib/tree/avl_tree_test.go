package tree

import (
	randv2 "math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benz9527/xtree/lib/infra"
)

func newIntTree() *avlTree[int, int] {
	return &avlTree[int, int]{
		cmp: infra.AscendingComparator[int],
	}
}

func requireAVLRules[K infra.OrderedKey, V any](t *testing.T, tree AVLTree[K, V]) {
	t.Helper()
	require.NoError(t, BalanceViolationValidate[K, V](tree))
	require.NoError(t, OrderViolationValidate[K, V](tree))
	require.NoError(t, HeightViolationValidate[K, V](tree))
}

func insertAll(tree *avlTree[int, int], keys ...int) {
	for _, key := range keys {
		tree.Insert(key, key)
	}
}

func TestAVLInsertEngineDelta(t *testing.T) {
	type checkData struct {
		key     int
		delta   int8
		balance int8
	}
	testcases := []struct {
		name     string
		existing int
		insert   int
		expected checkData
		count    int64
	}{
		{"add right", 1, 2, checkData{1, 1, 1}, 2},
		{"add left", 1, 0, checkData{1, 1, -1}, 2},
		{"add duplicate", 1, 1, checkData{1, 0, 0}, 1},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			tree := newIntTree()
			tree.root, _ = tree.insert(nil, tc.existing, tc.existing)
			root, delta := tree.insert(tree.root, tc.insert, tc.insert)
			require.Equal(tt, tc.expected.key, root.key)
			require.Equal(tt, tc.expected.delta, delta)
			require.Equal(tt, tc.expected.balance, root.balance)
			require.Equal(tt, tc.count, tree.count)
		})
	}
}

func TestAVLInsertLeftRotation(t *testing.T) {
	tree := newIntTree()
	insertAll(tree, 1, 2)
	require.Equal(t, int64(2), tree.Height())

	root, delta := tree.insert(tree.root, 3, 3)
	tree.root = root
	require.Equal(t, int8(0), delta)
	require.Equal(t, 2, root.key)
	require.Equal(t, int8(0), root.balance)
	require.Equal(t, 1, root.left.key)
	require.Equal(t, 3, root.right.key)
}

func TestAVLInsertRightRotation(t *testing.T) {
	tree := newIntTree()
	insertAll(tree, 3, 2, 1)
	require.Equal(t, 2, tree.root.key)
	require.Equal(t, int8(0), tree.root.balance)
	require.Equal(t, 1, tree.root.left.key)
	require.Equal(t, 3, tree.root.right.key)
	require.Equal(t, int64(2), tree.Height())
	requireAVLRules[int, int](t, tree)
}

/*
	      5                 2
	     / \               / \
	    2   7     =>      1   5
	   / \               /   / \
	  1   3             0   3   7
	 /
	0
*/
func TestAVLInsertCascadeRotation(t *testing.T) {
	tree := newIntTree()
	insertAll(tree, 5, 2, 7, 1, 3)
	require.Equal(t, 5, tree.root.key)
	require.Equal(t, int8(-1), tree.root.balance)

	tree.Insert(0, 0)
	require.NotEqual(t, 5, tree.root.key)
	require.Equal(t, 2, tree.root.key)
	require.Equal(t, int8(0), tree.root.balance)
	require.Equal(t, 1, tree.root.left.key)
	require.Equal(t, int8(-1), tree.root.left.balance)
	require.Equal(t, 5, tree.root.right.key)
	require.Equal(t, int8(0), tree.root.right.balance)
	require.Equal(t, 3, tree.root.right.left.key)
	require.Equal(t, int64(3), tree.Height())
	requireAVLRules[int, int](t, tree)
}

/*
	      5                  3
	     / \                / \
	    2   7     =>       2   5
	   / \                /   / \
	  1   3              1   4   7
	       \
	        4
*/
func TestAVLInsertDoubleRotation(t *testing.T) {
	tree := newIntTree()
	insertAll(tree, 5, 2, 7, 1, 3, 4)
	require.Equal(t, 3, tree.root.key)
	require.Equal(t, int8(0), tree.root.balance)
	require.Equal(t, 2, tree.root.left.key)
	require.Equal(t, int8(-1), tree.root.left.balance)
	require.Equal(t, 5, tree.root.right.key)
	require.Equal(t, int8(0), tree.root.right.balance)
	require.Equal(t, 4, tree.root.right.left.key)
	require.Equal(t, 7, tree.root.right.right.key)
	requireAVLRules[int, int](t, tree)
}

func TestAVLInsertAscendingComplete(t *testing.T) {
	tree := newIntTree()
	for i := 1; i <= 15; i++ {
		require.True(t, tree.Insert(i, i))
		requireAVLRules[int, int](t, tree)
	}
	require.Equal(t, 8, tree.root.key)
	require.Equal(t, int8(0), tree.root.balance)
	require.Equal(t, int64(15), tree.Len())
	require.Equal(t, int64(4), tree.Height())

	// Perfectly complete, every node is balanced.
	iter := []*avlNode[int, int]{tree.root}
	for len(iter) > 0 {
		node := iter[0]
		iter = iter[1:]
		require.Equal(t, int8(0), node.balance, "key %d", node.key)
		if node.left != nil {
			iter = append(iter, node.left, node.right)
		}
	}
}

func TestAVLTreeEmpty(t *testing.T) {
	tree := NewAVLTree[int, string]()
	require.Nil(t, tree.Root())
	require.Equal(t, int64(0), tree.Len())
	require.Equal(t, int64(0), tree.Height())
	require.False(t, tree.Contains(1))
	_, ok := tree.Get(1)
	require.False(t, ok)
	_, ok = tree.Min()
	require.False(t, ok)
	_, ok = tree.Max()
	require.False(t, ok)
	require.Empty(t, tree.Keys())
	require.False(t, tree.Remove(1))
	require.Equal(t, int64(0), tree.Height())
	requireAVLRules[int, string](t, tree)
}

func TestAVLTreeDuplicateIgnored(t *testing.T) {
	tree := NewAVLTree[int, string]()
	require.True(t, tree.Insert(1, "first"))
	require.True(t, tree.Insert(8, "eight"))
	require.True(t, tree.Insert(2, "two"))
	height, keys := tree.Height(), tree.Keys()

	require.False(t, tree.Insert(1, "second"))
	require.Equal(t, int64(3), tree.Len())
	require.Equal(t, height, tree.Height())
	require.Equal(t, keys, tree.Keys())
	val, ok := tree.Get(1)
	require.True(t, ok)
	require.Equal(t, "first", val)
	requireAVLRules[int, string](t, tree)
}

func TestAVLTreeSingleNodeDuplicate(t *testing.T) {
	tree := newIntTree()
	tree.Insert(1, 1)
	require.True(t, tree.Contains(1))
	tree.Insert(1, 1)
	require.Equal(t, int64(1), tree.Height())
	require.Nil(t, tree.root.left)
	require.Nil(t, tree.root.right)
}

func TestAVLTreeContains(t *testing.T) {
	tree := NewAVLSet[int]()
	for _, key := range []int{8, 4, 10, 12, 16} {
		require.True(t, tree.Add(key))
	}
	for _, key := range []int{8, 4, 10, 12, 16} {
		require.True(t, tree.Contains(key))
	}
	for _, key := range []int{9, 0, 20, 118, 1} {
		require.False(t, tree.Contains(key))
	}
	requireAVLRules[int, struct{}](t, tree)
}

func TestAVLTreeGetMinMax(t *testing.T) {
	tree := NewAVLTree[string, int]()
	for i, key := range []string{"m", "c", "x", "a", "e", "z"} {
		tree.Insert(key, i)
	}
	val, ok := tree.Get("x")
	require.True(t, ok)
	require.Equal(t, 2, val)
	_, ok = tree.Get("b")
	require.False(t, ok)

	_min, ok := tree.Min()
	require.True(t, ok)
	require.Equal(t, "a", _min)
	_max, ok := tree.Max()
	require.True(t, ok)
	require.Equal(t, "z", _max)
	requireAVLRules[string, int](t, tree)
}

func TestAVLTreeDesc(t *testing.T) {
	tree := NewAVLTree[int, int](WithAVLTreeDesc[int, int]())
	for i := 0; i < 32; i++ {
		tree.Insert(i, i)
		requireAVLRules[int, int](t, tree)
	}
	keys := tree.Keys()
	require.True(t, sort.SliceIsSorted(keys, func(i, j int) bool { return keys[i] > keys[j] }))
	_min, _ := tree.Min()
	require.Equal(t, 31, _min)

	for i := 0; i < 32; i += 2 {
		require.True(t, tree.Remove(i))
		requireAVLRules[int, int](t, tree)
	}
	require.Equal(t, int64(16), tree.Len())
}

func TestAVLTreeComparator(t *testing.T) {
	// Order by absolute value, ties broken by sign.
	byAbs := func(i, j int) int64 {
		ai, aj := i, j
		if ai < 0 {
			ai = -ai
		}
		if aj < 0 {
			aj = -aj
		}
		if ai != aj {
			return infra.AscendingComparator(ai, aj)
		}
		return infra.AscendingComparator(i, j)
	}
	tree := NewAVLSet[int](WithAVLTreeComparator[int, struct{}](byAbs), nil)
	for _, key := range []int{-3, 2, -1, 5, 4, -4} {
		tree.Add(key)
	}
	require.Equal(t, []int{-1, 2, -3, -4, 4, 5}, tree.Keys())
	requireAVLRules[int, struct{}](t, tree)

	// nil comparator keeps the natural order.
	natural := NewAVLSet[int](WithAVLTreeComparator[int, struct{}](nil))
	natural.Add(2)
	natural.Add(-3)
	require.Equal(t, []int{-3, 2}, natural.Keys())
}

func TestAVLTreeRelease(t *testing.T) {
	tree := newIntTree()
	for i := 0; i < 100; i++ {
		tree.Insert(i, i)
	}
	root := tree.root
	tree.Release()
	require.Nil(t, tree.Root())
	require.Nil(t, root.left)
	require.Nil(t, root.right)
	require.Equal(t, int64(0), tree.Len())
	require.Equal(t, int64(0), tree.Height())
	require.False(t, tree.Contains(50))

	tree.Insert(1, 1)
	require.Equal(t, int64(1), tree.Height())
	requireAVLRules[int, int](t, tree)

	empty := newIntTree()
	empty.Release()
	require.Equal(t, int64(0), empty.Len())
}

func avlRandomInsertAndRemoveRunCore(t *testing.T, total int, seed uint64) {
	rng := randv2.New(randv2.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	tree := newIntTree()

	keys := rng.Perm(total)
	for i, key := range keys {
		require.True(t, tree.Insert(key, i))
		requireAVLRules[int, int](t, tree)
	}
	require.Equal(t, int64(total), tree.Len())

	// Duplicates change nothing.
	height := tree.Height()
	for _, key := range keys[:total/4] {
		require.False(t, tree.Insert(key, -1))
	}
	require.Equal(t, height, tree.Height())
	require.Equal(t, int64(total), tree.Len())

	expected := make([]int, 0, total)
	for i := 0; i < total; i++ {
		expected = append(expected, i)
	}
	require.Equal(t, expected, tree.Keys())

	removed := make(map[int]struct{}, total/2)
	for _, key := range rng.Perm(total)[:total/2] {
		require.True(t, tree.Remove(key))
		removed[key] = struct{}{}
		requireAVLRules[int, int](t, tree)
	}
	require.Equal(t, int64(total-total/2), tree.Len())

	for i := 0; i < total; i++ {
		_, gone := removed[i]
		require.Equal(t, !gone, tree.Contains(i), "key %d", i)
		require.False(t, gone && tree.Remove(i))
	}

	// Removing absent keys changes nothing.
	height = tree.Height()
	require.False(t, tree.Remove(-1))
	require.False(t, tree.Remove(total))
	require.Equal(t, height, tree.Height())

	for i := 0; i < total; i++ {
		tree.Remove(i)
	}
	require.Equal(t, int64(0), tree.Len())
	require.Equal(t, int64(0), tree.Height())
	require.Nil(t, tree.Root())
}

func TestAVLRandomInsertAndRemove(t *testing.T) {
	testcases := []struct {
		name  string
		total int
		seed  uint64
	}{
		{"tiny", 8, 1},
		{"small", 64, 7},
		{"medium", 512, 42},
		{"large", 2048, 1024},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			avlRandomInsertAndRemoveRunCore(tt, tc.total, tc.seed)
		})
	}
}

func TestAVLHeightIsLogarithmic(t *testing.T) {
	tree := newIntTree()
	for i := 0; i < 1<<12; i++ {
		tree.Insert(i, i)
	}
	// h < 1.4405 * log2(n + 2)
	require.LessOrEqual(t, tree.Height(), int64(18))
	requireAVLRules[int, int](t, tree)
}

func BenchmarkAVLTreeInsert(b *testing.B) {
	tree := NewAVLTree[uint64, uint64]()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := randv2.Uint64()
		tree.Insert(key, key)
	}
}

func BenchmarkAVLTreeContains(b *testing.B) {
	tree := NewAVLTree[int, int]()
	for i := 0; i < 1<<16; i++ {
		tree.Insert(i, i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree.Contains(i & (1<<16 - 1))
	}
}
