package stress

import (
	"context"
	randv2 "math/rand/v2"
	"slices"

	"github.com/samber/lo"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/tree"
)

const ctxCheckMask = 0xff

type WorkloadResult struct {
	ID int
	// Ops counts every insert, duplicate insert and remove.
	Ops    int64
	Len    int64
	Height int64
}

// Workload owns exactly one tree and checks it against a map model.
type Workload struct {
	id          int
	keys        int
	removeRatio float64
	verify      bool
	desc        bool
	rng         *randv2.Rand
	newTree     func() tree.AVLTree[int64, int64]
}

func newWorkload(id int, seed uint64, cfg *Config) *Workload {
	w := &Workload{
		id:          id,
		keys:        cfg.Keys,
		removeRatio: cfg.RemoveRatio,
		verify:      cfg.Verify,
		desc:        cfg.Desc,
		rng:         randv2.New(randv2.NewPCG(seed, uint64(id))),
	}
	w.newTree = w.defaultTree
	return w
}

func (w *Workload) defaultTree() tree.AVLTree[int64, int64] {
	if w.desc {
		return tree.NewAVLTree[int64, int64](tree.WithAVLTreeDesc[int64, int64]())
	}
	return tree.NewAVLTree[int64, int64]()
}

func (w *Workload) errorf(format string, args ...any) error {
	return infra.NewErrorStackf("[stress] workload %d: "+format, append([]any{w.id}, args...)...)
}

// Random keys are drawn from [0, 4*keys), the duplicates are dropped.
func (w *Workload) genKeys() []int64 {
	upper := int64(4 * w.keys)
	return lo.Uniq(lo.Times(w.keys, func(_ int) int64 {
		return w.rng.Int64N(upper)
	}))
}

func (w *Workload) checkRules(t tree.AVLTree[int64, int64]) error {
	if err := tree.BalanceViolationValidate[int64, int64](t); err != nil {
		return err
	}
	if err := tree.OrderViolationValidate[int64, int64](t); err != nil {
		return err
	}
	return tree.HeightViolationValidate[int64, int64](t)
}

func (w *Workload) Run(ctx context.Context) (res WorkloadResult, err error) {
	res.ID = w.id
	t := w.newTree()
	defer t.Release()

	keys := w.genKeys()
	model := make(map[int64]int64, len(keys))
	step := func(op string, key int64) error {
		res.Ops++
		if res.Ops&ctxCheckMask == 0 {
			if err := ctx.Err(); err != nil {
				return infra.WrapErrorStackWithMessage(err, "[stress] workload canceled")
			}
		}
		if int64(len(model)) != t.Len() {
			return w.errorf("%s %d, len %d, expected %d", op, key, t.Len(), len(model))
		}
		if !w.verify {
			return nil
		}
		return w.checkRules(t)
	}

	for _, key := range keys {
		val := w.rng.Int64()
		if !t.Insert(key, val) {
			return res, w.errorf("insert %d reported a duplicate", key)
		}
		model[key] = val
		if !t.Contains(key) {
			return res, w.errorf("inserted key %d is absent", key)
		}
		if err = step("insert", key); err != nil {
			return res, err
		}
	}

	w.rng.Shuffle(len(keys), func(i, j int) {
		keys[i], keys[j] = keys[j], keys[i]
	})
	removed := keys[:int(float64(len(keys))*w.removeRatio)]
	for _, key := range removed {
		if !t.Remove(key) {
			return res, w.errorf("remove %d reported an absent key", key)
		}
		delete(model, key)
		if t.Contains(key) {
			return res, w.errorf("removed key %d is still present", key)
		}
		if err = step("remove", key); err != nil {
			return res, err
		}
	}

	// Duplicates and absent keys are no-ops.
	for _, key := range keys {
		val, present := model[key]
		if t.Insert(key, -val) != !present {
			return res, w.errorf("insert %d disagrees with the model", key)
		}
		if !present {
			if !t.Remove(key) {
				return res, w.errorf("remove %d after reinsert failed", key)
			}
		} else if got, ok := t.Get(key); !ok || got != val {
			return res, w.errorf("duplicate insert %d overwrote %d by %d", key, val, got)
		}
		if t.Remove(upperBoundKey(w.keys)) {
			return res, w.errorf("remove of an absent key reported success")
		}
		if err = step("duplicate", key); err != nil {
			return res, err
		}
	}

	if err = w.checkRules(t); err != nil {
		return res, err
	}
	expected := lo.Keys(model)
	slices.Sort(expected)
	if w.desc {
		slices.Reverse(expected)
	}
	if actual := t.Keys(); !slices.Equal(expected, actual) {
		return res, w.errorf("keys mismatch, len %d, expected %d", len(actual), len(expected))
	}
	res.Len, res.Height = t.Len(), t.Height()
	return res, nil
}

// upperBoundKey is never generated by genKeys.
func upperBoundKey(keys int) int64 {
	return int64(4 * keys)
}
