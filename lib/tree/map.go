// Package tree implements an in-memory ordered map backed by a
// self-balancing binary search tree with parent links.
//
// Note: a map is not thread safe, access it in a single goroutine
// or guard it by mutex/rwmutex.
package tree

import (
	"errors"
	"fmt"
	"iter"

	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/infra"
)

var (
	ErrNotFound        = errors.New("[xtree] key not found")
	ErrInvalidIterator = errors.New("[xtree] invalid iterator")
	ErrEmpty           = errors.New("[xtree] there is no element")
)

var (
	_ OrderedMap[int, struct{}] = (*Map[int, struct{}])(nil)
)

type Map[K, V any] struct {
	root           *treeNode[K, V]
	count          int64
	less           infra.KeyLess[K]
	balancer       balancer[K, V]
	logger         *zap.Logger
	stats          *mapStats
	isRmBorrowPred bool
}

// New creates an empty map ordered by the natural order of K.
func New[K infra.OrderedKey, V any](opts ...MapOption) *Map[K, V] {
	return NewFunc[K, V](infra.NaturalLess[K], opts...)
}

// NewFunc creates an empty map ordered by less, which has to be
// a strict weak ordering of K.
func NewFunc[K, V any](less func(i, j K) bool, opts ...MapOption) *Map[K, V] {
	if less == nil {
		panic( /* debug assertion */ "[xtree] nil key less func")
	}

	o := &mapOptions{
		policy: RedBlack,
	}
	for _, opt := range opts {
		opt(o)
	}

	m := &Map[K, V]{
		less:           less,
		balancer:       newBalancer[K, V](o.policy),
		logger:         o.logger,
		isRmBorrowPred: o.isRmBorrowPred,
	}
	if o.isDesc {
		m.less = m.less.Reverse()
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if o.isStatsEnabled {
		m.stats = newMapStats(o.statsName, o.policy)
	}
	return m
}

func (m *Map[K, V]) Len() int64 {
	return m.count
}

func (m *Map[K, V]) IsEmpty() bool {
	return m.root == nil
}

func (m *Map[K, V]) Policy() Policy {
	return m.balancer.policy()
}

func (m *Map[K, V]) search(key K) *treeNode[K, V] {
	for aux := m.root; aux != nil; {
		if m.less(key, aux.key) {
			aux = aux.left
		} else if m.less(aux.key, key) {
			aux = aux.right
		} else {
			return aux
		}
	}
	return nil
}

// The existing node is returned if the key is present.
func (m *Map[K, V]) insert(key K, val V) (*treeNode[K, V], bool) {
	var (
		x, y *treeNode[K, V] = m.root, nil
		dir                  = Root
	)
	for x != nil {
		y = x
		if /* less */ m.less(key, x.key) {
			x, dir = x.left, Left
		} else /* greater */ if m.less(x.key, key) {
			x, dir = x.right, Right
		} else /* equal */ {
			return x, false
		}
	}

	z := &treeNode[K, V]{
		key:    key,
		val:    val,
		parent: y,
		hasKV:  true,
	}
	switch dir {
	case Root:
		m.root = z
	case Left:
		y.left = z
	case Right:
		y.right = z
	default:
		// impossible run to here
		panic( /* debug assertion */ "[xtree] insert a new node with unknown direction")
	}
	m.count++
	m.balancer.init(z)
	m.balancer.insertRebalance(m, z)
	m.stats.IncreaseInsertCount()
	return z, true
}

/*
r1: Node Z has at most one child, hand it over to the balancer.

r2: Node Z has left and right node.
Find Z's succ (or pred) Y, which has at most one child.
Exchange the positions of Z and Y, then enter r1.
*/
func (m *Map[K, V]) removeNode(z *treeNode[K, V]) {
	if /* r2 */ z.left != nil && z.right != nil {
		var y *treeNode[K, V]
		if m.isRmBorrowPred {
			y = z.left.maximum()
		} else {
			y = z.right.minimum()
		}
		m.exchange(z, y)
	}
	/* r1 */
	m.balancer.remove(m, z)
	z.detach()
	m.count--
	m.stats.IncreaseEraseCount()
}

// At returns the reference of the value mapped to key.
func (m *Map[K, V]) At(key K) (*V, error) {
	x := m.search(key)
	if x == nil {
		return nil, fmt.Errorf("%w, key: %v", ErrNotFound, key)
	}
	return &x.val, nil
}

// Load returns a copy of the value mapped to key.
func (m *Map[K, V]) Load(key K) (V, error) {
	x := m.search(key)
	if x == nil {
		var v V
		return v, fmt.Errorf("%w, key: %v", ErrNotFound, key)
	}
	return x.val, nil
}

// Index returns the reference of the value mapped to key,
// a zero value is inserted if key does not exist.
func (m *Map[K, V]) Index(key K) *V {
	var v V
	x, _ := m.insert(key, v)
	return &x.val
}

// Insert adds the entry if key does not exist.
// Otherwise, nothing changes and the existing entry is returned with false.
func (m *Map[K, V]) Insert(key K, val V) (Iterator[K, V], bool) {
	x, ok := m.insert(key, val)
	return m.iterAt(x), ok
}

// Erase removes the entry referenced by it. Only it is invalidated,
// the iterators of other entries keep their key and value.
func (m *Map[K, V]) Erase(it Iterator[K, V]) error {
	if err := m.verify(it.cursor); err != nil {
		m.logger.Debug("[xtree] erase rejected", zap.Error(err), zap.Int64("len", m.count))
		return err
	}
	m.removeNode(it.n)
	return nil
}

func (m *Map[K, V]) verify(c cursor[K, V]) error {
	switch {
	case c.m != m:
		return fmt.Errorf("%w, it belongs to another map", ErrInvalidIterator)
	case c.pos == pastEnd:
		return fmt.Errorf("%w, it is past the end", ErrInvalidIterator)
	case c.n == nil || !c.n.hasKV:
		return fmt.Errorf("%w, its entry has been erased", ErrInvalidIterator)
	default:
	}
	return nil
}

func (m *Map[K, V]) Remove(key K) (V, error) {
	x := m.search(key)
	if x == nil {
		var v V
		return v, fmt.Errorf("%w, key: %v", ErrNotFound, key)
	}
	val := x.val
	m.removeNode(x)
	return val, nil
}

func (m *Map[K, V]) RemoveMin() (K, V, error) {
	return m.removeEdge(m.root.minimum())
}

func (m *Map[K, V]) RemoveMax() (K, V, error) {
	return m.removeEdge(m.root.maximum())
}

func (m *Map[K, V]) removeEdge(x *treeNode[K, V]) (key K, val V, err error) {
	if x == nil {
		return key, val, ErrEmpty
	}
	key, val = x.key, x.val
	m.removeNode(x)
	return key, val, nil
}

// Find returns the iterator of key, or End() if key does not exist.
func (m *Map[K, V]) Find(key K) Iterator[K, V] {
	return m.iterAt(m.search(key))
}

func (m *Map[K, V]) FindConst(key K) ConstIterator[K, V] {
	return m.Find(key).Const()
}

// Count returns 1 if key exists, otherwise 0. The keys are unique.
func (m *Map[K, V]) Count(key K) int {
	if m.search(key) == nil {
		return 0
	}
	return 1
}

func (m *Map[K, V]) Contains(key K) bool {
	return m.search(key) != nil
}

// LowerBound returns the iterator of the first key not before key.
func (m *Map[K, V]) LowerBound(key K) Iterator[K, V] {
	var res *treeNode[K, V]
	for aux := m.root; aux != nil; {
		if m.less(aux.key, key) {
			aux = aux.right
		} else {
			res, aux = aux, aux.left
		}
	}
	return m.iterAt(res)
}

// UpperBound returns the iterator of the first key after key.
func (m *Map[K, V]) UpperBound(key K) Iterator[K, V] {
	var res *treeNode[K, V]
	for aux := m.root; aux != nil; {
		if m.less(key, aux.key) {
			res, aux = aux, aux.left
		} else {
			aux = aux.right
		}
	}
	return m.iterAt(res)
}

func (m *Map[K, V]) iterAt(x *treeNode[K, V]) Iterator[K, V] {
	if x == nil {
		return m.End()
	}
	return Iterator[K, V]{cursor[K, V]{m: m, n: x, pos: atNode}}
}

func (m *Map[K, V]) Begin() Iterator[K, V] {
	return m.iterAt(m.root.minimum())
}

func (m *Map[K, V]) End() Iterator[K, V] {
	return Iterator[K, V]{cursor[K, V]{m: m, pos: pastEnd}}
}

// Last returns the iterator of the maximum key, or End() if the map is empty.
func (m *Map[K, V]) Last() Iterator[K, V] {
	return m.iterAt(m.root.maximum())
}

func (m *Map[K, V]) CBegin() ConstIterator[K, V] {
	return m.Begin().Const()
}

func (m *Map[K, V]) CEnd() ConstIterator[K, V] {
	return m.End().Const()
}

// Height returns the node number of the longest path from root to leaf.
// It is counted by levels and does not read the balance metadata.
func (m *Map[K, V]) Height() int {
	if m.root == nil {
		return 0
	}
	height := 0
	level := []*treeNode[K, V]{m.root}
	for len(level) > 0 {
		height++
		next := make([]*treeNode[K, V], 0, len(level)<<1)
		for _, aux := range level {
			if aux.left != nil {
				next = append(next, aux.left)
			}
			if aux.right != nil {
				next = append(next, aux.right)
			}
		}
		level = next
	}
	return height
}

// Inorder traversal to implement the DFS.
func (m *Map[K, V]) Foreach(action func(idx int64, key K, val V) bool) {
	aux := m.root
	if m.count <= 0 || aux == nil {
		return
	}

	stack := make([]*treeNode[K, V], 0, 32)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size := len(stack); size > 0; size = len(stack) {
		if aux = stack[size-1]; !action(idx, aux.key, aux.val) {
			return
		}
		idx++
		stack = stack[:size-1]
		for aux = aux.right; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
}

// All iterates the entries in key order.
// The current entry is allowed to be erased by the loop body.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for aux := m.root.minimum(); aux != nil; {
			next := aux.succ()
			if !yield(aux.key, aux.val) {
				return
			}
			aux = next
		}
	}
}

// Backward iterates the entries in reverse key order.
// The current entry is allowed to be erased by the loop body.
func (m *Map[K, V]) Backward() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for aux := m.root.maximum(); aux != nil; {
			prev := aux.pred()
			if !yield(aux.key, aux.val) {
				return
			}
			aux = prev
		}
	}
}

func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range m.All() {
			if !yield(k) {
				return
			}
		}
	}
}

func (m *Map[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range m.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// Clone deep copies the tree shape, keys, values and the balance metadata.
// The values are copied by assignment.
func (m *Map[K, V]) Clone() *Map[K, V] {
	c := &Map[K, V]{
		less:           m.less,
		balancer:       m.balancer,
		logger:         m.logger,
		stats:          m.stats,
		isRmBorrowPred: m.isRmBorrowPred,
	}
	c.root = cloneNodes(m.root)
	c.count = m.count
	c.stats.RecordEntryCount(c.count)
	return c
}

// Assign replaces the entries by a deep copy of other.
// The key order and the balance policy follow other.
func (m *Map[K, V]) Assign(other *Map[K, V]) {
	if other == nil || other == m {
		return
	}
	m.Clear()
	m.less = other.less
	m.balancer = other.balancer
	m.isRmBorrowPred = other.isRmBorrowPred
	m.root = cloneNodes(other.root)
	m.count = other.count
	m.stats.RecordEntryCount(m.count)
	m.logger.Debug("[xtree] assigned", zap.Int64("len", m.count), zap.String("policy", m.Policy().String()))
}

// Preorder traversal to copy node by node.
func cloneNodes[K, V any](root *treeNode[K, V]) *treeNode[K, V] {
	if root == nil {
		return nil
	}

	type pair struct {
		src, dst *treeNode[K, V]
	}
	dup := root.shallowCopy()
	stack := []pair{{src: root, dst: dup}}
	for size := len(stack); size > 0; size = len(stack) {
		top := stack[size-1]
		stack = stack[:size-1]
		if l := top.src.left; l != nil {
			top.dst.left = l.shallowCopy()
			top.dst.left.parent = top.dst
			stack = append(stack, pair{src: l, dst: top.dst.left})
		}
		if r := top.src.right; r != nil {
			top.dst.right = r.shallowCopy()
			top.dst.right.parent = top.dst
			stack = append(stack, pair{src: r, dst: top.dst.right})
		}
	}
	return dup
}

// Clear releases all nodes with an explicit stack.
// All iterators of the map except End() become invalid.
func (m *Map[K, V]) Clear() {
	released := m.count
	aux := m.root
	m.root = nil
	m.count = 0
	if aux == nil {
		return
	}

	stack := make([]*treeNode[K, V], 0, 64)
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
		aux.detach()
	}
	m.stats.RecordEntryCount(-released)
	m.logger.Debug("[xtree] cleared", zap.Int64("released", released))
}
