package tree

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	ErrOrderViolation  = errors.New("[xtree] bst order violation")
	ErrLinkViolation   = errors.New("[xtree] parent link violation")
	ErrSizeViolation   = errors.New("[xtree] size violation")
	ErrRedViolation    = errors.New("[xtree] rbtree red violation")
	ErrBlackViolation  = errors.New("[xtree] rbtree black violation")
	ErrHeightViolation = errors.New("[xtree] avl height violation")
)

// Validate checks every invariant of the map and its balance policy.
// The balance metadata is recomputed instead of being trusted.
// All violations found are combined into the returned error.
func (m *Map[K, V]) Validate() error {
	err := multierr.Combine(
		LinkViolationValidate(m),
		OrderViolationValidate(m),
		RedViolationValidate(m),
		BlackViolationValidate(m),
		HeightViolationValidate(m),
	)
	if err != nil {
		m.logger.Warn("[xtree] invariant violation",
			zap.String("policy", m.Policy().String()),
			zap.Int64("len", m.count),
			zap.Error(err),
		)
	}
	return err
}

// DFS traversal to check the parent links and the live node count.
func LinkViolationValidate[K, V any](m *Map[K, V]) (err error) {
	if m.root == nil {
		if m.count != 0 {
			return fmt.Errorf("%w, empty tree with len %d", ErrSizeViolation, m.count)
		}
		return nil
	}
	if m.root.parent != nil {
		err = multierr.Append(err, fmt.Errorf("%w, root %v has a parent", ErrLinkViolation, m.root.key))
	}

	total := int64(0)
	stack := []*treeNode[K, V]{m.root}
	for size := len(stack); size > 0; size = len(stack) {
		aux := stack[size-1]
		stack = stack[:size-1]
		total++
		if !aux.hasKV {
			err = multierr.Append(err, fmt.Errorf("%w, detached node %v in tree", ErrLinkViolation, aux.key))
		}
		for _, child := range []*treeNode[K, V]{aux.left, aux.right} {
			if child == nil {
				continue
			}
			if child.parent != aux {
				err = multierr.Append(err, fmt.Errorf("%w, node %v does not link back to %v", ErrLinkViolation, child.key, aux.key))
			}
			stack = append(stack, child)
		}
	}
	if total != m.count {
		err = multierr.Append(err, fmt.Errorf("%w, %d nodes but len %d", ErrSizeViolation, total, m.count))
	}
	return err
}

// Inorder traversal by the child links only, keys have to be strictly increasing.
func OrderViolationValidate[K, V any](m *Map[K, V]) error {
	var (
		prev  *treeNode[K, V]
		aux   = m.root
		stack = make([]*treeNode[K, V], 0, 32)
	)
	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}
	for size := len(stack); size > 0; size = len(stack) {
		aux = stack[size-1]
		stack = stack[:size-1]
		if prev != nil && !m.less(prev.key, aux.key) {
			return fmt.Errorf("%w, %v is not before %v", ErrOrderViolation, prev.key, aux.key)
		}
		prev = aux
		for aux = aux.right; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
	return nil
}

// Returns nil if the map is not red-black balanced.
func RedViolationValidate[K, V any](m *Map[K, V]) (err error) {
	if m.Policy() != RedBlack || m.root == nil {
		return nil
	}
	if m.root.isRed() {
		err = multierr.Append(err, fmt.Errorf("%w, red root %v", ErrRedViolation, m.root.key))
	}

	stack := []*treeNode[K, V]{m.root}
	for size := len(stack); size > 0; size = len(stack) {
		aux := stack[size-1]
		stack = stack[:size-1]
		if aux.isRed() && (aux.left.isRed() || aux.right.isRed()) {
			err = multierr.Append(err, fmt.Errorf("%w, red node %v has a red child", ErrRedViolation, aux.key))
		}
		if aux.left != nil {
			stack = append(stack, aux.left)
		}
		if aux.right != nil {
			stack = append(stack, aux.right)
		}
	}
	return err
}

// BFS traversal to load all nodes owning a nil leaf.
func bfsLeaves[K, V any](root *treeNode[K, V]) []*treeNode[K, V] {
	if root == nil {
		return nil
	}

	leaves := make([]*treeNode[K, V], 0, 32)
	queue := []*treeNode[K, V]{root}
	for len(queue) > 0 {
		aux := queue[0]
		queue = queue[1:]
		if /* nil leaves, keep one */ aux.left == nil || aux.right == nil {
			leaves = append(leaves, aux)
		}
		if aux.left != nil {
			queue = append(queue, aux.left)
		}
		if aux.right != nil {
			queue = append(queue, aux.right)
		}
	}
	return leaves
}

func blackDepth[K, V any](x *treeNode[K, V]) int {
	depth := 0
	for aux := x; aux != nil; aux = aux.parent {
		if aux.isBlack() {
			depth++
		}
	}
	return depth
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

	        [13]
	        /  \
	     <8>    [15]
	     / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            <16>

2-3-4 tree like:

	       <8> --- [13] --- <15>
	      /  \             /    \
	     /    \           /      \
	  <1>-[6][11]      [14] <16>-[17]

Each leaf node to root node black depth are equal.
Returns nil if the map is not red-black balanced.
*/
func BlackViolationValidate[K, V any](m *Map[K, V]) error {
	if m.Policy() != RedBlack {
		return nil
	}
	leaves := bfsLeaves(m.root)
	if leaves == nil {
		return nil
	}

	depth := blackDepth(leaves[0])
	for i := 1; i < len(leaves); i++ {
		if d := blackDepth(leaves[i]); d != depth {
			return fmt.Errorf("%w, black depth of %v is %d, of %v is %d",
				ErrBlackViolation, leaves[0].key, depth, leaves[i].key, d)
		}
	}
	return nil
}

// Postorder traversal to recompute the heights.
// Returns nil if the map is not height balanced.
func HeightViolationValidate[K, V any](m *Map[K, V]) (err error) {
	if m.Policy() != AVL || m.root == nil {
		return nil
	}

	heights := make(map[*treeNode[K, V]]int32, m.count)
	heightOf := func(x *treeNode[K, V]) int32 {
		if x == nil {
			return 0
		}
		return heights[x]
	}

	type frame struct {
		x       *treeNode[K, V]
		visited bool
	}
	stack := []frame{{x: m.root}}
	for size := len(stack); size > 0; size = len(stack) {
		top := stack[size-1]
		stack = stack[:size-1]
		if !top.visited {
			stack = append(stack, frame{x: top.x, visited: true})
			if top.x.left != nil {
				stack = append(stack, frame{x: top.x.left})
			}
			if top.x.right != nil {
				stack = append(stack, frame{x: top.x.right})
			}
			continue
		}

		lh, rh := heightOf(top.x.left), heightOf(top.x.right)
		h := 1 + max(lh, rh)
		heights[top.x] = h
		if lh-rh > 1 || rh-lh > 1 {
			err = multierr.Append(err, fmt.Errorf("%w, node %v balance factor %d", ErrHeightViolation, top.x.key, lh-rh))
		}
		if top.x.meta != h {
			err = multierr.Append(err, fmt.Errorf("%w, node %v stores height %d, real %d", ErrHeightViolation, top.x.key, top.x.meta, h))
		}
	}
	return err
}
