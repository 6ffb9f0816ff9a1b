package tree

type treeNode[K, V any] struct {
	parent *treeNode[K, V]
	left   *treeNode[K, V]
	right  *treeNode[K, V]
	key    K
	val    V
	// The balance metadata of the node position.
	// Red-black policy stores the Color, AVL policy stores the subtree height.
	meta  int32
	hasKV bool
}

func (node *treeNode[K, V]) color() Color {
	if node == nil {
		return Black
	}
	return Color(node.meta)
}

func (node *treeNode[K, V]) setColor(color Color) {
	node.meta = int32(color)
}

func (node *treeNode[K, V]) isRed() bool {
	return node != nil && Color(node.meta) == Red
}

func (node *treeNode[K, V]) isBlack() bool {
	return !node.isRed()
}

// The nil child height is 0 and a leaf height is 1.
func (node *treeNode[K, V]) height() int32 {
	if node == nil {
		return 0
	}
	return node.meta
}

func (node *treeNode[K, V]) updateHeight() {
	node.meta = 1 + max(node.left.height(), node.right.height())
}

func (node *treeNode[K, V]) balanceFactor() int32 {
	return node.left.height() - node.right.height()
}

func (node *treeNode[K, V]) isRoot() bool {
	return node != nil && node.parent == nil
}

func (node *treeNode[K, V]) isLeaf() bool {
	return node != nil && node.left == nil && node.right == nil
}

func (node *treeNode[K, V]) direction() Direction {
	if node == nil {
		// impossible run to here
		panic( /* debug assertion */ "[xtree] nil node without direction")
	}

	if node.isRoot() {
		return Root
	}
	if node == node.parent.left {
		return Left
	}
	return Right
}

func (node *treeNode[K, V]) sibling() *treeNode[K, V] {
	switch node.direction() {
	case Left:
		return node.parent.right
	case Right:
		return node.parent.left
	default:
	}
	return nil
}

func (node *treeNode[K, V]) grandpa() *treeNode[K, V] {
	if node.parent == nil {
		return nil
	}
	return node.parent.parent
}

func (node *treeNode[K, V]) fixLink() {
	if node.left != nil {
		node.left.parent = node
	}
	if node.right != nil {
		node.right.parent = node
	}
}

func (node *treeNode[K, V]) minimum() *treeNode[K, V] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *treeNode[K, V]) maximum() *treeNode[K, V] {
	aux := node
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}

// The succ node of the current node is its next node in sorted order.
// Returns nil if the current node is the maximum.
func (node *treeNode[K, V]) succ() *treeNode[K, V] {
	x := node
	if x == nil {
		return nil
	}
	if x.right != nil {
		return x.right.minimum()
	}

	aux := x.parent
	// Backtrack until x comes up from a left child.
	for aux != nil && x == aux.right {
		x = aux
		aux = aux.parent
	}
	return aux
}

// The pred node of the current node is its previous node in sorted order.
// Returns nil if the current node is the minimum.
func (node *treeNode[K, V]) pred() *treeNode[K, V] {
	x := node
	if x == nil {
		return nil
	}
	if x.left != nil {
		return x.left.maximum()
	}

	aux := x.parent
	// Backtrack until x comes up from a right child.
	for aux != nil && x == aux.left {
		x = aux
		aux = aux.parent
	}
	return aux
}

func (node *treeNode[K, V]) shallowCopy() *treeNode[K, V] {
	return &treeNode[K, V]{
		key:   node.key,
		val:   node.val,
		meta:  node.meta,
		hasKV: true,
	}
}

// Unlink the node from the tree and drop its payload.
// Iterators still referencing it become invalid.
func (node *treeNode[K, V]) detach() {
	var (
		k K
		v V
	)
	node.parent = nil
	node.left = nil
	node.right = nil
	node.key = k
	node.val = v
	node.meta = 0
	node.hasKV = false
}
