package tree

// The balancer keeps the invariant of one policy.
// The map owns the BST shape (descent, linking, splicing) and
// calls into the balancer around every structural change.
type balancer[K, V any] interface {
	policy() Policy
	// Paint the new linked leaf before the insert fixup.
	init(x *treeNode[K, V])
	// Refresh the metadata after x went down under y by rotation.
	rotated(x, y *treeNode[K, V])
	insertRebalance(m *Map[K, V], x *treeNode[K, V])
	// Remove the node z from the tree, z has at most one child.
	remove(m *Map[K, V], z *treeNode[K, V])
}

func newBalancer[K, V any](policy Policy) balancer[K, V] {
	switch policy {
	case RedBlack:
		return rbBalancer[K, V]{}
	case AVL:
		return avlBalancer[K, V]{}
	default:
	}
	panic( /* debug assertion */ "[xtree] unknown balance policy " + policy.String())
}

/*
		 |                         |
		 X                         Y
		/ \     leftRotate(X)     / \
	   L   Y    ============>    X   Yd
		  / \                   / \
		Yc   Yd                L   Yc
*/
func (m *Map[K, V]) leftRotate(x *treeNode[K, V]) {
	if x == nil || x.right == nil {
		// impossible run to here
		panic( /* debug assertion */ "[xtree] left rotate node x is nil or x.right is nil")
	}

	p, y := x.parent, x.right
	dir := x.direction()
	x.right, y.left = y.left, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		m.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[xtree] unknown node direction to left-rotate")
	}
	y.parent = p
	m.balancer.rotated(x, y)
	m.stats.IncreaseRotationCount()
}

/*
			 |                         |
			 X                         Y
			/ \    rightRotate(X)     / \
	       Y   R   ============>    Yc   X
		  / \                           / \
		Yc   Yd                        Yd  R
*/
func (m *Map[K, V]) rightRotate(x *treeNode[K, V]) {
	if x == nil || x.left == nil {
		// impossible run to here
		panic( /* debug assertion */ "[xtree] right rotate node x is nil or x.left is nil")
	}

	p, y := x.parent, x.left
	dir := x.direction()
	x.left, y.right = y.right, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		m.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[xtree] unknown node direction to right-rotate")
	}
	y.parent = p
	m.balancer.rotated(x, y)
	m.stats.IncreaseRotationCount()
}

// Link x (maybe nil) into the position of old.
func (m *Map[K, V]) replaceChild(old, x *treeNode[K, V]) {
	p := old.parent
	switch old.direction() {
	case Root:
		m.root = x
	case Left:
		p.left = x
	case Right:
		p.right = x
	default:
		// impossible run to here
		panic( /* debug assertion */ "[xtree] unknown node direction to replace")
	}
	if x != nil {
		x.parent = p
	}
}

/*
Exchange the tree positions of x and its in-order neighbour y
(the pred or succ inside x's subtree). The payload stays in
its own node, so every iterator keeps the entry it referenced.
The position metadata moves with the position.

Find succ:

	  |                    |
	  X                    Y
	 / \                  / \
	L  ..  exchange(X,Y) L  ..
		|   =========>       |
		P                    P
	   / \                  / \
	  Y  ..                X  ..
	   \                    \
	   Yr                   Yr
*/
func (m *Map[K, V]) exchange(x, y *treeNode[K, V]) {
	xp, xl, xr, xDir := x.parent, x.left, x.right, x.direction()
	yp, yl, yr, yDir := y.parent, y.left, y.right, y.direction()
	x.meta, y.meta = y.meta, x.meta

	if /* adjacent */ yp == x {
		switch yDir {
		case Left:
			y.left, y.right = x, xr
		case Right:
			y.left, y.right = xl, x
		default:
			// impossible run to here
			panic( /* debug assertion */ "[xtree] exchange with the root node")
		}
	} else {
		y.left, y.right = xl, xr
		switch yDir {
		case Left:
			yp.left = x
		case Right:
			yp.right = x
		default:
			// impossible run to here
			panic( /* debug assertion */ "[xtree] exchange with the root node")
		}
		x.parent = yp
	}
	x.left, x.right = yl, yr

	switch xDir {
	case Root:
		m.root = y
	case Left:
		xp.left = y
	case Right:
		xp.right = y
	default:
	}
	y.parent = xp

	x.fixLink()
	y.fixLink()
}
