package tree

// The base algorithm was described by Adelson-Velsky and Landis.
// h(nil) = 0, h(leaf) = 1, bf(x) = h(x.left) - h(x.right).
// Every node holds |bf| <= 1.

type avlBalancer[K, V any] struct{}

func (avlBalancer[K, V]) policy() Policy {
	return AVL
}

func (avlBalancer[K, V]) init(x *treeNode[K, V]) {
	x.meta = 1
}

// x is the child of y now, refresh bottom up.
func (avlBalancer[K, V]) rotated(x, y *treeNode[K, V]) {
	x.updateHeight()
	y.updateHeight()
}

func (b avlBalancer[K, V]) insertRebalance(m *Map[K, V], x *treeNode[K, V]) {
	b.rebalanceUp(m, x.parent)
}

func (b avlBalancer[K, V]) remove(m *Map[K, V], z *treeNode[K, V]) {
	p, replace := z.parent, z.left
	if replace == nil {
		replace = z.right
	}
	m.replaceChild(z, replace)
	b.rebalanceUp(m, p)
}

/*
Walk up from x and restore the height balance.

LL: bf(X) = 2 and bf(L) >= 0, single right rotation.

	      X                L
	     / \              / \
	    L   R   ====>   Ll   X
	   / \                  / \
	 Ll   Lr              Lr   R

LR: bf(X) = 2 and bf(L) < 0, left rotate L then right rotate X.

	      X                X               Lr
	     / \              / \             /  \
	    L   R   ====>   Lr   R  ====>    L    X
	     \              /                      \
	      Lr           L                        R

RR and RL are the mirrors.

The insertion is fixed by at most one (single or double) rotation,
the removal may rotate at every ancestor up to the root.
The walk stops as soon as a subtree keeps its old height.
*/
func (avlBalancer[K, V]) rebalanceUp(m *Map[K, V], x *treeNode[K, V]) {
	for x != nil {
		h := x.height()
		x.updateHeight()
		switch bf := x.balanceFactor(); {
		case bf > 1:
			if /* LR */ x.left.balanceFactor() < 0 {
				m.leftRotate(x.left)
			}
			/* LL */
			m.rightRotate(x)
			x = x.parent
		case bf < -1:
			if /* RL */ x.right.balanceFactor() > 0 {
				m.rightRotate(x.right)
			}
			/* RR */
			m.leftRotate(x)
			x = x.parent
		default:
		}
		if x.height() == h {
			return
		}
		x = x.parent
	}
}
