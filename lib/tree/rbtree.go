package tree

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The root is black.
// (Conclusion) If a node X has exactly one child, it must be a red child,
//   because if it were black, its NIL descendants would sit at a different
//   black depth than X's NIL child, violating p4.

type rbBalancer[K, V any] struct{}

func (rbBalancer[K, V]) policy() Policy {
	return RedBlack
}

// i1: Empty rbtree, the new root node is painted to black.
func (rbBalancer[K, V]) init(x *treeNode[K, V]) {
	if /* i1 */ x.isRoot() {
		x.setColor(Black)
		return
	}
	x.setColor(Red)
}

// Colors are repainted by the fixup cases.
func (rbBalancer[K, V]) rotated(_, _ *treeNode[K, V]) {}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

im1: Current node X's parent P is black, hold p3 and p4.

im2: If both the parent P and the uncle U are red, grandpa G is black.
(red-violation)
After repainted G into red may be still red-violation.
Recursive to fix grandpa.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im3: The parent P is red but the uncle U is black. (red-violation)
X is opposite direction to P. Rotate P to opposite direction.
After rotation it is still red-violation. Here must enter im4 to fix.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

im4: Handle im3 scenario, current node is the same direction as parent.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]
*/
func (rbBalancer[K, V]) insertRebalance(m *Map[K, V], x *treeNode[K, V]) {
	defer func() {
		m.root.setColor(Black)
	}()

	for !x.isRoot() && /* im1 */ x.parent.isRed() {
		// The red parent is never the root, grandpa is present.
		p, gp := x.parent, x.grandpa()
		if u := p.sibling(); /* im2 */ u.isRed() {
			p.setColor(Black)
			u.setColor(Black)
			gp.setColor(Red)
			x = gp
			continue
		}

		if dir := x.direction(); /* im3 */ dir != p.direction() {
			switch dir {
			case Left:
				m.rightRotate(p)
			case Right:
				m.leftRotate(p)
			default:
				// impossible run to here
				panic( /* debug assertion */ "[xtree] rbtree insert violate (im3)")
			}
			x, p = p, x // enter im4 to fix
		}

		switch /* im4 */ p.direction() {
		case Left:
			m.rightRotate(gp)
		case Right:
			m.leftRotate(gp)
		default:
			// impossible run to here
			panic( /* debug assertion */ "[xtree] rbtree insert violate (im4)")
		}
		p.setColor(Black)
		gp.setColor(Red)
		return
	}
}

/*
r1: Current node Z is a red leaf node, remove directly.

r2: Current node Z is a black leaf node, we have to rebalance before remove.
Z stays in the tree as the double-black position during the fixup.
(black-violation)

r3: Current node Z is not a leaf node but contains a not nil child node.
The child node must be a red node. (See conclusion. Otherwise, black-violation)
Repaint the child into black after linking it to Z's parent.
*/
func (b rbBalancer[K, V]) remove(m *Map[K, V], z *treeNode[K, V]) {
	defer func() {
		if m.root != nil {
			m.root.setColor(Black)
		}
	}()

	if z.isLeaf() {
		if /* r2 */ z.isBlack() && !z.isRoot() {
			b.removeRebalance(m, z)
		}
		/* r1 */
		m.replaceChild(z, nil)
		return
	}

	/* r3 */
	replace := z.left
	if replace == nil {
		replace = z.right
	}
	m.replaceChild(z, replace)
	replace.setColor(Black)
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

Sc is the same direction to X and it X's sibling's child node.
Sd is the opposite direction to X and it X's sibling's child node.

rm1: Current node X's sibling S is red, so the parent P, nephew node Sc and Sd
must be black. (Otherwise, red-violation)
(1) X is left node of P, left rotate P
(2) X is right node of P, right rotate P.
(3) repaint S into black, P into red.

	  [P]                   <S>               [S]
	  / \    l-rotate(P)    / \    repaint    / \
	[X] <S>  ==========>  [P] [D]  ======>  <P> [Sd]
	    / \               / \               / \
	 [Sc] [Sd]          [X] [Sc]          [X] [Sc]

rm2: Current node X's parent P is red, the sibling S, nephew node Sc and Sd
is black.
Repaint S into red and P into black.

	  <P>             [P]
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm3: All of current node X's parent P, the sibling S, nephew node Sc and Sd
are black.
Unable to satisfy p3 and p4. We have to paint the S into red to satisfy
p4 locally. Then recursive to handle P.

	  [P]             [P]
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm4: Current node X's sibling S is black, nephew node Sc is red and Sd
is black. Ignore X's parent P's color (red or black is okay)
(1) If X is left node of P, right rotate S.
(2) If X is right node of P, left rotate S.
(3) Repaint S into red, Sc into black
Enter into rm5 to fix.

	                        {P}                {P}
	  {P}                   / \                / \
	  / \    r-rotate(S)  [X] <Sc>   repaint  [X] [Sc]
	[X] [S]  ==========>        \    ======>       \
	    / \                     [S]                <S>
	  <Sc> [Sd]                   \                  \
	                              [Sd]               [Sd]

rm5: Current node X's sibling S is black, nephew node Sd is red.
Ignore X's parent P's color (red or black is okay)
(1) If X is left node of P, left rotate P.
(2) If X is right node of P, right rotate P.
(3) Swap P and S's color.
(4) Repaint Sd into black.

	  {P}                   [S]                {S}
	  / \    l-rotate(P)    / \     repaint    / \
	[X] [S]  ==========>  {P} <Sd>  ======>  [P] [Sd]
	    / \               / \                / \
	 [Sc] <Sd>          [X] [Sc]           [X] [Sc]
*/
func (rbBalancer[K, V]) removeRebalance(m *Map[K, V], x *treeNode[K, V]) {
	for !x.isRoot() {
		dir := x.direction()
		// A black non-root node always has a sibling. (p4)
		sibling := x.sibling()
		if /* rm1 */ sibling.isRed() {
			switch dir {
			case Left:
				m.leftRotate(x.parent)
			case Right:
				m.rightRotate(x.parent)
			default:
				// impossible run to here
				panic( /* debug assertion */ "[xtree] rbtree remove violate (rm1)")
			}
			sibling.setColor(Black)
			x.parent.setColor(Red) // ready to enter rm2
			sibling = x.sibling()
		}

		var sc, sd *treeNode[K, V]
		switch dir {
		case Left:
			sc, sd = sibling.left, sibling.right
		case Right:
			sc, sd = sibling.right, sibling.left
		default:
			// impossible run to here
			panic( /* debug assertion */ "[xtree] rbtree remove violate (rm2)")
		}

		if sc.isBlack() && sd.isBlack() {
			sibling.setColor(Red)
			if /* rm2 */ x.parent.isRed() {
				x.parent.setColor(Black)
				return
			}
			/* rm3 */
			x = x.parent
			continue
		}

		if /* rm4 */ sd.isBlack() {
			switch dir {
			case Left:
				m.rightRotate(sibling)
			case Right:
				m.leftRotate(sibling)
			default:
				// impossible run to here
				panic( /* debug assertion */ "[xtree] rbtree remove violate (rm4)")
			}
			sc.setColor(Black)
			sibling.setColor(Red)
			sibling, sd = sc, sibling
		}

		switch /* rm5 */ dir {
		case Left:
			m.leftRotate(x.parent)
		case Right:
			m.rightRotate(x.parent)
		default:
			// impossible run to here
			panic( /* debug assertion */ "[xtree] rbtree remove violate (rm5)")
		}
		sibling.setColor(x.parent.color())
		x.parent.setColor(Black)
		sd.setColor(Black)
		return
	}
}
