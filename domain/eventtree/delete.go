package eventtree

// deleteNode unlinks the id held by z. When z has two children its in-order
// successor is spliced out instead and the successor's id and count move
// into z's slot.
func (t *Tree) deleteNode(z nodeID) {
	y := z
	if t.n(z).left != nilID && t.n(z).right != nilID {
		y = t.minNode(t.n(z).right)
	}

	x := t.n(y).left
	if x == nilID {
		x = t.n(y).right
	}

	// x may be the sentinel; deleteFixup reads its parent.
	yp := t.n(y).parent
	t.n(x).parent = yp
	if yp == nilID {
		t.root = x
	} else if y == t.n(yp).left {
		t.n(yp).left = x
	} else {
		t.n(yp).right = x
	}

	if y != z {
		t.n(z).id = t.n(y).id
		t.n(z).count = t.n(y).count
	}

	removed := t.n(y).color
	t.release(y)
	t.size--

	if removed == Black {
		t.deleteFixup(x)
	}
	t.n(nilID).parent = nilID
}

// deleteFixup pushes the extra black carried by x up the tree until it can
// be absorbed by a red node or a rotation.
func (t *Tree) deleteFixup(x nodeID) {
	for x != t.root && t.n(x).color == Black {
		p := t.n(x).parent
		if x == t.n(p).left {
			w := t.n(p).right
			if t.n(w).color == Red {
				t.n(w).color = Black
				t.n(p).color = Red
				t.leftRotate(p)
				w = t.n(p).right
			}
			if t.n(t.n(w).left).color == Black && t.n(t.n(w).right).color == Black {
				t.n(w).color = Red
				x = p
				continue
			}
			if t.n(t.n(w).right).color == Black {
				t.n(t.n(w).left).color = Black
				t.n(w).color = Red
				t.rightRotate(w)
				w = t.n(p).right
			}
			t.n(w).color = t.n(p).color
			t.n(p).color = Black
			t.n(t.n(w).right).color = Black
			t.leftRotate(p)
			x = t.root
		} else {
			w := t.n(p).left
			if t.n(w).color == Red {
				t.n(w).color = Black
				t.n(p).color = Red
				t.rightRotate(p)
				w = t.n(p).left
			}
			if t.n(t.n(w).right).color == Black && t.n(t.n(w).left).color == Black {
				t.n(w).color = Red
				x = p
				continue
			}
			if t.n(t.n(w).left).color == Black {
				t.n(t.n(w).right).color = Black
				t.n(w).color = Red
				t.leftRotate(w)
				w = t.n(p).left
			}
			t.n(w).color = t.n(p).color
			t.n(p).color = Black
			t.n(t.n(w).left).color = Black
			t.rightRotate(p)
			x = t.root
		}
	}
	t.n(x).color = Black
}
