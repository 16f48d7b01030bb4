package eventtree

// insert adds a new id. The caller guarantees the id is absent.
func (t *Tree) insert(id, count int64) nodeID {
	y := nilID
	x := t.root
	for x != nilID {
		y = x
		if id < t.n(x).id {
			x = t.n(x).left
		} else {
			x = t.n(x).right
		}
	}

	z := t.alloc(id, count, y)
	if y == nilID {
		t.root = z
	} else if id < t.n(y).id {
		t.n(y).left = z
	} else {
		t.n(y).right = z
	}
	t.size++
	t.insertFixup(z)
	return z
}

// insertFixup repairs a red-red edge between z and its parent.
func (t *Tree) insertFixup(z nodeID) {
	for t.n(t.n(z).parent).color == Red {
		p := t.n(z).parent
		g := t.n(p).parent
		if p == t.n(g).left {
			u := t.n(g).right
			if t.n(u).color == Red {
				t.n(p).color = Black
				t.n(u).color = Black
				t.n(g).color = Red
				z = g
				continue
			}
			if z == t.n(p).right {
				// left-right: straighten into left-left
				z = p
				t.leftRotate(z)
				p = t.n(z).parent
			}
			t.n(p).color = Black
			t.n(g).color = Red
			t.rightRotate(g)
		} else {
			u := t.n(g).left
			if t.n(u).color == Red {
				t.n(p).color = Black
				t.n(u).color = Black
				t.n(g).color = Red
				z = g
				continue
			}
			if z == t.n(p).left {
				z = p
				t.rightRotate(z)
				p = t.n(z).parent
			}
			t.n(p).color = Black
			t.n(g).color = Red
			t.leftRotate(g)
		}
	}
	t.n(t.root).color = Black
}
