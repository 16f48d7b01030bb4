package eventtree

// Increase adds delta to the count of id, inserting id when it is not yet
// present, and returns the resulting count.
func (t *Tree) Increase(id, delta int64) int64 {
	if x := t.search(id); x != nilID {
		n := t.n(x)
		n.count += delta
		return n.count
	}
	t.insert(id, delta)
	return delta
}

// Reduce subtracts delta from the count of id. The id is removed once its
// count drops to zero or below, in which case Reduce returns 0. Reducing an
// absent id is a no-op that returns 0.
func (t *Tree) Reduce(id, delta int64) int64 {
	x := t.search(id)
	if x == nilID {
		return 0
	}
	n := t.n(x)
	if n.count <= delta {
		t.deleteNode(x)
		return 0
	}
	n.count -= delta
	return n.count
}

// Contains reports whether id is present, including with a zero count.
func (t *Tree) Contains(id int64) bool {
	return t.search(id) != nilID
}

// Count returns the count of id, or 0 if id is absent.
func (t *Tree) Count(id int64) int64 {
	if x := t.search(id); x != nilID {
		return t.n(x).count
	}
	return 0
}
