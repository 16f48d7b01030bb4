package eventtree

// InRange returns the sum of counts for every id in [lo, hi].
func (t *Tree) InRange(lo, hi int64) int64 {
	return t.countInRange(t.root, lo, hi)
}

func (t *Tree) countInRange(x nodeID, lo, hi int64) int64 {
	if x == nilID {
		return 0
	}
	n := t.n(x)
	switch {
	case n.id < lo:
		return t.countInRange(n.right, lo, hi)
	case n.id > hi:
		return t.countInRange(n.left, lo, hi)
	default:
		return n.count + t.countInRange(n.left, lo, hi) + t.countInRange(n.right, lo, hi)
	}
}

// Next returns the event with the smallest id strictly greater than id.
// When there is none it returns the zero Event and false.
func (t *Tree) Next(id int64) (Event, bool) {
	best := nilID
	x := t.root
	for x != nilID {
		n := t.n(x)
		if n.id > id {
			best = x
			x = n.left
		} else {
			x = n.right
		}
	}
	return t.event(best)
}

// Prev returns the event with the largest id strictly less than id.
// When there is none it returns the zero Event and false.
func (t *Tree) Prev(id int64) (Event, bool) {
	best := nilID
	x := t.root
	for x != nilID {
		n := t.n(x)
		if n.id < id {
			best = x
			x = n.right
		} else {
			x = n.left
		}
	}
	return t.event(best)
}

// Ascend calls fn for every event in increasing id order until fn returns
// false.
func (t *Tree) Ascend(fn func(Event) bool) {
	for x := t.minNode(t.root); x != nilID; x = t.next(x) {
		n := t.n(x)
		if !fn(Event{ID: n.id, Count: n.count}) {
			return
		}
	}
}

func (t *Tree) event(x nodeID) (Event, bool) {
	if x == nilID {
		return Event{}, false
	}
	n := t.n(x)
	return Event{ID: n.id, Count: n.count}, true
}
