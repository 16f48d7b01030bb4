package eventtree

// BuildFromSorted replaces the contents of t with events in linear time.
//
// events must be in strictly increasing id order. Each event is hung off
// the right of the previously attached node, which is always the rightmost
// node of the tree, and then rebalanced by the same fixup used for
// ordinary insertion. Unsorted or duplicate input is not detected and
// leaves the tree in an unspecified shape.
func (t *Tree) BuildFromSorted(events []Event) {
	t.reset(len(events))
	if len(events) == 0 {
		return
	}

	last := t.alloc(events[0].ID, events[0].Count, nilID)
	t.n(last).color = Black
	t.root = last
	t.size = 1

	for _, ev := range events[1:] {
		last = t.appendRight(last, ev)
	}
}

// appendRight attaches ev as the right child of last and returns the new
// rightmost node.
func (t *Tree) appendRight(last nodeID, ev Event) nodeID {
	z := t.alloc(ev.ID, ev.Count, last)
	t.n(last).right = z
	t.size++
	t.insertFixup(z)
	return z
}
