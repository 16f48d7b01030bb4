package eventtree

import "github.com/cockroachdb/errors"

var ErrInvariant = errors.New("eventtree: invariant violated")

// Height returns the number of nodes on the longest root-to-leaf path.
func (t *Tree) Height() int {
	return t.height(t.root)
}

func (t *Tree) height(x nodeID) int {
	if x == nilID {
		return 0
	}
	l, r := t.height(t.n(x).left), t.height(t.n(x).right)
	if l > r {
		return l + 1
	}
	return r + 1
}

// Validate walks the whole tree and reports the first red-black or
// ordering violation it finds. It is O(n) and meant for tests and debug
// assertions.
func (t *Tree) Validate() error {
	if c := t.n(nilID).color; c != Black {
		return errors.Wrapf(ErrInvariant, "sentinel is %s", c)
	}
	if t.root != nilID {
		if c := t.n(t.root).color; c != Black {
			return errors.Wrapf(ErrInvariant, "root %d is %s", t.n(t.root).id, c)
		}
		if p := t.n(t.root).parent; p != nilID {
			return errors.Wrapf(ErrInvariant, "root %d has parent", t.n(t.root).id)
		}
	}
	seen := 0
	if _, err := t.validate(t.root, nil, nil, &seen); err != nil {
		return err
	}
	if seen != t.size {
		return errors.Wrapf(ErrInvariant, "size %d but %d nodes reachable", t.size, seen)
	}
	return nil
}

// validate returns the black height of the subtree rooted at x. lo and hi
// are exclusive key bounds inherited from ancestors.
func (t *Tree) validate(x nodeID, lo, hi *int64, seen *int) (int, error) {
	if x == nilID {
		return 0, nil
	}
	*seen++
	n := t.n(x)
	if lo != nil && n.id <= *lo {
		return 0, errors.Wrapf(ErrInvariant, "id %d not above %d", n.id, *lo)
	}
	if hi != nil && n.id >= *hi {
		return 0, errors.Wrapf(ErrInvariant, "id %d not below %d", n.id, *hi)
	}
	for _, c := range []nodeID{n.left, n.right} {
		if c == nilID {
			continue
		}
		if t.n(c).parent != x {
			return 0, errors.Wrapf(ErrInvariant, "child %d of %d has wrong parent", t.n(c).id, n.id)
		}
		if n.color == Red && t.n(c).color == Red {
			return 0, errors.Wrapf(ErrInvariant, "red %d has red child %d", n.id, t.n(c).id)
		}
	}

	id := n.id
	lh, err := t.validate(n.left, lo, &id, seen)
	if err != nil {
		return 0, err
	}
	rh, err := t.validate(n.right, &id, hi, seen)
	if err != nil {
		return 0, err
	}
	if lh != rh {
		return 0, errors.Wrapf(ErrInvariant, "black height differs under %d: %d vs %d", id, lh, rh)
	}
	if t.n(x).color == Black {
		lh++
	}
	return lh, nil
}
