package eventtree

type Color uint8

const (
	Red Color = iota
	Black
)

func (c Color) String() string {
	if c == Red {
		return "red"
	}
	return "black"
}

// Event is an (id, count) pair. The zero Event doubles as the "not found"
// answer of the neighbour queries.
type Event struct {
	ID    int64
	Count int64
}

type nodeID uint32

// nilID is the sentinel slot. Its colour always reads Black.
const nilID nodeID = 0

type node struct {
	id     int64
	count  int64
	color  Color
	left   nodeID
	right  nodeID
	parent nodeID
}

type Tree struct {
	nodes []node
	free  []nodeID
	root  nodeID
	size  int
}

// New returns an empty tree.
func New() *Tree {
	t := &Tree{}
	t.reset(0)
	return t
}

// Len returns the number of distinct event ids in the tree.
func (t *Tree) Len() int { return t.size }

func (t *Tree) reset(capacity int) {
	t.nodes = make([]node, 1, capacity+1)
	t.nodes[nilID] = node{color: Black}
	t.free = t.free[:0]
	t.root = nilID
	t.size = 0
}

// alloc hands out a slot for a fresh red leaf.
func (t *Tree) alloc(id, count int64, parent nodeID) nodeID {
	n := node{
		id:     id,
		count:  count,
		color:  Red,
		left:   nilID,
		right:  nilID,
		parent: parent,
	}
	if k := len(t.free); k > 0 {
		x := t.free[k-1]
		t.free = t.free[:k-1]
		t.nodes[x] = n
		return x
	}
	t.nodes = append(t.nodes, n)
	return nodeID(len(t.nodes) - 1)
}

func (t *Tree) release(x nodeID) {
	t.nodes[x] = node{}
	t.free = append(t.free, x)
}

// n gives pointer access to a slot; never hold the result across alloc.
func (t *Tree) n(x nodeID) *node { return &t.nodes[x] }

func (t *Tree) search(id int64) nodeID {
	x := t.root
	for x != nilID {
		n := t.n(x)
		if id < n.id {
			x = n.left
		} else if id > n.id {
			x = n.right
		} else {
			return x
		}
	}
	return nilID
}

func (t *Tree) minNode(x nodeID) nodeID {
	for x != nilID && t.n(x).left != nilID {
		x = t.n(x).left
	}
	return x
}

func (t *Tree) next(x nodeID) nodeID {
	if r := t.n(x).right; r != nilID {
		return t.minNode(r)
	}
	p := t.n(x).parent
	for p != nilID && x == t.n(p).right {
		x = p
		p = t.n(p).parent
	}
	return p
}

func (t *Tree) leftRotate(x nodeID) {
	y := t.n(x).right
	t.n(x).right = t.n(y).left
	if t.n(y).left != nilID {
		t.n(t.n(y).left).parent = x
	}
	t.n(y).parent = t.n(x).parent
	p := t.n(x).parent
	if p == nilID {
		t.root = y
	} else if x == t.n(p).left {
		t.n(p).left = y
	} else {
		t.n(p).right = y
	}
	t.n(y).left = x
	t.n(x).parent = y
}

func (t *Tree) rightRotate(y nodeID) {
	x := t.n(y).left
	t.n(y).left = t.n(x).right
	if t.n(x).right != nilID {
		t.n(t.n(x).right).parent = y
	}
	t.n(x).parent = t.n(y).parent
	p := t.n(y).parent
	if p == nilID {
		t.root = x
	} else if y == t.n(p).right {
		t.n(p).right = x
	} else {
		t.n(p).left = x
	}
	t.n(x).right = y
	t.n(y).parent = x
}
