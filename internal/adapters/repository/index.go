package repository

// Treap-based ordering index over live matches.
//
// Ordering: total score DESC, then match id DESC. "before" means the match
// appears earlier in the summary, so an in-order traversal yields the
// summary from first to last. Ids are unique, so no two keys compare equal.

// indexKey is the position of a match in the summary ordering.
type indexKey struct {
	total int
	id    int
}

// before reports whether a sorts ahead of b in the summary.
func before(a, b indexKey) bool {
	if a.total != b.total {
		return a.total > b.total
	}
	return a.id > b.id
}

type node struct {
	key   indexKey
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, key indexKey, prio uint64) *node {
	if n == nil {
		return &node{key: key, prio: prio, size: 1}
	}
	if before(key, n.key) {
		n.left = insert(n.left, key, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, key, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func remove(n *node, key indexKey) *node {
	if n == nil {
		return nil
	}
	switch {
	case key == n.key:
		// Rotate the higher-priority child up until the node is a leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = remove(n.right, key)
		} else {
			n = rotateLeft(n)
			n.left = remove(n.left, key)
		}
	case before(key, n.key):
		n.left = remove(n.left, key)
	default:
		n.right = remove(n.right, key)
	}
	fix(n)
	return n
}

// collect appends up to limit match ids in summary order.
func collect(n *node, limit int, out *[]int) {
	if n == nil || len(*out) >= limit {
		return
	}
	collect(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n.key.id)
	}
	if len(*out) < limit {
		collect(n.right, limit, out)
	}
}

// position returns how many keys sort ahead of key, or -1 if key is absent.
func position(n *node, key indexKey) int {
	ahead := 0
	for n != nil {
		switch {
		case key == n.key:
			return ahead + nsize(n.left)
		case before(key, n.key):
			n = n.left
		default:
			ahead += nsize(n.left) + 1
			n = n.right
		}
	}
	return -1
}

// orderIndex keeps live matches sorted for the summary.
type orderIndex struct {
	root     *node
	priority func() uint64
}

func newOrderIndex(priority func() uint64) *orderIndex {
	return &orderIndex{priority: priority}
}

func (ix *orderIndex) insert(key indexKey) {
	ix.root = insert(ix.root, key, ix.priority())
}

func (ix *orderIndex) remove(key indexKey) {
	ix.root = remove(ix.root, key)
}

// move repositions a match whose total changed.
func (ix *orderIndex) move(from, to indexKey) {
	if from == to {
		return
	}
	ix.remove(from)
	ix.insert(to)
}

func (ix *orderIndex) len() int {
	return nsize(ix.root)
}

// ids returns up to limit ids in summary order.
func (ix *orderIndex) ids(limit int) []int {
	if limit > ix.len() {
		limit = ix.len()
	}
	out := make([]int, 0, limit)
	collect(ix.root, limit, &out)
	return out
}

// rank returns the 1-based summary position of key, or 0 if it is absent.
func (ix *orderIndex) rank(key indexKey) int {
	return position(ix.root, key) + 1
}
