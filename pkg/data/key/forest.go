package key

import (
	"sort"
)

// Node is one segment in a Forest.
type Node struct {
	name     string
	children map[string]*Node
	value    string
	leaf     bool
}

// Name returns the segment this node represents.
func (n *Node) Name() string {
	return n.name
}

// IsLeaf reports whether a scalar value terminates at this node.
func (n *Node) IsLeaf() bool {
	return n.leaf
}

// Value returns the scalar stored at this node, if any.
func (n *Node) Value() (string, bool) {
	return n.value, n.leaf
}

// Children returns the child segment names in a stable order: array
// indices ascending numerically, then names lexically.
func (n *Node) Children() []string {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ai, aok := ParseIndex(names[i])
		bi, bok := ParseIndex(names[j])
		switch {
		case aok && bok:
			return ai < bi
		case aok != bok:
			return aok
		default:
			return names[i] < names[j]
		}
	})
	return names
}

// Child returns the named child node.
func (n *Node) Child(name string) (*Node, bool) {
	c, ok := n.children[name]
	return c, ok
}

// Forest is an immutable tree over the keys of a flat map.
//
// It answers existence and array-length questions in O(depth) without
// re-parsing every key. A Forest is built once per load and replaced, never
// updated in place.
type Forest struct {
	formatter Formatter
	root      *Node
	flat      map[string]string
}

// NewForest builds a Forest from a flat key/value map whose keys were
// produced by formatter.
func NewForest(flat map[string]string, formatter Formatter) (*Forest, error) {
	f := &Forest{
		formatter: formatter,
		root:      &Node{children: map[string]*Node{}},
		flat:      make(map[string]string, len(flat)),
	}

	for k, v := range flat {
		segments, err := formatter.Split(k)
		if err != nil {
			return nil, err
		}

		n := f.root
		for _, s := range segments {
			child, ok := n.children[s]
			if !ok {
				child = &Node{name: s, children: map[string]*Node{}}
				n.children[s] = child
			}
			n = child
		}
		n.value = v
		n.leaf = true
		f.flat[k] = v
	}

	return f, nil
}

// Len returns the number of scalar keys in the forest.
func (f *Forest) Len() int {
	return len(f.flat)
}

// Flat returns a copy of the key/value pairs the forest was built from.
func (f *Forest) Flat() map[string]string {
	out := make(map[string]string, len(f.flat))
	for k, v := range f.flat {
		out[k] = v
	}
	return out
}

// Root returns the synthetic root whose children are the top-level segments.
func (f *Forest) Root() *Node {
	return f.root
}

// Node looks up the node at key.
func (f *Forest) Node(key string) (*Node, bool) {
	if key == "" {
		return f.root, true
	}

	segments, err := f.formatter.Split(key)
	if err != nil {
		return nil, false
	}

	n := f.root
	for _, s := range segments {
		child, ok := n.children[s]
		if !ok {
			return nil, false
		}
		n = child
	}
	return n, true
}

// Has reports whether key is a scalar key or a prefix of one.
func (f *Forest) Has(key string) bool {
	_, ok := f.Node(key)
	return ok
}

// Value returns the scalar stored at key.
func (f *Forest) Value(key string) (string, bool) {
	n, ok := f.Node(key)
	if !ok {
		return "", false
	}
	return n.Value()
}

// ArrayLength returns one past the highest index child of key, or zero when
// key has no index children.
func (f *Forest) ArrayLength(key string) int {
	n, ok := f.Node(key)
	if !ok {
		return 0
	}

	length := 0
	for name := range n.children {
		if i, ok := ParseIndex(name); ok && i+1 > length {
			length = i + 1
		}
	}
	return length
}

// Keys returns every scalar key below prefix (all keys when prefix is empty),
// formatted with the forest's formatter, in tree order.
func (f *Forest) Keys(prefix string) []string {
	n, ok := f.Node(prefix)
	if !ok {
		return nil
	}

	var base []string
	if prefix != "" {
		base, _ = f.formatter.Split(prefix)
	}

	var keys []string
	var walk func(n *Node, path []string)
	walk = func(n *Node, path []string) {
		if n.leaf {
			keys = append(keys, f.formatter.Join(path))
		}
		for _, name := range n.Children() {
			walk(n.children[name], append(append([]string(nil), path...), name))
		}
	}
	walk(n, base)
	return keys
}
