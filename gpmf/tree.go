package gpmf

// NodeKind tags which variant a Node holds. Modeled as a tagged
// variant (spec.md §9: "Leaf(KLVItem) | Branch(Map) | Sequence(List)")
// rather than simulating dynamic typing with interface{}.
type NodeKind int

const (
	NodeLeaf NodeKind = iota
	NodeBranch
	NodeSequence
)

// Node is one entry in a GPMF tree (spec.md §3). A Branch's Children
// map preserves no cross-key ordering (per spec.md §3's invariant);
// a Sequence preserves insertion order of repeated siblings sharing a
// FourCC, and may mix Leaf and Branch entries.
type Node struct {
	Kind     NodeKind
	Item     KLVItem          // valid when Kind == NodeLeaf
	Children map[FourCC]*Node // valid when Kind == NodeBranch
	Seq      []*Node          // valid when Kind == NodeSequence
}

func newBranch() *Node {
	return &Node{Kind: NodeBranch, Children: make(map[FourCC]*Node)}
}

// Get returns the child stored under key, or nil if absent. When the
// key holds a Sequence, Get returns the Sequence node itself — callers
// that want "the first one" should use GetFirst.
func (n *Node) Get(key FourCC) *Node {
	if n == nil || n.Kind != NodeBranch {
		return nil
	}
	return n.Children[key]
}

// GetFirst returns the first value stored under key, whether that key
// holds a single Leaf/Branch or a Sequence.
func (n *Node) GetFirst(key FourCC) *Node {
	child := n.Get(key)
	if child == nil {
		return nil
	}
	if child.Kind == NodeSequence {
		if len(child.Seq) == 0 {
			return nil
		}
		return child.Seq[0]
	}
	return child
}

// Items returns every value stored under key as a flat slice, whether
// key holds zero, one, or many (Sequence) entries.
func (n *Node) Items(key FourCC) []*Node {
	child := n.Get(key)
	if child == nil {
		return nil
	}
	if child.Kind == NodeSequence {
		return child.Seq
	}
	return []*Node{child}
}

// insert adds child under key, promoting an existing single value to
// a Sequence on collision (spec.md §4.2). Order of appearance within
// the sequence is preserved.
func (n *Node) insert(key FourCC, child *Node) {
	existing, ok := n.Children[key]
	if !ok {
		n.Children[key] = child
		return
	}
	if existing.Kind == NodeSequence {
		existing.Seq = append(existing.Seq, child)
		return
	}
	n.Children[key] = &Node{Kind: NodeSequence, Seq: []*Node{existing, child}}
}

const (
	defaultMaxDepth = 16
	defaultMaxItems = 1_000_000
)

type projector struct {
	maxDepth  int
	maxItems  int
	itemCount int
	strict    bool
}

func (p *projector) project(data []byte, depth int) (*Node, error) {
	if depth > p.maxDepth {
		if p.strict {
			return nil, &MalformedInputError{Reason: "recursion depth exceeded"}
		}
		return newBranch(), nil
	}

	node := newBranch()
	r := NewReader(data)
	for {
		it, ok := r.Next()
		if !ok {
			break
		}
		p.itemCount++
		if p.itemCount > p.maxItems {
			if p.strict {
				return nil, &MalformedInputError{Reason: "item count exceeded"}
			}
			return node, nil
		}

		var child *Node
		if it.IsContainer() {
			if len(it.Payload) == 0 {
				child = newBranch()
			} else {
				c, err := p.project(it.Payload, depth+1)
				if err != nil {
					return nil, err
				}
				child = c
			}
		} else {
			child = &Node{Kind: NodeLeaf, Item: it}
		}
		node.insert(it.Key, child)
	}
	return node, nil
}

// ProjectTree consumes a KLV stream and returns its tree projection
// (spec.md §4.2), permissively: hitting the defensive depth/item
// bounds simply stops descending rather than failing.
func ProjectTree(data []byte) Node {
	p := &projector{maxDepth: defaultMaxDepth, maxItems: defaultMaxItems}
	n, _ := p.project(data, 0)
	return *n
}

// ProjectTreeStrict behaves like ProjectTree but returns
// *MalformedInputError if the recursion depth or total item count
// bounds are exceeded, for callers hardened against adversarial input
// (spec.md §5/§7).
func ProjectTreeStrict(data []byte) (Node, error) {
	p := &projector{maxDepth: defaultMaxDepth, maxItems: defaultMaxItems, strict: true}
	n, err := p.project(data, 0)
	if err != nil {
		return Node{}, err
	}
	return *n, nil
}
