package organize

import "sync"

// Expansion records which node ids are expanded. Toggling one id never touches
// another, and the state survives rebuilding the tree as long as the same ids
// come back.
type Expansion struct {
	mu       sync.RWMutex
	expanded map[string]bool
}

func NewExpansion(ids ...string) *Expansion {
	e := &Expansion{expanded: make(map[string]bool, len(ids))}
	for _, id := range ids {
		e.expanded[id] = true
	}
	return e
}

// Toggle flips id and returns its new state.
func (e *Expansion) Toggle(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.expanded == nil {
		e.expanded = make(map[string]bool)
	}
	e.expanded[id] = !e.expanded[id]
	return e.expanded[id]
}

func (e *Expansion) Expanded(id string) bool {
	if e == nil {
		return false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.expanded[id]
}

// IDs returns the currently expanded ids.
func (e *Expansion) IDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.expanded))
	for id, on := range e.expanded {
		if on {
			out = append(out, id)
		}
	}
	return out
}

// VisibleNode is one row of a flattened tree.
type VisibleNode[T any] struct {
	Node     *Node[T]
	Depth    int
	Expanded bool
}

// Visible flattens the tree below root into render order. Children of a node
// are listed only when that node is expanded. The root itself is not listed.
func Visible[T any](root *Node[T], exp *Expansion) []VisibleNode[T] {
	var out []VisibleNode[T]
	var visit func(n *Node[T], depth int)
	visit = func(n *Node[T], depth int) {
		for _, c := range n.Children {
			open := exp.Expanded(c.ID())
			out = append(out, VisibleNode[T]{Node: c, Depth: depth, Expanded: open})
			if open {
				visit(c, depth+1)
			}
		}
	}
	visit(root, 0)
	return out
}
