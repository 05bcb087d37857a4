// Package organize folds flat, already-joined rows into ordered trees for
// expandable-tree views.
//
// Each level extracts a typed key from a row. Rows whose foreign data is
// missing at some level land under an "Unknown <Level>" node instead of being
// dropped. Sibling nodes keep the order in which their keys were first seen.
package organize

import (
	"encoding/json"
	"strings"
)

// UnknownID is the natural key given to placeholder nodes.
const UnknownID = "unknown"

// Key identifies a node within its level.
type Key struct {
	Level string `json:"level"`
	ID    string `json:"key"`
	Label string `json:"label"`
}

// Level describes one grouping step. Extract reports ok=false when the row has
// no value for this level.
type Level[T any] struct {
	Name    string
	Extract func(row T) (id, label string, ok bool)
}

// Placeholder is the label used for rows missing a level, e.g. "Unknown Year".
func (l Level[T]) Placeholder() string {
	return "Unknown " + title(l.Name)
}

func (l Level[T]) key(row T) Key {
	id, label, ok := l.Extract(row)
	if !ok || id == "" {
		return Key{Level: l.Name, ID: UnknownID, Label: l.Placeholder()}
	}
	if label == "" {
		label = id
	}
	return Key{Level: l.Name, ID: id, Label: label}
}

// Node is a tree node. The root has a zero Key. Only nodes at the deepest
// level carry leaves.
type Node[T any] struct {
	Key      Key
	Children []*Node[T]
	Leaves   []T

	index map[Key]*Node[T]
}

// ID is the synthetic "<level>-<naturalKey>" id used to track expansion.
func (n *Node[T]) ID() string {
	if n.Key.Level == "" {
		return "root"
	}
	return n.Key.Level + "-" + n.Key.ID
}

func (n *Node[T]) child(k Key) *Node[T] {
	if n.index == nil {
		n.index = make(map[Key]*Node[T])
	}
	if c, ok := n.index[k]; ok {
		return c
	}
	c := &Node[T]{Key: k}
	n.index[k] = c
	n.Children = append(n.Children, c)
	return c
}

// Child returns the direct child with the given natural key, or nil.
func (n *Node[T]) Child(id string) *Node[T] {
	for _, c := range n.Children {
		if c.Key.ID == id {
			return c
		}
	}
	return nil
}

// Path follows natural keys from n downwards and returns the node reached, or
// nil if any step is missing.
func (n *Node[T]) Path(ids ...string) *Node[T] {
	cur := n
	for _, id := range ids {
		if cur = cur.Child(id); cur == nil {
			return nil
		}
	}
	return cur
}

// LeafCount counts every leaf under n.
func (n *Node[T]) LeafCount() int {
	total := len(n.Leaves)
	for _, c := range n.Children {
		total += c.LeafCount()
	}
	return total
}

// Walk visits n and its descendants depth-first, parents before children.
// depth is 0 for n itself.
func (n *Node[T]) Walk(fn func(node *Node[T], depth int)) {
	n.walk(fn, 0)
}

func (n *Node[T]) walk(fn func(*Node[T], int), depth int) {
	fn(n, depth)
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// AtLevel collects every node of the named level.
func (n *Node[T]) AtLevel(level string) []*Node[T] {
	var out []*Node[T]
	n.Walk(func(node *Node[T], _ int) {
		if node.Key.Level == level {
			out = append(out, node)
		}
	})
	return out
}

type nodeJSON[T any] struct {
	ID       string     `json:"id"`
	Level    string     `json:"level,omitempty"`
	Key      string     `json:"key,omitempty"`
	Label    string     `json:"label,omitempty"`
	Count    int        `json:"count"`
	Children []*Node[T] `json:"children,omitempty"`
	Items    []T        `json:"items,omitempty"`
}

func (n *Node[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(nodeJSON[T]{
		ID:       n.ID(),
		Level:    n.Key.Level,
		Key:      n.Key.ID,
		Label:    n.Key.Label,
		Count:    n.LeafCount(),
		Children: n.Children,
		Items:    n.Leaves,
	})
}

// Organize builds a fresh tree from rows. It is O(len(rows) * len(levels)) and
// is meant to be re-run in full whenever the source rows or a filter change.
func Organize[T any](rows []T, levels ...Level[T]) *Node[T] {
	root := &Node[T]{}
	for _, row := range rows {
		cur := root
		for _, l := range levels {
			cur = cur.child(l.key(row))
		}
		cur.Leaves = append(cur.Leaves, row)
	}
	return root
}

// Filter keeps rows matching keep. A nil keep returns rows unchanged.
func Filter[T any](rows []T, keep func(T) bool) []T {
	if keep == nil {
		return rows
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
