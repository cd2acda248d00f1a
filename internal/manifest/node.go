// Package manifest models project documents that map filesystem directories
// onto the runtime instance tree, and knows how to find and decode them.
package manifest

import "strings"

// Node is one entry in the instance tree described by a project document.
// Children are kept in document order.
type Node struct {
	// Path is the filesystem directory bound to this node through the
	// reserved `$path` attribute. Nil when the node has no directory.
	Path     *string
	Children []Child
}

// Child is a named child of a Node.
type Child struct {
	Name string
	Node *Node
}

// HasPath reports whether the node is bound to exactly dir.
func (n *Node) HasPath(dir string) bool {
	return n != nil && n.Path != nil && *n.Path == dir
}

// Child returns the first child called name, or nil.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c.Node
		}
	}
	return nil
}

// Add appends a named child and returns it, for building trees in code.
func (n *Node) Add(name string, child *Node) *Node {
	n.Children = append(n.Children, Child{Name: name, Node: child})
	return child
}

// NewNode returns a node bound to dir. Pass an empty variadic to build a
// node without a directory.
func NewNode(dir ...string) *Node {
	n := &Node{}
	if len(dir) > 0 {
		p := normalizeDir(dir[0])
		n.Path = &p
	}
	return n
}

func normalizeDir(dir string) string {
	return strings.ReplaceAll(dir, "\\", "/")
}
