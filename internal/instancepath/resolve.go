package instancepath

import (
	"strings"

	"github.com/rbxpath/rbxpath/internal/manifest"
)

// Location is the sequence of instance names leading from the manifest root
// to a node. An empty Location is the root itself.
type Location []string

// String renders the location as dotted names, for display only.
func (l Location) String() string {
	return strings.Join(l, ".")
}

// Match is the outcome of a prefix search: the location of the deepest
// declared ancestor and the directory parts below it.
type Match struct {
	Location  Location
	Remainder []string
}

// Segments returns the location followed by the remainder.
func (m Match) Segments() []string {
	segments := make([]string, 0, len(m.Location)+len(m.Remainder))
	segments = append(segments, m.Location...)
	return append(segments, m.Remainder...)
}

// Resolve finds the first node, depth-first in document order, whose
// directory is exactly target.
func Resolve(tree *manifest.Node, target string) (Location, bool) {
	if tree == nil {
		return nil, false
	}
	return resolveFrom(tree, target, Location{})
}

func resolveFrom(node *manifest.Node, target string, prefix Location) (Location, bool) {
	if node.HasPath(target) {
		return prefix, true
	}
	for _, child := range node.Children {
		if child.Node == nil {
			continue
		}
		next := make(Location, len(prefix), len(prefix)+1)
		copy(next, prefix)
		if loc, ok := resolveFrom(child.Node, target, append(next, child.Name)); ok {
			return loc, true
		}
	}
	return nil, false
}

// ResolveWithFallback resolves the longest prefix of dirParts that the
// manifest declares, down to and including the empty prefix.
func ResolveWithFallback(tree *manifest.Node, dirParts []string) (Match, bool) {
	if tree == nil {
		return Match{}, false
	}
	for n := len(dirParts); n >= 0; n-- {
		loc, ok := Resolve(tree, strings.Join(dirParts[:n], "/"))
		if !ok {
			continue
		}
		remainder := make([]string, len(dirParts)-n)
		copy(remainder, dirParts[n:])
		return Match{Location: loc, Remainder: remainder}, true
	}
	return Match{}, false
}
