// Package genealogy models the parent-child graph of drawing numbers.
//
// A Tree is built from a ledger in two passes: the first collects every
// child and parent identifier to find the roots (parents that never appear
// as a child), the second merges row attributes into per-drawing details.
// The result is a directed graph from parent drawings to the drawings
// derived from them.
package genealogy

import (
	"maps"
	"slices"

	"github.com/takumik/keizu/pkg/errors"
)

// Details holds the attribute values displayed for one drawing,
// keyed by ledger column name.
type Details map[string]string

// RootMarker is the attribute value assigned to every column of a root
// drawing, replacing whatever the ledger rows carried.
const RootMarker = "ROOT"

// Node fill colors, chosen by the Relation attribute.
const (
	FillDefault = "#F0F8FF" // AliceBlue
	FillReuse   = "#FFFFE0" // LightYellow, for 流用 (reuse) relations
)

// RelationReuse is the Relation attribute value marking a reused drawing.
const RelationReuse = "流用"

// Node is one drawing in the genealogy.
type Node struct {
	ID      string  // drawing number, unique within the tree
	Details Details // merged attribute values (never nil)
	Root    bool    // parent that never appears as a child
}

// Edge is a directed parent → child derivation between two drawings.
type Edge struct {
	From string // parent drawing number
	To   string // child drawing number
}

// Tree is the genealogy graph. Use Build to construct one from a ledger;
// the zero value is not usable. Tree is not safe for concurrent mutation.
type Tree struct {
	nodes    map[string]*Node
	edges    []Edge
	outgoing map[string][]string // parent -> children
	incoming map[string][]string // child -> parents
	columns  []string            // dynamic column order from the ledger
}

// Columns returns the dynamic attribute columns in ledger order.
func (t *Tree) Columns() []string { return t.columns }

// Node returns the drawing with the given ID and true, or nil and false.
func (t *Tree) Node(id string) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Nodes returns all drawings sorted by ID for deterministic iteration.
func (t *Tree) Nodes() []*Node {
	ids := slices.Sorted(maps.Keys(t.nodes))
	nodes := make([]*Node, len(ids))
	for i, id := range ids {
		nodes[i] = t.nodes[id]
	}
	return nodes
}

// Edges returns a copy of all edges in insertion order.
func (t *Tree) Edges() []Edge { return slices.Clone(t.edges) }

// NodeCount returns the number of drawings.
func (t *Tree) NodeCount() int { return len(t.nodes) }

// EdgeCount returns the number of derivations.
func (t *Tree) EdgeCount() int { return len(t.edges) }

// Children returns the drawings derived from id. Read-only view.
func (t *Tree) Children(id string) []string { return t.outgoing[id] }

// Parents returns the drawings id was derived from. Read-only view.
func (t *Tree) Parents(id string) []string { return t.incoming[id] }

// Roots returns the drawings that never appear as a child, sorted by ID.
func (t *Tree) Roots() []*Node {
	var roots []*Node
	for _, n := range t.Nodes() {
		if n.Root {
			roots = append(roots, n)
		}
	}
	return roots
}

// Leaves returns the drawings with no derivations, sorted by ID.
func (t *Tree) Leaves() []*Node {
	var leaves []*Node
	for _, n := range t.Nodes() {
		if len(t.outgoing[n.ID]) == 0 {
			leaves = append(leaves, n)
		}
	}
	return leaves
}

// FillColor returns the node fill for the given details.
func FillColor(d Details) string {
	if d["Relation"] == RelationReuse {
		return FillReuse
	}
	return FillDefault
}

// Validate checks that the genealogy is acyclic. A drawing cannot be
// derived, directly or transitively, from itself; a ledger that says so is
// corrupt. Detection is depth-first search with white/gray/black coloring.
func (t *Tree) Validate() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(t.nodes))
	var cycleAt string

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range t.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
				if cycleAt != "" {
					return
				}
			case gray:
				cycleAt = child
				return
			}
		}
		color[id] = black
	}

	for _, id := range slices.Sorted(maps.Keys(t.nodes)) {
		if color[id] == white {
			dfs(id)
			if cycleAt != "" {
				return errors.New(errors.ErrCodeGraphCycle, "derivation cycle through %s", cycleAt)
			}
		}
	}
	return nil
}
