package genealogy

import (
	"github.com/takumik/keizu/pkg/ledger"
)

// Build constructs the genealogy tree from a parsed ledger.
//
// Pass one collects the child and parent sets; roots are the parents that
// never appear as a child. Pass two merges each row's attribute values into
// the child drawing's details (later rows win), then overwrites every root
// drawing's details with the RootMarker since root drawings have no ledger
// row of their own.
//
// Edges are added for rows where both parent and child are present;
// duplicate parent-child pairs collapse to a single edge.
func Build(l *ledger.Ledger) *Tree {
	t := &Tree{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		columns:  l.Columns,
	}

	children := make(map[string]bool)
	parents := make(map[string]bool)
	for _, rec := range l.Records {
		if rec.Child != "" {
			children[rec.Child] = true
		}
		if rec.Parent != "" {
			parents[rec.Parent] = true
		}
	}

	node := func(id string) *Node {
		n, ok := t.nodes[id]
		if !ok {
			n = &Node{ID: id, Details: Details{}}
			t.nodes[id] = n
		}
		return n
	}

	seen := make(map[Edge]bool)
	for _, rec := range l.Records {
		if rec.Child != "" {
			n := node(rec.Child)
			for col, val := range rec.Attrs {
				n.Details[col] = val
			}
		}
		if rec.Parent != "" {
			node(rec.Parent)
		}

		if rec.Parent != "" && rec.Child != "" {
			e := Edge{From: rec.Parent, To: rec.Child}
			if !seen[e] {
				seen[e] = true
				t.edges = append(t.edges, e)
				t.outgoing[e.From] = append(t.outgoing[e.From], e.To)
				t.incoming[e.To] = append(t.incoming[e.To], e.From)
			}
		}
	}

	for id := range parents {
		if children[id] {
			continue
		}
		n := node(id)
		n.Root = true
		n.Details = Details{}
		for _, col := range l.Columns {
			n.Details[col] = RootMarker
		}
	}

	return t
}
