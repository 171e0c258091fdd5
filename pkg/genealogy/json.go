package genealogy

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Wire format for graph JSON. This round-trips through [WriteJSON] and
// [ReadJSON] so a parsed ledger can be inspected or re-rendered without
// the original workbook.
type graphJSON struct {
	Columns []string   `json:"columns,omitempty"`
	Nodes   []nodeJSON `json:"nodes"`
	Edges   []edgeJSON `json:"edges"`
}

type nodeJSON struct {
	ID      string  `json:"id"`
	Root    bool    `json:"root,omitempty"`
	Details Details `json:"details,omitempty"`
}

type edgeJSON struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WriteJSON encodes the tree as indented JSON. Nodes are sorted by ID so
// the output is deterministic and diff-friendly.
func WriteJSON(t *Tree, w io.Writer) error {
	out := graphJSON{
		Columns: t.columns,
		Nodes:   make([]nodeJSON, 0, t.NodeCount()),
		Edges:   make([]edgeJSON, 0, t.EdgeCount()),
	}
	for _, n := range t.Nodes() {
		out.Nodes = append(out.Nodes, nodeJSON{ID: n.ID, Root: n.Root, Details: n.Details})
	}
	for _, e := range t.Edges() {
		out.Edges = append(out.Edges, edgeJSON{From: e.From, To: e.To})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes the tree to a JSON file at path.
func ExportJSON(t *Tree, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(t, f)
}

// ReadJSON decodes a graph produced by [WriteJSON].
func ReadJSON(r io.Reader) (*Tree, error) {
	var data graphJSON
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	t := &Tree{
		nodes:    make(map[string]*Node, len(data.Nodes)),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		columns:  data.Columns,
	}
	for _, n := range data.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("node with empty id")
		}
		if _, dup := t.nodes[n.ID]; dup {
			return nil, fmt.Errorf("duplicate node %s", n.ID)
		}
		details := n.Details
		if details == nil {
			details = Details{}
		}
		t.nodes[n.ID] = &Node{ID: n.ID, Root: n.Root, Details: details}
	}
	for _, e := range data.Edges {
		if _, ok := t.nodes[e.From]; !ok {
			return nil, fmt.Errorf("edge %s->%s: unknown source", e.From, e.To)
		}
		if _, ok := t.nodes[e.To]; !ok {
			return nil, fmt.Errorf("edge %s->%s: unknown target", e.From, e.To)
		}
		t.edges = append(t.edges, Edge{From: e.From, To: e.To})
		t.outgoing[e.From] = append(t.outgoing[e.From], e.To)
		t.incoming[e.To] = append(t.incoming[e.To], e.From)
	}
	return t, nil
}

// ImportJSON reads a graph JSON file at path.
func ImportJSON(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
