package genealogy

import (
	"bytes"
	"testing"

	"github.com/takumik/keizu/pkg/errors"
	"github.com/takumik/keizu/pkg/ledger"
)

func sampleLedger() *ledger.Ledger {
	return &ledger.Ledger{
		Sheet:   "Sheet1",
		Columns: []string{"Creator", "Date", "Relation"},
		Records: []ledger.Record{
			{Child: "DE5313-008-02B", Parent: "DE5313-008",
				Attrs: map[string]string{"Creator": "佐藤", "Date": "2024/03/15", "Relation": "流用"}},
			{Child: "DE5313-008-03A", Parent: "DE5313-008",
				Attrs: map[string]string{"Creator": "鈴木", "Date": "2024/04/01", "Relation": ""}},
			{Child: "DE5313-008-02B-1", Parent: "DE5313-008-02B",
				Attrs: map[string]string{"Creator": "田中", "Date": "2024/05/20", "Relation": ""}},
		},
	}
}

func TestBuild(t *testing.T) {
	tree := Build(sampleLedger())

	if got := tree.NodeCount(); got != 4 {
		t.Fatalf("node count = %d, want 4", got)
	}
	if got := tree.EdgeCount(); got != 3 {
		t.Fatalf("edge count = %d, want 3", got)
	}

	n, ok := tree.Node("DE5313-008-02B")
	if !ok {
		t.Fatal("missing node DE5313-008-02B")
	}
	if n.Root {
		t.Error("child drawing marked as root")
	}
	if n.Details["Creator"] != "佐藤" {
		t.Errorf("Creator = %q", n.Details["Creator"])
	}
}

func TestBuildRoots(t *testing.T) {
	tree := Build(sampleLedger())

	roots := tree.Roots()
	if len(roots) != 1 || roots[0].ID != "DE5313-008" {
		t.Fatalf("roots = %v", roots)
	}

	// Root drawings carry the marker in every dynamic column.
	for _, col := range []string{"Creator", "Date", "Relation"} {
		if roots[0].Details[col] != RootMarker {
			t.Errorf("root %s = %q, want %q", col, roots[0].Details[col], RootMarker)
		}
	}
}

func TestBuildDedupesEdges(t *testing.T) {
	l := &ledger.Ledger{
		Records: []ledger.Record{
			{Child: "B", Parent: "A"},
			{Child: "B", Parent: "A"},
		},
	}
	tree := Build(l)
	if tree.EdgeCount() != 1 {
		t.Errorf("edge count = %d, want 1", tree.EdgeCount())
	}
}

func TestBuildParentOnlyRow(t *testing.T) {
	// A row with a parent but no child still registers the parent node.
	l := &ledger.Ledger{
		Records: []ledger.Record{
			{Child: "", Parent: "A"},
			{Child: "C", Parent: "B"},
		},
	}
	tree := Build(l)
	if _, ok := tree.Node("A"); !ok {
		t.Error("parent-only row should register the parent")
	}
	if tree.EdgeCount() != 1 {
		t.Errorf("edge count = %d, want 1", tree.EdgeCount())
	}
}

func TestNodesSorted(t *testing.T) {
	tree := Build(sampleLedger())
	nodes := tree.Nodes()
	for i := 1; i < len(nodes); i++ {
		if nodes[i-1].ID >= nodes[i].ID {
			t.Fatalf("nodes not sorted: %s >= %s", nodes[i-1].ID, nodes[i].ID)
		}
	}
}

func TestLeaves(t *testing.T) {
	tree := Build(sampleLedger())
	leaves := tree.Leaves()
	want := map[string]bool{"DE5313-008-02B-1": true, "DE5313-008-03A": true}
	if len(leaves) != len(want) {
		t.Fatalf("leaves = %v", leaves)
	}
	for _, n := range leaves {
		if !want[n.ID] {
			t.Errorf("unexpected leaf %s", n.ID)
		}
	}
}

func TestFillColor(t *testing.T) {
	if got := FillColor(Details{"Relation": RelationReuse}); got != FillReuse {
		t.Errorf("reuse fill = %s, want %s", got, FillReuse)
	}
	if got := FillColor(Details{"Relation": "新規"}); got != FillDefault {
		t.Errorf("default fill = %s, want %s", got, FillDefault)
	}
	if got := FillColor(Details{}); got != FillDefault {
		t.Errorf("empty details fill = %s, want %s", got, FillDefault)
	}
}

func TestValidate(t *testing.T) {
	if err := Build(sampleLedger()).Validate(); err != nil {
		t.Errorf("valid tree rejected: %v", err)
	}

	cyclic := Build(&ledger.Ledger{
		Records: []ledger.Record{
			{Child: "B", Parent: "A"},
			{Child: "A", Parent: "B"},
		},
	})
	err := cyclic.Validate()
	if !errors.Is(err, errors.ErrCodeGraphCycle) {
		t.Fatalf("expected GRAPH_CYCLE, got %v", err)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	tree := Build(sampleLedger())

	var buf bytes.Buffer
	if err := WriteJSON(tree, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	if got.NodeCount() != tree.NodeCount() || got.EdgeCount() != tree.EdgeCount() {
		t.Fatalf("round trip changed counts: %d/%d vs %d/%d",
			got.NodeCount(), got.EdgeCount(), tree.NodeCount(), tree.EdgeCount())
	}
	n, ok := got.Node("DE5313-008")
	if !ok || !n.Root {
		t.Error("root flag lost in round trip")
	}
	c, _ := got.Node("DE5313-008-02B")
	if c.Details["Relation"] != RelationReuse {
		t.Error("details lost in round trip")
	}
	if len(got.Columns()) != 3 {
		t.Errorf("columns lost: %v", got.Columns())
	}
}

func TestReadJSONRejectsCorrupt(t *testing.T) {
	cases := []string{
		`{"nodes":[{"id":"a"},{"id":"a"}],"edges":[]}`,            // duplicate
		`{"nodes":[{"id":""}],"edges":[]}`,                        // empty id
		`{"nodes":[{"id":"a"}],"edges":[{"from":"a","to":"b"}]}`,  // unknown target
		`{"nodes":[{"id":"b"}],"edges":[{"from":"a","to":"b"}]}`,  // unknown source
	}
	for _, in := range cases {
		if _, err := ReadJSON(bytes.NewReader([]byte(in))); err == nil {
			t.Errorf("expected error for %s", in)
		}
	}
}
