package render

import (
	"strings"
	"testing"

	"github.com/takumik/keizu/pkg/fonts"
	"github.com/takumik/keizu/pkg/genealogy"
	"github.com/takumik/keizu/pkg/ledger"
)

func sampleTree() *genealogy.Tree {
	return genealogy.Build(&ledger.Ledger{
		Sheet:   "Sheet1",
		Columns: []string{"Creator", "Date", "Relation"},
		Records: []ledger.Record{
			{Child: "DE5313-008-02B", Parent: "DE5313-008",
				Attrs: map[string]string{"Creator": "佐藤", "Date": "2024/03/15", "Relation": "流用"}},
			{Child: "DE5313-008-03A", Parent: "DE5313-008",
				Attrs: map[string]string{"Creator": "鈴木", "Date": "2024/04/01", "Relation": ""}},
		},
	})
}

func TestNewStyleDefault(t *testing.T) {
	s := NewStyle("")
	if s.FontName != fonts.Default() {
		t.Errorf("FontName = %q, want platform default %q", s.FontName, fonts.Default())
	}
	if s.RankDir != DirectionTopBottom {
		t.Errorf("RankDir = %q, want %q", s.RankDir, DirectionTopBottom)
	}

	s = NewStyle("MS Gothic")
	if s.FontName != "MS Gothic" {
		t.Errorf("explicit font not preserved: %q", s.FontName)
	}
}

func TestStyleFontConsistency(t *testing.T) {
	// The resolved family must reach all three attribute sets, otherwise
	// Graphviz falls back to its default font for the levels that miss it
	// and CJK labels render as boxes.
	for _, p := range []fonts.Platform{fonts.PlatformDarwin, fonts.PlatformWindows, fonts.PlatformOther} {
		family := fonts.Resolve(p)
		s := NewStyle(family)
		for kind, attrs := range map[string]map[string]string{
			"graph": s.GraphAttrs(),
			"node":  s.NodeAttrs(),
			"edge":  s.EdgeAttrs(),
		} {
			if attrs["fontname"] != family {
				t.Errorf("%s fontname = %q, want %q", kind, attrs["fontname"], family)
			}
		}
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sampleTree(), NewStyle("Noto Sans CJK JP"))

	for _, want := range []string{
		"digraph genealogy {",
		`rankdir="TB"`,
		`fontname="Noto Sans CJK JP"`,
		`charset="UTF-8"`,
		`shape="box"`,
		`"DE5313-008" -> "DE5313-008-02B";`,
		`"DE5313-008" -> "DE5313-008-03A";`,
		genealogy.FillReuse,
		genealogy.FillDefault,
		"Creator: 佐藤",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
}

func TestToDOTDeterministic(t *testing.T) {
	tree := sampleTree()
	style := NewStyle("MS Gothic")
	if ToDOT(tree, style) != ToDOT(tree, style) {
		t.Error("repeated DOT generation differs")
	}
}

func TestToDOTNormalizesHeader(t *testing.T) {
	tree := genealogy.Build(&ledger.Ledger{
		Records: []ledger.Record{{Child: "ＤＥ５３１３", Parent: ""}},
	})
	dot := ToDOT(tree, NewStyle("MS Gothic"))
	if !strings.Contains(dot, ">DE5313<") {
		t.Errorf("full-width ID not NFKC-normalized in label:\n%s", dot)
	}
	// Node identity keeps the ledger spelling; only the label changes.
	if !strings.Contains(dot, `"ＤＥ５３１３"`) {
		t.Errorf("node ID rewritten:\n%s", dot)
	}
}

func TestToDOTMissingValue(t *testing.T) {
	tree := genealogy.Build(&ledger.Ledger{
		Columns: []string{"Creator"},
		Records: []ledger.Record{{Child: "B", Parent: "A", Attrs: map[string]string{"Creator": ""}}},
	})
	dot := ToDOT(tree, NewStyle("MS Gothic"))
	if !strings.Contains(dot, "Creator: "+missingValue) {
		t.Errorf("empty attribute should render %s:\n%s", missingValue, dot)
	}
}

func TestMakeBold(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Hello123", "𝗛𝗲𝗹𝗹𝗼𝟭𝟮𝟯"},
		{"DE5313-008", "𝗗𝗘𝟱𝟯𝟭𝟯-𝟬𝟬𝟴"},
		{"図番", "図番"},
		{"", ""},
	}
	for _, c := range cases {
		if got := MakeBold(c.in); got != c.want {
			t.Errorf("MakeBold(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatHoverText(t *testing.T) {
	tree := sampleTree()
	n, _ := tree.Node("DE5313-008-02B")
	got := FormatHoverText(n, tree.Columns())

	if !strings.HasPrefix(got, "【𝗗𝗘𝟱𝟯𝟭𝟯-𝟬𝟬𝟴-𝟬𝟮𝗕】") {
		t.Errorf("hover text header wrong:\n%s", got)
	}
	if !strings.Contains(got, "流用") {
		t.Errorf("hover text missing relation:\n%s", got)
	}
	// Three columns plus header and spacer.
	if lines := strings.Split(got, "\n"); len(lines) != 5 {
		t.Errorf("line count = %d:\n%s", len(lines), got)
	}
}

func TestFormatHoverTextRoot(t *testing.T) {
	tree := sampleTree()
	root, _ := tree.Node("DE5313-008")
	got := FormatHoverText(root, tree.Columns())

	// Roots collapse to a single Relation line carrying the marker.
	if !strings.Contains(got, genealogy.RootMarker) {
		t.Errorf("root hover text missing marker:\n%s", got)
	}
	if lines := strings.Split(got, "\n"); len(lines) != 3 {
		t.Errorf("root hover line count = %d:\n%s", len(lines), got)
	}
}

func TestToHTML(t *testing.T) {
	out, err := ToHTML(sampleTree(), NewStyle("Hiragino Sans"))
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	html := string(out)

	for _, want := range []string{
		"vis-network",
		"DE5313-008-02B",
		"Hiragino Sans",
		`"from":"DE5313-008"`,
		genealogy.FillReuse,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
}

func TestToHTMLDirection(t *testing.T) {
	s := NewStyle("MS Gothic")
	s.RankDir = DirectionLeftRight
	out, err := ToHTML(sampleTree(), s)
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if !strings.Contains(string(out), `direction: "LR"`) {
		t.Error("LR rank direction not threaded into layout options")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<?xml version="1.0"?>
<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg">
<g></g>
</svg>`)
	out := normalizeViewBox(in)
	got := string(out)

	if !strings.Contains(got, `viewBox="0 0 100.00 50.00"`) {
		t.Errorf("viewBox not normalized:\n%s", got)
	}
	if !strings.Contains(got, `width="100"`) || !strings.Contains(got, `height="50"`) {
		t.Errorf("pixel size not set:\n%s", got)
	}
	if strings.Contains(got, "pt\"") {
		t.Errorf("point units survived:\n%s", got)
	}
}

func TestNormalizeViewBoxPassthrough(t *testing.T) {
	in := []byte("<svg><g></g></svg>")
	if got := normalizeViewBox(in); string(got) != string(in) {
		t.Error("SVG without viewBox should pass through unchanged")
	}
}
