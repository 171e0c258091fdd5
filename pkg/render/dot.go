package render

import (
	"bytes"
	"fmt"
	"html"
	"maps"
	"slices"

	"golang.org/x/text/unicode/norm"

	"github.com/takumik/keizu/pkg/genealogy"
)

// missingValue is shown for attribute columns a drawing has no value for.
const missingValue = "不明"

// ToDOT converts a genealogy tree to Graphviz DOT. Each drawing becomes a
// box node with an HTML-like table label: the drawing number as a bold
// 20pt header (NFKC-normalized so half-width IDs line up with Japanese
// text) and one 10pt row per ledger column. Node fill follows the
// Relation attribute; edges run from parent to child.
func ToDOT(t *genealogy.Tree, style Style) string {
	var buf bytes.Buffer
	buf.WriteString("digraph genealogy {\n")
	writeAttrLine(&buf, "graph", style.GraphAttrs())
	writeAttrLine(&buf, "node", style.NodeAttrs())
	writeAttrLine(&buf, "edge", style.EdgeAttrs())
	buf.WriteString("\n")

	for _, n := range t.Nodes() {
		fmt.Fprintf(&buf, "  %q [label=%s, fillcolor=%q];\n",
			n.ID, tableLabel(n, t.Columns()), genealogy.FillColor(n.Details))
	}

	buf.WriteString("\n")
	for _, e := range t.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// writeAttrLine emits a default-attribute statement with keys sorted for
// deterministic output.
func writeAttrLine(buf *bytes.Buffer, kind string, attrs map[string]string) {
	fmt.Fprintf(buf, "  %s [", kind)
	for i, k := range slices.Sorted(maps.Keys(attrs)) {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(buf, "%s=%q", k, attrs[k])
	}
	buf.WriteString("];\n")
}

// tableLabel builds the HTML-like label for one drawing.
func tableLabel(n *genealogy.Node, columns []string) string {
	var b bytes.Buffer
	b.WriteString("<<TABLE BORDER=\"0\" CELLBORDER=\"0\" CELLSPACING=\"0\">")
	fmt.Fprintf(&b, `<TR><TD ALIGN="CENTER"><B><FONT POINT-SIZE="20">%s</FONT></B></TD></TR>`,
		html.EscapeString(norm.NFKC.String(n.ID)))

	for _, col := range columns {
		val := n.Details[col]
		if val == "" {
			val = missingValue
		}
		fmt.Fprintf(&b, `<TR><TD ALIGN="CENTER"><FONT POINT-SIZE="10">%s: %s</FONT></TD></TR>`,
			html.EscapeString(col), html.EscapeString(val))
	}

	b.WriteString("</TABLE>>")
	return b.String()
}
