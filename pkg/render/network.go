package render

import (
	"bytes"
	"encoding/json"
	"html/template"

	"github.com/takumik/keizu/pkg/errors"
	"github.com/takumik/keizu/pkg/genealogy"
)

// visNode and visEdge mirror the object shape vis-network expects.
type visNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Title string `json:"title"`
	Color string `json:"color"`
}

type visEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ToHTML renders the tree as a self-contained interactive page backed by
// vis-network. Nodes show the drawing number, hover tooltips carry the
// full detail rows, and the hierarchy flows in the style's rank direction.
func ToHTML(t *genealogy.Tree, style Style) ([]byte, error) {
	nodes := make([]visNode, 0, t.NodeCount())
	for _, n := range t.Nodes() {
		nodes = append(nodes, visNode{
			ID:    n.ID,
			Label: n.ID,
			Title: FormatHoverText(n, t.Columns()),
			Color: genealogy.FillColor(n.Details),
		})
	}

	edges := make([]visEdge, 0, t.EdgeCount())
	for _, e := range t.Edges() {
		edges = append(edges, visEdge{From: e.From, To: e.To})
	}

	nodesJSON, err := json.Marshal(nodes)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "marshal nodes")
	}
	edgesJSON, err := json.Marshal(edges)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "marshal edges")
	}

	direction := "UD"
	if style.RankDir == DirectionLeftRight {
		direction = "LR"
	}

	var buf bytes.Buffer
	data := struct {
		Font      string
		Direction string
		Nodes     template.JS
		Edges     template.JS
	}{
		Font:      style.FontName,
		Direction: direction,
		Nodes:     template.JS(nodesJSON),
		Edges:     template.JS(edgesJSON),
	}
	if err := networkTemplate.Execute(&buf, data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "render HTML")
	}
	return buf.Bytes(), nil
}

var networkTemplate = template.Must(template.New("network").Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<title>図番家系図</title>
<script src="https://unpkg.com/vis-network@9.1.9/standalone/umd/vis-network.min.js"></script>
<style>
  body { margin: 0; font-family: "{{.Font}}", sans-serif; }
  #tree { width: 100vw; height: 100vh; }
</style>
</head>
<body>
<div id="tree"></div>
<script>
  const nodes = new vis.DataSet({{.Nodes}});
  const edges = new vis.DataSet({{.Edges}});
  const container = document.getElementById("tree");
  const options = {
    layout: {
      hierarchical: {
        enabled: true,
        direction: "{{.Direction}}",
        sortMethod: "directed",
        nodeSpacing: 180,
        levelSeparation: 140
      }
    },
    nodes: {
      shape: "box",
      font: { face: "{{.Font}}", size: 16 },
      margin: 10,
      borderWidth: 1
    },
    edges: {
      arrows: { to: { enabled: true, scaleFactor: 0.8 } },
      color: "#888888",
      smooth: { type: "cubicBezier", forceDirection: "vertical" }
    },
    interaction: { hover: true, tooltipDelay: 120 },
    physics: false
  };
  new vis.Network(container, { nodes, edges }, options);
</script>
</body>
</html>
`))
