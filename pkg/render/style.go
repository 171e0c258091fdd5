// Package render turns a genealogy tree into DOT and rendered artifacts.
//
// Layout is owned entirely by Graphviz; this package only generates DOT
// with the right attributes and drives the rendering backends. The one
// correctness-critical attribute is the font family: Japanese drawing
// names need a CJK-capable font, and the same resolved family must reach
// the graph, node, and edge attribute sets or labels render inconsistently.
package render

import "github.com/takumik/keizu/pkg/fonts"

// Directions accepted for the rank layout.
const (
	DirectionTopBottom = "TB"
	DirectionLeftRight = "LR"
)

// Style carries the visual configuration threaded into DOT generation.
type Style struct {
	FontName string // CJK-capable family applied at graph, node, and edge level
	RankDir  string // Graphviz rankdir: TB (default) or LR
}

// NewStyle builds a style around the given font family. An empty family
// resolves the platform default so every call site gets a usable style.
func NewStyle(fontName string) Style {
	if fontName == "" {
		fontName = fonts.Default()
	}
	return Style{FontName: fontName, RankDir: DirectionTopBottom}
}

// GraphAttrs returns the graph-level DOT attributes.
func (s Style) GraphAttrs() map[string]string {
	rankdir := s.RankDir
	if rankdir == "" {
		rankdir = DirectionTopBottom
	}
	return map[string]string{
		"rankdir":  rankdir,
		"fontname": s.FontName,
		"charset":  "UTF-8",
	}
}

// NodeAttrs returns the default node-level DOT attributes.
func (s Style) NodeAttrs() map[string]string {
	return map[string]string{
		"shape":    "box",
		"style":    "filled",
		"fontname": s.FontName,
	}
}

// EdgeAttrs returns the default edge-level DOT attributes.
func (s Style) EdgeAttrs() map[string]string {
	return map[string]string{
		"fontname": s.FontName,
	}
}
