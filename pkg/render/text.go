package render

import (
	"fmt"
	"strings"

	"github.com/takumik/keizu/pkg/genealogy"
)

// boldOffsets map the start of each plain range to the start of the
// corresponding Mathematical Sans-Serif Bold range. Characters outside
// these ranges (Japanese text, hyphens) pass through unchanged.
var boldRanges = []struct {
	lo, hi, base rune
}{
	{'A', 'Z', 0x1D5D4}, // 𝗔
	{'a', 'z', 0x1D5EE}, // 𝗮
	{'0', '9', 0x1D7EC}, // 𝟬
}

// MakeBold maps ASCII letters and digits to their Unicode bold forms so
// hover text stands out in renderers that ignore HTML markup.
func MakeBold(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		mapped := r
		for _, rg := range boldRanges {
			if r >= rg.lo && r <= rg.hi {
				mapped = rg.base + (r - rg.lo)
				break
			}
		}
		b.WriteRune(mapped)
	}
	return b.String()
}

// FormatHoverText builds the tooltip shown for a drawing in the
// interactive view: the drawing number in corner brackets, a blank
// spacer line, then one line per column. Root drawings collapse to a
// single Relation line since their other columns all carry the marker.
func FormatHoverText(n *genealogy.Node, columns []string) string {
	lines := []string{fmt.Sprintf("【%s】", MakeBold(n.ID)), ""}

	if n.Root {
		relation := n.Details["Relation"]
		if relation == "" {
			relation = genealogy.RootMarker
		}
		lines = append(lines, fmt.Sprintf("%s: %s", MakeBold("Relation"), relation))
		return strings.Join(lines, "\n")
	}

	for _, col := range columns {
		val := n.Details[col]
		if val == "" {
			val = missingValue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", MakeBold(col), val))
	}
	return strings.Join(lines, "\n")
}
