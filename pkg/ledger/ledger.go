// Package ledger reads the Excel relationship ledger that drives the
// genealogy diagram.
//
// The ledger is a single sheet whose header row carries two fixed columns,
// Child and Parent, followed by any number of attribute columns (Creator,
// Date, Relation, ...). Each data row records one parent-child relation
// between drawing numbers plus the attributes of the child drawing.
package ledger

import (
	"strings"
	"time"

	"github.com/takumik/keizu/pkg/errors"
)

// Fixed column names required in the header row.
const (
	ColumnChild  = "Child"
	ColumnParent = "Parent"
)

// DefaultSheet is the sheet read when no sheet name is configured.
const DefaultSheet = "Sheet1"

// dateLayout is the canonical form attribute dates are normalized to.
const dateLayout = "2006/01/02"

// Record is one row of the ledger: a child drawing, its optional parent,
// and the dynamic attribute values keyed by column name.
type Record struct {
	Child  string            `json:"child"`
	Parent string            `json:"parent"`
	Attrs  map[string]string `json:"attrs,omitempty"`
}

// Ledger holds the parsed relationship list.
// Columns preserves the dynamic column order from the sheet so displays
// can mirror the source document.
type Ledger struct {
	Sheet   string   `json:"sheet"`
	Columns []string `json:"columns"`
	Records []Record `json:"records"`
}

// parseRows builds a Ledger from raw sheet rows. The first row is the
// header; fixed columns may appear in any position. Rows whose Child and
// Parent cells are both empty are skipped.
func parseRows(sheet string, rows [][]string) (*Ledger, error) {
	if len(rows) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyLedger, "sheet %q has no header row", sheet)
	}

	header := rows[0]
	childIdx, parentIdx := -1, -1
	var dynamic []string
	dynamicIdx := make(map[string]int)

	for i, name := range header {
		name = strings.TrimSpace(name)
		switch name {
		case "":
			continue
		case ColumnChild:
			childIdx = i
		case ColumnParent:
			parentIdx = i
		default:
			dynamic = append(dynamic, name)
			dynamicIdx[name] = i
		}
	}

	var missing []string
	if childIdx < 0 {
		missing = append(missing, ColumnChild)
	}
	if parentIdx < 0 {
		missing = append(missing, ColumnParent)
	}
	if len(missing) > 0 {
		return nil, errors.New(errors.ErrCodeMissingColumn,
			"sheet %q is missing required columns: %s", sheet, strings.Join(missing, ", "))
	}

	l := &Ledger{Sheet: sheet, Columns: dynamic}
	for _, row := range rows[1:] {
		child := cellAt(row, childIdx)
		parent := cellAt(row, parentIdx)
		if child == "" && parent == "" {
			continue
		}

		rec := Record{Child: child, Parent: parent, Attrs: make(map[string]string, len(dynamic))}
		for _, col := range dynamic {
			val := cellAt(row, dynamicIdx[col])
			if col == "Date" {
				val = normalizeDate(val)
			}
			rec.Attrs[col] = val
		}
		l.Records = append(l.Records, rec)
	}

	if len(l.Records) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyLedger, "sheet %q has no data rows", sheet)
	}
	return l, nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// dateLayouts are the cell formats spreadsheet tools commonly emit for
// date cells. Values matching none of them pass through unchanged.
var dateLayouts = []string{
	"2006/01/02",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"01-02-06",
	"1/2/06",
	"Jan 2, 2006",
}

// normalizeDate reformats recognizable date values to 2006/01/02.
func normalizeDate(v string) string {
	if v == "" {
		return v
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(dateLayout)
		}
	}
	return v
}
