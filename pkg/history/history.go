// Package history records completed render runs so the server can show
// what was rendered recently without keeping the workbooks themselves.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultLimit caps List results when the caller passes zero.
const DefaultLimit = 50

// Entry describes one completed render run. Only derived metadata is
// stored; ledger contents never leave the request.
type Entry struct {
	ID         string    `json:"id" bson:"_id"`
	LedgerHash string    `json:"ledger_hash" bson:"ledger_hash"`
	Sheet      string    `json:"sheet" bson:"sheet"`
	Formats    []string  `json:"formats" bson:"formats"`
	NodeCount  int       `json:"node_count" bson:"node_count"`
	EdgeCount  int       `json:"edge_count" bson:"edge_count"`
	CacheHit   bool      `json:"cache_hit" bson:"cache_hit"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// NewEntry creates an entry with a fresh ID and timestamp.
func NewEntry(ledgerHash, sheet string, formats []string, nodeCount, edgeCount int, cacheHit bool) Entry {
	return Entry{
		ID:         uuid.NewString(),
		LedgerHash: ledgerHash,
		Sheet:      sheet,
		Formats:    formats,
		NodeCount:  nodeCount,
		EdgeCount:  edgeCount,
		CacheHit:   cacheHit,
		CreatedAt:  time.Now().UTC(),
	}
}

// Store persists render history.
type Store interface {
	// Add records a completed run.
	Add(ctx context.Context, e Entry) error

	// List returns the most recent entries, newest first. A zero limit
	// uses DefaultLimit.
	List(ctx context.Context, limit int) ([]Entry, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}
