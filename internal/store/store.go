// Package store persists fetched research reports across runs. Two
// implementations share the contract: a JSON file for single-host
// deployments and a PostgreSQL table for anything bigger.
package store

import (
	"context"

	"github.com/mgkim1976-spec/research-based-wm/internal/types"
)

// Store is the durable report store. Appends are safe under concurrent use
// by the background refresher and foreground routine runs; at-least-once
// writes are acceptable because insertion deduplicates by report identity.
type Store interface {
	// AppendNew inserts reports not already present (by report id) and
	// returns the number actually inserted.
	AppendNew(ctx context.Context, reports []*types.ResearchReport) (int, error)
	// LoadAll returns every stored report sorted by date descending. An
	// absent or corrupt backing store yields an empty slice, not an error.
	LoadAll(ctx context.Context) ([]*types.ResearchReport, error)
}
