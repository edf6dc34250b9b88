package storage

import (
	"context"
	"time"

	"github.com/dshills/cedict-mcp/internal/query"
	"github.com/dshills/cedict-mcp/pkg/types"
)

// Storage holds encoded dictionary entries plus the singleton metadata
// record. Implementations must satisfy the match and ordering contract of
// query.Plan exactly.
type Storage interface {
	// Schema operations
	CreateSchema(ctx context.Context) error

	// Metadata operations
	PopulateMetadata(ctx context.Context, version int, builtAt time.Time) error
	Metadata(ctx context.Context) (*types.Metadata, error)
	CurrentDataFormatVersion(ctx context.Context) (int, error)

	// Entry operations
	Add(ctx context.Context, entries []types.DictionaryEntry) error
	AddEntry(ctx context.Context, entry types.DictionaryEntry) error
	Count(ctx context.Context) (int, error)

	// Search returns one ordered page of rows for the plan. Implementations
	// abort promptly when ctx is cancelled.
	Search(ctx context.Context, plan *query.Plan) ([]query.Row, error)

	// Database operations
	Close() error
}
