package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dshills/cedict-mcp/internal/query"
	"github.com/dshills/cedict-mcp/pkg/types"
)

// MemoryStorage keeps entries in a slice and evaluates plans with a scan.
// Writers only ever append past the length that readers captured, or swap in
// a fresh slice, so a reader's snapshot never changes under it.
type MemoryStorage struct {
	mu       sync.RWMutex
	rows     []query.Row
	nextID   int64
	metadata *types.Metadata
}

// NewMemoryStorage returns an empty store with its schema in place.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{nextID: 1}
}

func (m *MemoryStorage) CreateSchema(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = nil
	m.nextID = 1
	m.metadata = nil
	return nil
}

func (m *MemoryStorage) PopulateMetadata(ctx context.Context, version int, builtAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to populate metadata: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadata = &types.Metadata{FormatVersion: version, BuiltAt: builtAt.UTC()}
	return nil
}

func (m *MemoryStorage) Metadata(_ context.Context) (*types.Metadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.metadata == nil {
		return nil, types.ErrMetadataUnavailable
	}
	md := *m.metadata
	return &md, nil
}

func (m *MemoryStorage) CurrentDataFormatVersion(ctx context.Context) (int, error) {
	md, err := m.Metadata(ctx)
	if err != nil {
		return 0, err
	}
	return md.FormatVersion, nil
}

// Add encodes the whole batch before publishing any of it.
func (m *MemoryStorage) Add(ctx context.Context, entries []types.DictionaryEntry) error {
	batch := make([]query.Row, 0, len(entries))
	for i, e := range entries {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("%w: %w", types.ErrBulkInsertFailed, err)
			}
		}
		row, err := encodeEntry(e)
		if err != nil {
			return fmt.Errorf("%w: entry %d: %w", types.ErrBulkInsertFailed, i, err)
		}
		batch = append(batch, row)
	}
	m.publish(batch)
	return nil
}

func (m *MemoryStorage) AddEntry(ctx context.Context, entry types.DictionaryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	row, err := encodeEntry(entry)
	if err != nil {
		return err
	}
	m.publish([]query.Row{row})
	return nil
}

func (m *MemoryStorage) publish(batch []query.Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range batch {
		batch[i].ID = m.nextID
		m.nextID++
	}
	m.rows = append(m.rows, batch...)
}

func (m *MemoryStorage) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows), nil
}

func (m *MemoryStorage) Search(ctx context.Context, plan *query.Plan) ([]query.Row, error) {
	m.mu.RLock()
	snapshot := m.rows
	m.mu.RUnlock()
	return plan.Rank(ctx, snapshot)
}

func (m *MemoryStorage) Close() error {
	return nil
}
