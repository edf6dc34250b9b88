// Package storage persists dictionary entries and the dataset metadata
// record.
//
// Two engines implement Storage:
//   - SQLiteStorage: the persistent store. Plans are rendered to SQL with
//     query.Plan.SQL and cancelled searches interrupt the running statement.
//   - MemoryStorage: a slice scanned with query.Plan.Rank, used for tests and
//     small embedded dictionaries.
//
// # Database Schema
//
// Tables:
//   - dictionary_entry: traditional, simplified, pinyin (encoded), english
//     (encoded definitions)
//   - dictionary_metadata: singleton row (id 1) with format_version and
//     built_at
//   - schema_version: applied migrations
//
// CreateSchema drops and recreates every table. Add is all-or-nothing:
//
//	if err := store.CreateSchema(ctx); err != nil {
//	    return err
//	}
//	if err := store.Add(ctx, entries); err != nil {
//	    return err // store is unchanged
//	}
//	err := store.PopulateMetadata(ctx, types.DataFormatVersion, time.Now())
//
// # Build Tags
//
// Pure Go Build (default):
//
//   - Uses modernc.org/sqlite driver
//
//   - No C compiler needed
//
//     CGO_ENABLED=0 go build ./...
//
// CGO Build (sqlite_cgo tag):
//
//   - Uses github.com/mattn/go-sqlite3 driver
//
//     CGO_ENABLED=1 go build -tags "sqlite_cgo" ./...
package storage
