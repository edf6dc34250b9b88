package types

import "errors"

var (
	// ErrInvalidQuery is returned for malformed queries (negative limit or
	// offset, bad pinyin letters). It is always raised before any I/O.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrMalformedEncoding indicates corrupt stored pinyin or definitions.
	ErrMalformedEncoding = errors.New("malformed encoding")
	// ErrMetadataUnavailable is returned when no metadata record exists.
	ErrMetadataUnavailable = errors.New("dictionary metadata unavailable")
	// ErrSearchCancelled is returned when the caller cancelled a search.
	ErrSearchCancelled = errors.New("search cancelled")
	// ErrSearchFailed wraps every other failure of a search.
	ErrSearchFailed = errors.New("search failed")
	// ErrBulkInsertFailed is returned when an atomic batch was rolled back.
	ErrBulkInsertFailed = errors.New("bulk insert failed")
	// ErrInvalidEntry is returned for entries that cannot be encoded.
	ErrInvalidEntry = errors.New("invalid dictionary entry")
	// ErrInvalidPinyin is returned when query text cannot be read as pinyin.
	ErrInvalidPinyin = errors.New("invalid pinyin")
)
