package storage

import (
	"github.com/dshills/cedict-mcp/internal/definition"
	"github.com/dshills/cedict-mcp/internal/pinyin"
	"github.com/dshills/cedict-mcp/internal/query"
	"github.com/dshills/cedict-mcp/pkg/types"
)

// encodeEntry converts an entry into its persisted form. ID is left zero.
func encodeEntry(e types.DictionaryEntry) (query.Row, error) {
	encodedPinyin, err := pinyin.Encode(e.Pinyin)
	if err != nil {
		return query.Row{}, err
	}
	encodedDefs, err := definition.Encode(e.Definitions)
	if err != nil {
		return query.Row{}, err
	}
	return query.Row{
		Traditional: e.Traditional,
		Simplified:  e.Simplified,
		Pinyin:      encodedPinyin,
		Definitions: encodedDefs,
	}, nil
}
