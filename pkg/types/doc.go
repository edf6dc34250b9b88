// Package types provides shared type definitions for the cedict-mcp dictionary.
//
// This package defines the domain values passed between the codecs, the
// entry store, the ranking engine and the MCP layer.
//
// # Core Types
//
// DictionaryEntry is one headword with its readings and English glosses:
//
//	entry := types.DictionaryEntry{
//	    Traditional: "愛心",
//	    Simplified:  "爱心",
//	    Pinyin: []types.PinyinSyllable{
//	        {Letters: "ai", Tone: types.Tone4},
//	        {Letters: "xin", Tone: types.Tone1},
//	    },
//	    Definitions: []string{"compassion", "kindness"},
//	}
//
// # Tones
//
// A stored syllable always carries one of the five concrete tones. The
// "any tone" wildcard only exists on QuerySyllable, so it cannot reach the
// entry store:
//
//	q := types.QuerySyllable{Letters: "ai", Any: true}
//
// # Errors
//
// errors.go holds the sentinel errors shared by every package. Callers branch
// with errors.Is:
//
//	if errors.Is(err, types.ErrSearchCancelled) {
//	    return // caller gave up
//	}
package types
