package types

import (
	"strings"
	"time"
)

// DataFormatVersion is the sequential version of the stored data format
// (schema plus value encodings) produced and expected by this module.
// Dataset selection must only accept resources declaring this version.
const DataFormatVersion = 1

// PinyinSyllable is a stored syllable: lowercase ASCII letters plus a
// concrete tone.
type PinyinSyllable struct {
	Letters string
	Tone    Tone
}

func (s PinyinSyllable) String() string {
	return s.Letters + s.Tone.String()
}

// QuerySyllable is a syllable used in pinyin searches. When Any is set the
// Tone field is ignored and the syllable matches every tone.
type QuerySyllable struct {
	Letters string
	Tone    Tone
	Any     bool
}

func (s QuerySyllable) String() string {
	if s.Any {
		return s.Letters
	}
	return s.Letters + s.Tone.String()
}

// AnyTone returns a query syllable matching letters with any tone.
func AnyTone(letters string) QuerySyllable {
	return QuerySyllable{Letters: letters, Any: true}
}

// Exact converts a stored syllable into a query syllable with a fixed tone.
func (s PinyinSyllable) Exact() QuerySyllable {
	return QuerySyllable{Letters: s.Letters, Tone: s.Tone}
}

// ValidLetters reports whether letters is a nonempty run of [a-z].
func ValidLetters(letters string) bool {
	if letters == "" {
		return false
	}
	for i := 0; i < len(letters); i++ {
		if letters[i] < 'a' || letters[i] > 'z' {
			return false
		}
	}
	return true
}

// DictionaryEntry is an immutable dictionary headword.
type DictionaryEntry struct {
	Traditional string
	Simplified  string
	Pinyin      []PinyinSyllable
	Definitions []string
}

// PinyinString renders the pinyin as space separated numbered syllables,
// e.g. "ai4 xin1".
func (e DictionaryEntry) PinyinString() string {
	parts := make([]string, len(e.Pinyin))
	for i, s := range e.Pinyin {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}

// Clone returns a deep copy so cached values cannot be mutated by callers.
func (e DictionaryEntry) Clone() DictionaryEntry {
	c := e
	c.Pinyin = append([]PinyinSyllable(nil), e.Pinyin...)
	c.Definitions = append([]string(nil), e.Definitions...)
	return c
}

// Metadata is the singleton record describing the installed dataset.
type Metadata struct {
	FormatVersion int
	BuiltAt       time.Time
}
