package query

import (
	"fmt"
	"strings"

	"github.com/dshills/cedict-mcp/pkg/types"
)

// Mode selects which field a query is matched against.
type Mode int

const (
	ModeHanzi      Mode = iota + 1 // simplified characters
	ModePinyin                     // encoded pinyin
	ModeDefinition                 // encoded English definitions
)

func (m Mode) String() string {
	switch m {
	case ModeHanzi:
		return "hanzi"
	case ModePinyin:
		return "pinyin"
	case ModeDefinition:
		return "definition"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hanzi", "chinese":
		return ModeHanzi, nil
	case "pinyin":
		return ModePinyin, nil
	case "definition", "english":
		return ModeDefinition, nil
	default:
		return 0, fmt.Errorf("%w: unknown mode %q", types.ErrInvalidQuery, s)
	}
}

// SearchQuery describes one page of a search. Text is used by the Hanzi and
// Definition modes, Syllables by the Pinyin mode.
type SearchQuery struct {
	Mode      Mode
	Text      string
	Syllables []types.QuerySyllable
	Limit     int
	Offset    int
}

// Hanzi builds a query over simplified characters.
func Hanzi(text string, limit, offset int) SearchQuery {
	return SearchQuery{Mode: ModeHanzi, Text: text, Limit: limit, Offset: offset}
}

// Pinyin builds a query over pinyin syllables.
func Pinyin(syllables []types.QuerySyllable, limit, offset int) SearchQuery {
	return SearchQuery{Mode: ModePinyin, Syllables: syllables, Limit: limit, Offset: offset}
}

// Definition builds a query over English definitions.
func Definition(text string, limit, offset int) SearchQuery {
	return SearchQuery{Mode: ModeDefinition, Text: text, Limit: limit, Offset: offset}
}

// Validate checks the query without touching any backend.
func (q SearchQuery) Validate() error {
	if q.Limit < 0 {
		return fmt.Errorf("%w: limit %d", types.ErrInvalidQuery, q.Limit)
	}
	if q.Offset < 0 {
		return fmt.Errorf("%w: offset %d", types.ErrInvalidQuery, q.Offset)
	}
	switch q.Mode {
	case ModeHanzi, ModeDefinition:
		return nil
	case ModePinyin:
		if len(q.Syllables) == 0 {
			return fmt.Errorf("%w: no pinyin syllables", types.ErrInvalidQuery)
		}
		return nil
	default:
		return fmt.Errorf("%w: mode %d", types.ErrInvalidQuery, int(q.Mode))
	}
}

// Input returns a printable form of the query input for logs and errors.
func (q SearchQuery) Input() string {
	if q.Mode != ModePinyin {
		return q.Text
	}
	parts := make([]string, len(q.Syllables))
	for i, s := range q.Syllables {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}
