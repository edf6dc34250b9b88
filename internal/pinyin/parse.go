package pinyin

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/dshills/cedict-mcp/pkg/types"
)

// combining tone marks after NFD decomposition
var toneMarks = map[rune]types.Tone{
	'\u0304': types.Tone1, // macron: ā
	'\u0301': types.Tone2, // acute: á
	'\u030c': types.Tone3, // caron: ǎ
	'\u0300': types.Tone4, // grave: à
}

const diaeresis = '\u0308'

// Parse reads user supplied pinyin into query syllables. It accepts tone
// numbers ("ai4 xin1", "ai4xin1"), tone marks ("ài xīn"), and toneless
// syllables, which match any tone. "ü" and "u:" are written as "v".
func Parse(input string) ([]types.QuerySyllable, error) {
	text := strings.ToLower(width.Narrow.String(strings.TrimSpace(input)))
	if text == "" {
		return nil, fmt.Errorf("%w: empty input", types.ErrInvalidPinyin)
	}
	text = norm.NFD.String(text)

	var (
		out     []types.QuerySyllable
		letters []byte
		tone    types.Tone
	)
	flush := func(explicit types.Tone) error {
		if len(letters) == 0 {
			if explicit != 0 {
				return fmt.Errorf("%w: tone without syllable in %q", types.ErrInvalidPinyin, input)
			}
			return nil
		}
		t := tone
		if explicit != 0 {
			if t != 0 && t != explicit {
				return fmt.Errorf("%w: conflicting tones in %q", types.ErrInvalidPinyin, input)
			}
			t = explicit
		}
		out = append(out, types.QuerySyllable{Letters: string(letters), Tone: t, Any: t == 0})
		letters = letters[:0]
		tone = 0
		return nil
	}

	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z':
			letters = append(letters, byte(r))
		case r == diaeresis || r == ':':
			if len(letters) == 0 || letters[len(letters)-1] != 'u' {
				return nil, fmt.Errorf("%w: misplaced umlaut in %q", types.ErrInvalidPinyin, input)
			}
			letters[len(letters)-1] = 'v'
		case r >= '0' && r <= '5':
			t := types.Tone5
			if r != '0' {
				t = types.Tone(r - '0')
			}
			if err := flush(t); err != nil {
				return nil, err
			}
		case unicode.IsSpace(r) || r == '\'' || r == '’' || r == '-':
			if err := flush(0); err != nil {
				return nil, err
			}
		default:
			mark, ok := toneMarks[r]
			if !ok {
				return nil, fmt.Errorf("%w: unexpected %q in %q", types.ErrInvalidPinyin, r, input)
			}
			if tone != 0 && tone != mark {
				return nil, fmt.Errorf("%w: conflicting tones in %q", types.ErrInvalidPinyin, input)
			}
			tone = mark
		}
	}
	if err := flush(0); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no syllables in %q", types.ErrInvalidPinyin, input)
	}
	return out, nil
}
