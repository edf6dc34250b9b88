package pinyin

import (
	"fmt"
	"strings"

	"github.com/dshills/cedict-mcp/pkg/types"
)

const (
	// separator precedes every syllable and terminates the encoding. A
	// syllable token can therefore never be read as the prefix of a longer
	// one ("hao" vs "zhao", "han" vs "hang").
	separator = ' '

	// Wildcard stands in for the tone digit of an any-tone query syllable.
	Wildcard = '?'
)

// Encode renders stored syllables as " letters tone letters tone ... ".
func Encode(syllables []types.PinyinSyllable) (string, error) {
	if len(syllables) == 0 {
		return "", fmt.Errorf("%w: pinyin must not be empty", types.ErrInvalidEntry)
	}
	var sb strings.Builder
	sb.Grow(len(syllables)*6 + 1)
	for _, s := range syllables {
		if !types.ValidLetters(s.Letters) {
			return "", fmt.Errorf("%w: syllable letters %q", types.ErrInvalidEntry, s.Letters)
		}
		if !s.Tone.Valid() {
			return "", fmt.Errorf("%w: syllable %q has tone %d", types.ErrInvalidEntry, s.Letters, s.Tone)
		}
		sb.WriteByte(separator)
		sb.WriteString(s.Letters)
		sb.WriteByte(s.Tone.Digit())
	}
	sb.WriteByte(separator)
	return sb.String(), nil
}

// Decode parses the output of Encode.
func Decode(text string) ([]types.PinyinSyllable, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty pinyin", types.ErrMalformedEncoding)
	}
	tokens := strings.Split(trimmed, string(separator))
	syllables := make([]types.PinyinSyllable, 0, len(tokens))
	for _, tok := range tokens {
		if len(tok) < 2 {
			return nil, fmt.Errorf("%w: pinyin token %q in %q", types.ErrMalformedEncoding, tok, text)
		}
		tone, ok := types.ToneFromDigit(tok[len(tok)-1])
		if !ok {
			return nil, fmt.Errorf("%w: pinyin token %q has no tone digit", types.ErrMalformedEncoding, tok)
		}
		letters := tok[:len(tok)-1]
		if !types.ValidLetters(letters) {
			return nil, fmt.Errorf("%w: pinyin token %q", types.ErrMalformedEncoding, tok)
		}
		syllables = append(syllables, types.PinyinSyllable{Letters: letters, Tone: tone})
	}
	return syllables, nil
}

// Pattern is a prefix pattern over encoded pinyin. It has the same layout as
// an encoding without the trailing separator, with Wildcard in place of the
// tone digit of any-tone syllables.
type Pattern string

// BuildSearchPattern builds the prefix pattern for a pinyin query.
func BuildSearchPattern(syllables []types.QuerySyllable) (Pattern, error) {
	var sb strings.Builder
	for _, s := range syllables {
		if !types.ValidLetters(s.Letters) {
			return "", fmt.Errorf("%w: syllable letters %q", types.ErrInvalidQuery, s.Letters)
		}
		sb.WriteByte(separator)
		sb.WriteString(s.Letters)
		switch {
		case s.Any:
			sb.WriteByte(Wildcard)
		case s.Tone.Valid():
			sb.WriteByte(s.Tone.Digit())
		default:
			return "", fmt.Errorf("%w: syllable %q has tone %d", types.ErrInvalidQuery, s.Letters, s.Tone)
		}
	}
	return Pattern(sb.String()), nil
}

// Match reports whether encoded starts with the pattern, and whether the
// pattern covers the whole syllable sequence. Wildcard only matches a tone
// digit, never a letter.
func (p Pattern) Match(encoded string) (matched, exact bool) {
	if len(encoded) < len(p) {
		return false, false
	}
	for i := 0; i < len(p); i++ {
		c := encoded[i]
		if p[i] == Wildcard {
			if _, ok := types.ToneFromDigit(c); !ok {
				return false, false
			}
			continue
		}
		if p[i] != c {
			return false, false
		}
	}
	exact = len(encoded) == len(p)+1 && encoded[len(p)] == separator
	return true, exact
}

// Glob renders the pattern for SQLite GLOB. Letters, digits and spaces carry
// no GLOB meaning, so only the wildcard needs translating.
func (p Pattern) Glob() string {
	return strings.ReplaceAll(string(p), string(Wildcard), "[1-5]")
}
