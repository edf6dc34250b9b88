// Package cedict reads CC-CEDICT source files into dictionary entries.
//
// Each line has the form
//
//	TRADITIONAL SIMPLIFIED [pin1 yin1] /definition 1/definition 2/
//
// Blank lines and lines starting with '#' are ignored. Lines that do not
// yield at least one syllable and one definition are counted as skipped.
package cedict

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/cedict-mcp/pkg/types"
)

const maxLineSize = 1 << 20

// Stats summarises one parse.
type Stats struct {
	Lines   int
	Entries int
	Skipped int
}

// Parse reads every entry from r. Malformed lines are logged and skipped;
// only read errors fail the parse.
func Parse(r io.Reader, logger *zap.Logger) ([]types.DictionaryEntry, *Stats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		entries []types.DictionaryEntry
		stats   Stats
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		stats.Lines++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		entry, err := ParseLine(line)
		if err != nil {
			stats.Skipped++
			logger.Warn("skipping cedict line", zap.Int("line", stats.Lines), zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, &stats, fmt.Errorf("failed to read cedict source: %w", err)
	}

	stats.Entries = len(entries)
	logger.Info("parsed cedict source",
		zap.Int("lines", stats.Lines),
		zap.Int("entries", stats.Entries),
		zap.Int("skipped", stats.Skipped))
	return entries, &stats, nil
}

// ParseLine parses a single non-comment line.
func ParseLine(line string) (types.DictionaryEntry, error) {
	open := strings.IndexByte(line, '[')
	closing := strings.IndexByte(line, ']')
	if open < 0 || closing < open {
		return types.DictionaryEntry{}, fmt.Errorf("%w: missing pinyin brackets in %q", types.ErrInvalidEntry, line)
	}

	characters := strings.Fields(line[:open])
	if len(characters) != 2 {
		return types.DictionaryEntry{}, fmt.Errorf("%w: expected traditional and simplified in %q", types.ErrInvalidEntry, line)
	}

	syllables := parseSyllables(line[open+1 : closing])
	if len(syllables) == 0 {
		return types.DictionaryEntry{}, fmt.Errorf("%w: no pinyin syllables in %q", types.ErrInvalidEntry, line)
	}

	defs := parseDefinitions(line[closing+1:])
	if len(defs) == 0 {
		return types.DictionaryEntry{}, fmt.Errorf("%w: no definitions in %q", types.ErrInvalidEntry, line)
	}

	return types.DictionaryEntry{
		Traditional: characters[0],
		Simplified:  characters[1],
		Pinyin:      syllables,
		Definitions: defs,
	}, nil
}

// parseSyllables keeps the tokens that are letters followed by a tone
// digit. Punctuation tokens such as "," and "·" are dropped.
func parseSyllables(text string) []types.PinyinSyllable {
	var out []types.PinyinSyllable
	for _, tok := range strings.Fields(text) {
		tok = strings.ReplaceAll(strings.ToLower(tok), "u:", "v")
		if len(tok) < 2 {
			continue
		}
		tone, ok := types.ToneFromDigit(tok[len(tok)-1])
		if !ok {
			continue
		}
		letters := tok[:len(tok)-1]
		if !types.ValidLetters(letters) {
			continue
		}
		out = append(out, types.PinyinSyllable{Letters: letters, Tone: tone})
	}
	return out
}

func parseDefinitions(text string) []string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return nil
	}
	var defs []string
	for _, d := range strings.Split(text, "/") {
		if d = strings.TrimSpace(d); d != "" {
			defs = append(defs, d)
		}
	}
	return defs
}
