package query

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dshills/cedict-mcp/internal/pinyin"
)

// checkEvery is how many rows an in-memory scan processes between context
// checks.
const checkEvery = 256

// Row is an entry as persisted: pinyin and definitions are codec encoded.
// ID is the insertion order and serves as the last tie-break.
type Row struct {
	ID          int64
	Traditional string
	Simplified  string
	Pinyin      string
	Definitions string
}

// Plan is a validated query turned into a match predicate and a total order.
// Storage engines either evaluate it directly (Rank) or render the same
// contract in their own query language.
type Plan struct {
	query   SearchQuery
	pattern pinyin.Pattern

	// definition needles, ASCII lower-cased
	needle, whole, leading, trailing string
}

// NewPlan validates q and prepares its predicate.
func NewPlan(q SearchQuery) (*Plan, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	p := &Plan{query: q}
	switch q.Mode {
	case ModePinyin:
		pattern, err := pinyin.BuildSearchPattern(q.Syllables)
		if err != nil {
			return nil, err
		}
		p.pattern = pattern
	case ModeDefinition:
		p.needle = foldASCII(q.Text)
		p.whole = "/ " + p.needle + " /"
		p.leading = "/ " + p.needle + " "
		p.trailing = " " + p.needle + " /"
	}
	return p, nil
}

func (p *Plan) Mode() Mode              { return p.query.Mode }
func (p *Plan) Text() string            { return p.query.Text }
func (p *Plan) Pattern() pinyin.Pattern { return p.pattern }
func (p *Plan) Limit() int              { return p.query.Limit }
func (p *Plan) Offset() int             { return p.query.Offset }
func (p *Plan) Query() SearchQuery      { return p.query }

// DefinitionNeedles returns the whole, leading and trailing definition
// fragments that select tiers 0, 1 and 2. They are ASCII lower-cased and
// are compared against lower-cased definitions.
func (p *Plan) DefinitionNeedles() (whole, leading, trailing string) {
	return p.whole, p.leading, p.trailing
}

// Key identifies the plan's result page, for caching.
func (p *Plan) Key() string {
	return fmt.Sprintf("%d|%s|%s|%d|%d", p.query.Mode, p.query.Text, p.pattern, p.query.Limit, p.query.Offset)
}

// Match is the plan's predicate.
func (p *Plan) Match(r Row) bool {
	switch p.query.Mode {
	case ModeHanzi:
		return strings.Contains(r.Simplified, p.query.Text)
	case ModePinyin:
		ok, _ := p.pattern.Match(r.Pinyin)
		return ok
	case ModeDefinition:
		return strings.Contains(foldASCII(r.Definitions), p.needle)
	}
	return false
}

// Tier ranks a matching row; lower is better. Rows that fit none of the finer
// conditions of their mode land in the last tier.
func (p *Plan) Tier(r Row) int {
	switch p.query.Mode {
	case ModeHanzi:
		if strings.HasPrefix(r.Simplified, p.query.Text) {
			return 0
		}
		return 1
	case ModePinyin:
		if _, exact := p.pattern.Match(r.Pinyin); exact {
			return 0
		}
		return 1
	case ModeDefinition:
		defs := foldASCII(r.Definitions)
		switch {
		case strings.Contains(defs, p.whole):
			return 0
		case strings.Contains(defs, p.leading):
			return 1
		case strings.Contains(defs, p.trailing):
			return 2
		default:
			return 3
		}
	}
	return 0
}

// foldASCII lower-cases A-Z only, the same folding SQLite's lower() applies,
// so both engines agree on non-ASCII text.
func foldASCII(s string) string {
	i := strings.IndexFunc(s, func(r rune) bool { return 'A' <= r && r <= 'Z' })
	if i < 0 {
		return s
	}
	b := []byte(s)
	for ; i < len(b); i++ {
		if 'A' <= b[i] && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

type ranked struct {
	row    Row
	tier   int
	length int
}

// compare orders by tier, simplified length in characters, encoded pinyin,
// then simplified, traditional and insertion order so the order is total.
func compare(a, b ranked) int {
	if c := cmp.Compare(a.tier, b.tier); c != 0 {
		return c
	}
	if c := cmp.Compare(a.length, b.length); c != 0 {
		return c
	}
	if c := strings.Compare(a.row.Pinyin, b.row.Pinyin); c != 0 {
		return c
	}
	if c := strings.Compare(a.row.Simplified, b.row.Simplified); c != 0 {
		return c
	}
	if c := strings.Compare(a.row.Traditional, b.row.Traditional); c != 0 {
		return c
	}
	return cmp.Compare(a.row.ID, b.row.ID)
}

// Less reports whether a sorts before b. Both rows are assumed to match.
func (p *Plan) Less(a, b Row) bool {
	return compare(p.rank(a), p.rank(b)) < 0
}

func (p *Plan) rank(r Row) ranked {
	return ranked{row: r, tier: p.Tier(r), length: utf8.RuneCountInString(r.Simplified)}
}

// Rank filters rows with the predicate, orders them and returns the
// requested page. The scan stops early when ctx is cancelled.
func (p *Plan) Rank(ctx context.Context, rows []Row) ([]Row, error) {
	matched := make([]ranked, 0)
	for i, r := range rows {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if p.Match(r) {
			matched = append(matched, p.rank(r))
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	slices.SortFunc(matched, compare)

	page := make([]Row, 0)
	if p.query.Offset >= len(matched) {
		return page, nil
	}
	end := len(matched)
	if p.query.Limit < end-p.query.Offset {
		end = p.query.Offset + p.query.Limit
	}
	for _, r := range matched[p.query.Offset:end] {
		page = append(page, r.row)
	}
	return page, nil
}
