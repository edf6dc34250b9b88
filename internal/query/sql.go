package query

// Column names of the persisted entry table that a SQL rendering refers to.
const (
	ColumnID          = "id"
	ColumnTraditional = "traditional"
	ColumnSimplified  = "simplified"
	ColumnPinyin      = "pinyin"
	ColumnDefinitions = "english"
)

// SQL is a plan rendered for SQLite. Where and OrderBy are fragments without
// their keywords; their placeholders bind WhereArgs and OrderArgs in order.
type SQL struct {
	Where     string
	WhereArgs []any
	OrderBy   string
	OrderArgs []any
}

// Args returns the where arguments followed by the order arguments.
func (s SQL) Args() []any {
	args := make([]any, 0, len(s.WhereArgs)+len(s.OrderArgs))
	args = append(args, s.WhereArgs...)
	return append(args, s.OrderArgs...)
}

// tieBreak mirrors compare after the tier. length() counts characters and
// text comparison uses the BINARY collation, which matches Go byte order.
const tieBreak = "length(" + ColumnSimplified + "), " +
	ColumnPinyin + ", " + ColumnSimplified + ", " + ColumnTraditional + ", " + ColumnID

// SQL renders the predicate and ordering. Matching uses instr and GLOB
// rather than LIKE so that user text is compared literally. Definitions are
// compared ASCII case-insensitively through lower().
func (p *Plan) SQL() SQL {
	switch p.query.Mode {
	case ModePinyin:
		glob := p.pattern.Glob()
		return SQL{
			Where:     ColumnPinyin + " GLOB ?",
			WhereArgs: []any{glob + "*"},
			OrderBy:   "CASE WHEN " + ColumnPinyin + " GLOB ? THEN 0 ELSE 1 END, " + tieBreak,
			OrderArgs: []any{glob + " "},
		}
	case ModeDefinition:
		defs := "lower(" + ColumnDefinitions + ")"
		return SQL{
			Where:     "instr(" + defs + ", ?) > 0",
			WhereArgs: []any{p.needle},
			OrderBy: "CASE" +
				" WHEN instr(" + defs + ", ?) > 0 THEN 0" +
				" WHEN instr(" + defs + ", ?) > 0 THEN 1" +
				" WHEN instr(" + defs + ", ?) > 0 THEN 2" +
				" ELSE 3 END, " + tieBreak,
			OrderArgs: []any{p.whole, p.leading, p.trailing},
		}
	default:
		return SQL{
			Where:     "instr(" + ColumnSimplified + ", ?) > 0",
			WhereArgs: []any{p.query.Text},
			OrderBy:   "CASE WHEN instr(" + ColumnSimplified + ", ?) = 1 THEN 0 ELSE 1 END, " + tieBreak,
			OrderArgs: []any{p.query.Text},
		}
	}
}
