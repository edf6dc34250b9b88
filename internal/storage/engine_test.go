package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/dshills/cedict-mcp/internal/query"
	"github.com/dshills/cedict-mcp/pkg/types"
)

func entry(traditional, simplified string, pinyin []types.PinyinSyllable, defs ...string) types.DictionaryEntry {
	return types.DictionaryEntry{Traditional: traditional, Simplified: simplified, Pinyin: pinyin, Definitions: defs}
}

func py(pairs ...any) []types.PinyinSyllable {
	out := make([]types.PinyinSyllable, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, types.PinyinSyllable{Letters: pairs[i].(string), Tone: pairs[i+1].(types.Tone)})
	}
	return out
}

func hanzi(text string, limit, offset int) query.SearchQuery {
	return query.Hanzi(text, limit, offset)
}

func mustPlan(t *testing.T, q query.SearchQuery) *query.Plan {
	t.Helper()
	plan, err := query.NewPlan(q)
	require.NoError(t, err)
	return plan
}

var fixtures = []types.DictionaryEntry{
	entry("愛", "爱", py("ai", types.Tone4), "love", "to love"),
	entry("愛心", "爱心", py("ai", types.Tone4, "xin", types.Tone1), "compassion"),
	entry("可愛", "可爱", py("ke", types.Tone3, "ai", types.Tone4), "cute", "lovely"),
	entry("愛人", "爱人", py("ai", types.Tone4, "ren", types.Tone5), "spouse", "lover"),
	entry("戀愛", "恋爱", py("lian", types.Tone4, "ai", types.Tone4), "to be in love"),
	entry("情", "情", py("qing", types.Tone2), "feeling", "love affair"),
	entry("照", "照", py("zhao", types.Tone4), "to shine", "to illuminate"),
	entry("好", "好", py("hao", types.Tone3), "good", "well"),
	entry("號", "号", py("hao", types.Tone4), "number"),
	entry("行", "行", py("hang", types.Tone2), "row", "line"),
	entry("漢", "汉", py("han", types.Tone4), "Han ethnic group"),
}

// EngineSuite runs the ranking contract against one Storage engine.
type EngineSuite struct {
	suite.Suite
	open  func(t *testing.T) Storage
	store Storage
	ctx   context.Context
}

func (s *EngineSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.open(s.T())
	s.Require().NoError(s.store.CreateSchema(s.ctx))
	s.Require().NoError(s.store.Add(s.ctx, fixtures))
}

func (s *EngineSuite) TearDownTest() {
	s.NoError(s.store.Close())
}

func (s *EngineSuite) search(q query.SearchQuery) []string {
	rows, err := s.store.Search(s.ctx, mustPlan(s.T(), q))
	s.Require().NoError(err)
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Simplified
	}
	return out
}

func anyTone(letters ...string) []types.QuerySyllable {
	out := make([]types.QuerySyllable, len(letters))
	for i, l := range letters {
		out[i] = types.AnyTone(l)
	}
	return out
}

func (s *EngineSuite) TestCount() {
	n, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(len(fixtures), n)
}

func (s *EngineSuite) TestHanziRanking() {
	s.Equal([]string{"爱", "爱人", "爱心", "可爱", "恋爱"}, s.search(hanzi("爱", 10, 0)))
	s.Empty(s.search(hanzi("猫", 10, 0)))
}

func (s *EngineSuite) TestPinyinExactBeforeExtended() {
	s.Equal([]string{"爱", "爱人", "爱心"}, s.search(query.Pinyin(anyTone("ai"), 10, 0)))
}

func (s *EngineSuite) TestPinyinPrefixSafety() {
	s.Equal([]string{"好", "号"}, s.search(query.Pinyin(anyTone("hao"), 10, 0)))
	s.Equal([]string{"汉"}, s.search(query.Pinyin(anyTone("han"), 10, 0)))
	s.Empty(s.search(query.Pinyin(anyTone("ha"), 10, 0)))
}

func (s *EngineSuite) TestPinyinTones() {
	s.Equal([]string{"号"}, s.search(query.Pinyin([]types.QuerySyllable{{Letters: "hao", Tone: types.Tone4}}, 10, 0)))

	syllables := []types.QuerySyllable{{Letters: "ai", Tone: types.Tone4}, {Letters: "xin", Any: true}}
	s.Equal([]string{"爱心"}, s.search(query.Pinyin(syllables, 10, 0)))
}

func (s *EngineSuite) TestDefinitionTiers() {
	s.Equal([]string{"爱", "情", "恋爱", "爱人", "可爱"}, s.search(query.Definition("love", 10, 0)))
}

func (s *EngineSuite) TestLiteralMatching() {
	s.Empty(s.search(query.Definition("%", 10, 0)))
	s.Empty(s.search(hanzi("_", 10, 0)))
}

func (s *EngineSuite) TestDefinitionIgnoresASCIICase() {
	s.Equal(s.search(query.Definition("love", 10, 0)), s.search(query.Definition("LOVE", 10, 0)))
	s.Equal([]string{"汉"}, s.search(query.Definition("han", 10, 0)))
	s.Equal([]string{"汉"}, s.search(query.Definition("HAN ETHNIC GROUP", 10, 0)))
}

func (s *EngineSuite) TestPagination() {
	first := s.search(hanzi("爱", 2, 0))
	s.Equal([]string{"爱", "爱人"}, first)
	s.Equal(first, s.search(hanzi("爱", 2, 0)))
	s.Equal([]string{"爱心", "可爱"}, s.search(hanzi("爱", 2, 2)))
	s.Equal([]string{"恋爱"}, s.search(hanzi("爱", 2, 4)))

	beyond := s.search(hanzi("爱", 2, 50))
	s.NotNil(beyond)
	s.Empty(beyond)

	s.Empty(s.search(hanzi("爱", 0, 0)))
}

func (s *EngineSuite) TestSearchCancelled() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	_, err := s.store.Search(ctx, mustPlan(s.T(), hanzi("爱", 10, 0)))
	s.ErrorIs(err, context.Canceled)
}

func (s *EngineSuite) TestMetadata() {
	_, err := s.store.Metadata(s.ctx)
	s.ErrorIs(err, types.ErrMetadataUnavailable)
	_, err = s.store.CurrentDataFormatVersion(s.ctx)
	s.ErrorIs(err, types.ErrMetadataUnavailable)

	built := time.Date(2024, 3, 1, 12, 30, 0, 123456789, time.UTC)
	s.Require().NoError(s.store.PopulateMetadata(s.ctx, 1, built))
	s.Require().NoError(s.store.PopulateMetadata(s.ctx, 2, built))

	md, err := s.store.Metadata(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, md.FormatVersion)
	s.True(built.Equal(md.BuiltAt))

	version, err := s.store.CurrentDataFormatVersion(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, version)
}

func (s *EngineSuite) TestCreateSchemaDiscardsData() {
	s.Require().NoError(s.store.PopulateMetadata(s.ctx, types.DataFormatVersion, time.Now()))
	s.Require().NoError(s.store.CreateSchema(s.ctx))

	n, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)

	_, err = s.store.Metadata(s.ctx)
	s.ErrorIs(err, types.ErrMetadataUnavailable)
}

func (s *EngineSuite) TestAddIsAtomic() {
	batch := []types.DictionaryEntry{
		entry("貓", "猫", py("mao", types.Tone1), "cat"),
		entry("狗", "狗", []types.PinyinSyllable{{Letters: "gou", Tone: 9}}, "dog"),
		entry("魚", "鱼", py("yu", types.Tone2), "fish"),
	}
	err := s.store.Add(s.ctx, batch)
	s.ErrorIs(err, types.ErrBulkInsertFailed)
	s.ErrorIs(err, types.ErrInvalidEntry)

	n, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(len(fixtures), n)
	s.Empty(s.search(hanzi("猫", 10, 0)))
}

func (s *EngineSuite) TestAddEntry() {
	s.Require().NoError(s.store.AddEntry(s.ctx, entry("貓", "猫", py("mao", types.Tone1), "cat")))
	s.Equal([]string{"猫"}, s.search(hanzi("猫", 10, 0)))

	err := s.store.AddEntry(s.ctx, entry("貓", "猫", py("mao", types.Tone1), "a/b"))
	s.ErrorIs(err, types.ErrInvalidEntry)
}

func (s *EngineSuite) TestReadersDuringAdd() {
	batch := make([]types.DictionaryEntry, 200)
	for i := range batch {
		batch[i] = entry("貓", "猫", py("mao", types.Tone1), "cat")
	}

	plan := mustPlan(s.T(), hanzi("猫", 1000, 0))
	var wg sync.WaitGroup
	counts := make(chan int, 64)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			rows, err := s.store.Search(s.ctx, plan)
			if err != nil {
				return
			}
			counts <- len(rows)
		}
	}()
	s.Require().NoError(s.store.Add(s.ctx, batch))
	wg.Wait()
	close(counts)

	for n := range counts {
		s.True(n == 0 || n == len(batch), "reader saw a partial batch of %d", n)
	}
}

func TestSQLiteEngine(t *testing.T) {
	suite.Run(t, &EngineSuite{open: func(t *testing.T) Storage { return setupTestDB(t) }})
}

func TestMemoryEngine(t *testing.T) {
	suite.Run(t, &EngineSuite{open: func(*testing.T) Storage { return NewMemoryStorage() }})
}

func TestEnginesAgree(t *testing.T) {
	ctx := context.Background()
	sqlite := setupTestDB(t)
	defer sqlite.Close()
	memory := NewMemoryStorage()
	for _, store := range []Storage{sqlite, memory} {
		require.NoError(t, store.Add(ctx, fixtures))
	}

	queries := []query.SearchQuery{
		hanzi("爱", 3, 1),
		hanzi("", 100, 0),
		query.Pinyin(anyTone("ai"), 10, 0),
		query.Pinyin(anyTone("hao"), 10, 0),
		query.Definition("love", 10, 0),
		query.Definition("o", 4, 2),
		query.Definition("LOVE", 10, 0),
		query.Definition("Han", 10, 0),
		query.Definition("", 100, 0),
	}
	for _, q := range queries {
		plan := mustPlan(t, q)
		want, err := memory.Search(ctx, plan)
		require.NoError(t, err)
		got, err := sqlite.Search(ctx, plan)
		require.NoError(t, err)
		assert.Equal(t, want, got, "%s %q", q.Mode, q.Input())
	}
}
