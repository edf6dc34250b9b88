package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dshills/cedict-mcp/internal/config"
	"github.com/dshills/cedict-mcp/internal/dictionary"
	"github.com/dshills/cedict-mcp/internal/storage"
	"github.com/dshills/cedict-mcp/pkg/types"
)

const sampleCedict = `# CC-CEDICT
愛 爱 [ai4] /to love/affection/
愛心 爱心 [ai4 xin1] /compassion/
愛人 爱人 [ai4 ren5] /spouse/lover/
情 情 [qing2] /feeling/love affair/
好 好 [hao3] /good/well/
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cedict_ts.u8")
	require.NoError(t, os.WriteFile(path, []byte(sampleCedict), 0o600))
	return path
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dict := dictionary.New(storage.NewMemoryStorage(), dictionary.WithWorkers(2))
	t.Cleanup(func() { _ = dict.Close() })
	return newServer(dict, 20, zap.NewNop())
}

func installedServer(t *testing.T) *Server {
	t.Helper()
	s := newTestServer(t)
	_, err := s.dict.InstallFile(context.Background(), writeSample(t))
	require.NoError(t, err)
	return s
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	var text string
	switch c := result.Content[0].(type) {
	case mcp.TextContent:
		text = c.Text
	case *mcp.TextContent:
		text = c.Text
	default:
		t.Fatalf("unexpected content type %T", result.Content[0])
	}

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	return out
}

func requireCode(t *testing.T, err error, code int) {
	t.Helper()
	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr), "expected *MCPError, got %v", err)
	assert.Equal(t, code, mcpErr.Code, mcpErr.Message)
}

func resultWords(t *testing.T, out map[string]interface{}) []string {
	t.Helper()
	results, ok := out["results"].([]interface{})
	require.True(t, ok)
	words := make([]string, len(results))
	for i, r := range results {
		words[i] = r.(map[string]interface{})["simplified"].(string)
	}
	return words
}

func TestNewServer(t *testing.T) {
	cfg := config.Default()
	cfg.DBPath = filepath.Join(t.TempDir(), "nested", "dictionary.db")

	s, err := NewServer(cfg, nil)
	require.NoError(t, err)
	defer func() { _ = s.dict.Close() }()

	assert.NotNil(t, s.mcp)
	assert.NotNil(t, s.dict)
	assert.Equal(t, cfg.DefaultLimit, s.defaultLimit)
	assert.FileExists(t, cfg.DBPath)
}

func TestNewServer_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Workers = 0
	_, err := NewServer(cfg, nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestSearchDictionary(t *testing.T) {
	s := installedServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]interface{}
		want []string
	}{
		{"auto hanzi", map[string]interface{}{"query": "爱"}, []string{"爱", "爱人", "爱心"}},
		{"auto pinyin", map[string]interface{}{"query": "ai4"}, []string{"爱", "爱人", "爱心"}},
		{"auto english", map[string]interface{}{"query": "feeling"}, []string{"情"}},
		{"explicit pinyin with offset", map[string]interface{}{"query": "ai", "mode": "pinyin", "offset": float64(1), "limit": float64(1)}, []string{"爱人"}},
		{"explicit definition", map[string]interface{}{"query": "love", "mode": "definition"}, []string{"情", "爱", "爱人"}},
		{"explicit hanzi", map[string]interface{}{"query": "心", "mode": "hanzi"}, []string{"爱心"}},
		{"offset past end", map[string]interface{}{"query": "爱", "mode": "hanzi", "offset": float64(50)}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleSearchDictionary(ctx, callRequest("search_dictionary", tt.args))
			require.NoError(t, err)
			out := resultJSON(t, result)
			assert.Equal(t, tt.want, resultWords(t, out))
			assert.Equal(t, float64(len(tt.want)), out["count"])
		})
	}
}

func TestSearchDictionary_ResultShape(t *testing.T) {
	s := installedServer(t)

	result, err := s.handleSearchDictionary(context.Background(),
		callRequest("search_dictionary", map[string]interface{}{"query": "爱心", "mode": "hanzi"}))
	require.NoError(t, err)

	out := resultJSON(t, result)
	assert.Equal(t, "hanzi", out["mode"])
	assert.Equal(t, float64(20), out["limit"])
	results := out["results"].([]interface{})
	require.Len(t, results, 1)
	assert.Equal(t, map[string]interface{}{
		"traditional": "愛心",
		"simplified":  "爱心",
		"pinyin":      "ai4 xin1",
		"definitions": []interface{}{"compassion"},
	}, results[0])
}

func TestSearchDictionary_Errors(t *testing.T) {
	s := installedServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]interface{}
		code int
	}{
		{"missing query", map[string]interface{}{}, ErrorCodeEmptyQuery},
		{"blank query", map[string]interface{}{"query": "  "}, ErrorCodeEmptyQuery},
		{"limit zero", map[string]interface{}{"query": "爱", "limit": float64(0)}, ErrorCodeInvalidParams},
		{"limit too large", map[string]interface{}{"query": "爱", "limit": float64(101)}, ErrorCodeInvalidParams},
		{"negative offset", map[string]interface{}{"query": "爱", "mode": "hanzi", "offset": float64(-1)}, ErrorCodeInvalidParams},
		{"offset in auto mode", map[string]interface{}{"query": "爱", "offset": float64(2)}, ErrorCodeInvalidParams},
		{"unknown mode", map[string]interface{}{"query": "爱", "mode": "fuzzy"}, ErrorCodeInvalidParams},
		{"bad pinyin", map[string]interface{}{"query": "ai4!", "mode": "pinyin"}, ErrorCodeInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.handleSearchDictionary(ctx, callRequest("search_dictionary", tt.args))
			requireCode(t, err, tt.code)
		})
	}

	req := mcp.CallToolRequest{}
	req.Params.Arguments = "not a map"
	_, err := s.handleSearchDictionary(ctx, req)
	requireCode(t, err, ErrorCodeInvalidParams)
}

func TestSearchDictionary_NotInstalled(t *testing.T) {
	s := newTestServer(t)
	_, err := s.handleSearchDictionary(context.Background(),
		callRequest("search_dictionary", map[string]interface{}{"query": "爱"}))
	requireCode(t, err, ErrorCodeNotInstalled)
}

func TestSearchDictionary_Cancelled(t *testing.T) {
	s := installedServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	// Compatible reads the memory store without consulting ctx, so the
	// cancellation is observed by the search itself.
	cancel()
	_, err := s.handleSearchDictionary(ctx,
		callRequest("search_dictionary", map[string]interface{}{"query": "ai"}))
	requireCode(t, err, ErrorCodeSearchCancelled)
}

func TestSearchError(t *testing.T) {
	requireCode(t, searchError(types.ErrInvalidQuery), ErrorCodeInvalidParams)
	requireCode(t, searchError(types.ErrSearchCancelled), ErrorCodeSearchCancelled)
	requireCode(t, searchError(types.ErrSearchFailed), ErrorCodeInternalError)
}

func TestDictionaryStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("not installed", func(t *testing.T) {
		s := newTestServer(t)
		result, err := s.handleDictionaryStatus(ctx, callRequest("dictionary_status", nil))
		require.NoError(t, err)
		out := resultJSON(t, result)
		assert.Equal(t, false, out["installed"])
		assert.Contains(t, out["message"], "import_dictionary")
		assert.NotContains(t, out, "dictionary")
	})

	t.Run("installed", func(t *testing.T) {
		s := installedServer(t)
		result, err := s.handleDictionaryStatus(ctx, callRequest("dictionary_status", nil))
		require.NoError(t, err)
		out := resultJSON(t, result)
		assert.Equal(t, true, out["installed"])
		assert.Equal(t, true, out["compatible"])
		info := out["dictionary"].(map[string]interface{})
		assert.Equal(t, float64(5), info["entries"])
		assert.Equal(t, float64(types.DataFormatVersion), info["format_version"])
	})
}

func TestImportDictionary(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleImportDictionary(ctx, callRequest("import_dictionary", map[string]interface{}{
		"path": writeSample(t),
	}))
	require.NoError(t, err)
	out := resultJSON(t, result)
	assert.Equal(t, true, out["imported"])
	assert.Equal(t, float64(5), out["entries"])
	assert.Equal(t, float64(0), out["skipped"])

	ok, err := s.dict.Compatible(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestImportDictionary_InvalidPath(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	for name, args := range map[string]map[string]interface{}{
		"missing":   {},
		"relative":  {"path": "cedict_ts.u8"},
		"not found": {"path": filepath.Join(t.TempDir(), "missing.u8")},
		"directory": {"path": t.TempDir()},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.handleImportDictionary(ctx, callRequest("import_dictionary", args))
			requireCode(t, err, ErrorCodeInvalidParams)
		})
	}
}

func TestValidatePath(t *testing.T) {
	file := writeSample(t)
	assert.NoError(t, validatePath(file))
	assert.ErrorIs(t, validatePath(""), ErrPathRequired)
	assert.ErrorIs(t, validatePath("relative.u8"), ErrPathNotAbsolute)
	assert.ErrorIs(t, validatePath(filepath.Join(filepath.Dir(file), "nope")), ErrPathNotFound)
	assert.ErrorIs(t, validatePath(filepath.Dir(file)), ErrNotFile)
}

func TestGetDefaults(t *testing.T) {
	args := map[string]interface{}{"f": float64(3), "i": 4, "s": "x"}
	assert.Equal(t, 3, getIntDefault(args, "f", 0))
	assert.Equal(t, 4, getIntDefault(args, "i", 0))
	assert.Equal(t, 7, getIntDefault(args, "missing", 7))
	assert.Equal(t, "x", getStringDefault(args, "s", "y"))
	assert.Equal(t, "y", getStringDefault(args, "f", "y"))
}
