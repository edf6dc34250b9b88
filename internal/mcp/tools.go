package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/dshills/cedict-mcp/internal/config"
	"github.com/dshills/cedict-mcp/internal/dictionary"
	"github.com/dshills/cedict-mcp/internal/executor"
	"github.com/dshills/cedict-mcp/internal/query"
	"github.com/dshills/cedict-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams     = -32602 // Invalid method parameters
	ErrorCodeInternalError     = -32603 // Internal JSON-RPC error
	ErrorCodeEmptyQuery        = -32004 // Query parameter is empty
	ErrorCodeNotInstalled      = -32005 // No compatible dictionary installed
	ErrorCodeInstallInProgress = -32006 // Another import is already running
	ErrorCodeSearchCancelled   = -32007 // The request was cancelled mid-search
)

const modeAuto = "auto"

// handleSearchDictionary handles the search_dictionary tool invocation
func (s *Server) handleSearchDictionary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	text, _ := args["query"].(string)
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", s.defaultLimit)
	if limit < 1 || limit > config.MaxLimit {
		return nil, newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("limit must be between 1 and %d", config.MaxLimit), map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	offset := getIntDefault(args, "offset", 0)
	if offset < 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "offset must not be negative", map[string]interface{}{
			"param": "offset",
			"value": offset,
		})
	}

	modeName := strings.ToLower(getStringDefault(args, "mode", modeAuto))
	var mode query.Mode
	if modeName != modeAuto {
		m, err := query.ParseMode(modeName)
		if err != nil {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid mode", map[string]interface{}{
				"param":   "mode",
				"value":   modeName,
				"allowed": []string{modeAuto, "hanzi", "pinyin", "definition"},
			})
		}
		mode = m
	} else if offset > 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "offset requires an explicit mode", map[string]interface{}{
			"param": "offset",
			"value": offset,
		})
	}

	compatible, err := s.dict.Compatible(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to read dictionary metadata", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if !compatible {
		return nil, newMCPError(ErrorCodeNotInstalled, "no compatible dictionary installed. Use import_dictionary to install one.", map[string]interface{}{
			"format_version": types.DataFormatVersion,
		})
	}

	start := time.Now()
	var entries []types.DictionaryEntry
	if modeName == modeAuto {
		entries, err = s.dict.Lookup(ctx, text, limit)
	} else {
		entries, err = s.awaitSearch(ctx, mode, text, limit, offset)
	}
	if err != nil {
		return nil, searchError(err)
	}

	s.logger.Debug("search_dictionary",
		zap.String("query", text),
		zap.String("mode", modeName),
		zap.Int("results", len(entries)),
		zap.Duration("took", time.Since(start)))

	results := make([]interface{}, len(entries))
	for i, e := range entries {
		results[i] = map[string]interface{}{
			"traditional": e.Traditional,
			"simplified":  e.Simplified,
			"pinyin":      e.PinyinString(),
			"definitions": e.Definitions,
		}
	}
	response := map[string]interface{}{
		"query":   text,
		"mode":    modeName,
		"limit":   limit,
		"offset":  offset,
		"count":   len(entries),
		"results": results,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// awaitSearch runs one explicit-mode search and cancels it if the request
// goes away first.
func (s *Server) awaitSearch(ctx context.Context, mode query.Mode, text string, limit, offset int) ([]types.DictionaryEntry, error) {
	var (
		f   *executor.Future
		err error
	)
	switch mode {
	case query.ModeHanzi:
		f, err = s.dict.FindChinese(text, limit, offset)
	case query.ModePinyin:
		f, err = s.dict.FindPinyin(text, limit, offset)
	default:
		f, err = s.dict.FindDefinitions(text, limit, offset)
	}
	if err != nil {
		return nil, err
	}

	entries, err := f.ResultsContext(ctx)
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		f.Cancel()
		return nil, fmt.Errorf("%w: %w", types.ErrSearchCancelled, err)
	}
	return entries, err
}

func searchError(err error) error {
	switch {
	case errors.Is(err, types.ErrInvalidQuery):
		return newMCPError(ErrorCodeInvalidParams, "invalid query", map[string]interface{}{
			"param":  "query",
			"reason": err.Error(),
		})
	case errors.Is(err, types.ErrSearchCancelled):
		return newMCPError(ErrorCodeSearchCancelled, "search cancelled", nil)
	default:
		return newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// handleDictionaryStatus handles the dictionary_status tool invocation
func (s *Server) handleDictionaryStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.dict.Status(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"installed":      st.Installed,
		"compatible":     st.Compatible,
		"installing":     st.Installing,
		"format_version": types.DataFormatVersion,
	}
	if !st.Installed {
		response["message"] = "Dictionary not installed. Use import_dictionary to install a CC-CEDICT file."
		return mcp.NewToolResultText(formatJSON(response)), nil
	}

	response["dictionary"] = map[string]interface{}{
		"format_version": st.FormatVersion,
		"built_at":       st.BuiltAt.Format(time.RFC3339),
		"entries":        st.Entries,
	}
	if !st.Compatible {
		response["message"] = fmt.Sprintf("Installed dictionary has format version %d, expected %d. Re-import it.", st.FormatVersion, types.DataFormatVersion)
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleImportDictionary handles the import_dictionary tool invocation
func (s *Server) handleImportDictionary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	if err := validatePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	start := time.Now()
	stats, err := s.dict.InstallFile(ctx, path)
	if errors.Is(err, dictionary.ErrInstallInProgress) {
		return nil, newMCPError(ErrorCodeInstallInProgress, "another import is already running", nil)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "import failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"imported":       true,
		"lines":          stats.Lines,
		"entries":        stats.Entries,
		"skipped":        stats.Skipped,
		"format_version": types.DataFormatVersion,
		"duration_ms":    time.Since(start).Milliseconds(),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks that path is an absolute, readable regular file
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}
	if info.IsDir() {
		return ErrNotFile
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()
	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotFile         = errors.New("path is a directory")
)
