package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/cedict-mcp/internal/config"
)

// searchDictionaryTool returns the tool definition for search_dictionary
func searchDictionaryTool(defaultLimit int) mcp.Tool {
	return mcp.Tool{
		Name:        "search_dictionary",
		Description: "Look up Chinese words in the CC-CEDICT dictionary by characters, pinyin or English",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Characters (爱), pinyin with tone numbers or marks (ai4 xin1, àixīn, toneless ai xin) or English text",
				},
				"mode": map[string]interface{}{
					"type":        "string",
					"description": "auto detects the kind of query; auto with pinyin-like input also searches definitions",
					"enum":        []string{"auto", "hanzi", "pinyin", "definition"},
					"default":     "auto",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of entries to return",
					"default":     defaultLimit,
					"minimum":     1,
					"maximum":     config.MaxLimit,
				},
				"offset": map[string]interface{}{
					"type":        "integer",
					"description": "Number of ranked entries to skip (explicit modes only)",
					"default":     0,
					"minimum":     0,
				},
			},
			Required: []string{"query"},
		},
	}
}

// dictionaryStatusTool returns the tool definition for dictionary_status
func dictionaryStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "dictionary_status",
		Description: "Report whether a compatible dictionary is installed, when it was built and how many entries it holds",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// importDictionaryTool returns the tool definition for import_dictionary
func importDictionaryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "import_dictionary",
		Description: "Replace the installed dictionary with a CC-CEDICT file (plain or gzipped)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to a cedict_ts.u8 file or its .gz archive",
				},
			},
			Required: []string{"path"},
		},
	}
}
