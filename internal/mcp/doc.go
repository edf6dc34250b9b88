// Package mcp implements the Model Context Protocol (MCP) server for the
// CC-CEDICT dictionary.
//
// The server exposes three tools to AI assistants:
//   - search_dictionary: look up words by characters, pinyin or English
//   - dictionary_status: report what is installed
//   - import_dictionary: install a CC-CEDICT file
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// # Tool: search_dictionary
//
//	Request:
//	{
//	  "name": "search_dictionary",
//	  "arguments": {
//	    "query": "ai4 xin1",
//	    "mode": "auto",
//	    "limit": 20
//	  }
//	}
//
//	Response:
//	{
//	  "query": "ai4 xin1",
//	  "mode": "auto",
//	  "count": 1,
//	  "results": [
//	    {
//	      "traditional": "愛心",
//	      "simplified": "爱心",
//	      "pinyin": "ai4 xin1",
//	      "definitions": ["compassion"]
//	    }
//	  ]
//	}
//
// In auto mode, input containing Han characters is searched as Hanzi. Input
// that reads as pinyin is searched as pinyin and as English, pinyin matches
// first. Anything else is searched as English. offset is only accepted
// together with an explicit mode. Cancelling the request cancels the
// running search.
//
// # Tool: dictionary_status
//
//	Response:
//	{
//	  "installed": true,
//	  "compatible": true,
//	  "installing": false,
//	  "format_version": 1,
//	  "dictionary": {
//	    "format_version": 1,
//	    "built_at": "2026-03-01T12:00:00Z",
//	    "entries": 121563
//	  }
//	}
//
// # Tool: import_dictionary
//
//	Request:
//	{
//	  "name": "import_dictionary",
//	  "arguments": {"path": "/data/cedict_1_0_ts_utf-8_mdbg.txt.gz"}
//	}
//
// The previous dataset is dropped before the new one is loaded. Only one
// import runs at a time.
//
// # MCP Client Configuration
//
//	{
//	  "mcpServers": {
//	    "cedict": {
//	      "command": "/usr/local/bin/cedict-mcp",
//	      "env": {
//	        "CEDICT_DB_PATH": "/home/me/.cedict-mcp/dictionary.db"
//	      }
//	    }
//	  }
//	}
//
// # Error Handling
//
// Error codes:
//   - -32602: Invalid params
//   - -32603: Internal error
//   - -32004: Empty query
//   - -32005: No compatible dictionary installed
//   - -32006: Import already in progress
//   - -32007: Search cancelled
package mcp
