package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/dshills/cedict-mcp/internal/config"
	"github.com/dshills/cedict-mcp/internal/dictionary"
	"github.com/dshills/cedict-mcp/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "cedict-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp          *server.MCPServer
	dict         *dictionary.Dictionary
	defaultLimit int
	logger       *zap.Logger
}

// NewServer opens the dictionary database named by cfg and registers the
// tools.
func NewServer(cfg config.Config, logger *zap.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := storage.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	dict := dictionary.New(store,
		dictionary.WithWorkers(cfg.Workers),
		dictionary.WithCacheSize(cfg.CacheSize),
		dictionary.WithLogger(logger))

	return newServer(dict, cfg.DefaultLimit, logger), nil
}

func newServer(dict *dictionary.Dictionary, defaultLimit int, logger *zap.Logger) *Server {
	s := &Server{
		mcp:          server.NewMCPServer(ServerName, ServerVersion, server.WithToolCapabilities(false)),
		dict:         dict,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
	s.registerTools()
	return s
}

// Serve runs the MCP protocol on stdio until ctx is cancelled or stdin
// closes, then releases the dictionary.
func (s *Server) Serve(ctx context.Context) error {
	defer func() {
		if err := s.dict.Close(); err != nil {
			s.logger.Error("failed to close dictionary", zap.Error(err))
		}
	}()

	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger.Named("stdio")))
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(searchDictionaryTool(s.defaultLimit), s.handleSearchDictionary)
	s.mcp.AddTool(dictionaryStatusTool(), s.handleDictionaryStatus)
	s.mcp.AddTool(importDictionaryTool(), s.handleImportDictionary)
}
