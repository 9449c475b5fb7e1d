package main

import (
	"github.com/funvibe/tycheck/internal/analyzer"
	"github.com/funvibe/tycheck/internal/ast"
	"github.com/funvibe/tycheck/internal/config"
	"github.com/funvibe/tycheck/internal/forest"
	"github.com/funvibe/tycheck/internal/service"
)

func (s *LanguageServer) handleInitialize(id interface{}, params InitializeParams) error {
	s.logger.Printf("Handling initialize request with ID: %v", id)

	if params.RootURI != nil && *params.RootURI != "" {
		s.rootPath = uriToPath(*params.RootURI)
	} else if params.RootPath != nil && *params.RootPath != "" {
		s.rootPath = *params.RootPath
	}

	sources := s.loadWorkspace()
	session := service.NewSession(sources, analyzer.DefaultBuiltins(), s.logger)
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: 1, // Full sync
			HoverProvider:    true,
		},
		ServerInfo: &ServerInfo{Name: "tycheck-lsp", Version: config.Version},
	}
	return s.sendResponse(ResponseMessage{
		Jsonrpc: "2.0",
		ID:      id,
		Result:  result,
	})
}

// loadWorkspace reads the project configuration of the workspace root and decodes its
// module tree. A broken tree is logged and the session starts empty; opened documents are
// added as they come.
func (s *LanguageServer) loadWorkspace() ast.Forest {
	if s.rootPath == "" {
		return nil
	}
	cfg := config.Default(s.rootPath)
	if path, err := config.FindConfig(s.rootPath); err == nil && path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			s.logger.Printf("Ignoring %s: %v", path, err)
		} else {
			cfg = loaded
		}
	}
	s.sourceRoot = cfg.SourceRoot()

	sources, err := forest.LoadForest(cfg)
	if err != nil {
		s.logger.Printf("Could not load workspace %s: %v", s.sourceRoot, err)
		return nil
	}
	s.logger.Printf("Loaded %d modules from %s", len(sources), s.sourceRoot)
	return sources
}

func (s *LanguageServer) handleShutdown(id interface{}) error {
	s.shutdown = true
	return s.sendResponse(ResponseMessage{
		Jsonrpc: "2.0",
		ID:      id,
		Result:  nil,
	})
}
