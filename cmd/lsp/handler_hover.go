package main

import (
	"github.com/funvibe/tycheck/internal/token"
)

func (s *LanguageServer) handleHover(id interface{}, params HoverParams) error {
	s.logger.Printf("Handling hover request for %s at line %d, char %d", params.TextDocument.URI, params.Position.Line, params.Position.Character)

	s.mu.RLock()
	doc, exists := s.documents[params.TextDocument.URI]
	session := s.session
	s.mu.RUnlock()

	if !exists || !doc.IsModule || session == nil {
		return s.sendResponse(ResponseMessage{Jsonrpc: "2.0", ID: id, Result: nil})
	}

	pos := token.Position{Line: params.Position.Line + 1, Column: params.Position.Character + 1}
	t, rng, found := session.QueryType(doc.Module, pos)
	if !found {
		return s.sendResponse(ResponseMessage{Jsonrpc: "2.0", ID: id, Result: nil})
	}

	lspRange := toLSPRange(rng)
	return s.sendResponse(ResponseMessage{
		Jsonrpc: "2.0",
		ID:      id,
		Result: Hover{
			Contents: MarkupContent{Kind: "markdown", Value: "```\n" + t.String() + "\n```"},
			Range:    &lspRange,
		},
	})
}
