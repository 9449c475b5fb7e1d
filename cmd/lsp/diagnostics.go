package main

import (
	"github.com/funvibe/tycheck/internal/diagnostics"
	"github.com/funvibe/tycheck/internal/token"
	"github.com/funvibe/tycheck/internal/typesystem"
)

const diagnosticSource = "tycheck"

// publishAffected republishes the diagnostics of every re-checked module open in the editor.
func (s *LanguageServer) publishAffected(affected []typesystem.ModuleReference) error {
	session := s.ensureSession()
	for _, ref := range affected {
		s.mu.RLock()
		uri, open := s.uris[ref]
		s.mu.RUnlock()
		if !open {
			continue
		}
		if err := s.publishDiagnostics(uri, session.Diagnostics(ref)); err != nil {
			return err
		}
	}
	return nil
}

func (s *LanguageServer) publishDiagnostics(uri string, errs []*diagnostics.DiagnosticError) error {
	return s.sendNotification(NotificationMessage{
		Jsonrpc: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params: PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: convertDiagnostics(errs),
		},
	})
}

// publishFailure reports a document that could not be decoded at all.
func (s *LanguageServer) publishFailure(uri string, err error) error {
	return s.sendNotification(NotificationMessage{
		Jsonrpc: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params: PublishDiagnosticsParams{
			URI: uri,
			Diagnostics: []Diagnostic{{
				Range:    toLSPRange(token.Dummy),
				Severity: SeverityError,
				Code:     "DecodeError",
				Message:  err.Error(),
				Source:   diagnosticSource,
			}},
		},
	})
}

func convertDiagnostics(errs []*diagnostics.DiagnosticError) []Diagnostic {
	result := make([]Diagnostic, 0, len(errs))
	for _, err := range errs {
		result = append(result, Diagnostic{
			Range:    toLSPRange(err.Range),
			Severity: SeverityError,
			Code:     string(err.Code),
			Message:  err.Message,
			Source:   diagnosticSource,
		})
	}
	return result
}

// toLSPRange converts 1-based positions to LSP's 0-based ones.
func toLSPRange(r token.Range) Range {
	return Range{Start: toLSPPosition(r.Start), End: toLSPPosition(r.End)}
}

func toLSPPosition(p token.Position) Position {
	return Position{Line: max(p.Line-1, 0), Character: max(p.Column-1, 0)}
}
