package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/funvibe/tycheck/internal/forest"
	"github.com/funvibe/tycheck/internal/typesystem"
)

// DocumentState stores the state of a single open document
type DocumentState struct {
	Content string
	Module  typesystem.ModuleReference
	// IsModule is false when the document path does not name a module.
	IsModule bool
}

func (s *LanguageServer) handleDidOpen(params DidOpenTextDocumentParams) error {
	s.logger.Printf("Opened file: %s", params.TextDocument.URI)
	return s.analyzeDocument(params.TextDocument.URI, params.TextDocument.Text)
}

func (s *LanguageServer) handleDidChange(params DidChangeTextDocumentParams) error {
	// Full content sync: the last change carries the whole text
	if len(params.ContentChanges) == 0 {
		return nil
	}
	uri := params.TextDocument.URI
	s.mu.RLock()
	_, exists := s.documents[uri]
	s.mu.RUnlock()
	if !exists {
		return fmt.Errorf("document %s not found", uri)
	}
	s.logger.Printf("Changed file: %s", uri)
	return s.analyzeDocument(uri, params.ContentChanges[len(params.ContentChanges)-1].Text)
}

// handleDidClose drops the editor buffer; the file on disk is the module again.
func (s *LanguageServer) handleDidClose(params DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.mu.Lock()
	doc, exists := s.documents[uri]
	delete(s.documents, uri)
	if exists && s.uris[doc.Module] == uri {
		delete(s.uris, doc.Module)
	}
	s.mu.Unlock()
	s.logger.Printf("Closed file: %s", uri)

	if !exists {
		return nil
	}
	if err := s.publishDiagnostics(uri, nil); err != nil {
		return err
	}
	if !doc.IsModule {
		return nil
	}

	session := s.ensureSession()
	var affected []typesystem.ModuleReference
	data, err := os.ReadFile(uriToPath(uri))
	if err == nil {
		module, decodeErr := forest.DecodeModule(doc.Module, data)
		if decodeErr == nil {
			affected = session.Update(module)
		} else {
			affected = session.Remove(doc.Module)
		}
	} else {
		affected = session.Remove(doc.Module)
	}
	return s.publishAffected(affected)
}

func (s *LanguageServer) analyzeDocument(uri, content string) error {
	doc := &DocumentState{Content: content}
	ref, err := s.moduleReferenceOf(uriToPath(uri))
	if err == nil {
		doc.Module = ref
		doc.IsModule = true
	}

	s.mu.Lock()
	s.documents[uri] = doc
	if doc.IsModule {
		s.uris[ref] = uri
	}
	s.mu.Unlock()

	if err != nil {
		return s.publishFailure(uri, err)
	}
	module, err := forest.DecodeModule(ref, []byte(content))
	if err != nil {
		// The session keeps the last version that decoded.
		return s.publishFailure(uri, err)
	}
	return s.publishAffected(s.ensureSession().Update(module))
}

// moduleReferenceOf names the module of a file. Without a workspace the file's directory
// is the source root.
func (s *LanguageServer) moduleReferenceOf(path string) (typesystem.ModuleReference, error) {
	root := s.sourceRoot
	if root == "" {
		root = filepath.Dir(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return typesystem.ModuleReference{}, fmt.Errorf("%s is outside the source root %s", path, root)
	}
	return forest.ModuleReferenceOf(rel)
}

func uriToPath(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return uri
	}
	path := strings.TrimPrefix(uri, "file://")
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	return filepath.FromSlash(path)
}
