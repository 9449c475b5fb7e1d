package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const moduleA = `
classes:
  - name: A
    members:
      - name: a
        public: true
        returns: int
        body: { int: 42 }
`

const moduleAString = `
classes:
  - name: A
    members:
      - name: a
        public: true
        returns: string
        body: { string: "42" }
`

const moduleB = `
imports:
  - { from: A, classes: [A] }
classes:
  - name: B
    members:
      - name: b
        public: true
        returns: int
        range: "1:1-3:1"
        body: { call: { callee: { member: A.a, range: "2:3-2:6" } }, range: "2:3-2:8" }
`

const brokenModuleB = `
imports:
  - { from: A, classes: [A] }
classes:
  - name: B
    members:
      - name: b
        public: true
        returns: bool
        body: { call: { callee: { member: A.a } } }
`

type message struct {
	ID     interface{}     `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	Result json.RawMessage `json:"result"`
	Error  *Error          `json:"error"`
}

// readMessages splits the server output into framed messages.
func readMessages(t *testing.T, buf *bytes.Buffer) []message {
	t.Helper()
	var out []message
	rest := buf.String()
	for rest != "" {
		header, body, ok := strings.Cut(rest, "\r\n\r\n")
		require.True(t, ok, "Invalid LSP output format: %q", rest)
		length, err := strconv.Atoi(strings.TrimPrefix(header, "Content-Length: "))
		require.NoError(t, err)
		var msg message
		require.NoError(t, json.Unmarshal([]byte(body[:length]), &msg))
		out = append(out, msg)
		rest = body[length:]
	}
	buf.Reset()
	return out
}

func published(t *testing.T, msgs []message) map[string]PublishDiagnosticsParams {
	t.Helper()
	result := make(map[string]PublishDiagnosticsParams)
	for _, msg := range msgs {
		if msg.Method != "textDocument/publishDiagnostics" {
			continue
		}
		var params PublishDiagnosticsParams
		require.NoError(t, json.Unmarshal(msg.Params, &params))
		result[params.URI] = params
	}
	return result
}

func frame(t *testing.T, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(data), data)
}

func newTestServer(t *testing.T, files map[string]string) (*LanguageServer, *bytes.Buffer, string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	buf := new(bytes.Buffer)
	server := NewLanguageServer(buf)
	server.logger = log.New(io.Discard, "", 0)
	root := "file://" + filepath.ToSlash(dir)
	require.NoError(t, server.handleInitialize(1, InitializeParams{RootURI: &root}))
	msgs := readMessages(t, buf)
	require.Len(t, msgs, 1)
	return server, buf, root
}

func open(t *testing.T, server *LanguageServer, uri, text string) {
	t.Helper()
	require.NoError(t, server.handleDidOpen(DidOpenTextDocumentParams{
		TextDocument: TextDocumentItem{URI: uri, LanguageID: "yaml", Version: 1, Text: text},
	}))
}

func change(t *testing.T, server *LanguageServer, uri, text string) {
	t.Helper()
	require.NoError(t, server.handleDidChange(DidChangeTextDocumentParams{
		TextDocument:   VersionedTextDocumentIdentifier{URI: uri, Version: 2},
		ContentChanges: []TextDocumentContentChangeEvent{{Text: text}},
	}))
}

// ---------------------------------------------------------------------------
// Diagnostics

func TestLSP_DiagnosticsOnOpen(t *testing.T) {
	server, buf, root := newTestServer(t, map[string]string{"A.ty.yaml": moduleA, "B.ty.yaml": moduleB})
	uri := root + "/B.ty.yaml"

	open(t, server, uri, brokenModuleB)
	params := published(t, readMessages(t, buf))[uri]
	require.Len(t, params.Diagnostics, 1)
	diag := params.Diagnostics[0]
	assert.Equal(t, "UnexpectedType", diag.Code)
	assert.Equal(t, "Expected: `() -> bool`, actual: `() -> int`.", diag.Message)
	assert.Equal(t, SeverityError, diag.Severity)
	assert.Equal(t, Range{}, diag.Range)

	change(t, server, uri, moduleB)
	params = published(t, readMessages(t, buf))[uri]
	assert.Empty(t, params.Diagnostics)
}

func TestLSP_DependentsAreRepublished(t *testing.T) {
	server, buf, root := newTestServer(t, map[string]string{"A.ty.yaml": moduleA, "B.ty.yaml": moduleB})
	uriA, uriB := root+"/A.ty.yaml", root+"/B.ty.yaml"
	open(t, server, uriA, moduleA)
	open(t, server, uriB, moduleB)
	readMessages(t, buf)

	change(t, server, uriA, moduleAString)
	byURI := published(t, readMessages(t, buf))
	require.Contains(t, byURI, uriA)
	require.Contains(t, byURI, uriB)
	assert.Empty(t, byURI[uriA].Diagnostics)
	require.Len(t, byURI[uriB].Diagnostics, 1)
	assert.Equal(t, "Expected: `() -> int`, actual: `() -> string`.", byURI[uriB].Diagnostics[0].Message)
	assert.Equal(t, Range{Start: Position{Line: 1, Character: 2}, End: Position{Line: 1, Character: 5}}, byURI[uriB].Diagnostics[0].Range)

	// Closing A falls back to the file on disk, which B checks against again.
	require.NoError(t, server.handleDidClose(DidCloseTextDocumentParams{TextDocument: TextDocumentIdentifier{URI: uriA}}))
	byURI = published(t, readMessages(t, buf))
	assert.Empty(t, byURI[uriA].Diagnostics)
	assert.Empty(t, byURI[uriB].Diagnostics)
}

func TestLSP_DecodeFailure(t *testing.T) {
	server, buf, root := newTestServer(t, nil)

	uri := root + "/notes.txt"
	open(t, server, uri, "hello")
	params := published(t, readMessages(t, buf))[uri]
	require.Len(t, params.Diagnostics, 1)
	assert.Equal(t, "DecodeError", params.Diagnostics[0].Code)

	uri = root + "/A.ty.yaml"
	open(t, server, uri, "classes: {")
	params = published(t, readMessages(t, buf))[uri]
	require.Len(t, params.Diagnostics, 1)
	assert.Equal(t, "DecodeError", params.Diagnostics[0].Code)
	assert.Contains(t, params.Diagnostics[0].Message, "module A")
}

func TestLSP_ChangeOfUnknownDocument(t *testing.T) {
	server, _, root := newTestServer(t, nil)
	err := server.handleDidChange(DidChangeTextDocumentParams{
		TextDocument:   VersionedTextDocumentIdentifier{URI: root + "/A.ty.yaml"},
		ContentChanges: []TextDocumentContentChangeEvent{{Text: moduleA}},
	})
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// Hover

func TestLSP_Hover(t *testing.T) {
	server, buf, root := newTestServer(t, map[string]string{"A.ty.yaml": moduleA})
	uri := root + "/B.ty.yaml"
	open(t, server, uri, moduleB)
	readMessages(t, buf)

	tests := []struct {
		name     string
		pos      Position
		expected string
		rng      Range
	}{
		{"member reference", Position{Line: 1, Character: 3}, "() -> int", Range{Start: Position{Line: 1, Character: 2}, End: Position{Line: 1, Character: 5}}},
		{"call", Position{Line: 1, Character: 6}, "int", Range{Start: Position{Line: 1, Character: 2}, End: Position{Line: 1, Character: 7}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, server.handleHover(7, HoverParams{TextDocument: TextDocumentIdentifier{URI: uri}, Position: tt.pos}))
			msgs := readMessages(t, buf)
			require.Len(t, msgs, 1)
			var hover Hover
			require.NoError(t, json.Unmarshal(msgs[0].Result, &hover))
			assert.Equal(t, "markdown", hover.Contents.Kind)
			assert.Contains(t, hover.Contents.Value, tt.expected)
			require.NotNil(t, hover.Range)
			assert.Equal(t, tt.rng, *hover.Range)
		})
	}

	require.NoError(t, server.handleHover(8, HoverParams{TextDocument: TextDocumentIdentifier{URI: uri}, Position: Position{Line: 20}}))
	msgs := readMessages(t, buf)
	require.Len(t, msgs, 1)
	assert.Equal(t, "null", string(msgs[0].Result))

	require.NoError(t, server.handleHover(9, HoverParams{TextDocument: TextDocumentIdentifier{URI: root + "/Missing.ty.yaml"}}))
	msgs = readMessages(t, buf)
	assert.Equal(t, "null", string(msgs[0].Result))
}

// ---------------------------------------------------------------------------
// Message loop

func TestLSP_ServeLifecycle(t *testing.T) {
	input := frame(t, RequestMessage{Jsonrpc: "2.0", ID: 1, Method: "initialize", Params: map[string]interface{}{}}) +
		frame(t, NotificationMessage{Jsonrpc: "2.0", Method: "initialized"}) +
		frame(t, RequestMessage{Jsonrpc: "2.0", ID: 2, Method: "textDocument/definition"}) +
		frame(t, RequestMessage{Jsonrpc: "2.0", ID: 3, Method: "shutdown"}) +
		frame(t, NotificationMessage{Jsonrpc: "2.0", Method: "exit"})

	buf := new(bytes.Buffer)
	server := NewLanguageServer(buf)
	server.logger = log.New(io.Discard, "", 0)
	assert.Equal(t, 0, server.Serve(strings.NewReader(input)))

	msgs := readMessages(t, buf)
	require.Len(t, msgs, 3)
	var result InitializeResult
	require.NoError(t, json.Unmarshal(msgs[0].Result, &result))
	assert.True(t, result.Capabilities.HoverProvider)
	assert.Equal(t, 1, result.Capabilities.TextDocumentSync)

	require.NotNil(t, msgs[1].Error)
	assert.Equal(t, ErrorMethodNotFound, msgs[1].Error.Code)
	assert.Nil(t, msgs[2].Error)
}

func TestLSP_ExitWithoutShutdown(t *testing.T) {
	input := frame(t, NotificationMessage{Jsonrpc: "2.0", Method: "exit"})
	server := NewLanguageServer(new(bytes.Buffer))
	server.logger = log.New(io.Discard, "", 0)
	assert.Equal(t, 1, server.Serve(strings.NewReader(input)))
}
