package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/funvibe/tycheck/internal/analyzer"
	"github.com/funvibe/tycheck/internal/service"
	"github.com/funvibe/tycheck/internal/typesystem"
)

// Language Server implementation
type LanguageServer struct {
	session    *service.Session
	documents  map[string]*DocumentState // URI -> document state
	uris       map[typesystem.ModuleReference]string
	mu         sync.RWMutex // Mutex to protect the maps above
	writer     io.Writer    // Output stream for JSON-RPC responses
	writeMu    sync.Mutex
	logger     *log.Logger
	rootPath   string // Workspace root; module paths are relative to its source root
	sourceRoot string
	shutdown   bool
	exited     bool
}

func NewLanguageServer(writer io.Writer) *LanguageServer {
	if writer == nil {
		writer = os.Stdout
	}
	return &LanguageServer{
		documents: make(map[string]*DocumentState),
		uris:      make(map[typesystem.ModuleReference]string),
		writer:    writer,
		logger:    log.Default(),
	}
}

// Start serves stdin until the client sends exit or closes the stream. It returns the
// process exit code: 0 only when shutdown came before exit.
func (s *LanguageServer) Start() int {
	return s.Serve(os.Stdin)
}

func (s *LanguageServer) Serve(input io.Reader) int {
	reader := bufio.NewReader(input)

	for !s.exited {
		// Read header line
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				s.logger.Printf("Error reading header: %v", err)
			}
			break
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "Content-Length: ") {
			continue
		}
		contentLength, err := strconv.Atoi(strings.TrimPrefix(line, "Content-Length: "))
		if err != nil {
			s.logger.Printf("Error parsing Content-Length: %v", err)
			continue
		}

		// Skip the remaining headers up to the empty separator line
		for {
			header, err := reader.ReadString('\n')
			if err != nil {
				s.logger.Printf("Error reading separator: %v", err)
				return 1
			}
			if strings.TrimRight(header, "\r\n") == "" {
				break
			}
		}

		content := make([]byte, contentLength)
		if _, err := io.ReadFull(reader, content); err != nil {
			s.logger.Printf("Error reading content: %v", err)
			break
		}
		if err := s.handleMessage(content); err != nil {
			s.logger.Printf("Error handling message: %v", err)
		}
	}

	if s.shutdown {
		return 0
	}
	return 1
}

type baseMessage struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func (s *LanguageServer) handleMessage(content []byte) error {
	var msg baseMessage
	if err := json.Unmarshal(content, &msg); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}
	s.logger.Printf("Received %s (id %v)", msg.Method, msg.ID)

	// Requests have an ID, notifications don't
	if msg.ID != nil {
		return s.handleRequest(msg)
	}
	return s.handleNotification(msg)
}

func (s *LanguageServer) handleRequest(msg baseMessage) error {
	switch msg.Method {
	case "initialize":
		var params InitializeParams
		if err := decodeParams(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, ErrorInvalidParams, err.Error())
		}
		return s.handleInitialize(msg.ID, params)

	case "shutdown":
		return s.handleShutdown(msg.ID)

	case "textDocument/hover":
		var params HoverParams
		if err := decodeParams(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, ErrorInvalidParams, err.Error())
		}
		return s.handleHover(msg.ID, params)

	default:
		return s.sendError(msg.ID, ErrorMethodNotFound, fmt.Sprintf("Method not found: %s", msg.Method))
	}
}

func (s *LanguageServer) handleNotification(msg baseMessage) error {
	switch msg.Method {
	case "initialized":
		return nil

	case "textDocument/didOpen":
		var params DidOpenTextDocumentParams
		if err := decodeParams(msg.Params, &params); err != nil {
			return err
		}
		return s.handleDidOpen(params)

	case "textDocument/didChange":
		var params DidChangeTextDocumentParams
		if err := decodeParams(msg.Params, &params); err != nil {
			return err
		}
		return s.handleDidChange(params)

	case "textDocument/didClose":
		var params DidCloseTextDocumentParams
		if err := decodeParams(msg.Params, &params); err != nil {
			return err
		}
		return s.handleDidClose(params)

	case "exit":
		s.exited = true
		return nil

	default:
		// Unknown notification, ignore
		return nil
	}
}

func decodeParams(raw json.RawMessage, params interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, params)
}

// ensureSession starts an empty session for clients that skip initialize.
func (s *LanguageServer) ensureSession() *service.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		s.session = service.NewSession(nil, analyzer.DefaultBuiltins(), s.logger)
	}
	return s.session
}

func (s *LanguageServer) sendResponse(response ResponseMessage) error {
	return s.sendMessage(response)
}

func (s *LanguageServer) sendError(id interface{}, code int, message string) error {
	return s.sendResponse(ResponseMessage{
		Jsonrpc: "2.0",
		ID:      id,
		Error:   &Error{Code: code, Message: message},
	})
}

func (s *LanguageServer) sendNotification(notification NotificationMessage) error {
	return s.sendMessage(notification)
}

func (s *LanguageServer) sendMessage(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err = fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n%s", len(data), data)
	return err
}
