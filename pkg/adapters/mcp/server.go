package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/autoparse"
	"github.com/google/autoparse/pkg/domain"
	"github.com/google/autoparse/pkg/schema"
	"github.com/google/autoparse/pkg/value"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SchemasURI is the resource listing every registered schema.
const SchemasURI = "autoparse://schemas"

// ValidateResponse is the structured result of the validate tool.
type ValidateResponse struct {
	Schema string `json:"schema" jsonschema_description:"URI of the schema the data was checked against"`
	Valid  bool   `json:"valid" jsonschema_description:"Whether the data conforms to the schema"`
	Key    string `json:"key,omitempty" jsonschema_description:"Dotted path of the first failing key"`
	Error  string `json:"error,omitempty" jsonschema_description:"Reason the data is invalid"`
}

// Engine is the part of autoparse.Engine the MCP server needs.
type Engine interface {
	Load(ctx context.Context, uri string) (*schema.Descriptor, error)
	Validate(ctx context.Context, uri string, data any) error
	Schemas() []*schema.Descriptor
}

var _ Engine = (*autoparse.Engine)(nil)

// Server exposes schema validation and introspection as MCP tools.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine) *Server {
	s := &Server{
		engine: engine,
		mcpServer: server.NewMCPServer("autoparse-mcp", autoparse.Version,
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	validateTool := mcp.NewTool("validate",
		mcp.WithDescription("Validate a JSON object against a registered or loadable schema."),
		mcp.WithString("schema", mcp.Required(), mcp.Description("Schema URI")),
		mcp.WithString("data", mcp.Required(), mcp.Description("JSON object to validate")),
		mcp.WithOutputSchema[ValidateResponse](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))

	describeTool := mcp.NewTool("describe",
		mcp.WithDescription("Describe a schema: its type, parent and property table."),
		mcp.WithString("schema", mcp.Required(), mcp.Description("Schema URI")),
		mcp.WithOutputSchema[schema.Summary](),
	)
	s.mcpServer.AddTool(describeTool, mcp.NewStructuredToolHandler(s.handleDescribe))
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ValidateResponse, error) {
	uri, _ := args["schema"].(string)
	raw, _ := args["data"].(string)
	if uri == "" {
		return ValidateResponse{}, errors.New("schema is required")
	}

	data, err := value.DecodeJSON([]byte(raw))
	if err != nil {
		return ValidateResponse{}, fmt.Errorf("data is not valid JSON: %w", err)
	}

	res := ValidateResponse{Schema: uri, Valid: true}
	err = s.engine.Validate(ctx, uri, data)
	var verr *domain.ValidationError
	switch {
	case err == nil:
	case errors.As(err, &verr):
		res.Valid, res.Key, res.Error = false, verr.Key, err.Error()
	case errors.Is(err, domain.ErrTypeMismatch):
		res.Valid, res.Error = false, err.Error()
	default:
		slog.Warn("MCP validate failed", "schema", uri, "error", err)
		return ValidateResponse{}, fmt.Errorf("validate failed: %w", err)
	}
	return res, nil
}

func (s *Server) handleDescribe(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (schema.Summary, error) {
	uri, _ := args["schema"].(string)
	if uri == "" {
		return schema.Summary{}, errors.New("schema is required")
	}
	d, err := s.engine.Load(ctx, uri)
	if err != nil {
		return schema.Summary{}, fmt.Errorf("describe failed: %w", err)
	}
	return schema.Summarize(d), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(SchemasURI, "Registered Schemas",
		mcp.WithResourceDescription("Summaries of every compiled schema"),
		mcp.WithMIMEType("application/json"),
	), s.readSchemas)
}

func (s *Server) readSchemas(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	all := s.engine.Schemas()
	out := make([]schema.Summary, 0, len(all))
	for _, d := range all {
		out = append(out, schema.Summarize(d))
	}
	jsonBytes, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schemas: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SchemasURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
