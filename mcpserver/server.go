package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/isdmx/codescore/config"
	"github.com/isdmx/codescore/evaluator"
	"github.com/isdmx/codescore/scoring"
	"github.com/isdmx/codescore/store"
)

// Tool names
const (
	EvaluateToolName      = "evaluate_submission"
	GetEvaluationToolName = "get_evaluation"
)

// Service is the part of the evaluator exposed as MCP tools
type Service interface {
	Evaluate(ctx context.Context, sub evaluator.Submission) (evaluator.Evaluation, error)
	Get(ctx context.Context, id string) (scoring.Report, error)
}

// MCPServer represents the MCP server
type MCPServer struct {
	config    *config.Config
	logger    *zap.Logger
	service   Service
	mcpServer *server.MCPServer

	mu         sync.Mutex
	httpServer *server.StreamableHTTPServer
}

// New creates a new MCPServer
func New(cfg *config.Config, logger *zap.Logger, service *evaluator.Service) (*MCPServer, error) {
	return NewWithService(cfg, logger, service)
}

// NewWithService creates an MCPServer around any Service implementation
func NewWithService(cfg *config.Config, logger *zap.Logger, service Service) (*MCPServer, error) {
	if service == nil {
		return nil, errors.New("evaluation service is required")
	}

	s := &MCPServer{
		config:  cfg,
		logger:  logger,
		service: service,
	}

	// Log configuration parameters on startup
	logger.Info("configuration loaded",
		zap.String("server.transport", cfg.Server.Transport),
		zap.Int("server.http_port", cfg.Server.HTTPPort),
		zap.Int("server.mcp_http_port", cfg.Server.MCPHTTPPort),
		zap.Int("sandbox.timeout_sec", cfg.Sandbox.TimeoutSec),
		zap.String("sandbox.interpreter", cfg.Sandbox.Interpreter),
		zap.Int("sandbox.max_concurrent", cfg.Sandbox.MaxConcurrent),
		zap.String("store.backend", cfg.Store.Backend),
		zap.Int("store.ttl_sec", cfg.Store.TTLSec),
	)

	s.mcpServer = server.NewMCPServer("codescore-evaluator", "Scores ML code submissions",
		server.WithToolCapabilities(false),
	)

	s.registerEvaluateTool()
	s.registerGetEvaluationTool()

	return s, nil
}

func (s *MCPServer) registerEvaluateTool() {
	tool := mcp.Tool{
		Name:        EvaluateToolName,
		Description: "Run a Python submission in the sandbox and score it for correctness, code quality, ML knowledge, problem solving and engineering",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"code": map[string]any{
					"type":        "string",
					"description": "Python source code of the submission",
				},
				"expected_output": map[string]any{
					"type":        "string",
					"description": "Reference stdout to compare against (optional)",
				},
				"test_cases": map[string]any{
					"type":        "string",
					"description": "Free-form test case description (optional, informational)",
				},
			},
			Required: []string{"code"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleEvaluate)
}

func (s *MCPServer) registerGetEvaluationTool() {
	tool := mcp.Tool{
		Name:        GetEvaluationToolName,
		Description: "Fetch a previously stored evaluation report",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"evaluation_id": map[string]any{
					"type":        "string",
					"description": "Id returned by evaluate_submission",
				},
			},
			Required: []string{"evaluation_id"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleGetEvaluation)
}

func (s *MCPServer) handleEvaluate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code := request.GetString("code", "")
	sub := evaluator.Submission{
		Code:           code,
		ExpectedOutput: request.GetString("expected_output", ""),
		TestCases:      request.GetString("test_cases", ""),
	}

	eval, err := s.service.Evaluate(ctx, sub)
	switch {
	case errors.Is(err, evaluator.ErrMissingSource):
		return errorResult("Code is required"), nil
	case err != nil:
		s.logger.Error("evaluation failed", zap.Error(err), zap.Int("code_len", len(code)))
		return errorResult(fmt.Sprintf("Evaluation failed: %v", err)), nil
	}

	s.logger.Info("evaluation created via MCP",
		zap.String("evaluation_id", eval.ID),
		zap.Bool("success", eval.Result.Success),
		zap.Int("score", eval.Result.Score))

	return jsonResult(eval)
}

func (s *MCPServer) handleGetEvaluation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("evaluation_id")
	if err != nil {
		return errorResult("evaluation_id is required"), nil
	}

	report, err := s.service.Get(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return errorResult("Evaluation not found"), nil
	case err != nil:
		s.logger.Error("failed to load evaluation", zap.String("evaluation_id", id), zap.Error(err))
		return errorResult(fmt.Sprintf("Failed to retrieve evaluation: %v", err)), nil
	}

	return jsonResult(report)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: string(data),
			},
		},
	}, nil
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: msg,
			},
		},
		IsError: true,
	}
}

// ServeStdio serves on stdin/stdout until the input closes
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("starting MCP server on stdio")
	return server.ServeStdio(s.mcpServer)
}

// ServeHTTP serves the streamable HTTP transport on server.mcp_http_port
func (s *MCPServer) ServeHTTP() error {
	port := s.config.Server.MCPHTTPPort
	s.logger.Info("starting MCP server on HTTP", zap.Int("port", port))

	httpServer := server.NewStreamableHTTPServer(s.mcpServer)
	s.mu.Lock()
	s.httpServer = httpServer
	s.mu.Unlock()
	return httpServer.Start(fmt.Sprintf(":%d", port))
}

// Shutdown stops the HTTP transport if it is running
func (s *MCPServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	httpServer := s.httpServer
	s.mu.Unlock()
	if httpServer == nil {
		return nil
	}
	s.logger.Info("stopping MCP HTTP server")
	return httpServer.Shutdown(ctx)
}

// GetMCPServer returns the underlying MCP server, e.g. to dispatch raw JSON-RPC messages
func (s *MCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}
