package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/isdmx/codescore/config"
	"github.com/isdmx/codescore/evaluator"
	"github.com/isdmx/codescore/httpapi"
	"github.com/isdmx/codescore/logger"
	"github.com/isdmx/codescore/mcpserver"
	"github.com/isdmx/codescore/sandbox"
	"github.com/isdmx/codescore/store"
)

func integrationConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Transport:   config.TransportHTTP,
			HTTPPort:    8000,
			MCPHTTPPort: 8081,
		},
		Sandbox: config.SandboxConfig{
			TimeoutSec:    5,
			Interpreter:   "python3",
			FileSuffix:    ".py",
			MaxConcurrent: 4,
			Environment:   []string{"PYTHONDONTWRITEBYTECODE=1"},
		},
		Store: config.StoreConfig{
			Backend:          config.StoreBackendMemory,
			TTLSec:           3600,
			KeyPrefix:        "evaluation:",
			MemoryMaxEntries: 100,
		},
		Logging: config.LoggingConfig{
			Mode:  "development",
			Level: "info",
		},
	}
}

func newService(t *testing.T, cfg *config.Config) *evaluator.Service {
	t.Helper()
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}

	testLogger := zaptest.NewLogger(t)
	executor, err := sandbox.NewExecutor(testLogger, cfg)
	require.NoError(t, err)

	st, err := store.New(cfg, testLogger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	return evaluator.New(cfg, testLogger, executor, st)
}

// TestIntegrationConfigLogger tests that a validated config produces a working logger
func TestIntegrationConfigLogger(t *testing.T) {
	cfg := integrationConfig()

	testLogger, err := logger.NewFromConfig(cfg)
	require.NoError(t, err)
	require.NotNil(t, testLogger)

	testLogger.Info("Integration test started")
	_ = testLogger.Sync()
}

// TestIntegrationEvaluate runs real submissions through sandbox, scoring and store
func TestIntegrationEvaluate(t *testing.T) {
	svc := newService(t, integrationConfig())
	ctx := context.Background()

	t.Run("MatchingOutput", func(t *testing.T) {
		eval, err := svc.Evaluate(ctx, evaluator.Submission{Code: `print("hello")`, ExpectedOutput: "hello"})
		require.NoError(t, err)
		assert.True(t, eval.Result.Success)
		assert.Equal(t, 100, eval.Result.Score)
		assert.Equal(t, "hello\n", eval.Result.Output)
		require.NotNil(t, eval.Result.SubScores)
		assert.Equal(t, 15, eval.Result.Engineering)

		stored, err := svc.Get(ctx, eval.ID)
		require.NoError(t, err)
		assert.Equal(t, eval.Result, stored)
	})

	t.Run("DivergingOutput", func(t *testing.T) {
		eval, err := svc.Evaluate(ctx, evaluator.Submission{Code: `print("goodbye")`, ExpectedOutput: "hello\nworld"})
		require.NoError(t, err)
		assert.True(t, eval.Result.Success)
		assert.Equal(t, 25, eval.Result.Score)
	})

	t.Run("RaisedException", func(t *testing.T) {
		eval, err := svc.Evaluate(ctx, evaluator.Submission{Code: `raise Exception("boom")`})
		require.NoError(t, err)
		assert.False(t, eval.Result.Success)
		assert.Equal(t, 0, eval.Result.Score)
		assert.Contains(t, eval.Result.Error, "Exception: boom")
		assert.Nil(t, eval.Result.SubScores)
	})

	t.Run("MLSubmission", func(t *testing.T) {
		code := strings.Join([]string{
			"import math",
			"",
			"def evaluate_model(config):",
			`    """Score a toy model."""`,
			"    try:",
			"        score = math.sqrt(config['accuracy'])",
			"    except KeyError:",
			"        score = 0",
			"    print(round(score, 2))",
			"",
			"evaluate_model({'accuracy': 0.81})",
		}, "\n")

		eval, err := svc.Evaluate(ctx, evaluator.Submission{Code: code, ExpectedOutput: "0.9"})
		require.NoError(t, err)
		require.True(t, eval.Result.Success, eval.Result.Error)
		assert.Equal(t, 100, eval.Result.Score)
		assert.Equal(t, 100, eval.Result.Engineering)
		assert.Equal(t, 100, eval.Result.CodeQuality)
	})
}

// TestIntegrationTimeout checks that a runaway loop is reported as a timeout
func TestIntegrationTimeout(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping timeout test in short mode")
	}
	cfg := integrationConfig()
	cfg.Sandbox.TimeoutSec = 1
	svc := newService(t, cfg)

	eval, err := svc.Evaluate(context.Background(), evaluator.Submission{Code: "while True:\n    pass\n"})
	require.NoError(t, err)
	assert.False(t, eval.Result.Success)
	assert.Equal(t, sandbox.TimeoutMessage, eval.Result.Error)
}

// TestIntegrationREST drives the REST API against the real service
func TestIntegrationREST(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newService(t, integrationConfig())
	server := httpapi.NewServer(zaptest.NewLogger(t), svc, "127.0.0.1:0")

	req := httptest.NewRequest(http.MethodPost, "/evaluate", strings.NewReader(`{"code":"print(6*7)","expected_output":"42"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var created struct {
		EvaluationID string         `json:"evaluation_id"`
		Result       map[string]any `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, strings.HasPrefix(created.EvaluationID, "eval_"))
	assert.EqualValues(t, 100, created.Result["score"])

	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/evaluation/"+created.EvaluationID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
}

// TestIntegrationMCP checks that the MCP server wires onto the real service
func TestIntegrationMCP(t *testing.T) {
	cfg := integrationConfig()
	svc := newService(t, cfg)

	server, err := mcpserver.New(cfg, zaptest.NewLogger(t), svc)
	require.NoError(t, err)
	require.NotNil(t, server.GetMCPServer())
}
