package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/isdmx/codescore/evaluator"
	"github.com/isdmx/codescore/store"
)

// EvaluateRequest is the body of POST /evaluate
type EvaluateRequest struct {
	Code           string `json:"code"`
	TestCases      string `json:"test_cases"`
	ExpectedOutput string `json:"expected_output"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type errorResponse struct {
	Error string `json:"error"`
}

const (
	msgInvalidBody     = "Invalid request body"
	msgCodeRequired    = "Code is required"
	msgNotFound        = "Evaluation not found"
	msgEvaluateFailed  = "Evaluation failed"
	msgRetrievalFailed = "Failed to retrieve evaluation"
)

func (s *Server) handleEvaluate(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return
	}

	eval, err := s.service.Evaluate(c.Request.Context(), evaluator.Submission{
		Code:           req.Code,
		TestCases:      req.TestCases,
		ExpectedOutput: req.ExpectedOutput,
	})
	switch {
	case errors.Is(err, evaluator.ErrMissingSource):
		c.JSON(http.StatusBadRequest, errorResponse{Error: msgCodeRequired})
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: msgEvaluateFailed})
	default:
		s.logger.Info("evaluation created",
			zap.String("evaluation_id", eval.ID),
			zap.String("request_id", c.GetString(requestIDContextKey)))
		c.JSON(http.StatusOK, eval)
	}
}

func (s *Server) handleGetEvaluation(c *gin.Context) {
	report, err := s.service.Get(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: msgNotFound})
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: msgRetrievalFailed})
	default:
		c.JSON(http.StatusOK, report)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: s.now().UTC().Format(time.RFC3339),
	})
}
