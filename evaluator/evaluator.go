// Package evaluator implements the evaluate operation: run a submission in
// the sandbox, score it and hand the report to the store.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/isdmx/codescore/config"
	"github.com/isdmx/codescore/metrics"
	"github.com/isdmx/codescore/sandbox"
	"github.com/isdmx/codescore/scoring"
	"github.com/isdmx/codescore/store"
)

// ErrMissingSource is returned when a submission carries no code
var ErrMissingSource = errors.New("code is required")

// Submission is one piece of code to evaluate. TestCases is accepted for
// API compatibility but not used by scoring.
type Submission struct {
	Code           string
	TestCases      string
	ExpectedOutput string
}

// Evaluation is a stored, scored submission
type Evaluation struct {
	ID     string         `json:"evaluation_id"`
	Result scoring.Report `json:"result"`
}

// Service evaluates submissions. It is safe for concurrent use; the only
// shared state is the last issued id timestamp.
type Service struct {
	logger   *zap.Logger
	executor sandbox.Executor
	store    store.Store
	timeout  time.Duration
	slots    *semaphore.Weighted
	now      func() time.Time

	mu     sync.Mutex
	lastID time.Time
}

// maxIDAttempts bounds how often Evaluate retries a store-side id collision
const maxIDAttempts = 3

// Option configures a Service
type Option func(*Service)

// WithTimeout sets the execution budget of each run
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.timeout = timeout
	}
}

// WithMaxConcurrent bounds how many executions run at once
func WithMaxConcurrent(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.slots = semaphore.NewWeighted(n)
		}
	}
}

// WithClock overrides the clock used for evaluation ids
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service with the default timeout and no concurrency bound
func NewService(logger *zap.Logger, executor sandbox.Executor, st store.Store, opts ...Option) *Service {
	s := &Service{
		logger:   logger,
		executor: executor,
		store:    st,
		timeout:  sandbox.DefaultTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// New creates a Service from the application configuration
func New(cfg *config.Config, logger *zap.Logger, executor sandbox.Executor, st store.Store) *Service {
	return NewService(logger, executor, st,
		WithTimeout(cfg.GetTimeout()),
		WithMaxConcurrent(int64(cfg.Sandbox.MaxConcurrent)),
	)
}

// NewEvaluationID derives an evaluation id from its timestamp
func NewEvaluationID(t time.Time) string {
	return fmt.Sprintf("eval_%d.%06d", t.Unix(), t.Nanosecond()/int(time.Microsecond))
}

// nextIDTime returns a timestamp at microsecond resolution that is strictly
// later than every one handed out before by this Service.
func (s *Service) nextIDTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.now().Truncate(time.Microsecond)
	if !t.After(s.lastID) {
		t = s.lastID.Add(time.Microsecond)
	}
	s.lastID = t
	return t
}

// Score runs and scores a submission without persisting the result.
func (s *Service) Score(ctx context.Context, sub Submission) (scoring.Report, error) {
	if sub.Code == "" {
		return scoring.Report{}, ErrMissingSource
	}

	if s.slots != nil {
		if err := s.slots.Acquire(ctx, 1); err != nil {
			return scoring.Report{}, fmt.Errorf("waiting for an execution slot: %w", err)
		}
		defer s.slots.Release(1)
	}

	s.logger.Debug("evaluating submission",
		zap.Int("code_len", len(sub.Code)),
		zap.Int("test_cases_len", len(sub.TestCases)),
		zap.Bool("has_expected_output", sub.ExpectedOutput != ""))

	metrics.InflightExecutions.Inc()
	result := s.executor.Run(ctx, sub.Code, s.timeout)
	metrics.InflightExecutions.Dec()

	report := scoring.Score(sub.Code, sub.ExpectedOutput, result)
	metrics.ObserveEvaluation(result, report)

	fields := []zap.Field{
		zap.String("status", string(result.Status)),
		zap.Int("exit_code", result.ExitCode),
		zap.Duration("duration", result.Duration),
		zap.Int("stdout_len", len(result.Stdout)),
		zap.Int("stderr_len", len(result.Stderr)),
		zap.Int("score", report.Score),
	}
	if report.SubScores != nil {
		fields = append(fields,
			zap.Int("code_quality", report.CodeQuality),
			zap.Int("ml_knowledge", report.MLKnowledge),
			zap.Int("problem_solving", report.ProblemSolving),
			zap.Int("engineering", report.Engineering))
	}
	s.logger.Info("submission scored", fields...)

	return report, nil
}

// Evaluate scores a submission and stores the report under a new id.
func (s *Service) Evaluate(ctx context.Context, sub Submission) (Evaluation, error) {
	report, err := s.Score(ctx, sub)
	if err != nil {
		return Evaluation{}, err
	}

	for attempt := 1; ; attempt++ {
		id := NewEvaluationID(s.nextIDTime())
		err := s.store.Save(ctx, id, report)
		if err == nil {
			return Evaluation{ID: id, Result: report}, nil
		}
		if errors.Is(err, store.ErrExists) && attempt < maxIDAttempts {
			s.logger.Warn("evaluation id taken, retrying", zap.String("evaluation_id", id))
			continue
		}

		metrics.StoreErrors.WithLabelValues("save").Inc()
		s.logger.Error("failed to store evaluation", zap.String("evaluation_id", id), zap.Error(err))
		return Evaluation{}, fmt.Errorf("failed to store evaluation: %w", err)
	}
}

// Get returns a previously stored report, or store.ErrNotFound
func (s *Service) Get(ctx context.Context, id string) (scoring.Report, error) {
	report, err := s.store.Load(ctx, id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		metrics.StoreErrors.WithLabelValues("load").Inc()
		s.logger.Error("failed to load evaluation", zap.String("evaluation_id", id), zap.Error(err))
	}
	return report, err
}
