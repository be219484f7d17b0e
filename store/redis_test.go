package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdmx/codescore/scoring"
)

func newMiniredisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := DefaultRedisConfig()
	cfg.Addr = mr.Addr()
	s, err := NewRedisStoreWithConfig(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func successReport() scoring.Report {
	return scoring.Report{
		Success: true,
		Score:   100,
		Output:  "hello\n",
		SubScores: &scoring.SubScores{
			CodeQuality:    35,
			MLKnowledge:    55,
			ProblemSolving: 50,
			Engineering:    0,
		},
	}
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()

	t.Run("SaveAndLoad", func(t *testing.T) {
		s, mr := newMiniredisStore(t)

		require.NoError(t, s.Save(ctx, "eval_1", successReport()))
		assert.True(t, mr.Exists("evaluation:eval_1"))

		got, err := s.Load(ctx, "eval_1")
		require.NoError(t, err)
		assert.Equal(t, successReport(), got)
	})

	t.Run("GatedReportKeepsSubScoresAbsent", func(t *testing.T) {
		s, _ := newMiniredisStore(t)
		failed := scoring.Report{Success: false, Score: 0, Error: "Code execution timed out"}

		require.NoError(t, s.Save(ctx, "eval_2", failed))
		got, err := s.Load(ctx, "eval_2")
		require.NoError(t, err)
		assert.Nil(t, got.SubScores)
		assert.Equal(t, failed, got)
	})

	t.Run("ExpiresAfterOneHour", func(t *testing.T) {
		s, mr := newMiniredisStore(t)

		require.NoError(t, s.Save(ctx, "eval_3", successReport()))
		assert.Equal(t, time.Hour, mr.TTL("evaluation:eval_3"))

		mr.FastForward(time.Hour + time.Second)
		_, err := s.Load(ctx, "eval_3")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("RefusesLiveDuplicate", func(t *testing.T) {
		s, _ := newMiniredisStore(t)

		require.NoError(t, s.Save(ctx, "eval_4", successReport()))
		err := s.Save(ctx, "eval_4", scoring.Report{Error: "boom"})
		assert.ErrorIs(t, err, ErrExists)

		got, err := s.Load(ctx, "eval_4")
		require.NoError(t, err)
		assert.Equal(t, successReport(), got)
	})

	t.Run("ReusesExpiredID", func(t *testing.T) {
		s, mr := newMiniredisStore(t)

		require.NoError(t, s.Save(ctx, "eval_5", successReport()))
		mr.FastForward(time.Hour + time.Second)
		assert.NoError(t, s.Save(ctx, "eval_5", successReport()))
	})

	t.Run("Missing", func(t *testing.T) {
		s, _ := newMiniredisStore(t)
		_, err := s.Load(ctx, "eval_missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("CorruptedValue", func(t *testing.T) {
		s, mr := newMiniredisStore(t)
		require.NoError(t, mr.Set("evaluation:eval_bad", "not json"))

		_, err := s.Load(ctx, "eval_bad")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "failed to decode")
	})

	t.Run("ServerGone", func(t *testing.T) {
		s, mr := newMiniredisStore(t)
		mr.Close()

		_, err := s.Load(ctx, "eval_1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)

		assert.Error(t, s.Save(ctx, "eval_1", successReport()))
	})
}

func TestNewRedisStoreWithConfig(t *testing.T) {
	t.Run("NilConfig", func(t *testing.T) {
		_, err := NewRedisStoreWithConfig(nil)
		assert.Error(t, err)
	})

	t.Run("EmptyAddr", func(t *testing.T) {
		_, err := NewRedisStoreWithConfig(DefaultRedisConfig())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "addr cannot be empty")
	})

	t.Run("Unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		cfg := DefaultRedisConfig()
		cfg.Addr = addr
		cfg.MaxRetries = -1
		cfg.DialTimeout = 200 * time.Millisecond
		_, err := NewRedisStoreWithConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to ping redis")
	})

	t.Run("CustomPrefixAndTTL", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := DefaultRedisConfig()
		cfg.Addr = mr.Addr()
		cfg.KeyPrefix = "scores:"
		cfg.TTL = time.Minute

		s, err := NewRedisStoreWithConfig(cfg)
		require.NoError(t, err)
		defer s.Close()

		require.NoError(t, s.Save(context.Background(), "x", successReport()))
		assert.Equal(t, time.Minute, mr.TTL("scores:x"))
	})
}
