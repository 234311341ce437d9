package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anteater/internal/config"
	"anteater/internal/session"
)

func TestPool_AnalyzeFiles_MergesAcrossFiles(t *testing.T) {
	s, err := session.New(config.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(s.Shutdown)

	require.NoError(t, s.ResolveFile(emptyFunctionUnit("a.dart", "fnA")))
	require.NoError(t, s.ResolveFile(emptyFunctionUnit("b.dart", "fnB")))

	pool := session.NewPool(s)
	result, err := pool.AnalyzeFiles(context.Background(), []string{"a.dart", "b.dart", "missing.dart"})
	require.NoError(t, err)

	assert.Equal(t, 2, result.FileCount)
	assert.Empty(t, result.Diagnostics["a.dart"])
	assert.Empty(t, result.Diagnostics["b.dart"])
	require.Len(t, result.Diagnostics["missing.dart"], 1)
	assert.Equal(t, 1, result.ErrorCount)

	mr := s.MetricsReport()
	assert.Len(t, mr.Functions, 2)
}

func TestPool_AnalyzeFiles_AfterShutdown_ReturnsSessionDisposedError(t *testing.T) {
	s, err := session.New(config.DefaultConfig())
	require.NoError(t, err)
	s.Shutdown()

	pool := session.NewPool(s)
	_, err = pool.AnalyzeFiles(context.Background(), []string{"a.dart"})
	require.Error(t, err)
}

func TestNewPool_FallsBackToLimitOneWhenUnconfigured(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Session.MaxConcurrentFiles = 0
	s, err := session.New(cfg)
	require.NoError(t, err)
	t.Cleanup(s.Shutdown)

	pool := session.NewPool(s)
	require.NotNil(t, pool)
}
