package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anteater/internal/config"
	"anteater/internal/errs"
	"anteater/internal/session"
)

func newTestSession(t *testing.T) *session.AnalysisSession {
	t.Helper()
	s, err := session.New(config.DefaultConfig())
	require.NoError(t, err)
	require.NotEmpty(t, s.ID.String())
	return s
}

func TestNew_DefaultsConfigWhenNil(t *testing.T) {
	s, err := session.New(nil)
	require.NoError(t, err)
	require.NotNil(t, s)
	require.NotNil(t, s.Warehouse())
}

func TestResolveFile_AfterShutdown_ReturnsSessionDisposedError(t *testing.T) {
	s := newTestSession(t)
	s.Shutdown()

	err := s.ResolveFile(emptyFunctionUnit("a.dart", "f"))
	require.Error(t, err)
	var disposed *errs.SessionDisposedError
	require.ErrorAs(t, err, &disposed)
}

func TestShutdown_IsIdempotent(t *testing.T) {
	s := newTestSession(t)
	s.Shutdown()
	assert.NotPanics(t, func() { s.Shutdown() })
}

func TestAnalyzeProject_AfterShutdown_ReturnsSessionDisposedError(t *testing.T) {
	s := newTestSession(t)
	s.Shutdown()

	_, err := s.AnalyzeProject(context.Background(), []string{"a.dart"})
	require.Error(t, err)
	var disposed *errs.SessionDisposedError
	require.ErrorAs(t, err, &disposed)
}

func TestAnalyzeProject_UnresolvedFile_RecordsErrorDiagnostic(t *testing.T) {
	s := newTestSession(t)
	t.Cleanup(s.Shutdown)

	result, err := s.AnalyzeProject(context.Background(), []string{"missing.dart"})
	require.NoError(t, err)
	require.Equal(t, 0, result.FileCount)
	require.Len(t, result.Diagnostics["missing.dart"], 1)
	assert.Equal(t, session.SeverityError, result.Diagnostics["missing.dart"][0].Severity)
	assert.Equal(t, 1, result.ErrorCount)
}

func TestAnalyzeProject_EmptyFunction_ProducesNoDiagnostics(t *testing.T) {
	s := newTestSession(t)
	t.Cleanup(s.Shutdown)

	unit := emptyFunctionUnit("ok.dart", "doNothing")
	require.NoError(t, s.ResolveFile(unit))

	result, err := s.AnalyzeProject(context.Background(), []string{"ok.dart"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.FileCount)
	assert.Empty(t, result.Diagnostics["ok.dart"])
	assert.Equal(t, 0, result.TotalDiagnostics)
}

func TestAnalyzeProject_RespectsContextCancellation(t *testing.T) {
	s := newTestSession(t)
	t.Cleanup(s.Shutdown)

	unit := emptyFunctionUnit("ok.dart", "doNothing")
	require.NoError(t, s.ResolveFile(unit))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.AnalyzeProject(ctx, []string{"ok.dart"})
	require.Error(t, err)
	assert.Equal(t, 0, result.FileCount)
}

func TestMetricsReportAndDebtReport_EmptyBeforeFirstRun(t *testing.T) {
	s := newTestSession(t)
	t.Cleanup(s.Shutdown)

	mr := s.MetricsReport()
	assert.Empty(t, mr.Functions)

	dr := s.DebtReport()
	assert.Empty(t, dr.Items)
	assert.Equal(t, 0.0, dr.TotalCost)
}

func TestMetricsReport_ReflectsMostRecentAnalyzeProjectRun(t *testing.T) {
	s := newTestSession(t)
	t.Cleanup(s.Shutdown)

	unit := emptyFunctionUnit("ok.dart", "doNothing")
	require.NoError(t, s.ResolveFile(unit))

	_, err := s.AnalyzeProject(context.Background(), []string{"ok.dart"})
	require.NoError(t, err)

	mr := s.MetricsReport()
	require.Len(t, mr.Functions, 1)
	assert.Equal(t, "doNothing", mr.Functions[0].Name)
}

func TestResolveFile_ReplacesPriorEntryForSamePath(t *testing.T) {
	s := newTestSession(t)
	t.Cleanup(s.Shutdown)

	require.NoError(t, s.ResolveFile(emptyFunctionUnit("ok.dart", "first")))
	require.NoError(t, s.ResolveFile(emptyFunctionUnit("ok.dart", "second")))

	result, err := s.AnalyzeProject(context.Background(), []string{"ok.dart"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.FileCount)

	mr := s.MetricsReport()
	require.Len(t, mr.Functions, 1)
	assert.Equal(t, "second", mr.Functions[0].Name)
}
