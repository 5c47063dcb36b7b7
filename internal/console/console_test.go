package console

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sazadakthar786/Software-failure-detection/internal/app"
	"github.com/Sazadakthar786/Software-failure-detection/internal/config"
	"github.com/Sazadakthar786/Software-failure-detection/internal/metrics"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

func newTestConsole(t *testing.T) (*Console, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.DBPath = filepath.Join(dir, "sfd.db")
	cfg.ModelPath = filepath.Join(dir, "model.json")
	cfg.Metrics.HostCauses = false
	cfg.Training.Seed = 3
	cfg.Watchdog.Validation.MaxWait = 200 * time.Millisecond
	cfg.Watchdog.Validation.SampleInterval = 50 * time.Millisecond

	a, err := app.New(context.Background(), cfg, &app.Options{
		Source: metrics.StaticSource{CPU: 15, Memory: 15},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	out := &bytes.Buffer{}
	c, err := New(&Config{App: a, Out: out})
	require.NoError(t, err)
	return c, out
}

func TestNewRequiresApp(t *testing.T) {
	_, err := New(&Config{})
	assert.Error(t, err)
}

func TestExecuteDetectAndRecover(t *testing.T) {
	c, out := newTestConsole(t)

	require.NoError(t, c.Execute("detect 95 40"))
	assert.Contains(t, out.String(), "Failure detected")
	assert.Contains(t, out.String(), "Failed")

	out.Reset()
	require.NoError(t, c.Execute("recover"))
	assert.Contains(t, out.String(), "restart")
	assert.Contains(t, out.String(), "recovered")

	out.Reset()
	require.NoError(t, c.Execute("summary"))
	assert.Contains(t, out.String(), "Total actions: 1")
	assert.Contains(t, out.String(), "100.0%")

	out.Reset()
	require.NoError(t, c.Execute("actions"))
	assert.Contains(t, out.String(), "restart")
}

func TestExecuteHistory(t *testing.T) {
	c, out := newTestConsole(t)

	require.NoError(t, c.Execute("history"))
	assert.Contains(t, out.String(), "No recovery cycles this session")

	require.NoError(t, c.Execute("detect 95 40"))
	require.NoError(t, c.Execute("recover"))
	out.Reset()
	require.NoError(t, c.Execute("history"))
	history := c.app.Watchdog.GetRecoveryHistory()
	require.Len(t, history, 1)
	assert.Contains(t, out.String(), history[0].CycleID)
	assert.Contains(t, out.String(), "restart")
	assert.Contains(t, out.String(), "heuristic")
}

func TestExecuteDetectUsage(t *testing.T) {
	c, _ := newTestConsole(t)
	assert.Error(t, c.Execute("detect 95"))
	assert.Error(t, c.Execute("detect high low"))
	assert.Error(t, c.Execute("detect 101 10"))
}

func TestExecuteSimulateAndMetrics(t *testing.T) {
	c, out := newTestConsole(t)

	require.NoError(t, c.Execute("simulate-failure"))
	assert.Contains(t, out.String(), "Recorded sample #1")

	out.Reset()
	require.NoError(t, c.Execute("metrics 5"))
	assert.Contains(t, out.String(), "#1")
	assert.Contains(t, out.String(), "Failed")

	assert.Error(t, c.Execute("metrics zero"))
}

func TestExecuteEmptyListings(t *testing.T) {
	c, out := newTestConsole(t)

	require.NoError(t, c.Execute("metrics"))
	require.NoError(t, c.Execute("actions"))
	require.NoError(t, c.Execute("summary"))
	assert.Contains(t, out.String(), "No metric samples recorded")
	assert.Contains(t, out.String(), "No actions recorded")
	assert.Contains(t, out.String(), "Success rate:  n/a")
}

func TestExecuteStatusAndHelp(t *testing.T) {
	c, out := newTestConsole(t)

	require.NoError(t, c.Execute("status"))
	assert.Contains(t, out.String(), "heuristic")
	assert.Contains(t, out.String(), "static")

	out.Reset()
	require.NoError(t, c.Execute("?"))
	for _, name := range []string{"detect", "recover", "train", "summary", "exit"} {
		assert.Contains(t, out.String(), name)
	}

	out.Reset()
	require.NoError(t, c.Execute("dance"))
	assert.Contains(t, out.String(), "Unknown command")

	assert.NoError(t, c.Execute("   "))
}

func TestExecuteTrain(t *testing.T) {
	c, out := newTestConsole(t)
	require.NoError(t, c.Execute("train 1"))
	assert.Contains(t, out.String(), "Trained 1 episode(s)")
	assert.Equal(t, "learned", c.app.Engine.PolicyName())
}

func TestExecuteExit(t *testing.T) {
	c, _ := newTestConsole(t)
	assert.ErrorIs(t, c.Execute("quit"), errExit)
}
