package procexec

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_SuccessfulExit(t *testing.T) {
	res, err := Run(context.Background(), Spec{
		Path:   "/bin/true",
		Stdout: StdioPipe,
		Stderr: StdioPipe,
	})
	require.NoError(t, err)
	assert.True(t, res.Reason.Exited)
	assert.Equal(t, 0, res.Reason.Code)
}

func TestRun_NonZeroExitReturnsNonZeroExitCode(t *testing.T) {
	_, err := Run(context.Background(), Spec{
		Path:   "/bin/false",
		Stdout: StdioPipe,
		Stderr: StdioPipe,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exited with code")
}

func TestRunCollectingOutput_CapturesStdout(t *testing.T) {
	res, err := RunCollectingOutput(context.Background(), Spec{
		Path: "/bin/echo",
		Args: []string{"hello"},
	})
	require.NoError(t, err)
	assert.Contains(t, string(res.Stdout), "hello")
}

func TestRunProcessingOutput_StreamsLines(t *testing.T) {
	var lines []string
	_, err := RunProcessingOutput(context.Background(), Spec{
		Path: "/bin/sh",
		Args: []string{"-c", "echo one; echo two"},
	}, func(line string) {
		lines = append(lines, line)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, lines)
}

func TestRun_ContextCancelTriggersTeardown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	_, err := Run(ctx, Spec{
		Path:          "/bin/sleep",
		Args:          []string{"10"},
		TeardownGrace: 50 * time.Millisecond,
	})
	require.Error(t, err)
}
