package kernel

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func shellSpec(t *testing.T, script string) Spec {
	t.Helper()
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	return Spec{Name: "sh", Argv: []string{"/bin/sh", "-c", script, "{connection_file}"}}
}

func TestLaunchAndTerminate(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := Launcher{RuntimeDir: t.TempDir()}
	k, err := l.Launch(context.Background(), shellSpec(t, "exec sleep 30"))
	require.NoError(t, err)
	require.NotZero(t, k.Process.Pid())

	info, err := ReadConnectionFile(k.ConnectionFile)
	require.NoError(t, err)
	require.Equal(t, k.Connection, info)
	require.Equal(t, "sh", info.KernelName)

	require.NoError(t, k.Process.Terminate())
	select {
	case <-k.Process.Done():
	default:
		t.Fatal("expected process to have exited")
	}
	_, err = os.Stat(k.ConnectionFile)
	require.True(t, errors.Is(err, fs.ErrNotExist), "connection file should be removed, got %v", err)

	// Idempotent.
	require.NoError(t, k.Process.Terminate())
}

func TestTerminateAfterExit(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := Launcher{RuntimeDir: t.TempDir()}
	k, err := l.Launch(context.Background(), shellSpec(t, "exit 0"))
	require.NoError(t, err)

	select {
	case <-k.Process.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("process did not exit")
	}
	require.NoError(t, k.Process.Terminate())
}

func TestLaunchMissingBinary(t *testing.T) {
	dir := t.TempDir()
	l := Launcher{RuntimeDir: dir}
	_, err := l.Launch(context.Background(), Spec{Name: "nope", Argv: []string{"/definitely/not/a/kernel"}})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries, "connection file should be cleaned up")
}

func TestLaunchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Launcher{RuntimeDir: t.TempDir()}.Launch(ctx, Spec{Argv: []string{"true"}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestProcessAsSessionSpawn(t *testing.T) {
	defer goleak.VerifyNone(t)

	k, err := Launcher{RuntimeDir: t.TempDir()}.Launch(context.Background(), shellSpec(t, "exec sleep 30"))
	require.NoError(t, err)

	r := NewReducer(nil)
	s := r.Reduce(NewAppState(), NewKernel{KernelSpecName: "sh", ConnectionFile: k.ConnectionFile, Spawn: k.Process})
	s = r.Reduce(s, KillKernel{})
	require.False(t, s.Held())

	select {
	case <-k.Process.Done():
	default:
		t.Fatal("expected process to be terminated by shutdown")
	}
}
