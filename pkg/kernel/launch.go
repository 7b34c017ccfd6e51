package kernel

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapio"
)

// terminateTimeout bounds how long Terminate waits for a killed process.
const terminateTimeout = 5 * time.Second

// Dialer opens channels to a launched kernel. The wire protocol lives behind
// this interface.
type Dialer interface {
	Dial(ctx context.Context, info ConnectionInfo) (Channels, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(ctx context.Context, info ConnectionInfo) (Channels, error)

// Dial implements Dialer.
func (f DialerFunc) Dial(ctx context.Context, info ConnectionInfo) (Channels, error) {
	return f(ctx, info)
}

// Launcher starts kernel processes.
type Launcher struct {
	// RuntimeDir receives connection files.
	RuntimeDir string
	// IP the kernel binds to; defaults to 127.0.0.1.
	IP  string
	Log *zap.Logger
}

// Launched is a started kernel, not yet attached to a session.
type Launched struct {
	Spec           Spec
	Process        *Process
	Connection     ConnectionInfo
	ConnectionFile string
}

// Launch writes a connection file and starts spec's argv. The process lives
// until Terminate is called on the returned Process; ctx only bounds startup.
func (l Launcher) Launch(ctx context.Context, spec Spec) (Launched, error) {
	if err := ctx.Err(); err != nil {
		return Launched{}, err
	}
	log := l.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("kernel", spec.Name))

	info, err := NewConnectionInfo(l.IP, spec.Name)
	if err != nil {
		return Launched{}, err
	}
	path, err := WriteConnectionFile(l.RuntimeDir, info)
	if err != nil {
		return Launched{}, err
	}

	argv := spec.Command(path)
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = os.Environ()
	for k, v := range spec.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	out := &zapio.Writer{Log: log, Level: zap.DebugLevel}
	cmd.Stdout = out
	cmd.Stderr = out
	// Children of the kernel may keep the output pipe open after it exits.
	cmd.WaitDelay = time.Second

	if err := cmd.Start(); err != nil {
		_ = os.Remove(path)
		_ = out.Close()
		return Launched{}, fmt.Errorf("kernel: start %s: %w", argv[0], err)
	}
	log.Info("kernel process started", zap.Int("pid", cmd.Process.Pid), zap.String("connection_file", path))

	p := &Process{
		cmd:            cmd,
		connectionFile: path,
		done:           make(chan struct{}),
	}
	go func() {
		p.waitErr = cmd.Wait()
		_ = out.Close()
		close(p.done)
	}()

	return Launched{Spec: spec, Process: p, Connection: info, ConnectionFile: path}, nil
}

// Process is the spawn handle of a launched kernel.
type Process struct {
	cmd            *exec.Cmd
	connectionFile string
	done           chan struct{}
	waitErr        error

	once    sync.Once
	termErr error
}

// Pid returns the operating system process id.
func (p *Process) Pid() int { return p.cmd.Process.Pid }

// Done is closed once the process has exited.
func (p *Process) Done() <-chan struct{} { return p.done }

// Terminate kills the process, waits for it to exit and removes the
// connection file. Calls after the first return the first result.
func (p *Process) Terminate() error {
	p.once.Do(func() {
		select {
		case <-p.done:
		default:
			if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
				p.termErr = fmt.Errorf("kernel: kill: %w", err)
			}
			select {
			case <-p.done:
			case <-time.After(terminateTimeout):
				p.termErr = errors.Join(p.termErr, fmt.Errorf("kernel: pid %d did not exit", p.cmd.Process.Pid))
			}
		}
		if err := os.Remove(p.connectionFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			p.termErr = errors.Join(p.termErr, fmt.Errorf("kernel: remove connection file: %w", err))
		}
	})
	return p.termErr
}
