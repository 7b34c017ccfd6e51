package kernel

import (
	"fmt"
	"strings"
)

// ExecutionState is the kernel status as last reported. It is advisory: the
// kernel may report any state at any time.
type ExecutionState string

const (
	NotConnected ExecutionState = "not connected"
	Starting     ExecutionState = "starting"
	Idle         ExecutionState = "idle"
	Busy         ExecutionState = "busy"
	Errored      ExecutionState = "error"
)

// ParseExecutionState maps a status string reported by a kernel.
func ParseExecutionState(raw string) (ExecutionState, error) {
	switch s := ExecutionState(strings.ToLower(strings.TrimSpace(raw))); s {
	case NotConnected, Starting, Idle, Busy, Errored:
		return s, nil
	default:
		return NotConnected, fmt.Errorf("kernel: unknown execution state %q", raw)
	}
}

// Channels is an open connection to a running kernel.
type Channels interface {
	Close() error
}

// SpawnHandle owns the kernel process.
type SpawnHandle interface {
	Terminate() error
}

// Session is the running kernel. At most one exists per application.
type Session struct {
	Channels       Channels
	Spawn          SpawnHandle
	ConnectionFile string
	KernelSpecName string
	ExecutionState ExecutionState
}

// Held reports whether the session owns any kernel resources.
func (s Session) Held() bool {
	return s.Channels != nil || s.Spawn != nil
}

// AppState is the application level state that owns the session.
type AppState struct {
	Session

	IsSaving bool
	Filename string
	Error    string
}

// NewAppState returns the initial, disconnected state.
func NewAppState() AppState {
	return AppState{Session: Session{ExecutionState: NotConnected}}
}

// Connected reports whether a kernel is attached.
func (s AppState) Connected() bool {
	return s.ExecutionState != "" && s.ExecutionState != NotConnected
}
