// Package kernel tracks the execution backend attached to a notebook: its
// lifecycle, reported status, and the process and connection resources it
// owns.
package kernel

import (
	"go.uber.org/zap"
)

// NotConnectedMessage is the error surfaced when code runs without a kernel.
const NotConnectedMessage = "Error: We're not connected to a runtime!"

// Reducer applies application intents to an AppState. Releasing a session is
// the only side effect it performs.
type Reducer struct {
	Log *zap.Logger
}

// NewReducer returns a Reducer that logs release failures to log.
func NewReducer(log *zap.Logger) Reducer {
	if log == nil {
		log = zap.NewNop()
	}
	return Reducer{Log: log}
}

func (r Reducer) log() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

// Handles reports whether in is an application intent.
func Handles(in Intent) bool {
	switch in.(type) {
	case NewKernel, KillKernel, Exit, SetExecutionState, StartSaving, DoneSaving,
		ChangeFilename, KernelNotConnected:
		return true
	default:
		return false
	}
}

// Reduce applies in to s. Unknown intents return s unchanged.
func (r Reducer) Reduce(s AppState, in Intent) AppState {
	next, release := r.Step(s, in)
	release()
	return next
}

// Step applies in to s like Reduce, but hands back the release of the
// session the intent displaced instead of performing it. The caller must run
// release before applying the next intent. release is never nil.
func (r Reducer) Step(s AppState, in Intent) (AppState, func()) {
	old := s.Session
	switch msg := in.(type) {
	case NewKernel:
		s.Session = r.started(msg.KernelSpecName, msg.ConnectionFile, msg.Channels, msg.Spawn)
	case KillKernel, Exit:
		s.Session = Session{ExecutionState: NotConnected}
	case SetExecutionState:
		s.ExecutionState = msg.ExecutionState
		return s, func() {}
	case StartSaving:
		s.IsSaving = true
		return s, func() {}
	case DoneSaving:
		s.IsSaving = false
		return s, func() {}
	case ChangeFilename:
		if msg.Filename != "" {
			s.Filename = msg.Filename
		}
		return s, func() {}
	case KernelNotConnected:
		s.Error = NotConnectedMessage
		return s, func() {}
	default:
		return s, func() {}
	}
	return s, func() { r.release(old) }
}

// Spawn releases whatever s holds and returns a session that owns the new
// handles, in the starting state. The old session is fully released before
// the new handles are adopted.
func (r Reducer) Spawn(s Session, specName, connectionFile string, channels Channels, spawn SpawnHandle) Session {
	r.release(s)
	return r.started(specName, connectionFile, channels, spawn)
}

func (r Reducer) started(specName, connectionFile string, channels Channels, spawn SpawnHandle) Session {
	r.log().Info("kernel starting",
		zap.String("kernel", specName),
		zap.String("connection_file", connectionFile))
	return Session{
		Channels:       channels,
		Spawn:          spawn,
		ConnectionFile: connectionFile,
		KernelSpecName: specName,
		ExecutionState: Starting,
	}
}

// Shutdown releases s and returns the empty, disconnected session.
func (r Reducer) Shutdown(s Session) Session {
	r.release(s)
	return Session{ExecutionState: NotConnected}
}

// release closes the channels and terminates the process. Failures are
// logged and never stop the release.
func (r Reducer) release(s Session) {
	if !s.Held() {
		return
	}
	log := r.log().With(zap.String("kernel", s.KernelSpecName))
	if s.Channels != nil {
		if err := s.Channels.Close(); err != nil {
			log.Warn("kernel channels close failed", zap.Error(err))
		}
	}
	if s.Spawn != nil {
		if err := s.Spawn.Terminate(); err != nil {
			log.Warn("kernel terminate failed", zap.Error(err))
		}
	}
	log.Info("kernel released")
}
