package kernel

import "fmt"

// Intent is any application request. Unrecognized values are ignored.
type Intent = any

// NewKernel replaces the current session with a freshly launched kernel.
type NewKernel struct {
	KernelSpecName string
	ConnectionFile string
	Channels       Channels
	Spawn          SpawnHandle
}

// Describe renders the intent for logs.
func (m NewKernel) Describe() string {
	return fmt.Sprintf("new-kernel spec:%q file:%q", m.KernelSpecName, m.ConnectionFile)
}

// KillKernel shuts the session down on request.
type KillKernel struct{}

// Describe renders the intent for logs.
func (KillKernel) Describe() string { return "kill-kernel" }

// Exit shuts the session down because the application is closing.
type Exit struct{}

// Describe renders the intent for logs.
func (Exit) Describe() string { return "exit" }

// SetExecutionState records a status reported by the kernel.
type SetExecutionState struct {
	ExecutionState ExecutionState
}

// Describe renders the intent for logs.
func (m SetExecutionState) Describe() string {
	return fmt.Sprintf("execution-state state:%q", m.ExecutionState)
}

// StartSaving marks a save in progress.
type StartSaving struct{}

// Describe renders the intent for logs.
func (StartSaving) Describe() string { return "start-saving" }

// DoneSaving marks the save finished.
type DoneSaving struct{}

// Describe renders the intent for logs.
func (DoneSaving) Describe() string { return "done-saving" }

// ChangeFilename sets the name the notebook is saved under. Empty names are
// ignored.
type ChangeFilename struct {
	Filename string
}

// Describe renders the intent for logs.
func (m ChangeFilename) Describe() string { return fmt.Sprintf("filename name:%q", m.Filename) }

// KernelNotConnected reports an attempt to run code without a kernel.
type KernelNotConnected struct{}

// Describe renders the intent for logs.
func (KernelNotConnected) Describe() string { return "kernel-not-connected" }
