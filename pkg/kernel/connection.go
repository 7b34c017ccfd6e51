package kernel

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ConnectionInfo is the content of a kernel connection file.
type ConnectionInfo struct {
	IP              string `json:"ip"`
	Transport       string `json:"transport"`
	ShellPort       int    `json:"shell_port"`
	IOPubPort       int    `json:"iopub_port"`
	StdinPort       int    `json:"stdin_port"`
	ControlPort     int    `json:"control_port"`
	HBPort          int    `json:"hb_port"`
	Key             string `json:"key"`
	SignatureScheme string `json:"signature_scheme"`
	KernelName      string `json:"kernel_name,omitempty"`
}

// NewConnectionInfo reserves five free TCP ports on ip and generates a
// signing key.
func NewConnectionInfo(ip, kernelName string) (ConnectionInfo, error) {
	if ip == "" {
		ip = "127.0.0.1"
	}
	ports, err := freePorts(ip, 5)
	if err != nil {
		return ConnectionInfo{}, err
	}
	return ConnectionInfo{
		IP:              ip,
		Transport:       "tcp",
		ShellPort:       ports[0],
		IOPubPort:       ports[1],
		StdinPort:       ports[2],
		ControlPort:     ports[3],
		HBPort:          ports[4],
		Key:             uuid.NewString(),
		SignatureScheme: "hmac-sha256",
		KernelName:      kernelName,
	}, nil
}

// freePorts holds every listener open until all ports are picked so the same
// port is not handed out twice.
func freePorts(ip string, n int) ([]int, error) {
	listeners := make([]net.Listener, 0, n)
	defer func() {
		for _, l := range listeners {
			_ = l.Close()
		}
	}()
	ports := make([]int, 0, n)
	for i := 0; i < n; i++ {
		l, err := net.Listen("tcp", net.JoinHostPort(ip, "0"))
		if err != nil {
			return nil, fmt.Errorf("kernel: reserve port: %w", err)
		}
		listeners = append(listeners, l)
		ports = append(ports, l.Addr().(*net.TCPAddr).Port)
	}
	return ports, nil
}

// WriteConnectionFile stores info as dir/kernel-<uuid>.json and returns the
// path.
func WriteConnectionFile(dir string, info ConnectionInfo) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("kernel: ensure runtime dir: %w", err)
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("kernel-%s.json", uuid.NewString()))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("kernel: write connection file: %w", err)
	}
	return path, nil
}

// ReadConnectionFile loads a connection file written by WriteConnectionFile
// or by another frontend.
func ReadConnectionFile(path string) (ConnectionInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ConnectionInfo{}, err
	}
	var info ConnectionInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return ConnectionInfo{}, fmt.Errorf("kernel: parse connection file: %w", err)
	}
	return info, nil
}
