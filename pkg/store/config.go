package store

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config is what persistence needs to know about its environment.
type Config interface {
	BasePath() string
}

// FileConfig is the resolved .nbook configuration.
type FileConfig struct {
	Path          string   `json:"path" yaml:"path"`
	KernelDefault string   `json:"kernelDefault" yaml:"kernelDefault"`
	KernelPaths   []string `json:"kernelPaths,omitempty" yaml:"kernelPaths,omitempty"`
	RuntimeDir    string   `json:"runtimeDir" yaml:"runtimeDir"`
	LogLevel      string   `json:"logLevel" yaml:"logLevel"`
	LogFile       string   `json:"logFile,omitempty" yaml:"logFile,omitempty"`
}

// BasePath implements Config.
func (f *FileConfig) BasePath() string {
	return f.Path
}

// LoadConfig reads .nbook.yaml from $NBOOK_CONFIG_PATH or the working
// directory, then applies NBOOK_* environment overrides. A missing config
// file is not an error.
func LoadConfig() (*FileConfig, error) {
	v := viper.New()
	v.SetDefault("path", "~/.nbook")
	v.SetDefault("kernel.default", "python3")
	v.SetDefault("kernel.paths", []string{})
	v.SetDefault("runtime.dir", "~/.local/share/jupyter/runtime")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetConfigName(".nbook") // .yaml is implicit
	v.SetEnvPrefix("NBOOK")
	// kernel.default -> NBOOK_KERNEL_DEFAULT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("NBOOK_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("store: read config: %w", err)
		}
	}

	path, err := homedir.Expand(v.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("store: expand path: %w", err)
	}
	runtime, err := homedir.Expand(v.GetString("runtime.dir"))
	if err != nil {
		return nil, fmt.Errorf("store: expand runtime dir: %w", err)
	}
	var kernelPaths []string
	for _, p := range v.GetStringSlice("kernel.paths") {
		expanded, err := homedir.Expand(p)
		if err != nil {
			return nil, fmt.Errorf("store: expand kernel path %q: %w", p, err)
		}
		kernelPaths = append(kernelPaths, expanded)
	}

	return &FileConfig{
		Path:          path,
		KernelDefault: v.GetString("kernel.default"),
		KernelPaths:   kernelPaths,
		RuntimeDir:    runtime,
		LogLevel:      v.GetString("log.level"),
		LogFile:       v.GetString("log.file"),
	}, nil
}
