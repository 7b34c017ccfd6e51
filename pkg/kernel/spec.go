package kernel

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/go-homedir"
)

const specFile = "kernel.json"

// Spec describes how to start one flavor of kernel, as read from a
// kernel.json file.
type Spec struct {
	Name          string            `json:"-"`
	Dir           string            `json:"-"`
	Argv          []string          `json:"argv"`
	DisplayName   string            `json:"display_name"`
	Language      string            `json:"language"`
	InterruptMode string            `json:"interrupt_mode,omitempty"`
	Env           map[string]string `json:"env,omitempty"`
	Metadata      map[string]any    `json:"metadata,omitempty"`
}

// ErrSpecNotFound is returned when no kernel spec has the requested name.
var ErrSpecNotFound = errors.New("kernel: spec not found")

// DefaultSpecDirs returns the kernel spec directories searched by default,
// highest priority first: entries of JUPYTER_PATH, the user data dir, then
// the system dirs.
func DefaultSpecDirs() []string {
	var dirs []string
	if jp := os.Getenv("JUPYTER_PATH"); jp != "" {
		for _, p := range filepath.SplitList(jp) {
			dirs = append(dirs, filepath.Join(p, "kernels"))
		}
	}
	if home, err := homedir.Dir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".local", "share", "jupyter", "kernels"))
	}
	return append(dirs,
		"/usr/local/share/jupyter/kernels",
		"/usr/share/jupyter/kernels",
	)
}

// FindSpecs reads every <dir>/<name>/kernel.json. When a name appears in more
// than one dir the earlier dir wins. Missing dirs are skipped.
func FindSpecs(dirs []string) (map[string]Spec, error) {
	specs := make(map[string]Spec)
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("kernel: read spec dir %s: %w", dir, err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			name := strings.ToLower(e.Name())
			if _, seen := specs[name]; seen {
				continue
			}
			spec, err := ReadSpec(filepath.Join(dir, e.Name()))
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				return nil, err
			}
			specs[name] = spec
		}
	}
	return specs, nil
}

// FindSpec looks a single spec up by name.
func FindSpec(dirs []string, name string) (Spec, error) {
	specs, err := FindSpecs(dirs)
	if err != nil {
		return Spec{}, err
	}
	spec, ok := specs[strings.ToLower(name)]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q", ErrSpecNotFound, name)
	}
	return spec, nil
}

// SortedNames returns spec names in lexical order.
func SortedNames(specs map[string]Spec) []string {
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReadSpec loads dir/kernel.json.
func ReadSpec(dir string) (Spec, error) {
	data, err := os.ReadFile(filepath.Join(dir, specFile))
	if err != nil {
		return Spec{}, err
	}
	var spec Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return Spec{}, fmt.Errorf("kernel: parse %s: %w", filepath.Join(dir, specFile), err)
	}
	if len(spec.Argv) == 0 {
		return Spec{}, fmt.Errorf("kernel: %s has an empty argv", filepath.Join(dir, specFile))
	}
	spec.Name = strings.ToLower(filepath.Base(dir))
	spec.Dir = dir
	return spec, nil
}

// Command returns argv with {connection_file} and {resource_dir} filled in.
func (s Spec) Command(connectionFile string) []string {
	r := strings.NewReplacer("{connection_file}", connectionFile, "{resource_dir}", s.Dir)
	out := make([]string, len(s.Argv))
	for i, arg := range s.Argv {
		out[i] = r.Replace(arg)
	}
	return out
}
