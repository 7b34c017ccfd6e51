package info

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"tableflip.dev/nbook/pkg/printers"
	"tableflip.dev/nbook/pkg/store"
)

type Info struct {
	Config      *store.FileConfig
	SpecDirs    []string
	Persistence store.Persistence
	Out         io.Writer
}

func (n *Info) Do(ctx context.Context) error {
	if n.Config == nil {
		var err error
		n.Config, err = store.LoadConfig()
		if err != nil {
			return err
		}
	}

	configPath := "not set"
	if override := os.Getenv("NBOOK_CONFIG_PATH"); override != "" {
		configPath = override
	}

	pp := printers.PrettyPrint{Out: n.Out}
	pp.NewLine()
	pp.Title("Config")
	pp.Pairs([][2]string{
		{"NBOOK_CONFIG_PATH", configPath},
		{"path", n.Config.BasePath()},
		{"kernel.default", n.Config.KernelDefault},
		{"kernel.paths", strings.Join(n.SpecDirs, ", ")},
		{"runtime.dir", n.Config.RuntimeDir},
		{"log.level", n.Config.LogLevel},
		{"log.file", orNone(n.Config.LogFile)},
	})

	if n.Persistence == nil {
		return fmt.Errorf("failed to create persistence object")
	}
	pp.Title("Notebooks")
	pp.Notebooks(n.Persistence.Notebooks(ctx))
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
