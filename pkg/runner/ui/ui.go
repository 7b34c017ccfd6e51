// Package ui opens a notebook in the terminal UI.
package ui

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"tableflip.dev/nbook/pkg/app"
	teaui "tableflip.dev/nbook/pkg/tui/app"
)

type UI struct {
	Name string
	// Kernel is started once the notebook is open. Empty opens without one.
	Kernel  string
	Service *app.Service
	Log     *zap.Logger

	// run replaces the Bubble Tea program in tests.
	run func(*app.Service) error
}

func (d *UI) Do(ctx context.Context) error {
	if d.Service == nil || d.Service.Persistence == nil {
		return errors.New("can not open ui, no persistence")
	}
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	if err := d.Service.Open(ctx, d.Name); err != nil {
		return err
	}
	defer func() {
		if err := d.Service.Close(); err != nil {
			log.Warn("close failed", zap.Error(err))
		}
	}()

	if d.Kernel != "" {
		if err := d.Service.StartKernel(ctx, d.Kernel); err != nil {
			// The notebook stays editable without a kernel.
			log.Warn("kernel did not start", zap.String("kernel", d.Kernel), zap.Error(err))
		}
	}

	run := d.run
	if run == nil {
		run = teaui.Run
	}
	return run(d.Service)
}
