package commands

import (
	"go.uber.org/zap"

	"tableflip.dev/nbook/pkg/app"
	"tableflip.dev/nbook/pkg/kernel"
	"tableflip.dev/nbook/pkg/logging"
	"tableflip.dev/nbook/pkg/store"
)

// environment is what every command shares once the config is read.
type environment struct {
	config *store.FileConfig
	log    *zap.Logger
}

var env *environment

func loadEnv(level string) error {
	if env != nil {
		return nil
	}
	cfg, err := store.LoadConfig()
	if err != nil {
		return err
	}
	if level == "" {
		level = cfg.LogLevel
	}
	log, err := logging.New(level, cfg.LogFile)
	if err != nil {
		return err
	}
	env = &environment{config: cfg, log: log}
	return nil
}

func closeEnv() {
	if env == nil {
		return
	}
	_ = env.log.Sync()
}

func specDirs() []string {
	return append(append([]string{}, env.config.KernelPaths...), kernel.DefaultSpecDirs()...)
}

func persistence() (store.Persistence, error) {
	return store.Load(env.config, env.log)
}

func service() (*app.Service, error) {
	p, err := persistence()
	if err != nil {
		return nil, err
	}
	return &app.Service{
		Persistence: p,
		Container:   app.NewContainer(env.log),
		Launcher:    kernel.Launcher{RuntimeDir: env.config.RuntimeDir, Log: env.log},
		SpecDirs:    specDirs(),
		Log:         env.log,
	}, nil
}
