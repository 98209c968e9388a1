// Package main provides the CLI entrypoint for qm-layer.
//
// qm-layer composes quilt mappings on top of intermediary mappings:
//   - compose resolves the artifacts, merges and caches the result, then
//     writes it as tiny v2
//   - inspect summarizes a tiny v2 file
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"qm-layer/internal/config"
	"qm-layer/internal/diagnostic"
)

type handler func(ctx context.Context) error

type command func(app *kingpin.Application, g *globalOptions) (*kingpin.CmdClause, handler)

var commands = []command{
	composeCommand,
	inspectCommand,
}

type globalOptions struct {
	configFile string
	envFiles   []string
	logLevel   string
}

func main() {
	app := kingpin.New("qm-layer", "Compose quilt mappings on top of intermediary mappings.")
	app.HelpFlag.Short('h')

	g := &globalOptions{}
	app.Flag("config", "YAML config file.").Short('c').StringVar(&g.configFile)
	app.Flag("env-file", "Env file to load; repeatable. Defaults to .env when present.").StringsVar(&g.envFiles)
	app.Flag("log-level", "Log level (debug, info, warn, error).").StringVar(&g.logLevel)

	handlers := make(map[string]handler, len(commands))

	for _, cmd := range commands {
		clause, h := cmd(app, g)
		handlers[clause.FullCommand()] = h
	}

	input := kingpin.MustParse(app.Parse(os.Args[1:]))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := handlers[input](ctx); err != nil {
		logFailure(input, err)
		stop()
		os.Exit(1)
	}
}

// logFailure logs err, adding the diagnostic location when there is one.
func logFailure(command string, err error) {
	entry := logrus.WithError(err)

	var de *diagnostic.Error
	if errors.As(err, &de) {
		d := de.Diagnostic()
		entry = entry.WithFields(logrus.Fields{
			"code":   d.Code,
			"source": d.Source,
			"line":   d.Line,
		})
	}

	entry.Error(command + " failed")
}

// load builds the configuration from the config file, env files and the
// environment. Command flags are applied by the caller.
func (g *globalOptions) load() (*config.Config, error) {
	cfg := config.Default()

	if g.configFile != "" {
		loaded, err := config.LoadFile(g.configFile)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	if err := config.LoadEnv(cfg, g.envFiles...); err != nil {
		return nil, err
	}

	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}

	return cfg, nil
}

func newLogger(level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	log := logrus.StandardLogger()
	log.SetOutput(os.Stderr)
	log.SetLevel(lvl)

	return log, nil
}
