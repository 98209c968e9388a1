package main

import (
	"context"
	"fmt"
	"io"
	"os"

	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"qm-layer/internal/config"
	"qm-layer/internal/layer"
	"qm-layer/internal/tiny"
)

type composeFlags struct {
	coordinate   string
	snapshot     bool
	gameVersion  string
	intermediary string
	cacheRoot    string
	repository   string
	out          string
	pathOnly     bool
}

func composeCommand(app *kingpin.Application, g *globalOptions) (*kingpin.CmdClause, handler) {
	f := &composeFlags{}

	cmd := app.Command("compose", "Compose quilt mappings onto intermediary and write them as tiny v2.")
	cmd.Flag("coordinate", "Quilt mappings artifact, group:artifact:version[:classifier].").StringVar(&f.coordinate)
	cmd.Flag("snapshot", "Use the snapshot channel for the hashed artifact.").BoolVar(&f.snapshot)
	cmd.Flag("game-version", "Game version the mappings target.").StringVar(&f.gameVersion)
	cmd.Flag("intermediary", "Tiny v2 obfuscated -> intermediary mappings file.").StringVar(&f.intermediary)
	cmd.Flag("cache-root", "Directory holding cached mapping files.").StringVar(&f.cacheRoot)
	cmd.Flag("repo", "Local maven-layout artifact directory.").StringVar(&f.repository)
	cmd.Flag("out", "Output file; stdout when empty.").Short('o').StringVar(&f.out)
	cmd.Flag("path-only", "Only print the cache path of the composed file.").BoolVar(&f.pathOnly)

	return cmd, func(ctx context.Context) error {
		return runCompose(ctx, g, f)
	}
}

// apply overrides cfg with the flags given on the command line.
func (f *composeFlags) apply(cfg *config.Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	set(&cfg.Coordinate, f.coordinate)
	set(&cfg.GameVersion, f.gameVersion)
	set(&cfg.IntermediaryFile, f.intermediary)
	set(&cfg.CacheRoot, f.cacheRoot)
	set(&cfg.Repository, f.repository)

	if f.snapshot {
		cfg.Snapshot = true
	}
}

func layerConfig(cfg *config.Config) layer.Config {
	return layer.Config{
		Coordinate:       cfg.Coordinate,
		Snapshot:         cfg.Snapshot,
		GameVersion:      cfg.GameVersion,
		IntermediaryFile: cfg.IntermediaryFile,
		CacheRoot:        cfg.CacheRoot,
	}
}

func runCompose(ctx context.Context, g *globalOptions, f *composeFlags) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	f.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	ly, err := layer.New(layerConfig(cfg), layer.DirResolver{Root: cfg.Repository}, layer.WithLogger(log))
	if err != nil {
		return err
	}

	if f.pathOnly {
		res, err := ly.Compose(ctx)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(os.Stdout, res.Path)

		return err
	}

	var out io.Writer = os.Stdout

	if f.out != "" {
		file, err := os.Create(f.out)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer file.Close()

		out = file
	}

	return ly.Visit(ctx, tiny.NewWriter(out, tiny.WithEscapedNames()))
}
