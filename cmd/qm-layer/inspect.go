package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"qm-layer/internal/diagnostic"
	"qm-layer/internal/tiny"
	"qm-layer/internal/tree"
)

func inspectCommand(app *kingpin.Application, _ *globalOptions) (*kingpin.CmdClause, handler) {
	cmd := app.Command("inspect", "Summarize a tiny v2 mappings file.")
	path := cmd.Arg("file", "Tiny v2 file.").Required().String()

	return cmd, func(context.Context) error {
		return inspect(os.Stdout, *path)
	}
}

func inspect(w io.Writer, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return diagnostic.IO(path, "stat mappings file", err)
	}

	var diags diagnostic.Diagnostics

	t := tree.New()

	var de *diagnostic.Error

	err = tiny.ReadFile(path, t, tiny.WithDiagnostics(&diags))

	switch {
	case errors.As(err, &de):
		diags.Add(de.Diagnostic())
	case err != nil:
		return err
	}

	for _, d := range slices.Concat(diags.Warnings, diags.Errors) {
		fmt.Fprintf(w, "%-11s %s\n", d.Severity.String()+":", d)
	}

	if diags.HasErrors() {
		return diags.Error()
	}

	stats := t.Stats()

	fmt.Fprintf(w, "file:       %s (%s)\n", path, humanize.Bytes(uint64(info.Size())))
	fmt.Fprintf(w, "namespaces: %s\n", strings.Join(t.Namespaces(), " -> "))

	for _, m := range t.Metadata() {
		fmt.Fprintf(w, "property:   %s %s\n", m.Key, m.Value)
	}

	fmt.Fprintf(w, "classes:    %s\n", humanize.Comma(int64(stats.Classes)))
	fmt.Fprintf(w, "fields:     %s\n", humanize.Comma(int64(stats.Fields)))
	fmt.Fprintf(w, "methods:    %s\n", humanize.Comma(int64(stats.Methods)))
	fmt.Fprintf(w, "args:       %s\n", humanize.Comma(int64(stats.Args)))

	return nil
}
