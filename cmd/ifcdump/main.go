// Command ifcdump prints the content of an IFC file: its spatial
// structure from the project down to the contained elements, optionally
// with property sets and quantities, as text, JSON or YAML.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nobatek/ifcreader"
	"github.com/nobatek/ifcreader/internal/export"
)

type options struct {
	format     string
	entity     string
	schema     string
	psets      bool
	quantities bool
	debug      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "ifcdump <file.ifc>",
		Short: "Dump the content of an IFC file",
		Long: `ifcdump reads an IFC building model and prints its spatial structure,
from the project down to the elements contained in each storey. With
--entity it prints the entities of one type as a flat list instead.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text",
		"output format: text, json or yaml")
	cmd.Flags().StringVarP(&opts.entity, "entity", "e", "",
		"dump the entities of this type as a flat list")
	cmd.Flags().BoolVar(&opts.psets, "psets", false, "include property sets")
	cmd.Flags().BoolVar(&opts.quantities, "quantities", false, "include quantities")
	cmd.Flags().StringVar(&opts.schema, "schema", "",
		"EXPRESS schema file overriding the embedded schemas")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	return cmd
}

func run(cmd *cobra.Command, path string, opts options) error {
	level := slog.LevelWarn
	if opts.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(),
		&slog.HandlerOptions{Level: level}))

	r, err := ifcreader.OpenWithOptions(path, ifcreader.Options{
		SchemaFile: opts.schema,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	exportOpts := export.Options{
		PropertySets: opts.psets,
		Quantities:   opts.quantities,
	}
	out := cmd.OutOrStdout()
	if opts.entity != "" {
		nodes, err := export.BuildEntityNodes(r, opts.entity, exportOpts)
		if err != nil {
			return err
		}
		return export.Encode(out, nodes, opts.format)
	}
	return export.Encode(out, export.BuildDocument(r, exportOpts), opts.format)
}
