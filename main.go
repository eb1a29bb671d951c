// Package main implements the main entry point for a grammar driven
// SPIR-V disassembler.
package main

import (
	"errors"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/retroenv/retrogolib/app"

	"github.com/retroenv/spvdisasm/internal/cli"
	"github.com/retroenv/spvdisasm/internal/config"
	"github.com/retroenv/spvdisasm/internal/fileprocessor"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, disasmOptions, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fileprocessor.PrintBanner(logger, opts, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	fileprocessor.PrintBanner(logger, opts, version, commit, date)

	catalog, err := config.LoadCatalog(opts)
	if err != nil {
		logger.Fatal(err.Error())
	}
	if opts.DumpGrammar {
		spew.Dump(catalog)
		return
	}

	files, err := fileprocessor.GetFilesToProcess(&opts)
	if err != nil {
		logger.Fatal(err.Error())
	}

	for _, file := range files {
		opts.Input = file
		if len(files) > 1 {
			opts.Output = fileprocessor.GenerateOutputFilename(file)
		}

		if err := fileprocessor.ProcessFile(ctx, logger, catalog, opts, disasmOptions); err != nil {
			logger.Fatal(err.Error())
		}
	}
}
