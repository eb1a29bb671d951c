// Package fileprocessor handles file loading and processing operations
package fileprocessor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"

	"github.com/retroenv/spvdisasm/internal/binary"
	"github.com/retroenv/spvdisasm/internal/disasm"
	"github.com/retroenv/spvdisasm/internal/grammar"
	"github.com/retroenv/spvdisasm/internal/options"
)

// ProcessFile handles the complete processing workflow for one module file.
func ProcessFile(ctx context.Context, logger *log.Logger, catalog *grammar.Catalog,
	opts options.Program, disasmOptions options.Disassembler) error {

	module, err := loadModule(opts)
	if err != nil {
		return fmt.Errorf("loading module: %w", err)
	}

	logger.Debug("Module loaded",
		log.String("file", opts.Input),
		log.Int("instructions", len(module.Instructions)),
	)

	dis := disasm.New(logger, catalog, disasmOptions)
	output, err := dis.Process(ctx, module)
	if err != nil {
		return fmt.Errorf("disassembling: %w", err)
	}

	writer, err := createWriter(opts)
	if err != nil {
		return fmt.Errorf("creating writer: %w", err)
	}
	defer func() {
		if closer, ok := writer.(io.Closer); ok {
			_ = closer.Close()
		}
	}()

	if _, err := io.WriteString(writer, output+"\n"); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// GetFilesToProcess returns list of files to process based on options
func GetFilesToProcess(opts *options.Program) ([]string, error) {
	if opts.Batch != "" {
		matches, err := filepath.Glob(opts.Batch)
		if err != nil {
			return nil, fmt.Errorf("globbing batch pattern: %w", err)
		}
		return matches, nil
	}
	return []string{opts.Input}, nil
}

// GenerateOutputFilename generates output filename for a given input file
func GenerateOutputFilename(inputFile string) string {
	ext := filepath.Ext(inputFile)
	return inputFile[:len(inputFile)-len(ext)] + ".spvasm"
}

// PrintBanner prints the program banner unless running quietly.
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}
	logger.Info("spvdisasm - a grammar driven SPIR-V disassembler",
		log.String("version", buildinfo.Version(version, commit, date)),
	)
}

func loadModule(opts options.Program) (*binary.Module, error) {
	data, err := os.ReadFile(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", opts.Input, err)
	}
	module, err := binary.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parsing module %s: %w", opts.Input, err)
	}
	return module, nil
}

func createWriter(opts options.Program) (io.Writer, error) {
	if opts.Output == "" {
		return os.Stdout, nil
	}
	file, err := os.Create(opts.Output)
	if err != nil {
		return nil, fmt.Errorf("creating file %s: %w", opts.Output, err)
	}
	return file, nil
}
