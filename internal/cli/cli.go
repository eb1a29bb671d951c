// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/spvdisasm/internal/options"
)

// ParseFlags parses command line flags and returns program and disassembler options
func ParseFlags() (options.Program, options.Disassembler, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Batch == "") {
		return opts, options.Disassembler{}, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, options.Disassembler{}, err
	}
	if opts.Grammar == "" {
		return opts, options.Disassembler{}, &UsageError{
			flags: flags,
			msg:   "no grammar document given, pass the instruction grammar with -g",
		}
	}

	if opts.Batch == "" {
		opts.Input = args[0]
	}

	return opts, createDisasmOptions(opts), nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: spvdisasm [options] <file to disassemble>\n\n")
	e.flags.PrintDefaults()
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after file to disassemble, please pass the file to disassemble as last argument", arg),
			}
		}
	}
	return nil
}

// createDisasmOptions creates disassembler options based on program options
func createDisasmOptions(opts options.Program) options.Disassembler {
	disasmOptions := options.NewDisassembler()
	disasmOptions.FlagNames = opts.FlagNames
	disasmOptions.Header = !opts.NoHeader
	disasmOptions.NoNames = opts.RawIDs
	return disasmOptions
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Output, "o", "", "name of the output .spvasm file, printed on console if no name given")
	flags.StringVar(&opts.Grammar, "g", "", "name of the grammar document describing the instruction set")
	flags.StringVar(&opts.Batch, "batch", "", "process a batch of given path and file mask and automatic .spvasm file naming, for example *.spv")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.DumpGrammar, "dump", false, "dump the loaded grammar catalog and exit")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.BoolVar(&opts.FlagNames, "flagnames", false, "render symbolic names of bit flags instead of their raw values")
	flags.BoolVar(&opts.NoHeader, "noheader", false, "do not output the module header as comments")
	flags.BoolVar(&opts.RawIDs, "raw", false, "do not substitute debug names for ids")
}
