// Package options contains the program options.
package options

// Parameters contains file path options.
type Parameters struct {
	Input   string // input .spv file
	Output  string // output .spvasm file, printed on console if no name given
	Grammar string // grammar document describing the instruction set
	Batch   string // batch process files matching pattern (e.g. *.spv)
}

// Flags contains behavior options.
type Flags struct {
	Debug       bool // enable debug logging
	DumpGrammar bool // dump the loaded grammar catalog
	Quiet       bool // quiet mode
}

// OutputFlags contains output formatting options.
type OutputFlags struct {
	FlagNames bool // render symbolic names of bit flags instead of raw values
	NoHeader  bool // omit the module header comment block
	RawIDs    bool // do not substitute debug names for ids
}

// Program options of the disassembler.
type Program struct {
	Parameters
	Flags
	OutputFlags
}

// Disassembler defines options to control the disassembler.
type Disassembler struct {
	FlagNames bool // render symbolic names of bit flags instead of raw values
	Header    bool // print the module header comment block
	NoNames   bool // skip the debug name collection pass
}

// NewDisassembler returns a new options instance with default options.
func NewDisassembler() Disassembler {
	return Disassembler{
		Header: true,
	}
}
