// Package disasm implements a grammar driven SPIR-V disassembler.
package disasm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"

	"github.com/retroenv/spvdisasm/internal/binary"
	"github.com/retroenv/spvdisasm/internal/grammar"
	"github.com/retroenv/spvdisasm/internal/names"
	"github.com/retroenv/spvdisasm/internal/operand"
	"github.com/retroenv/spvdisasm/internal/options"
	"github.com/retroenv/spvdisasm/internal/printer"
)

// Disasm implements a disassembler that renders the instructions of a
// parsed module using the grammar catalog.
type Disasm struct {
	logger  *log.Logger
	options options.Disassembler

	catalog *grammar.Catalog
	printer *printer.Printer

	warnedOpcodes set.Set[uint32] // opcodes already reported as unknown
}

// New creates a new disassembler for the catalog.
func New(logger *log.Logger, catalog *grammar.Catalog, opts options.Disassembler) *Disasm {
	return &Disasm{
		logger:  logger,
		options: opts,
		catalog: catalog,
		printer: printer.New(catalog, printer.Options{
			FlagNames: opts.FlagNames,
		}),
		warnedOpcodes: set.New[uint32](),
	}
}

// Process disassembles all instructions of the module and returns the
// textual form. Instructions with an opcode unknown to the catalog are
// emitted as comment lines and reported once per opcode, a decoder and
// grammar version mismatch aborts the run. The context cancels processing
// between instructions.
func (dis *Disasm) Process(ctx context.Context, module *binary.Module) (string, error) {
	var lines []string
	if dis.options.Header {
		lines = dis.headerLines(module.Header)
	}

	// The overlay has to be complete before the first decode, debug name
	// instructions can follow their usage in the module.
	var overlay *names.Overlay
	if !dis.options.NoNames {
		overlay = names.Collect(module.Instructions)
	}

	for _, instruction := range module.Instructions {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		line, err := dis.processInstruction(instruction, overlay)
		switch {
		case errors.Is(err, grammar.ErrUnknownOpcode):
			if !dis.warnedOpcodes.Contains(instruction.Opcode) {
				dis.warnedOpcodes.Add(instruction.Opcode)
				dis.logger.Warn("Skipping instructions with unknown opcode",
					log.Int("opcode", int(instruction.Opcode)),
				)
			}
			lines = append(lines, fmt.Sprintf("; unknown opcode %d", instruction.Opcode))

		case err != nil:
			return "", fmt.Errorf("disassembling opcode %d: %w", instruction.Opcode, err)

		default:
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// processInstruction renders one instruction line. The result id is
// rendered as the assigned value on the left of the mnemonic, the result
// type as the first operand, both are read from the word stream before the
// operand printer takes over.
func (dis *Disasm) processInstruction(instruction binary.Instruction,
	overlay *names.Overlay) (string, error) {

	name, err := dis.catalog.OpcodeName(instruction.Opcode)
	if err != nil {
		return "", err
	}

	hasResultType, err := dis.catalog.HasResultType(instruction.Opcode)
	if err != nil {
		return "", err
	}
	hasResultID, err := dis.catalog.HasResultID(instruction.Opcode)
	if err != nil {
		return "", err
	}

	cursor := operand.NewCursor(instruction.Words)

	var resultType, result string
	if hasResultType {
		id, err := cursor.ReadUint32()
		if err != nil {
			return "", fmt.Errorf("reading result type id: %w", err)
		}
		resultType = printer.IDToken(id, overlay)
	}
	if hasResultID {
		id, err := cursor.ReadUint32()
		if err != nil {
			return "", fmt.Errorf("reading result id: %w", err)
		}
		result = printer.IDToken(id, overlay)
	}

	tokens, err := dis.printer.Print(instruction.Opcode, cursor, overlay)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if result != "" {
		sb.WriteString(result)
		sb.WriteString(" = ")
	}
	sb.WriteString(name)
	if resultType != "" {
		sb.WriteString(" ")
		sb.WriteString(resultType)
	}
	if len(tokens) > 0 {
		sb.WriteString(" ")
		sb.WriteString(strings.Join(tokens, " "))
	}
	return sb.String(), nil
}

// headerLines renders the module header as comment lines.
func (dis *Disasm) headerLines(header binary.Header) []string {
	return []string{
		"; SPIR-V",
		fmt.Sprintf("; Version: %d.%d", header.MajorVersion(), header.MinorVersion()),
		fmt.Sprintf("; Generator: %x", header.Generator),
		fmt.Sprintf("; Bound: %x", header.Bound),
		fmt.Sprintf("; Schema: %x", header.Schema),
	}
}
