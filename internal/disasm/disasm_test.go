package disasm

import (
	"context"
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"

	"github.com/retroenv/spvdisasm/internal/binary"
	"github.com/retroenv/spvdisasm/internal/grammar"
	"github.com/retroenv/spvdisasm/internal/options"
	"github.com/retroenv/spvdisasm/internal/printer"
)

var testDocument = &grammar.Document{
	Instructions: []grammar.InstructionEntry{
		{Opname: "OpNop", Opcode: 0},
		{Opname: "OpName", Opcode: 5, Operands: []grammar.OperandEntry{
			{Kind: "IdRef"},
			{Kind: "LiteralString"},
		}},
		{Opname: "OpTypeInt", Opcode: 21, Operands: []grammar.OperandEntry{
			{Kind: "IdResult"},
			{Kind: "LiteralInteger"},
			{Kind: "LiteralInteger"},
		}},
		{Opname: "OpConstant", Opcode: 43, Operands: []grammar.OperandEntry{
			{Kind: "IdResultType"},
			{Kind: "IdResult"},
			{Kind: "LiteralContextDependentNumber"},
		}},
		{Opname: "OpMystery", Opcode: 900, Operands: []grammar.OperandEntry{
			{Kind: "MysteryKind"},
		}},
	},
}

// testModule contains a type declaration, a named constant, an instruction
// with an opcode outside of the test grammar and a trailing OpNop.
var testModule = []uint32{
	binary.Magic,
	0x00010000, // version 1.0
	0x00000008,
	0x0000000a,
	0x00000000,
	0x00040005, 0x00000002, 0x77736e61, 0x00007265, // OpName %2 "answer"
	0x00040015, 0x00000001, 0x00000020, 0x00000001, // OpTypeInt %1 32 1
	0x0004002b, 0x00000001, 0x00000002, 0x0000002a, // OpConstant %1 %2 42
	0x000103e7, // unknown opcode 999
	0x00010000, // OpNop
}

func testDisasm(t *testing.T, opts options.Disassembler) *Disasm {
	t.Helper()

	catalog, err := grammar.New(testDocument, grammar.DefaultConfig())
	assert.NoError(t, err)
	return New(log.NewTestLogger(t), catalog, opts)
}

func TestProcess(t *testing.T) {
	dis := testDisasm(t, options.NewDisassembler())

	module, err := binary.Parse(testModule)
	assert.NoError(t, err)

	output, err := dis.Process(context.Background(), module)
	assert.NoError(t, err)

	expected := "; SPIR-V\n" +
		"; Version: 1.0\n" +
		"; Generator: 8\n" +
		"; Bound: a\n" +
		"; Schema: 0\n" +
		"OpName %answer \"answer\"\n" +
		"%1 = OpTypeInt 32 1\n" +
		"%answer = OpConstant %1 42\n" +
		"; unknown opcode 999\n" +
		"OpNop"
	assert.Equal(t, expected, output)
}

func TestProcessWithoutHeader(t *testing.T) {
	opts := options.NewDisassembler()
	opts.Header = false
	dis := testDisasm(t, opts)

	module, err := binary.Parse(testModule[:5])
	assert.NoError(t, err)

	output, err := dis.Process(context.Background(), module)
	assert.NoError(t, err)
	assert.Equal(t, "", output)
}

func TestProcessRawIDs(t *testing.T) {
	opts := options.NewDisassembler()
	opts.Header = false
	opts.NoNames = true
	dis := testDisasm(t, opts)

	module, err := binary.Parse(testModule)
	assert.NoError(t, err)

	output, err := dis.Process(context.Background(), module)
	assert.NoError(t, err)
	assert.Contains(t, output, "%2 = OpConstant %1 42")
	assert.Contains(t, output, "OpName %2 \"answer\"")
}

func TestProcessUnknownOperandKindAborts(t *testing.T) {
	dis := testDisasm(t, options.NewDisassembler())

	module := &binary.Module{
		Instructions: []binary.Instruction{
			{Opcode: 900, Words: []uint32{1}},
		},
	}

	_, err := dis.Process(context.Background(), module)
	assert.True(t, errors.Is(err, printer.ErrUnknownOperandKind))
}

func TestProcessTruncatedInstructionFails(t *testing.T) {
	dis := testDisasm(t, options.NewDisassembler())

	// OpConstant without its result id and value words
	module := &binary.Module{
		Instructions: []binary.Instruction{
			{Opcode: 43, Words: []uint32{1}},
		},
	}

	_, err := dis.Process(context.Background(), module)
	assert.Error(t, err)
}

func TestProcessCancelledContext(t *testing.T) {
	dis := testDisasm(t, options.NewDisassembler())

	module, err := binary.Parse(testModule)
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = dis.Process(ctx, module)
	assert.True(t, errors.Is(err, context.Canceled))
}
