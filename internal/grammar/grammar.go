// Package grammar provides the catalog of the SPIR-V instruction grammar.
// The catalog is built once from the machine-readable grammar document and
// drives all operand decoding; it is immutable after construction and safe
// to share between concurrent readers.
package grammar

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownOpcode   = errors.New("unknown opcode")
	ErrUnknownMnemonic = errors.New("unknown mnemonic")
	ErrUnknownEnumKind = errors.New("unknown enum kind")
	ErrUnknownEnumName = errors.New("unknown enum name")
	ErrNoSuchOperand   = errors.New("no operand declared at index")
)

// OperandKind identifies the kind of an instruction operand slot, using the
// kind names of the grammar document. Kind names that do not match one of
// the id, literal or pair kinds refer to an enum operand kind.
type OperandKind string

// Structural operand kinds of the grammar.
const (
	KindIDRef        OperandKind = "IdRef"
	KindIDResult     OperandKind = "IdResult"
	KindIDResultType OperandKind = "IdResultType"

	KindLiteralInteger                OperandKind = "LiteralInteger"
	KindLiteralFloat                  OperandKind = "LiteralFloat"
	KindLiteralString                 OperandKind = "LiteralString"
	KindLiteralContextDependentNumber OperandKind = "LiteralContextDependentNumber"

	KindPairIDRefIDRef          OperandKind = "PairIdRefIdRef"
	KindPairIDRefLiteralInteger OperandKind = "PairIdRefLiteralInteger"
	KindPairLiteralIntegerIDRef OperandKind = "PairLiteralIntegerIdRef"
)

// IsID returns whether the kind is an id reference of any flavor,
// for example IdRef, IdScope or IdMemorySemantics.
func (k OperandKind) IsID() bool {
	return strings.HasPrefix(string(k), "Id")
}

// IsLiteral returns whether the kind is a literal of any flavor.
func (k OperandKind) IsLiteral() bool {
	return strings.HasPrefix(string(k), "Literal")
}

// IsResult returns whether the kind declares the instruction result or
// result type slot. These slots are rendered separately from the regular
// operands of an instruction.
func (k OperandKind) IsResult() bool {
	return k == KindIDResult || k == KindIDResultType
}

// Quantifier describes how often an operand slot occurs in the word stream.
type Quantifier int

const (
	// One is the default, the slot occurs exactly once.
	One Quantifier = iota
	// ZeroOrOne marks an optional slot, "?" in the grammar document.
	ZeroOrOne
	// ZeroOrMore marks a repeated slot, "*" in the grammar document.
	ZeroOrMore
)

// Operand is a single operand slot declaration of an instruction or of an
// enum variant parameter list.
type Operand struct {
	Kind       OperandKind
	Quantifier Quantifier
}

// OpcodeSpec describes one instruction of the grammar.
type OpcodeSpec struct {
	Opcode   uint32
	Name     string
	Operands []Operand // in declaration order
}

// EnumCategory describes how the values of an enum operand kind combine.
type EnumCategory int

const (
	// ValueEnum values are mutually exclusive, a word selects one variant.
	ValueEnum EnumCategory = iota
	// BitEnum values are single bits, a word can combine multiple flags.
	BitEnum
)

// EnumVariant is one declared value or flag of an enum operand kind.
// Parameters list the operand slots that follow the enum word when this
// variant is selected or its flag bit is set.
type EnumVariant struct {
	Name       string
	Value      uint32
	Parameters []Operand
}

// EnumKind describes one enum operand kind of the grammar.
type EnumKind struct {
	Name     string
	Category EnumCategory

	variants map[uint32]*EnumVariant
	values   map[string]uint32
	bits     []uint32 // declared flag bit order, BitEnum only
}

// Variant returns the variant declared for the value.
func (e *EnumKind) Variant(value uint32) (*EnumVariant, bool) {
	variant, ok := e.variants[value]
	return variant, ok
}

// Value returns the numeric value declared for the variant name.
func (e *EnumKind) Value(name string) (uint32, bool) {
	value, ok := e.values[name]
	return value, ok
}

// Bits returns the flag bits of a BitEnum kind in declaration order.
// The returned slice is shared and must not be modified.
func (e *EnumKind) Bits() []uint32 {
	return e.bits
}

// Catalog is the queryable form of the grammar document.
type Catalog struct {
	opcodes      map[uint32]*OpcodeSpec
	opcodeValues map[string]uint32
	opcodeNames  map[uint32]string // extension filtered, for disassembly
	enums        map[string]*EnumKind
}

// OpcodeSpec returns the instruction declaration for the opcode.
func (c *Catalog) OpcodeSpec(opcode uint32) (*OpcodeSpec, error) {
	spec, ok := c.opcodes[opcode]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOpcode, opcode)
	}
	return spec, nil
}

// OpcodeSpecByName returns the instruction declaration for the mnemonic.
func (c *Catalog) OpcodeSpecByName(name string) (*OpcodeSpec, error) {
	opcode, ok := c.opcodeValues[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMnemonic, name)
	}
	return c.opcodes[opcode], nil
}

// OpcodeName returns the mnemonic used when disassembling the opcode.
// Mnemonics of suppressed vendor extensions are not part of this mapping,
// instructions only reachable through them report an unknown opcode.
func (c *Catalog) OpcodeName(opcode uint32) (string, error) {
	name, ok := c.opcodeNames[opcode]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownOpcode, opcode)
	}
	return name, nil
}

// OpcodeValue returns the opcode for a mnemonic, it considers all declared
// mnemonics including suppressed vendor extension ones.
func (c *Catalog) OpcodeValue(name string) (uint32, error) {
	opcode, ok := c.opcodeValues[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownMnemonic, name)
	}
	return opcode, nil
}

// OperandKindAt returns the declared kind of the operand slot at the index.
func (c *Catalog) OperandKindAt(opcode uint32, index int) (OperandKind, error) {
	spec, err := c.OpcodeSpec(opcode)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(spec.Operands) {
		return "", fmt.Errorf("%w: %s[%d]", ErrNoSuchOperand, spec.Name, index)
	}
	return spec.Operands[index].Kind, nil
}

// HasResultID returns whether the instruction defines a result id.
func (c *Catalog) HasResultID(opcode uint32) (bool, error) {
	return c.hasOperandKind(opcode, KindIDResult)
}

// HasResultType returns whether the instruction declares a result type id.
func (c *Catalog) HasResultType(opcode uint32) (bool, error) {
	return c.hasOperandKind(opcode, KindIDResultType)
}

func (c *Catalog) hasOperandKind(opcode uint32, kind OperandKind) (bool, error) {
	spec, err := c.OpcodeSpec(opcode)
	if err != nil {
		return false, err
	}
	for _, operand := range spec.Operands {
		if operand.Kind == kind {
			return true, nil
		}
	}
	return false, nil
}

// EnumKind returns the enum operand kind declaration for the kind name.
func (c *Catalog) EnumKind(kind string) (*EnumKind, bool) {
	enum, ok := c.enums[kind]
	return enum, ok
}

// EnumCategory returns the category of the enum operand kind.
func (c *Catalog) EnumCategory(kind string) (EnumCategory, error) {
	enum, ok := c.enums[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownEnumKind, kind)
	}
	return enum.Category, nil
}

// EnumName returns the display name for an enum value. It never fails:
// values without a declared variant render as their decimal form and a
// BitEnum word of zero renders as None.
func (c *Catalog) EnumName(kind string, value uint32) string {
	enum, ok := c.enums[kind]
	if !ok {
		return formatUint(value)
	}

	switch enum.Category {
	case BitEnum:
		if value == 0 {
			return "None"
		}
	case ValueEnum:
		if variant, ok := enum.Variant(value); ok {
			return variant.Name
		}
	}
	return formatUint(value)
}

// EnumValue returns the numeric value declared for an enum variant name.
// It is used by the assembling direction where unknown names are an error.
func (c *Catalog) EnumValue(kind, name string) (uint32, error) {
	enum, ok := c.enums[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownEnumKind, kind)
	}
	value, ok := enum.Value(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s.%s", ErrUnknownEnumName, kind, name)
	}
	return value, nil
}
