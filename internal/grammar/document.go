package grammar

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Document mirrors the layout of the machine-readable SPIR-V grammar
// document (spirv.core.grammar.json).
type Document struct {
	Instructions []InstructionEntry `json:"instructions"`
	OperandKinds []OperandKindEntry `json:"operand_kinds"`
}

// InstructionEntry declares one instruction of the grammar document.
type InstructionEntry struct {
	Opname     string         `json:"opname"`
	Opcode     uint32         `json:"opcode"`
	Operands   []OperandEntry `json:"operands"`
	Extensions []string       `json:"extensions"`
}

// OperandEntry declares one operand slot of an instruction.
type OperandEntry struct {
	Kind       string `json:"kind"`
	Quantifier string `json:"quantifier"` // "", "?" or "*"
}

// OperandKindEntry declares one operand kind of the grammar document.
// Only the ValueEnum and BitEnum categories carry enumerants, entries of
// other categories are skipped when building the catalog.
type OperandKindEntry struct {
	Category   string           `json:"category"`
	Kind       string           `json:"kind"`
	Enumerants []EnumerantEntry `json:"enumerants"`
}

// EnumerantEntry declares one value or flag of an enum operand kind.
type EnumerantEntry struct {
	Enumerant  string           `json:"enumerant"`
	Value      FlexUint         `json:"value"`
	Parameters []ParameterEntry `json:"parameters"`
}

// ParameterEntry declares one operand slot that follows the enum word when
// the enumerant is selected.
type ParameterEntry struct {
	Kind string `json:"kind"`
}

// FlexUint is an unsigned 32 bit value that decodes from either a JSON
// number or a hex string. The grammar document uses plain numbers for
// ValueEnum enumerants but strings like "0x0004" for BitEnum flags.
type FlexUint uint32

var _ json.Unmarshaler = (*FlexUint)(nil)

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexUint) UnmarshalJSON(data []byte) error {
	text := strings.Trim(string(data), `"`)
	value, err := strconv.ParseUint(text, 0, 32)
	if err != nil {
		return fmt.Errorf("parsing enumerant value %s: %w", string(data), err)
	}
	*f = FlexUint(value)
	return nil
}

// Config controls how the catalog is built from the grammar document.
type Config struct {
	// ExtensionAllowPrefixes lists the extension name prefixes whose
	// instruction mnemonics stay visible in the opcode to name direction.
	// Mnemonics originating from other vendor extensions are suppressed so
	// that disassembly prefers canonical mnemonics when duplicates exist.
	// The name to opcode direction always keeps all mnemonics.
	ExtensionAllowPrefixes []string
}

// DefaultConfig returns the default catalog configuration, allowing the
// Khronos endorsed extension namespaces.
func DefaultConfig() Config {
	return Config{
		ExtensionAllowPrefixes: []string{"SPV_KHR", "SPV_EXT"},
	}
}

// Parse decodes a grammar document from its JSON form.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshalling grammar document: %w", err)
	}
	return &doc, nil
}

// LoadFile reads a grammar document from disk and builds the catalog.
func LoadFile(filename string, cfg Config) (*Catalog, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading grammar file %s: %w", filename, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return New(doc, cfg)
}

// New builds the catalog from a grammar document.
func New(doc *Document, cfg Config) (*Catalog, error) {
	c := &Catalog{
		opcodes:      map[uint32]*OpcodeSpec{},
		opcodeValues: map[string]uint32{},
		opcodeNames:  map[uint32]string{},
		enums:        map[string]*EnumKind{},
	}

	suffixes := opnameSuffixes(cfg.ExtensionAllowPrefixes)

	for _, entry := range doc.Instructions {
		if err := c.addInstruction(entry, cfg.ExtensionAllowPrefixes, suffixes); err != nil {
			return nil, err
		}
	}
	for _, entry := range doc.OperandKinds {
		if err := c.addOperandKind(entry); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) addInstruction(entry InstructionEntry, prefixes, suffixes []string) error {
	operands, err := convertOperands(entry.Operands)
	if err != nil {
		return fmt.Errorf("instruction %s: %w", entry.Opname, err)
	}

	spec := &OpcodeSpec{
		Opcode:   entry.Opcode,
		Name:     entry.Opname,
		Operands: operands,
	}

	if _, ok := c.opcodeValues[entry.Opname]; ok {
		return fmt.Errorf("duplicate mnemonic %s", entry.Opname)
	}
	c.opcodeValues[entry.Opname] = entry.Opcode

	// Aliased opcodes keep their first declaration, the grammar lists the
	// canonical form before extension aliases.
	if _, ok := c.opcodes[entry.Opcode]; !ok {
		c.opcodes[entry.Opcode] = spec
	}
	if _, ok := c.opcodeNames[entry.Opcode]; !ok && mnemonicVisible(entry, prefixes, suffixes) {
		c.opcodeNames[entry.Opcode] = entry.Opname
	}
	return nil
}

func (c *Catalog) addOperandKind(entry OperandKindEntry) error {
	var category EnumCategory
	switch entry.Category {
	case "ValueEnum":
		category = ValueEnum
	case "BitEnum":
		category = BitEnum
	default: // composite, id and literal kinds carry no enumerants
		return nil
	}

	enum := &EnumKind{
		Name:     entry.Kind,
		Category: category,
		variants: map[uint32]*EnumVariant{},
		values:   map[string]uint32{},
	}

	for _, enumerant := range entry.Enumerants {
		value := uint32(enumerant.Value)
		if category == BitEnum && value&(value-1) != 0 {
			return fmt.Errorf("enum %s: flag %s value %#x is not a power of two",
				entry.Kind, enumerant.Enumerant, value)
		}

		parameters := make([]Operand, 0, len(enumerant.Parameters))
		for _, parameter := range enumerant.Parameters {
			parameters = append(parameters, Operand{Kind: OperandKind(parameter.Kind)})
		}

		variant := &EnumVariant{
			Name:       enumerant.Enumerant,
			Value:      value,
			Parameters: parameters,
		}
		enum.values[enumerant.Enumerant] = value

		// Aliased values keep their first declaration.
		if _, ok := enum.variants[value]; ok {
			continue
		}
		enum.variants[value] = variant
		if category == BitEnum && value != 0 {
			enum.bits = append(enum.bits, value)
		}
	}

	c.enums[entry.Kind] = enum
	return nil
}

func convertOperands(entries []OperandEntry) ([]Operand, error) {
	operands := make([]Operand, 0, len(entries))
	for _, entry := range entries {
		var quantifier Quantifier
		switch entry.Quantifier {
		case "":
			quantifier = One
		case "?":
			quantifier = ZeroOrOne
		case "*":
			quantifier = ZeroOrMore
		default:
			return nil, fmt.Errorf("unknown quantifier %q for operand kind %s",
				entry.Quantifier, entry.Kind)
		}
		operands = append(operands, Operand{
			Kind:       OperandKind(entry.Kind),
			Quantifier: quantifier,
		})
	}
	return operands, nil
}

// mnemonicVisible reports whether the mnemonic of an instruction is used
// for disassembly. Instructions of the core grammar are always visible,
// extension instructions only when both the mnemonic suffix and one of the
// originating extensions match the allow list.
func mnemonicVisible(entry InstructionEntry, prefixes, suffixes []string) bool {
	if len(entry.Extensions) == 0 {
		return true
	}
	if !hasAnySuffix(entry.Opname, suffixes) {
		return false
	}
	for _, extension := range entry.Extensions {
		for _, prefix := range prefixes {
			if strings.HasPrefix(extension, prefix) {
				return true
			}
		}
	}
	return false
}

// opnameSuffixes derives the allowed mnemonic suffixes from the extension
// prefixes, SPV_KHR allows the KHR mnemonic suffix.
func opnameSuffixes(prefixes []string) []string {
	suffixes := make([]string, 0, len(prefixes))
	for _, prefix := range prefixes {
		suffixes = append(suffixes, strings.TrimPrefix(prefix, "SPV_"))
	}
	return suffixes
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

func formatUint(value uint32) string {
	return strconv.FormatUint(uint64(value), 10)
}
