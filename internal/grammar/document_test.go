package grammar

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

const testDocument = `{
  "instructions": [
    {
      "opname": "OpNop",
      "opcode": 0
    },
    {
      "opname": "OpLoad",
      "opcode": 61,
      "operands": [
        { "kind": "IdResultType" },
        { "kind": "IdResult" },
        { "kind": "IdRef" },
        { "kind": "MemoryAccess", "quantifier": "?" }
      ]
    },
    {
      "opname": "OpTraceRayKHR",
      "opcode": 4445,
      "extensions": [ "SPV_KHR_ray_tracing" ],
      "operands": [
        { "kind": "IdRef" }
      ]
    },
    {
      "opname": "OpImageSampleFootprintNV",
      "opcode": 5283,
      "extensions": [ "SPV_NV_shader_image_footprint" ],
      "operands": [
        { "kind": "IdResultType" },
        { "kind": "IdResult" },
        { "kind": "IdRef" }
      ]
    }
  ],
  "operand_kinds": [
    {
      "category": "BitEnum",
      "kind": "MemoryAccess",
      "enumerants": [
        { "enumerant": "None", "value": "0x0000" },
        { "enumerant": "Volatile", "value": "0x0001" },
        {
          "enumerant": "Aligned",
          "value": "0x0002",
          "parameters": [ { "kind": "LiteralInteger" } ]
        }
      ]
    },
    {
      "category": "ValueEnum",
      "kind": "Decoration",
      "enumerants": [
        { "enumerant": "Block", "value": 2 },
        {
          "enumerant": "ArrayStride",
          "value": 6,
          "parameters": [ { "kind": "LiteralInteger" } ]
        }
      ]
    },
    {
      "category": "Id",
      "kind": "IdRef"
    }
  ]
}`

func TestParseDocument(t *testing.T) {
	doc, err := Parse([]byte(testDocument))
	assert.NoError(t, err)
	assert.Len(t, doc.Instructions, 4)
	assert.Len(t, doc.OperandKinds, 3)

	load := doc.Instructions[1]
	assert.Equal(t, "OpLoad", load.Opname)
	assert.Equal(t, uint32(61), load.Opcode)
	assert.Equal(t, "?", load.Operands[3].Quantifier)

	// hex string and number enumerant values decode the same way
	memoryAccess := doc.OperandKinds[0]
	assert.Equal(t, uint32(2), uint32(memoryAccess.Enumerants[2].Value))
	decoration := doc.OperandKinds[1]
	assert.Equal(t, uint32(6), uint32(decoration.Enumerants[1].Value))
}

func TestParseDocumentInvalid(t *testing.T) {
	_, err := Parse([]byte(`{ "instructions": [ { "opcode": "x" } ] }`))
	assert.Error(t, err)
}

func TestNewCatalog(t *testing.T) {
	doc, err := Parse([]byte(testDocument))
	assert.NoError(t, err)
	catalog, err := New(doc, DefaultConfig())
	assert.NoError(t, err)

	spec, err := catalog.OpcodeSpec(61)
	assert.NoError(t, err)
	assert.Equal(t, "OpLoad", spec.Name)
	assert.Len(t, spec.Operands, 4)
	assert.Equal(t, ZeroOrOne, spec.Operands[3].Quantifier)

	enum, ok := catalog.EnumKind("MemoryAccess")
	assert.True(t, ok)
	assert.Equal(t, BitEnum, enum.Category)
	assert.Equal(t, []uint32{1, 2}, enum.Bits())

	variant, ok := enum.Variant(2)
	assert.True(t, ok)
	assert.Equal(t, "Aligned", variant.Name)
	assert.Len(t, variant.Parameters, 1)
	assert.Equal(t, KindLiteralInteger, variant.Parameters[0].Kind)

	// non enum operand kinds carry no enumerants and are skipped
	_, ok = catalog.EnumKind("IdRef")
	assert.False(t, ok)
}

func TestNewCatalogExtensionFiltering(t *testing.T) {
	doc, err := Parse([]byte(testDocument))
	assert.NoError(t, err)
	catalog, err := New(doc, DefaultConfig())
	assert.NoError(t, err)

	// Khronos extension mnemonics stay visible.
	name, err := catalog.OpcodeName(4445)
	assert.NoError(t, err)
	assert.Equal(t, "OpTraceRayKHR", name)

	// Vendor extension mnemonics are suppressed for disassembly but stay
	// resolvable by name.
	_, err = catalog.OpcodeName(5283)
	assert.True(t, errors.Is(err, ErrUnknownOpcode))
	opcode, err := catalog.OpcodeValue("OpImageSampleFootprintNV")
	assert.NoError(t, err)
	assert.Equal(t, uint32(5283), opcode)
}

func TestNewCatalogCustomAllowList(t *testing.T) {
	doc, err := Parse([]byte(testDocument))
	assert.NoError(t, err)
	catalog, err := New(doc, Config{ExtensionAllowPrefixes: []string{"SPV_NV"}})
	assert.NoError(t, err)

	name, err := catalog.OpcodeName(5283)
	assert.NoError(t, err)
	assert.Equal(t, "OpImageSampleFootprintNV", name)

	_, err = catalog.OpcodeName(4445)
	assert.True(t, errors.Is(err, ErrUnknownOpcode))
}

func TestNewCatalogInvalidFlagValue(t *testing.T) {
	doc := &Document{
		OperandKinds: []OperandKindEntry{{
			Category: "BitEnum",
			Kind:     "Broken",
			Enumerants: []EnumerantEntry{
				{Enumerant: "Bad", Value: 3},
			},
		}},
	}
	_, err := New(doc, DefaultConfig())
	assert.Error(t, err)
}

func TestNewCatalogDuplicateMnemonic(t *testing.T) {
	doc := &Document{
		Instructions: []InstructionEntry{
			{Opname: "OpNop", Opcode: 0},
			{Opname: "OpNop", Opcode: 1},
		},
	}
	_, err := New(doc, DefaultConfig())
	assert.Error(t, err)
}

func TestNewCatalogUnknownQuantifier(t *testing.T) {
	doc := &Document{
		Instructions: []InstructionEntry{{
			Opname: "OpBroken",
			Opcode: 1,
			Operands: []OperandEntry{
				{Kind: "IdRef", Quantifier: "+"},
			},
		}},
	}
	_, err := New(doc, DefaultConfig())
	assert.Error(t, err)
}

func TestNewCatalogAliasedValues(t *testing.T) {
	doc := &Document{
		Instructions: []InstructionEntry{
			{Opname: "OpThing", Opcode: 7},
			{Opname: "OpThingKHR", Opcode: 7},
		},
		OperandKinds: []OperandKindEntry{{
			Category: "ValueEnum",
			Kind:     "Thing",
			Enumerants: []EnumerantEntry{
				{Enumerant: "First", Value: 1},
				{Enumerant: "FirstKHR", Value: 1},
			},
		}},
	}
	catalog, err := New(doc, DefaultConfig())
	assert.NoError(t, err)

	// first declarations win for value based lookups
	name, err := catalog.OpcodeName(7)
	assert.NoError(t, err)
	assert.Equal(t, "OpThing", name)
	assert.Equal(t, "First", catalog.EnumName("Thing", 1))

	// both names stay resolvable
	value, err := catalog.EnumValue("Thing", "FirstKHR")
	assert.NoError(t, err)
	assert.Equal(t, uint32(1), value)
}
