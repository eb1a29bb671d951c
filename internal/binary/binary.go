// Package binary parses SPIR-V binary modules into a header and the word
// slices of the individual instructions. It performs no interpretation of
// instruction operands beyond delimiting instruction boundaries.
package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
)

// Magic identifies a SPIR-V module in host word order.
const Magic = 0x07230203

// magicReversed is the magic number of a module written in the opposite
// byte order, all words have to be byte swapped before use.
const magicReversed = 0x03022307

const headerWords = 5

var (
	ErrInvalidMagic     = errors.New("invalid magic number")
	ErrTruncated        = errors.New("module is truncated")
	ErrInvalidWordCount = errors.New("invalid instruction word count")
)

// Header contains the module header that precedes the instruction stream.
type Header struct {
	Version   uint32
	Generator uint32
	Bound     uint32
	Schema    uint32
}

// MajorVersion returns the major version of the module.
func (h Header) MajorVersion() uint32 {
	return h.Version >> 16
}

// MinorVersion returns the minor version of the module.
func (h Header) MinorVersion() uint32 {
	return h.Version & 0xffff
}

// Instruction is one delimited instruction of the module. Words contains
// the operand words following the opcode word.
type Instruction struct {
	Opcode uint32
	Words  []uint32
}

// Module is a parsed SPIR-V binary.
type Module struct {
	Header       Header
	Instructions []Instruction
}

// ParseBytes parses a module from its byte form. The byte order is
// detected from the magic number.
func ParseBytes(data []byte) (*Module, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: size %d is not a multiple of the word size", ErrTruncated, len(data))
	}

	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}

	if len(words) > 0 && words[0] == magicReversed {
		for i, word := range words {
			words[i] = bits.ReverseBytes32(word)
		}
	}
	return Parse(words)
}

// Parse parses a module from its word form.
func Parse(words []uint32) (*Module, error) {
	if len(words) < headerWords {
		return nil, fmt.Errorf("%w: header is incomplete", ErrTruncated)
	}
	if words[0] != Magic {
		return nil, fmt.Errorf("%w: %#08x", ErrInvalidMagic, words[0])
	}

	module := &Module{
		Header: Header{
			Version:   words[1],
			Generator: words[2],
			Bound:     words[3],
			Schema:    words[4],
		},
	}

	for index := headerWords; index < len(words); {
		wordCount := int(words[index] >> 16)
		opcode := words[index] & 0xffff

		if wordCount == 0 {
			return nil, fmt.Errorf("%w: zero word count at word %d", ErrInvalidWordCount, index)
		}
		if index+wordCount > len(words) {
			return nil, fmt.Errorf("%w: instruction at word %d exceeds module size", ErrTruncated, index)
		}

		module.Instructions = append(module.Instructions, Instruction{
			Opcode: opcode,
			Words:  words[index+1 : index+wordCount],
		})
		index += wordCount
	}
	return module, nil
}
