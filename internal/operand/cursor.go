// Package operand provides sequential typed reading of the operand words
// of a single instruction.
package operand

import (
	"errors"
	"math"
)

var (
	ErrUnderflow          = errors.New("operands are too short")
	ErrUnterminatedString = errors.New("string is not null-terminated")
)

// Cursor reads typed values from the operand words of one instruction.
// It owns a mutable read position over a borrowed word slice and never
// looks past the end of that slice.
type Cursor struct {
	words []uint32
}

// NewCursor creates a cursor over the operand words of an instruction.
func NewCursor(words []uint32) *Cursor {
	return &Cursor{words: words}
}

// Len returns the number of unread words.
func (c *Cursor) Len() int {
	return len(c.words)
}

// IsEmpty returns whether all words have been read.
func (c *Cursor) IsEmpty() bool {
	return len(c.words) == 0
}

// ReadUint32 reads the next word.
func (c *Cursor) ReadUint32() (uint32, error) {
	if len(c.words) == 0 {
		return 0, ErrUnderflow
	}
	word := c.words[0]
	c.words = c.words[1:]
	return word, nil
}

// ReadFloat32 reads the next word and reinterprets its bits as a float.
func (c *Cursor) ReadFloat32() (float32, error) {
	word, err := c.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(word), nil
}

// ReadString reads a string packed as little-endian bytes into consecutive
// words, terminated by a zero byte. The word containing the terminator is
// consumed completely.
func (c *Cursor) ReadString() (string, error) {
	buf := make([]byte, 0, len(c.words)*4)

	for i, word := range c.words {
		for shift := 0; shift < 32; shift += 8 {
			b := byte(word >> shift)
			if b == 0 {
				c.words = c.words[i+1:]
				return string(buf), nil
			}
			buf = append(buf, b)
		}
	}
	return "", ErrUnterminatedString
}

// ReadRest consumes and returns all remaining words. It is used for
// context-dependent number literals and run-length operand lists that by
// construction extend to the end of the instruction.
func (c *Cursor) ReadRest() []uint32 {
	words := c.words
	c.words = nil
	return words
}
