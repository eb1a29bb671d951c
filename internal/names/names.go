// Package names builds and queries the identifier name overlay that maps
// numeric ids to the display names assigned by debug name instructions.
package names

import (
	"fmt"
	"strings"

	"github.com/retroenv/spvdisasm/internal/binary"
	"github.com/retroenv/spvdisasm/internal/operand"
)

// Debug instructions that assign names to ids. Member names attach to
// struct members instead of ids and are not part of the overlay.
const (
	opName       = 5
	opMemberName = 6
)

// Overlay is a read-only mapping from numeric id to display name. A nil
// overlay is valid and never resolves a name.
type Overlay struct {
	names map[uint32]string
}

// NewOverlay creates an overlay from an existing id to name mapping.
func NewOverlay(names map[uint32]string) *Overlay {
	return &Overlay{names: names}
}

// Lookup returns the display name assigned to the id.
func (o *Overlay) Lookup(id uint32) (string, bool) {
	if o == nil {
		return "", false
	}
	name, ok := o.names[id]
	return name, ok
}

// Collect scans the instructions of a module for debug name instructions
// and builds the overlay. Names are sanitized for assembly output and
// duplicate names are disambiguated with a numeric suffix. The full module
// has to be scanned before the overlay is used by any decode call.
func Collect(instructions []binary.Instruction) *Overlay {
	overlay := &Overlay{names: map[uint32]string{}}
	counters := map[string]int{}

	for _, instruction := range instructions {
		if instruction.Opcode != opName {
			continue
		}

		cursor := operand.NewCursor(instruction.Words)
		id, err := cursor.ReadUint32()
		if err != nil {
			continue // malformed debug instruction, names are best effort
		}
		name, err := cursor.ReadString()
		if err != nil {
			continue
		}

		name = sanitizeName(name)
		if name == "" {
			continue
		}
		assignName(overlay.names, counters, id, name)
	}
	return overlay
}

// assignName records the name for the id, keeping the first assignment per
// id and appending a counter suffix when the name is already taken.
func assignName(names map[uint32]string, counters map[string]int, id uint32, name string) {
	if _, ok := names[id]; ok {
		return
	}

	counter, ok := counters[name]
	if !ok {
		counters[name] = 0
		names[id] = name
		return
	}

	counters[name] = counter + 1
	names[id] = fmt.Sprintf("%s_%d", name, counter)
}

// sanitizeName converts all ASCII punctuation to underscores so that the
// name stays a single assembly token.
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x80 && strings.ContainsRune(asciiPunctuation, r) {
			return '_'
		}
		return r
	}, name)
}

const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
