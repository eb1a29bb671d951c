// Package printer implements the grammar-driven operand decoder. It walks
// the declared operand slots of an instruction, consumes the matching
// words from the operand cursor and emits display tokens.
package printer

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/retroenv/spvdisasm/internal/grammar"
	"github.com/retroenv/spvdisasm/internal/names"
	"github.com/retroenv/spvdisasm/internal/operand"
)

// ErrUnknownOperandKind signals that the grammar declares an operand kind
// the decoder does not recognize. It indicates a version mismatch between
// the grammar document and the decoder and aborts the whole decode run.
var ErrUnknownOperandKind = errors.New("unknown operand kind")

// idSigil prefixes every rendered identifier token.
const idSigil = "%"

// extraSigil prefixes trailing words that no declared operand slot covers.
const extraSigil = "!"

// Options control the token rendering of the printer.
type Options struct {
	// FlagNames renders the symbolic names of set BitEnum flags joined by
	// "|" instead of the raw flag word value.
	FlagNames bool
}

// Printer decodes instruction operands using the grammar catalog.
// A printer holds no per-call state and can be shared between concurrent
// decode calls.
type Printer struct {
	catalog *grammar.Catalog
	options Options
}

// New creates a printer for the catalog.
func New(catalog *grammar.Catalog, options Options) *Printer {
	return &Printer{
		catalog: catalog,
		options: options,
	}
}

// Print decodes all operand words of an instruction into display tokens.
// The cursor has to be positioned after the result type and result id
// words, those slots are rendered by the caller. Words that remain after
// all declared slots are consumed are emitted as extra tokens instead of
// failing, this keeps disassembly usable on modules that were created with
// a newer grammar than the catalog.
func (p *Printer) Print(opcode uint32, cursor *operand.Cursor, overlay *names.Overlay) ([]string, error) {
	spec, err := p.catalog.OpcodeSpec(opcode)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, slot := range spec.Operands {
		if slot.Kind.IsResult() {
			continue
		}
		if out, err = p.printSlot(slot, cursor, overlay, out); err != nil {
			return nil, fmt.Errorf("decoding %s operand of %s: %w", slot.Kind, spec.Name, err)
		}
	}

	for !cursor.IsEmpty() {
		word, err := cursor.ReadUint32()
		if err != nil {
			return nil, err
		}
		out = append(out, extraSigil+formatUint(word))
	}
	return out, nil
}

// printSlot applies the quantifier of a declared slot and decodes the slot
// kind once per occurrence.
func (p *Printer) printSlot(slot grammar.Operand, cursor *operand.Cursor,
	overlay *names.Overlay, out []string) ([]string, error) {

	var err error
	switch slot.Quantifier {
	case grammar.ZeroOrMore:
		for !cursor.IsEmpty() {
			if out, err = p.printOperand(slot.Kind, cursor, overlay, out); err != nil {
				return nil, err
			}
		}
		return out, nil

	case grammar.ZeroOrOne:
		if cursor.IsEmpty() {
			return out, nil
		}
		return p.printOperand(slot.Kind, cursor, overlay, out)

	default: // mandatory slot, an empty cursor underflows
		return p.printOperand(slot.Kind, cursor, overlay, out)
	}
}

// printOperand decodes one occurrence of an operand kind.
func (p *Printer) printOperand(kind grammar.OperandKind, cursor *operand.Cursor,
	overlay *names.Overlay, out []string) ([]string, error) {

	switch {
	case kind == grammar.KindLiteralInteger:
		word, err := cursor.ReadUint32()
		if err != nil {
			return nil, err
		}
		return append(out, formatUint(word)), nil

	case kind == grammar.KindLiteralFloat:
		value, err := cursor.ReadFloat32()
		if err != nil {
			return nil, err
		}
		return append(out, strconv.FormatFloat(float64(value), 'g', -1, 32)), nil

	case kind == grammar.KindLiteralString:
		text, err := cursor.ReadString()
		if err != nil {
			return nil, err
		}
		return append(out, strconv.Quote(text)), nil

	case kind == grammar.KindLiteralContextDependentNumber:
		// Width and signedness depend on a type operand this decoder does
		// not track, the raw words are emitted instead. The grammar only
		// uses this kind as the last slot of an instruction.
		for _, word := range cursor.ReadRest() {
			out = append(out, formatUint(word))
		}
		return out, nil

	case kind == grammar.KindPairIDRefIDRef:
		return p.printPairs(cursor, overlay, out, true, true)

	case kind == grammar.KindPairIDRefLiteralInteger:
		return p.printPairs(cursor, overlay, out, true, false)

	case kind == grammar.KindPairLiteralIntegerIDRef:
		return p.printPairs(cursor, overlay, out, false, true)

	case kind.IsLiteral(): // remaining literal flavors are one default width word
		word, err := cursor.ReadUint32()
		if err != nil {
			return nil, err
		}
		return append(out, formatUint(word)), nil

	case kind.IsID():
		id, err := cursor.ReadUint32()
		if err != nil {
			return nil, err
		}
		return append(out, IDToken(id, overlay)), nil

	default:
		return p.printEnum(kind, cursor, overlay, out)
	}
}

// printPairs consumes the remaining words two at a time and emits one
// composite token per pair. The remaining word count has to divide evenly.
func (p *Printer) printPairs(cursor *operand.Cursor, overlay *names.Overlay,
	out []string, firstIsID, secondIsID bool) ([]string, error) {

	for !cursor.IsEmpty() {
		if cursor.Len() < 2 {
			return nil, fmt.Errorf("%w: operands do not pair up", operand.ErrUnderflow)
		}
		first, err := cursor.ReadUint32()
		if err != nil {
			return nil, err
		}
		second, err := cursor.ReadUint32()
		if err != nil {
			return nil, err
		}
		out = append(out, pairToken(first, firstIsID, overlay)+" "+pairToken(second, secondIsID, overlay))
	}
	return out, nil
}

// printEnum reads the enum word, resolves its display name and decodes the
// nested operand slots that the selected value or set flags declare.
func (p *Printer) printEnum(kind grammar.OperandKind, cursor *operand.Cursor,
	overlay *names.Overlay, out []string) ([]string, error) {

	value, err := cursor.ReadUint32()
	if err != nil {
		return nil, err
	}
	name, parameters, err := p.resolve(string(kind), value)
	if err != nil {
		return nil, err
	}

	out = append(out, name)
	for _, parameter := range parameters {
		if out, err = p.printSlot(parameter, cursor, overlay, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// IDToken renders an id through the identifier name overlay, falling back
// to the raw numeric form for ids without an assigned name.
func IDToken(id uint32, overlay *names.Overlay) string {
	if name, ok := overlay.Lookup(id); ok {
		return idSigil + name
	}
	return idSigil + formatUint(id)
}

func pairToken(word uint32, isID bool, overlay *names.Overlay) string {
	if isID {
		return IDToken(word, overlay)
	}
	return formatUint(word)
}

func formatUint(value uint32) string {
	return strconv.FormatUint(uint64(value), 10)
}
