package printer

import (
	"fmt"
	"strings"

	"github.com/retroenv/spvdisasm/internal/grammar"
)

// resolve maps a raw enum word to its display name and to the nested
// operand slots that have to be decoded after the enum word.
//
// ValueEnum values select exactly one variant, values without a declared
// variant render as their decimal form and carry no nested slots.
//
// BitEnum words can combine multiple flags. A zero word renders as the
// None token. Otherwise the declared flag bits are checked in the fixed
// order of the grammar document and the nested slots of every set flag are
// concatenated in that same order, which keeps the decode order bit-exact
// with the binary encoding regardless of the numeric bit values.
func (p *Printer) resolve(kind string, value uint32) (string, []grammar.Operand, error) {
	enum, ok := p.catalog.EnumKind(kind)
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrUnknownOperandKind, kind)
	}

	if enum.Category == grammar.ValueEnum {
		if variant, ok := enum.Variant(value); ok {
			return variant.Name, variant.Parameters, nil
		}
		return formatUint(value), nil, nil
	}

	// BitEnum
	if value == 0 {
		return "None", nil, nil
	}

	var flagNames []string
	var parameters []grammar.Operand
	remaining := value

	for _, bit := range enum.Bits() {
		if value&bit == 0 {
			continue
		}
		variant, _ := enum.Variant(bit)
		flagNames = append(flagNames, variant.Name)
		parameters = append(parameters, variant.Parameters...)
		remaining &^= bit
	}

	display := formatUint(value)
	if p.options.FlagNames && len(flagNames) > 0 {
		if remaining != 0 { // undeclared bits stay visible in numeric form
			flagNames = append(flagNames, formatUint(remaining))
		}
		display = strings.Join(flagNames, "|")
	}
	return display, parameters, nil
}
