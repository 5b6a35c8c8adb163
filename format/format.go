// Package format implements the disassembly-text formatter: a third
// walk over the already-resolved constructor tree that renders each
// constructor's immutable print-piece sequence, recursing into
// subtable operands and rendering terminal symbols per their display
// rule.
package format

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/lookbusy1344/sleigh-lift/bitvec"
	"github.com/lookbusy1344/sleigh-lift/sleighsym"
	"github.com/lookbusy1344/sleigh-lift/walker"
)

// Format renders the mnemonic/operand text for the resolved
// constructor tree rooted at frame.
func Format(prog *sleighsym.Program, frame *walker.ConstructorState) string {
	var sb strings.Builder
	writeConstructor(&sb, prog, frame)
	return sb.String()
}

func writeConstructor(sb *strings.Builder, prog *sleighsym.Program, frame *walker.ConstructorState) {
	for _, piece := range frame.Constructor.PrintPieces {
		if !piece.IsOperand {
			sb.WriteString(piece.Literal)
			continue
		}
		writeOperand(sb, prog, frame, piece.OperandIndex)
	}
}

func writeOperand(sb *strings.Builder, prog *sleighsym.Program, frame *walker.ConstructorState, idx int) {
	if idx < 0 || idx >= len(frame.Operands) || frame.Operands[idx] == nil {
		sb.WriteString("?")
		return
	}
	op := frame.Operands[idx]
	if op.Child != nil {
		writeConstructor(sb, prog, op.Child)
		return
	}
	var def *sleighsym.OperandDef
	if idx < len(frame.Constructor.Operands) {
		d := frame.Constructor.Operands[idx]
		def = &d
	}
	var sym *sleighsym.Symbol
	if def != nil {
		sym = prog.Symbol(def.DefiningSymbol)
	}
	sb.WriteString(displaySymbol(prog, sym, op.Value))
}

// displaySymbol renders a terminal symbol per its display rule:
// Varnode -> register name; Value -> hex; ValueMap -> the
// underlying value looked up and re-rendered as hex (the table maps
// to a scalar, not display text); Name -> the name table's display
// string; Start/End -> hex address; anything else (a plain
// pattern-expression operand) -> hex.
func displaySymbol(prog *sleighsym.Program, sym *sleighsym.Symbol, val bitvec.BitVec) string {
	if sym == nil {
		return hexValue(val)
	}
	switch sym.Kind {
	case sleighsym.KindVarnode:
		if name, ok := prog.Registers.NameOf(sym.Varnode.Offset, sym.Varnode.Size); ok {
			return name
		}
		return sym.Name
	case sleighsym.KindVarnodeList:
		idx := int(val.Unsigned().Int64())
		if idx >= 0 && idx < len(sym.VarnodeList) {
			vn := sym.VarnodeList[idx]
			if name, ok := prog.Registers.NameOf(vn.Offset, vn.Size); ok {
				return name
			}
		}
		return hexValue(val)
	case sleighsym.KindName:
		idx := int(val.Unsigned().Int64())
		if idx >= 0 && idx < len(sym.NameTable) {
			return sym.NameTable[idx]
		}
		return "?"
	case sleighsym.KindValueMap:
		idx := int(val.Unsigned().Int64())
		if idx >= 0 && idx < len(sym.ValueMapTable) {
			mapped := sym.ValueMapTable[idx]
			return fmt.Sprintf("0x%x", mapped)
		}
		return hexValue(val)
	default:
		return hexValue(val)
	}
}

func hexValue(val bitvec.BitVec) string {
	if val.IsSigned() {
		s := val.Signed()
		if s.Sign() < 0 {
			return fmt.Sprintf("-0x%x", new(big.Int).Abs(s))
		}
		return fmt.Sprintf("0x%x", s)
	}
	return fmt.Sprintf("0x%x", val.Unsigned())
}
