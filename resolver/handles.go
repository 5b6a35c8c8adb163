package resolver

import (
	"github.com/lookbusy1344/sleigh-lift/bitvec"
	"github.com/lookbusy1344/sleigh-lift/sleighsym"
	"github.com/lookbusy1344/sleigh-lift/walker"
)

// ResolveHandles is the second pass of resolution: post-order over
// the already-resolved constructor tree, filling every operand's
// OperandHandle and then the frame's own Handle (the descriptor a
// parent constructor inherits when this frame is used as a subtable
// operand).
func ResolveHandles(prog *sleighsym.Program, pc *walker.ParserContext, frame *walker.ConstructorState) {
	for _, op := range frame.Operands {
		if op == nil {
			continue
		}
		if op.Child != nil {
			ResolveHandles(prog, pc, op.Child)
			op.Child.Handle = deriveFrameHandle(prog, op.Child)
			op.Handle = op.Child.Handle
			continue
		}
		var sym *sleighsym.Symbol
		if op.Def != nil {
			sym = prog.Symbol(op.Def.DefiningSymbol)
		}
		op.Handle = handleForValue(prog, sym, op.Value)
	}
	frame.Handle = deriveFrameHandle(prog, frame)
}

// deriveFrameHandle computes a constructor frame's own result handle:
// from its semantic template's declared result varnode-template, or
// else from its first operand's handle.
func deriveFrameHandle(prog *sleighsym.Program, frame *walker.ConstructorState) walker.OperandHandle {
	c := frame.Constructor
	if c.Template != nil && c.Template.Result != nil {
		return handleFromVarnodeTemplate(prog, frame, *c.Template.Result)
	}
	if len(frame.Operands) > 0 && frame.Operands[0] != nil {
		return frame.Operands[0].Handle
	}
	return walker.OperandHandle{}
}

func handleFromVarnodeTemplate(prog *sleighsym.Program, frame *walker.ConstructorState, vt sleighsym.VarnodeTemplate) walker.OperandHandle {
	switch vt.Kind {
	case sleighsym.VTFixed:
		return walker.OperandHandle{Space: vt.Fixed.Space, Offset: vt.Fixed.Offset, Size: vt.Fixed.Size}
	case sleighsym.VTHandleRef:
		if vt.OperandIndex < 0 || vt.OperandIndex >= len(frame.Operands) || frame.Operands[vt.OperandIndex] == nil {
			return walker.OperandHandle{}
		}
		h := frame.Operands[vt.OperandIndex].Handle
		switch vt.Selector {
		case sleighsym.SelectOffset:
			return walker.OperandHandle{Space: prog.Spaces.ConstantSpace(), Offset: h.Offset, Size: h.Size}
		case sleighsym.SelectSize:
			return walker.OperandHandle{Space: prog.Spaces.ConstantSpace(), Offset: uint64(h.Size), Size: h.Size}
		default: // SelectSpace
			return h
		}
	case sleighsym.VTUnique:
		// Unique temporaries are allocated at build time (builder.go),
		// not during handle resolution; only the size is known here.
		return walker.OperandHandle{Size: vt.Size}
	default:
		return walker.OperandHandle{}
	}
}

// handleForValue builds the handle for a non-subtable operand from
// its defining symbol (if any) and its resolved pattern-expression
// value.
func handleForValue(prog *sleighsym.Program, sym *sleighsym.Symbol, val bitvec.BitVec) walker.OperandHandle {
	constSpace := prog.Spaces.ConstantSpace()
	byteSize := (val.Bits() + 7) / 8
	if byteSize == 0 {
		byteSize = 1
	}
	if sym == nil {
		return walker.OperandHandle{Space: constSpace, Offset: val.Unsigned().Uint64(), Size: byteSize}
	}
	switch sym.Kind {
	case sleighsym.KindVarnode:
		return walker.OperandHandle{Space: sym.Varnode.Space, Offset: sym.Varnode.Offset, Size: sym.Varnode.Size}
	case sleighsym.KindVarnodeList:
		idx := int(val.Unsigned().Int64())
		if idx >= 0 && idx < len(sym.VarnodeList) {
			vn := sym.VarnodeList[idx]
			return walker.OperandHandle{Space: vn.Space, Offset: vn.Offset, Size: vn.Size}
		}
		return walker.OperandHandle{}
	default:
		return walker.OperandHandle{Space: constSpace, Offset: val.Unsigned().Uint64(), Size: byteSize}
	}
}
