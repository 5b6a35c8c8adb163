// Package builder implements the template builder: walking a
// resolved constructor tree depth-first, splicing BUILD and
// DELAY_SLOT points, and lowering each op-template into either a flat
// P-code op list or a higher-level E-code statement list, with
// relative branch labels patched to their final position once the
// whole instruction's op sequence is known.
package builder

import (
	"github.com/lookbusy1344/sleigh-lift/il"
	"github.com/lookbusy1344/sleigh-lift/lifterror"
	"github.com/lookbusy1344/sleigh-lift/sleighsym"
	"github.com/lookbusy1344/sleigh-lift/space"
	"github.com/lookbusy1344/sleigh-lift/walker"
)

// DelaySlotPCodeFunc lifts the instruction at addr for splicing at a
// DELAY_SLOT point, returning its ops and byte length.
type DelaySlotPCodeFunc func(addr uint64) ([]il.PCodeOp, int, error)

type pendingRef struct {
	opIndex  int
	isOut    bool
	inIndex  int
	labelIdx int
}

// BuildPCode lowers the resolved tree rooted at frame into a flat
// P-code op sequence.
func BuildPCode(prog *sleighsym.Program, pc *walker.ParserContext, frame *walker.ConstructorState, baseAddr uint64, instrLength int, liftDelaySlot DelaySlotPCodeFunc) ([]il.PCodeOp, error) {
	b := &pcodeBuilder{prog: prog, pc: pc, baseAddr: baseAddr, delayAddr: uint64(instrLength), liftDelaySlot: liftDelaySlot, labelPositions: map[int]int{}}
	if err := b.walk(frame); err != nil {
		return nil, err
	}
	for _, p := range b.pending {
		pos, ok := b.labelPositions[p.labelIdx]
		if !ok {
			continue
		}
		relative := int32(pos - p.opIndex)
		vn := space.Varnode{Space: prog.Spaces.ConstantSpace(), Offset: uint64(uint32(relative)), Size: 4}
		if p.isOut {
			b.ops[p.opIndex].Out = &vn
		} else {
			b.ops[p.opIndex].In[p.inIndex] = vn
		}
	}
	return b.ops, nil
}

type pcodeBuilder struct {
	prog           *sleighsym.Program
	pc             *walker.ParserContext
	baseAddr       uint64
	liftDelaySlot  DelaySlotPCodeFunc
	ops            []il.PCodeOp
	labelPositions map[int]int
	pending        []pendingRef
	delayAddr      uint64
	delayTaken     int
}

func (b *pcodeBuilder) walk(f *walker.ConstructorState) error {
	if f.Constructor.Template == nil {
		return nil
	}
	for _, opt := range f.Constructor.Template.Ops {
		switch {
		case opt.IsLabel:
			b.labelPositions[opt.LabelIndex] = len(b.ops)
		case opt.IsBuild:
			if opt.BuildOperand >= 0 && opt.BuildOperand < len(f.Operands) && f.Operands[opt.BuildOperand] != nil && f.Operands[opt.BuildOperand].Child != nil {
				if err := b.walk(f.Operands[opt.BuildOperand].Child); err != nil {
					return err
				}
			}
		case opt.IsDelaySlot:
			if b.liftDelaySlot == nil {
				continue
			}
			addr := b.baseAddr + uint64(b.delayAddr)
			dsOps, length, err := b.liftDelaySlot(addr)
			if err != nil {
				return err
			}
			b.ops = append(b.ops, dsOps...)
			b.delayAddr += uint64(length)
			b.delayTaken++
		default:
			if il.ReservedOpcodes[opt.RawOpcode] {
				return lifterror.ErrUnsupportedOp(opt.RawOpcode, "reserved template opcode")
			}
			opcode, ok := il.OpcodeByName(opt.RawOpcode)
			if !ok {
				return lifterror.ErrUnsupportedOp(opt.RawOpcode, "unknown template opcode")
			}
			var out *space.Varnode
			if opt.Out != nil {
				vn, isLabel, labelIdx := resolveVarnode(b.prog, b.pc, f, *opt.Out)
				if isLabel {
					b.pending = append(b.pending, pendingRef{opIndex: len(b.ops), isOut: true, labelIdx: labelIdx})
				}
				out = &vn
			}
			ins := make([]space.Varnode, len(opt.In))
			for i, invt := range opt.In {
				vn, isLabel, labelIdx := resolveVarnode(b.prog, b.pc, f, invt)
				if isLabel {
					b.pending = append(b.pending, pendingRef{opIndex: len(b.ops), inIndex: i, labelIdx: labelIdx})
				}
				ins[i] = vn
			}
			b.ops = append(b.ops, il.PCodeOp{Opcode: opcode, Out: out, In: ins})
		}
	}
	return nil
}

// resolveVarnode resolves a single varnode-template against a
// constructor frame, reporting (via isLabel) when it names a relative
// label rather than a concrete varnode.
func resolveVarnode(prog *sleighsym.Program, pc *walker.ParserContext, frame *walker.ConstructorState, vt sleighsym.VarnodeTemplate) (space.Varnode, bool, int) {
	switch vt.Kind {
	case sleighsym.VTFixed:
		return vt.Fixed, false, 0
	case sleighsym.VTHandleRef:
		if vt.OperandIndex < 0 || vt.OperandIndex >= len(frame.Operands) || frame.Operands[vt.OperandIndex] == nil {
			return space.Varnode{}, false, 0
		}
		h := frame.Operands[vt.OperandIndex].Handle
		switch vt.Selector {
		case sleighsym.SelectOffset:
			return space.Varnode{Space: prog.Spaces.ConstantSpace(), Offset: h.Offset, Size: h.Size}, false, 0
		case sleighsym.SelectSize:
			return space.Varnode{Space: prog.Spaces.ConstantSpace(), Offset: uint64(h.Size), Size: h.Size}, false, 0
		default:
			return h.Varnode(), false, 0
		}
	case sleighsym.VTRelativeLabel:
		return space.Varnode{}, true, vt.LabelIndex
	case sleighsym.VTUnique:
		off := pc.NextUniqueOffset()
		return space.Varnode{Space: prog.Spaces.UniqueSpace(), Offset: off, Size: vt.Size}, false, 0
	default:
		return space.Varnode{}, false, 0
	}
}
