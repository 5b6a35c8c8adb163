package builder

import (
	"fmt"

	"github.com/lookbusy1344/sleigh-lift/bitvec"
	"github.com/lookbusy1344/sleigh-lift/il"
	"github.com/lookbusy1344/sleigh-lift/lifterror"
	"github.com/lookbusy1344/sleigh-lift/sleighsym"
	"github.com/lookbusy1344/sleigh-lift/space"
	"github.com/lookbusy1344/sleigh-lift/walker"
)

// DelaySlotECodeFunc lifts the instruction at addr for splicing at a
// DELAY_SLOT point, returning its statements and byte length.
type DelaySlotECodeFunc func(addr uint64) ([]il.Stmt, int, error)

type pendingBranch struct {
	stmtIndex int
	labelIdx  int
	rebuild   func(il.BranchTarget) il.Stmt
}

type ecodeBuilder struct {
	prog          *sleighsym.Program
	pc            *walker.ParserContext
	addr          uint64
	baseAddr      uint64
	liftDelaySlot DelaySlotECodeFunc

	stmts          []il.Stmt
	labelPositions map[int]int
	pending        []pendingBranch
	delayAddr      uint64
}

// BuildECode lowers the resolved tree rooted at frame into the
// higher-level E-code statement sequence.
func BuildECode(prog *sleighsym.Program, pc *walker.ParserContext, frame *walker.ConstructorState, addr uint64, instrLength int, liftDelaySlot DelaySlotECodeFunc) ([]il.Stmt, error) {
	b := &ecodeBuilder{prog: prog, pc: pc, addr: addr, baseAddr: addr, delayAddr: uint64(instrLength), liftDelaySlot: liftDelaySlot, labelPositions: map[int]int{}}
	if err := b.walk(frame); err != nil {
		return nil, err
	}
	for _, p := range b.pending {
		pos, ok := b.labelPositions[p.labelIdx]
		if !ok {
			continue
		}
		base := il.Location{Address: addr, SubPosition: uint32(p.stmtIndex)}
		target := il.AbsoluteFrom(base, int32(pos-p.stmtIndex))
		b.stmts[p.stmtIndex] = p.rebuild(target)
	}
	return b.stmts, nil
}

func exprOfVarnode(vn space.Varnode) il.Expr {
	if vn.IsConstant() {
		return il.ValExpr{Value: bitvec.FromUint64(vn.Offset, vn.Size*8)}
	}
	return il.VarExpr{Varnode: vn}
}

func (b *ecodeBuilder) targetFromVarnode(vn space.Varnode) il.BranchTarget {
	if vn.Space != nil && vn.Space.Kind == space.RAM {
		return il.Location{Address: vn.Offset}
	}
	if vn.IsConstant() {
		return il.Location{Address: vn.Offset}
	}
	return il.Computed{Expr: exprOfVarnode(vn)}
}

func (b *ecodeBuilder) walk(f *walker.ConstructorState) error {
	if f.Constructor.Template == nil {
		return nil
	}
	for _, opt := range f.Constructor.Template.Ops {
		switch {
		case opt.IsLabel:
			b.labelPositions[opt.LabelIndex] = len(b.stmts)
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
			addr := b.baseAddr + b.delayAddr
			dsStmts, length, err := b.liftDelaySlot(addr)
			if err != nil {
				return err
			}
			b.stmts = append(b.stmts, dsStmts...)
			b.delayAddr += uint64(length)
		default:
			if il.ReservedOpcodes[opt.RawOpcode] {
				return lifterror.ErrUnsupportedOp(opt.RawOpcode, "reserved template opcode")
			}
			opcode, ok := il.OpcodeByName(opt.RawOpcode)
			if !ok {
				return lifterror.ErrUnsupportedOp(opt.RawOpcode, "unknown template opcode")
			}
			if err := b.emit(f, opcode, opt); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *ecodeBuilder) emit(f *walker.ConstructorState, opcode il.Opcode, opt sleighsym.OpTemplate) error {
	ins := make([]space.Varnode, len(opt.In))
	var inLabel []bool
	var inLabelIdx []int
	for i, invt := range opt.In {
		vn, isLabel, labelIdx := resolveVarnode(b.prog, b.pc, f, invt)
		ins[i] = vn
		if isLabel {
			inLabel = append(inLabel, true)
			inLabelIdx = append(inLabelIdx, labelIdx)
		} else {
			inLabel = append(inLabel, false)
			inLabelIdx = append(inLabelIdx, 0)
		}
	}
	var out *space.Varnode
	if opt.Out != nil {
		vn, _, _ := resolveVarnode(b.prog, b.pc, f, *opt.Out)
		out = &vn
	}

	switch opcode {
	case il.OpBranch, il.OpCall, il.OpCallInd, il.OpBranchInd, il.OpReturn:
		idx := len(b.stmts)
		if len(inLabel) > 0 && inLabel[0] {
			b.stmts = append(b.stmts, placeholderBranch(opcode))
			b.pending = append(b.pending, pendingBranch{stmtIndex: idx, labelIdx: inLabelIdx[0], rebuild: func(t il.BranchTarget) il.Stmt { return rebuildBranch(opcode, t) }})
			return nil
		}
		target := b.targetFromVarnode(ins[0])
		b.stmts = append(b.stmts, rebuildBranch(opcode, target))
		return nil
	case il.OpCBranch:
		idx := len(b.stmts)
		cond := exprOfVarnode(ins[1])
		if len(inLabel) > 0 && inLabel[0] {
			b.stmts = append(b.stmts, il.CBranchStmt{Cond: cond})
			b.pending = append(b.pending, pendingBranch{stmtIndex: idx, labelIdx: inLabelIdx[0], rebuild: func(t il.BranchTarget) il.Stmt { return il.CBranchStmt{Cond: cond, Target: t} }})
			return nil
		}
		target := b.targetFromVarnode(ins[0])
		b.stmts = append(b.stmts, il.CBranchStmt{Cond: cond, Target: target})
		return nil
	case il.OpLoad:
		spc, _ := b.prog.Spaces.ByID(int(ins[0].Offset))
		wide := uint32(0)
		if out != nil {
			wide = out.Size * 8
		}
		if out == nil {
			return nil
		}
		b.stmts = append(b.stmts, il.AssignStmt{Dst: il.VarExpr{Varnode: *out}, Src: il.LoadExpr{Space: spc, Addr: exprOfVarnode(ins[1]), Wide: wide}})
		return nil
	case il.OpStore:
		spc, _ := b.prog.Spaces.ByID(int(ins[0].Offset))
		b.stmts = append(b.stmts, il.StoreStmt{Addr: exprOfVarnode(ins[1]), Val: exprOfVarnode(ins[2]), Wide: ins[2].Size * 8, Space: spc})
		return nil
	case il.OpCallOther:
		name := b.userOpName(int(ins[0].Offset))
		var args []il.Expr
		for _, vn := range ins[1:] {
			args = append(args, exprOfVarnode(vn))
		}
		b.stmts = append(b.stmts, il.IntrinsicStmt{Name: name, Args: args})
		return nil
	default:
		b.stmts = append(b.stmts, b.buildOrdinaryStmt(opcode, out, ins))
		return nil
	}
}

func (b *ecodeBuilder) userOpName(idx int) string {
	for _, sym := range b.prog.Symbols {
		if sym.Kind == sleighsym.KindUserOp && sym.UserOpIndex == idx {
			return sym.Name
		}
	}
	return fmt.Sprintf("userop_%d", idx)
}

func placeholderBranch(opcode il.Opcode) il.Stmt { return rebuildBranch(opcode, il.Location{}) }

func rebuildBranch(opcode il.Opcode, target il.BranchTarget) il.Stmt {
	switch opcode {
	case il.OpCall, il.OpCallInd:
		return il.CallStmt{Target: target}
	case il.OpReturn:
		return il.ReturnStmt{Target: target}
	default:
		return il.BranchStmt{Target: target}
	}
}

func (b *ecodeBuilder) buildOrdinaryStmt(opcode il.Opcode, out *space.Varnode, ins []space.Varnode) il.Stmt {
	wide := uint32(0)
	if out != nil {
		wide = out.Size * 8
	} else if len(ins) > 0 {
		wide = ins[0].Size * 8
	}
	inExpr := func(i int) il.Expr {
		if i >= len(ins) {
			return il.ValExpr{Value: bitvec.Zero(1, false)}
		}
		return exprOfVarnode(ins[i])
	}

	var src il.Expr
	switch opcode {
	case il.OpCopy:
		src = inExpr(0)
	case il.OpIntAdd:
		src = il.BinaryExpr{Op: il.BinIntAdd, Wide: wide, L: inExpr(0), R: inExpr(1)}
	case il.OpIntSub:
		src = il.BinaryExpr{Op: il.BinIntSub, Wide: wide, L: inExpr(0), R: inExpr(1)}
	case il.OpIntMult:
		src = il.BinaryExpr{Op: il.BinIntMult, Wide: wide, L: inExpr(0), R: inExpr(1)}
	case il.OpIntDiv:
		src = il.BinaryExpr{Op: il.BinIntDiv, Wide: wide, L: inExpr(0), R: inExpr(1)}
	case il.OpIntSDiv:
		src = il.BinaryExpr{Op: il.BinIntSDiv, Wide: wide, L: inExpr(0), R: inExpr(1)}
	case il.OpIntRem:
		src = il.BinaryExpr{Op: il.BinIntRem, Wide: wide, L: inExpr(0), R: inExpr(1)}
	case il.OpIntSRem:
		src = il.BinaryExpr{Op: il.BinIntSRem, Wide: wide, L: inExpr(0), R: inExpr(1)}
	case il.OpIntAnd:
		src = il.BinaryExpr{Op: il.BinIntAnd, Wide: wide, L: inExpr(0), R: inExpr(1)}
	case il.OpIntOr:
		src = il.BinaryExpr{Op: il.BinIntOr, Wide: wide, L: inExpr(0), R: inExpr(1)}
	case il.OpIntXor:
		src = il.BinaryExpr{Op: il.BinIntXor, Wide: wide, L: inExpr(0), R: inExpr(1)}
	case il.OpIntLeft:
		src = il.BinaryExpr{Op: il.BinIntLeft, Wide: wide, L: inExpr(0), R: inExpr(1)}
	case il.OpIntRight:
		src = il.BinaryExpr{Op: il.BinIntRight, Wide: wide, L: inExpr(0), R: inExpr(1)}
	case il.OpIntSRight:
		src = il.BinaryExpr{Op: il.BinIntSRight, Wide: wide, L: inExpr(0), R: inExpr(1)}
	case il.OpBoolAnd:
		src = il.BinaryExpr{Op: il.BinBoolAnd, Wide: 1, L: inExpr(0), R: inExpr(1)}
	case il.OpBoolOr:
		src = il.BinaryExpr{Op: il.BinBoolOr, Wide: 1, L: inExpr(0), R: inExpr(1)}
	case il.OpBoolXor:
		src = il.BinaryExpr{Op: il.BinBoolXor, Wide: 1, L: inExpr(0), R: inExpr(1)}
	case il.OpFloatAdd:
		src = il.BinaryExpr{Op: il.BinFloatAdd, Wide: wide, L: inExpr(0), R: inExpr(1)}
	case il.OpFloatSub:
		src = il.BinaryExpr{Op: il.BinFloatSub, Wide: wide, L: inExpr(0), R: inExpr(1)}
	case il.OpFloatMult:
		src = il.BinaryExpr{Op: il.BinFloatMult, Wide: wide, L: inExpr(0), R: inExpr(1)}
	case il.OpFloatDiv:
		src = il.BinaryExpr{Op: il.BinFloatDiv, Wide: wide, L: inExpr(0), R: inExpr(1)}
	case il.OpIntEqual:
		src = il.RelExpr{Op: il.RelIntEqual, L: inExpr(0), R: inExpr(1)}
	case il.OpIntNotEqual:
		src = il.RelExpr{Op: il.RelIntNotEqual, L: inExpr(0), R: inExpr(1)}
	case il.OpIntLess:
		src = il.RelExpr{Op: il.RelIntLess, L: inExpr(0), R: inExpr(1)}
	case il.OpIntLessEqual:
		src = il.RelExpr{Op: il.RelIntLessEqual, L: inExpr(0), R: inExpr(1)}
	case il.OpIntSLess:
		src = il.RelExpr{Op: il.RelIntSLess, L: inExpr(0), R: inExpr(1)}
	case il.OpIntSLessEqual:
		src = il.RelExpr{Op: il.RelIntSLessEqual, L: inExpr(0), R: inExpr(1)}
	case il.OpFloatEqual:
		src = il.RelExpr{Op: il.RelFloatEqual, L: inExpr(0), R: inExpr(1)}
	case il.OpFloatNotEqual:
		src = il.RelExpr{Op: il.RelFloatNotEqual, L: inExpr(0), R: inExpr(1)}
	case il.OpFloatLess:
		src = il.RelExpr{Op: il.RelFloatLess, L: inExpr(0), R: inExpr(1)}
	case il.OpFloatLessEqual:
		src = il.RelExpr{Op: il.RelFloatLessEqual, L: inExpr(0), R: inExpr(1)}
	case il.OpIntCarry:
		src = il.RelExpr{Op: il.RelCarry, L: inExpr(0), R: inExpr(1)}
	case il.OpIntSCarry:
		src = il.RelExpr{Op: il.RelSCarry, L: inExpr(0), R: inExpr(1)}
	case il.OpIntSBorrow:
		src = il.RelExpr{Op: il.RelSBorrow, L: inExpr(0), R: inExpr(1)}
	case il.OpInt2Comp:
		src = il.UnaryExpr{Op: il.UnaryInt2Comp, Wide: wide, Arg: inExpr(0)}
	case il.OpIntNegate:
		src = il.UnaryExpr{Op: il.UnaryIntNegate, Wide: wide, Arg: inExpr(0)}
	case il.OpBoolNegate:
		src = il.UnaryExpr{Op: il.UnaryBoolNegate, Wide: 1, Arg: inExpr(0)}
	case il.OpFloatNeg:
		src = il.UnaryExpr{Op: il.UnaryFloatNeg, Wide: wide, Arg: inExpr(0)}
	case il.OpFloatAbs:
		src = il.UnaryExpr{Op: il.UnaryFloatAbs, Wide: wide, Arg: inExpr(0)}
	case il.OpFloatSqrt:
		src = il.UnaryExpr{Op: il.UnaryFloatSqrt, Wide: wide, Arg: inExpr(0)}
	case il.OpFloatCeil:
		src = il.UnaryExpr{Op: il.UnaryFloatCeil, Wide: wide, Arg: inExpr(0)}
	case il.OpFloatFloor:
		src = il.UnaryExpr{Op: il.UnaryFloatFloor, Wide: wide, Arg: inExpr(0)}
	case il.OpFloatRound:
		src = il.UnaryExpr{Op: il.UnaryFloatRound, Wide: wide, Arg: inExpr(0)}
	case il.OpFloatTrunc:
		src = il.CastExpr{Kind: il.CastFloatToInt, Wide: wide, Arg: inExpr(0)}
	case il.OpFloatNan:
		src = il.UnaryExpr{Op: il.UnaryFloatNan, Wide: 1, Arg: inExpr(0)}
	case il.OpFloatInt2Float:
		src = il.CastExpr{Kind: il.CastIntToFloat, Wide: wide, Arg: inExpr(0)}
	case il.OpFloatFloat2Float:
		src = il.CastExpr{Kind: il.CastFloatToFloat, Wide: wide, Arg: inExpr(0)}
	case il.OpIntZExt:
		src = il.CastExpr{Kind: il.CastZExt, Wide: wide, Arg: inExpr(0)}
	case il.OpIntSExt:
		src = il.CastExpr{Kind: il.CastSExt, Wide: wide, Arg: inExpr(0)}
	case il.OpSubpiece:
		shiftBytes := uint32(0)
		if len(ins) > 1 {
			shiftBytes = uint32(ins[1].Offset)
		}
		lo := shiftBytes * 8
		src = il.ExtractExpr{Arg: inExpr(0), Lo: lo, Hi: lo + wide}
	default:
		src = inExpr(0)
	}
	if out == nil {
		return il.IntrinsicStmt{Name: opcode.String(), Args: []il.Expr{src}}
	}
	return il.AssignStmt{Dst: il.VarExpr{Varnode: *out}, Src: src}
}
