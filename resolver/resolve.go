package resolver

import (
	"github.com/lookbusy1344/sleigh-lift/lifterror"
	"github.com/lookbusy1344/sleigh-lift/pattern"
	"github.com/lookbusy1344/sleigh-lift/sleighsym"
	"github.com/lookbusy1344/sleigh-lift/walker"
)

// Resolve runs the top-level constructor resolution algorithm
// starting at the program's root (instruction) subtable, then
// performs the second, handle-resolving pass.
func Resolve(prog *sleighsym.Program, pc *walker.ParserContext) (*walker.ConstructorState, error) {
	root, ok := prog.RootDecision()
	if !ok {
		return nil, &lifterror.DisassemblyError{Kind: lifterror.InvalidSymbol, Address: pc.Address, Detail: "program declares no root subtable"}
	}
	cache := make(exprCache)
	frame, err := resolveSubtable(prog, pc, root, nil, 0, cache)
	if err != nil {
		return nil, err
	}
	pc.SetRoot(frame)
	ResolveHandles(prog, pc, frame)
	return frame, nil
}

// resolveSubtable selects a constructor for subtable st at offset,
// allocates its frame (child of parent, or the root when parent is
// nil), applies its context operators, resolves every operand
// recursively, and fixes the frame's length.
func resolveSubtable(prog *sleighsym.Program, pc *walker.ParserContext, st *sleighsym.Subtable, parent *walker.ConstructorState, offset int, cache exprCache) (*walker.ConstructorState, error) {
	idx, ok := pattern.Resolve(st.Decision, pc.Bytes, offset, pc.Ctx.Words())
	if !ok {
		return nil, &lifterror.DisassemblyError{Kind: lifterror.InvalidPattern, Address: pc.Address, Detail: "no constructor pattern matched in subtable " + st.Name}
	}
	c := prog.Constructor(idx)
	if c == nil {
		return nil, &lifterror.DisassemblyError{Kind: lifterror.InvalidConstructor, Address: pc.Address, Detail: "decision tree selected an unknown constructor"}
	}

	frame := walker.NewFrame(c, parent, offset)

	scope := evalScope{offset: offset, constructor: c, cache: cache}
	applyContext(pc, scope, c)

	for i := range c.Operands {
		def := c.Operands[i]
		opOffset := operandOffset(offset, &def)
		if def.DefiningSymbol >= 0 {
			if sym := prog.Symbol(def.DefiningSymbol); sym != nil && sym.Kind == sleighsym.KindSubtable && sym.Subtable != nil {
				child, err := resolveSubtable(prog, pc, sym.Subtable, frame, opOffset, cache)
				if err != nil {
					return nil, err
				}
				frame.SetOperandChild(i, child)
				continue
			}
		}
		val := evalExpr(pc, evalScope{offset: opOffset, constructor: c, cache: cache}, def.DefiningExpr)
		if sym := prog.Symbol(def.DefiningSymbol); sym != nil {
			tableIdx := int(val.Unsigned().Int64())
			if sym.IsUnfilled(tableIdx) {
				return nil, &lifterror.DisassemblyError{Kind: lifterror.InvalidSymbol, Address: pc.Address, Detail: "operand indexes an unfilled table slot"}
			}
		}
		frame.SetOperandValue(i, &c.Operands[i], val, opOffset, def.MinLength)
	}

	frame.CalculateLength(c.MinLength, len(c.Operands))
	if c.DelaySlotCount > 0 {
		frame.DelaySlots = c.DelaySlotCount
	}
	return frame, nil
}

func applyContext(pc *walker.ParserContext, scope evalScope, c *sleighsym.Constructor) {
	for _, cop := range c.ContextOps {
		val := evalExpr(pc, scope, cop.Value)
		addr := pc.Address
		if cop.AddressExpr != nil {
			addr = evalExpr(pc, scope, cop.AddressExpr).Unsigned().Uint64()
		}
		v := uint32(val.Unsigned().Uint64())
		pc.Ctx.ScheduleAt(addr, cop.WordIndex, cop.Mask, v, cop.Flow)
	}
}
