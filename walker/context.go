// Package walker implements the ConstructorState pool: a
// per-instruction frame tree the resolver builds while selecting
// constructors and resolving operands, fixing each frame's length
// once its operands are known, then walked a second time to resolve
// every operand's handle.
//
// The reference description frames this as a cursor stack with
// explicit push_operand/pop_operand navigation, reflecting an
// implementation that avoids call-stack recursion. Go recursion
// already tracks "the current frame" as an ordinary call argument, so
// ConstructorState exposes its frame tree as plain pointers and the
// operations below (Offset, SetCurrentLength, CalculateLength,
// ApplyCommits) take the frame explicitly instead of an implicit
// cursor; behavior is identical.
package walker

import (
	"github.com/lookbusy1344/sleigh-lift/bitvec"
	"github.com/lookbusy1344/sleigh-lift/sleighctx"
	"github.com/lookbusy1344/sleigh-lift/sleighsym"
	"github.com/lookbusy1344/sleigh-lift/space"
)

// OperandHandle is the resolved storage descriptor for one operand:
// enough to name either a concrete varnode (Space/Offset/Size, with
// OffsetSpace nil) or a dynamically-addressed one, where the offset
// itself lives at OffsetSpace/OffsetOffset/OffsetSize and TempSpace/
// TempOffset name a scratch unique-space slot used to hold the
// computed address.
type OperandHandle struct {
	Space  *space.Space
	Offset uint64
	Size   uint32

	OffsetSpace  *space.Space
	OffsetOffset uint64
	OffsetSize   uint32

	TempSpace  *space.Space
	TempOffset uint64
}

// Varnode renders a statically-addressed handle as a plain varnode.
func (h OperandHandle) Varnode() space.Varnode {
	return space.Varnode{Space: h.Space, Offset: h.Offset, Size: h.Size}
}

func (h OperandHandle) IsDynamic() bool { return h.OffsetSpace != nil }

// OperandFrame is one resolved operand of a ConstructorState: either a
// recursive Child frame (the operand names a subtable), or a plain
// resolved Value (a pattern expression, possibly table-mapped), plus
// its eventual Handle filled in during the second pass.
type OperandFrame struct {
	Def       *sleighsym.OperandDef
	Child     *ConstructorState
	Value     bitvec.BitVec
	Offset    int
	MinLength uint32
	Handle    OperandHandle
}

// ConstructorState is one resolved production in the constructor
// tree: the constructor it selected, the byte offset at which it was
// resolved, its fixed length and delay-slot count, its operand frames
// in order, and (filled by the second pass) the handle a parent
// constructor inherits when this node is used as an operand.
type ConstructorState struct {
	Constructor *sleighsym.Constructor
	Parent      *ConstructorState
	Offset      int
	Length      int
	DelaySlots  int
	Operands    []*OperandFrame
	Handle      OperandHandle
}

// NewFrame allocates a ConstructorState for constructor c resolved at
// the given byte offset from the instruction start, linking it to
// parent (nil for the root).
func NewFrame(c *sleighsym.Constructor, parent *ConstructorState, offset int) *ConstructorState {
	return &ConstructorState{Constructor: c, Parent: parent, Offset: offset}
}

// SetOperandChild records a subtable operand's resolved child frame at
// localIndex.
func (f *ConstructorState) SetOperandChild(localIndex int, child *ConstructorState) {
	for len(f.Operands) <= localIndex {
		f.Operands = append(f.Operands, nil)
	}
	f.Operands[localIndex] = &OperandFrame{Child: child}
}

// SetOperandValue records a non-subtable operand's resolved value at
// localIndex.
func (f *ConstructorState) SetOperandValue(localIndex int, def *sleighsym.OperandDef, v bitvec.BitVec, offset int, minLength uint32) {
	for len(f.Operands) <= localIndex {
		f.Operands = append(f.Operands, nil)
	}
	f.Operands[localIndex] = &OperandFrame{Def: def, Value: v, Offset: offset, MinLength: minLength}
}

// SetCurrentLength directly sets f's length.
func (f *ConstructorState) SetCurrentLength(n int) { f.Length = n }

// CalculateLength fixes f's length as max(min, last_operand_end),
// where last_operand_end is the highest (offset+length) reached by
// any of the first operandCount operands.
func (f *ConstructorState) CalculateLength(min uint32, operandCount int) int {
	end := int(min)
	for i := 0; i < operandCount && i < len(f.Operands); i++ {
		op := f.Operands[i]
		if op == nil {
			continue
		}
		var e int
		if op.Child != nil {
			e = op.Child.Offset - f.Offset + op.Child.Length
		} else {
			e = op.Offset - f.Offset + int(op.MinLength)
		}
		if e > end {
			end = e
		}
	}
	f.Length = end
	return end
}

// ParserContext is the per-instruction resolution state: the raw
// bytes and address being decoded, the scratch context view, the
// unique-space temporary counter, and the resolved frame tree's root.
type ParserContext struct {
	Bytes   []byte
	Address uint64

	Ctx *sleighctx.Scratch

	uniqueBase    uint64
	uniqueMask    uint64
	uniqueCounter uint64

	root *ConstructorState
}

func NewParserContext(bytes []byte, address uint64, ctx *sleighctx.Scratch, uniqueBase, uniqueMask uint64) *ParserContext {
	return &ParserContext{
		Bytes:      bytes,
		Address:    address,
		Ctx:        ctx,
		uniqueBase: uniqueBase,
		uniqueMask: uniqueMask,
	}
}

// SetRoot installs the resolved root frame.
func (pc *ParserContext) SetRoot(f *ConstructorState) { pc.root = f }

// BaseState returns the root frame, the starting point for the
// second, handle-resolving pass.
func (pc *ParserContext) BaseState() *ConstructorState { return pc.root }

// ApplyCommits applies pending context commits accumulated during
// resolution. sleighctx.Scratch.Commit already mutates its working
// words eagerly as each context operator runs, so by the time the
// second pass reaches base state every commit is already visible;
// this method exists for parity with the resolver's named operation
// and is safe to call unconditionally.
func (pc *ParserContext) ApplyCommits() {}

// NextUniqueOffset returns the next unique-space temporary offset,
// advancing the per-instruction counter and masking it to uniqueMask.
func (pc *ParserContext) NextUniqueOffset() uint64 {
	off := (pc.uniqueBase + pc.uniqueCounter) & pc.uniqueMask
	pc.uniqueCounter += 8
	return off
}

func (pc *ParserContext) Root() *ConstructorState { return pc.root }
