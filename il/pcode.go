package il

import (
	"fmt"
	"strings"

	"github.com/lookbusy1344/sleigh-lift/space"
)

// PCodeOp is a single low-level three-address operation: an opcode,
// an optional output varnode, and its input varnodes. LOAD/STORE
// consult the space id encoded in their first input.
type PCodeOp struct {
	Opcode Opcode
	Out    *space.Varnode
	In     []space.Varnode
}

// Display uses the conventional p-code notation: "out = OP in0, in1,
// ..." or "OP in0, in1, ..." when there is no output.
func (op PCodeOp) String() string {
	ins := make([]string, len(op.In))
	for i, v := range op.In {
		ins[i] = v.String()
	}
	rhs := fmt.Sprintf("%s %s", op.Opcode, strings.Join(ins, ", "))
	if op.Out != nil {
		return fmt.Sprintf("%s = %s", op.Out, rhs)
	}
	return rhs
}

// PCode is the low-level IR result of lifting one instruction: its
// address, the flat op sequence (with delay-slot ops already spliced
// in per the DELAY_SLOT rule), the delay-slot count, and the
// instruction's byte length.
type PCode struct {
	Addr        uint64
	Ops         []PCodeOp
	DelaySlots  int
	Len         int
}

func (p PCode) Address() uint64       { return p.Addr }
func (p PCode) Operations() []PCodeOp { return p.Ops }
func (p PCode) NumDelaySlots() int    { return p.DelaySlots }
func (p PCode) Length() int           { return p.Len }

// ECode is the higher-level, typed statement-sequence result of
// lifting one instruction.
type ECode struct {
	Addr       uint64
	Stmts      []Stmt
	DelaySlots int
	Len        int
}

func (e ECode) Address() uint64    { return e.Addr }
func (e ECode) Operations() []Stmt { return e.Stmts }
func (e ECode) NumDelaySlots() int { return e.DelaySlots }
func (e ECode) Length() int        { return e.Len }
