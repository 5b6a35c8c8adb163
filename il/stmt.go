package il

import (
	"fmt"

	"github.com/lookbusy1344/sleigh-lift/space"
)

// BranchTarget is either a Location (possibly an intra-instruction
// sub-position, for labels that target a point within the same
// instruction's IR) or a Computed expression (indirect branch/call).
type BranchTarget interface {
	branchTargetNode()
	String() string
}

type Location struct {
	Address     uint64
	SubPosition uint32 // ordinal position within the instruction's IR, 0 for "the instruction itself"
}

func (Location) branchTargetNode() {}
func (l Location) String() string {
	if l.SubPosition == 0 {
		return fmt.Sprintf("0x%x", l.Address)
	}
	return fmt.Sprintf("0x%x:%d", l.Address, l.SubPosition)
}

// AbsoluteFrom resolves a relative label offset against a base
// position within the same instruction: final = base ± |relative|.
func AbsoluteFrom(base Location, relative int32) Location {
	if relative >= 0 {
		base.SubPosition += uint32(relative)
	} else {
		base.SubPosition -= uint32(-relative)
	}
	return base
}

type Computed struct{ Expr Expr }

func (Computed) branchTargetNode() {}
func (c Computed) String() string  { return c.Expr.String() }

// Stmt is the E-code statement form.
type Stmt interface {
	stmtNode()
	String() string
}

type AssignStmt struct {
	Dst VarExpr
	Src Expr
}

func (AssignStmt) stmtNode() {}
func (s AssignStmt) String() string { return fmt.Sprintf("%s = %s", s.Dst, s.Src) }

type StoreStmt struct {
	Addr  Expr
	Val   Expr
	Wide  uint32
	Space *space.Space
}

func (StoreStmt) stmtNode() {}
func (s StoreStmt) String() string {
	name := "?"
	if s.Space != nil {
		name = s.Space.Name
	}
	return fmt.Sprintf("%s[%s]:%d = %s", name, s.Addr, s.Wide, s.Val)
}

type BranchStmt struct{ Target BranchTarget }

func (BranchStmt) stmtNode() {}
func (s BranchStmt) String() string { return fmt.Sprintf("goto %s", s.Target) }

type CBranchStmt struct {
	Cond   Expr
	Target BranchTarget
}

func (CBranchStmt) stmtNode() {}
func (s CBranchStmt) String() string { return fmt.Sprintf("if (%s) goto %s", s.Cond, s.Target) }

type CallStmt struct{ Target BranchTarget }

func (CallStmt) stmtNode() {}
func (s CallStmt) String() string { return fmt.Sprintf("call %s", s.Target) }

type ReturnStmt struct{ Target BranchTarget }

func (ReturnStmt) stmtNode() {}
func (s ReturnStmt) String() string { return fmt.Sprintf("return %s", s.Target) }

type SkipStmt struct{}

func (SkipStmt) stmtNode() {}
func (SkipStmt) String() string { return "skip" }

type IntrinsicStmt struct {
	Name string
	Args []Expr
}

func (IntrinsicStmt) stmtNode() {}
func (s IntrinsicStmt) String() string { return fmt.Sprintf("%s(...)", s.Name) }
