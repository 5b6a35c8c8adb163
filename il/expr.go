package il

import (
	"fmt"

	"github.com/lookbusy1344/sleigh-lift/bitvec"
	"github.com/lookbusy1344/sleigh-lift/space"
)

// Expr is the enriched, typed E-code expression form: a recursive sum
// of constants, variables, unary/binary/relational operators, casts,
// loads, bit extraction, concatenation, and intrinsics. Go has no sum
// types, so Expr is an interface with a private marker method
// implemented by each concrete node, the same closed-variant-via-
// unexported-method idiom go/ast uses for its Expr/Stmt/Decl
// interfaces.
type Expr interface {
	Bits() uint32
	exprNode()
	String() string
}

// ValExpr is a literal bit-vector constant.
type ValExpr struct{ Value bitvec.BitVec }

func (e ValExpr) Bits() uint32 { return e.Value.Bits() }
func (ValExpr) exprNode()      {}
func (e ValExpr) String() string { return e.Value.String() }

// VarExpr names a varnode-backed value. Generation distinguishes
// successive SSA-like writes to the same unique-space temporary
// within one instruction's IR, where that matters to a consumer;
// zero when unused.
type VarExpr struct {
	Varnode    space.Varnode
	Generation uint32
}

func (e VarExpr) Bits() uint32 { return e.Varnode.Size * 8 }
func (VarExpr) exprNode()      {}
func (e VarExpr) String() string { return e.Varnode.String() }

type UnaryOp int

const (
	UnaryIntNegate UnaryOp = iota // bitwise not
	UnaryInt2Comp                 // arithmetic negation
	UnaryBoolNegate
	UnaryFloatNeg
	UnaryFloatAbs
	UnaryFloatSqrt
	UnaryFloatCeil
	UnaryFloatFloor
	UnaryFloatRound
	UnaryFloatTrunc
	UnaryFloatNan
	UnaryPopcount
)

type UnaryExpr struct {
	Op   UnaryOp
	Wide uint32
	Arg  Expr
}

func (e UnaryExpr) Bits() uint32 { return e.Wide }
func (UnaryExpr) exprNode()      {}
func (e UnaryExpr) String() string { return fmt.Sprintf("%v(%s)", e.Op, e.Arg) }

type BinaryOp int

const (
	BinIntAdd BinaryOp = iota
	BinIntSub
	BinIntMult
	BinIntDiv
	BinIntSDiv
	BinIntRem
	BinIntSRem
	BinIntAnd
	BinIntOr
	BinIntXor
	BinIntLeft
	BinIntRight
	BinIntSRight
	BinBoolAnd
	BinBoolOr
	BinBoolXor
	BinFloatAdd
	BinFloatSub
	BinFloatMult
	BinFloatDiv
)

type BinaryExpr struct {
	Op   BinaryOp
	Wide uint32
	L, R Expr
}

func (e BinaryExpr) Bits() uint32 { return e.Wide }
func (BinaryExpr) exprNode()      {}
func (e BinaryExpr) String() string { return fmt.Sprintf("(%s %v %s)", e.L, e.Op, e.R) }

// RelOp enumerates the relational operators, all of which yield a
// single-bit boolean result.
type RelOp int

const (
	RelIntEqual RelOp = iota
	RelIntNotEqual
	RelIntLess
	RelIntLessEqual
	RelIntSLess
	RelIntSLessEqual
	RelFloatEqual
	RelFloatNotEqual
	RelFloatLess
	RelFloatLessEqual
	RelCarry
	RelSCarry
	RelSBorrow
)

type RelExpr struct {
	Op   RelOp
	L, R Expr
}

func (RelExpr) Bits() uint32 { return 1 }
func (RelExpr) exprNode()    {}
func (e RelExpr) String() string { return fmt.Sprintf("(%s %v %s)", e.L, e.Op, e.R) }

// CastKind enumerates the conversions a CAST op-template can request:
// bool, signed/unsigned reinterpretation, high/low truncation, and
// int<->float conversion.
type CastKind int

const (
	CastBool CastKind = iota
	CastSigned
	CastUnsigned
	CastTruncHigh
	CastTruncLow
	CastZExt
	CastSExt
	CastIntToFloat
	CastFloatToFloat
	CastFloatToInt
)

type CastExpr struct {
	Kind CastKind
	Wide uint32
	Arg  Expr
}

func (e CastExpr) Bits() uint32 { return e.Wide }
func (CastExpr) exprNode()      {}
func (e CastExpr) String() string { return fmt.Sprintf("cast<%v,%d>(%s)", e.Kind, e.Wide, e.Arg) }

// LoadExpr reads Bits bits from Space at the address Addr evaluates to.
type LoadExpr struct {
	Space *space.Space
	Addr  Expr
	Wide  uint32
}

func (e LoadExpr) Bits() uint32 { return e.Wide }
func (LoadExpr) exprNode()      {}
func (e LoadExpr) String() string {
	name := "?"
	if e.Space != nil {
		name = e.Space.Name
	}
	return fmt.Sprintf("%s[%s]:%d", name, e.Addr, e.Wide)
}

// ExtractExpr extracts the half-open bit range [Lo, Hi) of Arg.
type ExtractExpr struct {
	Arg    Expr
	Lo, Hi uint32
}

func (e ExtractExpr) Bits() uint32 { return e.Hi - e.Lo }
func (ExtractExpr) exprNode()      {}
func (e ExtractExpr) String() string { return fmt.Sprintf("%s[%d..%d)", e.Arg, e.Lo, e.Hi) }

// IntrinsicExpr is a named, architecture-defined operation (a SLEIGH
// "userop" used in expression position) taking zero or more operands.
type IntrinsicExpr struct {
	Name string
	Args []Expr
	Wide uint32
}

func (e IntrinsicExpr) Bits() uint32 { return e.Wide }
func (IntrinsicExpr) exprNode()      {}
func (e IntrinsicExpr) String() string { return fmt.Sprintf("%s(...)", e.Name) }
