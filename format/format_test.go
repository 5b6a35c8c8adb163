package format

import (
	"testing"

	"github.com/lookbusy1344/sleigh-lift/bitvec"
	"github.com/lookbusy1344/sleigh-lift/sleighctx"
	"github.com/lookbusy1344/sleigh-lift/sleighsym"
	"github.com/lookbusy1344/sleigh-lift/space"
	"github.com/lookbusy1344/sleigh-lift/walker"
)

func newTestProgram() *sleighsym.Program {
	spaces := space.NewManager()
	regSpace := space.NewSpace("register", 0, space.Register, false, 4, 1)
	spaces.Add(regSpace)

	registers := space.NewRegisterTable(regSpace)
	registers.Register("r1", 4, 4)

	prog := sleighsym.NewProgram("test", spaces, registers, sleighctx.NewDatabase(1))

	regSym := &sleighsym.Symbol{ID: 0, Name: "r1", Kind: sleighsym.KindVarnode, Varnode: space.Varnode{Space: regSpace, Offset: 4, Size: 4}}
	prog.AddSymbol(regSym)

	return prog
}

func TestFormatLiteralAndRegisterOperand(t *testing.T) {
	prog := newTestProgram()

	c := &sleighsym.Constructor{
		PrintPieces: []sleighsym.PrintPiece{
			{Literal: "mov "},
			{IsOperand: true, OperandIndex: 0},
		},
		Operands: []sleighsym.OperandDef{{Index: 0, DefiningSymbol: 0}},
	}
	frame := walker.NewFrame(c, nil, 0)
	frame.SetOperandValue(0, &c.Operands[0], bitvec.Zero(32, false), 0, 4)

	got := Format(prog, frame)
	if got != "mov r1" {
		t.Fatalf("got %q, want %q", got, "mov r1")
	}
}

func TestFormatImmediateOperandHex(t *testing.T) {
	prog := newTestProgram()

	c := &sleighsym.Constructor{
		PrintPieces: []sleighsym.PrintPiece{
			{Literal: "#"},
			{IsOperand: true, OperandIndex: 0},
		},
		Operands: []sleighsym.OperandDef{{Index: 0, DefiningSymbol: -1}},
	}
	frame := walker.NewFrame(c, nil, 0)
	frame.SetOperandValue(0, &c.Operands[0], bitvec.FromUint64(0x2A, 32), 0, 4)

	got := Format(prog, frame)
	if got != "#0x2a" {
		t.Fatalf("got %q, want %q", got, "#0x2a")
	}
}

func TestFormatRecursesIntoSubtableOperand(t *testing.T) {
	prog := newTestProgram()

	inner := &sleighsym.Constructor{
		PrintPieces: []sleighsym.PrintPiece{{Literal: "r1"}},
	}
	innerFrame := walker.NewFrame(inner, nil, 0)

	outer := &sleighsym.Constructor{
		PrintPieces: []sleighsym.PrintPiece{
			{Literal: "ld "},
			{IsOperand: true, OperandIndex: 0},
		},
		Operands: []sleighsym.OperandDef{{Index: 0, DefiningSymbol: -1}},
	}
	outerFrame := walker.NewFrame(outer, nil, 0)
	outerFrame.SetOperandChild(0, innerFrame)

	got := Format(prog, outerFrame)
	if got != "ld r1" {
		t.Fatalf("got %q, want %q", got, "ld r1")
	}
}

func TestFormatUnresolvedOperandIsQuestionMark(t *testing.T) {
	prog := newTestProgram()
	c := &sleighsym.Constructor{
		PrintPieces: []sleighsym.PrintPiece{{IsOperand: true, OperandIndex: 5}},
	}
	frame := walker.NewFrame(c, nil, 0)
	if got := Format(prog, frame); got != "?" {
		t.Fatalf("got %q, want ?", got)
	}
}
