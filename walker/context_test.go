package walker

import (
	"testing"

	"github.com/lookbusy1344/sleigh-lift/bitvec"
	"github.com/lookbusy1344/sleigh-lift/sleighsym"
)

func TestCalculateLengthUsesMinWhenNoOperands(t *testing.T) {
	f := NewFrame(&sleighsym.Constructor{}, nil, 0)
	if got := f.CalculateLength(4, 0); got != 4 {
		t.Fatalf("got %d, want 4", got)
	}
}

func TestCalculateLengthExtendsPastValueOperand(t *testing.T) {
	f := NewFrame(&sleighsym.Constructor{}, nil, 0)
	def := &sleighsym.OperandDef{Index: 0}
	f.SetOperandValue(0, def, bitvec.Zero(32, false), 2, 2) // occupies bytes [2,4)
	if got := f.CalculateLength(2, 1); got != 4 {
		t.Fatalf("got %d, want 4", got)
	}
}

func TestCalculateLengthExtendsPastChildFrame(t *testing.T) {
	parent := NewFrame(&sleighsym.Constructor{}, nil, 0)
	child := NewFrame(&sleighsym.Constructor{}, parent, 1)
	child.SetCurrentLength(3) // child spans bytes [1,4)
	parent.SetOperandChild(0, child)
	if got := parent.CalculateLength(2, 1); got != 4 {
		t.Fatalf("got %d, want 4", got)
	}
}

func TestNextUniqueOffsetAdvancesAndMasks(t *testing.T) {
	pc := NewParserContext(nil, 0, nil, 0x100, 0xFFF)
	a := pc.NextUniqueOffset()
	b := pc.NextUniqueOffset()
	if a != 0x100 {
		t.Fatalf("first offset = 0x%x, want 0x100", a)
	}
	if b != 0x108 {
		t.Fatalf("second offset = 0x%x, want 0x108", b)
	}
}

func TestSetRootAndRoot(t *testing.T) {
	pc := NewParserContext(nil, 0, nil, 0, 0xFFFFFFFF)
	if pc.Root() != nil {
		t.Fatal("expected nil root before SetRoot")
	}
	f := NewFrame(&sleighsym.Constructor{}, nil, 0)
	pc.SetRoot(f)
	if pc.Root() != f || pc.BaseState() != f {
		t.Fatal("expected Root()/BaseState() to return the installed frame")
	}
}
