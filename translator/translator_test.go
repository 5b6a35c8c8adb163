package translator

import (
	"testing"

	"github.com/lookbusy1344/sleigh-lift/il"
	"github.com/lookbusy1344/sleigh-lift/pattern"
	"github.com/lookbusy1344/sleigh-lift/sleighctx"
	"github.com/lookbusy1344/sleigh-lift/sleighsym"
	"github.com/lookbusy1344/sleigh-lift/space"
)

// buildTestProgram constructs a tiny one-byte fixed-width ISA with a
// single root subtable and two constructors selected on the top
// nibble: 0x1_ -> "nop" (COPY r0,r0), 0x2_ -> "halt" (no ops). This
// is a small enough scenario to hand-build without an XML fixture
// while still exercising a full decode-dispatch-lift-format pass.
func buildTestProgram() *sleighsym.Program {
	spaces := space.NewManager()
	constSp := space.NewSpace("const", 0, space.Constant, false, 8, 1)
	regSp := space.NewSpace("register", 1, space.Register, false, 4, 1)
	spaces.Add(constSp)
	spaces.Add(regSp)

	registers := space.NewRegisterTable(regSp)
	registers.Register("r0", 0, 4)

	prog := sleighsym.NewProgram("testarch", spaces, registers, sleighctx.NewDatabase(1))
	prog.AlignBytes = 1

	nop := &sleighsym.Constructor{
		Pattern:     pattern.Pattern{InstrMask: []byte{0xF0}, InstrValue: []byte{0x10}},
		MinLength:   1,
		PrintPieces: []sleighsym.PrintPiece{{Literal: "nop"}},
		Template: &sleighsym.SemanticTemplate{
			Ops: []sleighsym.OpTemplate{
				{
					RawOpcode: "COPY",
					Out:       &sleighsym.VarnodeTemplate{Kind: sleighsym.VTFixed, Fixed: space.Varnode{Space: regSp, Offset: 0, Size: 4}},
					In:        []sleighsym.VarnodeTemplate{{Kind: sleighsym.VTFixed, Fixed: space.Varnode{Space: regSp, Offset: 0, Size: 4}}},
				},
			},
		},
	}
	halt := &sleighsym.Constructor{
		Pattern:     pattern.Pattern{InstrMask: []byte{0xF0}, InstrValue: []byte{0x20}},
		MinLength:   1,
		PrintPieces: []sleighsym.PrintPiece{{Literal: "halt"}},
		Template:    &sleighsym.SemanticTemplate{},
	}
	nopIdx := prog.AddConstructor(nop)
	haltIdx := prog.AddConstructor(halt)

	decision := pattern.Leaf{Entries: []pattern.LeafEntry{
		{Pattern: nop.Pattern, ConstructorIndex: nopIdx},
		{Pattern: halt.Pattern, ConstructorIndex: haltIdx},
	}}
	root := &sleighsym.Subtable{Name: "instruction", Decision: decision}
	root.Constructors = []*sleighsym.Constructor{nop, halt}
	prog.RootSubtable = prog.AddSubtable(root)

	return prog
}

func newTestTranslator() *Translator {
	prog := buildTestProgram()
	return New(prog, "pc", ArchitectureDef{Processor: "test", Endian: "little", Bits: 32}, nil, 0x1000, 0xFFFF)
}

func TestDisassembleNop(t *testing.T) {
	tr := newTestTranslator()
	db := tr.Prog.Context.Clone()
	inst, err := tr.Disassemble(db, 0x100, []byte{0x15})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.Text != "nop" || inst.Len != 1 {
		t.Fatalf("got %+v", inst)
	}
}

func TestDisassembleHalt(t *testing.T) {
	tr := newTestTranslator()
	db := tr.Prog.Context.Clone()
	inst, err := tr.Disassemble(db, 0x200, []byte{0x2F})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.Text != "halt" {
		t.Fatalf("got %+v", inst)
	}
}

func TestDisassembleNoMatchingConstructor(t *testing.T) {
	tr := newTestTranslator()
	db := tr.Prog.Context.Clone()
	if _, err := tr.Disassemble(db, 0, []byte{0xFF}); err == nil {
		t.Fatal("expected decode error for an unmatched byte pattern")
	}
}

func TestLiftPCodeNop(t *testing.T) {
	tr := newTestTranslator()
	db := tr.Prog.Context.Clone()
	pc, err := tr.LiftPCode(db, 0x100, []byte{0x15})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pc.Ops) != 1 || pc.Ops[0].Opcode != il.OpCopy {
		t.Fatalf("got ops %+v", pc.Ops)
	}
}

func TestLiftPCodeHaltHasNoOps(t *testing.T) {
	tr := newTestTranslator()
	db := tr.Prog.Context.Clone()
	pc, err := tr.LiftPCode(db, 0x200, []byte{0x2F})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pc.Ops) != 0 {
		t.Fatalf("expected no ops, got %+v", pc.Ops)
	}
}

func TestDisassembleRejectsMisalignedAddress(t *testing.T) {
	prog := buildTestProgram()
	prog.AlignBytes = 2
	tr := New(prog, "pc", ArchitectureDef{Processor: "test", Bits: 32}, nil, 0x1000, 0xFFFF)
	db := tr.Prog.Context.Clone()
	if _, err := tr.Disassemble(db, 1, []byte{0x15}); err == nil {
		t.Fatal("expected alignment error")
	}
}

func TestClonedDatabasesAreIndependent(t *testing.T) {
	tr := newTestTranslator()
	a := tr.Prog.Context.Clone()
	b := tr.Prog.Context.Clone()
	a.SetContextWord(0, 0xAAAAAAAA, 0xFFFFFFFF)
	if b.GetContextBytes(0, 4) == a.GetContextBytes(0, 4) {
		t.Fatal("expected independently cloned databases")
	}
}
