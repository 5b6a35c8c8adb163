// Package translator implements the stateless-after-construction
// facade: the single entry point a consumer uses to disassemble, lift
// P-code, or lift E-code for one instruction at a time, wiring
// together the pattern resolver, handle resolver, template builder,
// and formatter over a loaded specification.
package translator

import (
	"github.com/lookbusy1344/sleigh-lift/builder"
	"github.com/lookbusy1344/sleigh-lift/format"
	"github.com/lookbusy1344/sleigh-lift/il"
	"github.com/lookbusy1344/sleigh-lift/lifterror"
	"github.com/lookbusy1344/sleigh-lift/resolver"
	"github.com/lookbusy1344/sleigh-lift/sleighctx"
	"github.com/lookbusy1344/sleigh-lift/sleighsym"
	"github.com/lookbusy1344/sleigh-lift/walker"
)

// ArchitectureDef names the processor family and variant a loaded
// specification targets, carried alongside the symbol table so a
// consumer can pick the right Translator without re-parsing the XML.
type ArchitectureDef struct {
	Processor string
	Endian    string
	Bits      int
	Variant   string
}

// CompilerConvention names one calling-convention profile (parameter
// passing, stack cleanup, return-value registers) a target compiler
// may use; translator consumers select one by name when they need
// ABI-aware analysis. The core decode pipeline does not consult it.
type CompilerConvention struct {
	Name          string
	StackPointer  string
	ReturnStorage []string
}

// Translator is the immutable, loaded view of one architecture: its
// symbol table, the program-counter register's canonical name, its
// ArchitectureDef, and the named compiler conventions available for
// it. It is safe to share across goroutines; only the ContextDatabase
// passed to each call carries per-decode mutable state.
type Translator struct {
	Prog                *sleighsym.Program
	ProgramCounter      string
	Arch                ArchitectureDef
	CompilerConventions map[string]CompilerConvention

	uniqueBase uint64
	uniqueMask uint64
}

func New(prog *sleighsym.Program, pcRegister string, arch ArchitectureDef, conventions map[string]CompilerConvention, uniqueBase, uniqueMask uint64) *Translator {
	return &Translator{
		Prog:                prog,
		ProgramCounter:      pcRegister,
		Arch:                arch,
		CompilerConventions: conventions,
		uniqueBase:          uniqueBase,
		uniqueMask:          uniqueMask,
	}
}

// Instruction is the result of Disassemble: the instruction's address,
// its rendered text, byte length, and delay-slot count.
type Instruction struct {
	Addr       uint64
	Text       string
	Len        int
	DelaySlots int
}

func (i Instruction) Address() uint64    { return i.Addr }
func (i Instruction) Length() int        { return i.Len }
func (i Instruction) NumDelaySlots() int { return i.DelaySlots }

func (t *Translator) checkAlignment(addr uint64) error {
	if t.Prog.AlignBytes > 1 && addr%uint64(t.Prog.AlignBytes) != 0 {
		return &lifterror.DisassemblyError{Kind: lifterror.IncorrectAlignment, Address: addr, Detail: "address is not instruction-aligned"}
	}
	return nil
}

// resolve performs one instruction's constructor and handle
// resolution against a fresh scratch view of db, returning the
// scratch (still open — caller must Publish or Discard) and the
// resolved frame.
func (t *Translator) resolve(db *sleighctx.Database, addr uint64, bytes []byte) (*sleighctx.Scratch, *walker.ParserContext, *walker.ConstructorState, error) {
	if err := t.checkAlignment(addr); err != nil {
		return nil, nil, nil, err
	}
	scratch := db.BeginDecode(addr)
	pc := walker.NewParserContext(bytes, addr, scratch, t.uniqueBase, t.uniqueMask)
	frame, err := resolver.Resolve(t.Prog, pc)
	if err != nil {
		scratch.Discard()
		return nil, nil, nil, err
	}
	return scratch, pc, frame, nil
}

// Disassemble decodes the instruction at addr, returning its
// mnemonic/operand text.
func (t *Translator) Disassemble(db *sleighctx.Database, addr uint64, bytes []byte) (Instruction, error) {
	scratch, _, frame, err := t.resolve(db, addr, bytes)
	if err != nil {
		return Instruction{}, err
	}
	text := format.Format(t.Prog, frame)
	scratch.Publish()
	return Instruction{Addr: addr, Text: text, Len: frame.Length, DelaySlots: frame.DelaySlots}, nil
}

// LiftPCode decodes the instruction at addr and lowers it to P-code,
// splicing in any delay-slot instructions' ops inline.
func (t *Translator) LiftPCode(db *sleighctx.Database, addr uint64, bytes []byte) (il.PCode, error) {
	scratch, pc, frame, err := t.resolve(db, addr, bytes)
	if err != nil {
		return il.PCode{}, err
	}
	liftDS := func(dsAddr uint64) ([]il.PCodeOp, int, error) {
		offset := int(dsAddr - addr)
		if offset < 0 || offset > len(bytes) {
			offset = frame.Length
		}
		result, err := t.LiftPCode(db, dsAddr, bytes[offset:])
		if err != nil {
			return nil, 0, err
		}
		return result.Ops, result.Len, nil
	}
	ops, err := builder.BuildPCode(t.Prog, pc, frame, addr, frame.Length, liftDS)
	if err != nil {
		scratch.Discard()
		return il.PCode{}, err
	}
	scratch.Publish()
	return il.PCode{Addr: addr, Ops: ops, DelaySlots: frame.DelaySlots, Len: frame.Length}, nil
}

// LiftECode decodes the instruction at addr and lowers it to E-code,
// splicing in any delay-slot instructions' statements inline.
func (t *Translator) LiftECode(db *sleighctx.Database, addr uint64, bytes []byte) (il.ECode, error) {
	scratch, pc, frame, err := t.resolve(db, addr, bytes)
	if err != nil {
		return il.ECode{}, err
	}
	liftDS := func(dsAddr uint64) ([]il.Stmt, int, error) {
		offset := int(dsAddr - addr)
		if offset < 0 || offset > len(bytes) {
			offset = frame.Length
		}
		result, err := t.LiftECode(db, dsAddr, bytes[offset:])
		if err != nil {
			return nil, 0, err
		}
		return result.Stmts, result.Len, nil
	}
	stmts, err := builder.BuildECode(t.Prog, pc, frame, addr, frame.Length, liftDS)
	if err != nil {
		scratch.Discard()
		return il.ECode{}, err
	}
	scratch.Publish()
	return il.ECode{Addr: addr, Stmts: stmts, DelaySlots: frame.DelaySlots, Len: frame.Length}, nil
}
