package sleighsym

import (
	"github.com/lookbusy1344/sleigh-lift/sfloat"
	"github.com/lookbusy1344/sleigh-lift/sleighctx"
	"github.com/lookbusy1344/sleigh-lift/space"
)

// Program is the fully loaded specification for one architecture: its
// address spaces, register names, context database layout, flat
// symbol table, subtable list, and the root (instruction) subtable's
// id, cross referenced by plain integer id so it can be built
// bottom-up from XML without forward-reference plumbing (see the
// package doc).
type Program struct {
	Name string

	Spaces       *space.Manager
	Registers    *space.RegisterTable
	Context      *sleighctx.Database
	AlignBytes   uint32
	BigEndian    bool
	FloatFormats []sfloat.FloatFormat
	UniqueBase   uint64
	UniqueMask   uint64
	MaxDelay     int

	Symbols      []*Symbol
	symbolByName map[string]int

	Subtables    []*Subtable
	RootSubtable int
	Constructors []*Constructor
}

func NewProgram(name string, spaces *space.Manager, registers *space.RegisterTable, ctx *sleighctx.Database) *Program {
	return &Program{
		Name:         name,
		Spaces:       spaces,
		Registers:    registers,
		Context:      ctx,
		symbolByName: map[string]int{},
	}
}

// AddSymbol appends sym to the table under its own ID, indexing it by
// name for later lookup.
func (p *Program) AddSymbol(sym *Symbol) {
	p.Symbols = append(p.Symbols, sym)
	p.symbolByName[sym.Name] = sym.ID
}

func (p *Program) Symbol(id int) *Symbol {
	if id < 0 || id >= len(p.Symbols) {
		return nil
	}
	return p.Symbols[id]
}

func (p *Program) SymbolByName(name string) (*Symbol, bool) {
	id, ok := p.symbolByName[name]
	if !ok {
		return nil, false
	}
	return p.Symbol(id), true
}

// AddSubtable appends a subtable and returns its assigned index.
func (p *Program) AddSubtable(st *Subtable) int {
	st.ID = len(p.Subtables)
	p.Subtables = append(p.Subtables, st)
	return st.ID
}

// AddConstructor appends a constructor to the program's flat list
// (referenced by pattern.LeafEntry.ConstructorIndex) and returns its
// assigned index.
func (p *Program) AddConstructor(c *Constructor) int {
	c.ID = len(p.Constructors)
	p.Constructors = append(p.Constructors, c)
	return c.ID
}

func (p *Program) Constructor(idx int) *Constructor {
	if idx < 0 || idx >= len(p.Constructors) {
		return nil
	}
	return p.Constructors[idx]
}

// RootDecision returns the decision tree of the top-level instruction
// subtable, the entry point for decoding a whole instruction.
func (p *Program) RootDecision() (*Subtable, bool) {
	if p.RootSubtable < 0 || p.RootSubtable >= len(p.Subtables) {
		return nil, false
	}
	return p.Subtables[p.RootSubtable], true
}
