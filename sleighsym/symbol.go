package sleighsym

import (
	"github.com/lookbusy1344/sleigh-lift/sleighctx"
	"github.com/lookbusy1344/sleigh-lift/space"
)

// Kind is the exact data-contract tag carried by a symbol, matching
// SLEIGH's own symbol tag names (userop, epsilon, value_sym, ...).
type Kind int

const (
	KindUserOp Kind = iota
	KindEpsilon
	KindValue
	KindValueMap
	KindName
	KindVarnode
	KindContext
	KindVarnodeList
	KindOperand
	KindStart
	KindEnd
	KindSubtable
	KindFlowDest
	KindFlowRef
)

// UnfilledSentinel marks an unpopulated value/name table slot: value
// tables may carry entries like 0xbadbeef meaning "no value here", and
// indexing into that slot at decode time is an error rather than a
// silently-wrong disassembly.
const UnfilledSentinel int64 = 0xbadbeef

// Symbol is one entry of the symbol table. Only the fields relevant
// to Kind are populated; this mirrors SLEIGH's own symbol_table, which
// stores a flat list of symbol bodies discriminated by kind tag rather
// than one Go type per kind, to keep the DAG's cross-references
// (operand -> defining symbol, subtable -> constructor) simple
// integer ids into Program.Symbols.
type Symbol struct {
	ID    int
	Scope int
	Name  string
	Kind  Kind

	// KindValue / KindContext: the field this symbol's value comes from.
	TokenField   *TokenFieldExpr
	ContextField *ContextFieldExpr

	// KindValueMap: table indexed by the underlying value symbol's
	// pattern_value, holding the mapped scalar (or UnfilledSentinel).
	ValueMapTable []int64
	ValueMapOf    int // id of the underlying KindValue symbol

	// KindName: table indexed by pattern_value, holding display text.
	NameTable []string
	NameOf    int

	// KindVarnode: a single fixed varnode.
	Varnode space.Varnode

	// KindVarnodeList: table indexed by pattern_value.
	VarnodeList []space.Varnode
	VarnodeOf   int

	// KindContext: the context database variable this symbol reads/writes.
	ContextVar sleighctx.Variable

	// KindOperand: this subtable's operand_sym definition.
	Operand *OperandDef

	// KindSubtable: the constructors and decision tree for this subtable.
	Subtable *Subtable

	// KindUserOp: index into the table of architecture-defined pcodeops.
	UserOpIndex int
}

// IsUnfilled reports whether idx indexes an unfilled ValueMap/Name
// table slot.
func (s *Symbol) IsUnfilled(idx int) bool {
	switch s.Kind {
	case KindValueMap:
		return idx < 0 || idx >= len(s.ValueMapTable) || s.ValueMapTable[idx] == UnfilledSentinel
	case KindName:
		return idx < 0 || idx >= len(s.NameTable)
	case KindVarnodeList:
		return idx < 0 || idx >= len(s.VarnodeList) || s.VarnodeList[idx].Space == nil
	default:
		return false
	}
}
