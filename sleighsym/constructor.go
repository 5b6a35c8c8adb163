package sleighsym

import "github.com/lookbusy1344/sleigh-lift/pattern"

// PrintPiece is one element of a constructor's immutable print
// sequence: either a literal string, or a reference to one of the
// constructor's operands (which recurses into that operand's own
// print pieces if it is a subtable).
type PrintPiece struct {
	Literal      string
	IsOperand    bool
	OperandIndex int
}

// ContextOp is one context-operator template entry, applied in
// declaration order while resolving a constructor: compute Value,
// then either mutate the in-memory context word immediately
// (Flow=false semantics applied at the current instruction) or
// schedule a commit at the resolved address (AddressExpr, defaulting
// to the current instruction's start) when Flow is true.
type ContextOp struct {
	WordIndex   int
	Mask        uint32
	Value       PatternExpression
	Flow        bool
	AddressExpr PatternExpression // nil => current instruction start
}

// Constructor is one production (alternative) within a subtable: a
// pattern selecting it, its operand list, print pieces, context
// operators, and semantic template.
type Constructor struct {
	ID             int
	SubtableID     int
	Pattern        pattern.Pattern
	Operands       []OperandDef
	PrintPieces    []PrintPiece
	ContextOps     []ContextOp
	Template       *SemanticTemplate
	MinLength      uint32
	DelaySlotCount int
}

// Subtable is a non-terminal in the instruction grammar: an ordered
// set of constructors (alternatives), selected via the attached
// decision tree.
type Subtable struct {
	ID           int
	Name         string
	Constructors []*Constructor
	Decision     pattern.DecisionNode
}
