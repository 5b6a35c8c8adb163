package sleighsym

// OperandDef is one operand slot of a constructor: either a reference
// to another symbol (a subtable to recurse into, a varnode/value/name
// table to index, or a plain value/context field) or a pure pattern
// expression with no defining symbol.
type OperandDef struct {
	Index int

	// DefiningSymbol is the id of the symbol this operand names (a
	// subtable_sym, varnode_sym, value_sym, ...), or -1 when the
	// operand is defined purely by DefiningExpr.
	DefiningSymbol int
	DefiningExpr   PatternExpression

	// Exactly one of RelativeOffset/AbsoluteBase is set, selecting how
	// the operand's start offset is computed relative to its parent
	// constructor.
	HasRelativeOffset bool
	RelativeOffset    int64
	HasAbsoluteBase   bool
	AbsoluteBase      int64

	MinLength uint32
}
