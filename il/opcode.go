// Package il defines the IR value/statement types shared by the
// template builder, formatter, and translator facade: the low-level
// P-code opcode set and the higher-level, typed E-code Expr/Stmt
// forms it gets lowered from.
//
// Opcode naming follows the Ghidra/SLEIGH p-code convention that
// fugue-ir's il/pcode/mod.rs models directly (CPUI_* style names,
// here without the prefix since Go already scopes them under
// il.Opcode).
package il

// Opcode enumerates the low-level P-code operation codes a template
// builder can emit.
type Opcode int

const (
	OpCopy Opcode = iota
	OpLoad
	OpStore
	OpBranch
	OpCBranch
	OpBranchInd
	OpCall
	OpCallInd
	OpReturn
	OpIntEqual
	OpIntNotEqual
	OpIntSLess
	OpIntSLessEqual
	OpIntLess
	OpIntLessEqual
	OpIntZExt
	OpIntSExt
	OpIntAdd
	OpIntSub
	OpIntCarry
	OpIntSCarry
	OpIntSBorrow
	OpInt2Comp // arithmetic negation
	OpIntNegate // bitwise complement
	OpIntXor
	OpIntAnd
	OpIntOr
	OpIntLeft
	OpIntRight
	OpIntSRight
	OpIntMult
	OpIntDiv
	OpIntSDiv
	OpIntRem
	OpIntSRem
	OpBoolNegate
	OpBoolXor
	OpBoolAnd
	OpBoolOr
	OpFloatEqual
	OpFloatNotEqual
	OpFloatLess
	OpFloatLessEqual
	OpFloatAdd
	OpFloatSub
	OpFloatMult
	OpFloatDiv
	OpFloatNeg
	OpFloatAbs
	OpFloatSqrt
	OpFloatCeil
	OpFloatFloor
	OpFloatRound
	OpFloatTrunc
	OpFloatNan
	OpFloatInt2Float
	OpFloatFloat2Float
	OpFloatTrunc2Int
	OpSubpiece
	OpCallOther // intrinsic/"userop"
	opLabel     // pseudo-op: marks a label site during emission, never appears in final output
)

var opcodeNames = map[Opcode]string{
	OpCopy: "COPY", OpLoad: "LOAD", OpStore: "STORE", OpBranch: "BRANCH",
	OpCBranch: "CBRANCH", OpBranchInd: "BRANCHIND", OpCall: "CALL", OpCallInd: "CALLIND",
	OpReturn: "RETURN", OpIntEqual: "INT_EQUAL", OpIntNotEqual: "INT_NOTEQUAL",
	OpIntSLess: "INT_SLESS", OpIntSLessEqual: "INT_SLESSEQUAL", OpIntLess: "INT_LESS",
	OpIntLessEqual: "INT_LESSEQUAL", OpIntZExt: "INT_ZEXT", OpIntSExt: "INT_SEXT",
	OpIntAdd: "INT_ADD", OpIntSub: "INT_SUB", OpIntCarry: "INT_CARRY",
	OpIntSCarry: "INT_SCARRY", OpIntSBorrow: "INT_SBORROW", OpInt2Comp: "INT_2COMP",
	OpIntNegate: "INT_NEGATE", OpIntXor: "INT_XOR", OpIntAnd: "INT_AND", OpIntOr: "INT_OR",
	OpIntLeft: "INT_LEFT", OpIntRight: "INT_RIGHT", OpIntSRight: "INT_SRIGHT",
	OpIntMult: "INT_MULT", OpIntDiv: "INT_DIV", OpIntSDiv: "INT_SDIV",
	OpIntRem: "INT_REM", OpIntSRem: "INT_SREM", OpBoolNegate: "BOOL_NEGATE",
	OpBoolXor: "BOOL_XOR", OpBoolAnd: "BOOL_AND", OpBoolOr: "BOOL_OR",
	OpFloatEqual: "FLOAT_EQUAL", OpFloatNotEqual: "FLOAT_NOTEQUAL", OpFloatLess: "FLOAT_LESS",
	OpFloatLessEqual: "FLOAT_LESSEQUAL", OpFloatAdd: "FLOAT_ADD", OpFloatSub: "FLOAT_SUB",
	OpFloatMult: "FLOAT_MULT", OpFloatDiv: "FLOAT_DIV", OpFloatNeg: "FLOAT_NEG",
	OpFloatAbs: "FLOAT_ABS", OpFloatSqrt: "FLOAT_SQRT", OpFloatCeil: "FLOAT_CEIL",
	OpFloatFloor: "FLOAT_FLOOR", OpFloatRound: "FLOAT_ROUND", OpFloatTrunc: "FLOAT_TRUNC",
	OpFloatNan: "FLOAT_NAN", OpFloatInt2Float: "FLOAT_INT2FLOAT",
	OpFloatFloat2Float: "FLOAT_FLOAT2FLOAT", OpFloatTrunc2Int: "FLOAT_TRUNC",
	OpSubpiece: "SUBPIECE", OpCallOther: "CALLOTHER", opLabel: "LABEL",
}

func (o Opcode) String() string {
	if n, ok := opcodeNames[o]; ok {
		return n
	}
	return "UNKNOWN"
}

var opcodeByName map[string]Opcode

func init() {
	opcodeByName = make(map[string]Opcode, len(opcodeNames))
	for op, name := range opcodeNames {
		opcodeByName[name] = op
	}
}

// OpcodeByName looks up an Opcode by its raw template mnemonic (the
// op-template opcode field in the constructor's p-code body).
func OpcodeByName(name string) (Opcode, bool) {
	op, ok := opcodeByName[name]
	return op, ok
}

// ReservedOpcodes names template-grammar opcodes a supported
// architecture is never expected to produce. A template builder that
// encounters one fails fast with LiftError rather than guessing
// semantics it hasn't been taught.
var ReservedOpcodes = map[string]bool{
	"CROSS_BUILD": true,
	"CPOOL_REF":   true,
	"SEGMENT":     true,
	"NEW":         true,
	"INSERT":      true,
	"EXTRACT":     true,
	"PIECE":       true,
	"CAST":        true,
}
