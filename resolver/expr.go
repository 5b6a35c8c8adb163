// Package resolver implements the constructor resolver: the
// top-level decode loop that repeatedly selects a constructor via the
// pattern decision tree, applies its context operators, recurses into
// its operands, fixes each frame's length, and then performs a second
// pass filling every operand's OperandHandle.
package resolver

import (
	"github.com/lookbusy1344/sleigh-lift/bitvec"
	"github.com/lookbusy1344/sleigh-lift/sleighsym"
	"github.com/lookbusy1344/sleigh-lift/walker"
)

// evalScope carries just enough context to evaluate a
// PatternExpression: the byte offset resolution is relative to, the
// constructor whose Operands a nested OperandExpr indexes into, and
// the cache shared across one Resolve call.
type evalScope struct {
	offset      int
	constructor *sleighsym.Constructor
	cache       exprCache
}

// operandCacheKey identifies one OperandExpr lookup: which operand of
// which constructor, evaluated at which offset. Several sibling
// operands can reference the same operand's defining expression, so resolving operand i of constructor c at offset o
// always recomputes the same result within one decode.
type operandCacheKey struct {
	constructor *sleighsym.Constructor
	index       int
	offset      int
}

// exprCache memoizes OperandExpr lookups for the lifetime of a single
// Resolve call. It is deliberately scoped to OperandExpr recursion
// only, not to every expression kind: a ContextFieldExpr's value can
// change mid-resolve as context operators commit, so memoizing it by
// structural equality would risk returning a stale pre-commit value.
// OperandExpr lookups don't have that hazard, since a constructor's
// context operators all run in applyContext before any of its
// operands are evaluated. Cleared per decode; never shared across
// instructions.
type exprCache map[operandCacheKey]bitvec.BitVec

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func evalTokenField(bytes []byte, operandOffset int, f sleighsym.TokenFieldExpr) bitvec.BitVec {
	lo := operandOffset + int(f.ByteStart)
	hi := operandOffset + int(f.ByteEnd)
	n := hi - lo + 1
	if n < 1 {
		n = 1
	}
	var raw uint64
	for i := 0; i < n; i++ {
		idx := lo + i
		var b byte
		if idx >= 0 && idx < len(bytes) {
			b = bytes[idx]
		}
		if f.BigEndian {
			raw = (raw << 8) | uint64(b)
		} else {
			raw |= uint64(b) << uint(8*i)
		}
	}
	numBits := f.BitEnd - f.BitStart + 1
	if numBits == 0 || numBits > 64 {
		numBits = uint32(n * 8)
	}
	val := (raw >> f.BitStart) & ((uint64(1) << numBits) - 1)
	bv := bitvec.FromUint64(val, numBits)
	if f.Signed {
		bv = bv.AsSigned()
	}
	return applyPostShift(bv, f.PostShift)
}

func evalContextField(words []uint32, f sleighsym.ContextFieldExpr) bitvec.BitVec {
	numBits := f.BitEnd - f.BitStart + 1
	if numBits == 0 || numBits > 64 {
		numBits = 32
	}
	var val uint64
	for i := uint32(0); i < numBits; i++ {
		bitPos := f.BitStart + i
		wordIdx := bitPos / 32
		shift := 31 - (bitPos % 32)
		var bit uint64
		if int(wordIdx) < len(words) {
			bit = uint64((words[wordIdx] >> shift) & 1)
		}
		val = (val << 1) | bit
	}
	bv := bitvec.FromUint64(val, numBits)
	if f.Signed {
		bv = bv.AsSigned()
	}
	return applyPostShift(bv, f.PostShift)
}

func applyPostShift(bv bitvec.BitVec, shift int64) bitvec.BitVec {
	if shift == 0 {
		return bv
	}
	wide := bv.Cast(bv.Bits() + uint32(absInt64(shift)))
	if shift > 0 {
		wide = wide.Shl(uint32(shift))
	}
	return wide
}

func evalBin(op sleighsym.BinOp, l, r bitvec.BitVec) bitvec.BitVec {
	w := l.Bits()
	if r.Bits() > w {
		w = r.Bits()
	}
	l = l.Cast(w)
	r = r.Cast(w)
	switch op {
	case sleighsym.BinAnd:
		return l.And(r)
	case sleighsym.BinOr:
		return l.Or(r)
	case sleighsym.BinXor:
		return l.Xor(r)
	case sleighsym.BinAdd:
		return l.Add(r)
	case sleighsym.BinSub:
		return l.Sub(r)
	case sleighsym.BinMul:
		return l.Mul(r)
	case sleighsym.BinDiv:
		return l.Div(r)
	case sleighsym.BinShl:
		return l.Shl(uint32(r.Unsigned().Uint64()))
	case sleighsym.BinShr:
		return l.Shr(uint32(r.Unsigned().Uint64()))
	default:
		return l
	}
}

// operandOffset computes an operand's start offset relative to its
// parent's.
func operandOffset(parentOffset int, def *sleighsym.OperandDef) int {
	if def.HasAbsoluteBase {
		return int(def.AbsoluteBase)
	}
	return parentOffset + int(def.RelativeOffset)
}

// evalExpr evaluates a PatternExpression at the given scope, one of
// const/start/end/tokenfield/contextfield/operand or a binary/unary
// combination of those.
func evalExpr(pc *walker.ParserContext, scope evalScope, expr sleighsym.PatternExpression) bitvec.BitVec {
	switch e := expr.(type) {
	case sleighsym.ConstExpr:
		return bitvec.FromInt64(e.Value, 64)
	case sleighsym.StartExpr:
		return bitvec.FromUint64(pc.Address, 64)
	case sleighsym.EndExpr:
		return bitvec.FromUint64(pc.Address+uint64(len(pc.Bytes)), 64)
	case sleighsym.TokenFieldExpr:
		return evalTokenField(pc.Bytes, scope.offset, e)
	case sleighsym.ContextFieldExpr:
		return evalContextField(pc.Ctx.Words(), e)
	case sleighsym.OperandExpr:
		if scope.constructor == nil || e.Index < 0 || e.Index >= len(scope.constructor.Operands) {
			return bitvec.Zero(64, false)
		}
		if scope.cache != nil {
			key := operandCacheKey{constructor: scope.constructor, index: e.Index, offset: scope.offset}
			if v, ok := scope.cache[key]; ok {
				return v
			}
			v := evalOperandExpr(pc, scope, e)
			scope.cache[key] = v
			return v
		}
		return evalOperandExpr(pc, scope, e)
	case sleighsym.BinExpr:
		return evalBin(e.Op, evalExpr(pc, scope, e.L), evalExpr(pc, scope, e.R))
	case sleighsym.UnaryPatternExpr:
		a := evalExpr(pc, scope, e.Arg)
		if e.Op == sleighsym.UnaryPatternNot {
			return a.Not()
		}
		return a.Neg()
	default:
		return bitvec.Zero(64, false)
	}
}

func evalOperandExpr(pc *walker.ParserContext, scope evalScope, e sleighsym.OperandExpr) bitvec.BitVec {
	def := scope.constructor.Operands[e.Index]
	childOffset := operandOffset(scope.offset, &def)
	return evalExpr(pc, evalScope{offset: childOffset, constructor: scope.constructor, cache: scope.cache}, def.DefiningExpr)
}
