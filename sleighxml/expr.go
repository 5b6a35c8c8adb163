package sleighxml

import (
	"strconv"

	"github.com/lookbusy1344/sleigh-lift/lifterror"
	"github.com/lookbusy1344/sleigh-lift/sleighsym"
)

func toTokenField(x xmlTokenField) sleighsym.TokenFieldExpr {
	return sleighsym.TokenFieldExpr{
		ByteStart: uint32(mustUint(x.ByteStart, 0)),
		ByteEnd:   uint32(mustUint(x.ByteEnd, 0)),
		BitStart:  uint32(mustUint(x.BitStart, 0)),
		BitEnd:    uint32(mustUint(x.BitEnd, 7)),
		BigEndian: x.BigEndian,
		Signed:    x.Signed,
		PostShift: mustInt(x.PostShift, 0),
	}
}

func toContextField(x xmlContextField) sleighsym.ContextFieldExpr {
	return sleighsym.ContextFieldExpr{
		BitStart:  uint32(mustUint(x.BitStart, 0)),
		BitEnd:    uint32(mustUint(x.BitEnd, 0)),
		Signed:    x.Signed,
		PostShift: mustInt(x.PostShift, 0),
	}
}

var binOpNames = map[string]sleighsym.BinOp{
	"and": sleighsym.BinAnd, "or": sleighsym.BinOr, "xor": sleighsym.BinXor,
	"add": sleighsym.BinAdd, "sub": sleighsym.BinSub, "mul": sleighsym.BinMul,
	"div": sleighsym.BinDiv, "shl": sleighsym.BinShl, "shr": sleighsym.BinShr,
}

// toPatternExpr converts one parsed <expr> node into the
// sleighsym.PatternExpression tree the resolver evaluates: the
// generic expression grammar of const/start/end/tokenfield/
// contextfield/operand and the pure binary/unary operators.
func toPatternExpr(x *xmlExpr) (sleighsym.PatternExpression, error) {
	if x == nil {
		return sleighsym.ConstExpr{Value: 0}, nil
	}
	switch x.Kind {
	case "const":
		v, err := parseInt(x.Value, 0)
		if err != nil {
			return nil, err
		}
		return sleighsym.ConstExpr{Value: v}, nil
	case "start":
		return sleighsym.StartExpr{}, nil
	case "end":
		return sleighsym.EndExpr{}, nil
	case "tokenfield":
		return sleighsym.TokenFieldExpr{
			ByteStart: uint32(mustUint(x.ByteStart, 0)),
			ByteEnd:   uint32(mustUint(x.ByteEnd, 0)),
			BitStart:  uint32(mustUint(x.BitStart, 0)),
			BitEnd:    uint32(mustUint(x.BitEnd, 7)),
			BigEndian: x.BigEndian,
			Signed:    x.Signed,
			PostShift: mustInt(x.PostShift, 0),
		}, nil
	case "contextfield":
		return sleighsym.ContextFieldExpr{
			BitStart:  uint32(mustUint(x.BitStart, 0)),
			BitEnd:    uint32(mustUint(x.BitEnd, 0)),
			Signed:    x.Signed,
			PostShift: mustInt(x.PostShift, 0),
		}, nil
	case "operand":
		idx, err := parseInt(x.Index, 0)
		if err != nil {
			return nil, err
		}
		return sleighsym.OperandExpr{Index: int(idx)}, nil
	case "bin":
		op, ok := binOpNames[x.Op]
		if !ok {
			return nil, &lifterror.DeserialiseError{Kind: lifterror.Invariant, Detail: "unknown binary pattern-expression operator " + strconv.Quote(x.Op)}
		}
		if len(x.Children) != 2 {
			return nil, &lifterror.DeserialiseError{Kind: lifterror.Invariant, Detail: "binary pattern expression requires exactly two children"}
		}
		l, err := toPatternExpr(&x.Children[0])
		if err != nil {
			return nil, err
		}
		r, err := toPatternExpr(&x.Children[1])
		if err != nil {
			return nil, err
		}
		return sleighsym.BinExpr{Op: op, L: l, R: r}, nil
	case "not", "neg":
		if len(x.Children) != 1 {
			return nil, &lifterror.DeserialiseError{Kind: lifterror.Invariant, Detail: "unary pattern expression requires exactly one child"}
		}
		arg, err := toPatternExpr(&x.Children[0])
		if err != nil {
			return nil, err
		}
		op := sleighsym.UnaryPatternNot
		if x.Kind == "neg" {
			op = sleighsym.UnaryPatternNeg
		}
		return sleighsym.UnaryPatternExpr{Op: op, Arg: arg}, nil
	default:
		return nil, &lifterror.DeserialiseError{Kind: lifterror.TagUnexpected, Detail: "unknown pattern expression kind " + strconv.Quote(x.Kind)}
	}
}

func toPattern(x xmlPattern) (instrMask, instrValue []byte, ctxMask, ctxValue []uint32, impossible bool, err error) {
	if x.Impossible {
		return nil, nil, nil, nil, true, nil
	}
	instrMask = make([]byte, len(x.Instr))
	instrValue = make([]byte, len(x.Instr))
	for i, b := range x.Instr {
		m, perr := parseUint(b.Mask, 0)
		if perr != nil {
			return nil, nil, nil, nil, false, perr
		}
		v, perr := parseUint(b.Value, 0)
		if perr != nil {
			return nil, nil, nil, nil, false, perr
		}
		instrMask[i] = byte(m)
		instrValue[i] = byte(v)
	}
	maxWord := -1
	type wordConstraint struct{ mask, value uint64 }
	words := map[int]wordConstraint{}
	for _, c := range x.Ctx {
		w, perr := parseInt(c.Word, 0)
		if perr != nil {
			return nil, nil, nil, nil, false, perr
		}
		m, perr := parseUint(c.Mask, 0)
		if perr != nil {
			return nil, nil, nil, nil, false, perr
		}
		v, perr := parseUint(c.Value, 0)
		if perr != nil {
			return nil, nil, nil, nil, false, perr
		}
		words[int(w)] = wordConstraint{mask: m, value: v}
		if int(w) > maxWord {
			maxWord = int(w)
		}
	}
	if maxWord >= 0 {
		ctxMask = make([]uint32, maxWord+1)
		ctxValue = make([]uint32, maxWord+1)
		for idx, wc := range words {
			ctxMask[idx] = uint32(wc.mask)
			ctxValue[idx] = uint32(wc.value)
		}
	}
	return instrMask, instrValue, ctxMask, ctxValue, false, nil
}
