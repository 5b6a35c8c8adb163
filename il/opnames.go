package il

var unaryOpNames = [...]string{
	"~", "-", "!", "f-", "fabs", "fsqrt", "fceil", "ffloor", "fround", "ftrunc", "fnan", "popcount",
}

func (o UnaryOp) String() string {
	if int(o) < len(unaryOpNames) {
		return unaryOpNames[o]
	}
	return "?unop"
}

var binaryOpNames = [...]string{
	"+", "-", "*", "/", "s/", "%", "s%", "&", "|", "^", "<<", ">>", "s>>",
	"&&", "||", "^^", "f+", "f-", "f*", "f/",
}

func (o BinaryOp) String() string {
	if int(o) < len(binaryOpNames) {
		return binaryOpNames[o]
	}
	return "?binop"
}

var relOpNames = [...]string{
	"==", "!=", "<", "<=", "s<", "s<=", "f==", "f!=", "f<", "f<=", "carry", "scarry", "sborrow",
}

func (o RelOp) String() string {
	if int(o) < len(relOpNames) {
		return relOpNames[o]
	}
	return "?relop"
}

var castKindNames = [...]string{
	"bool", "signed", "unsigned", "trunc_hi", "trunc_lo", "zext", "sext", "int2float", "float2float", "float2int",
}

func (k CastKind) String() string {
	if int(k) < len(castKindNames) {
		return castKindNames[k]
	}
	return "?cast"
}
