// Package pattern implements the bit-level pattern matcher and
// decision tree: token/context field extraction and hierarchical
// bit-masked matching used to select a constructor per operand.
package pattern

// Pattern is a mask/value pair over the instruction byte stream
// (relative to the current operand offset) combined, by a logical
// AND, with a mask/value pair over the context words. A Pattern with
// an all-zero instruction mask and all-zero context mask always
// matches (AlwaysTrue); Impossible patterns (marked during static
// pruning of unreachable alternatives) never match.
type Pattern struct {
	InstrMask  []byte
	InstrValue []byte
	CtxMask    []uint32
	CtxValue   []uint32
	Impossible bool
}

func allZeroBytes(b []byte) bool {
	for _, x := range b {
		if x != 0 {
			return false
		}
	}
	return true
}

func allZeroWords(w []uint32) bool {
	for _, x := range w {
		if x != 0 {
			return false
		}
	}
	return true
}

// AlwaysTrue reports whether this pattern places no constraint at all.
func (p Pattern) AlwaysTrue() bool {
	return !p.Impossible && allZeroBytes(p.InstrMask) && allZeroWords(p.CtxMask)
}

// AlwaysFalse reports whether this pattern can never match, enabling
// static tree pruning.
func (p Pattern) AlwaysFalse() bool { return p.Impossible }

// Matches tests the pattern against the instruction bytes starting at
// operandByteOffset and the given context words.
func (p Pattern) Matches(bytes []byte, operandByteOffset int, ctxWords []uint32) bool {
	if p.Impossible {
		return false
	}
	for i, m := range p.InstrMask {
		if m == 0 {
			continue
		}
		idx := operandByteOffset + i
		var b byte
		if idx >= 0 && idx < len(bytes) {
			b = bytes[idx]
		}
		if b&m != p.InstrValue[i]&m {
			return false
		}
	}
	for i, m := range p.CtxMask {
		if m == 0 {
			continue
		}
		var w uint32
		if i < len(ctxWords) {
			w = ctxWords[i]
		}
		if w&m != p.CtxValue[i]&m {
			return false
		}
	}
	return true
}

// And combines two patterns' constraints (used when a constructor
// declares both an InstructionPattern and a ContextPattern, or when
// merging a parent subtable's pattern into a child's during static
// analysis). Mismatched-length mask slices are right-padded with
// zeros (no additional constraint).
func (p Pattern) And(o Pattern) Pattern {
	if p.Impossible || o.Impossible {
		return Pattern{Impossible: true}
	}
	return Pattern{
		InstrMask:  orBytes(p.InstrMask, o.InstrMask, p.InstrValue, o.InstrValue, &p, &o),
		InstrValue: mergeValues(p.InstrMask, o.InstrMask, p.InstrValue, o.InstrValue),
		CtxMask:    orWords(p.CtxMask, o.CtxMask),
		CtxValue:   mergeWordValues(p.CtxMask, o.CtxMask, p.CtxValue, o.CtxValue),
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func orBytes(aMask, bMask, aVal, bVal []byte, _, _ *Pattern) []byte {
	n := maxInt(len(aMask), len(bMask))
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		var am, bm byte
		if i < len(aMask) {
			am = aMask[i]
		}
		if i < len(bMask) {
			bm = bMask[i]
		}
		out[i] = am | bm
	}
	return out
}

func mergeValues(aMask, bMask, aVal, bVal []byte) []byte {
	n := maxInt(len(aMask), len(bMask))
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		var am, av, bv byte
		if i < len(aMask) {
			am = aMask[i]
		}
		if i < len(aVal) {
			av = aVal[i]
		}
		if i < len(bVal) {
			bv = bVal[i]
		}
		// where a constrains (am bit set), use a's value; else b's.
		out[i] = (av & am) | (bv &^ am)
	}
	return out
}

func orWords(a, b []uint32) []uint32 {
	n := maxInt(len(a), len(b))
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		var am, bm uint32
		if i < len(a) {
			am = a[i]
		}
		if i < len(b) {
			bm = b[i]
		}
		out[i] = am | bm
	}
	return out
}

func mergeWordValues(aMask, bMask, aVal, bVal []uint32) []uint32 {
	n := maxInt(len(aMask), len(bMask))
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		var am, av, bv uint32
		if i < len(aMask) {
			am = aMask[i]
		}
		if i < len(aVal) {
			av = aVal[i]
		}
		if i < len(bVal) {
			bv = bVal[i]
		}
		out[i] = (av & am) | (bv &^ am)
	}
	return out
}
