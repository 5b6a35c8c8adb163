package bitvec

import (
	"math/big"
	"strconv"
	"strings"
)

// Parse reads the external textual form "<decimal>:<bits>" or
// "0x<hex>:<bits>" produced by String/ToBEBytes-adjacent tooling.
func Parse(s string) (BitVec, error) {
	idx := strings.LastIndexByte(s, ':')
	if idx < 0 {
		return BitVec{}, &ParseError{Kind: InvalidFormat, Input: s}
	}
	numPart, bitsPart := s[:idx], s[idx+1:]
	bits64, err := strconv.ParseUint(bitsPart, 10, 32)
	if err != nil || bits64 == 0 {
		return BitVec{}, &ParseError{Kind: InvalidSize, Input: s}
	}
	signed := false
	if strings.HasPrefix(numPart, "-") {
		signed = true
	}
	var v big.Int
	var ok bool
	if strings.HasPrefix(numPart, "0x") || strings.HasPrefix(numPart, "-0x") {
		neg := strings.HasPrefix(numPart, "-")
		hex := strings.TrimPrefix(strings.TrimPrefix(numPart, "-"), "0x")
		_, ok = v.SetString(hex, 16)
		if ok && neg {
			v.Neg(&v)
		}
	} else {
		_, ok = v.SetString(numPart, 10)
	}
	if !ok {
		return BitVec{}, &ParseError{Kind: InvalidConst, Input: s}
	}
	return New(&v, uint32(bits64), signed), nil
}
