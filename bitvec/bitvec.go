// Package bitvec implements fixed-width, wrap-around integer arithmetic
// at arbitrary declared bit-widths, with both unsigned and signed
// interpretations of the same underlying bit pattern. It backs
// immediate values and register contents inside the lifted IR.
//
// Values are stored as an unsigned magnitude masked to their declared
// width (math/big.Int, the standard library's arbitrary-precision
// integer type — arbitrary-precision arithmetic has no established
// third-party alternative in the Go ecosystem, so this is the one
// core number type built directly on the standard library). Widths up
// to 64 bits additionally fit in a machine word, but we do not
// special-case them: big.Int operations on word-sized values are
// cheap enough that a dedicated fast path isn't worth the extra code
// path to maintain.
package bitvec

import (
	"fmt"
	"math/big"
	"sync"
)

// BitVec is an immutable (value, bits, signed) triple. The value is
// always normalized to the range [0, 2^bits) on construction; the
// signed flag only changes how comparisons, division, remainder, and
// right-shift interpret the high bit. Two BitVecs with equal value but
// different bits are distinct.
type BitVec struct {
	val    big.Int
	bits   uint32
	signed bool
}

// maskCache memoizes 2^bits-1 per width. Concurrent decodes on
// separate context databases call into BitVec arithmetic from
// multiple goroutines at once, so this needs to be safe for
// concurrent access: a plain map would race (and panic with
// "concurrent map writes") the first time two goroutines hit a
// not-yet-cached width simultaneously.
var maskCache sync.Map

// mask returns 2^bits - 1, memoized per width.
func mask(bits uint32) *big.Int {
	if m, ok := maskCache.Load(bits); ok {
		return m.(*big.Int)
	}
	m := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(bits)), big.NewInt(1))
	actual, _ := maskCache.LoadOrStore(bits, m)
	return actual.(*big.Int)
}

func normalize(v *big.Int, bits uint32) big.Int {
	var out big.Int
	out.And(v, mask(bits))
	return out
}

// New constructs a BitVec from an arbitrary-precision integer, masking
// it to bits. Negative inputs are represented via two's complement
// wrap-around, matching how a signed literal would be stored.
func New(v *big.Int, bits uint32, signed bool) BitVec {
	if bits == 0 {
		panic("bitvec: bits must be >= 1")
	}
	return BitVec{val: normalize(v, bits), bits: bits, signed: signed}
}

// FromUint64 constructs an unsigned BitVec from a machine integer.
func FromUint64(v uint64, bits uint32) BitVec {
	return New(new(big.Int).SetUint64(v), bits, false)
}

// FromInt64 constructs a signed BitVec from a machine integer.
func FromInt64(v int64, bits uint32) BitVec {
	return New(big.NewInt(v), bits, true)
}

// Zero returns the zero value at the given width.
func Zero(bits uint32, signed bool) BitVec {
	return BitVec{val: *big.NewInt(0), bits: bits, signed: signed}
}

// One returns the value 1 at the given width.
func One(bits uint32, signed bool) BitVec {
	return New(big.NewInt(1), bits, signed)
}

func (b BitVec) Bits() uint32   { return b.bits }
func (b BitVec) IsSigned() bool { return b.signed }

// AsSigned returns a copy of b with the signed flag set.
func (b BitVec) AsSigned() BitVec { b.signed = true; return b }

// AsUnsigned returns a copy of b with the signed flag cleared.
func (b BitVec) AsUnsigned() BitVec { b.signed = false; return b }

// Unsigned returns the bit pattern as a non-negative integer in [0, 2^bits).
func (b BitVec) Unsigned() *big.Int {
	out := new(big.Int).Set(&b.val)
	return out
}

// Signed returns the bit pattern reinterpreted as a two's-complement
// signed integer at its declared width, regardless of the signed flag.
func (b BitVec) Signed() *big.Int {
	out := new(big.Int).Set(&b.val)
	if b.Msb() {
		out.Sub(out, new(big.Int).Lsh(big.NewInt(1), uint(b.bits)))
	}
	return out
}

// AsBigInt returns the value under the BitVec's own signed flag.
func (b BitVec) AsBigInt() *big.Int {
	if b.signed {
		return b.Signed()
	}
	return b.Unsigned()
}

// Equal compares value and width; the signed flag is not part of
// equality (it is an interpretation hint, not part of the bit pattern).
func (b BitVec) Equal(o BitVec) bool {
	return b.bits == o.bits && b.val.Cmp(&o.val) == 0
}

// Cmp performs an unsigned, or signed (when IsSigned), ordering compare.
// Use SignedCmp to force signed comparison regardless of the flag.
func (b BitVec) Cmp(o BitVec) int {
	requireSameWidth("cmp", b, o)
	if b.signed || o.signed {
		return b.SignedCmp(o)
	}
	return b.val.Cmp(&o.val)
}

func (b BitVec) SignedCmp(o BitVec) int {
	requireSameWidth("signed_cmp", b, o)
	return b.Signed().Cmp(o.Signed())
}

func (b BitVec) String() string {
	if b.signed {
		return fmt.Sprintf("%d:%d", b.Signed(), b.bits)
	}
	return fmt.Sprintf("%d:%d", &b.val, b.bits)
}

// --- bitwise ---

func (b BitVec) And(o BitVec) BitVec {
	requireSameWidth("and", b, o)
	var r big.Int
	r.And(&b.val, &o.val)
	return BitVec{val: r, bits: b.bits, signed: b.signed || o.signed}
}

func (b BitVec) Or(o BitVec) BitVec {
	requireSameWidth("or", b, o)
	var r big.Int
	r.Or(&b.val, &o.val)
	return BitVec{val: r, bits: b.bits, signed: b.signed || o.signed}
}

func (b BitVec) Xor(o BitVec) BitVec {
	requireSameWidth("xor", b, o)
	var r big.Int
	r.Xor(&b.val, &o.val)
	return BitVec{val: r, bits: b.bits, signed: b.signed || o.signed}
}

func (b BitVec) Not() BitVec {
	r := normalize(new(big.Int).Not(&b.val), b.bits)
	return BitVec{val: r, bits: b.bits, signed: b.signed}
}

// --- arithmetic (wrap modulo 2^bits) ---

func (b BitVec) Add(o BitVec) BitVec {
	requireSameWidth("add", b, o)
	r := normalize(new(big.Int).Add(&b.val, &o.val), b.bits)
	return BitVec{val: r, bits: b.bits, signed: b.signed || o.signed}
}

func (b BitVec) Sub(o BitVec) BitVec {
	requireSameWidth("sub", b, o)
	r := normalize(new(big.Int).Sub(&b.val, &o.val), b.bits)
	return BitVec{val: r, bits: b.bits, signed: b.signed || o.signed}
}

func (b BitVec) Neg() BitVec {
	r := normalize(new(big.Int).Neg(&b.val), b.bits)
	return BitVec{val: r, bits: b.bits, signed: b.signed}
}

func (b BitVec) Mul(o BitVec) BitVec {
	requireSameWidth("mul", b, o)
	r := normalize(new(big.Int).Mul(&b.val, &o.val), b.bits)
	return BitVec{val: r, bits: b.bits, signed: b.signed || o.signed}
}

// Div performs C-like truncating division. If either operand is
// signed, both are interpreted as signed two's-complement values and
// the quotient's sign follows the usual rules (+,-,-,+ for
// sign(x),sign(y) in that table order); otherwise it is unsigned
// division.
func (b BitVec) Div(o BitVec) BitVec {
	requireSameWidth("div", b, o)
	if b.signed || o.signed {
		return b.signedDivRem(o, true)
	}
	r := new(big.Int).Quo(&b.val, &o.val)
	return BitVec{val: normalize(r, b.bits), bits: b.bits, signed: false}
}

// Rem returns the truncating remainder; its sign follows the dividend.
func (b BitVec) Rem(o BitVec) BitVec {
	requireSameWidth("rem", b, o)
	if b.signed || o.signed {
		return b.signedDivRem(o, false)
	}
	r := new(big.Int).Rem(&b.val, &o.val)
	return BitVec{val: normalize(r, b.bits), bits: b.bits, signed: false}
}

func (b BitVec) signedDivRem(o BitVec, wantQuot bool) BitVec {
	x, y := b.Signed(), o.Signed()
	q, r := new(big.Int), new(big.Int)
	q.QuoRem(x, y, r)
	var out *big.Int
	if wantQuot {
		out = q
	} else {
		out = r
	}
	return BitVec{val: normalize(out, b.bits), bits: b.bits, signed: true}
}

// RemEuclid returns the non-negative remainder, in [0, |y|).
func (b BitVec) RemEuclid(o BitVec) BitVec {
	requireSameWidth("rem_euclid", b, o)
	x, y := b.Signed(), o.Signed()
	absY := new(big.Int).Abs(y)
	r := new(big.Int).Mod(x, absY)
	return BitVec{val: normalize(r, b.bits), bits: b.bits, signed: b.signed}
}

// --- shifts ---

func shiftAmountOverflows(amt uint32, bits uint32) bool { return amt >= bits }

func (b BitVec) Shl(amt uint32) BitVec {
	if shiftAmountOverflows(amt, b.bits) {
		return Zero(b.bits, b.signed)
	}
	r := normalize(new(big.Int).Lsh(&b.val, uint(amt)), b.bits)
	return BitVec{val: r, bits: b.bits, signed: b.signed}
}

// ShlBV shifts left by an amount carried in a same-width BitVec.
func (b BitVec) ShlBV(amt BitVec) BitVec {
	requireSameWidth("shl", b, amt)
	return b.Shl(uint32(amt.Unsigned().Uint64()))
}

// Shr performs a logical (zero-fill) right shift.
func (b BitVec) Shr(amt uint32) BitVec {
	if shiftAmountOverflows(amt, b.bits) {
		return Zero(b.bits, b.signed)
	}
	r := normalize(new(big.Int).Rsh(&b.val, uint(amt)), b.bits)
	return BitVec{val: r, bits: b.bits, signed: b.signed}
}

func (b BitVec) ShrBV(amt BitVec) BitVec {
	requireSameWidth("shr", b, amt)
	return b.Shr(uint32(amt.Unsigned().Uint64()))
}

// SignedShr performs an arithmetic (sign-extending) right shift. When
// amt >= bits the result is -1 (all ones) if b is negative, else 0.
func (b BitVec) SignedShr(amt uint32) BitVec {
	neg := b.Msb()
	if shiftAmountOverflows(amt, b.bits) {
		if neg {
			return New(big.NewInt(-1), b.bits, true)
		}
		return Zero(b.bits, true)
	}
	signed := b.Signed()
	r := new(big.Int).Rsh(signed, uint(amt))
	return BitVec{val: normalize(r, b.bits), bits: b.bits, signed: true}
}

func (b BitVec) SignedShrBV(amt BitVec) BitVec {
	requireSameWidth("signed_shr", b, amt)
	return b.SignedShr(uint32(amt.Unsigned().Uint64()))
}

// --- overflow queries ---

// Carry reports whether unsigned b+o wraps past 2^bits.
func (b BitVec) Carry(o BitVec) bool {
	requireSameWidth("carry", b, o)
	sum := new(big.Int).Add(b.Unsigned(), o.Unsigned())
	return sum.Cmp(mask(b.bits)) > 0
}

// SignedCarry reports whether signed b+o overflows the signed range.
func (b BitVec) SignedCarry(o BitVec) bool {
	requireSameWidth("signed_carry", b, o)
	sum := new(big.Int).Add(b.Signed(), o.Signed())
	maxV := maxSignedValue(b.bits)
	minV := minSignedValue(b.bits)
	return sum.Cmp(maxV) > 0 || sum.Cmp(minV) < 0
}

// SignedBorrow reports whether signed b-o overflows the signed range.
func (b BitVec) SignedBorrow(o BitVec) bool {
	requireSameWidth("signed_borrow", b, o)
	diff := new(big.Int).Sub(b.Signed(), o.Signed())
	maxV := maxSignedValue(b.bits)
	minV := minSignedValue(b.bits)
	return diff.Cmp(maxV) > 0 || diff.Cmp(minV) < 0
}

func maxSignedValue(bits uint32) *big.Int {
	return new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(bits-1)), big.NewInt(1))
}

func minSignedValue(bits uint32) *big.Int {
	return new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), uint(bits-1)))
}

// MaxValue returns the largest representable value at bits, signed or not.
func MaxValue(bits uint32, signed bool) BitVec {
	if signed {
		return New(maxSignedValue(bits), bits, true)
	}
	return New(mask(bits), bits, false)
}

// MinValue returns the smallest representable value at bits, signed or not.
func MinValue(bits uint32, signed bool) BitVec {
	if signed {
		return New(minSignedValue(bits), bits, true)
	}
	return Zero(bits, false)
}

// --- bit queries ---

func (b BitVec) CountOnes() uint32 {
	var n uint32
	for i := uint32(0); i < b.bits; i++ {
		if b.val.Bit(int(i)) == 1 {
			n++
		}
	}
	return n
}

func (b BitVec) CountZeros() uint32 { return b.bits - b.CountOnes() }

func (b BitVec) LeadingZeros() uint32 {
	for i := int(b.bits) - 1; i >= 0; i-- {
		if b.val.Bit(i) == 1 {
			return b.bits - 1 - uint32(i)
		}
	}
	return b.bits
}

func (b BitVec) LeadingOnes() uint32 {
	for i := int(b.bits) - 1; i >= 0; i-- {
		if b.val.Bit(i) == 0 {
			return b.bits - 1 - uint32(i)
		}
	}
	return b.bits
}

// LeadingOnePosition returns the bit index of the highest set bit, and
// false if the value is zero.
func (b BitVec) LeadingOnePosition() (uint32, bool) {
	if b.val.Sign() == 0 {
		return 0, false
	}
	return b.bits - 1 - b.LeadingZeros(), true
}

func (b BitVec) Msb() bool { return b.val.Bit(int(b.bits-1)) == 1 }
func (b BitVec) Lsb() bool { return b.val.Bit(0) == 1 }

func (b BitVec) Bit(i uint32) bool {
	if i >= b.bits {
		return false
	}
	return b.val.Bit(int(i)) == 1
}

func (b BitVec) SetBit(i uint32) BitVec {
	r := new(big.Int).Set(&b.val)
	r.SetBit(r, int(i), 1)
	return BitVec{val: normalize(r, b.bits), bits: b.bits, signed: b.signed}
}

// Cast truncates or extends b to newBits. Extension sign-extends when
// b is signed, otherwise zero-extends.
func (b BitVec) Cast(newBits uint32) BitVec {
	if newBits == b.bits {
		return b
	}
	if newBits < b.bits {
		return BitVec{val: normalize(&b.val, newBits), bits: newBits, signed: b.signed}
	}
	var src *big.Int
	if b.signed {
		src = b.Signed()
	} else {
		src = b.Unsigned()
	}
	return BitVec{val: normalize(src, newBits), bits: newBits, signed: b.signed}
}

// --- number theory ---

func (b BitVec) Gcd(o BitVec) BitVec {
	requireSameWidth("gcd", b, o)
	r := new(big.Int).GCD(nil, nil, absBig(b.Unsigned()), absBig(o.Unsigned()))
	return BitVec{val: normalize(r, b.bits), bits: b.bits, signed: b.signed}
}

func (b BitVec) Lcm(o BitVec) BitVec {
	requireSameWidth("lcm", b, o)
	g := new(big.Int).GCD(nil, nil, absBig(b.Unsigned()), absBig(o.Unsigned()))
	if g.Sign() == 0 {
		return Zero(b.bits, b.signed)
	}
	prod := new(big.Int).Mul(b.Unsigned(), o.Unsigned())
	l := new(big.Int).Div(absBig(prod), g)
	return BitVec{val: normalize(l, b.bits), bits: b.bits, signed: b.signed}
}

// GcdExt returns (g, x, y) such that a*x + b*y = g, via the extended
// Euclidean algorithm.
func (b BitVec) GcdExt(o BitVec) (BitVec, BitVec, BitVec) {
	requireSameWidth("gcd_ext", b, o)
	var x, y big.Int
	g := new(big.Int).GCD(&x, &y, absBig(b.Unsigned()), absBig(o.Unsigned()))
	return BitVec{val: normalize(g, b.bits), bits: b.bits, signed: true},
		BitVec{val: normalize(&x, b.bits), bits: b.bits, signed: true},
		BitVec{val: normalize(&y, b.bits), bits: b.bits, signed: true}
}

func absBig(v *big.Int) *big.Int { return new(big.Int).Abs(v) }

// --- byte conversion ---

func byteLen(bits uint32) int { return int((bits + 7) / 8) }

// ToBEBytes writes the minimal big-endian byte encoding covering bits,
// sign-extending the high byte when the value is negative and signed.
func (b BitVec) ToBEBytes() []byte {
	n := byteLen(b.bits)
	out := make([]byte, n)
	var src *big.Int
	if b.signed && b.Msb() {
		// two's complement over n*8 bits
		full := new(big.Int).Lsh(big.NewInt(1), uint(n*8))
		src = new(big.Int).Add(full, b.Signed())
	} else {
		src = b.Unsigned()
	}
	bs := src.Bytes()
	copy(out[n-len(bs):], bs)
	return out
}

func (b BitVec) ToLEBytes() []byte {
	be := b.ToBEBytes()
	out := make([]byte, len(be))
	for i, c := range be {
		out[len(be)-1-i] = c
	}
	return out
}

// FromBEBytes reconstructs a BitVec of bits == 8*len(buf) from a
// big-endian byte buffer.
func FromBEBytes(buf []byte, signed bool) BitVec {
	bits := uint32(len(buf)) * 8
	v := new(big.Int).SetBytes(buf)
	return New(v, bits, signed)
}

func FromLEBytes(buf []byte, signed bool) BitVec {
	rev := make([]byte, len(buf))
	for i, c := range buf {
		rev[len(buf)-1-i] = c
	}
	return FromBEBytes(rev, signed)
}
