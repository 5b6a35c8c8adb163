// Package sfloat implements deterministic IEEE-like software floating
// point for symbolic evaluation of lifted IR, independent of any host
// FPU. Values are (frac_bits, exp_bits, kind, sign, magnitude) tuples;
// the magnitude of a finite value is carried in a math/big.Float
// configured to round-to-nearest-even at a precision of frac_bits+1
// significant bits. big.Float is itself an arbitrary-precision software
// float implementation with a selectable rounding mode — it is the
// standard library's soft-float primitive, and no third-party
// alternative offers configurable precision and rounding without
// pulling in its own bignum type, so it is used directly here rather
// than hand-rolling mantissa/exponent bit-twiddling.
package sfloat

import (
	"math/big"
)

// Kind classifies the represented value.
type Kind int

const (
	Finite Kind = iota
	Infinite
	QuietNaN
	SignallingNaN
)

func (k Kind) String() string {
	switch k {
	case Finite:
		return "Finite"
	case Infinite:
		return "Infinite"
	case QuietNaN:
		return "QuietNaN"
	case SignallingNaN:
		return "SignallingNaN"
	default:
		return "Unknown"
	}
}

// Float is an immutable software float value at a declared
// (frac_bits, exp_bits) format.
type Float struct {
	fracBits uint32
	expBits  uint32
	kind     Kind
	sign     int8 // +1 or -1
	mag      big.Float
}

// MinScale returns 2 - 2^(exp_bits-1), the smallest representable
// binary exponent at this format.
func MinScale(expBits uint32) int32 {
	return 2 - (int32(1) << (expBits - 1))
}

// MaxScale returns 2^(exp_bits-1) - 1, the largest representable
// binary exponent at this format.
func MaxScale(expBits uint32) int32 {
	return (int32(1) << (expBits - 1)) - 1
}

func newFinite(fracBits, expBits uint32, sign int8, mag *big.Float) Float {
	f := Float{fracBits: fracBits, expBits: expBits, kind: Finite, sign: sign}
	f.mag.SetPrec(fracBits + 1).SetMode(big.ToNearestEven)
	if mag != nil {
		f.mag.Set(mag)
	}
	return f
}

// Zero returns +0 or -0 at the given format.
func Zero(fracBits, expBits uint32, sign int8) Float {
	return newFinite(fracBits, expBits, normSign(sign), nil)
}

// Infinity returns +Inf or -Inf at the given format.
func Infinity(fracBits, expBits uint32, sign int8) Float {
	f := Float{fracBits: fracBits, expBits: expBits, kind: Infinite, sign: normSign(sign)}
	return f
}

// NewQuietNaN returns a quiet NaN at the given format.
func NewQuietNaN(fracBits, expBits uint32, sign int8) Float {
	return Float{fracBits: fracBits, expBits: expBits, kind: QuietNaN, sign: normSign(sign)}
}

// NewSignallingNaN returns a signalling NaN at the given format.
func NewSignallingNaN(fracBits, expBits uint32, sign int8) Float {
	return Float{fracBits: fracBits, expBits: expBits, kind: SignallingNaN, sign: normSign(sign)}
}

// FromInt64 builds a finite value from an integer at the given format.
func FromInt64(fracBits, expBits uint32, v int64) Float {
	sign := int8(1)
	if v < 0 {
		sign = -1
	}
	mag := new(big.Float).SetPrec(fracBits + 1).SetMode(big.ToNearestEven)
	mag.SetInt64(v)
	mag.Abs(mag)
	return newFinite(fracBits, expBits, sign, mag)
}

func normSign(s int8) int8 {
	if s < 0 {
		return -1
	}
	return 1
}

func (f Float) FracBits() uint32 { return f.fracBits }
func (f Float) ExpBits() uint32  { return f.expBits }
func (f Float) Kind() Kind       { return f.kind }
func (f Float) Sign() int8       { return f.sign }

func (f Float) IsNaN() bool      { return f.kind == QuietNaN || f.kind == SignallingNaN }
func (f Float) IsInfinite() bool { return f.kind == Infinite }
func (f Float) IsZero() bool     { return f.kind == Finite && f.mag.Sign() == 0 }
func (f Float) IsFinite() bool   { return f.kind == Finite }
func (f Float) IsNegative() bool { return f.sign < 0 }

// scale returns the binary exponent of the magnitude (Mag = 1.xxx *
// 2^scale for a normal value), used to detect overflow into Infinite.
func (f Float) scale() int32 {
	if f.mag.Sign() == 0 {
		return MinScale(f.expBits)
	}
	exp := f.mag.MantExp(nil)
	return int32(exp) - 1
}

func quietNaNLike(a, b Float) Float {
	if a.IsNaN() {
		return NewQuietNaN(a.fracBits, a.expBits, a.sign)
	}
	return NewQuietNaN(b.fracBits, b.expBits, b.sign)
}

func (f Float) withMag(sign int8, mag *big.Float) Float {
	result := newFinite(f.fracBits, f.expBits, sign, mag)
	if result.scale() > MaxScale(f.expBits) {
		return Infinity(f.fracBits, f.expBits, sign)
	}
	return result
}

// Add returns a+b, rounded to nearest-even at a's format.
func (a Float) Add(b Float) Float {
	if a.IsNaN() || b.IsNaN() {
		return quietNaNLike(a, b)
	}
	if a.IsInfinite() && b.IsInfinite() {
		if a.sign != b.sign {
			return NewQuietNaN(a.fracBits, a.expBits, 1) // (+inf)+(-inf) = NaN
		}
		return a
	}
	if a.IsInfinite() {
		return a
	}
	if b.IsInfinite() {
		return b
	}

	signedA := new(big.Float).Copy(&a.mag)
	if a.sign < 0 {
		signedA.Neg(signedA)
	}
	signedB := new(big.Float).Copy(&b.mag)
	if b.sign < 0 {
		signedB.Neg(signedB)
	}
	sum := new(big.Float).SetPrec(a.fracBits + 1).SetMode(big.ToNearestEven)
	sum.Add(signedA, signedB)
	sign := int8(1)
	if sum.Sign() < 0 {
		sign = -1
	}
	mag := new(big.Float).Abs(sum)
	return a.withMag(sign, mag)
}

// Sub returns a-b.
func (a Float) Sub(b Float) Float {
	return a.Add(b.Neg())
}

// Neg returns -a.
func (a Float) Neg() Float {
	a.sign = -a.sign
	return a
}

// Abs returns |a|.
func (a Float) Abs() Float {
	a.sign = 1
	return a
}

// Mul returns a*b.
func (a Float) Mul(b Float) Float {
	if a.IsNaN() || b.IsNaN() {
		return quietNaNLike(a, b)
	}
	sign := a.sign * b.sign
	if (a.IsZero() && b.IsInfinite()) || (a.IsInfinite() && b.IsZero()) {
		return NewQuietNaN(a.fracBits, a.expBits, sign)
	}
	if a.IsInfinite() || b.IsInfinite() {
		return Infinity(a.fracBits, a.expBits, sign)
	}
	mag := new(big.Float).SetPrec(a.fracBits + 1).SetMode(big.ToNearestEven)
	mag.Mul(&a.mag, &b.mag)
	return a.withMag(sign, mag)
}

// Div returns a/b.
func (a Float) Div(b Float) Float {
	if a.IsNaN() || b.IsNaN() {
		return quietNaNLike(a, b)
	}
	sign := a.sign * b.sign
	if a.IsInfinite() && b.IsInfinite() {
		return NewQuietNaN(a.fracBits, a.expBits, sign)
	}
	if a.IsInfinite() {
		return Infinity(a.fracBits, a.expBits, sign)
	}
	if b.IsInfinite() {
		return Zero(a.fracBits, a.expBits, sign)
	}
	if b.IsZero() {
		if a.IsZero() {
			return NewQuietNaN(a.fracBits, a.expBits, sign)
		}
		return Infinity(a.fracBits, a.expBits, sign)
	}
	mag := new(big.Float).SetPrec(a.fracBits + 1).SetMode(big.ToNearestEven)
	mag.Quo(&a.mag, &b.mag)
	return a.withMag(sign, mag)
}

// Sqrt returns sqrt(a) via Newton's method carried out over the
// underlying big.Float (the method the spec names explicitly); the
// loop runs until successive iterates agree at the target precision.
func (a Float) Sqrt() Float {
	if a.IsNaN() {
		return a
	}
	if a.sign < 0 && !a.IsZero() {
		return NewQuietNaN(a.fracBits, a.expBits, 1)
	}
	if a.IsInfinite() || a.IsZero() {
		return a
	}
	prec := a.fracBits + 1
	x := new(big.Float).SetPrec(prec).SetMode(big.ToNearestEven).Copy(&a.mag)
	// initial guess
	guess := new(big.Float).SetPrec(prec).Copy(&a.mag)
	exp := guess.MantExp(nil)
	guess.SetMantExp(big.NewFloat(1), exp/2+1)

	two := big.NewFloat(2)
	for i := 0; i < int(prec)+16; i++ {
		// next = (guess + x/guess) / 2
		quot := new(big.Float).SetPrec(prec + 8).Quo(x, guess)
		next := new(big.Float).SetPrec(prec + 8).Add(guess, quot)
		next.Quo(next, two)
		if next.Cmp(guess) == 0 {
			guess = next
			break
		}
		guess = next
	}
	mag := new(big.Float).SetPrec(prec).SetMode(big.ToNearestEven).Set(guess)
	return a.withMag(1, mag)
}

func (a Float) Floor() Float { return a.roundTo(func(f *big.Float) *big.Int {
	i, _ := f.Int(nil)
	if f.Sign() < 0 {
		frac := new(big.Float).Sub(f, new(big.Float).SetInt(i))
		if frac.Sign() != 0 {
			i.Sub(i, big.NewInt(1))
		}
	}
	return i
}) }

func (a Float) Ceil() Float { return a.roundTo(func(f *big.Float) *big.Int {
	i, _ := f.Int(nil)
	if f.Sign() > 0 {
		frac := new(big.Float).Sub(f, new(big.Float).SetInt(i))
		if frac.Sign() != 0 {
			i.Add(i, big.NewInt(1))
		}
	}
	return i
}) }

func (a Float) Trunc() Float { return a.roundTo(func(f *big.Float) *big.Int {
	i, _ := f.Int(nil)
	return i
}) }

func (a Float) Round() Float { return a.roundTo(func(f *big.Float) *big.Int {
	half := big.NewFloat(0.5)
	shifted := new(big.Float).Add(f, half)
	i, _ := shifted.Int(nil)
	return i
}) }

func (a Float) roundTo(pick func(*big.Float) *big.Int) Float {
	if a.kind != Finite {
		return a
	}
	signed := new(big.Float).Copy(&a.mag)
	if a.sign < 0 {
		signed.Neg(signed)
	}
	i := pick(signed)
	sign := int8(1)
	if i.Sign() < 0 {
		sign = -1
	}
	mag := new(big.Float).SetPrec(a.fracBits + 1).SetMode(big.ToNearestEven)
	mag.SetInt(new(big.Int).Abs(i))
	return a.withMag(sign, mag)
}

// Cmp implements a total order over Float values: NaN sorts greater
// than everything, -Inf < finite < +Inf, and finite values compare
// sign-aware (signed zero compares equal).
func (a Float) Cmp(b Float) int {
	rank := func(f Float) int {
		if f.IsNaN() {
			return 3
		}
		return 0
	}
	if ra, rb := rank(a), rank(b); ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	if a.IsNaN() && b.IsNaN() {
		return 0
	}
	av, bv := a.signedValue(), b.signedValue()
	return av.Cmp(bv)
}

// signedValue returns a comparable big.Float: -Inf/+Inf map to
// big.Float's own signed infinities so ordinary Cmp works across kinds.
func (a Float) signedValue() *big.Float {
	if a.kind == Infinite {
		v := new(big.Float).SetInf(a.sign < 0)
		return v
	}
	v := new(big.Float).Copy(&a.mag)
	if a.sign < 0 {
		v.Neg(v)
	}
	return v
}
