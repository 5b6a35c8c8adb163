package sfloat

import (
	"math/big"

	"github.com/lookbusy1344/sleigh-lift/bitvec"
)

// FloatFormat describes the external (on-disk) IEEE-like layout of a
// floating point value, as declared by a <floatformat> element in the
// loaded specification.
type FloatFormat struct {
	SizeBytes     uint32
	SignPos       uint32
	ExpPos        uint32
	ExpSize       uint32
	FracPos       uint32
	FracSize      uint32
	Bias          int32
	JBitImplied   bool
	ExpMax        uint64
}

// IEEEFloat32Format and IEEEFloat64Format are the default formats the
// loader installs when a specification declares no <floatformat>
// elements.
var IEEEFloat32Format = FloatFormat{
	SizeBytes: 4, SignPos: 31, ExpPos: 23, ExpSize: 8, FracPos: 0, FracSize: 23,
	Bias: 127, JBitImplied: true, ExpMax: 0xFF,
}

var IEEEFloat64Format = FloatFormat{
	SizeBytes: 8, SignPos: 63, ExpPos: 52, ExpSize: 11, FracPos: 0, FracSize: 52,
	Bias: 1023, JBitImplied: true, ExpMax: 0x7FF,
}

func (ff FloatFormat) fracBits() uint32 { return ff.FracSize }
func (ff FloatFormat) expBits() uint32  { return ff.ExpSize }

func extractField(v *big.Int, pos, size uint32) uint64 {
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(size)), big.NewInt(1))
	shifted := new(big.Int).Rsh(v, uint(pos))
	shifted.And(shifted, mask)
	return shifted.Uint64()
}

// FromBitVec decodes a raw bit pattern into a Float by classifying its
// sign/exponent/fraction fields per the format: Zero, Subnormal,
// Normal, Infinity, or NaN.
func (ff FloatFormat) FromBitVec(bv bitvec.BitVec) Float {
	raw := bv.Unsigned()
	signBit := extractField(raw, ff.SignPos, 1)
	exp := extractField(raw, ff.ExpPos, ff.ExpSize)
	frac := extractField(raw, ff.FracPos, ff.FracSize)

	sign := int8(1)
	if signBit != 0 {
		sign = -1
	}

	fracBits, expBits := ff.fracBits(), ff.expBits()

	if exp == ff.ExpMax {
		if frac == 0 {
			return Infinity(fracBits, expBits, sign)
		}
		// high fraction bit set => quiet, else signalling
		if frac&(1<<(ff.FracSize-1)) != 0 {
			return NewQuietNaN(fracBits, expBits, sign)
		}
		return NewSignallingNaN(fracBits, expBits, sign)
	}

	if exp == 0 {
		if frac == 0 {
			return Zero(fracBits, expBits, sign)
		}
		// Subnormal: unbiased exponent is 1-bias, no implicit leading bit.
		mag := new(big.Float).SetPrec(fracBits + 1).SetMode(big.ToNearestEven)
		mag.SetUint64(frac)
		shift := -(int(ff.Bias) - 1) - int(ff.FracSize)
		mag.SetMantExp(mag, shift)
		return newFinite(fracBits, expBits, sign, mag)
	}

	// Normal: value = 1.frac * 2^(exp - bias)
	mantissaBits := frac
	if ff.JBitImplied {
		mantissaBits |= uint64(1) << ff.FracSize
	}
	mag := new(big.Float).SetPrec(fracBits + 1).SetMode(big.ToNearestEven)
	mag.SetUint64(mantissaBits)
	shift := int(int32(exp)-ff.Bias) - int(ff.FracSize)
	mag.SetMantExp(mag, shift)
	return newFinite(fracBits, expBits, sign, mag)
}

// IntoBitVec rounds f's mantissa to FracSize+1 leading bits and emits
// the biased exponent, detecting overflow to infinity and encoding
// NaN as the maximum exponent with the high fraction bit set.
func (ff FloatFormat) IntoBitVec(f Float) bitvec.BitVec {
	bits := ff.SizeBytes * 8
	signBit := uint64(0)
	if f.sign < 0 {
		signBit = 1
	}

	var expField, fracField uint64
	switch {
	case f.IsNaN():
		expField = ff.ExpMax
		fracField = uint64(1) << (ff.FracSize - 1)
		if f.kind == SignallingNaN {
			fracField = 1
		}
	case f.IsInfinite():
		expField = ff.ExpMax
		fracField = 0
	case f.IsZero():
		expField, fracField = 0, 0
	default:
		scale := f.scale()
		if scale > MaxScale(f.expBits) {
			expField = ff.ExpMax
			fracField = 0
		} else {
			biasedExp := scale + ff.Bias
			if biasedExp <= 0 {
				// subnormal: shift mantissa down by the deficit.
				shiftOut := -biasedExp + 1
				mant, _ := new(big.Float).SetPrec(ff.FracSize + 1 + uint32(shiftOut)).Mul(&f.mag, new(big.Float).SetMantExp(big.NewFloat(1), int(ff.FracSize)-int(scale)+int(ff.Bias)-1)).Int(nil)
				expField = 0
				if mant != nil {
					fracField = mant.Uint64() & ((uint64(1) << ff.FracSize) - 1)
				}
			} else {
				expField = uint64(biasedExp)
				mantF := new(big.Float).SetPrec(ff.FracSize + 2).Mul(&f.mag, new(big.Float).SetMantExp(big.NewFloat(1), int(ff.FracSize)-f.mag.MantExp(nil)+1))
				mant, _ := mantF.Int(nil)
				fracField = 0
				if mant != nil {
					fracField = mant.Uint64() & ((uint64(1) << ff.FracSize) - 1)
				}
			}
		}
	}

	var out big.Int
	var tmp big.Int
	tmp.SetUint64(signBit)
	tmp.Lsh(&tmp, uint(ff.SignPos))
	out.Or(&out, &tmp)

	tmp.SetUint64(expField)
	tmp.Lsh(&tmp, uint(ff.ExpPos))
	out.Or(&out, &tmp)

	tmp.SetUint64(fracField)
	tmp.Lsh(&tmp, uint(ff.FracPos))
	out.Or(&out, &tmp)

	return bitvec.New(&out, bits, false)
}
