package sfloat_test

import (
	"testing"

	"github.com/lookbusy1344/sleigh-lift/sfloat"
)

func TestNaNPropagatesThroughAdd(t *testing.T) {
	nan := sfloat.NewQuietNaN(52, 11, 1)
	x := sfloat.FromInt64(52, 11, 5)
	if !x.Add(nan).IsNaN() {
		t.Errorf("x + NaN should be NaN")
	}
}

func TestInfPlusNegInfIsNaN(t *testing.T) {
	pinf := sfloat.Infinity(52, 11, 1)
	ninf := sfloat.Infinity(52, 11, -1)
	if !pinf.Add(ninf).IsNaN() {
		t.Errorf("(+inf) + (-inf) should be NaN")
	}
}

func TestZeroTimesInfIsNaN(t *testing.T) {
	zero := sfloat.Zero(52, 11, 1)
	inf := sfloat.Infinity(52, 11, 1)
	if !zero.Mul(inf).IsNaN() {
		t.Errorf("0 * inf should be NaN")
	}
}

func TestDivByZeroIsInfinite(t *testing.T) {
	x := sfloat.FromInt64(52, 11, 7)
	zero := sfloat.Zero(52, 11, 1)
	got := x.Div(zero)
	if !got.IsInfinite() {
		t.Errorf("nonzero / 0 should be infinite, got %v", got.Kind())
	}
}

func TestSqrtOfSquareIsAbs(t *testing.T) {
	x := sfloat.FromInt64(52, 11, 9)
	sq := x.Mul(x)
	got := sq.Sqrt()
	diff := got.Sub(x).Abs()
	// 81 and its root 9 are exact in binary64, so the difference is zero
	if diff.Cmp(sfloat.FromInt64(52, 11, 0)) != 0 {
		t.Errorf("sqrt(x*x) should equal x for x=9, got kind=%v sign=%d", got.Kind(), got.Sign())
	}
}

func TestTotalOrderNaNGreatestInfBounds(t *testing.T) {
	nan := sfloat.NewQuietNaN(23, 8, 1)
	pinf := sfloat.Infinity(23, 8, 1)
	ninf := sfloat.Infinity(23, 8, -1)
	five := sfloat.FromInt64(23, 8, 5)

	if nan.Cmp(pinf) <= 0 {
		t.Errorf("NaN should compare greater than +inf")
	}
	if ninf.Cmp(five) >= 0 {
		t.Errorf("-inf should compare less than finite")
	}
	if five.Cmp(pinf) >= 0 {
		t.Errorf("finite should compare less than +inf")
	}
}
