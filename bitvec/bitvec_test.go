package bitvec_test

import (
	"math/big"
	"testing"

	"github.com/lookbusy1344/sleigh-lift/bitvec"
)

func TestAddWrapsModulo2ToW(t *testing.T) {
	x := bitvec.FromUint64(0xFFFFFFFF, 32)
	y := bitvec.FromUint64(1, 32)
	got := x.Add(y)
	if !got.Equal(bitvec.Zero(32, false)) {
		t.Errorf("expected wrap to 0, got %s", got)
	}
}

func TestAddIsAssociative(t *testing.T) {
	x := bitvec.FromUint64(123456789, 32)
	y := bitvec.FromUint64(987654321, 32)
	z := bitvec.FromUint64(42, 32)

	left := x.Add(y).Add(z)
	right := x.Add(y.Add(z))
	if !left.Equal(right) {
		t.Errorf("addition not associative: %s != %s", left, right)
	}
}

func TestAddNegSelfIsZero(t *testing.T) {
	x := bitvec.FromInt64(-77, 16)
	got := x.Add(x.Neg())
	if !got.Equal(bitvec.Zero(16, true)) {
		t.Errorf("x + (-x) should be 0, got %s", got)
	}
}

func TestMulDistributesOverMaskedOperands(t *testing.T) {
	x := bitvec.FromUint64(300, 8) // masked to 300 mod 256 = 44
	y := bitvec.FromUint64(7, 8)
	got := x.Mul(y)
	want := bitvec.FromUint64((300%256)*7%256, 8)
	if !got.Equal(want) {
		t.Errorf("mul mod mismatch: got %s want %s", got, want)
	}
}

func TestSignedDivRoundsTowardZero(t *testing.T) {
	x := bitvec.FromInt64(-7, 8)
	y := bitvec.FromInt64(2, 8)
	got := x.Div(y)
	if got.Signed().Cmp(big.NewInt(-3)) != 0 {
		t.Errorf("expected -7/2 == -3 (truncating), got %s", got.Signed())
	}
}

func TestSignedRemFollowsDividendSign(t *testing.T) {
	x := bitvec.FromInt64(-7, 8)
	y := bitvec.FromInt64(2, 8)
	got := x.Rem(y)
	if got.Signed().Cmp(big.NewInt(-1)) != 0 {
		t.Errorf("expected -7%%2 == -1, got %s", got.Signed())
	}
}

func TestRemEuclidIsNonNegative(t *testing.T) {
	x := bitvec.FromInt64(-7, 8)
	y := bitvec.FromInt64(3, 8)
	got := x.RemEuclid(y)
	if got.Signed().Sign() < 0 {
		t.Errorf("rem_euclid should be non-negative, got %s", got.Signed())
	}
}

func TestSignedShrSaturatesAtWidth(t *testing.T) {
	neg := bitvec.FromInt64(-1, 8)
	pos := bitvec.FromInt64(5, 8)

	if got := neg.SignedShr(10); got.Signed().Cmp(big.NewInt(-1)) != 0 {
		t.Errorf("signed_shr of negative by >= bits should be -1, got %s", got.Signed())
	}
	if got := pos.SignedShr(10); !got.Equal(bitvec.Zero(8, true)) {
		t.Errorf("signed_shr of non-negative by >= bits should be 0, got %s", got)
	}
}

func TestByteRoundTrip(t *testing.T) {
	orig := bitvec.FromUint64(0xDEADBEEF, 32)
	buf := orig.ToBEBytes()
	back := bitvec.FromBEBytes(buf, false)
	if !orig.Equal(back) {
		t.Errorf("round trip mismatch: %s != %s", orig, back)
	}
}

func TestStringParseRoundTrip(t *testing.T) {
	orig := bitvec.FromInt64(-42, 16)
	s := orig.String()
	back, err := bitvec.Parse(s)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if back.Bits() != orig.Bits() || back.Signed().Cmp(orig.Signed()) != 0 {
		t.Errorf("round trip mismatch: %s != %s", back, orig)
	}
}

func TestWidthMismatchPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic on width mismatch")
		}
	}()
	a := bitvec.FromUint64(1, 8)
	b := bitvec.FromUint64(1, 16)
	_ = a.Add(b)
}

func TestGcdExt(t *testing.T) {
	a := bitvec.FromInt64(240, 16)
	b := bitvec.FromInt64(46, 16)
	g, x, y := a.GcdExt(b)
	if g.Signed().Cmp(big.NewInt(2)) != 0 {
		t.Errorf("expected gcd(240,46) == 2, got %s", g.Signed())
	}
	sum := new(big.Int).Add(
		new(big.Int).Mul(a.Signed(), x.Signed()),
		new(big.Int).Mul(b.Signed(), y.Signed()),
	)
	if sum.Cmp(g.Signed()) != 0 {
		t.Errorf("a*x + b*y should equal g: got %s want %s", sum, g.Signed())
	}
}
