package pattern

import "testing"

func TestAlwaysTrue(t *testing.T) {
	p := Pattern{}
	if !p.AlwaysTrue() {
		t.Fatal("zero-value pattern should always match")
	}
	p.InstrMask = []byte{0xFF}
	if p.AlwaysTrue() {
		t.Fatal("pattern with a constraint should not be AlwaysTrue")
	}
}

func TestAlwaysFalse(t *testing.T) {
	p := Pattern{Impossible: true}
	if !p.AlwaysFalse() {
		t.Fatal("expected AlwaysFalse")
	}
	if p.Matches([]byte{0x00}, 0, nil) {
		t.Fatal("impossible pattern must never match")
	}
}

func TestMatchesInstructionBytes(t *testing.T) {
	// top nibble must be 0xA, rest unconstrained
	p := Pattern{InstrMask: []byte{0xF0}, InstrValue: []byte{0xA0}}
	if !p.Matches([]byte{0xAB}, 0, nil) {
		t.Fatal("expected match")
	}
	if p.Matches([]byte{0xBB}, 0, nil) {
		t.Fatal("expected no match")
	}
}

func TestMatchesOperandOffset(t *testing.T) {
	p := Pattern{InstrMask: []byte{0xFF}, InstrValue: []byte{0x12}}
	bytes := []byte{0x00, 0x12, 0x00}
	if !p.Matches(bytes, 1, nil) {
		t.Fatal("expected match at offset 1")
	}
	if p.Matches(bytes, 0, nil) {
		t.Fatal("expected no match at offset 0")
	}
}

func TestMatchesContextWords(t *testing.T) {
	p := Pattern{CtxMask: []uint32{0x0000000F}, CtxValue: []uint32{0x00000003}}
	if !p.Matches(nil, 0, []uint32{0x00000013}) {
		t.Fatal("expected context match")
	}
	if p.Matches(nil, 0, []uint32{0x00000015}) {
		t.Fatal("expected context mismatch")
	}
	// missing context word treated as zero
	if p.Matches(nil, 0, nil) {
		t.Fatal("expected no match when required context word is absent")
	}
}

func TestAndCombinesConstraints(t *testing.T) {
	a := Pattern{InstrMask: []byte{0xF0}, InstrValue: []byte{0xA0}}
	b := Pattern{InstrMask: []byte{0x0F}, InstrValue: []byte{0x05}}
	combined := a.And(b)
	if !combined.Matches([]byte{0xA5}, 0, nil) {
		t.Fatal("expected combined pattern to match 0xA5")
	}
	if combined.Matches([]byte{0xA6}, 0, nil) {
		t.Fatal("expected combined pattern to reject 0xA6")
	}
}

func TestAndImpossibleShortCircuits(t *testing.T) {
	a := Pattern{Impossible: true}
	b := Pattern{InstrMask: []byte{0xFF}, InstrValue: []byte{0x00}}
	combined := a.And(b)
	if !combined.Impossible {
		t.Fatal("And with an impossible pattern must be impossible")
	}
}

func TestAndOverlappingMaskPrefersLeftOperand(t *testing.T) {
	a := Pattern{InstrMask: []byte{0xFF}, InstrValue: []byte{0xAA}}
	b := Pattern{InstrMask: []byte{0xFF}, InstrValue: []byte{0x55}}
	combined := a.And(b)
	if !combined.Matches([]byte{0xAA}, 0, nil) {
		t.Fatal("overlapping constraint should keep the left operand's value")
	}
}
