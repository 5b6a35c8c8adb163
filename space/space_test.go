package space

import "testing"

func TestNewSpaceRAMRequiresAddressSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for RAM space with zero address size")
		}
	}()
	NewSpace("ram", 0, RAM, false, 0, 1)
}

func TestNewSpaceDefaultsWordSize(t *testing.T) {
	sp := NewSpace("ram", 0, RAM, false, 4, 0)
	if sp.WordSize != 1 {
		t.Fatalf("expected default word size 1, got %d", sp.WordSize)
	}
}

func TestManagerAddAndLookup(t *testing.T) {
	m := NewManager()
	constSp := NewSpace("const", 0, Constant, false, 8, 1)
	regSp := NewSpace("register", 1, Register, false, 4, 1)
	uniqueSp := NewSpace("unique", 2, Unique, false, 4, 1)
	ramSp := NewSpace("ram", 3, RAM, false, 4, 1)
	otherRam := NewSpace("other_ram", 4, RAM, false, 4, 1)

	for _, sp := range []*Space{constSp, regSp, uniqueSp, ramSp, otherRam} {
		m.Add(sp)
	}

	if m.ConstantSpace() != constSp {
		t.Fatal("wrong constant space")
	}
	if m.UniqueSpace() != uniqueSp {
		t.Fatal("wrong unique space")
	}
	if m.DefaultSpace() != ramSp {
		t.Fatal("default space should be the first RAM space registered")
	}

	if sp, ok := m.ByName("register"); !ok || sp != regSp {
		t.Fatal("ByName lookup failed")
	}
	if sp, ok := m.ByID(3); !ok || sp != ramSp {
		t.Fatal("ByID lookup failed")
	}
	if _, ok := m.ByName("nope"); ok {
		t.Fatal("expected miss for unknown name")
	}
	if len(m.All()) != 5 {
		t.Fatalf("expected 5 spaces, got %d", len(m.All()))
	}
}

func TestVarnodeIsConstantAndString(t *testing.T) {
	constSp := NewSpace("const", 0, Constant, false, 8, 1)
	ramSp := NewSpace("ram", 1, RAM, false, 4, 1)

	imm := Varnode{Space: constSp, Offset: 5, Size: 4}
	if !imm.IsConstant() {
		t.Fatal("expected constant varnode")
	}
	mem := Varnode{Space: ramSp, Offset: 0x100, Size: 4}
	if mem.IsConstant() {
		t.Fatal("did not expect constant varnode")
	}
	if got := mem.String(); got != "ram[0x100:4]" {
		t.Fatalf("unexpected String(): %q", got)
	}
	if (Varnode{}).String() != "<invalid>" {
		t.Fatal("expected <invalid> for zero-value varnode")
	}
}

func TestVarnodeEqualAndAddress(t *testing.T) {
	ramSp := NewSpace("ram", 1, RAM, false, 4, 1)
	a := Varnode{Space: ramSp, Offset: 0x10, Size: 4}
	b := Varnode{Space: ramSp, Offset: 0x10, Size: 4}
	c := Varnode{Space: ramSp, Offset: 0x14, Size: 4}
	if !a.Equal(b) {
		t.Fatal("expected equal varnodes")
	}
	if a.Equal(c) {
		t.Fatal("expected unequal varnodes")
	}
	if a.Address() != (Address{Space: ramSp, Offset: 0x10}) {
		t.Fatal("unexpected address conversion")
	}
}

func TestRegisterTable(t *testing.T) {
	regSp := NewSpace("register", 0, Register, false, 4, 1)
	rt := NewRegisterTable(regSp)
	rt.Register("r0", 0, 4)
	rt.Register("sp", 52, 4)

	if name, ok := rt.NameOf(0, 4); !ok || name != "r0" {
		t.Fatalf("expected r0, got %q (%v)", name, ok)
	}
	if _, ok := rt.NameOf(0, 2); ok {
		t.Fatal("expected miss for mismatched size")
	}
	vn, ok := rt.Lookup("sp")
	if !ok || vn.Offset != 52 || vn.Size != 4 || vn.Space != regSp {
		t.Fatalf("unexpected lookup result: %+v ok=%v", vn, ok)
	}
	if _, ok := rt.Lookup("lr"); ok {
		t.Fatal("expected miss for unregistered name")
	}
}
