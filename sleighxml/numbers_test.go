package sleighxml

import "testing"

func TestParseUint(t *testing.T) {
	cases := []struct {
		in   string
		def  uint64
		want uint64
	}{
		{"", 7, 7},
		{"42", 0, 42},
		{"0x2A", 0, 42},
	}
	for _, c := range cases {
		got, err := parseUint(c.in, c.def)
		if err != nil {
			t.Fatalf("parseUint(%q): unexpected error %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("parseUint(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseUintMalformed(t *testing.T) {
	if _, err := parseUint("not-a-number", 0); err == nil {
		t.Fatal("expected error for malformed attribute")
	}
}

func TestParseInt(t *testing.T) {
	got, err := parseInt("-5", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != -5 {
		t.Fatalf("got %d, want -5", got)
	}
	if got, err := parseInt("", 99); err != nil || got != 99 {
		t.Fatalf("expected default 99 for empty string, got %d err=%v", got, err)
	}
}

func TestMustUintFallsBackOnError(t *testing.T) {
	if got := mustUint("garbage", 11); got != 11 {
		t.Fatalf("mustUint should fall back to default on error, got %d", got)
	}
	if got := mustUint("0x10", 0); got != 16 {
		t.Fatalf("mustUint(0x10) = %d, want 16", got)
	}
}

func TestMustIntFallsBackOnError(t *testing.T) {
	if got := mustInt("garbage", -3); got != -3 {
		t.Fatalf("mustInt should fall back to default on error, got %d", got)
	}
}
