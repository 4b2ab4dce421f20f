package vars

import "testing"

func TestFirstNonZero(t *testing.T) {
	if s := FirstNonZero("", "", "foo", "bar"); s != "foo" {
		t.Fatalf("got %q", s)
	}
	if i := FirstNonZero(0, 0); i != 0 {
		t.Fatalf("got %v", i)
	}
}

func TestStrToBool(t *testing.T) {
	for _, s := range []string{"true", "YES", " on ", "1"} {
		if !StrToBool(s) {
			t.Fatalf("%q should be true", s)
		}
	}
	for _, s := range []string{"", "no", "off", "maybe"} {
		if StrToBool(s) {
			t.Fatalf("%q should be false", s)
		}
	}
}

func TestDerefOrZero(t *testing.T) {
	if v := DerefOrZero[int](nil); v != 0 {
		t.Fatalf("got %v", v)
	}
	if v := DerefOrZero(PtrTo(float32(0.1))); v != 0.1 {
		t.Fatalf("got %v", v)
	}
}
