package wiz

import "testing"

func TestParseVersionEmptyIsUnknown(t *testing.T) {
	v, err := ParseVersion("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsUnknown() {
		t.Fatalf("expected Unknown, got %v", v)
	}
}

func TestParseVersionInvalid(t *testing.T) {
	_, err := ParseVersion("not-a-version!!")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !IsKind(err, KindInvalidVersion) {
		t.Fatalf("expected KindInvalidVersion, got %v", err)
	}
}

func TestVersionCompare(t *testing.T) {
	a, _ := ParseVersion("1.0.0")
	b, _ := ParseVersion("1.2.0")

	c, err := a.Compare(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c >= 0 {
		t.Fatalf("expected 1.0.0 < 1.2.0, got compare=%d", c)
	}
}

func TestVersionCompareUnknownFails(t *testing.T) {
	a := Unknown
	b, _ := ParseVersion("1.0.0")

	if _, err := a.Compare(b); err == nil {
		t.Fatal("expected error comparing Unknown")
	}
	if _, err := b.Compare(a); err == nil {
		t.Fatal("expected error comparing against Unknown")
	}
}

func TestVersionLessThan(t *testing.T) {
	a, _ := ParseVersion("1.0.0")
	b, _ := ParseVersion("2.0.0")

	if !a.lessThan(b) {
		t.Fatal("expected 1.0.0 < 2.0.0")
	}
	if b.lessThan(a) {
		t.Fatal("expected 2.0.0 to not be < 1.0.0")
	}
}

func TestVersionString(t *testing.T) {
	v, _ := ParseVersion("1.2.3")
	if v.String() != "1.2.3" {
		t.Fatalf("got %q", v.String())
	}
	if Unknown.String() != "unknown" {
		t.Fatalf("got %q", Unknown.String())
	}
}
