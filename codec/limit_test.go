package codec

import "testing"

func TestLimitGuardsDecodeOnly(t *testing.T) {
	c := Limit[string]{Inner: String{}, MaxDecode: 4}

	big, err := c.Encode("this is longer than four bytes")
	if err != nil {
		t.Fatalf("Encode must not be limited: %v", err)
	}
	if _, err := c.Decode(big); err == nil {
		t.Fatalf("Decode should reject oversized payload")
	}
	got, err := c.Decode([]byte("ok"))
	if err != nil || got != "ok" {
		t.Fatalf("Decode within limit: got=%q err=%v", got, err)
	}
}

func TestLimitDisabledWhenNonPositive(t *testing.T) {
	c := Limit[string]{Inner: String{}}
	got, err := c.Decode([]byte("any length goes through"))
	if err != nil || got != "any length goes through" {
		t.Fatalf("unlimited Decode: got=%q err=%v", got, err)
	}
}
