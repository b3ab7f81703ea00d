package keystream

import (
	"bytes"
	"testing"
)

func TestFill_Deterministic(t *testing.T) {
	var key [KeySize]byte
	copy(key[:], []byte("some-derived-key-material-here!"))
	ks := New(key)

	a := make([]byte, 16)
	b := make([]byte, 16)
	if err := ks.Fill(a); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if err := ks.Fill(b); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("two Fill(16) calls produced different bytes: %x != %x", a, b)
	}
}

func TestFill_RestartsPerCall(t *testing.T) {
	var key [KeySize]byte
	copy(key[:], []byte("another-derived-key-material!!!"))
	ks := New(key)

	small := make([]byte, 4)
	big := make([]byte, 16)
	if err := ks.Fill(small); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if err := ks.Fill(big); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if !bytes.Equal(small, big[:4]) {
		t.Errorf("Fill(4) bytes %x do not match the prefix of Fill(16) %x; call did not restart at offset zero", small, big[:4])
	}
}

func TestFill_Zero(t *testing.T) {
	var key [KeySize]byte
	ks := New(key)
	if err := ks.Fill(nil); err != nil {
		t.Errorf("Fill(nil): %v", err)
	}
}

func TestFill_DifferentKeys(t *testing.T) {
	var k1, k2 [KeySize]byte
	copy(k1[:], []byte("key-one-aaaaaaaaaaaaaaaaaaaaaaaa"))
	copy(k2[:], []byte("key-two-bbbbbbbbbbbbbbbbbbbbbbbb"))

	a := make([]byte, 32)
	b := make([]byte, 32)
	New(k1).Fill(a)
	New(k2).Fill(b)
	if bytes.Equal(a, b) {
		t.Errorf("different keys produced identical keystreams")
	}
}
