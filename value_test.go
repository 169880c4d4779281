package cbor

import (
	"math/big"
	"testing"
)

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b *Value
		want bool
	}{
		{"ints_equal", Int(5), Int(5), true},
		{"ints_differ", Int(5), Int(6), false},
		{"int_vs_bigint_same_value", Int(5), BigInt(big.NewInt(5)), true},
		{"nan_equal_to_itself", Float(nan()), Float(nan()), true},
		{"floats_differ", Float(1.5), Float(2.5), false},
		{"bools_equal", Bool(true), Bool(true), true},
		{"bools_differ", Bool(true), Bool(false), false},
		{"nulls_equal", Null(), Null(), true},
		{"null_vs_undefined", Null(), Undefined(), false},
		{"bytes_equal", Bytes([]byte{1, 2, 3}), Bytes([]byte{1, 2, 3}), true},
		{"bytes_differ", Bytes([]byte{1, 2, 3}), Bytes([]byte{1, 2, 4}), false},
		{"text_equal", Text("hi"), Text("hi"), true},
		{"arrays_equal", Array(Int(1), Int(2)), Array(Int(1), Int(2)), true},
		{"arrays_differ_length", Array(Int(1)), Array(Int(1), Int(2)), false},
		{"tags_equal", Tag(0, Text("x")), Tag(0, Text("x")), true},
		{"tags_differ_number", Tag(0, Text("x")), Tag(1, Text("x")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValueEqualMapIgnoresEntryOrder(t *testing.T) {
	a := Map(MapEntry{Key: Text("a"), Val: Int(1)}, MapEntry{Key: Text("b"), Val: Int(2)})
	b := Map(MapEntry{Key: Text("b"), Val: Int(2)}, MapEntry{Key: Text("a"), Val: Int(1)})
	if !a.Equal(b) {
		t.Errorf("maps differing only in entry order should compare equal")
	}

	c := Map(MapEntry{Key: Text("a"), Val: Int(1)}, MapEntry{Key: Text("b"), Val: Int(3)})
	if a.Equal(c) {
		t.Errorf("maps with different values for the same key should not compare equal")
	}
}

func TestValueCyclicGraph(t *testing.T) {
	// Build two array Values whose sole elements point back at each other.
	a := Array(nil)
	b := Array(a)
	a.arr[0] = b

	if a.arr[0] != b {
		t.Fatalf("expected a to hold a pointer back to b")
	}
}

func TestIntegerBigPromotion(t *testing.T) {
	small := NewBigInt(big.NewInt(42))
	if small.IsBig() {
		t.Errorf("42 should normalize onto the int64 fast path")
	}
	n, ok := small.Int64()
	if !ok || n != 42 {
		t.Errorf("Int64() = (%d, %v), want (42, true)", n, ok)
	}

	huge := new(big.Int).Lsh(big.NewInt(1), 100)
	big1 := NewBigInt(huge)
	if !big1.IsBig() {
		t.Errorf("2^100 should not fit int64")
	}
	if _, ok := big1.Int64(); ok {
		t.Errorf("Int64() should report false for a big value")
	}
	if big1.BigInt().Cmp(huge) != 0 {
		t.Errorf("BigInt() round trip mismatch")
	}
}

func TestIntegerSign(t *testing.T) {
	tests := []struct {
		name string
		i    Integer
		want int
	}{
		{"zero", NewInt(0), 0},
		{"positive", NewInt(5), 1},
		{"negative", NewInt(-5), -1},
		{"big_positive", NewBigInt(new(big.Int).Lsh(big.NewInt(1), 100)), 1},
		{"big_negative", NewBigInt(new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 100))), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.i.Sign(); got != tt.want {
				t.Errorf("Sign() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValueAccessorPanicsOnKindMismatch(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected AsText on an int Value to panic")
		}
	}()
	Int(5).AsText()
}

func nan() float64 {
	var zero float64
	return zero / zero
}
