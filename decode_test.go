package cbor

import (
	"encoding/hex"
	"math/big"
	"testing"
)

func TestDecodeNestedMapVector(t *testing.T) {
	data := mustHex(t, "a16474686973a26269736543424f522163796179f5")

	v, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	want := Map(MapEntry{
		Key: Text("this"),
		Val: Map(
			MapEntry{Key: Text("is"), Val: Text("CBOR!")},
			MapEntry{Key: Text("yay"), Val: Bool(true)},
		),
	})
	if !v.Equal(want) {
		t.Errorf("Decode() = %+v, want %+v", v, want)
	}
}

func TestDecodeMixedArrayVector(t *testing.T) {
	data := mustHex(t, "84616161620164f09f9880")

	v, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	want := Array(Text("a"), Text("b"), Int(1), Text("😀"))
	if !v.Equal(want) {
		t.Errorf("Decode() = %+v, want %+v", v, want)
	}
}

func TestDecodeStrictRejectsNonMinimalInteger(t *testing.T) {
	// Encodes the value 1 using an 8-byte argument instead of the minimal single-byte form.
	data := mustHex(t, "1b0000000000000001")

	if _, err := Decode(data); err != nil {
		t.Fatalf("lax Decode should accept a non-minimal integer, got: %v", err)
	}
	if _, err := Decode(data, WithStrict(true)); err == nil {
		t.Fatalf("strict Decode should reject a non-minimal integer encoding")
	}
}

func TestDecodeStrictRejectsUnsortedMapKeys(t *testing.T) {
	// {"b": 1, "a": 2} encoded in insertion (non-canonical) order.
	data := mustHex(t, "a2616201616102")

	if _, err := Decode(data); err != nil {
		t.Fatalf("lax Decode should accept out-of-order keys, got: %v", err)
	}
	if _, err := Decode(data, WithStrict(true)); err == nil {
		t.Fatalf("strict Decode should reject out-of-order map keys")
	}
}

func TestDecodeStrictRejectsNonMinimalFloatWidth(t *testing.T) {
	// 1.0 as a full double; canonically it fits half precision.
	data := mustHex(t, "fb3ff0000000000000")

	v, err := Decode(data)
	if err != nil {
		t.Fatalf("lax Decode should accept a wide float, got: %v", err)
	}
	if v.AsFloat() != 1.0 {
		t.Errorf("AsFloat() = %v, want 1.0", v.AsFloat())
	}
	if _, err := Decode(data, WithStrict(true)); err == nil {
		t.Fatalf("strict Decode should reject a non-minimal float width")
	}
}

func TestDecodeRejectsDuplicateMapKeys(t *testing.T) {
	// {"a": 1, "a": 2}
	data := mustHex(t, "a2616101616102")

	if _, err := Decode(data); err == nil {
		t.Fatalf("expected Decode to reject a duplicate map key by default")
	}
	if _, err := Decode(data, WithRejectDuplicateMapKeys(false)); err != nil {
		t.Fatalf("WithRejectDuplicateMapKeys(false) should accept duplicates, got: %v", err)
	}
}

func TestDecodeIndefiniteLengthGatedByOption(t *testing.T) {
	data := mustHex(t, "9fff") // empty indefinite-length array

	v, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode with AllowIndefinite default should succeed, got: %v", err)
	}
	if v.Kind() != KindArray || len(v.AsArray()) != 0 {
		t.Errorf("Decode(9fff) = %+v, want an empty array", v)
	}

	if _, err := Decode(data, WithAllowIndefinite(false)); err == nil {
		t.Fatalf("expected Decode to reject indefinite-length input when disallowed")
	}
}

func TestDecodeIndefiniteByteStringChunks(t *testing.T) {
	// (_ h'0102' h'0304')
	data := mustHex(t, "5f420102420304ff")

	v, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	want := []byte{1, 2, 3, 4}
	got := v.AsBytes()
	if len(got) != len(want) {
		t.Fatalf("AsBytes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("AsBytes() = %v, want %v", got, want)
		}
	}
}

func TestDecodeUndefinedGatedByOption(t *testing.T) {
	data := mustHex(t, "f7") // undefined

	v, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if v.Kind() != KindUndefined {
		t.Errorf("Decode(f7) kind = %v, want undefined", v.Kind())
	}

	if _, err := Decode(data, WithAllowUndefined(false)); err == nil {
		t.Fatalf("expected Decode to reject undefined when disallowed")
	}
}

func TestDecodeBigIntGatedByOption(t *testing.T) {
	data := mustHex(t, "1bffffffffffffffff") // math.MaxUint64

	v, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !v.AsInt().IsBig() {
		t.Errorf("expected MaxUint64 to decode onto the big-int path")
	}

	if _, err := Decode(data, WithAllowBigInt(false)); err == nil {
		t.Fatalf("expected Decode to reject an out-of-range integer when AllowBigInt is false")
	}
}

func TestDecodeNonStringMapKeyGatedByUseMaps(t *testing.T) {
	// {1: "x"}
	data := mustHex(t, "a1016178")

	if _, err := Decode(data); err == nil {
		t.Fatalf("expected Decode to reject a non-text map key by default")
	}
	v, err := Decode(data, WithUseMaps(true))
	if err != nil {
		t.Fatalf("WithUseMaps(true) should accept a non-text key, got: %v", err)
	}
	entries := v.AsMap()
	if len(entries) != 1 || !entries[0].Key.Equal(Int(1)) {
		t.Errorf("decoded map = %+v, want {1: \"x\"}", entries)
	}
}

func TestDecodeMaxDepthExceeded(t *testing.T) {
	// A deeply nested array: 81 81 81 ... 80 (each byte opens a 1-element array, ending in an
	// empty array).
	depth := 100
	data := make([]byte, depth+1)
	for i := 0; i < depth; i++ {
		data[i] = 0x81
	}
	data[depth] = 0x80

	if _, err := Decode(data, WithMaxDepth(10)); err == nil {
		t.Fatalf("expected Decode to reject nesting deeper than MaxDepth")
	}
	if _, err := Decode(data, WithMaxDepth(1000)); err != nil {
		t.Fatalf("Decode with a generous MaxDepth should succeed, got: %v", err)
	}
}

func TestDecodeTrailingBytesFails(t *testing.T) {
	data := mustHex(t, "0102") // two valid top-level items back to back

	if _, err := Decode(data); err == nil {
		t.Fatalf("expected Decode to reject trailing bytes after the root value")
	}
}

func TestDecodeUnknownTagFails(t *testing.T) {
	data := mustHex(t, "c074323031332d30332d32315432303a30343a30305a") // tag 0 + RFC3339 string

	if _, err := Decode(data); err == nil {
		t.Fatalf("expected Decode to reject an unregistered tag")
	}
	v, err := Decode(data, WithTag(0, func(inner *Value) (*Value, error) { return inner, nil }))
	if err != nil {
		t.Fatalf("Decode with a registered tag decoder failed: %v", err)
	}
	if v.Kind() != KindText {
		t.Errorf("Decode() kind = %v, want text", v.Kind())
	}
}

func TestDecodeNegativeIntegerBoundary(t *testing.T) {
	// Tag-free check that -1-arg is computed correctly for the largest 64-bit argument,
	// well past the int64 range.
	data := mustHex(t, "3bffffffffffffffff") // negint with arg = MaxUint64 -> -2^64
	v, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !v.AsInt().IsBig() {
		t.Fatalf("expected -2^64 to require the big-int path")
	}
	want := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 64))
	if v.AsInt().BigInt().Cmp(want) != 0 {
		t.Errorf("decoded value = %v, want %v", v.AsInt().BigInt(), want)
	}
}

func TestDecodeInvalidUtf8Fails(t *testing.T) {
	tests := []struct {
		name string
		hex  string
	}{
		{"truncated_sequence", "62c328"},
		{"surrogate_half", "63eda080"}, // UTF-8-encoded U+D800, invalid per RFC 3629
		{"overlong", "62c080"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(mustHex(t, tt.hex)); err == nil {
				t.Fatalf("expected Decode to reject invalid UTF-8")
			}
		})
	}
}

func TestDecodeStrayBreakFails(t *testing.T) {
	if _, err := Decode(mustHex(t, "ff")); err == nil {
		t.Fatalf("expected Decode to reject a top-level break byte")
	}
}

func TestDecodeUnassignedSimpleValuesFail(t *testing.T) {
	tests := []struct {
		name string
		hex  string
	}{
		{"inline_minor_16", "f0"},
		{"two_byte_below_32", "f81f"}, // minor 24 carrying 31; the two-byte form needs 32 or more
		{"two_byte_unassigned", "f820"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(mustHex(t, tt.hex)); err == nil {
				t.Fatalf("expected Decode to reject an unassigned simple value")
			}
		})
	}
}

func TestDecodeEmptyContainers(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		want *Value
	}{
		{"empty_bytes", "40", Bytes([]byte{})},
		{"empty_text", "60", Text("")},
		{"empty_array", "80", Array()},
		{"empty_map", "a0", Map()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Decode(mustHex(t, tt.hex))
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if !v.Equal(tt.want) {
				t.Errorf("Decode() = %+v, want %+v", v, tt.want)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := Map(
		MapEntry{Key: Text("name"), Val: Text("example")},
		MapEntry{Key: Text("count"), Val: Int(-7)},
		MapEntry{Key: Text("tags"), Val: Array(Text("x"), Text("y"))},
		MapEntry{Key: Text("ratio"), Val: Float(0.5)},
		MapEntry{Key: Text("ok"), Val: Bool(true)},
		MapEntry{Key: Text("nothing"), Val: Null()},
	)

	encoded, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !decoded.Equal(original) {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, original)
	}

	reencoded, err := Encode(decoded)
	if err != nil {
		t.Fatalf("re-Encode failed: %v", err)
	}
	if hex.EncodeToString(reencoded) != hex.EncodeToString(encoded) {
		t.Errorf("re-encoding a decoded value should reproduce the same bytes: got %x, want %x", reencoded, encoded)
	}
}
