package cbor

import (
	"encoding/hex"
	"math/big"
	"testing"
	"time"
)

func TestDateTimeEncodesTag0(t *testing.T) {
	// 2013-03-21T20:04:00Z, the RFC 8949 appendix example.
	when := time.Date(2013, 3, 21, 20, 4, 0, 0, time.UTC)
	got, err := Encode(DateTime(when))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := mustHex(t, "c074323031332d30332d32315432303a30343a30305a")
	if hex.EncodeToString(got) != hex.EncodeToString(want) {
		t.Errorf("Encode(DateTime) = %x, want %x", got, want)
	}
}

func TestUnixTimeIntegerAndFloat(t *testing.T) {
	whole := time.Unix(1363896240, 0)
	got, err := Encode(UnixTime(whole))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := mustHex(t, "c11a514b67b0")
	if hex.EncodeToString(got) != hex.EncodeToString(want) {
		t.Errorf("Encode(UnixTime whole) = %x, want %x", got, want)
	}

	fractional := time.Unix(1363896240, 500000000)
	got, err = Encode(UnixTime(fractional))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	tokens, err := Tokenize(got)
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	if tokens[0].Type != TokenTag || tokens[0].TagNum != 1 {
		t.Fatalf("tokens[0] = %+v, want tag 1", tokens[0])
	}
	if tokens[1].Type != TokenFloat || tokens[1].Float != 1363896240.5 {
		t.Errorf("tokens[1] = %+v, want float 1363896240.5", tokens[1])
	}
}

func TestWithStandardTagsDecodesKnownTags(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		want *Value
	}{
		{"datetime", "c074323031332d30332d32315432303a30343a30305a", Text("2013-03-21T20:04:00Z")},
		{"unix_time", "c11a514b67b0", Int(1363896240)},
		{"uri", "d82076687474703a2f2f7777772e6578616d706c652e636f6d", Text("http://www.example.com")},
		{"self_described", "d9d9f701", Int(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Decode(mustHex(t, tt.hex), WithStandardTags())
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if !v.Equal(tt.want) {
				t.Errorf("Decode() = %+v, want %+v", v, tt.want)
			}
		})
	}
}

func TestWithStandardTagsDecodesBignums(t *testing.T) {
	// c2 49 010000000000000000 is 18446744073709551616 (2^64), the appendix bignum example.
	v, err := Decode(mustHex(t, "c249010000000000000000"), WithStandardTags())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	want := new(big.Int).Lsh(big.NewInt(1), 64)
	if !v.AsInt().IsBig() || v.AsInt().BigInt().Cmp(want) != 0 {
		t.Errorf("Decode(tag 2) = %v, want %v", v.AsInt().BigInt(), want)
	}

	// Tag 3 with the same payload is -2^64-1.
	v, err = Decode(mustHex(t, "c349010000000000000000"), WithStandardTags())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	want.Add(want, big.NewInt(1))
	want.Neg(want)
	if v.AsInt().BigInt().Cmp(want) != 0 {
		t.Errorf("Decode(tag 3) = %v, want %v", v.AsInt().BigInt(), want)
	}
}

func TestBignumTagEncoderRoundTrip(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 100)

	encoded, err := Encode(BigInt(huge), WithTypeEncoder("bigint", BignumTagEncoder()))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	decoded, err := Decode(encoded, WithStandardTags())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded.AsInt().BigInt().Cmp(huge) != 0 {
		t.Errorf("round trip = %v, want %v", decoded.AsInt().BigInt(), huge)
	}

	neg := new(big.Int).Neg(huge)
	encoded, err = Encode(BigInt(neg), WithTypeEncoder("bigint", BignumTagEncoder()))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	decoded, err = Decode(encoded, WithStandardTags())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded.AsInt().BigInt().Cmp(neg) != 0 {
		t.Errorf("round trip = %v, want %v", decoded.AsInt().BigInt(), neg)
	}
}

func TestBignumTagEncoderDeclinesSmallIntegers(t *testing.T) {
	// Integers that fit major 0/1 must keep their plain encoding even with the encoder
	// registered, since classify routes them to "uint"/"negint", not "bigint".
	encoded, err := Encode(Int(5), WithTypeEncoder("bigint", BignumTagEncoder()))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if hex.EncodeToString(encoded) != "05" {
		t.Errorf("Encode(5) = %x, want 05", encoded)
	}
}

func TestStandardTagsRejectWrongInnerKind(t *testing.T) {
	// Tag 0 with an integer payload instead of a text string.
	if _, err := Decode(mustHex(t, "c001"), WithStandardTags()); err == nil {
		t.Fatalf("expected tag 0 with a non-text inner value to fail")
	}
	// Tag 2 with a text payload instead of bytes.
	if _, err := Decode(mustHex(t, "c26161"), WithStandardTags()); err == nil {
		t.Fatalf("expected tag 2 with a non-bytes inner value to fail")
	}
}
