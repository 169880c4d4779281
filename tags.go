package cbor

import (
	"math/big"
	"time"
)

// This file wires the well-known tags already enumerated in cbor.go (CborTag) into the
// Token/Value layer: constructors for the encode side, and a WithStandardTags DecodeOption
// bundling their decoders for the decode side. None of this is new wire format, only
// convenience around the generic KindTag/WithTag machinery already in value.go and registry.go.

// DateTime wraps t as a tag-0 standard date/time string (RFC 8949 §3.4.1, RFC 3339).
func DateTime(t time.Time) *Value {
	return Tag(uint64(TagDateTimeString), Text(t.UTC().Format(time.RFC3339Nano)))
}

// UnixTime wraps t as a tag-1 epoch-based date/time (RFC 8949 §3.4.2). Sub-second precision is
// preserved by encoding the epoch offset as a float when t carries a non-zero nanosecond part.
func UnixTime(t time.Time) *Value {
	seconds := t.UTC()
	if ns := seconds.Nanosecond(); ns != 0 {
		return Tag(uint64(TagUnixTime), Float(float64(seconds.UnixNano())/1e9))
	}
	return Tag(uint64(TagUnixTime), Int(seconds.Unix()))
}

// URIValue wraps s as a tag-32 URI (RFC 8949 §3.4.5.3, RFC 3986).
func URIValue(s string) *Value {
	return Tag(uint64(TagURI), Text(s))
}

// EncodedCBOR wraps data as a tag-24 embedded CBOR data item (RFC 8949 §3.4.5.1): data is opaque
// bytes holding a complete, separately-decodable CBOR encoding.
func EncodedCBOR(data []byte) *Value {
	return Tag(uint64(TagEncodedCborData), Bytes(data))
}

// SelfDescribed wraps v with the tag-55799 self-describing CBOR marker (RFC 8949 §3.4.6), a
// purely advisory wrapper with no effect on v's own encoding.
func SelfDescribed(v *Value) *Value {
	return Tag(uint64(TagSelfDescribedCbor), v)
}

// BignumTagEncoder restores the tag-2/tag-3 bignum encoding for integers outside the native
// ±2^64 range that WriteBigInt (and so the default Integer emitter) otherwise rejects with
// ErrBigIntRequiresTag. Register it with WithTypeEncoder("bigint", BignumTagEncoder()) to opt in;
// it declines (false) for anything classified other than "bigint", so it is safe to register
// unconditionally alongside other encoders.
func BignumTagEncoder() TypeEncoder {
	return func(v *Value) ([]Token, bool) {
		if classify(v) != "bigint" {
			return nil, false
		}
		n := v.AsInt().BigInt()

		var tag uint64
		var magnitude *big.Int
		if n.Sign() >= 0 {
			tag = uint64(TagUnsignedBignum)
			magnitude = n
		} else {
			tag = uint64(TagNegativeBignum)
			magnitude = new(big.Int).Neg(n)
			magnitude.Sub(magnitude, big.NewInt(1))
		}
		return []Token{
			{Type: TokenTag, TagNum: tag},
			{Type: TokenBytes, Bytes: magnitude.Bytes()},
		}, true
	}
}

// WithStandardTags registers TagDecoders for the well-known tags above, so Decode does not fail
// with ErrUnknownTag on ordinary date/time, URI, bignum, embedded-CBOR, or self-described values.
// Each decoder validates the inner value's kind and otherwise passes it through unchanged,
// except for the two bignum tags, which convert their byte-string payload into a KindInt
// Value, reusing the Integer "small vs big" representation rather than introducing a new Kind.
func WithStandardTags() DecodeOption {
	return func(o *decodeOptions) {
		withTag := WithTag
		withTag(uint64(TagDateTimeString), passthroughTag(KindText))(o)
		withTag(uint64(TagUnixTime), unixTimeTagDecoder)(o)
		withTag(uint64(TagUnsignedBignum), bignumTagDecoder(1))(o)
		withTag(uint64(TagNegativeBignum), bignumTagDecoder(-1))(o)
		withTag(uint64(TagURI), passthroughTag(KindText))(o)
		withTag(uint64(TagEncodedCborData), passthroughTag(KindBytes))(o)
		withTag(uint64(TagSelfDescribedCbor), func(inner *Value) (*Value, error) { return inner, nil })(o)
	}
}

func passthroughTag(want Kind) TagDecoder {
	return func(inner *Value) (*Value, error) {
		if inner.Kind() != want {
			return nil, ErrInvalidCbor
		}
		return inner, nil
	}
}

func unixTimeTagDecoder(inner *Value) (*Value, error) {
	switch inner.Kind() {
	case KindInt, KindFloat:
		return inner, nil
	default:
		return nil, ErrInvalidCbor
	}
}

// bignumTagDecoder builds the tag-2/tag-3 decoder for the given sign (1 or -1): it reinterprets
// the inner byte string as an unsigned big-endian magnitude and, for the negative tag, applies
// the same "-1-n" transform WriteBigInt/ReadBigInt use for the native-width bignum path.
func bignumTagDecoder(sign int) TagDecoder {
	return func(inner *Value) (*Value, error) {
		if inner.Kind() != KindBytes {
			return nil, ErrInvalidCbor
		}
		n := new(big.Int).SetBytes(inner.AsBytes())
		if sign < 0 {
			n.Add(n, big.NewInt(1))
			n.Neg(n)
		}
		return BigInt(n), nil
	}
}
