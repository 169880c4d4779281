package cbor

import (
	"math"
	"sort"
)

// maxEncodeDepth bounds encoder recursion the same way decodeOptions.maxDepth bounds the
// decoder: both directions guard against stack overflow on deeply nested input. There is no
// encode-side tuning knob, so it is a fixed constant matching the decoder's default.
const maxEncodeDepth = 64

// Encode walks v and emits its canonical CBOR encoding. Under the default options the output
// is byte-identical for any two structurally equal value graphs.
func Encode(v *Value, opts ...EncodeOption) ([]byte, error) {
	o := newEncodeOptions(opts)
	w := NewCborWriter()
	ancestors := make(map[*Value]bool)
	if err := encodeValue(w, v, o, ancestors, 0); err != nil {
		return nil, err
	}
	return w.BytesCopy(), nil
}

func encodeValue(w *CborWriter, v *Value, o *encodeOptions, ancestors map[*Value]bool, depth int) error {
	if depth > maxEncodeDepth {
		return NewCborError(ErrNestingDepthExceeded, -1, "encode")
	}

	if enc, ok := o.typeEncoders[classify(v)]; ok {
		if tokens, handled := enc(v); handled {
			for _, t := range tokens {
				if err := WriteToken(w, t); err != nil {
					return err
				}
			}
			return nil
		}
	}

	switch v.kind {
	case KindInt:
		// WriteBigInt already implements the exact major-0/1 ±2^64 rule this Integer needs,
		// regardless of whether it is carried on the small or big path internally.
		if err := w.WriteBigInt(v.i.BigInt()); err != nil {
			return NewCborError(err, -1, "")
		}
		return nil

	case KindFloat:
		if n, ok := normalizeFloatToInt(v.f); ok {
			return w.WriteInt64(n)
		}
		if o.float64 {
			return w.WriteFloat64(v.f)
		}
		return w.WriteFloat(v.f)

	case KindBool:
		return w.WriteBoolean(v.b)

	case KindNull:
		return w.WriteNull()

	case KindUndefined:
		return w.WriteUndefined()

	case KindBytes:
		return w.WriteByteString(v.bytes)

	case KindText:
		return w.WriteTextString(v.text)

	case KindArray:
		if ancestors[v] {
			return NewCborError(ErrCircularReference, -1, "")
		}
		ancestors[v] = true
		defer delete(ancestors, v)

		if err := w.WriteStartArray(len(v.arr)); err != nil {
			return err
		}
		for _, el := range v.arr {
			if err := encodeValue(w, el, o, ancestors, depth+1); err != nil {
				return err
			}
		}
		return w.WriteEndArray()

	case KindMap:
		if ancestors[v] {
			return NewCborError(ErrCircularReference, -1, "")
		}
		ancestors[v] = true
		defer delete(ancestors, v)
		return encodeMap(w, v.m, o, ancestors, depth)

	case KindTag:
		if ancestors[v] {
			return NewCborError(ErrCircularReference, -1, "")
		}
		ancestors[v] = true
		defer delete(ancestors, v)

		if err := w.WriteTag(CborTag(v.tagNum)); err != nil {
			return err
		}
		return encodeValue(w, v.tagVal, o, ancestors, depth+1)

	default:
		return NewCborError(ErrUnsupportedType, -1, "")
	}
}

type encodedEntry struct {
	keyBytes []byte
	entry    MapEntry
}

// encodeMap encodes each key to a temporary writer first so entries can be sorted by their
// canonical bytes under CompareCanonical, then every entry is encoded a
// second time, key and value both, directly into w. The second pass (rather than splicing the
// first pass's bytes) is what lets w's own nesting bookkeeping see every key and value go past
// as a normal write, the same as it would for any other map.
func encodeMap(w *CborWriter, entries []MapEntry, o *encodeOptions, ancestors map[*Value]bool, depth int) error {
	items := make([]encodedEntry, len(entries))
	for i, e := range entries {
		kw := NewCborWriter()
		if err := encodeValue(kw, e.Key, o, ancestors, depth+1); err != nil {
			return err
		}
		items[i] = encodedEntry{keyBytes: kw.BytesCopy(), entry: e}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return CompareCanonical(items[i].keyBytes, items[j].keyBytes) < 0
	})

	if err := w.WriteStartMap(len(items)); err != nil {
		return err
	}
	for _, it := range items {
		if err := encodeValue(w, it.entry.Key, o, ancestors, depth+1); err != nil {
			return err
		}
		if err := encodeValue(w, it.entry.Val, o, ancestors, depth+1); err != nil {
			return err
		}
	}
	return w.WriteEndMap()
}

// normalizeFloatToInt implements the deliberate integer normalization rule: a float with no
// fractional part that fits the signed 64-bit range is encoded as an integer instead of a
// float. This is a documented lossy round-trip normalization.
func normalizeFloatToInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	// Negative zero stays a float: normalizing it to integer 0 would erase the sign bit.
	if f == 0 && math.Signbit(f) {
		return 0, false
	}
	if f != math.Trunc(f) {
		return 0, false
	}
	// 2^63 is the smallest float64 that isn't exactly representable as int64; comparing
	// against it (rather than MaxInt64, which itself rounds to 2^63 in float64) avoids a
	// false positive at the boundary.
	const twoPow63 = 9223372036854775808.0
	if f < -twoPow63 || f >= twoPow63 {
		return 0, false
	}
	n := int64(f)
	if float64(n) != f {
		return 0, false
	}
	return n, true
}
