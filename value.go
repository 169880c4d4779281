package cbor

import "math/big"

// Kind identifies which variant of the logical value domain a Value holds. The domain is
// closed: every Value has exactly one Kind, and the set below is exhaustive.
type Kind uint8

const (
	// KindInt holds a signed, machine-wide integer, or an arbitrary-precision one when it
	// falls outside the native int64 range. See Integer.
	KindInt Kind = iota
	// KindFloat holds an IEEE-754 binary64 value.
	KindFloat
	// KindBool holds a boolean.
	KindBool
	// KindNull holds the CBOR null value; there is no accompanying payload.
	KindNull
	// KindUndefined holds the CBOR undefined value; there is no accompanying payload.
	KindUndefined
	// KindBytes holds an opaque byte sequence.
	KindBytes
	// KindText holds validated UTF-8 text.
	KindText
	// KindArray holds an ordered list of child values.
	KindArray
	// KindMap holds an insertion-ordered list of key/value pairs.
	KindMap
	// KindTag holds a semantic tag number and its single tagged inner value.
	KindTag
)

// String returns a human-readable name for the kind, used in error messages.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	case KindUndefined:
		return "undefined"
	case KindBytes:
		return "bytes"
	case KindText:
		return "text"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindTag:
		return "tag"
	default:
		return "unknown"
	}
}

// Integer holds a CBOR integer as a "small vs big" tagged variant rather than a polymorphic
// numeric primitive: values that fit in int64 take the fast path, and everything outside that
// range is held as an arbitrary-precision *big.Int.
type Integer struct {
	small int64
	big   *big.Int // non-nil only when the value doesn't fit in int64
}

// NewInt constructs an Integer from a native signed 64-bit integer.
func NewInt(n int64) Integer {
	return Integer{small: n}
}

// NewBigInt constructs an Integer from an arbitrary-precision value. If n fits in int64 it is
// normalized onto the fast path.
func NewBigInt(n *big.Int) Integer {
	if n.IsInt64() {
		return Integer{small: n.Int64()}
	}
	return Integer{big: new(big.Int).Set(n)}
}

// IsBig reports whether the integer falls outside the native int64 range.
func (i Integer) IsBig() bool {
	return i.big != nil
}

// Int64 returns the value and true if it fits in int64.
func (i Integer) Int64() (int64, bool) {
	if i.big != nil {
		return 0, false
	}
	return i.small, true
}

// BigInt returns the value as an arbitrary-precision integer, regardless of which path it's
// stored on.
func (i Integer) BigInt() *big.Int {
	if i.big != nil {
		return new(big.Int).Set(i.big)
	}
	return big.NewInt(i.small)
}

// Sign returns -1, 0, or 1 depending on the sign of the integer.
func (i Integer) Sign() int {
	if i.big != nil {
		return i.big.Sign()
	}
	switch {
	case i.small < 0:
		return -1
	case i.small > 0:
		return 1
	default:
		return 0
	}
}

// Equal reports whether two Integers hold the same mathematical value.
func (i Integer) Equal(o Integer) bool {
	if i.big == nil && o.big == nil {
		return i.small == o.small
	}
	return i.BigInt().Cmp(o.BigInt()) == 0
}

// MapEntry is one key/value pair of a KindMap Value, in decode/construction order.
type MapEntry struct {
	Key *Value
	Val *Value
}

// Value is one logical CBOR data item: a closed tagged union exposed as a concrete struct
// rather than an open interface hierarchy.
//
// Containers (KindArray, KindMap, KindTag) hold pointers to their children, which is what lets
// a caller build a value graph that genuinely cycles (two nodes whose children reach back to
// an ancestor). Encode walks an ancestor set keyed by these pointers and rejects such graphs
// with ErrCircularReference.
type Value struct {
	kind Kind

	i     Integer
	f     float64
	b     bool
	bytes []byte
	text  string
	arr   []*Value
	m     []MapEntry

	tagNum uint64
	tagVal *Value
}

// Kind reports which variant of the domain this Value holds.
func (v *Value) Kind() Kind { return v.kind }

// Int constructs an integer Value from a native signed 64-bit integer.
func Int(n int64) *Value { return &Value{kind: KindInt, i: NewInt(n)} }

// BigInt constructs an integer Value from an arbitrary-precision integer.
func BigInt(n *big.Int) *Value { return &Value{kind: KindInt, i: NewBigInt(n)} }

// IntValue constructs an integer Value directly from an Integer.
func IntValue(i Integer) *Value { return &Value{kind: KindInt, i: i} }

// Float constructs a floating-point Value.
func Float(f float64) *Value { return &Value{kind: KindFloat, f: f} }

// Bool constructs a boolean Value.
func Bool(b bool) *Value { return &Value{kind: KindBool, b: b} }

// Null constructs the CBOR null Value.
func Null() *Value { return &Value{kind: KindNull} }

// Undefined constructs the CBOR undefined Value.
func Undefined() *Value { return &Value{kind: KindUndefined} }

// Bytes constructs a byte-sequence Value. The slice is not copied.
func Bytes(b []byte) *Value { return &Value{kind: KindBytes, bytes: b} }

// Text constructs a text Value. The caller is responsible for ensuring s is valid UTF-8;
// Encode does not re-validate caller-constructed text.
func Text(s string) *Value { return &Value{kind: KindText, text: s} }

// Array constructs an ordered-list Value from its elements.
func Array(items ...*Value) *Value { return &Value{kind: KindArray, arr: items} }

// Map constructs a mapping Value from its entries, in the given order. Encode imposes
// canonical key order; this constructor preserves whatever order the caller supplies.
func Map(entries ...MapEntry) *Value { return &Value{kind: KindMap, m: entries} }

// Tag constructs a semantic-tag Value wrapping inner.
func Tag(number uint64, inner *Value) *Value {
	return &Value{kind: KindTag, tagNum: number, tagVal: inner}
}

// AsInt returns the integer payload. Panics if Kind() != KindInt.
func (v *Value) AsInt() Integer {
	v.mustBe(KindInt)
	return v.i
}

// AsFloat returns the float payload. Panics if Kind() != KindFloat.
func (v *Value) AsFloat() float64 {
	v.mustBe(KindFloat)
	return v.f
}

// AsBool returns the boolean payload. Panics if Kind() != KindBool.
func (v *Value) AsBool() bool {
	v.mustBe(KindBool)
	return v.b
}

// AsBytes returns the byte-sequence payload. Panics if Kind() != KindBytes.
func (v *Value) AsBytes() []byte {
	v.mustBe(KindBytes)
	return v.bytes
}

// AsText returns the text payload. Panics if Kind() != KindText.
func (v *Value) AsText() string {
	v.mustBe(KindText)
	return v.text
}

// AsArray returns the element list. Panics if Kind() != KindArray.
func (v *Value) AsArray() []*Value {
	v.mustBe(KindArray)
	return v.arr
}

// AsMap returns the entry list, in its current (not necessarily canonical) order. Panics if
// Kind() != KindMap.
func (v *Value) AsMap() []MapEntry {
	v.mustBe(KindMap)
	return v.m
}

// TagNumber returns the tag number. Panics if Kind() != KindTag.
func (v *Value) TagNumber() uint64 {
	v.mustBe(KindTag)
	return v.tagNum
}

// TagInner returns the tagged inner value. Panics if Kind() != KindTag.
func (v *Value) TagInner() *Value {
	v.mustBe(KindTag)
	return v.tagVal
}

func (v *Value) mustBe(k Kind) {
	if v.kind != k {
		panic("cbor: Value is a " + v.kind.String() + ", not a " + k.String())
	}
}

// Equal reports whether two values are structurally equal. It does not consider encoded byte
// representation, only the logical domain: map entry order is ignored, and NaN compares equal
// to NaN so that a decoded float round-trips as equal.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.i.Equal(o.i)
	case KindFloat:
		return v.f == o.f || (v.f != v.f && o.f != o.f) // NaN == NaN for this comparison
	case KindBool:
		return v.b == o.b
	case KindNull, KindUndefined:
		return true
	case KindBytes:
		return bytesEqual(v.bytes, o.bytes)
	case KindText:
		return v.text == o.text
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.m) != len(o.m) {
			return false
		}
		// Maps compare without regard to entry order: encode imposes canonical order anyway,
		// so two maps that differ only in insertion order are the same logical value.
		used := make([]bool, len(o.m))
	outer:
		for i := range v.m {
			for j := range o.m {
				if used[j] {
					continue
				}
				if v.m[i].Key.Equal(o.m[j].Key) && v.m[i].Val.Equal(o.m[j].Val) {
					used[j] = true
					continue outer
				}
			}
			return false
		}
		return true
	case KindTag:
		return v.tagNum == o.tagNum && v.tagVal.Equal(o.tagVal)
	default:
		return false
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
