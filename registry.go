package cbor

import "math/big"

// TypeEncoder is a user-supplied encoder for one logical type name. It returns the tokens to
// emit for v and true, or (nil, false) to defer to the default emitter. Returning a non-nil
// empty slice with true omits the value entirely; the caller is then responsible for the
// surrounding container's count still matching.
type TypeEncoder func(v *Value) ([]Token, bool)

// TagDecoder is a user-supplied decoder for one tag number. It is called with the
// already-decoded inner value, not raw bytes.
type TagDecoder func(inner *Value) (*Value, error)

// classify maps a Value onto the closed set of logical type names the type-encoder dispatch
// is keyed by: uint, negint, float, bigint, bool, null, undefined, bytes, string, array,
// map, tag.
func classify(v *Value) string {
	switch v.kind {
	case KindInt:
		mt, _, fits := integerWireForm(v.i)
		if !fits {
			return "bigint"
		}
		if mt == MajorTypeUnsignedInteger {
			return "uint"
		}
		return "negint"
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
		return "string"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindTag:
		return "tag"
	default:
		return ""
	}
}

// integerWireForm reports the major type and minimal argument an Integer encodes to under the
// default rules (arbitrary-precision integers within ±2^64 are still written as plain major
// 0/1), and whether it fits that range at all.
func integerWireForm(i Integer) (MajorType, uint64, bool) {
	if !i.IsBig() {
		n := i.small
		if n >= 0 {
			return MajorTypeUnsignedInteger, uint64(n), true
		}
		return MajorTypeNegativeInteger, uint64(-1 - n), true
	}

	n := i.big
	if n.Sign() >= 0 {
		if n.IsUint64() {
			return MajorTypeUnsignedInteger, n.Uint64(), true
		}
		return 0, 0, false
	}

	// Negative: the wire argument is -1-n, i.e. -(n+1).
	arg := new(big.Int).Neg(n)
	arg.Sub(arg, big.NewInt(1))
	if arg.IsUint64() {
		return MajorTypeNegativeInteger, arg.Uint64(), true
	}
	return 0, 0, false
}

// encodeOptions holds the resolved settings for one Encode call.
type encodeOptions struct {
	float64      bool
	typeEncoders map[string]TypeEncoder
}

// EncodeOption configures Encode, following the same functional-options idiom as
// WriterOption and ReaderOption.
type EncodeOption func(*encodeOptions)

// WithFloat64 disables float minimization: every float that is not normalized to an integer
// (see normalizeFloatToInt) is written as a full 8-byte double.
func WithFloat64() EncodeOption {
	return func(o *encodeOptions) { o.float64 = true }
}

// WithTypeEncoder registers enc as the encoder for the given logical type name, overriding the
// default emitter for values classified with that name.
func WithTypeEncoder(typeName string, enc TypeEncoder) EncodeOption {
	return func(o *encodeOptions) {
		if o.typeEncoders == nil {
			o.typeEncoders = make(map[string]TypeEncoder)
		}
		o.typeEncoders[typeName] = enc
	}
}

func newEncodeOptions(opts []EncodeOption) *encodeOptions {
	o := &encodeOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// decodeOptions holds the resolved settings for one Decode call.
type decodeOptions struct {
	allowIndefinite        bool
	allowUndefined         bool
	allowBigInt            bool
	strict                 bool
	useMaps                bool
	tags                   map[uint64]TagDecoder
	rejectDuplicateMapKeys bool
	maxDepth               int
}

// DecodeOption configures Decode.
type DecodeOption func(*decodeOptions)

// WithAllowIndefinite toggles whether indefinite-length items are accepted (default true).
func WithAllowIndefinite(allow bool) DecodeOption {
	return func(o *decodeOptions) { o.allowIndefinite = allow }
}

// WithAllowUndefined toggles whether the undefined simple value is accepted (default true).
func WithAllowUndefined(allow bool) DecodeOption {
	return func(o *decodeOptions) { o.allowUndefined = allow }
}

// WithAllowBigInt toggles whether integers outside the native int64 range are accepted
// (default true). When false, such integers fail with ErrIntOutOfRange.
func WithAllowBigInt(allow bool) DecodeOption {
	return func(o *decodeOptions) { o.allowBigInt = allow }
}

// WithStrict toggles strict/canonical decoding: every argument must be in its smallest legal
// form and map keys must appear in canonical order (default false).
func WithStrict(strict bool) DecodeOption {
	return func(o *decodeOptions) { o.strict = strict }
}

// WithUseMaps toggles whether non-text map keys are accepted (default false, meaning every
// map key must be text or the decode fails with ErrNonStringMapKey).
func WithUseMaps(useMaps bool) DecodeOption {
	return func(o *decodeOptions) { o.useMaps = useMaps }
}

// WithTag registers dec as the decoder for the given tag number.
func WithTag(number uint64, dec TagDecoder) DecodeOption {
	return func(o *decodeOptions) {
		if o.tags == nil {
			o.tags = make(map[uint64]TagDecoder)
		}
		o.tags[number] = dec
	}
}

// WithRejectDuplicateMapKeys toggles whether repeated keys within one map are rejected
// (default true).
func WithRejectDuplicateMapKeys(reject bool) DecodeOption {
	return func(o *decodeOptions) { o.rejectDuplicateMapKeys = reject }
}

// WithMaxDepth sets the maximum container nesting depth (default 64).
func WithMaxDepth(depth int) DecodeOption {
	return func(o *decodeOptions) { o.maxDepth = depth }
}

func newDecodeOptions(opts []DecodeOption) *decodeOptions {
	o := &decodeOptions{
		allowIndefinite:        true,
		allowUndefined:         true,
		allowBigInt:            true,
		rejectDuplicateMapKeys: true,
		maxDepth:               64,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
