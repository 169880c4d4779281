package cbor

import "math/big"

// Decode parses exactly one CBOR item from data and returns its logical value. Any bytes
// remaining after that single item fail with ErrNotAtEnd: Decode deliberately does not
// support multi-item streaming.
func Decode(data []byte, opts ...DecodeOption) (*Value, error) {
	o := newDecodeOptions(opts)
	r := NewCborReader(data)
	if o.strict {
		r.conformanceMode = ConformanceStrict
	} else {
		r.conformanceMode = ConformanceLax
	}

	v, err := decodeValue(r, o, 0)
	if err != nil {
		return nil, err
	}
	if r.offset != len(r.data) {
		return nil, NewCborError(ErrNotAtEnd, r.offset, "trailing bytes after root value")
	}
	return v, nil
}

func decodeValue(r *CborReader, o *decodeOptions, depth int) (*Value, error) {
	if depth > o.maxDepth {
		return nil, NewCborError(ErrNestingDepthExceeded, r.offset, "")
	}

	startOffset := r.offset
	tok, err := ReadToken(r)
	if err != nil {
		return nil, wrapOffset(err, startOffset)
	}

	switch tok.Type {
	case TokenBreak:
		return nil, NewCborError(ErrUnexpectedBreak, startOffset, "")

	case TokenUint:
		if tok.Uint > maxInt64AsUint64 {
			if !o.allowBigInt {
				return nil, NewCborError(ErrIntOutOfRange, startOffset, "")
			}
			return BigInt(new(big.Int).SetUint64(tok.Uint)), nil
		}
		return Int(int64(tok.Uint)), nil

	case TokenNegInt:
		if tok.Uint <= maxInt64AsUint64 {
			return Int(-1 - int64(tok.Uint)), nil
		}
		if !o.allowBigInt {
			return nil, NewCborError(ErrIntOutOfRange, startOffset, "")
		}
		n := new(big.Int).SetUint64(tok.Uint)
		n.Add(n, big.NewInt(1))
		n.Neg(n)
		return BigInt(n), nil

	case TokenFloat:
		if o.strict && floatMinimalWidth(tok.Float) != tok.FloatWidth {
			return nil, NewCborError(ErrNonCanonical, startOffset, "non-minimal float width")
		}
		return Float(tok.Float), nil

	case TokenFalse:
		return Bool(false), nil
	case TokenTrue:
		return Bool(true), nil
	case TokenNull:
		return Null(), nil
	case TokenUndefined:
		if !o.allowUndefined {
			return nil, NewCborError(ErrUndefinedNotAllowed, startOffset, "")
		}
		return Undefined(), nil

	case TokenBytes:
		if tok.Count < 0 {
			if !o.allowIndefinite {
				return nil, NewCborError(ErrIndefiniteLengthNotAllowed, startOffset, "")
			}
			payload, err := readIndefiniteBytes(r)
			if err != nil {
				return nil, err
			}
			return Bytes(payload), nil
		}
		return Bytes(tok.Bytes), nil

	case TokenString:
		if tok.Count < 0 {
			if !o.allowIndefinite {
				return nil, NewCborError(ErrIndefiniteLengthNotAllowed, startOffset, "")
			}
			text, err := readIndefiniteText(r)
			if err != nil {
				return nil, err
			}
			return Text(text), nil
		}
		return Text(tok.Text), nil

	case TokenArray:
		return decodeArray(r, o, tok, depth)

	case TokenMap:
		return decodeMap(r, o, tok, depth)

	case TokenTag:
		inner, err := decodeValue(r, o, depth+1)
		if err != nil {
			return nil, err
		}
		dec, ok := o.tags[tok.TagNum]
		if !ok {
			return nil, NewCborError(ErrUnknownTag, startOffset, "")
		}
		v, err := dec(inner)
		if err != nil {
			return nil, wrapOffset(err, startOffset)
		}
		return v, nil

	default:
		return nil, NewCborError(ErrInvalidCbor, startOffset, "")
	}
}

// maxInt64AsUint64 is math.MaxInt64 reinterpreted as uint64: the boundary below which a
// TokenUint/TokenNegInt wire argument fits the native int64 path.
const maxInt64AsUint64 = 1<<63 - 1

func wrapOffset(err error, offset int) error {
	if _, ok := err.(*CborError); ok {
		return err
	}
	return NewCborError(err, offset, "")
}

// readIndefiniteBytes reassembles an indefinite-length byte string's chunks. r.offset is
// positioned right after the opening indefinite-length initial byte.
func readIndefiniteBytes(r *CborReader) ([]byte, error) {
	var buf []byte
	for {
		if r.offset >= len(r.data) {
			return nil, NewCborError(ErrUnexpectedEndOfData, r.offset, "unterminated indefinite-length byte string")
		}
		if r.data[r.offset] == breakByte {
			r.offset++
			return buf, nil
		}
		chunkStart := r.offset
		chunk, err := ReadToken(r)
		if err != nil {
			return nil, wrapOffset(err, chunkStart)
		}
		if chunk.Type != TokenBytes || chunk.Count < 0 {
			return nil, NewCborError(ErrIndefiniteChunkTypeMismatch, chunkStart, "")
		}
		buf = append(buf, chunk.Bytes...)
	}
}

// readIndefiniteText reassembles an indefinite-length text string's chunks.
func readIndefiniteText(r *CborReader) (string, error) {
	var buf []byte
	for {
		if r.offset >= len(r.data) {
			return "", NewCborError(ErrUnexpectedEndOfData, r.offset, "unterminated indefinite-length text string")
		}
		if r.data[r.offset] == breakByte {
			r.offset++
			return string(buf), nil
		}
		chunkStart := r.offset
		chunk, err := ReadToken(r)
		if err != nil {
			return "", wrapOffset(err, chunkStart)
		}
		if chunk.Type != TokenString || chunk.Count < 0 {
			return "", NewCborError(ErrIndefiniteChunkTypeMismatch, chunkStart, "")
		}
		buf = append(buf, chunk.Text...)
	}
}

func decodeArray(r *CborReader, o *decodeOptions, tok Token, depth int) (*Value, error) {
	if tok.Count < 0 {
		if !o.allowIndefinite {
			return nil, NewCborError(ErrIndefiniteLengthNotAllowed, r.offset, "")
		}
		var items []*Value
		for {
			if r.offset >= len(r.data) {
				return nil, NewCborError(ErrUnexpectedEndOfData, r.offset, "unterminated indefinite-length array")
			}
			if r.data[r.offset] == breakByte {
				r.offset++
				return Array(items...), nil
			}
			el, err := decodeValue(r, o, depth+1)
			if err != nil {
				return nil, err
			}
			items = append(items, el)
		}
	}

	items := make([]*Value, tok.Count)
	for i := range items {
		el, err := decodeValue(r, o, depth+1)
		if err != nil {
			return nil, err
		}
		items[i] = el
	}
	return Array(items...), nil
}

// decodeMap applies the map-decoding rules: duplicate-key rejection, canonical key order
// validation in strict mode, and the non-string-key check gated by UseMaps. Key ordering
// and duplication are both judged on each key's own canonical encoding, not on Value.Equal,
// so two keys that Value.Equal tells apart but that re-encode to the same bytes (e.g. a float
// key 1.0, normalized to the integer 1 on encode, and the integer key 1) count as duplicates.
func decodeMap(r *CborReader, o *decodeOptions, tok Token, depth int) (*Value, error) {
	var entries []MapEntry
	var prevKeyBytes []byte
	haveKeyBytes := false
	seen := make(map[string]bool)

	appendEntry := func(k, v *Value) error {
		if !o.useMaps && k.Kind() != KindText {
			return NewCborError(ErrNonStringMapKey, r.offset, "")
		}
		keyBytes, err := Encode(k)
		if err != nil {
			return NewCborError(err, r.offset, "")
		}
		if o.rejectDuplicateMapKeys {
			s := string(keyBytes)
			if seen[s] {
				return NewCborError(ErrDuplicateKey, r.offset, "")
			}
			seen[s] = true
		}
		if o.strict {
			if haveKeyBytes && CompareCanonical(prevKeyBytes, keyBytes) >= 0 {
				return NewCborError(ErrUnsortedKeys, r.offset, "")
			}
			prevKeyBytes, haveKeyBytes = keyBytes, true
		}
		entries = append(entries, MapEntry{Key: k, Val: v})
		return nil
	}

	if tok.Count < 0 {
		if !o.allowIndefinite {
			return nil, NewCborError(ErrIndefiniteLengthNotAllowed, r.offset, "")
		}
		for {
			if r.offset >= len(r.data) {
				return nil, NewCborError(ErrUnexpectedEndOfData, r.offset, "unterminated indefinite-length map")
			}
			if r.data[r.offset] == breakByte {
				r.offset++
				return Map(entries...), nil
			}
			k, err := decodeValue(r, o, depth+1)
			if err != nil {
				return nil, err
			}
			val, err := decodeValue(r, o, depth+1)
			if err != nil {
				return nil, err
			}
			if err := appendEntry(k, val); err != nil {
				return nil, err
			}
		}
	}

	for i := int64(0); i < tok.Count; i++ {
		k, err := decodeValue(r, o, depth+1)
		if err != nil {
			return nil, err
		}
		val, err := decodeValue(r, o, depth+1)
		if err != nil {
			return nil, err
		}
		if err := appendEntry(k, val); err != nil {
			return nil, err
		}
	}
	return Map(entries...), nil
}
