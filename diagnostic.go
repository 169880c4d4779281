package cbor

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Diagnostic renders data in the CBOR diagnostic notation of RFC 8949 §8, e.g. {"a": [1, 2]}.
// It is built entirely on top of the public Tokenize API rather than a second parser: this is a
// thin external consumer of the token stream, not a new core subsystem, the same way a caller
// outside this package could build one.
func Diagnostic(data []byte) (string, error) {
	tokens, err := Tokenize(data)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	rest, err := writeDiagnostic(&sb, tokens)
	if err != nil {
		return "", err
	}
	if len(rest) != 0 {
		return "", ErrExtraItems
	}
	return sb.String(), nil
}

func writeDiagnostic(sb *strings.Builder, tokens []Token) ([]Token, error) {
	if len(tokens) == 0 {
		return nil, ErrUnexpectedEndOfData
	}
	tok := tokens[0]
	rest := tokens[1:]

	switch tok.Type {
	case TokenUint:
		sb.WriteString(strconv.FormatUint(tok.Uint, 10))
		return rest, nil

	case TokenNegInt:
		n := new(big.Int).SetUint64(tok.Uint)
		n.Add(n, big.NewInt(1))
		n.Neg(n)
		sb.WriteString(n.String())
		return rest, nil

	case TokenFloat:
		sb.WriteString(formatDiagnosticFloat(tok.Float))
		return rest, nil

	case TokenTrue:
		sb.WriteString("true")
		return rest, nil
	case TokenFalse:
		sb.WriteString("false")
		return rest, nil
	case TokenNull:
		sb.WriteString("null")
		return rest, nil
	case TokenUndefined:
		sb.WriteString("undefined")
		return rest, nil

	case TokenBytes:
		if tok.Count < 0 {
			sb.WriteString("(_ ")
			r, err := writeDiagnosticChunks(sb, rest, tok.Type)
			if err != nil {
				return nil, err
			}
			sb.WriteString(")")
			return r, nil
		}
		sb.WriteString("h'")
		sb.WriteString(fmt.Sprintf("%x", tok.Bytes))
		sb.WriteString("'")
		return rest, nil

	case TokenString:
		if tok.Count < 0 {
			sb.WriteString("(_ ")
			r, err := writeDiagnosticChunks(sb, rest, tok.Type)
			if err != nil {
				return nil, err
			}
			sb.WriteString(")")
			return r, nil
		}
		sb.WriteString(strconv.Quote(tok.Text))
		return rest, nil

	case TokenArray:
		sb.WriteString("[")
		if tok.Count < 0 {
			sb.WriteString("_ ")
		}
		r := rest
		for i := int64(0); tok.Count < 0 || i < tok.Count; i++ {
			if tok.Count < 0 {
				if len(r) > 0 && r[0].Type == TokenBreak {
					r = r[1:]
					break
				}
			}
			if i > 0 {
				sb.WriteString(", ")
			}
			var err error
			r, err = writeDiagnostic(sb, r)
			if err != nil {
				return nil, err
			}
		}
		sb.WriteString("]")
		return r, nil

	case TokenMap:
		sb.WriteString("{")
		if tok.Count < 0 {
			sb.WriteString("_ ")
		}
		r := rest
		for i := int64(0); tok.Count < 0 || i < tok.Count; i++ {
			if tok.Count < 0 {
				if len(r) > 0 && r[0].Type == TokenBreak {
					r = r[1:]
					break
				}
			}
			if i > 0 {
				sb.WriteString(", ")
			}
			var err error
			r, err = writeDiagnostic(sb, r)
			if err != nil {
				return nil, err
			}
			sb.WriteString(": ")
			r, err = writeDiagnostic(sb, r)
			if err != nil {
				return nil, err
			}
		}
		sb.WriteString("}")
		return r, nil

	case TokenTag:
		sb.WriteString(strconv.FormatUint(tok.TagNum, 10))
		sb.WriteString("(")
		r, err := writeDiagnostic(sb, rest)
		if err != nil {
			return nil, err
		}
		sb.WriteString(")")
		return r, nil

	default:
		return nil, ErrInvalidCbor
	}
}

// writeDiagnosticChunks renders the chunk list of an indefinite-length byte or text string,
// separated by ", ", stopping at the terminating TokenBreak.
func writeDiagnosticChunks(sb *strings.Builder, tokens []Token, chunkType TokenType) ([]Token, error) {
	r := tokens
	first := true
	for {
		if len(r) == 0 {
			return nil, ErrUnexpectedEndOfData
		}
		if r[0].Type == TokenBreak {
			return r[1:], nil
		}
		if !first {
			sb.WriteString(", ")
		}
		first = false
		var err error
		r, err = writeDiagnostic(sb, r)
		if err != nil {
			return nil, err
		}
	}
}

func formatDiagnosticFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}
