package cbor

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/x448/float16"
)

// These small helpers back the token layer's raw argument/float I/O (component C1): appending
// and reading big-endian fixed-width integers, UTF-8 validation, and half-precision float
// conversion via the x448/float16 package rather than hand-rolled bit manipulation.

func appendUint16BE(buf []byte, v uint16) []byte {
	return binary.BigEndian.AppendUint16(buf, v)
}

func appendUint32BE(buf []byte, v uint32) []byte {
	return binary.BigEndian.AppendUint32(buf, v)
}

func appendUint64BE(buf []byte, v uint64) []byte {
	return binary.BigEndian.AppendUint64(buf, v)
}

func readUint16BE(b []byte) uint16 { return binary.BigEndian.Uint16(b) }
func readUint32BE(b []byte) uint32 { return binary.BigEndian.Uint32(b) }
func readUint64BE(b []byte) uint64 { return binary.BigEndian.Uint64(b) }

func utf8Valid(b []byte) bool { return utf8.Valid(b) }

func float16FromFloat32(f float32) uint16 { return float16.Fromfloat32(f).Bits() }
func float16ToFloat32(bits uint16) float32 { return float16.Frombits(bits).Float32() }
