package cbor

// CompareCanonical orders two encoded map keys: shorter keys sort before longer ones, and
// keys of equal length compare bytewise unsigned. This is the original RFC 7049 §3.9 rule,
// retained deliberately over RFC 8949 §4.2.1's pure bytewise order.
//
// It returns a negative number if a < b, zero if equal, and a positive number if a > b.
func CompareCanonical(a, b []byte) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
