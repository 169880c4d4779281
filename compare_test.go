package cbor

import "testing"

func TestCompareCanonical(t *testing.T) {
	tests := []struct {
		name string
		a, b []byte
		want int
	}{
		{"equal", []byte("abc"), []byte("abc"), 0},
		{"shorter_first", []byte("a"), []byte("bb"), -1},
		{"longer_first", []byte("bb"), []byte("a"), 1},
		{"same_length_bytewise_less", []byte("a"), []byte("b"), -1},
		{"same_length_bytewise_greater", []byte("b"), []byte("a"), 1},
		{"length_beats_bytewise", []byte("z"), []byte("aa"), -1},
		{"empty_vs_nonempty", []byte{}, []byte{0}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareCanonical(tt.a, tt.b)
			if sign(got) != sign(tt.want) {
				t.Errorf("CompareCanonical(%q, %q) = %d, want sign %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
