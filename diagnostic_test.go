package cbor

import "testing"

func TestDiagnostic(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		want string
	}{
		{"uint", "00", "0"},
		{"negint", "29", "-10"},
		{"true", "f5", "true"},
		{"null", "f6", "null"},
		{"undefined", "f7", "undefined"},
		{"float", "f93c00", "1"},
		{"infinity", "f97c00", "Infinity"},
		{"neg_infinity", "f9fc00", "-Infinity"},
		{"nan", "f97e00", "NaN"},
		{"bytes", "44deadbeef", "h'deadbeef'"},
		{"empty_bytes", "40", "h''"},
		{"text", "6161", `"a"`},
		{"empty_array", "80", "[]"},
		{"array", "83010203", "[1, 2, 3]"},
		{"map", "a26161016162820203", `{"a": 1, "b": [2, 3]}`},
		{"tag", "c074323031332d30332d32315432303a30343a30305a", `0("2013-03-21T20:04:00Z")`},
		{"indefinite_array", "9f0102ff", "[_ 1, 2]"},
		{"indefinite_map", "bf61610161629f0203ffff", `{_ "a": 1, "b": [_ 2, 3]}`},
		{"indefinite_bytes", "5f42010243030405ff", "(_ h'0102', h'030405')"},
		{"indefinite_text", "7f657374726561646d696e67ff", `(_ "strea", "ming")`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Diagnostic(mustHex(t, tt.hex))
			if err != nil {
				t.Fatalf("Diagnostic failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Diagnostic() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDiagnosticRejectsMalformedInput(t *testing.T) {
	if _, err := Diagnostic(mustHex(t, "83")); err == nil {
		t.Fatalf("expected Diagnostic to fail on a truncated array")
	}
	if _, err := Diagnostic(mustHex(t, "1c")); err == nil {
		t.Fatalf("expected Diagnostic to fail on reserved additional info")
	}
}
