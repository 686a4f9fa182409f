package phone

import "testing"

func TestNormalizeE164FallsBackToTrimmedInput(t *testing.T) {
	cases := map[string]string{
		"  ":            "",
		" not-a-phone ": "not-a-phone",
		"123":           "123",
	}
	for in, want := range cases {
		if got := NormalizeE164(in); got != want {
			t.Fatalf("NormalizeE164(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatInternationalFallsBackToInput(t *testing.T) {
	if got := FormatInternational(" 123 "); got != "123" {
		t.Fatalf("expected trimmed fallback, got %q", got)
	}
}
