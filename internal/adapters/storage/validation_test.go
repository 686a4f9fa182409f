package storage

import "testing"

func TestValidateContentType(t *testing.T) {
	if err := ValidateContentType("Application/PDF; charset=binary"); err != nil {
		t.Fatalf("expected pdf to be allowed: %v", err)
	}
	if err := ValidateContentType("application/x-msdownload"); err == nil {
		t.Fatalf("expected executable to be rejected")
	}
}

func TestValidateFileSize(t *testing.T) {
	if err := ValidateFileSize(0, 10); err == nil {
		t.Fatalf("expected empty file to be rejected")
	}
	if err := ValidateFileSize(11, 10); err == nil {
		t.Fatalf("expected oversize file to be rejected")
	}
	if err := ValidateFileSize(10, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSafeFileName(t *testing.T) {
	cases := map[string]string{
		"../../etc/passwd":          "passwd",
		`C:\Users\ana\contrato.pdf`: "contrato.pdf",
		"  \"finiquito\".pdf ":      "finiquito.pdf",
		"..":                        "archivo",
	}
	for in, want := range cases {
		if got := SafeFileName(in); got != want {
			t.Fatalf("SafeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}
