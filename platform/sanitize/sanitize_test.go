package sanitize

import "testing"

func TestText(t *testing.T) {
	got := Text("  <b>Despido</b>   injustificado\x07 ")
	if got != "Despido injustificado" {
		t.Fatalf("unexpected sanitized text %q", got)
	}
}

func TestChatMessageTruncatesOnRuneBoundary(t *testing.T) {
	got := ChatMessage("  señor\x00a  ", 4)
	if got != "seño" {
		t.Fatalf("unexpected chat message %q", got)
	}
}
