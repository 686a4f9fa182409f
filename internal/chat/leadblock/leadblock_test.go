package leadblock

import "testing"

func TestExtractWithoutMarkersHasNoCandidate(t *testing.T) {
	if _, ok := Extract("no markers here"); ok {
		t.Fatalf("expected no candidate")
	}
}

func TestExtractMalformedBlockIsTolerated(t *testing.T) {
	inputs := []string{
		"hi<LEAD>{bad json</LEAD>",
		"hi<LEAD>{\"name\":\"Ana\"}",
		"hi<LEAD>[1,2,3]</LEAD>",
		"hi<LEAD></LEAD>",
		"</LEAD>{\"name\":\"Ana\"}<LEAD>",
	}
	for _, in := range inputs {
		if c, ok := Extract(in); ok {
			t.Fatalf("Extract(%q) returned candidate %+v, want none", in, c)
		}
	}
}

func TestExtractParsesCandidate(t *testing.T) {
	c, ok := Extract(`ok<LEAD>{"name":"Ana","email":"a@b.cl","phone":null,"motivo":"x"}</LEAD>`)
	if !ok {
		t.Fatalf("expected candidate")
	}
	if c.Name != "Ana" || c.Email != "a@b.cl" || c.Phone != "" || c.Matter != "x" {
		t.Fatalf("unexpected candidate %+v", c)
	}
}

func TestExtractAcceptsCasoAndSpanishKeys(t *testing.T) {
	c, ok := Extract("Listo.\n<LEAD>\n```json\n{\"nombre\":\"María\",\"telefono\":\"56912345678\",\"caso\":\"arriendo\"}\n```\n</LEAD>")
	if !ok {
		t.Fatalf("expected candidate")
	}
	if c.Name != "María" || c.Phone != "56912345678" || c.Matter != "arriendo" {
		t.Fatalf("unexpected candidate %+v", c)
	}
}

func TestExtractUsesFirstBlockOnly(t *testing.T) {
	c, ok := Extract(`<LEAD>{"name":"Primero"}</LEAD> y <LEAD>{"name":"Segundo"}</LEAD>`)
	if !ok || c.Name != "Primero" {
		t.Fatalf("expected first block, got %+v ok=%v", c, ok)
	}
}

func TestVisibleStripsBlock(t *testing.T) {
	got := Visible("Gracias, te contactaremos.\n<LEAD>{\"name\":\"Ana\"}</LEAD>")
	if got != "Gracias, te contactaremos." {
		t.Fatalf("unexpected visible text %q", got)
	}
	if got := Visible("  sin bloque "); got != "sin bloque" {
		t.Fatalf("unexpected visible text %q", got)
	}
}
