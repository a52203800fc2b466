package http

import (
	"strings"
	"testing"
)

func TestMarkdownRender(t *testing.T) {
	md := newMarkdownRenderer()

	out := string(md.Render("## Plano de Ação\n\n- Ligar para **ACME**\n- Revisar | tabela\n\n<img src=x onerror=alert(1)>"))
	if !strings.Contains(out, "<h2") || !strings.Contains(out, "Plano de Ação") {
		t.Errorf("heading not rendered: %s", out)
	}
	if !strings.Contains(out, "<li>Ligar para <strong>ACME</strong></li>") {
		t.Errorf("list not rendered: %s", out)
	}
	if strings.Contains(out, "onerror") {
		t.Errorf("unsafe attribute kept: %s", out)
	}
}

func TestMarkdownRenderEmpty(t *testing.T) {
	if out := newMarkdownRenderer().Render(""); out != "" {
		t.Errorf("Render(\"\") = %q, want empty", out)
	}
}
