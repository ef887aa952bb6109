package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "Acme", want: "Acme"},
		{name: "trims and collapses", input: "  Acme \n\t Corp  ", want: "Acme Corp"},
		{name: "strips tags", input: "<b>Acme</b> <i>Corp</i>", want: "Acme Corp"},
		{name: "drops script body", input: "Acme<script>alert(1)</script>", want: "Acme"},
		{name: "decodes entities", input: "AT&amp;T", want: "AT&T"},
		{name: "keeps bare less-than", input: "a < b", want: "a < b"},
		{name: "control characters", input: "Ac\x00me", want: "Acme"},
		{name: "encoded script", input: "Acme &lt;script&gt;alert(1)&lt;/script&gt;", want: "Acme"},
		{name: "encoded tags", input: "&lt;b&gt;Acme&lt;/b&gt; Corp", want: "Acme Corp"},
		{name: "double encoded script", input: "Acme &amp;lt;script&amp;gt;x()&amp;lt;/script&amp;gt;", want: "Acme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Text(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Text(got))
		})
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "promo1", Key("promo1"))
	assert.Equal(t, "spring-sale_2025", Key("Spring-Sale_2025"))
	assert.Equal(t, "newsarticle", Key("news article!"))
	assert.Equal(t, "", Key("ÅÄÖ"))
}

func TestScript_KeepsTrackerMarkup(t *testing.T) {
	input := `<script async src="https://cdn.example.com/t.js" data-site="abc"></script>
<script>window.tracker = window.tracker || []; tracker.push(["init", "abc"]);</script>`

	got := Script(input)

	assert.Contains(t, got, `<script async src="https://cdn.example.com/t.js" data-site="abc"></script>`)
	assert.Contains(t, got, `<script>window.tracker = window.tracker || []; tracker.push(["init", "abc"]);</script>`)
}

func TestScript_FiltersDisallowedMarkup(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		contains   []string
		notContain []string
	}{
		{
			name:       "drops unknown elements but keeps text",
			input:      `<div onclick="x()">hello</div>`,
			contains:   []string{"hello"},
			notContain: []string{"<div", "onclick"},
		},
		{
			name:       "drops event handler attributes",
			input:      `<img src="https://px.example.com/p.gif" onerror="steal()">`,
			contains:   []string{`<img src="https://px.example.com/p.gif">`},
			notContain: []string{"onerror"},
		},
		{
			name:       "drops javascript sources",
			input:      `<script src="javascript:alert(1)"></script>`,
			contains:   []string{"<script></script>"},
			notContain: []string{"javascript:"},
		},
		{
			name:       "drops style element content",
			input:      `<style>body{display:none}</style><script>ok()</script>`,
			contains:   []string{"<script>ok()</script>"},
			notContain: []string{"display:none", "<style"},
		},
		{
			name:       "filters noscript body",
			input:      `<noscript><img src="https://px.example.com/p.gif" onload="x()"><b>bold</b></noscript>`,
			contains:   []string{`<noscript><img src="https://px.example.com/p.gif">bold</noscript>`},
			notContain: []string{"onload", "<b>"},
		},
		{
			name:       "removes comments",
			input:      `<!-- tracker --><script>t()</script>`,
			contains:   []string{"<script>t()</script>"},
			notContain: []string{"<!--"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Script(tt.input)
			for _, s := range tt.contains {
				assert.Contains(t, got, s)
			}
			for _, s := range tt.notContain {
				assert.NotContains(t, got, s)
			}
		})
	}
}

func TestScript_SelfClosingElements(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		want       string
		notContain []string
	}{
		{
			name:  "script",
			input: `<script async src="https://t.example.com/a.js" />`,
			want:  `<script async src="https://t.example.com/a.js"></script>`,
		},
		{
			name:  "iframe",
			input: `<iframe src="https://t.example.com/f" />`,
			want:  `<iframe src="https://t.example.com/f"></iframe>`,
		},
		{
			name:  "followed by an inline script",
			input: `<script src="/a.js" /><script>init()</script>`,
			want:  `<script src="/a.js"></script><script>init()</script>`,
		},
		{
			name:       "markup after it is still filtered",
			input:      `<script src="/a.js" /><img src="/p.gif" onerror="x()"><b>hi</b>`,
			want:       `<script src="/a.js"></script><img src="/p.gif">hi`,
			notContain: []string{"onerror", "<b>"},
		},
		{
			name:  "unterminated body is closed",
			input: `<script src="/a.js" /><script>init()`,
			want:  `<script src="/a.js"></script><script>init()</script>`,
		},
		{
			name:  "unterminated inline script is closed",
			input: `<script>init()`,
			want:  `<script>init()</script>`,
		},
		{
			name:  "img keeps its self-closing form",
			input: `<img src="/p.gif" />`,
			want:  `<img src="/p.gif" />`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Script(tt.input)
			assert.Equal(t, tt.want, got)
			for _, s := range tt.notContain {
				assert.NotContains(t, got, s)
			}
			assert.Equal(t, got, Script(got))
		})
	}
}

func TestScript_Idempotent(t *testing.T) {
	input := `<script async src="https://cdn.example.com/t.js" data-site="abc"></script><noscript><img src="/p.gif" alt="" /></noscript>`
	once := Script(input)
	assert.Equal(t, once, Script(once))
}
