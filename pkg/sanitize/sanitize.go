// Package sanitize cleans operator supplied strings before they are stored.
package sanitize

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// droppedText lists elements whose content never counts as text.
var droppedText = map[string]bool{
	"script": true, "style": true, "noscript": true, "iframe": true,
	"noembed": true, "noframes": true, "xmp": true,
}

// Text strips markup from s, removes control characters and collapses
// whitespace into single spaces. Entities are decoded, and markup that only
// appears after decoding is stripped as well, so Text(Text(s)) == Text(s).
func Text(s string) string {
	for {
		out := stripMarkup(s)
		if out == s {
			return out
		}
		s = out
	}
}

func stripMarkup(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))

	var b strings.Builder
	skip := ""
	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapse(b.String())
		case html.TextToken:
			if skip == "" {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			name, _ := z.TagName()
			if tag := string(name); droppedText[tag] {
				skip = tag
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == skip {
				skip = ""
			}
		}
	}
}

// Key lowercases s and keeps only a-z, 0-9, '-' and '_'.
func Key(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return -1
		}
	}, strings.ToLower(s))
}

func collapse(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// scriptAllowList maps the elements a custom analytics script may contain to
// their permitted attributes. data-* attributes are allowed on every element.
var scriptAllowList = map[string]map[string]bool{
	"script": {
		"src": true, "async": true, "defer": true, "type": true, "id": true,
		"crossorigin": true, "integrity": true, "nonce": true, "referrerpolicy": true,
	},
	"noscript": {},
	"img": {
		"src": true, "alt": true, "width": true, "height": true, "style": true,
		"border": true, "referrerpolicy": true,
	},
	"iframe": {
		"src": true, "width": true, "height": true, "style": true, "title": true,
		"frameborder": true, "referrerpolicy": true,
	},
}

// rawTextElements are read by the tokenizer as a single text token up to
// their end tag.
var rawTextElements = map[string]bool{
	"script": true, "style": true, "textarea": true, "title": true, "xmp": true,
	"iframe": true, "noembed": true, "noframes": true, "noscript": true, "plaintext": true,
}

// Script filters operator supplied tracker markup down to scriptAllowList.
// Script bodies are kept verbatim and noscript bodies are filtered recursively.
// Disallowed tags, comments and doctypes are removed, as is any text inside
// other raw text elements. src attributes must be http(s) or relative.
//
// HTML has no self-closing script, iframe or noscript, so <script src="..." />
// is written with an explicit end tag and whatever the tokenizer reads as its
// body is filtered again as markup. An element left open at the end of s is
// closed.
func Script(s string) string {
	out, open := filterMarkup(s)
	if open != "" {
		out += "</" + open + ">"
	}
	return out
}

// filterMarkup does the work of Script and reports the allow-listed raw text
// element still open at the end of s, if any.
func filterMarkup(s string) (string, string) {
	z := html.NewTokenizer(strings.NewReader(s))

	var b strings.Builder
	raw, pending := "", ""
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			open := pending
			if _, ok := scriptAllowList[raw]; ok {
				open = raw
			}
			return strings.TrimSpace(b.String()), open
		case html.TextToken:
			switch raw {
			case "", "script":
				b.Write(z.Raw())
			case "noscript":
				b.WriteString(Script(string(z.Raw())))
			case "/script", "/iframe", "/noscript":
				out, open := filterMarkup(string(z.Raw()))
				b.WriteString(out)
				pending = open
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			selfClosing := tt == html.SelfClosingTagToken
			if rawTextElements[tok.Data] {
				raw = tok.Data
			}
			if attrs, ok := scriptAllowList[tok.Data]; ok {
				writeTag(&b, tok, attrs, selfClosing)
				if selfClosing && raw == tok.Data {
					raw = "/" + tok.Data
				}
			} else if raw == tok.Data {
				raw = "-" + tok.Data
			}
		case html.EndTagToken:
			tok := z.Token()
			if raw == "/"+tok.Data {
				// writeTag already closed the element; close what its body opened
				if pending != "" {
					b.WriteString("</" + pending + ">")
				}
				raw, pending = "", ""
				continue
			}
			if raw == tok.Data || raw == "-"+tok.Data {
				raw = ""
			}
			if _, ok := scriptAllowList[tok.Data]; ok {
				b.WriteString("</" + tok.Data + ">")
			}
		}
	}
}

func writeTag(b *strings.Builder, tok html.Token, allowed map[string]bool, selfClosing bool) {
	b.WriteString("<" + tok.Data)
	for _, attr := range tok.Attr {
		key := strings.ToLower(attr.Key)
		if attr.Namespace != "" || !(allowed[key] || isDataAttr(key)) {
			continue
		}
		if key == "src" && !safeSource(attr.Val) {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(key)
		if attr.Val != "" {
			b.WriteString(`="`)
			b.WriteString(html.EscapeString(attr.Val))
			b.WriteByte('"')
		}
	}
	switch {
	case selfClosing && rawTextElements[tok.Data]:
		b.WriteString("></" + tok.Data + ">")
		return
	case selfClosing:
		b.WriteString(" /")
	}
	b.WriteByte('>')
}

func isDataAttr(key string) bool {
	name, ok := strings.CutPrefix(key, "data-")
	if !ok || name == "" {
		return false
	}
	for _, r := range name {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return false
		}
	}
	return true
}

func safeSource(src string) bool {
	u, err := url.Parse(strings.TrimSpace(src))
	if err != nil {
		return false
	}
	return u.Scheme == "" || u.Scheme == "http" || u.Scheme == "https"
}
