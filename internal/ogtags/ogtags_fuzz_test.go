package ogtags

import (
	"slices"
	"strings"
	"testing"
	"unicode/utf8"

	"golang.org/x/net/html"
)

func FuzzExtractOGData(f *testing.F) {
	htmlCases := []string{
		`<html><head><meta property="og:title" content="Test"></head></html>`,
		`<meta property="og:title" content="No HTML tags">`,
		`<html><head>` + strings.Repeat(`<meta property="og:title" content="Many tags">`, 1000) + `</head></html>`,
		`<html><head><meta property="og:title" content="<script>alert('xss')</script>"></head></html>`,
		`<html><head><meta property="og:title" content="Line1&#10;Line2"></head></html>`,
		`<html><head><meta property="og:title" content="` + strings.Repeat("A", 10000) + `"></head></html>`,
		`<html><head><meta property=og:title content=no-quotes></head></html>`,
		`<html>` + strings.Repeat(`<div>`, 1000) + `<meta property="og:title" content="Deep nesting">` + strings.Repeat(`</div>`, 1000) + `</html>`,
		`<html><head><meta name="" content="Empty name"></head></html>`,
		`<html><head><meta content="Content only"></head></html>`,
		`<html><head><meta name="title"></head></html>`,
		``,
		`<html><head><meta property="og:title" content="Кириллица"></head></html>`,
		`<html><head><meta property="og:title" content="中文内容"></head></html>`,
	}

	for _, htmlc := range htmlCases {
		f.Add(htmlc)
	}

	f.Fuzz(func(t *testing.T, htmlContent string) {
		if !utf8.ValidString(htmlContent) {
			t.Skip()
		}

		doc, err := html.Parse(strings.NewReader(htmlContent))
		if err != nil {
			return
		}

		data := extractOGData(doc)

		for field, content := range map[string]string{"title": data.Title, "desc": data.Desc, "image": data.Image} {
			if !utf8.ValidString(content) {
				t.Errorf("invalid UTF-8 in %s: %q", field, content)
			}
		}

		if again := extractOGData(doc); again != data {
			t.Errorf("extractOGData not deterministic: %+v != %+v", data, again)
		}
	})
}

func FuzzLookupMeta(f *testing.F) {
	f.Add("name", "title", "Test Title")
	f.Add("property", "og:description", `A description with "quotes"`)
	f.Add("property", "twitter:image", "https://example.com/a.png")
	f.Add("name", "keywords", "ignored")
	f.Add("property", "og:title", "")

	f.Fuzz(func(t *testing.T, attr, name, content string) {
		if !utf8.ValidString(attr) || !utf8.ValidString(name) || !utf8.ValidString(content) {
			t.Skip()
		}

		doc := &html.Node{Type: html.DocumentNode}
		doc.AppendChild(&html.Node{
			Type: html.ElementNode,
			Data: "meta",
			Attr: []html.Attribute{
				{Key: attr, Val: name},
				{Key: "content", Val: content},
			},
		})

		data := extractOGData(doc)

		// A lone tag is picked up if and only if it names a candidate.
		candidate := (attr == "name" || attr == "property")
		for tags, got := range map[*[]string]string{&titleTags: data.Title, &descTags: data.Desc, &imageTags: data.Image} {
			want := ""
			if candidate && slices.Contains(*tags, name) {
				want = content
			}
			if got != want {
				t.Errorf("%s=%q content=%q: wanted %q, got %q", attr, name, content, want, got)
			}
		}
	})
}
