package ogtags

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Candidate names for each field, most preferred first.
var (
	titleTags = []string{"title", "og:title", "twitter:title"}
	descTags  = []string{"description", "og:description", "twitter:description"}
	imageTags = []string{"image", "og:image", "twitter:image"}
)

// extractOGData fills every field of OGData from the <meta> tags in doc.
func extractOGData(doc *html.Node) OGData {
	metas := goquery.NewDocumentFromNode(doc).Find("meta")

	return OGData{
		Title: lookupMeta(metas, titleTags),
		Desc:  lookupMeta(metas, descTags),
		Image: lookupMeta(metas, imageTags),
	}
}

// lookupMeta walks names in order. For each name it looks for the first meta
// tag with a matching name attribute, then the first with a matching property
// attribute. The first tag found ends the search and its content is returned
// even when that content is empty.
func lookupMeta(metas *goquery.Selection, names []string) string {
	for _, name := range names {
		for _, attr := range []string{"name", "property"} {
			if sel := firstWithAttr(metas, attr, name); sel.Length() != 0 {
				content, _ := sel.Attr("content")
				return content
			}
		}
	}

	return ""
}

func firstWithAttr(metas *goquery.Selection, attr, val string) *goquery.Selection {
	return metas.FilterFunction(func(_ int, s *goquery.Selection) bool {
		got, ok := s.Attr(attr)
		return ok && got == val
	}).First()
}
