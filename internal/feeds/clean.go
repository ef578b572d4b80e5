package feeds

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const blockElements = "br,p,div,li,ul,ol,h1,h2,h3,h4,h5,h6,tr,td,th,blockquote,section,article"

// strips markup from a feed fragment and collapses whitespace; block elements
// become word breaks
func CleanHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return collapseSpace(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapseSpace(fragment)
	}

	doc.Find("script,style,noscript").Remove()
	doc.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.AfterHtml(" ")
	})

	return collapseSpace(doc.Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
