package carousel

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseEmbed turns pasted input into an embed URL. Markup containing an
// iframe yields the first iframe's src; anything else is taken as a bare
// URL. ok is false when nothing usable remains.
func ParseEmbed(raw string) (src string, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	if !strings.Contains(strings.ToLower(raw), "<iframe") {
		return raw, true
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", false
	}
	src, _ = doc.Find("iframe").First().Attr("src")
	src = strings.TrimSpace(src)
	return src, src != ""
}
