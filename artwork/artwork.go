// Package artwork picks and tidies up artwork URLs.
package artwork

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/amonks/tastes/limiter"
	"github.com/amonks/tastes/request"
)

// Apple artwork URLs end in a size-and-format path segment, like
// ".../source/100x100bb.jpg".
var sizeRE = regexp.MustCompile(`/(\d+)x(\d+)(bb|cc|sr)?\.(jpg|jpeg|png|webp)$`)

// Upscale rewrites a sized artwork URL to the given square size. URLs
// that don't look sized are returned unchanged.
func Upscale(imageURL string, size int) string {
	if size <= 0 || !sizeRE.MatchString(imageURL) {
		return imageURL
	}
	return sizeRE.ReplaceAllString(imageURL, fmt.Sprintf("/%dx%d${3}.${4}", size, size))
}

// Scraper finds artwork on a song's external page.
type Scraper struct {
	client *request.Client
	lim    *limiter.Limiter
}

func NewScraper(client *request.Client, lim *limiter.Limiter) *Scraper {
	return &Scraper{client: client, lim: lim}
}

// FromPage fetches the page and returns its og:image, or "" if the page
// has none.
func (s *Scraper) FromPage(ctx context.Context, pageURL string) (string, error) {
	doc, err := s.client.FetchHTML(ctx, s.lim, pageURL)
	if err != nil {
		return "", err
	}
	return openGraphImage(doc, pageURL), nil
}

func openGraphImage(doc *goquery.Document, pageURL string) string {
	var found string
	doc.Find(`meta[property="og:image"], meta[name="twitter:image"]`).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		content, ok := sel.Attr("content")
		if !ok || strings.TrimSpace(content) == "" {
			return true
		}
		found = resolve(pageURL, strings.TrimSpace(content))
		return false
	})
	return found
}

func resolve(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
