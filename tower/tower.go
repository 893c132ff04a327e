// Package tower scrapes tower.jp product pages for per-track credit
// listings, which the store exposes but no catalog API does.
package tower

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"liner/clientutil"
	"liner/credits"
)

const maxSearchResults = 10

// format=121|131 narrows the search to CDs.
const searchFormatFilter = "121|131"

var (
	selSearchItems = cascadia.MustCompile(`.TOL-item-search-result-PC-result-tile-display-item`)
	selItemTitle   = cascadia.MustCompile(`.tr-item-block-info-item-name a`)
	selItemArtist  = cascadia.MustCompile(`.tr-item-block-info-artist-name p a`)
	selItemLink    = cascadia.MustCompile(`a.tr-item-block[href]`)
	selAnyLink     = cascadia.MustCompile(`a[href]`)
	selItemPrice   = cascadia.MustCompile(`.tr-item-block-info-price span`)
	selItemLabel   = cascadia.MustCompile(`.tr-item-block-info-label`)

	selTrackItems  = cascadia.MustCompile(`.TOL-item-info-PC-tab-recorded-contents-list-track-item`)
	selTrackNumber = cascadia.MustCompile(`.TOL-item-info-PC-tab-recorded-contents-list-track-number span`)
	selTrackTitle  = cascadia.MustCompile(`.TOL-item-info-PC-tab-recorded-contents-list-track-title`)
	selTrackLength = cascadia.MustCompile(`.TOL-item-info-PC-tab-recorded-contents-list-track-length`)
	selHiddenArea  = cascadia.MustCompile(`.TOL-item-info-PC-tab-recorded-contents-list-track-hidden-area`)
	selParagraphs  = cascadia.MustCompile(`.TOL-item-info-PC-tab-recorded-contents-list-track-hidden-paragraph`)
	selBoldSpan    = cascadia.MustCompile(`span.is-bold`)
	selLinks       = cascadia.MustCompile(`a`)
)

var productIDExpr = regexp.MustCompile(`/item/(\d+)`)

// Product is one row of the store's search results.
type Product struct {
	Title     string
	Artist    string
	Price     string
	Label     string
	URL       string
	ProductID string
}

type Client struct {
	BaseURL   string
	RateLimit time.Duration
	UserAgent string

	initOnce   sync.Once
	HTTPClient *http.Client
}

func (c *Client) init() {
	c.initOnce.Do(func() {
		c.HTTPClient = clientutil.WrapClient(c.HTTPClient, clientutil.Chain(
			clientutil.WithCache(),
			clientutil.WithUserAgent(c.UserAgent),
			clientutil.WithRateLimit(c.RateLimit),
			clientutil.WithLogging(slog.Default()),
		))
	})
}

// SearchAlbum searches the store for "<album> <artist>" and returns the
// parsed product tiles, at most 10. Tiles missing every useful field are
// dropped. An empty result is a normal outcome.
func (c *Client) SearchAlbum(ctx context.Context, album, artist string) ([]Product, error) {
	query := strings.TrimSpace(album + " " + artist)
	// the site's search chokes on a half-width ampersand
	query = strings.ReplaceAll(query, "&", "＆")

	urlV := url.Values{}
	urlV.Set("format", searchFormatFilter)

	u, _ := url.Parse(c.BaseURL)
	u = u.JoinPath("search", "item", query)
	u.RawQuery = urlV.Encode()

	node, err := c.fetchHTML(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	var products []Product
	for _, item := range cascadia.QueryAll(node, selSearchItems) {
		p := parseProduct(item, c.BaseURL)
		if p.ProductID == "" && p.Title == "" && p.Artist == "" {
			continue
		}
		products = append(products, p)
		if len(products) == maxSearchResults {
			break
		}
	}
	return products, nil
}

// TrackCredits fetches a product detail page and parses its recorded
// contents list. Rows with no usable fields at all are skipped.
func (c *Client) TrackCredits(ctx context.Context, productURL string) ([]credits.Record, error) {
	node, err := c.fetchHTML(ctx, productURL)
	if err != nil {
		return nil, fmt.Errorf("product page: %w", err)
	}

	var records []credits.Record
	for _, item := range cascadia.QueryAll(node, selTrackItems) {
		rec := credits.Record{
			TrackNumber: nodeText(cascadia.Query(item, selTrackNumber)),
			Title:       nodeText(cascadia.Query(item, selTrackTitle)),
			Length:      nodeText(cascadia.Query(item, selTrackLength)),
		}
		if hidden := cascadia.Query(item, selHiddenArea); hidden != nil {
			rec.Roles = parseRoles(hidden)
		}
		if rec.TrackNumber == "" && rec.Title == "" && len(rec.Roles) == 0 {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (c *Client) fetchHTML(ctx context.Context, rawURL string) (*html.Node, error) {
	c.init()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("req page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("non 2xx: status %d", resp.StatusCode)
	}
	node, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return node, nil
}

func parseProduct(item *html.Node, baseURL string) Product {
	var p Product
	p.Title = nodeText(cascadia.Query(item, selItemTitle))
	p.Artist = nodeText(cascadia.Query(item, selItemArtist))
	p.Price = nodeText(cascadia.Query(item, selItemPrice))
	p.Label = nodeText(cascadia.Query(item, selItemLabel))

	link := cascadia.Query(item, selItemLink)
	if link == nil {
		link = cascadia.Query(item, selAnyLink)
	}
	if link != nil {
		href := attr(link, "href")
		switch {
		case strings.HasPrefix(href, "/"):
			p.URL = strings.TrimSuffix(baseURL, "/") + href
		case strings.HasPrefix(href, "http"):
			p.URL = href
		}
		if m := productIDExpr.FindStringSubmatch(href); m != nil {
			p.ProductID = m[1]
		}
	}
	// a product id is the stable way to the detail page
	if p.ProductID != "" {
		p.URL = joinPath(baseURL, "item", p.ProductID)
	}
	return p
}

// parseRoles pulls label → names pairs out of a track's hidden detail
// area. Labels are whatever bold text the page uses ("作詞", "録音", ...),
// with any trailing colon stripped; names come from the links after the
// label, or the remaining div text when there are none.
func parseRoles(hidden *html.Node) map[string]string {
	roles := map[string]string{}
	for _, paragraph := range cascadia.QueryAll(hidden, selParagraphs) {
		for div := paragraph.FirstChild; div != nil; div = div.NextSibling {
			if div.Type != html.ElementNode || div.Data != "div" {
				continue
			}
			labelSpan := cascadia.Query(div, selBoldSpan)
			if labelSpan == nil {
				continue
			}
			label := strings.NewReplacer("：", "", ":", "").Replace(textContent(labelSpan))
			label = strings.TrimSpace(label)
			if label == "" {
				continue
			}

			var names []string
			for _, link := range cascadia.QueryAll(div, selLinks) {
				if t := textContent(link); t != "" {
					names = append(names, t)
				}
			}
			if len(names) > 0 {
				roles[label] = strings.Join(names, ", ")
				continue
			}
			if t := textExcluding(div, labelSpan); t != "" {
				roles[label] = t
			}
		}
	}
	return roles
}

func nodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	return textContent(n)
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	iterText(n, func(s string) {
		sb.WriteString(s)
	})
	return strings.TrimSpace(sb.String())
}

// textExcluding collects n's text skipping the subtree rooted at skip.
func textExcluding(n, skip *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur == skip {
			return
		}
		if cur.Type == html.TextNode {
			sb.WriteString(cur.Data)
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

func iterText(n *html.Node, f func(string)) {
	if n == nil {
		return
	}
	if n.Type == html.TextNode {
		f(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		iterText(c, f)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func joinPath(base string, p ...string) string {
	r, _ := url.JoinPath(base, p...)
	return r
}
