// Package itunes talks to the iTunes Search API for album candidates and
// their artwork.
package itunes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/araddon/dateparse"

	"liner/clientutil"
)

const searchLimit = 10

type StatusError int

func (se StatusError) Error() string {
	return fmt.Sprintf("status %d", int(se))
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

// Quality is one of the artwork resolution tiers the store serves.
type Quality string

const (
	QualitySmall    Quality = "small"    // 100x100
	QualityMedium   Quality = "medium"   // 600x600
	QualityLarge    Quality = "large"    // 1200x1200
	QualityOriginal Quality = "original" // 3000x3000
)

func ParseQuality(s string) (Quality, error) {
	switch q := Quality(strings.ToLower(s)); q {
	case QualitySmall, QualityMedium, QualityLarge, QualityOriginal:
		return q, nil
	}
	return "", fmt.Errorf("unknown artwork quality %q", s)
}

// SearchCandidate is one album result from the catalog. Only the artwork
// bytes of the eventually chosen candidate are ever persisted.
type SearchCandidate struct {
	ArtistName    string  `json:"artistName"`
	AlbumName     string  `json:"collectionName"`
	ArtworkURL100 string  `json:"artworkUrl100"`
	CollectionID  int     `json:"collectionId"`
	ReleaseDate   AnyTime `json:"releaseDate"`
}

// ArtworkURL derives the URL for q from the candidate's 100x100 thumbnail
// URL, the way the store's CDN exposes the other sizes. Empty when the
// candidate has no artwork at all.
func (sc SearchCandidate) ArtworkURL(q Quality) string {
	if sc.ArtworkURL100 == "" {
		return ""
	}
	switch q {
	case QualityMedium:
		return strings.Replace(sc.ArtworkURL100, "100x100bb", "600x600bb", 1)
	case QualityLarge:
		return strings.Replace(sc.ArtworkURL100, "100x100bb", "1200x1200bb", 1)
	case QualityOriginal:
		return strings.Replace(sc.ArtworkURL100, "100x100bb", "3000x3000bb", 1)
	}
	return sc.ArtworkURL100
}

// Search queries the store for albums matching term in the given
// storefront country. An empty result list is a normal outcome.
func (c *Client) Search(ctx context.Context, term, country string) ([]SearchCandidate, error) {
	urlV := url.Values{}
	urlV.Set("term", term)
	urlV.Set("country", country)
	urlV.Set("entity", "album")
	urlV.Set("media", "music")
	urlV.Set("limit", fmt.Sprint(searchLimit))

	u, _ := url.Parse(joinPath(c.BaseURL, "search"))
	u.RawQuery = urlV.Encode()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)

	var sr struct {
		Results []SearchCandidate `json:"results"`
	}
	if err := c.request(req, &sr); err != nil {
		return nil, fmt.Errorf("request search: %w", err)
	}
	return sr.Results, nil
}

// Download fetches raw artwork bytes.
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	c.init()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("store returned non 2xx: %w", StatusError(resp.StatusCode))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read artwork: %w", err)
	}
	return data, nil
}

func (c *Client) request(r *http.Request, dest any) error {
	c.init()

	resp, err := c.HTTPClient.Do(r)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("store returned non 2xx: %w", StatusError(resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type AnyTime struct {
	time.Time
}

func (at *AnyTime) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str == "" {
		return nil
	}
	var err error
	at.Time, err = dateparse.ParseAny(str)
	if err != nil {
		return fmt.Errorf("parse any: %w", err)
	}
	return nil
}

func joinPath(base string, p ...string) string {
	r, _ := url.JoinPath(base, p...)
	return r
}
