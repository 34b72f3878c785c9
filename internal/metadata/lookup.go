// Package metadata finds cover art for finished audiobooks and embeds
// title and cover tags into the m4b artifact. Every failure here is
// non-fatal: the audio file is the deliverable and ships untagged when
// lookup or embedding breaks.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bookvoice/internal/services"
)

// Lookup finds a cover image for a book title.
type Lookup interface {
	CoverImage(ctx context.Context, title string) (Image, error)
}

// Image is a downloaded cover.
type Image struct {
	Data []byte
	// MIME is the content type reported by the image host.
	MIME string
	URL  string
}

// SearchClient queries the Google Custom Search JSON API for book covers.
type SearchClient struct {
	apiKey     string
	engineID   string
	baseURL    string
	httpClient *http.Client
}

// Option configures a SearchClient.
type Option func(*SearchClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *SearchClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewSearchClient creates a cover lookup client.
func NewSearchClient(apiKey, engineID, baseURL string, timeout time.Duration, opts ...Option) (*SearchClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("search api key required")
	}
	engineID = strings.TrimSpace(engineID)
	if engineID == "" {
		return nil, errors.New("search engine id required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("search base url required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &SearchClient{
		apiKey:     apiKey,
		engineID:   engineID,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

var _ Lookup = (*SearchClient)(nil)

// Query ladder: most specific first, matching how a human would narrow a
// cover search.
var queryFormats = []string{
	`"%s" book cover`,
	`"%s"`,
	`%s book cover`,
	`%s`,
}

var imageSizes = []string{"XLARGE", "LARGE", "MEDIUM", "SMALL"}

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/107.0.0.0 Safari/537.36"

type searchResponse struct {
	Items []struct {
		Link string `json:"link"`
	} `json:"items"`
}

// CoverImage walks the query/size ladder until an image both matches and
// downloads. Quota or auth errors abort the ladder immediately.
func (c *SearchClient) CoverImage(ctx context.Context, title string) (Image, error) {
	for _, format := range queryFormats {
		for _, size := range imageSizes {
			query := fmt.Sprintf(format, title)
			links, err := c.search(ctx, query, size)
			if err != nil {
				return Image{}, err
			}
			for _, link := range links {
				image, err := c.download(ctx, link)
				if err != nil {
					continue
				}
				return image, nil
			}
		}
	}
	return Image{}, services.Wrap(services.ErrMetadata, "postprocess", "cover lookup",
		fmt.Sprintf("no downloadable cover for %q", title), nil)
}

func (c *SearchClient) search(ctx context.Context, query, size string) ([]string, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", query)
	params.Set("searchType", "image")
	params.Set("num", "3")
	params.Set("imgSize", size)
	params.Set("safe", "off")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, services.Wrap(services.ErrMetadata, "postprocess", "cover lookup", "build request", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrMetadata, "postprocess", "cover lookup", "search request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		return nil, services.Wrap(services.ErrMetadata, "postprocess", "cover lookup",
			fmt.Sprintf("search API refused with status %d (quota?)", resp.StatusCode), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrMetadata, "postprocess", "cover lookup",
			fmt.Sprintf("search API status %d", resp.StatusCode), nil)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, services.Wrap(services.ErrMetadata, "postprocess", "cover lookup", "decode response", err)
	}
	links := make([]string, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.Link != "" {
			links = append(links, item.Link)
		}
	}
	return links, nil
}

func (c *SearchClient) download(ctx context.Context, link string) (Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return Image{}, err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Image{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Image{}, fmt.Errorf("image download status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return Image{}, err
	}
	if len(data) == 0 {
		return Image{}, errors.New("empty image body")
	}
	return Image{Data: data, MIME: resp.Header.Get("Content-Type"), URL: link}, nil
}
