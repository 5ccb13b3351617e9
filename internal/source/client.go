// internal/source/client.go
package source

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/javajoker/autoimport/internal/config"
)

// PageCache stores fetched listing pages between runs.
type PageCache interface {
	GetPage(ctx context.Context, key string) (string, bool)
	SetPage(ctx context.Context, key, html string)
}

// Client talks to the partners API and the public site of the marketplace.
// Requests are serialized through one token bucket.
type Client struct {
	cfg     config.SourceConfig
	api     *http.Client
	web     *http.Client
	cache   PageCache
	sleep   func(ctx context.Context, d time.Duration) error
	backoff retryablehttp.Backoff
}

type Option func(*Client)

func WithPageCache(cache PageCache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithSleeper replaces the wait used between feature retries.
func WithSleeper(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = fn }
}

// WithBackoff replaces the wait computed between API retries.
func WithBackoff(fn retryablehttp.Backoff) Option {
	return func(c *Client) { c.backoff = fn }
}

func NewClient(cfg config.SourceConfig, opts ...Option) *Client {
	c := &Client{cfg: cfg, sleep: Sleep, backoff: retryablehttp.DefaultBackoff}
	for _, opt := range opts {
		opt(c)
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1)
	}

	c.api = newRetryClient(limiter, cfg.RequestTimeout, cfg.RetryTotal, cfg.RetryBackoff, c.backoff)
	// the public site gets the limiter but no retries
	c.web = &http.Client{
		Timeout:   cfg.RequestTimeout,
		Transport: &limitTransport{next: http.DefaultTransport, limiter: limiter},
	}
	return c
}

// ListParams selects one page of the listing feed. Empty States and Lang
// fall back to the configured values.
type ListParams struct {
	Page     int
	PageSize int
	States   string
	Lang     string
}

func (c *Client) ListAdverts(ctx context.Context, p ListParams) (*AdvertList, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("page_size", strconv.Itoa(p.PageSize))
	if states := firstNonBlank(p.States, c.cfg.States); states != "" {
		q.Set("states", states)
	}
	if lang := firstNonBlank(p.Lang, c.cfg.Lang); lang != "" {
		q.Set("lang", lang)
	}

	raw, err := c.getJSON(ctx, "/adverts", q)
	if err != nil {
		return nil, fmt.Errorf("list adverts page %d: %w", p.Page, err)
	}
	list := ParseAdvertList(raw)
	return &list, nil
}

func (c *Client) GetAdvert(ctx context.Context, id string) (*Advert, error) {
	raw, err := c.getJSON(ctx, "/adverts/"+url.PathEscape(id), c.langQuery())
	if err != nil {
		return nil, fmt.Errorf("get advert %s: %w", id, err)
	}
	ad := ParseAdvert(raw)
	if ad.ID == "" {
		ad.ID = id
	}
	return &ad, nil
}

// GetAdvertFeatures retries HTTP 429 with a linearly growing sleep, up to
// the configured attempt count. Any other failure returns immediately.
func (c *Client) GetAdvertFeatures(ctx context.Context, id string) (*FeatureSet, error) {
	attempts := c.cfg.FeatureRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		raw, err := c.getJSON(ctx, "/adverts/"+url.PathEscape(id)+"/features", c.langQuery())
		if err == nil {
			set := ParseFeatures(raw)
			return &set, nil
		}
		lastErr = err
		if !IsStatus(err, http.StatusTooManyRequests) || attempt == attempts {
			break
		}

		wait := c.cfg.FeatureRetrySleep * time.Duration(attempt)
		logrus.WithFields(logrus.Fields{
			"external_id": id,
			"attempt":     attempt,
		}).Warnf("Features rate limited, sleeping %s", wait)
		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("get advert %s features: %w", id, lastErr)
}

// PageURL is the public listing page of an advert.
func (c *Client) PageURL(id string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(c.cfg.SiteBaseURL, "/"), c.cfg.HTMLLang, url.PathEscape(id))
}

// FetchPage downloads and parses the public listing page. It never fails;
// an unavailable page is reported through PageResult.Err.
func (c *Client) FetchPage(ctx context.Context, id string) PageResult {
	key := fmt.Sprintf("page:%s:%s", c.cfg.HTMLLang, id)

	body, cached := "", false
	if c.cache != nil {
		body, cached = c.cache.GetPage(ctx, key)
	}
	if !cached {
		raw, err := c.get(ctx, c.web, c.PageURL(id), nil)
		if err != nil {
			return PageResult{Err: fmt.Errorf("fetch page %s: %w", id, err)}
		}
		body = string(raw)
		if c.cache != nil {
			c.cache.SetPage(ctx, key, body)
		}
	}

	page, err := ParsePage(strings.NewReader(body))
	if err != nil {
		return PageResult{HTML: body, Err: fmt.Errorf("parse page %s: %w", id, err)}
	}
	return PageResult{Page: page, HTML: body}
}

func (c *Client) langQuery() url.Values {
	q := url.Values{}
	if c.cfg.Lang != "" {
		q.Set("lang", c.cfg.Lang)
	}
	return q
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values) ([]byte, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	u := strings.TrimRight(c.cfg.APIBaseURL, "/") + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	token := base64.StdEncoding.EncodeToString([]byte(c.cfg.APIKey + ":"))
	raw, err := c.get(ctx, c.api, u, http.Header{
		"Authorization": {"Basic " + token},
		"Accept":        {"application/json"},
	})
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%s: %w", u, ErrMalformedResponse)
	}
	return raw, nil
}

func (c *Client) get(ctx context.Context, hc *http.Client, u string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Method: req.Method, URL: u, StatusCode: resp.StatusCode}
	}
	return buf.Bytes(), nil
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
