package news

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"

	"backoffice/internal/config"
	"backoffice/internal/logging"
	"backoffice/internal/services"
)

const (
	cacheKey         = "dashboardnews"
	maxFeedBodyBytes = 1 << 20
)

// Fetch outcomes reported to the Recorder.
const (
	OutcomeCached  = "cached"
	OutcomeFetched = "fetched"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
)

// Item is a single entry of the remote news feed. Every field is display
// text; see UnmarshalJSON.
type Item struct {
	ID            string
	Type          string
	Title         string
	Teaser        string
	Link          string
	Author        string
	DateCreated   string
	DateChanged   string
	TargetVersion string
}

// UnmarshalJSON accepts any scalar for any field, so `"id": "7"` and
// `"target_version": 3.1` decode alike. Objects and arrays in a field
// decode as empty text; unknown fields are ignored.
func (i *Item) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*i = Item{
		ID:            scalarText(raw["id"]),
		Type:          scalarText(raw["type"]),
		Title:         scalarText(raw["title"]),
		Teaser:        scalarText(raw["teaser"]),
		Link:          scalarText(raw["link"]),
		Author:        scalarText(raw["author"]),
		DateCreated:   scalarText(raw["datecreated"]),
		DateChanged:   scalarText(raw["datechanged"]),
		TargetVersion: scalarText(raw["target_version"]),
	}
	return nil
}

func scalarText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return ""
	}
	switch v := v.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// IsAlert reports whether the item is an alert. Any other type is treated as
// information.
func (i Item) IsAlert() bool {
	return i.Type == "alert"
}

// Selection holds at most one alert and one information item.
type Selection struct {
	Alert       *Item
	Information *Item
}

// Empty reports whether nothing was selected.
func (s Selection) Empty() bool {
	return s.Alert == nil && s.Information == nil
}

// Select picks the first alert and the first information item that target
// no specific version or a version newer than current.
func Select(items []Item, current string) Selection {
	var sel Selection
	for i := range items {
		item := items[i]
		if item.TargetVersion != "" && CompareVersions(item.TargetVersion, current) <= 0 {
			continue
		}
		if item.IsAlert() {
			if sel.Alert == nil {
				sel.Alert = &item
			}
		} else if sel.Information == nil {
			sel.Information = &item
		}
		if sel.Alert != nil && sel.Information != nil {
			break
		}
	}
	return sel
}

// Recorder observes fetch outcomes.
type Recorder interface {
	ObserveNewsFetch(outcome string)
}

// Feed fetches and caches the dashboard news.
type Feed struct {
	source     string
	version    string
	driver     string
	httpClient *http.Client
	cache      *ttlcache.Cache[string, Selection]
	group      singleflight.Group
	logger     *slog.Logger
	recorder   Recorder
}

// Option configures a Feed.
type Option func(*Feed)

// WithHTTPClient overrides the HTTP client built from the proxy and timeout
// settings.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Feed) {
		if client != nil {
			f.httpClient = client
		}
	}
}

// WithRecorder reports fetch outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(f *Feed) {
		f.recorder = r
	}
}

// New creates a Feed for the configured source. driver names the database
// platform reported to the source.
func New(cfg *config.Config, driver string, logger *slog.Logger, opts ...Option) (*Feed, error) {
	if cfg == nil {
		return nil, fmt.Errorf("news feed: config is nil")
	}
	client, err := newHTTPClient(cfg)
	if err != nil {
		return nil, err
	}
	ttl := time.Duration(cfg.News.CacheTTLSeconds) * time.Second
	feed := &Feed{
		source:     cfg.News.Source,
		version:    cfg.Site.Version,
		driver:     driver,
		httpClient: client,
		cache: ttlcache.New[string, Selection](
			ttlcache.WithTTL[string, Selection](ttl),
			ttlcache.WithDisableTouchOnHit[string, Selection](),
		),
		logger: logging.NewComponentLogger(logger, "news"),
	}
	for _, opt := range opts {
		opt(feed)
	}
	return feed, nil
}

// Source returns the configured feed URL.
func (f *Feed) Source() string {
	return f.source
}

// Enabled reports whether a source is configured.
func (f *Feed) Enabled() bool {
	return f != nil && f.source != ""
}

// Start runs the cache's expiry loop until Stop is called.
func (f *Feed) Start() {
	go f.cache.Start()
}

// Stop halts the expiry loop.
func (f *Feed) Stop() {
	f.cache.Stop()
}

// Invalidate drops the cached selection.
func (f *Feed) Invalidate() {
	f.cache.Delete(cacheKey)
}

// Fetch returns the cached selection or fetches a fresh one. Concurrent
// misses share a single request. Transport failures return an error marked
// services.ErrTransient; an invalid feed yields an empty selection that is
// not cached.
func (f *Feed) Fetch(ctx context.Context, host string) (Selection, error) {
	if !f.Enabled() {
		return Selection{}, nil
	}
	if entry := f.cache.Get(cacheKey); entry != nil {
		f.logger.InfoContext(ctx, "Using cached data", logging.Event("news"))
		f.observe(OutcomeCached)
		return entry.Value(), nil
	}

	result, err, _ := f.group.Do(cacheKey, func() (any, error) {
		return f.fetch(context.WithoutCancel(ctx), host)
	})
	if err != nil {
		return Selection{}, err
	}
	return result.(Selection), nil
}

func (f *Feed) fetch(ctx context.Context, host string) (Selection, error) {
	f.logger.InfoContext(ctx, "Fetching from remote server: "+f.source, logging.Event("news"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.requestURL(host), nil)
	if err != nil {
		return Selection{}, services.Wrap(services.ErrConfiguration, "news", "build request", "invalid source", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return Selection{}, f.transportFailure(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return Selection{}, f.transportFailure(ctx, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBodyBytes))
	if err != nil {
		return Selection{}, f.transportFailure(ctx, err)
	}

	var items []Item
	if err := json.Unmarshal(body, &items); err != nil || len(items) == 0 {
		attrs := []logging.Attr{logging.Event("news")}
		if err != nil {
			attrs = append(attrs, logging.Error(err))
		}
		logging.ErrorWithContext(ctx, f.logger, "Invalid JSON feed returned", "news_invalid_feed", attrs...)
		f.observe(OutcomeInvalid)
		return Selection{}, nil
	}

	selection := Select(items, f.version)
	f.cache.Set(cacheKey, selection, ttlcache.DefaultTTL)
	f.observe(OutcomeFetched)
	return selection, nil
}

func (f *Feed) transportFailure(ctx context.Context, err error) error {
	logging.CriticalWithContext(ctx, f.logger, "Error occurred during newsfeed fetch", "news_fetch_failed",
		logging.Event("exception"),
		logging.String("source", f.source),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check network access to the news source and proxy settings"),
	)
	f.observe(OutcomeFailed)
	return services.Wrap(services.ErrTransient, "news", "fetch", "unable to connect to "+f.source, err)
}

func (f *Feed) requestURL(host string) string {
	query := url.Values{}
	query.Set("v", f.version)
	query.Set("p", strings.TrimPrefix(runtime.Version(), "go"))
	query.Set("db", f.driver)
	query.Set("name", base64.StdEncoding.EncodeToString([]byte(host)))

	sep := "?"
	if strings.Contains(f.source, "?") {
		sep = "&"
	}
	return f.source + sep + query.Encode()
}

func (f *Feed) observe(outcome string) {
	if f.recorder != nil {
		f.recorder.ObserveNewsFetch(outcome)
	}
}

func newHTTPClient(cfg *config.Config) (*http.Client, error) {
	proxy, err := cfg.ProxyURL()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "news", "proxy", "invalid proxy", err)
	}
	connectTimeout := time.Duration(cfg.News.ConnectTimeoutSeconds) * time.Second
	transport := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: connectTimeout}).DialContext,
		TLSHandshakeTimeout:   connectTimeout,
		ResponseHeaderTimeout: 4 * connectTimeout,
	}
	if proxy != nil {
		transport.Proxy = http.ProxyURL(proxy)
	}
	return &http.Client{Transport: transport, Timeout: 6 * connectTimeout}, nil
}
