package elastic

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/valyala/fastjson"

	"opswatch/internal/httpclient"
)

// Field names of the Elastic Common Schema used in queries.
const (
	FieldTimestamp = "@timestamp"
	FieldDataset   = "event.dataset"
	FieldURLPath   = "url.path"
)

// Hit is one search result: the document id and its raw _source.
type Hit struct {
	ID     string
	Index  string
	Source []byte
}

// SearchRequest selects the most recent documents of some datasets.
type SearchRequest struct {
	Size              int
	Datasets          []string
	ExcludePathPrefix string
}

// Observer receives one call per upstream request.
type Observer interface {
	ObserveUpstream(backend, operation string, err error, elapsed time.Duration)
}

// Client queries an Elasticsearch-compatible search API.
type Client struct {
	http     *httpclient.Client
	index    string
	parser   fastjson.ParserPool
	observer Observer
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithObserver reports every request to o.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHTTPOptions forwards options to the underlying HTTP client.
func WithHTTPOptions(opts ...httpclient.Option) Option {
	return func(c *Client) { c.http = httpclient.New(c.http.BaseURL(), opts...) }
}

// New creates a client for the cluster at baseURL searching index (which
// may be a pattern such as "filebeat-*").
func New(baseURL, index string, opts ...Option) *Client {
	c := &Client{
		http:   httpclient.New(baseURL),
		index:  index,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query builds the search body: newest first, restricted to the given
// datasets and excluding paths under ExcludePathPrefix.
func (r SearchRequest) Query() map[string]any {
	boolQuery := map[string]any{}
	if len(r.Datasets) > 0 {
		boolQuery["filter"] = []any{
			map[string]any{"terms": map[string]any{FieldDataset: r.Datasets}},
		}
	}
	if r.ExcludePathPrefix != "" {
		boolQuery["must_not"] = []any{
			map[string]any{"prefix": map[string]any{FieldURLPath: r.ExcludePathPrefix}},
		}
	}
	body := map[string]any{
		"size": r.Size,
		"sort": []any{
			map[string]any{FieldTimestamp: map[string]string{"order": "desc"}},
		},
	}
	if len(boolQuery) > 0 {
		body["query"] = map[string]any{"bool": boolQuery}
	}
	return body
}

// Search runs req against the configured index. A response without a
// hits array yields an empty slice.
func (c *Client) Search(ctx context.Context, req SearchRequest) (hits []Hit, err error) {
	start := time.Now()
	if c.observer != nil {
		defer func() { c.observer.ObserveUpstream("elasticsearch", "search", err, time.Since(start)) }()
	}

	body, err := c.http.PostJSON(ctx, "/"+c.index+"/_search", req.Query())
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", c.index, err)
	}

	p := c.parser.Get()
	defer c.parser.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("search %s: decode response: %w", c.index, err)
	}

	arr := v.GetArray("hits", "hits")
	hits = make([]Hit, 0, len(arr))
	for _, h := range arr {
		src := h.Get("_source")
		if src == nil || src.Type() != fastjson.TypeObject {
			c.logger.Debug("skipping hit without _source", "id", string(h.GetStringBytes("_id")))
			continue
		}
		hits = append(hits, Hit{
			ID:     string(h.GetStringBytes("_id")),
			Index:  string(h.GetStringBytes("_index")),
			Source: src.MarshalTo(nil),
		})
	}
	return hits, nil
}

// Ping checks that the cluster root answers with a 2xx status.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	if c.observer != nil {
		defer func() { c.observer.ObserveUpstream("elasticsearch", "ping", err, time.Since(start)) }()
	}
	_, err = c.http.Get(ctx, "/")
	return err
}
