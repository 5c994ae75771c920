// Package fauna decodes Fauna query responses into typed results.
//
// The query endpoint returns one JSON envelope for every kind of result.
// [fauna.ParseResponse] recognizes the result by its shape (a value, a
// wrapped document array or a page), extracts the canonical payload, and
// [fauna.Decode] or [fauna.DecodePage] turn that payload into Go values.
// A small [fauna.Client] issues queries over HTTP.
package fauna

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/fauna/fauna-decode/internal/fingerprinting"
)

//go:embed version
var driverVersion string

const (
	// EndpointDefault constant for Fauna Production endpoint
	EndpointDefault = "https://db.fauna.com"
	// EndpointLocal constant for local (Docker) endpoint
	EndpointLocal = "http://localhost:8443"

	// EnvFaunaEndpoint environment variable for Fauna Client HTTP endpoint
	EnvFaunaEndpoint = "FAUNA_ENDPOINT"
	// EnvFaunaSecret environment variable for Fauna Client authentication
	EnvFaunaSecret = "FAUNA_SECRET"
	// EnvFaunaDebug environment variable holding the slog level to log at
	EnvFaunaDebug = "FAUNA_DEBUG"

	// DefaultHttpTimeout Fauna Client default HTTP timeout
	DefaultHttpTimeout = time.Minute * 3

	queryPath = "/query/1"

	// Headers consumers might want to use

	HeaderLastTxnTs      = "X-Last-Txn-Ts"
	HeaderTags           = "X-Query-Tags"
	HeaderQueryTimeoutMs = "X-Query-Timeout-Ms"

	// Headers just used internally

	headerAuthorization = "Authorization"
	headerAccept        = "Accept"
	headerContentType   = "Content-Type"
	headerUserAgent     = "User-Agent"
	headerDriver        = "X-Driver"
	headerDriverVersion = "X-Driver-Version"
	headerRuntime       = "X-Runtime"
	headerFormat        = "X-Format"
)

// Client issues queries and parses their responses.
type Client struct {
	url         string
	secret      string
	headers     map[string]string
	lastTxnTime lastTxn

	http    *http.Client
	ctx     context.Context
	logger  Logger
	limiter *rate.Limiter
	metrics *QueryMetrics
}

// NewDefaultClient initialize a [fauna.Client] from the FAUNA_SECRET and
// FAUNA_ENDPOINT environment variables
func NewDefaultClient(configFns ...ClientConfigFn) (*Client, error) {
	secret, found := os.LookupEnv(EnvFaunaSecret)
	if !found {
		return nil, fmt.Errorf("unable to load key from environment variable '%s'", EnvFaunaSecret)
	}

	url, urlFound := os.LookupEnv(EnvFaunaEndpoint)
	if !urlFound {
		url = EndpointDefault
	}

	return NewClient(secret, append([]ClientConfigFn{URL(url)}, configFns...)...), nil
}

// NewClient initialize a new [fauna.Client] with custom settings
func NewClient(secret string, configFns ...ClientConfigFn) *Client {
	version := strings.TrimSpace(driverVersion)

	client := &Client{
		ctx:    context.TODO(),
		secret: secret,
		http:   &http.Client{Timeout: DefaultHttpTimeout},
		url:    EndpointDefault,
		logger: DefaultLogger(),
		headers: map[string]string{
			headerAccept:        "application/json",
			headerContentType:   "application/json; charset=utf-8",
			headerUserAgent:     fingerprinting.UserAgent(version),
			headerDriver:        "go-decode",
			headerDriverVersion: version,
			headerFormat:        "simple",
			headerRuntime:       fingerprinting.Runtime(),
		},
	}

	for _, configFn := range configFns {
		configFn(client)
	}

	return client
}

type fqlRequest struct {
	Context context.Context
	Query   *Query
	Headers map[string]string
}

type queryBody struct {
	Query string `json:"query"`
}

// Query runs fql. A query the service rejected is not an error here: the
// returned [fauna.Response] reports it through [Response.IsFailure] and
// [Response.Err]. Errors are returned for transport failures and bodies
// that are not query responses.
func (c *Client) Query(fql *Query, opts ...QueryOptFn) (*Response, error) {
	if fql == nil {
		return nil, errors.New("query is nil")
	}

	req := &fqlRequest{
		Context: c.ctx,
		Query:   fql,
		Headers: make(map[string]string, len(c.headers)),
	}
	for k, v := range c.headers {
		req.Headers[k] = v
	}

	for _, queryOptionFn := range opts {
		queryOptionFn(req)
	}

	return c.do(req)
}

func (c *Client) do(request *fqlRequest) (*Response, error) {
	ctx := request.Context
	if ctx == nil {
		ctx = context.Background()
	}

	bytesOut, marshalErr := gojson.Marshal(queryBody{Query: request.Query.String()})
	if marshalErr != nil {
		return nil, fmt.Errorf("marshal request: %w", marshalErr)
	}

	if c.limiter != nil {
		if waitErr := c.limiter.Wait(ctx); waitErr != nil {
			return nil, fmt.Errorf("rate limit: %w", waitErr)
		}
	}

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.url+queryPath, bytes.NewReader(bytesOut))
	if reqErr != nil {
		return nil, fmt.Errorf("failed to init request: %w", reqErr)
	}

	req.Header.Set(headerAuthorization, "Bearer "+c.secret)
	for k, v := range request.Headers {
		req.Header.Set(k, v)
	}

	if lastTxn := c.lastTxnTime.header(); lastTxn != "" {
		req.Header.Set(HeaderLastTxnTs, lastTxn)
	}

	r, doErr := c.http.Do(req)
	if doErr != nil {
		return nil, fmt.Errorf("request failed: %w", doErr)
	}

	defer func() {
		_ = r.Body.Close()
	}()

	c.logger.LogResponse(ctx, bytesOut, r)

	bin, readErr := io.ReadAll(r.Body)
	if readErr != nil {
		return nil, fmt.Errorf("read response: %w", readErr)
	}

	res, parseErr := ParseResponse(bin)
	if parseErr != nil {
		return nil, fmt.Errorf("HTTP %d: %w", r.StatusCode, parseErr)
	}

	res.status = r.StatusCode
	c.lastTxnTime.advance(res.txnTs)

	if c.metrics != nil {
		c.metrics.Observe(res)
	}

	if res.Error == nil && r.StatusCode >= http.StatusBadRequest {
		return res, fmt.Errorf("unexpected HTTP status %d without an error body", r.StatusCode)
	}

	return res, nil
}

// SetLastTxnTime update the last txn time for the [fauna.Client]
// This has no effect if earlier than stored timestamp.
func (c *Client) SetLastTxnTime(txnTime time.Time) {
	c.lastTxnTime.advance(txnTime.UnixMicro())
}

// GetLastTxnTime gets the last txn timestamp seen by the [fauna.Client],
// the zero time before any query.
func (c *Client) GetLastTxnTime() time.Time {
	if c.lastTxnTime.load() == 0 {
		return time.Time{}
	}

	return c.lastTxnTime.time()
}

// String fulfil Stringify interface for the [fauna.Client]
// only returns the URL to prevent logging potentially sensitive headers.
func (c *Client) String() string {
	return c.url
}

func (c *Client) setHeader(key, val string) {
	c.headers[key] = val
}

// PageIterator walks the pages of a paginated query, see [fauna.Paginate].
type PageIterator[E any] struct {
	client *Client
	fql    *Query
	opts   []QueryOptFn
}

// Paginate returns an iterator over the pages of fql, decoding elements as E.
// Follow-up pages are requested by sending the cursor back unchanged.
func Paginate[E any](c *Client, fql *Query, opts ...QueryOptFn) *PageIterator[E] {
	return &PageIterator[E]{
		client: c,
		fql:    fql,
		opts:   opts,
	}
}

// HasNext returns whether there is another page of results
func (q *PageIterator[E]) HasNext() bool {
	return q.fql != nil
}

// Next returns the next page of results
func (q *PageIterator[E]) Next() (*Page[E], error) {
	if !q.HasNext() {
		return nil, errors.New("no more pages")
	}

	res, queryErr := q.client.Query(q.fql, q.opts...)
	if queryErr != nil {
		return nil, queryErr
	}

	page, pageErr := DecodePage[E](res, DecodeLogger(q.client.logger))
	if pageErr != nil {
		return nil, pageErr
	}

	if nextErr := q.nextPage(page.After); nextErr != nil {
		return nil, nextErr
	}

	return page, nil
}

func (q *PageIterator[E]) nextPage(after *string) error {
	if after == nil {
		q.fql = nil
		return nil
	}

	var fqlErr error
	q.fql, fqlErr = FQL(`Set.paginate(${after})`, map[string]any{"after": *after})

	return fqlErr
}
