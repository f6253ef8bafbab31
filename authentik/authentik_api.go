package authentik

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
)

const DefaultMaxPages = 10000

const maxErrorBodySize = 4 << 10

type ClientOption func(*Client)

// WithHttpClient sets the client whose transport carries the requests.
// The bearer token is layered on top of its transport.
func WithHttpClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.base = hc
		}
	}
}

// WithMaxPages bounds the number of pages a single collection fetch may request.
func WithMaxPages(maxPages int) ClientOption {
	return func(c *Client) {
		if maxPages > 0 {
			c.maxPages = maxPages
		}
	}
}

type Client struct {
	baseUrl  string
	token    string
	base     *http.Client
	http     *http.Client
	breaker  *breaker
	maxPages int
}

// NewClient creates an IDirectory backed by the Authentik core API.
// params.Url is the API root, e.g. https://authentik.example.com/api/v3/core
func NewClient(params *EndpointParameters, opts ...ClientOption) *Client {
	var c = &Client{
		baseUrl:  strings.TrimRight(params.Url, "/"),
		token:    params.Token,
		base:     &http.Client{Timeout: 30 * time.Second},
		maxPages: DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http = &http.Client{
		Timeout: c.base.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.token, TokenType: "Bearer"}),
			Base:   c.base.Transport,
		},
	}
	c.breaker = newBreaker("authentik-api")
	return c
}

func (c *Client) BaseUrl() string {
	return c.baseUrl
}

func (c *Client) Groups(ctx context.Context) (groups []*Group, err error) {
	groups, err = fetchAll[*Group](ctx, c, "groups")
	return
}

// Users returns the directory users that have an email address, in source order.
func (c *Client) Users(ctx context.Context) (users []*User, err error) {
	var all []*User
	if all, err = fetchAll[*User](ctx, c, "users"); err != nil {
		return
	}
	users = make([]*User, 0, len(all))
	for _, u := range all {
		if u == nil || len(u.Email) == 0 {
			continue
		}
		users = append(users, u)
	}
	return
}

// fetchAll walks a page-numbered collection from page 1 until the server reports
// the current page as the last one. Any failure discards what was collected.
func fetchAll[T any](ctx context.Context, c *Client, resource string) (result []T, err error) {
	var uri *url.URL
	if uri, err = c.composeUrl(resource); err != nil {
		return
	}

	var acc []T
	for pageNo := 1; ; pageNo++ {
		if pageNo > c.maxPages {
			err = fmt.Errorf("error fetching %s from page %d: page limit %d exceeded", resource, pageNo, c.maxPages)
			return
		}
		var p *page[T]
		if p, err = getPage[T](ctx, c, uri, pageNo); err != nil {
			err = fmt.Errorf("error fetching %s from page %d: %w", resource, pageNo, err)
			return
		}
		acc = append(acc, p.Results...)
		if p.Pagination.TotalPages == p.Pagination.Current || p.Pagination.TotalPages == 0 {
			break
		}
	}
	result = acc
	return
}

func getPage[T any](ctx context.Context, c *Client, uri *url.URL, pageNo int) (p *page[T], err error) {
	var ruri = new(url.URL)
	*ruri = *uri
	var q = ruri.Query()
	q.Set("page", strconv.Itoa(pageNo))
	ruri.RawQuery = q.Encode()

	var rq *http.Request
	if rq, err = http.NewRequestWithContext(ctx, http.MethodGet, ruri.String(), nil); err != nil {
		return
	}
	rq.Header.Set("Accept", "application/json")

	var body []byte
	if body, err = c.breaker.execute(func() ([]byte, error) {
		return c.executeRequest(rq)
	}); err != nil {
		return
	}

	p = new(page[T])
	if err = json.Unmarshal(body, p); err != nil {
		p = nil
		err = fmt.Errorf("decode response: %w", err)
	}
	return
}

func (c *Client) composeUrl(paths ...string) (result *url.URL, err error) {
	var uri *url.URL
	if uri, err = url.Parse(c.baseUrl); err != nil {
		return
	}
	if len(uri.Scheme) == 0 || len(uri.Host) == 0 {
		err = fmt.Errorf("invalid Authentik URL \"%s\"", c.baseUrl)
		return
	}
	var ruri *url.URL
	for _, path := range paths {
		if ruri, err = url.Parse(path); err != nil {
			return
		}
		if !strings.HasSuffix(uri.Path, "/") {
			uri.Path += "/"
		}
		uri = uri.ResolveReference(ruri)
	}
	if !strings.HasSuffix(uri.Path, "/") {
		uri.Path += "/"
	}

	result = uri
	return
}

func (c *Client) executeRequest(rq *http.Request) (body []byte, err error) {
	var rs *http.Response
	if rs, err = c.http.Do(rq); err != nil {
		return
	}
	defer func() { _ = rs.Body.Close() }()

	if rs.StatusCode >= 300 {
		var path = rq.URL.Path
		var detail, _ = io.ReadAll(io.LimitReader(rs.Body, maxErrorBodySize))
		if len(detail) > 0 {
			err = &StatusError{Method: rq.Method, Path: path, StatusCode: rs.StatusCode, Body: string(detail)}
		} else {
			err = &StatusError{Method: rq.Method, Path: path, StatusCode: rs.StatusCode}
		}
		return
	}
	if body, err = io.ReadAll(rs.Body); err != nil {
		return
	}
	if len(body) == 0 {
		err = errors.New("empty response body")
	}
	return
}

// StatusError is returned for a response with a non-success status code.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if len(e.Body) > 0 {
		return fmt.Sprintf("%s Authentik \"%s\" error: %s", e.Method, e.Path, e.Body)
	}
	return fmt.Sprintf("%s Authentik \"%s\" error: Status code %d", e.Method, e.Path, e.StatusCode)
}
