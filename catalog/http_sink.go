package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
)

// HttpSink posts each mutation as JSON to a catalog ingestion endpoint.
type HttpSink struct {
	url    string
	client *http.Client
}

// NewHttpSink creates a sink for url. A non-empty token is sent as a bearer token.
// hc may be nil.
func NewHttpSink(url string, token string, hc *http.Client) *HttpSink {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	var client = hc
	if len(token) > 0 {
		client = &http.Client{
			Timeout: hc.Timeout,
			Transport: &oauth2.Transport{
				Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
				Base:   hc.Transport,
			},
		}
	}
	return &HttpSink{url: url, client: client}
}

func (s *HttpSink) ApplyMutation(ctx context.Context, mutation *Mutation) (err error) {
	var data []byte
	if data, err = json.Marshal(mutation); err != nil {
		return
	}

	var rq *http.Request
	if rq, err = http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewBuffer(data)); err != nil {
		return
	}
	rq.Header.Set("Content-Type", "application/json")

	var rs *http.Response
	if rs, err = s.client.Do(rq); err != nil {
		return
	}
	defer func() { _ = rs.Body.Close() }()

	if rs.StatusCode >= 300 {
		var body, _ = io.ReadAll(io.LimitReader(rs.Body, 4<<10))
		if len(body) > 0 {
			err = fmt.Errorf("POST catalog mutation error: %s", string(body))
		} else {
			err = fmt.Errorf("POST catalog mutation error: Status code %d", rs.StatusCode)
		}
		return
	}
	_, _ = io.Copy(io.Discard, rs.Body)
	return
}
