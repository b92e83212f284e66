// Package ltcheck is a typed client for the LanguageTool grammar and style
// checking HTTP API.
//
// Texts of any length are supported: requests are split into
// service-sized fragments, dispatched concurrently, and the partial
// results merged back into one response whose offsets, sentence ranges and
// line/column positions refer to the original, unsplit input.
package ltcheck

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultHostname is the public API endpoint, used when no hostname is
// configured.
const DefaultHostname = "https://api.languagetoolplus.com"

// shared transport (keep-alive, TLS session reuse).
var defaultHTTPClient = &http.Client{
	Timeout: 30 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        32,
		MaxIdleConnsPerHost: 16,
		TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
	},
}

// ServerClient talks to one LanguageTool server.  The zero value is not
// usable; construct with NewServerClient or FromEnv.
//
// All methods are safe for concurrent use.
type ServerClient struct {
	api            string
	client         *http.Client
	log            zerolog.Logger
	maxSuggestions int
	maxRetries     int
	retryIf        func(error) bool
}

// NewServerClient builds a client for hostname and optional port ("" for
// none).  Port validity can be checked beforehand with ParsePort; the
// constructor does not.
func NewServerClient(hostname, port string) *ServerClient {
	api := hostname + "/v2"
	if port != "" {
		api = hostname + ":" + port + "/v2"
	}
	return &ServerClient{
		api:            api,
		client:         defaultHTTPClient,
		log:            zerolog.Nop(),
		maxSuggestions: -1,
	}
}

// FromEnv builds a client from LANGUAGETOOL_HOSTNAME and LANGUAGETOOL_PORT,
// falling back to the public API when unset.
func FromEnv() *ServerClient {
	hostname := os.Getenv("LANGUAGETOOL_HOSTNAME")
	if hostname == "" {
		hostname = DefaultHostname
	}
	return NewServerClient(hostname, os.Getenv("LANGUAGETOOL_PORT"))
}

// WithMaxSuggestions caps the number of replacement suggestions kept per
// match; the last kept entry is rewritten to say how many were dropped.
// Negative keeps everything.
func (c *ServerClient) WithMaxSuggestions(n int) *ServerClient {
	c.maxSuggestions = n
	return c
}

// WithLogger routes the client's debug logging to l.
func (c *ServerClient) WithLogger(l zerolog.Logger) *ServerClient {
	c.log = l
	return c
}

// WithHTTPClient swaps the underlying HTTP client, e.g. for tests or
// custom transports.  h must be safe for concurrent use.
func (c *ServerClient) WithHTTPClient(h *http.Client) *ServerClient {
	c.client = h
	return c
}

// WithRetry retries failed check requests up to max extra attempts when
// retryIf accepts the error.  A nil retryIf retries only the server's
// transient overload condition (IsOverloaded).
func (c *ServerClient) WithRetry(max int, retryIf func(error) bool) *ServerClient {
	if retryIf == nil {
		retryIf = IsOverloaded
	}
	c.maxRetries = max
	c.retryIf = retryIf
	return c
}

// ParsePort reports whether v is a valid port: empty, or exactly four
// digits.
func ParsePort(v string) error {
	if v == "" {
		return nil
	}
	if len(v) == 4 && strings.Trim(v, "0123456789") == "" {
		return nil
	}
	return errors.New("ltcheck: port must be empty or a 4-digit string")
}

// Check submits one request and returns the server's response.  Matches
// are ordered by offset and suggestion lists truncated per
// WithMaxSuggestions.
func (c *ServerClient) Check(ctx context.Context, req CheckRequest) (CheckResponse, error) {
	form, err := req.Values()
	if err != nil {
		return CheckResponse{}, err
	}

	var resp CheckResponse
	if err := c.postForm(ctx, "/check", form, &resp); err != nil {
		return CheckResponse{}, err
	}

	// The position mapper needs non-decreasing offsets; do not trust the
	// server's per-fragment ordering.
	sort.SliceStable(resp.Matches, func(i, j int) bool {
		return resp.Matches[i].Offset < resp.Matches[j].Offset
	})

	if max := c.maxSuggestions; max > 0 {
		for i := range resp.Matches {
			repl := resp.Matches[i].Replacements
			if len(repl) > max {
				repl[max] = Replacement{
					Value: fmt.Sprintf("... (%d not shown)", len(repl)-max),
				}
				resp.Matches[i].Replacements = repl[:max+1]
			}
		}
	}
	return resp, nil
}

// checkRetry is Check plus the configured retry policy.
func (c *ServerClient) checkRetry(ctx context.Context, req CheckRequest) (CheckResponse, error) {
	resp, err := c.Check(ctx, req)
	for attempt := 0; err != nil && attempt < c.maxRetries && c.retryIf(err); attempt++ {
		c.log.Debug().Err(err).Int("attempt", attempt+1).Msg("retrying check request")
		if cerr := ctx.Err(); cerr != nil {
			return CheckResponse{}, cerr
		}
		resp, err = c.Check(ctx, req)
	}
	return resp, err
}

// CheckMultiple checks every request concurrently (bounded by GOMAXPROCS)
// and returns the partial results in the order of reqs, regardless of
// completion order.  If any fragment fails, the whole batch fails with the
// first error in request order, tagged with the fragment index; no partial
// result is returned.
func (c *ServerClient) CheckMultiple(ctx context.Context, reqs []CheckRequest) ([]ResponseWithContext, error) {
	if len(reqs) == 0 {
		return nil, ErrNoRequests
	}

	out := make([]ResponseWithContext, len(reqs))
	errs := make([]error, len(reqs))

	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, req CheckRequest) {
			defer wg.Done()
			defer func() { <-sem }()
			out[i], errs[i] = c.checkFragment(ctx, i, req)
		}(i, req)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// CheckMultipleSeq is CheckMultiple, one request at a time.  Slower for
// many fragments, but never holds more than one request in flight.
func (c *ServerClient) CheckMultipleSeq(ctx context.Context, reqs []CheckRequest) ([]ResponseWithContext, error) {
	if len(reqs) == 0 {
		return nil, ErrNoRequests
	}
	out := make([]ResponseWithContext, len(reqs))
	for i, req := range reqs {
		rc, err := c.checkFragment(ctx, i, req)
		if err != nil {
			return nil, err
		}
		out[i] = rc
	}
	return out, nil
}

func (c *ServerClient) checkFragment(ctx context.Context, i int, req CheckRequest) (ResponseWithContext, error) {
	text, err := req.TryGetText()
	if err != nil {
		return ResponseWithContext{}, fmt.Errorf("fragment %d: %w", i, err)
	}
	resp, err := c.checkRetry(ctx, req)
	if err != nil {
		return ResponseWithContext{}, fmt.Errorf("fragment %d: %w", i, err)
	}
	c.log.Debug().Int("fragment", i).Int("matches", len(resp.Matches)).Msg("fragment checked")
	return NewResponseWithContext(text, resp), nil
}

// CheckSplit checks a request of any length: splits it into fragments of
// at most maxLen bytes at pat boundaries, dispatches them concurrently,
// and merges the partial results into one response whose offsets and
// line/column positions refer to the original input.
func (c *ServerClient) CheckSplit(ctx context.Context, req CheckRequest, maxLen int, pat string) (CheckResponse, error) {
	reqs, err := req.Split(maxLen, pat)
	if err != nil {
		return CheckResponse{}, err
	}
	parts, err := c.CheckMultiple(ctx, reqs)
	if err != nil {
		return CheckResponse{}, err
	}
	joined, err := JoinResponses(parts)
	if err != nil {
		return CheckResponse{}, err
	}
	return joined.IntoResponse(), nil
}

// Languages lists the languages the server supports.
func (c *ServerClient) Languages(ctx context.Context) ([]Language, error) {
	var langs []Language
	if err := c.get(ctx, "/languages", nil, &langs); err != nil {
		return nil, err
	}
	return langs, nil
}

// Ping reaches the server and returns the elapsed round-trip time.
func (c *ServerClient) Ping(ctx context.Context) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.api, nil)
	if err != nil {
		return 0, err
	}
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return time.Since(start), nil
}

/***----- transport plumbing -----***/

func (c *ServerClient) postForm(ctx context.Context, path string, form url.Values, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.api+path,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	return c.do(req, v)
}

func (c *ServerClient) get(ctx context.Context, path string, query url.Values, v any) error {
	u := c.api + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, v)
}

func (c *ServerClient) do(req *http.Request, v any) error {
	c.log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Msg("request")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RequestError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("ltcheck: could not decode server response: %w", err)
	}
	return nil
}
