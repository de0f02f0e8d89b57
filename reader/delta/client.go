package delta

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"optionflow/config"
	"optionflow/logger"
)

// maxErrorDetailLen caps the error excerpt taken from an oversized
// response body so failures do not flood logs with whole payloads.
const maxErrorDetailLen = 220

const maxResponseBytes = 32 * 1024 * 1024

// APIError is the single error shape produced at the transport boundary.
// It covers both non-2xx responses and 2xx responses whose envelope is
// flagged unsuccessful; downstream code never inspects payload shapes.
type APIError struct {
	Status int
	Path   string
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api request %s failed with status %d: %s", e.Path, e.Status, e.Detail)
}

// envelope mirrors the exchange's response wrapper. List endpoints carry
// an opaque continuation cursor in meta.after; its absence signals the
// final page.
type envelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Meta    struct {
		After *string `json:"after"`
	} `json:"meta"`
	Error json.RawMessage `json:"error"`
}

// Client issues GET requests against the exchange's public REST API and
// follows cursor pagination to completion. It holds no mutable state
// beyond the rate limiter, so one instance may serve concurrent fetches.
type Client struct {
	baseURL  string
	http     *http.Client
	pageSize int
	limiter  *rate.Limiter
	log      *logger.Log
}

// NewClient creates a client from the delta source configuration. When
// httpClient is nil a default client with the configured timeout and a
// user-agent transport is built.
func NewClient(cfg config.DeltaSourceConfig, httpClient *http.Client) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if parsed, err := url.Parse(base); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 1000
	}

	rps := cfg.RateLimit.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	burst := cfg.RateLimit.BurstSize
	if burst <= 0 {
		burst = 1
	}

	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		transport := http.DefaultTransport
		if cfg.UserAgent != "" {
			transport = userAgentTransport{agent: cfg.UserAgent, base: http.DefaultTransport}
		}
		httpClient = &http.Client{Timeout: timeout, Transport: transport}
	}

	return &Client{
		baseURL:  base,
		http:     httpClient,
		pageSize: pageSize,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		log:      logger.GetLogger(),
	}, nil
}

// PageSize exposes the page size used for paginated list requests.
func (c *Client) PageSize() int {
	return c.pageSize
}

// get performs one GET request and decodes the response envelope. Every
// failed request yields exactly one *APIError.
func (c *Client) get(ctx context.Context, path string, params url.Values) (*envelope, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	requestURL := c.baseURL + path
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response for %s: %w", path, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &APIError{
			Status: res.StatusCode,
			Path:   path,
			Detail: errorDetail(nil, body),
		}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode response for %s: %w", path, err)
	}
	if !env.Success {
		return nil, &APIError{
			Status: res.StatusCode,
			Path:   path,
			Detail: errorDetail(env.Error, body),
		}
	}

	return &env, nil
}

// FetchAll retrieves every page of a list endpoint by following the
// meta.after cursor. A page shorter than the requested page size is
// treated as terminal even when the server echoes a cursor; some servers
// return a stale cursor on the final page. A single failed request aborts
// the loop rather than returning a partial result silently.
func (c *Client) FetchAll(ctx context.Context, path string, params url.Values) ([]json.RawMessage, error) {
	log := c.log.WithComponent("delta_client").WithFields(logger.Fields{"path": path})

	var out []json.RawMessage
	var after string
	pages := 0

	for {
		q := url.Values{}
		for k, vs := range params {
			q[k] = vs
		}
		q.Set("page_size", strconv.Itoa(c.pageSize))
		if after != "" {
			q.Set("after", after)
		}

		env, err := c.get(ctx, path, q)
		if err != nil {
			return nil, err
		}

		var page []json.RawMessage
		if len(env.Result) > 0 {
			if err := json.Unmarshal(env.Result, &page); err != nil {
				return nil, fmt.Errorf("decode page for %s: %w", path, err)
			}
		}
		out = append(out, page...)
		pages++

		if len(page) < c.pageSize {
			break
		}
		if env.Meta.After == nil || *env.Meta.After == "" {
			break
		}
		after = *env.Meta.After
	}

	log.WithFields(logger.Fields{"pages": pages, "records": len(out)}).Debug("pagination complete")
	return out, nil
}

// fetchOne performs a single unpaginated GET and decodes the envelope's
// result into v.
func (c *Client) fetchOne(ctx context.Context, path string, params url.Values, v interface{}) error {
	env, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	if len(env.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Result, v); err != nil {
		return fmt.Errorf("decode result for %s: %w", path, err)
	}
	return nil
}

// errorDetail extracts a short human readable excerpt from an error
// payload. The exchange is inconsistent here: error may be an object with
// a code, a bare string, or absent entirely.
func errorDetail(errPayload json.RawMessage, body []byte) string {
	if len(errPayload) > 0 {
		var obj struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(errPayload, &obj); err == nil && obj.Code != "" {
			if obj.Message != "" {
				return truncate(obj.Code+": "+obj.Message, maxErrorDetailLen)
			}
			return truncate(obj.Code, maxErrorDetailLen)
		}
		var s string
		if err := json.Unmarshal(errPayload, &s); err == nil && s != "" {
			return truncate(s, maxErrorDetailLen)
		}
		return truncate(string(errPayload), maxErrorDetailLen)
	}
	return truncate(strings.TrimSpace(string(body)), maxErrorDetailLen)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
