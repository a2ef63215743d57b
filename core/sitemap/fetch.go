package sitemap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/sethvargo/go-retry"

	tkerrors "github.com/FocuswithJustin/DevToolkit/core/errors"
	"github.com/FocuswithJustin/DevToolkit/core/xml"
	"github.com/FocuswithJustin/DevToolkit/internal/logging"
)

// Fetch defaults.
const (
	DefaultTimeout   = 10 * time.Second
	DefaultRetries   = 2
	DefaultBaseDelay = 250 * time.Millisecond

	// UserAgentName is the product token sent when no User-Agent is set.
	UserAgentName = "developer-utility-toolkit"

	// MaxBodySize caps how much of a response body is read.
	MaxBodySize = 32 << 20
)

// FetchOptions configures Fetch. Zero values select the defaults.
type FetchOptions struct {
	Timeout   time.Duration
	Retries   int
	BaseDelay time.Duration
	UserAgent string
	Client    *http.Client
}

func (o FetchOptions) withDefaults() FetchOptions {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = DefaultBaseDelay
	}
	if o.UserAgent == "" {
		o.UserAgent = UserAgentName
	}
	if o.Client == nil {
		o.Client = cleanhttp.DefaultClient()
	}
	return o
}

// UserAgent returns the User-Agent header value for a toolkit version.
func UserAgent(version string) string {
	return UserAgentName + "/" + version
}

// HTTPError is returned for a non-2xx response.
type HTTPError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("fetching %s: %s", e.URL, e.Status)
}

// Fetch downloads the sitemap at rawURL and returns the text of every
// <loc> directly under a <url> element. Network errors and 5xx responses
// are retried with exponential backoff.
func Fetch(ctx context.Context, rawURL string, opts FetchOptions) ([]string, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	backoff := retry.WithMaxRetries(uint64(opts.Retries), retry.NewExponential(opts.BaseDelay))
	body, err := retry.DoValue(ctx, backoff, func(ctx context.Context) ([]byte, error) {
		return fetchOnce(ctx, rawURL, opts)
	})
	if err != nil {
		return nil, err
	}
	return ParseLocs(body)
}

func fetchOnce(ctx context.Context, rawURL string, opts FetchOptions) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", opts.UserAgent)

	start := time.Now()
	resp, err := opts.Client.Do(req)
	if err != nil {
		logging.HTTPFetch(ctx, req.Method, rawURL, 0, time.Since(start), "error", err.Error())
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, retry.RetryableError(fmt.Errorf("fetching %s: %w", rawURL, err))
	}
	defer resp.Body.Close()
	logging.HTTPFetch(ctx, req.Method, rawURL, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MaxBodySize))
		httpErr := &HTTPError{URL: rawURL, StatusCode: resp.StatusCode, Status: resp.Status}
		if resp.StatusCode >= 500 {
			return nil, retry.RetryableError(httpErr)
		}
		return nil, httpErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, retry.RetryableError(fmt.Errorf("reading %s: %w", rawURL, err))
	}
	if len(body) > MaxBodySize {
		return nil, fmt.Errorf("sitemap %s exceeds %d bytes", rawURL, MaxBodySize)
	}
	return body, nil
}

// ParseLocs extracts the <url><loc> values from a sitemap document. Empty
// locations are skipped.
func ParseLocs(data []byte) ([]string, error) {
	doc, err := xml.Parse(data)
	if err != nil {
		var pe *tkerrors.ParseError
		if errors.As(err, &pe) {
			return nil, tkerrors.NewParse("sitemap XML", pe.Message, err)
		}
		return nil, err
	}

	nodes, err := doc.XPathNS("/*/sm:url/sm:loc", map[string]string{"sm": Namespace})
	if err != nil {
		return nil, err
	}

	locs := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if loc := strings.TrimSpace(n.Text()); loc != "" {
			locs = append(locs, loc)
		}
	}
	return locs, nil
}
