package services

import (
	"context"
	"crypto/x509"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryMin   = 300 * time.Millisecond
	DefaultRetryMax   = 5 * time.Second
	DefaultRate       = 10
)

// retryableStatus reports whether a response is worth another attempt: 429 and every 5xx except
// 501, which no retry can fix.
func retryableStatus(code int) bool {
	if code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code != http.StatusNotImplemented
}

// transport bundles the two HTTP paths of the client: a retrying, rate-limited one for catalog
// reads and a plain one for the token exchange, which must never be replayed.
type transport struct {
	reads   *retryablehttp.Client
	plain   *http.Client
	limiter *rate.Limiter
}

// transportOptions are the knobs exposed through [ClientOption].
type transportOptions struct {
	client    *http.Client
	retries   int
	waitMin   time.Duration
	waitMax   time.Duration
	perSecond float64
	logger    *log.Logger
}

func newTransport(o transportOptions) *transport {
	base := o.client
	if base == nil {
		base = &http.Client{Timeout: DefaultTimeout}
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = base
	rc.Logger = leveledLogger{o.logger}
	rc.RetryMax = o.retries
	rc.RetryWaitMin = o.waitMin
	rc.RetryWaitMax = o.waitMax
	rc.Backoff = retryablehttp.DefaultBackoff
	rc.CheckRetry = checkRetry
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	limit := rate.Inf
	if o.perSecond > 0 {
		limit = rate.Limit(o.perSecond)
	}

	return &transport{
		reads:   rc,
		plain:   base,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// get issues a GET through the retrying client after waiting for a rate token.
func (t *transport) get(ctx context.Context, endpoint string, header http.Header) (*http.Response, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	return t.reads.Do(req)
}

// checkRetry retries transport failures, 429 and 5xx other than 501. Cancellation and
// certificate or URL errors are final.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			var certErr x509.UnknownAuthorityError
			if errors.As(uerr.Err, &certErr) {
				return false, err
			}
		}
		return true, nil
	}

	return retryableStatus(resp.StatusCode), nil
}

// leveledLogger forwards [retryablehttp.LeveledLogger] calls to a charm logger.
type leveledLogger struct {
	l *log.Logger
}

func (a leveledLogger) Error(msg string, kv ...any) { a.l.Error(msg, kv...) }
func (a leveledLogger) Info(msg string, kv ...any)  { a.l.Debug(msg, kv...) }
func (a leveledLogger) Debug(msg string, kv ...any) { a.l.Debug(msg, kv...) }
func (a leveledLogger) Warn(msg string, kv ...any)  { a.l.Warn(msg, kv...) }
