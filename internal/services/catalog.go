package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/desertthunder/muzik/internal/models"
	"github.com/desertthunder/muzik/internal/shared"
)

const (
	DefaultBaseURL  = "https://api.spotify.com/v1"
	DefaultTokenURL = "https://accounts.spotify.com/api/token"
	DefaultMarket   = "US"

	// DefaultSafetyMargin is how long before expiry a token is treated as stale.
	DefaultSafetyMargin = 300 * time.Second

	defaultTokenLifetime = time.Hour
	defaultLimit         = 20
)

// Credentials are the app-level client credentials.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// CatalogClient reads the remote music catalog and returns normalized [models.Record] values.
//
// Every read calls [CatalogClient.EnsureFreshToken] first; callers never handle tokens.
// Failures are returned as errors wrapping the [shared] sentinels, so an empty result with
// a nil error always means the catalog had no matches.
type CatalogClient struct {
	creds    Credentials
	baseURL  string
	tokenURL string
	market   string
	margin   time.Duration
	now      func() time.Time

	mu      sync.Mutex // guards token
	token   *oauth2.Token
	onToken func(*oauth2.Token)

	topts  transportOptions
	http   *transport
	logger *log.Logger
}

// ClientOption configures a [CatalogClient].
type ClientOption func(*CatalogClient)

func WithBaseURL(u string) ClientOption {
	return func(c *CatalogClient) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithTokenURL(u string) ClientOption {
	return func(c *CatalogClient) { c.tokenURL = u }
}

func WithMarket(m string) ClientOption {
	return func(c *CatalogClient) { c.market = m }
}

// WithHTTPClient sets the underlying client for both catalog reads and the token exchange.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *CatalogClient) { c.topts.client = h }
}

func WithLogger(l *log.Logger) ClientOption {
	return func(c *CatalogClient) { c.topts.logger = l }
}

// WithClock replaces [time.Now] for token expiry decisions.
func WithClock(now func() time.Time) ClientOption {
	return func(c *CatalogClient) { c.now = now }
}

func WithSafetyMargin(d time.Duration) ClientOption {
	return func(c *CatalogClient) { c.margin = d }
}

// WithRetries sets the retry budget for reads. Zero disables retries.
func WithRetries(n int) ClientOption {
	return func(c *CatalogClient) { c.topts.retries = n }
}

// WithRetryWait sets the backoff bounds between retries.
func WithRetryWait(lo, hi time.Duration) ClientOption {
	return func(c *CatalogClient) { c.topts.waitMin, c.topts.waitMax = lo, hi }
}

// WithRate caps reads per second. Zero or less means unlimited.
func WithRate(perSecond float64) ClientOption {
	return func(c *CatalogClient) { c.topts.perSecond = perSecond }
}

// WithToken seeds the client with a previously issued token.
func WithToken(t *oauth2.Token) ClientOption {
	return func(c *CatalogClient) { c.token = t }
}

// NewCatalogClient creates a client. It never touches the network.
func NewCatalogClient(creds Credentials, opts ...ClientOption) *CatalogClient {
	c := &CatalogClient{
		creds:    creds,
		baseURL:  DefaultBaseURL,
		tokenURL: DefaultTokenURL,
		market:   DefaultMarket,
		margin:   DefaultSafetyMargin,
		now:      time.Now,
		topts: transportOptions{
			retries:   DefaultMaxRetries,
			waitMin:   DefaultRetryMin,
			waitMax:   DefaultRetryMax,
			perSecond: DefaultRate,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.topts.logger == nil {
		c.topts.logger = log.New(io.Discard)
	}
	c.logger = c.topts.logger
	c.http = newTransport(c.topts)
	return c
}

// FromConfig builds a client from the persisted catalog settings.
func FromConfig(cfg shared.CatalogConfig, logger *log.Logger) *CatalogClient {
	opts := []ClientOption{
		WithLogger(logger),
		WithHTTPClient(&http.Client{Timeout: cfg.Timeout()}),
		WithToken(cfg.Token()),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, WithBaseURL(cfg.BaseURL))
	}
	if cfg.TokenURL != "" {
		opts = append(opts, WithTokenURL(cfg.TokenURL))
	}
	if cfg.Market != "" {
		opts = append(opts, WithMarket(cfg.Market))
	}
	if cfg.MaxRetries > 0 {
		opts = append(opts, WithRetries(cfg.MaxRetries))
	}
	if cfg.RequestsPerSecond > 0 {
		opts = append(opts, WithRate(float64(cfg.RequestsPerSecond)))
	}

	return NewCatalogClient(Credentials{ClientID: cfg.ClientID, ClientSecret: cfg.ClientSecret}, opts...)
}

// IsConfigured reports whether both client credentials are set.
func (c *CatalogClient) IsConfigured() bool {
	return c.creds.ClientID != "" && c.creds.ClientSecret != ""
}

// SetTokenCallback registers fn to receive every newly issued token.
func (c *CatalogClient) SetTokenCallback(fn func(*oauth2.Token)) {
	c.onToken = fn
}

// Token returns the currently held token, if any.
func (c *CatalogClient) Token() *oauth2.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// tokenFresh reports whether the held token outlives the safety margin. Callers hold mu.
func (c *CatalogClient) tokenFresh() bool {
	if c.token == nil || c.token.AccessToken == "" || c.token.Expiry.IsZero() {
		return false
	}
	return c.now().Add(c.margin).Before(c.token.Expiry)
}

// EnsureFreshToken exchanges the client credentials for a new token when none is held or the
// held one expires within the safety margin.
func (c *CatalogClient) EnsureFreshToken(ctx context.Context) error {
	_, err := c.accessToken(ctx)
	return err
}

// accessToken returns a fresh bearer token, refreshing at most once for concurrent callers.
func (c *CatalogClient) accessToken(ctx context.Context) (string, error) {
	if !c.IsConfigured() {
		return "", shared.ErrNotConfigured
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.tokenFresh() {
		if err := c.refresh(ctx); err != nil {
			return "", err
		}
	}
	return c.token.AccessToken, nil
}

func (c *CatalogClient) refresh(ctx context.Context) error {
	cfg := clientcredentials.Config{
		ClientID:     c.creds.ClientID,
		ClientSecret: c.creds.ClientSecret,
		TokenURL:     c.tokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	c.logger.Debug("requesting access token", "url", c.tokenURL)
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http.plain)
	token, err := cfg.Token(ctx)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.Response != nil {
			return fmt.Errorf("%w: token endpoint returned %d", shared.ErrAuthFailed, rerr.Response.StatusCode)
		}
		return fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}

	token.Expiry = c.now().Add(tokenLifetime(token))
	c.token = token
	c.logger.Debug("access token issued", "expiry", token.Expiry.Format(time.RFC3339))

	if c.onToken != nil {
		c.onToken(token)
	}
	return nil
}

// tokenLifetime reads expires_in from the token response, defaulting to an hour.
func tokenLifetime(t *oauth2.Token) time.Duration {
	var secs float64
	switch v := t.Extra("expires_in").(type) {
	case float64:
		secs = v
	case json.Number:
		secs, _ = v.Float64()
	case string:
		secs, _ = strconv.ParseFloat(v, 64)
	}
	if secs <= 0 {
		return defaultTokenLifetime
	}
	return time.Duration(secs) * time.Second
}

// get performs an authenticated read and returns the validated JSON body.
func (c *CatalogClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	header.Set("Accept", "application/json")

	c.logger.Debug("catalog request", "path", path, "params", params.Encode())
	resp, err := c.http.get(ctx, endpoint, header)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", shared.ErrAPIRequest, err)
	}

	if err := c.checkStatus(resp.StatusCode, body); err != nil {
		c.logger.Warn("catalog request failed", "path", path, "status", resp.StatusCode)
		return nil, err
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON from %s", shared.ErrMalformedResponse, path)
	}
	return body, nil
}

func (c *CatalogClient) checkStatus(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}

	msg := gjson.GetBytes(body, "error.message").String()
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized:
		c.mu.Lock()
		c.token = nil
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", shared.ErrTokenExpired, msg)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrNotFound, msg)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", shared.ErrRateLimited, msg)
	case status >= 500:
		return fmt.Errorf("%w: status %d: %s", shared.ErrServiceUnavailable, status, msg)
	}
	return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, status, msg)
}

// clampLimit applies the default for unset limits and the endpoint maximum.
func clampLimit(limit, ceiling int) int {
	if limit <= 0 {
		limit = defaultLimit
	}
	return min(limit, ceiling)
}

// Search queries the catalog for one record kind. At most limit records are returned, with limit
// clamped to the search maximum.
func (c *CatalogClient) Search(ctx context.Context, query string, kind models.Kind, limit, offset int) ([]models.Record, error) {
	page, err := c.SearchPage(ctx, query, kind, limit, offset)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// SearchPage is [CatalogClient.Search] with the pagination cursor.
func (c *CatalogClient) SearchPage(ctx context.Context, query string, kind models.Kind, limit, offset int) (*models.Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrInvalidArgument)
	}
	if _, err := models.ParseKind(string(kind)); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidArgument, err)
	}

	ep := SearchEndpoint(kind)
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", string(kind))
	return c.Paginate(ctx, ep, limit, offset, params)
}

// GetByID fetches a single record. A missing record returns [shared.ErrNotFound].
func (c *CatalogClient) GetByID(ctx context.Context, kind models.Kind, id string) (models.Record, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty %s id", shared.ErrMissingArgument, kind)
	}
	if _, err := models.ParseKind(string(kind)); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidArgument, err)
	}

	params := url.Values{}
	if kind != models.KindArtist {
		params.Set("market", c.market)
	}

	body, err := c.get(ctx, "/"+kind.Plural()+"/"+url.PathEscape(id), params)
	if err != nil {
		return nil, err
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: expected object for %s %s", shared.ErrMalformedResponse, kind, id)
	}
	return Normalize(kind, root), nil
}

// GetPaginated reads one page from ep. Callers advance offset between calls; nothing is fetched
// automatically.
func (c *CatalogClient) GetPaginated(ctx context.Context, ep Endpoint, limit, offset int, params url.Values) ([]models.Record, error) {
	page, err := c.Paginate(ctx, ep, limit, offset, params)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Paginate is [CatalogClient.GetPaginated] with the pagination cursor.
func (c *CatalogClient) Paginate(ctx context.Context, ep Endpoint, limit, offset int, params url.Values) (*models.Page, error) {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	if ep.MaxLimit > 0 {
		q.Set("limit", strconv.Itoa(clampLimit(limit, ep.MaxLimit)))
		q.Set("offset", strconv.Itoa(max(offset, 0)))
	}
	if ep.Market && q.Get("market") == "" {
		q.Set("market", c.market)
	}

	body, err := c.get(ctx, ep.Path, q)
	if err != nil {
		return nil, err
	}

	page, err := NormalizePage(ep, body)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("catalog page", "path", ep.Path, "items", len(page.Items), "total", page.Total)
	return page, nil
}

// GetManyByID fetches several records in one request. ids beyond the per-kind batch maximum are
// dropped; entries the catalog cannot resolve (null) are skipped.
func (c *CatalogClient) GetManyByID(ctx context.Context, kind models.Kind, ids []string) ([]models.Record, error) {
	ep, ok := batchEndpoints[kind]
	if !ok {
		return nil, fmt.Errorf("%w: batch lookup not supported for %q", shared.ErrInvalidArgument, kind)
	}

	ids = compact(ids)
	if len(ids) == 0 {
		return []models.Record{}, nil
	}
	if len(ids) > ep.MaxLimit {
		c.logger.Debug("truncating batch lookup", "kind", kind, "requested", len(ids), "max", ep.MaxLimit)
		ids = ids[:ep.MaxLimit]
	}

	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))
	if ep.Market {
		params.Set("market", c.market)
	}

	body, err := c.get(ctx, ep.Path, params)
	if err != nil {
		return nil, err
	}

	page, err := NormalizePage(ep, body)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func compact(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
