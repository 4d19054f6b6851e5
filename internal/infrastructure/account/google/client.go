package google

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/paintball-league/internal/platform/cache"
	"github.com/riskibarqy/paintball-league/internal/platform/logging"
	"github.com/riskibarqy/paintball-league/internal/platform/resilience"
	"github.com/riskibarqy/paintball-league/internal/usecase"
	"github.com/valyala/fasthttp"
)

var errGoogleTransient = crerr.New("google tokeninfo transient failure")

// errNoClientID rejects every token until an audience is configured.
var errNoClientID = fmt.Errorf("%w: google sign-in is not configured", usecase.ErrUnauthorized)

var validIssuers = map[string]struct{}{
	"accounts.google.com":         {},
	"https://accounts.google.com": {},
}

type Config struct {
	TokenInfoURL   string
	ClientID       string
	Timeout        time.Duration
	CacheTTL       time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client verifies Google ID tokens against the tokeninfo endpoint.
type Client struct {
	http         *fasthttp.Client
	tokenInfoURL string
	clientID     string
	timeout      time.Duration
	cacheTTL     time.Duration
	cache        *cache.Store
	breaker      *resilience.CircuitBreaker
	logger       *logging.Logger
	now          func() time.Time
}

func NewClient(cfg Config, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	return &Client{
		http: &fasthttp.Client{
			Name:                "paintball-league",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		tokenInfoURL: strings.TrimSpace(cfg.TokenInfoURL),
		clientID:     strings.TrimSpace(cfg.ClientID),
		timeout:      timeout,
		cacheTTL:     cfg.CacheTTL,
		cache:        cache.NewStore(cfg.CacheTTL),
		breaker:      resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		logger:       logger.Named("google"),
		now:          time.Now,
	}
}

func (c *Client) Verify(ctx context.Context, idToken string) (usecase.GoogleIdentity, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return usecase.GoogleIdentity{}, fmt.Errorf("%w: id token is required", usecase.ErrUnauthorized)
	}
	if c.clientID == "" {
		c.logger.WarnContext(ctx, "google sign-in rejected: GOOGLE_CLIENT_ID is not configured")
		return usecase.GoogleIdentity{}, errNoClientID
	}

	cacheKey := "google:token:" + hashToken(idToken)
	if cached, ok := c.cache.Get(ctx, cacheKey); ok {
		if identity, ok := cached.(usecase.GoogleIdentity); ok {
			return identity, nil
		}
	}

	var info tokenInfo
	err := c.breaker.Execute(func() error {
		var callErr error
		info, callErr = c.fetch(ctx, idToken)
		return callErr
	}, isCircuitFailure)
	if err != nil {
		if stderrors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "google circuit breaker rejected request", "state", c.breaker.State())
			return usecase.GoogleIdentity{}, fmt.Errorf("%w: google sign-in is temporarily unavailable: %w", usecase.ErrDependencyUnavailable, err)
		}
		return usecase.GoogleIdentity{}, err
	}

	identity, expiresAt, err := c.identityFrom(info)
	if err != nil {
		return usecase.GoogleIdentity{}, err
	}

	if ttl := expiresAt.Sub(c.now()); c.cacheTTL > 0 && ttl > 0 {
		c.cache.SetWithTTL(ctx, cacheKey, identity, min(ttl, c.cacheTTL))
	}
	return identity, nil
}

func (c *Client) fetch(ctx context.Context, idToken string) (tokenInfo, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.tokenInfoURL + "?id_token=" + url.QueryEscape(idToken))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline := c.now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return tokenInfo{}, fmt.Errorf("%w: request google tokeninfo: %w: %v", usecase.ErrDependencyUnavailable, errGoogleTransient, err)
	}

	status := resp.StatusCode()
	switch {
	case status == fasthttp.StatusBadRequest || status == fasthttp.StatusUnauthorized:
		return tokenInfo{}, fmt.Errorf("%w: google rejected id token", usecase.ErrUnauthorized)
	case isRetryableStatus(status):
		c.logger.WarnContext(ctx, "google tokeninfo non-200", "status_code", status)
		return tokenInfo{}, fmt.Errorf("%w: google tokeninfo status=%d: %w", usecase.ErrDependencyUnavailable, status, errGoogleTransient)
	case status != fasthttp.StatusOK:
		c.logger.WarnContext(ctx, "google tokeninfo non-200", "status_code", status)
		return tokenInfo{}, fmt.Errorf("%w: google tokeninfo status=%d", usecase.ErrDependencyUnavailable, status)
	}

	var info tokenInfo
	if err := sonic.Unmarshal(resp.Body(), &info); err != nil {
		return tokenInfo{}, fmt.Errorf("%w: decode google tokeninfo: %v", usecase.ErrDependencyUnavailable, err)
	}
	return info, nil
}

func (c *Client) identityFrom(info tokenInfo) (usecase.GoogleIdentity, time.Time, error) {
	if _, ok := validIssuers[info.Issuer]; !ok {
		return usecase.GoogleIdentity{}, time.Time{}, fmt.Errorf("%w: unexpected issuer %q", usecase.ErrUnauthorized, info.Issuer)
	}
	if c.clientID == "" || info.Audience != c.clientID {
		return usecase.GoogleIdentity{}, time.Time{}, fmt.Errorf("%w: id token audience mismatch", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(info.Subject) == "" {
		return usecase.GoogleIdentity{}, time.Time{}, fmt.Errorf("%w: id token has no subject", usecase.ErrUnauthorized)
	}

	expiresAt := time.Unix(parseInt(info.Expiry), 0)
	if !expiresAt.After(c.now()) {
		return usecase.GoogleIdentity{}, time.Time{}, fmt.Errorf("%w: id token expired", usecase.ErrUnauthorized)
	}

	return usecase.GoogleIdentity{
		Subject:       info.Subject,
		Email:         strings.TrimSpace(info.Email),
		EmailVerified: parseBool(info.EmailVerified),
		Name:          strings.TrimSpace(info.Name),
		Picture:       strings.TrimSpace(info.Picture),
	}, expiresAt, nil
}

// tokenInfo mirrors the tokeninfo response. Google sends booleans and
// timestamps as strings.
type tokenInfo struct {
	Issuer        string `json:"iss"`
	Audience      string `json:"aud"`
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified any    `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	Expiry        any    `json:"exp"`
}

func parseBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(t))
		return b
	default:
		return false
	}
}

func parseInt(v any) int64 {
	switch t := v.(type) {
	case float64:
		return int64(t)
	case string:
		n, _ := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n
	default:
		return 0
	}
}
