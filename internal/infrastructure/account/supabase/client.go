package supabase

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/infantry-community/internal/domain/user"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
	"github.com/riskibarqy/infantry-community/internal/platform/resilience"
	"github.com/riskibarqy/infantry-community/internal/usecase"
)

const (
	userPath             = "/auth/v1/user"
	defaultCacheTTL      = 30 * time.Second
	defaultCacheMaxItems = 10000
)

var errAuthTransient = errors.New("supabase auth transient failure")

type Config struct {
	BaseURL        string
	ServiceRoleKey string
	// JWTSecret enables local HS256 verification; the auth API is only called
	// when it is empty.
	JWTSecret      string
	CacheTTL       time.Duration
	CacheMaxItems  int
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client resolves bearer tokens to principals.
type Client struct {
	httpClient *http.Client
	userURL    string
	apiKey     string
	jwtSecret  []byte
	cache      *principalCache
	breaker    *resilience.CircuitBreaker
	logger     *logging.Logger
	now        func() time.Time
}

func NewClient(httpClient *http.Client, cfg Config, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	cacheMax := cfg.CacheMaxItems
	if cacheMax <= 0 {
		cacheMax = defaultCacheMaxItems
	}

	return &Client{
		httpClient: httpClient,
		userURL:    buildURL(cfg.BaseURL, userPath),
		apiKey:     strings.TrimSpace(cfg.ServiceRoleKey),
		jwtSecret:  []byte(strings.TrimSpace(cfg.JWTSecret)),
		cache:      newPrincipalCache(cacheTTL, cacheMax),
		breaker:    resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
		logger:     logger,
		now:        time.Now,
	}
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	key := hashToken(token)
	if principal, ok := c.cache.Get(key); ok {
		return principal, nil
	}

	var (
		principal user.Principal
		err       error
	)
	if len(c.jwtSecret) > 0 {
		principal, err = c.verifyLocal(token)
	} else {
		principal, err = c.verifyRemote(ctx, token)
	}
	if err != nil {
		return user.Principal{}, err
	}

	c.cache.Set(key, principal)
	return principal, nil
}

type accessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Client) verifyLocal(token string) (user.Principal, error) {
	claims := &accessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return c.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid {
		return user.Principal{}, fmt.Errorf("%w: invalid access token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return user.Principal{}, fmt.Errorf("%w: token has no subject", usecase.ErrUnauthorized)
	}

	return user.Principal{UserID: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}

func (c *Client) verifyRemote(ctx context.Context, token string) (user.Principal, error) {
	if c.userURL == "" || c.apiKey == "" {
		return user.Principal{}, fmt.Errorf("%w: auth api is not configured", usecase.ErrDependencyUnavailable)
	}

	var principal user.Principal
	call := func() error {
		var err error
		principal, err = c.fetchUser(ctx, token)
		return err
	}

	err := c.breaker.Call(call, isCircuitFailure)
	switch {
	case err == nil:
		return principal, nil
	case errors.Is(err, resilience.ErrCircuitOpen):
		return user.Principal{}, fmt.Errorf("%w: auth api circuit open", usecase.ErrDependencyUnavailable)
	case errors.Is(err, errAuthTransient):
		return user.Principal{}, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
	default:
		return user.Principal{}, err
	}
}

func (c *Client) fetchUser(ctx context.Context, token string) (user.Principal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userURL, nil)
	if err != nil {
		return user.Principal{}, errors.Wrap(err, "create auth user request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return user.Principal{}, errors.Mark(errors.Wrap(err, "request auth user"), errAuthTransient)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return user.Principal{}, fmt.Errorf("%w: token rejected", usecase.ErrUnauthorized)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return user.Principal{}, errors.Mark(errors.Wrap(err, "read auth user response"), errAuthTransient)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "supabase auth non-200", "status_code", resp.StatusCode)
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return user.Principal{}, errors.Mark(errors.Newf("auth api status %d", resp.StatusCode), errAuthTransient)
		}
		return user.Principal{}, fmt.Errorf("%w: auth api status %d", usecase.ErrUnauthorized, resp.StatusCode)
	}

	var decoded userResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return user.Principal{}, errors.Wrap(err, "decode auth user response")
	}
	if strings.TrimSpace(decoded.ID) == "" {
		return user.Principal{}, errors.New("invalid auth user response: id is empty")
	}

	return user.Principal{UserID: decoded.ID, Email: decoded.Email, Role: decoded.Role}, nil
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
