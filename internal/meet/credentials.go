package meet

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	// CalendarScope grants event creation on the host calendar.
	CalendarScope = "https://www.googleapis.com/auth/calendar"
	// DefaultTokenURI is the provider's OAuth token endpoint.
	DefaultTokenURI = "https://oauth2.googleapis.com/token"

	jwtBearerGrant   = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	assertionTTL     = time.Hour
	tokenExpiryGrace = time.Minute
)

var ErrTokenExchange = errors.New("token exchange failed")

// ServiceAccount is the subset of a service-account key file used for the assertion exchange.
type ServiceAccount struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	TokenURI     string `json:"token_uri"`
}

// LoadServiceAccount reads a service-account JSON key from disk.
func LoadServiceAccount(path string) (*ServiceAccount, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account: %w", err)
	}
	return ParseServiceAccount(raw)
}

// ParseServiceAccount decodes a service-account JSON key.
func ParseServiceAccount(raw []byte) (*ServiceAccount, error) {
	var sa ServiceAccount
	if err := json.Unmarshal(raw, &sa); err != nil {
		return nil, fmt.Errorf("decode service account: %w", err)
	}
	if sa.ClientEmail == "" || sa.PrivateKey == "" {
		return nil, errors.New("service account: client_email and private_key required")
	}
	if sa.TokenURI == "" {
		sa.TokenURI = DefaultTokenURI
	}
	return &sa, nil
}

// TokenCache stores short-lived access tokens between bookings.
type TokenCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, token string, ttl time.Duration) error
}

// Credentials exchanges a signed service-account assertion for an access token.
type Credentials struct {
	account    *ServiceAccount
	key        *rsa.PrivateKey
	scope      string
	httpClient *http.Client
	cache      TokenCache
	logger     *zap.Logger
	now        func() time.Time
}

// NewCredentials parses the account key up front. cache may be nil.
func NewCredentials(sa *ServiceAccount, httpClient *http.Client, cache TokenCache, logger *zap.Logger) (*Credentials, error) {
	if sa == nil {
		return nil, errors.New("service account required")
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(sa.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Credentials{
		account:    sa,
		key:        key,
		scope:      CalendarScope,
		httpClient: httpClient,
		cache:      cache,
		logger:     logger,
		now:        time.Now,
	}, nil
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int    `json:"expires_in"`
	TokenType        string `json:"token_type"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// AccessToken returns a cached token or performs a fresh assertion exchange.
func (c *Credentials) AccessToken(ctx context.Context) (string, error) {
	cacheKey := "meet:token:" + c.account.ClientEmail
	if c.cache != nil {
		tok, ok, err := c.cache.Get(ctx, cacheKey)
		if err != nil {
			c.logger.Warn("token cache read failed", zap.Error(err))
		} else if ok {
			return tok, nil
		}
	}

	assertion, err := c.signAssertion()
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("grant_type", jwtBearerGrant)
	form.Set("assertion", assertion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.account.TokenURI, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenExchange, err)
	}
	defer resp.Body.Close()

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ErrTokenExchange, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := body.ErrorDescription
		if msg == "" {
			msg = "failed to get access token"
		}
		return "", fmt.Errorf("%w: %s (status %d)", ErrTokenExchange, msg, resp.StatusCode)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access_token", ErrTokenExchange)
	}

	if c.cache != nil {
		ttl := time.Duration(body.ExpiresIn)*time.Second - tokenExpiryGrace
		if body.ExpiresIn == 0 {
			ttl = assertionTTL - tokenExpiryGrace
		}
		if ttl > 0 {
			if err := c.cache.Set(ctx, cacheKey, body.AccessToken, ttl); err != nil {
				c.logger.Warn("token cache write failed", zap.Error(err))
			}
		}
	}
	return body.AccessToken, nil
}

func (c *Credentials) signAssertion() (string, error) {
	now := c.now()
	claims := jwt.MapClaims{
		"iss":   c.account.ClientEmail,
		"scope": c.scope,
		"aud":   c.account.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if c.account.PrivateKeyID != "" {
		token.Header["kid"] = c.account.PrivateKeyID
	}
	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}
	return signed, nil
}
