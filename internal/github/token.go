package github

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/wahlandcase/attuned.tickets/internal/logging"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource supplies the bearer token for API calls
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed personal access token
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	return string(s), nil
}

// GhCLIToken reads the token the gh CLI is logged in with
type GhCLIToken struct {
	once  sync.Once
	token string
	err   error
}

func (g *GhCLIToken) Token(ctx context.Context) (string, error) {
	g.once.Do(func() {
		out, err := exec.CommandContext(ctx, "gh", "auth", "token").Output()
		if err != nil {
			g.err = fmt.Errorf("gh auth token failed (run 'gh auth login'): %w", err)
			return
		}
		g.token = strings.TrimSpace(string(out))
	})
	return g.token, g.err
}

// AppTokenSource authenticates as a GitHub App installation
type AppTokenSource struct {
	apiURL         string
	appID          string
	installationID string
	privateKeyPath string
	http           *http.Client

	// Cached installation token
	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewAppTokenSource creates a GitHub App token source
func NewAppTokenSource(apiURL, appID, installationID, privateKeyPath string) *AppTokenSource {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &AppTokenSource{
		apiURL:         strings.TrimSuffix(apiURL, "/"),
		appID:          appID,
		installationID: installationID,
		privateKeyPath: privateKeyPath,
		http:           &http.Client{Timeout: 15 * time.Second},
	}
}

// Token returns a valid installation token, refreshing it 5 minutes before expiry
func (a *AppTokenSource) Token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && time.Now().Before(a.tokenExpiry.Add(-5*time.Minute)) {
		return a.token, nil
	}

	jwtToken, err := a.generateJWT()
	if err != nil {
		return "", fmt.Errorf("failed to generate JWT: %w", err)
	}

	token, expiry, err := a.exchangeForInstallationToken(ctx, jwtToken)
	if err != nil {
		return "", err
	}

	a.token = token
	a.tokenExpiry = expiry

	logging.Debug("refreshed GitHub App installation token",
		"app_id", a.appID,
		"expires", expiry.Format(time.RFC3339))

	return token, nil
}

// generateJWT creates a signed JWT for GitHub App authentication.
func (a *AppTokenSource) generateJWT() (string, error) {
	keyData, err := os.ReadFile(a.privateKeyPath)
	if err != nil {
		return "", fmt.Errorf("failed to read private key: %w", err)
	}

	privateKey, err := parseRSAPrivateKey(keyData)
	if err != nil {
		return "", fmt.Errorf("failed to parse private key: %w", err)
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now.Add(-60 * time.Second)), // Clock skew buffer
		ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),  // Max 10 minutes
		Issuer:    a.appID,
	}

	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(privateKey)
}

// exchangeForInstallationToken exchanges a JWT for an installation access token.
func (a *AppTokenSource) exchangeForInstallationToken(ctx context.Context, jwtToken string) (string, time.Time, error) {
	url := fmt.Sprintf("%s/app/installations/%s/access_tokens", a.apiURL, a.installationID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+jwtToken)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := a.http.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return "", time.Time{}, fmt.Errorf("failed to get installation token: %d - %s", resp.StatusCode, truncateBytes(body, 500))
	}

	var result struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to parse response: %w", err)
	}

	return result.Token, result.ExpiresAt, nil
}

// parseRSAPrivateKey parses a PEM-encoded RSA private key (PKCS#1 or PKCS#8).
func parseRSAPrivateKey(pemData []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is not RSA")
	}
	return rsaKey, nil
}

// TokenConfig selects a TokenSource
type TokenConfig struct {
	APIURL         string
	Token          string
	AppID          string
	InstallationID string
	PrivateKeyPath string
}

// NewTokenSource picks the App source when App credentials are set, then a
// static token (config, then GITHUB_TOKEN/GH_TOKEN), then the gh CLI.
func NewTokenSource(cfg TokenConfig) TokenSource {
	if cfg.AppID != "" && cfg.PrivateKeyPath != "" {
		return NewAppTokenSource(cfg.APIURL, cfg.AppID, cfg.InstallationID, cfg.PrivateKeyPath)
	}
	if cfg.Token != "" {
		return StaticToken(cfg.Token)
	}
	for _, env := range []string{"GITHUB_TOKEN", "GH_TOKEN"} {
		if token := os.Getenv(env); token != "" {
			return StaticToken(token)
		}
	}
	return &GhCLIToken{}
}
