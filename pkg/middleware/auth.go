package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
)

// AuthConfig holds bearer token verification settings.
type AuthConfig struct {
	Enabled   bool     `toml:"enabled"`
	Issuer    string   `toml:"issuer"`
	Audience  string   `toml:"audience"`
	SkipPaths []string `toml:"skip_paths"`
}

// AuthEnv maps auth config fields to environment variable names for override injection.
type AuthEnv struct {
	Enabled  string
	Issuer   string
	Audience string
}

// Finalize applies environment variable overrides and validation.
func (c *AuthConfig) Finalize(env *AuthEnv) error {
	if env != nil {
		c.loadEnv(env)
	}
	if c.Enabled && (c.Issuer == "" || c.Audience == "") {
		return fmt.Errorf("issuer and audience required when auth is enabled")
	}
	return nil
}

// Merge overwrites fields from overlay. Enabled always applies.
func (c *AuthConfig) Merge(overlay *AuthConfig) {
	c.Enabled = overlay.Enabled
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.Audience != "" {
		c.Audience = overlay.Audience
	}
	if overlay.SkipPaths != nil {
		c.SkipPaths = overlay.SkipPaths
	}
}

func (c *AuthConfig) loadEnv(env *AuthEnv) {
	if env.Enabled != "" {
		if v := os.Getenv(env.Enabled); v != "" {
			if enabled, err := strconv.ParseBool(v); err == nil {
				c.Enabled = enabled
			}
		}
	}
	if env.Issuer != "" {
		if v := os.Getenv(env.Issuer); v != "" {
			c.Issuer = v
		}
	}
	if env.Audience != "" {
		if v := os.Getenv(env.Audience); v != "" {
			c.Audience = v
		}
	}
}

// TokenVerifier verifies a raw bearer token. *oidc.IDTokenVerifier satisfies it.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*oidc.IDToken, error)
}

// NewVerifier discovers the issuer's OIDC configuration and returns a
// verifier bound to the configured audience.
func NewVerifier(ctx context.Context, cfg *AuthConfig) (TokenVerifier, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}
	return provider.Verifier(&oidc.Config{ClientID: cfg.Audience}), nil
}

type subjectKey struct{}

// Subject returns the verified token subject stored by Auth, if any.
func Subject(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(subjectKey{}).(string)
	return sub, ok
}

var errMissingToken = errors.New("missing bearer token")

// Auth returns middleware that rejects requests without a valid bearer token.
// Requests whose path is listed in skip pass through unauthenticated.
func Auth(verifier TokenVerifier, logger *slog.Logger, skip ...string) Func {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(skip, r.URL.Path) || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				unauthorized(w, logger, errMissingToken)
				return
			}

			token, err := verifier.Verify(r.Context(), raw)
			if err != nil {
				unauthorized(w, logger, err)
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey{}, token.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, logger *slog.Logger, err error) {
	logger.Warn("unauthorized request", "error", err)
	w.Header().Set("WWW-Authenticate", `Bearer realm="docket"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized"}`))
}
