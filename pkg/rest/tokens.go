package rest

import (
	"context"
	"errors"
	"net/http"
)

const (
	// AccessTokenCookie holds the bearer token issued at sign-in.
	AccessTokenCookie = "accessToken"
	// RefreshTokenCookie holds the refresh token forwarded on every call.
	RefreshTokenCookie = "refreshToken"
)

// ErrNoCredentials is returned when a token source has no access token.
var ErrNoCredentials = errors.New("rest: no credentials available")

// Tokens are the credentials attached to every backend request.
type Tokens struct {
	Access  string
	Refresh string
}

// TokenSource supplies credentials for the current caller.
type TokenSource interface {
	Tokens(ctx context.Context) (Tokens, error)
}

// StaticTokens always returns the same credentials.
type StaticTokens Tokens

// Tokens implements TokenSource.
func (s StaticTokens) Tokens(context.Context) (Tokens, error) {
	if s.Access == "" {
		return Tokens{}, ErrNoCredentials
	}
	return Tokens(s), nil
}

// CookieTokens reads the access and refresh tokens from the request cookies.
type CookieTokens struct {
	Request *http.Request
}

// Tokens implements TokenSource.
func (c CookieTokens) Tokens(context.Context) (Tokens, error) {
	if c.Request == nil {
		return Tokens{}, ErrNoCredentials
	}
	return tokensFromCookies(c.Request.Cookies())
}

// CookieHeaderTokens parses a raw Cookie header, for routers that expose headers
// but not the underlying *http.Request.
func CookieHeaderTokens(header string) (Tokens, error) {
	if header == "" {
		return Tokens{}, ErrNoCredentials
	}
	cookies, err := http.ParseCookie(header)
	if err != nil {
		return Tokens{}, ErrNoCredentials
	}
	return tokensFromCookies(cookies)
}

// ContextWithCookieHeader attaches the token cookies of a raw Cookie header to ctx.
// ctx is returned unchanged when the header carries no access token.
func ContextWithCookieHeader(ctx context.Context, header string) context.Context {
	tokens, err := CookieHeaderTokens(header)
	if err != nil {
		return ctx
	}
	return ContextWithTokens(ctx, tokens)
}

func tokensFromCookies(cookies []*http.Cookie) (Tokens, error) {
	var tokens Tokens
	for _, cookie := range cookies {
		switch cookie.Name {
		case AccessTokenCookie:
			tokens.Access = cookie.Value
		case RefreshTokenCookie:
			tokens.Refresh = cookie.Value
		}
	}
	if tokens.Access == "" {
		return Tokens{}, ErrNoCredentials
	}
	return tokens, nil
}

type tokensKey struct{}

// ContextWithTokens attaches per-request credentials to ctx.
func ContextWithTokens(ctx context.Context, tokens Tokens) context.Context {
	return context.WithValue(ctx, tokensKey{}, tokens)
}

// ContextTokens reads credentials stored by ContextWithTokens or CookieMiddleware,
// falling back to Fallback when the context carries none.
type ContextTokens struct {
	Fallback TokenSource
}

// Tokens implements TokenSource.
func (c ContextTokens) Tokens(ctx context.Context) (Tokens, error) {
	if tokens, ok := ctx.Value(tokensKey{}).(Tokens); ok && tokens.Access != "" {
		return tokens, nil
	}
	if c.Fallback != nil {
		return c.Fallback.Tokens(ctx)
	}
	return Tokens{}, ErrNoCredentials
}

// CookieMiddleware copies the token cookies into the request context so a client
// configured with ContextTokens forwards the caller's own credentials.
func CookieMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tokens, err := (CookieTokens{Request: r}).Tokens(r.Context()); err == nil {
			r = r.WithContext(ContextWithTokens(r.Context(), tokens))
		}
		next.ServeHTTP(w, r)
	})
}
