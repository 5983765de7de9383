package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
)

// ErrAuthentication is returned when the token exchange is rejected.
var ErrAuthentication = errors.New("google authentication failed")

// TokenEndpoint is where signed service-account assertions are exchanged
// for bearer tokens. Tests point it at a local server.
var TokenEndpoint = google.JWTTokenURL

// JWTConfig reads a service-account key file and prepares the signed
// JWT-bearer assertion (RS256, one hour expiry) for the given scopes.
func JWTConfig(keyPath string, scopes []string) (*jwt.Config, error) {
	b, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}
	cfg, err := google.JWTConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials file: %w", err)
	}
	cfg.TokenURL = TokenEndpoint
	return cfg, nil
}

// TokenSource performs one exchange up front, so bad credentials fail
// immediately, and refreshes the token as it nears expiry.
func TokenSource(ctx context.Context, keyPath string, scopes []string) (oauth2.TokenSource, error) {
	cfg, err := JWTConfig(keyPath, scopes)
	if err != nil {
		return nil, err
	}
	ts := cfg.TokenSource(ctx)
	tok, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAuthentication, describeTokenError(err))
	}
	return oauth2.ReuseTokenSource(tok, ts), nil
}

// AccessToken exchanges the service-account assertion for a bearer token.
// Nothing is cached: every call signs and exchanges a fresh assertion.
func AccessToken(ctx context.Context, keyPath string, scopes []string) (string, error) {
	ts, err := TokenSource(ctx, keyPath, scopes)
	if err != nil {
		return "", err
	}
	tok, err := ts.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrAuthentication, describeTokenError(err))
	}
	return tok.AccessToken, nil
}

// describeTokenError pulls the provider's error_description out of a failed exchange.
func describeTokenError(err error) string {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return err.Error()
	}
	if re.ErrorDescription != "" {
		return re.ErrorDescription
	}

	var body struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if jsonErr := json.Unmarshal(re.Body, &body); jsonErr == nil {
		if body.ErrorDescription != "" {
			return body.ErrorDescription
		}
		if body.Error != "" {
			return body.Error
		}
	}
	if re.ErrorCode != "" {
		return re.ErrorCode
	}
	return err.Error()
}
