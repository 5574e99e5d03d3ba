package github

import (
	"context"
	"crypto/rsa"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	gh "github.com/google/go-github/v82/github"
	"golang.org/x/oauth2"
)

// NewAppClient creates a GitHub API client authenticated as a GitHub App
// installation. Installation tokens expire after an hour; the token source is
// wrapped with oauth2.ReuseTokenSource so a fresh one is minted on demand.
func NewAppClient(appID, installationID int64, privateKeyPEM []byte) (*Client, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parsing app private key: %w", err)
	}

	src := &installationTokenSource{
		appID:          appID,
		installationID: installationID,
		key:            key,
	}
	httpClient := oauth2.NewClient(context.Background(), oauth2.ReuseTokenSource(nil, src))

	return &Client{gh: gh.NewClient(httpClient)}, nil
}

// installationTokenSource mints installation access tokens: it signs a
// short-lived RS256 app JWT and exchanges it through the Apps API.
type installationTokenSource struct {
	appID          int64
	installationID int64
	key            *rsa.PrivateKey
}

func (s *installationTokenSource) Token() (*oauth2.Token, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now.Add(-30 * time.Second)),
		ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		Issuer:    strconv.FormatInt(s.appID, 10),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.key)
	if err != nil {
		return nil, fmt.Errorf("signing app JWT: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	appClient := gh.NewClient(nil).WithAuthToken(signed)
	token, _, err := appClient.Apps.CreateInstallationToken(ctx, s.installationID, nil)
	if err != nil {
		return nil, fmt.Errorf("creating installation token for installation %d: %w", s.installationID, err)
	}

	return &oauth2.Token{
		AccessToken: token.GetToken(),
		Expiry:      token.GetExpiresAt().Time,
	}, nil
}
