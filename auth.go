package faresweep

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Authenticator obtains the bearer credential used for every offer request.
// The credential is fetched once at startup and reused for the whole sweep.
type Authenticator interface {
	Token(ctx context.Context) (string, error)
}

// ClientCredentials implements the OAuth2 client-credentials grant against
// the identity endpoint.
type ClientCredentials struct {
	URL          string
	ClientID     string
	ClientSecret string

	httpClient *http.Client
}

func NewClientCredentials(baseURL, clientID, clientSecret string) *ClientCredentials {
	return &ClientCredentials{
		URL:          baseURL + tokenPath,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		httpClient:   http.DefaultClient,
	}
}

func (a *ClientCredentials) Token(ctx context.Context) (string, error) {
	if a.ClientID == "" || a.ClientSecret == "" {
		return "", fmt.Errorf("%w: missing credentials", ErrAuth)
	}

	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", a.ClientID)
	data.Set("client_secret", a.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.URL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s", ErrAuth, resp.Status)
	}

	var tr struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("%w: could not decode response: %v", ErrAuth, err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrAuth)
	}

	return tr.AccessToken, nil
}
