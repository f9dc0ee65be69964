package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultGitHubOAuthURL = "https://github.com/login/oauth"
	DefaultGitHubAPIURL   = "https://api.github.com"
)

// GitHubUser is the subset of the GitHub user profile used for sign in.
type GitHubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// GitHubClient performs the OAuth code exchange and profile lookup.
type GitHubClient struct {
	clientID     string
	clientSecret string
	oauthURL     string
	apiURL       string
	http         *http.Client
}

func NewGitHubClient(clientID, clientSecret, oauthURL, apiURL string) *GitHubClient {
	if oauthURL == "" {
		oauthURL = DefaultGitHubOAuthURL
	}
	if apiURL == "" {
		apiURL = DefaultGitHubAPIURL
	}
	return &GitHubClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		oauthURL:     strings.TrimSuffix(oauthURL, "/"),
		apiURL:       strings.TrimSuffix(apiURL, "/"),
		http:         &http.Client{Timeout: 10 * time.Second},
	}
}

// ExchangeCode trades an OAuth authorization code for an access token.
func (c *GitHubClient) ExchangeCode(ctx context.Context, code string) (string, error) {
	data := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"code":          {code},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.oauthURL+"/access_token", strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req, "token endpoint")
	if err != nil {
		return "", err
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		Error       string `json:"error"`
	}
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tok.Error != "" {
		return "", fmt.Errorf("token endpoint error: %s", tok.Error)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("empty access token")
	}
	return tok.AccessToken, nil
}

// FetchUser returns the profile of the user owning accessToken.
func (c *GitHubClient) FetchUser(ctx context.Context, accessToken string) (*GitHubUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("create user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	body, err := c.do(req, "user endpoint")
	if err != nil {
		return nil, err
	}

	var u GitHubUser
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if u.ID == 0 {
		return nil, fmt.Errorf("missing user id")
	}
	return &u, nil
}

func (c *GitHubClient) do(req *http.Request, name string) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %d: %s", name, resp.StatusCode, string(body))
	}
	return body, nil
}
