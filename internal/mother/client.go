package mother

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"cadenza/internal/prefs"
)

// ErrAuthDenied indicates the mother rejected the bearer token or role.
var ErrAuthDenied = errors.New("mother denied authentication")

var errNotFound = errors.New("not found")

// ExperienceSummary is one row of the experience listing endpoint.
type ExperienceSummary struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	ArtistID int64  `json:"artist_id"`
	ImageURL string `json:"image_url"`
}

// ExperienceDetail is the full metadata document for one experience.
type ExperienceDetail struct {
	ExperienceSummary
	Themes []ThemeSummary `json:"themes"`
	Raw    json.RawMessage
}

// ThemeSummary describes one downloadable theme of an experience.
type ThemeSummary struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
}

// ArtistSummary is one row of the artist listing endpoint.
type ArtistSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

// LoginResult carries the credentials minted by a direct login.
type LoginResult struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// Catalog defines the remote operations the download worker uses. Tests
// substitute a fake.
type Catalog interface {
	ExperienceList(ctx context.Context) ([]ExperienceSummary, error)
	ArtistList(ctx context.Context) ([]ArtistSummary, error)
	ExperienceMetadata(ctx context.Context, id int64) (*ExperienceDetail, error)
	Preferences(ctx context.Context, userID string) (prefs.Tree, error)
	PutPreferences(ctx context.Context, userID string, tree prefs.Tree) error
}

// Client talks to the mother catalog over HTTPS with a JWT bearer token.
// Token and role may change at any time; the accessors are safe for
// concurrent use with in-flight requests.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
	role  string
}

var _ Catalog = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a mother client. The timeout bounds every request; callers can
// tighten further with context.
func New(baseURL, role string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("mother base url required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		role:       role,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SetToken replaces the bearer token used for subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// SetRole replaces the role claim sent with subsequent requests.
func (c *Client) SetRole(role string) {
	c.mu.Lock()
	c.role = role
	c.mu.Unlock()
}

func (c *Client) credentials() (token, role string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token, c.role
}

// ExperienceList fetches the experience listing.
func (c *Client) ExperienceList(ctx context.Context) ([]ExperienceSummary, error) {
	var payload struct {
		Experiences []ExperienceSummary `json:"experiences"`
	}
	if err := c.getJSON(ctx, "/api/v1/experiences", &payload); err != nil {
		return nil, err
	}
	return payload.Experiences, nil
}

// ArtistList fetches the artist listing.
func (c *Client) ArtistList(ctx context.Context) ([]ArtistSummary, error) {
	var payload struct {
		Artists []ArtistSummary `json:"artists"`
	}
	if err := c.getJSON(ctx, "/api/v1/artists", &payload); err != nil {
		return nil, err
	}
	return payload.Artists, nil
}

// ExperienceMetadata fetches the full metadata document for one experience.
// The raw body is retained so the daughter can store it verbatim.
func (c *Client) ExperienceMetadata(ctx context.Context, id int64) (*ExperienceDetail, error) {
	if id <= 0 {
		return nil, errors.New("experience id must be positive")
	}
	raw, err := c.get(ctx, fmt.Sprintf("/api/v1/experiences/%d", id))
	if err != nil {
		return nil, err
	}
	var detail ExperienceDetail
	if err := json.Unmarshal(raw, &detail); err != nil {
		return nil, fmt.Errorf("decode experience metadata: %w", err)
	}
	detail.Raw = raw
	return &detail, nil
}

// Preferences downloads the stored preference document for a user. A 404 maps
// to prefs.ErrNoSuchUser.
func (c *Client) Preferences(ctx context.Context, userID string) (prefs.Tree, error) {
	if userID == "" {
		return nil, errors.New("user id required")
	}
	raw, err := c.get(ctx, "/api/v1/users/"+url.PathEscape(userID)+"/preferences")
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, prefs.ErrNoSuchUser
		}
		return nil, err
	}
	tree, err := prefs.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("decode preferences: %w", err)
	}
	return tree, nil
}

// PutPreferences uploads a preference document for a user.
func (c *Client) PutPreferences(ctx context.Context, userID string, tree prefs.Tree) error {
	if userID == "" {
		return errors.New("user id required")
	}
	body, err := tree.Encode()
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	endpoint := c.baseURL + "/api/v1/users/" + url.PathEscape(userID) + "/preferences"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode, endpoint); err != nil {
		return err
	}
	return nil
}

// DirectLogin exchanges an email/password pair for a token. Used by CI and
// headless setups that cannot run the interactive auth flow.
func (c *Client) DirectLogin(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, errors.New("email and password required")
	}
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("encode login: %w", err)
	}

	endpoint := c.baseURL + "/api/v1/auth/login"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode, endpoint); err != nil {
		return nil, err
	}

	var result LoginResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	c.SetToken(result.Token)
	return &result, nil
}

func (c *Client) authorize(req *http.Request) {
	token, role := c.credentials()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if role != "" {
		req.Header.Set("X-Aimi-Role", role)
	}
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode, endpoint); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return raw, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	raw, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func checkStatus(status int, endpoint string) error {
	switch {
	case status == http.StatusOK || status == http.StatusCreated || status == http.StatusNoContent:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w (status %d)", ErrAuthDenied, status)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", errNotFound, endpoint)
	default:
		return fmt.Errorf("mother returned %d for %s", status, endpoint)
	}
}
