// Package slack implements the chat-platform interaction backend: a Web API
// client, per-conversation interaction contexts, and the demultiplexer that
// routes inbound platform events to them.
package slack

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
	defaultBaseURL   = "https://slack.com/api"
	maxResponseBytes = 10 << 20 // 10 MiB — prevent unbounded reads from API responses.
)

// Profile is the slice of a user's profile document this backend consumes.
type Profile struct {
	RealName  string `json:"real_name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// API is the subset of the platform Web API the backend needs. *Client
// implements it; tests substitute fakes.
type API interface {
	// PostMessage sends text to a channel, threaded under threadTS, and
	// returns the event id of the sent message.
	PostMessage(ctx context.Context, text, channel, threadTS string) (string, error)

	// UsersInfo fetches the profile document for a user id.
	UsersInfo(ctx context.Context, userID string) (*Profile, error)
}

// Client is a thin HTTP wrapper around the platform Web API. It does not
// retry: RPC failures propagate to the caller, and reconnect logic lives in
// the event-source layer.
type Client struct {
	token    string
	appToken string
	baseURL  string
	http     *http.Client
}

// Compile-time interface check.
var _ API = (*Client)(nil)

// NewClient creates a Web API client. token is the bot token used for RPCs;
// appToken is the app-level token used to open socket-mode connections and
// may be empty when socket mode is not used.
func NewClient(token, appToken string) *Client {
	return &Client{
		token:    token,
		appToken: appToken,
		baseURL:  defaultBaseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// apiEnvelope is the common response wrapper of every Web API method.
type apiEnvelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func (e apiEnvelope) ok() bool       { return e.OK }
func (e apiEnvelope) apiErr() string { return e.Error }

// envelope is implemented by all Web API response types via embedding.
type envelope interface {
	ok() bool
	apiErr() string
}

// do sends a form-encoded POST to the given Web API method using the given
// bearer token and decodes the response. Non-ok API responses become errors.
func do[T envelope](ctx context.Context, c *Client, token, method string, form url.Values) (T, error) {
	var result T

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, body)
	if err != nil {
		return result, fmt.Errorf("slack: create %s request: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Wrap without the URL-bearing error text so the token never leaks
		// into logs. The original error is still available via Unwrap.
		return result, fmt.Errorf("slack: %s request failed: %w", method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return result, fmt.Errorf("slack: read %s response: %w", method, err)
	}

	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("slack: %s returned HTTP %d", method, resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, &result); err != nil {
		return result, fmt.Errorf("slack: decode %s response: %w", method, err)
	}
	if !result.ok() {
		return result, fmt.Errorf("slack: %s failed: %s", method, result.apiErr())
	}
	return result, nil
}

type postMessageResponse struct {
	apiEnvelope
	Message struct {
		TS string `json:"ts"`
	} `json:"message"`
}

// PostMessage implements API via chat.postMessage.
func (c *Client) PostMessage(ctx context.Context, text, channel, threadTS string) (string, error) {
	form := url.Values{
		"text":    {text},
		"channel": {channel},
	}
	if threadTS != "" {
		form.Set("thread_ts", threadTS)
	}

	resp, err := do[postMessageResponse](ctx, c, c.token, "chat.postMessage", form)
	if err != nil {
		return "", err
	}
	return resp.Message.TS, nil
}

type usersInfoResponse struct {
	apiEnvelope
	User struct {
		Profile Profile `json:"profile"`
	} `json:"user"`
}

// UsersInfo implements API via users.info.
func (c *Client) UsersInfo(ctx context.Context, userID string) (*Profile, error) {
	form := url.Values{"user": {userID}}

	resp, err := do[usersInfoResponse](ctx, c, c.token, "users.info", form)
	if err != nil {
		return nil, err
	}
	profile := resp.User.Profile
	return &profile, nil
}

type connectionsOpenResponse struct {
	apiEnvelope
	URL string `json:"url"`
}

// ConnectionsOpen requests a fresh socket-mode WebSocket URL via
// apps.connections.open. It requires the app-level token.
func (c *Client) ConnectionsOpen(ctx context.Context) (string, error) {
	resp, err := do[connectionsOpenResponse](ctx, c, c.appToken, "apps.connections.open", nil)
	if err != nil {
		return "", err
	}
	return resp.URL, nil
}
