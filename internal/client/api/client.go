package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/inkwell-cms/inkwell/pkg/api"
)

// Client is the HTTP client for the Inkwell API. The access token is
// held only in memory; the refresh credential is passed in and out
// explicitly so the caller decides where it lives.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// The bearer token is not replayed on redirects: a
				// redirect to another host must not receive it.
				return nil
			},
		},
	}
}

// SetAccessToken sets the bearer token attached to subsequent requests.
// An empty string clears it.
func (c *Client) SetAccessToken(token string) {
	c.accessToken = token
}

// AccessToken returns the current in-memory bearer token.
func (c *Client) AccessToken() string {
	return c.accessToken
}

// Login authenticates with email and password. The returned cookie is
// the refresh credential from the Set-Cookie header, along with its
// expiry; the caller persists it.
func (c *Client) Login(ctx context.Context, email, password string) (*api.LoginResponse, string, time.Time, error) {
	req := api.LoginRequest{Email: email, Password: password}

	var resp api.LoginResponse
	cookie, expires, err := c.doAuthRequest(ctx, http.MethodPost, "/api/v1/auth/login", req, "", &resp)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return &resp, cookie, expires, nil
}

// Refresh exchanges the refresh cookie for a fresh access token. The
// presented cookie is single-use: the server rotates it, and the
// returned cookie replaces the one passed in.
func (c *Client) Refresh(ctx context.Context, refreshCookie string) (*api.TokenResponse, string, time.Time, error) {
	var resp api.TokenResponse
	cookie, expires, err := c.doAuthRequest(ctx, http.MethodGet, "/api/v1/auth/token", nil, refreshCookie, &resp)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return &resp, cookie, expires, nil
}

// Logout revokes the session behind the refresh cookie.
func (c *Client) Logout(ctx context.Context, refreshCookie string) error {
	_, _, err := c.doAuthRequest(ctx, http.MethodPost, "/api/v1/auth/logout", nil, refreshCookie, nil)
	return err
}

// Me returns the account behind the current access token.
func (c *Client) Me(ctx context.Context) (*api.User, error) {
	var resp api.User
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/users/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateUser creates an account. Admin only.
func (c *Client) CreateUser(ctx context.Context, req api.CreateUserRequest) (*api.User, error) {
	var resp api.User
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/users", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PostFilter narrows ListPosts. Zero values mean "no filter".
type PostFilter struct {
	Search   string
	Tag      string
	Mine     bool
	Page     int
	PageSize int
}

// ListPosts returns a page of posts. Anonymous callers see only
// published posts; authenticated callers also see drafts.
func (c *Client) ListPosts(ctx context.Context, filter PostFilter) (*api.PostList, error) {
	q := url.Values{}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Tag != "" {
		q.Set("tag", filter.Tag)
	}
	if filter.Mine {
		q.Set("mine", "true")
	}
	if filter.Page > 0 {
		q.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(filter.PageSize))
	}

	path := "/api/v1/posts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp api.PostList
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetPost returns a single post by slug, body included.
func (c *Client) GetPost(ctx context.Context, slug string) (*api.Post, error) {
	var resp api.Post
	path := "/api/v1/posts/" + url.PathEscape(slug)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreatePost creates a post.
func (c *Client) CreatePost(ctx context.Context, req api.CreatePostRequest) (*api.Post, error) {
	var resp api.Post
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/posts", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdatePost applies a partial update to a post.
func (c *Client) UpdatePost(ctx context.Context, id string, req api.UpdatePostRequest) (*api.Post, error) {
	var resp api.Post
	path := "/api/v1/posts/" + url.PathEscape(id)
	if err := c.doRequest(ctx, http.MethodPut, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PublishPost makes a draft publicly visible.
func (c *Client) PublishPost(ctx context.Context, id string) (*api.Post, error) {
	var resp api.Post
	path := "/api/v1/posts/" + url.PathEscape(id) + "/publish"
	if err := c.doRequest(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeletePost removes a post and its comments.
func (c *Client) DeletePost(ctx context.Context, id string) error {
	path := "/api/v1/posts/" + url.PathEscape(id)
	return c.doRequest(ctx, http.MethodDelete, path, nil, nil)
}

// ListTags returns all tags.
func (c *Client) ListTags(ctx context.Context) ([]api.Tag, error) {
	var resp []api.Tag
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/tags", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateTag creates a tag.
func (c *Client) CreateTag(ctx context.Context, name string) (*api.Tag, error) {
	var resp api.Tag
	req := api.CreateTagRequest{Name: name}
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/tags", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteTag removes a tag. Admin only.
func (c *Client) DeleteTag(ctx context.Context, id string) error {
	path := "/api/v1/tags/" + url.PathEscape(id)
	return c.doRequest(ctx, http.MethodDelete, path, nil, nil)
}

// ListComments returns the comments on a post.
func (c *Client) ListComments(ctx context.Context, slug string) ([]api.Comment, error) {
	var resp []api.Comment
	path := "/api/v1/posts/" + url.PathEscape(slug) + "/comments"
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateComment adds a comment to a post.
func (c *Client) CreateComment(ctx context.Context, slug string, req api.CreateCommentRequest) (*api.Comment, error) {
	var resp api.Comment
	path := "/api/v1/posts/" + url.PathEscape(slug) + "/comments"
	if err := c.doRequest(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteComment removes a comment. Post author or admin only.
func (c *Client) DeleteComment(ctx context.Context, id string) error {
	path := "/api/v1/comments/" + url.PathEscape(id)
	return c.doRequest(ctx, http.MethodDelete, path, nil, nil)
}

// doRequest performs a JSON request with the in-memory bearer token and
// decodes the response into result.
func (c *Client) doRequest(ctx context.Context, method, path string, body, result interface{}) error {
	resp, respBody, err := c.send(ctx, method, path, body, "")
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseError(resp.StatusCode, respBody)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// doAuthRequest is doRequest for the auth endpoints: it presents the
// refresh cookie when given one and returns the rotated cookie value
// and expiry from the response, empty when the server cleared it.
func (c *Client) doAuthRequest(ctx context.Context, method, path string, body interface{}, refreshCookie string, result interface{}) (string, time.Time, error) {
	resp, respBody, err := c.send(ctx, method, path, body, refreshCookie)
	if err != nil {
		return "", time.Time{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", time.Time{}, parseError(resp.StatusCode, respBody)
	}

	var cookieValue string
	var cookieExpires time.Time
	for _, cookie := range resp.Cookies() {
		if cookie.Name == api.RefreshCookieName && cookie.MaxAge >= 0 {
			cookieValue = cookie.Value
			cookieExpires = cookie.Expires
		}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return "", time.Time{}, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return cookieValue, cookieExpires, nil
}

func (c *Client) send(ctx context.Context, method, path string, body interface{}, refreshCookie string) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	if refreshCookie != "" {
		req.AddCookie(&http.Cookie{Name: api.RefreshCookieName, Value: refreshCookie})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, &NetworkError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &NetworkError{Err: err}
	}

	return resp, respBody, nil
}
