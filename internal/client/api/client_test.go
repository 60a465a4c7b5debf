package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-cms/inkwell/pkg/api"
)

func TestLogin_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/auth/login", r.URL.Path)

		var req api.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "author@example.com", req.Email)
		assert.Equal(t, "hunter2hunter2", req.Password)

		http.SetCookie(w, &http.Cookie{
			Name:     api.RefreshCookieName,
			Value:    "refresh-token.sig",
			HttpOnly: true,
			Expires:  time.Now().Add(24 * time.Hour),
		})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.LoginResponse{
			User:        api.User{ID: "u1", Email: "author@example.com", Role: "author"},
			AccessToken: "access-token",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	resp, cookie, expires, err := client.Login(context.Background(), "author@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "access-token", resp.AccessToken)
	assert.Equal(t, "u1", resp.User.ID)
	assert.Equal(t, "refresh-token.sig", cookie)
	assert.False(t, expires.IsZero())
}

func TestLogin_SignInError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{
			ErrorMessage: "invalid email or password",
			Title:        "SignInError",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	_, _, _, err := client.Login(context.Background(), "author@example.com", "wrong")
	require.Error(t, err)

	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, KindSignIn, domainErr.Kind)
	assert.Equal(t, http.StatusUnauthorized, domainErr.StatusCode)
	assert.Equal(t, "invalid email or password", domainErr.Message)
}

func TestRefresh_PresentsCookieAndCapturesRotation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/v1/auth/token", r.URL.Path)

		cookie, err := r.Cookie(api.RefreshCookieName)
		require.NoError(t, err)
		assert.Equal(t, "old-token.sig", cookie.Value)

		http.SetCookie(w, &http.Cookie{
			Name:    api.RefreshCookieName,
			Value:   "rotated-token.sig",
			Expires: time.Now().Add(24 * time.Hour),
		})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.TokenResponse{AccessToken: "fresh-access"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	resp, cookie, _, err := client.Refresh(context.Background(), "old-token.sig")
	require.NoError(t, err)
	assert.Equal(t, "fresh-access", resp.AccessToken)
	assert.Equal(t, "rotated-token.sig", cookie)
}

func TestLogout_IgnoresClearedCookie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:   api.RefreshCookieName,
			Value:  "",
			MaxAge: -1,
		})
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	err := client.Logout(context.Background(), "old-token.sig")
	require.NoError(t, err)
}

func TestMe_AttachesBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer my-access-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.User{ID: "u1", Email: "author@example.com"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	client.SetAccessToken("my-access-token")

	user, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}

func TestMe_NoTokenNoHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{ErrorMessage: "not authenticated", Title: "Unauthorized"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	_, err := client.Me(context.Background())
	require.Error(t, err)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	assert.Equal(t, "not authenticated", httpErr.Message)
}

func TestListPosts_EncodesFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "go", q.Get("search"))
		assert.Equal(t, "releases", q.Get("tag"))
		assert.Equal(t, "true", q.Get("mine"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "5", q.Get("pageSize"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.PostList{Page: 2, PageSize: 5})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	list, err := client.ListPosts(context.Background(), PostFilter{
		Search: "go", Tag: "releases", Mine: true, Page: 2, PageSize: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Page)
}

func TestCreatePost_DomainValidationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{
			ErrorMessage: "validation failed",
			Errors:       map[string]string{"title": "title is required"},
			Title:        "ValidationError",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	_, err := client.CreatePost(context.Background(), api.CreatePostRequest{})
	require.Error(t, err)

	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, KindValidation, domainErr.Kind)
	assert.Equal(t, "title is required", domainErr.Details["title"])
	assert.Contains(t, domainErr.Error(), "title: title is required")
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := NewClient(srv.URL)

	_, err := client.Me(context.Background())
	require.Error(t, err)

	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestParseError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		check      func(t *testing.T, err error)
	}{
		{
			name:       "not found",
			statusCode: http.StatusNotFound,
			body:       `{"errorMessage":"post not found","title":"NotFoundError"}`,
			check: func(t *testing.T, err error) {
				var de *DomainError
				require.ErrorAs(t, err, &de)
				assert.Equal(t, KindNotFound, de.Kind)
				assert.Equal(t, "post not found", de.Message)
			},
		},
		{
			name:       "unique constraint",
			statusCode: http.StatusBadRequest,
			body:       `{"errorMessage":"slug must be unique","title":"UniqueConstraintError"}`,
			check: func(t *testing.T, err error) {
				var de *DomainError
				require.ErrorAs(t, err, &de)
				assert.Equal(t, KindUniqueConstraint, de.Kind)
			},
		},
		{
			name:       "forbidden without title",
			statusCode: http.StatusForbidden,
			body:       `{"errorMessage":"you do not own this post"}`,
			check: func(t *testing.T, err error) {
				var de *DomainError
				require.ErrorAs(t, err, &de)
				assert.Equal(t, KindForbidden, de.Kind)
				assert.Equal(t, "you do not own this post", de.Message)
			},
		},
		{
			name:       "rate limited",
			statusCode: http.StatusTooManyRequests,
			body:       `{"errorMessage":"too many requests"}`,
			check: func(t *testing.T, err error) {
				var de *DomainError
				require.ErrorAs(t, err, &de)
				assert.Equal(t, KindRateLimited, de.Kind)
			},
		},
		{
			name:       "unknown title degrades to http error",
			statusCode: http.StatusBadGateway,
			body:       `{"errorMessage":"upstream broke","title":"GatewayError"}`,
			check: func(t *testing.T, err error) {
				var he *HTTPError
				require.ErrorAs(t, err, &he)
				assert.Equal(t, "upstream broke", he.Message)
			},
		},
		{
			name:       "errors map wins over title for message",
			statusCode: http.StatusBadRequest,
			body:       `{"errors":{"name":"name is required"},"title":"SomethingElse"}`,
			check: func(t *testing.T, err error) {
				var he *HTTPError
				require.ErrorAs(t, err, &he)
				assert.Equal(t, "name is required", he.Message)
			},
		},
		{
			name:       "malformed body",
			statusCode: http.StatusInternalServerError,
			body:       `<html>nginx says no</html>`,
			check: func(t *testing.T, err error) {
				var he *HTTPError
				require.ErrorAs(t, err, &he)
				assert.Equal(t, http.StatusInternalServerError, he.StatusCode)
				assert.Equal(t, "<html>nginx says no</html>", he.Message)
			},
		},
		{
			name:       "empty body",
			statusCode: http.StatusServiceUnavailable,
			body:       "",
			check: func(t *testing.T, err error) {
				var he *HTTPError
				require.ErrorAs(t, err, &he)
				assert.Equal(t, "Service Unavailable", he.Message)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseError(tt.statusCode, []byte(tt.body))
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestNetworkError_Unwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := &NetworkError{Err: inner}
	assert.ErrorIs(t, err, inner)
}
