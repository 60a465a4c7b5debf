package cli

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientapi "github.com/inkwell-cms/inkwell/internal/client/api"
	"github.com/inkwell-cms/inkwell/internal/client/session"
	"github.com/inkwell-cms/inkwell/pkg/api"
)

func TestRun_UnknownCommand(t *testing.T) {
	io := newScriptedIO()
	c := New(io, &mockAPIClient{}, &mockSession{state: session.StateUnauthenticated})

	err := c.Run(context.Background(), "frobnicate", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestRunLogin_Success(t *testing.T) {
	io := newScriptedIO("author@example.com", "hunter2hunter2")
	sess := &mockSession{state: session.StateUnauthenticated}
	c := New(io, &mockAPIClient{}, sess)

	err := c.Run(context.Background(), "login", nil)
	require.NoError(t, err)

	assert.Equal(t, "author@example.com", sess.loginEmail)
	assert.Contains(t, io.output.String(), "Signed in.")
	assert.Contains(t, io.output.String(), "author@example.com")

	// The password prompt must go through the no-echo path.
	require.Len(t, io.ReadPasswordCalls(), 1)
	assert.Equal(t, "Password: ", io.ReadPasswordCalls()[0].Prompt)
}

func TestRunLogin_BadCredentials(t *testing.T) {
	io := newScriptedIO("author@example.com", "wrong")
	sess := &mockSession{
		state: session.StateUnauthenticated,
		loginErr: &clientapi.DomainError{
			StatusCode: http.StatusUnauthorized,
			Kind:       clientapi.KindSignIn,
			Message:    "invalid email or password",
		},
	}
	c := New(io, &mockAPIClient{}, sess)

	err := c.Run(context.Background(), "login", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email or password")
}

func TestRunLogout(t *testing.T) {
	io := newScriptedIO()
	sess := &mockSession{state: session.StateAuthenticated}
	c := New(io, &mockAPIClient{}, sess)

	err := c.Run(context.Background(), "logout", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, sess.logoutCalls)
	assert.Contains(t, io.output.String(), "Signed out.")
}

func TestRunStatus(t *testing.T) {
	tests := []struct {
		name string
		sess *mockSession
		want string
	}{
		{
			name: "signed in",
			sess: &mockSession{
				state: session.StateAuthenticated,
				user:  &api.User{Name: "Author", Email: "author@example.com", Role: "author"},
			},
			want: "signed in",
		},
		{
			name: "signed out",
			sess: &mockSession{state: session.StateUnauthenticated},
			want: "not signed in",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			io := newScriptedIO()
			c := New(io, &mockAPIClient{}, tt.sess)

			err := c.Run(context.Background(), "status", nil)
			require.NoError(t, err)
			assert.Contains(t, io.output.String(), tt.want)
		})
	}
}

func TestRunPostsList(t *testing.T) {
	io := newScriptedIO()
	client := &mockAPIClient{
		posts: []api.Post{
			{Slug: "hello-world", Title: "Hello World", Published: true, PublishedAt: publishedAt(-time.Hour)},
			{Slug: "wip", Title: "Work in Progress"},
		},
	}
	c := New(io, client, &mockSession{state: session.StateAuthenticated})

	err := c.Run(context.Background(), "posts", []string{"list", "--tag", "releases", "--search", "go"})
	require.NoError(t, err)

	assert.Equal(t, "releases", client.lastFilter.Tag)
	assert.Equal(t, "go", client.lastFilter.Search)
	assert.Contains(t, io.output.String(), "hello-world")
	assert.Contains(t, io.output.String(), "draft")
}

func TestRunPostsList_MineRequiresAuth(t *testing.T) {
	io := newScriptedIO()
	c := New(io, &mockAPIClient{}, &mockSession{state: session.StateUnauthenticated})

	err := c.Run(context.Background(), "posts", []string{"list", "--mine"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")
}

func TestRunPostsCreate_Interactive(t *testing.T) {
	io := newScriptedIO(
		"My Post",        // title
		"",               // slug, derive
		"A short intro",  // summary
		"First line.",    // body
		"Second line.",   // body
		".",              // body terminator
		"go, releases",   // tags
		"y",              // publish
	)
	client := &mockAPIClient{
		post: &api.Post{ID: "p1", Slug: "my-post", Title: "My Post", Published: true},
	}
	c := New(io, client, &mockSession{state: session.StateAuthenticated})

	err := c.Run(context.Background(), "posts", []string{"create"})
	require.NoError(t, err)

	assert.Equal(t, "My Post", client.lastCreate.Title)
	assert.Empty(t, client.lastCreate.Slug)
	assert.Equal(t, "First line.\nSecond line.", client.lastCreate.Body)
	assert.Equal(t, []string{"go", "releases"}, client.lastCreate.Tags)
	assert.True(t, client.lastCreate.Publish)
	assert.Contains(t, io.output.String(), "/posts/my-post")
}

func TestRunPostsCreate_RequiresAuth(t *testing.T) {
	io := newScriptedIO()
	c := New(io, &mockAPIClient{}, &mockSession{state: session.StateUnauthenticated})

	err := c.Run(context.Background(), "posts", []string{"create"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")
}

func TestRunPostsEdit(t *testing.T) {
	io := newScriptedIO()
	client := &mockAPIClient{post: &api.Post{ID: "p1", Title: "Renamed"}}
	c := New(io, client, &mockSession{state: session.StateAuthenticated})

	err := c.Run(context.Background(), "posts", []string{"edit", "--title", "Renamed", "--tags", "go", "p1"})
	require.NoError(t, err)

	assert.Equal(t, "p1", client.lastUpdateID)
	require.NotNil(t, client.lastUpdate.Title)
	assert.Equal(t, "Renamed", *client.lastUpdate.Title)
	assert.Nil(t, client.lastUpdate.Summary)
	assert.Equal(t, []string{"go"}, client.lastUpdate.Tags)
}

func TestRunPostsPublishAndDelete(t *testing.T) {
	io := newScriptedIO()
	client := &mockAPIClient{post: &api.Post{ID: "p1", Slug: "my-post", Title: "My Post"}}
	c := New(io, client, &mockSession{state: session.StateAuthenticated})

	require.NoError(t, c.Run(context.Background(), "posts", []string{"publish", "p1"}))
	assert.Equal(t, "p1", client.publishedPost)

	require.NoError(t, c.Run(context.Background(), "posts", []string{"delete", "p1"}))
	assert.Equal(t, "p1", client.deletedPost)
}

func TestRunTags(t *testing.T) {
	io := newScriptedIO()
	client := &mockAPIClient{
		tags: []api.Tag{{Name: "Go", Slug: "go"}},
		tag:  &api.Tag{Name: "Releases", Slug: "releases"},
	}
	c := New(io, client, &mockSession{state: session.StateAuthenticated})

	require.NoError(t, c.Run(context.Background(), "tags", []string{"list"}))
	assert.Contains(t, io.output.String(), "go")

	require.NoError(t, c.Run(context.Background(), "tags", []string{"create", "Releases"}))
	assert.Equal(t, "Releases", client.createdTag)

	require.NoError(t, c.Run(context.Background(), "tags", []string{"delete", "t1"}))
	assert.Equal(t, "t1", client.deletedTag)
}

func TestRunCommentsAdd_AnonymousAllowed(t *testing.T) {
	io := newScriptedIO(
		"Reader",             // name
		"reader@example.com", // email
		"Nice post!",         // body
		".",                  // terminator
	)
	client := &mockAPIClient{comment: &api.Comment{ID: "c1"}}
	c := New(io, client, &mockSession{state: session.StateUnauthenticated})

	err := c.Run(context.Background(), "comments", []string{"add", "my-post"})
	require.NoError(t, err)

	assert.Equal(t, "my-post", client.commentSlug)
	assert.Equal(t, "Reader", client.lastComment.AuthorName)
	assert.Equal(t, "Nice post!", client.lastComment.Body)
}

func TestRunCommentsDelete_RequiresAuth(t *testing.T) {
	io := newScriptedIO()
	c := New(io, &mockAPIClient{}, &mockSession{state: session.StateUnauthenticated})

	err := c.Run(context.Background(), "comments", []string{"delete", "c1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")
}

func TestDescribeError(t *testing.T) {
	netErr := &clientapi.NetworkError{Err: errors.New("connection refused")}
	assert.Contains(t, describeError(netErr), "could not reach the server")

	domainErr := &clientapi.DomainError{Kind: clientapi.KindNotFound, Message: "post not found"}
	assert.Equal(t, "post not found", describeError(domainErr))

	httpErr := &clientapi.HTTPError{StatusCode: 502, Message: "bad gateway"}
	assert.Contains(t, describeError(httpErr), "502")
}

func TestSplitTags(t *testing.T) {
	assert.Nil(t, splitTags("  "))
	assert.Equal(t, []string{"go"}, splitTags("go"))
	assert.Equal(t, []string{"go", "releases"}, splitTags(" go , releases ,"))
}
