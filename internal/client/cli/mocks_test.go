package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	clientapi "github.com/inkwell-cms/inkwell/internal/client/api"
	"github.com/inkwell-cms/inkwell/internal/client/iocli"
	"github.com/inkwell-cms/inkwell/internal/client/session"
	"github.com/inkwell-cms/inkwell/pkg/api"
)

// scriptedIO is an IOMock that answers prompts from a queue and
// collects everything printed.
type scriptedIO struct {
	*iocli.IOMock
	output *strings.Builder
}

func newScriptedIO(inputs ...string) *scriptedIO {
	var out strings.Builder
	next := 0

	read := func(prompt string) (string, error) {
		if next >= len(inputs) {
			return "", fmt.Errorf("no scripted input for prompt %q", prompt)
		}
		input := inputs[next]
		next++
		return input, nil
	}

	return &scriptedIO{
		output: &out,
		IOMock: &iocli.IOMock{
			PrintlnFunc: func(a ...any) {
				fmt.Fprintln(&out, a...)
			},
			PrintfFunc: func(format string, a ...any) {
				fmt.Fprintf(&out, format, a...)
			},
			ReadInputFunc:    read,
			ReadPasswordFunc: read,
		},
	}
}

type mockAPIClient struct {
	posts    []api.Post
	post     *api.Post
	tags     []api.Tag
	tag      *api.Tag
	comments []api.Comment
	comment  *api.Comment
	user     *api.User
	err      error

	lastFilter    clientapi.PostFilter
	lastCreate    api.CreatePostRequest
	lastUpdate    api.UpdatePostRequest
	lastUpdateID  string
	deletedPost   string
	deletedTag    string
	deletedCmt    string
	createdTag    string
	createdUser   api.CreateUserRequest
	commentSlug   string
	lastComment   api.CreateCommentRequest
	publishedPost string
}

func (m *mockAPIClient) ListPosts(ctx context.Context, filter clientapi.PostFilter) (*api.PostList, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastFilter = filter
	return &api.PostList{
		Posts: m.posts, Page: 1, PageSize: 20,
		Total: int64(len(m.posts)), TotalPages: 1,
	}, nil
}

func (m *mockAPIClient) GetPost(ctx context.Context, slug string) (*api.Post, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.post, nil
}

func (m *mockAPIClient) CreatePost(ctx context.Context, req api.CreatePostRequest) (*api.Post, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastCreate = req
	return m.post, nil
}

func (m *mockAPIClient) UpdatePost(ctx context.Context, id string, req api.UpdatePostRequest) (*api.Post, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastUpdateID = id
	m.lastUpdate = req
	return m.post, nil
}

func (m *mockAPIClient) PublishPost(ctx context.Context, id string) (*api.Post, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.publishedPost = id
	return m.post, nil
}

func (m *mockAPIClient) DeletePost(ctx context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deletedPost = id
	return nil
}

func (m *mockAPIClient) ListTags(ctx context.Context) ([]api.Tag, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.tags, nil
}

func (m *mockAPIClient) CreateTag(ctx context.Context, name string) (*api.Tag, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.createdTag = name
	return m.tag, nil
}

func (m *mockAPIClient) DeleteTag(ctx context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deletedTag = id
	return nil
}

func (m *mockAPIClient) ListComments(ctx context.Context, slug string) ([]api.Comment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.comments, nil
}

func (m *mockAPIClient) CreateComment(ctx context.Context, slug string, req api.CreateCommentRequest) (*api.Comment, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.commentSlug = slug
	m.lastComment = req
	return m.comment, nil
}

func (m *mockAPIClient) DeleteComment(ctx context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deletedCmt = id
	return nil
}

func (m *mockAPIClient) CreateUser(ctx context.Context, req api.CreateUserRequest) (*api.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.createdUser = req
	return m.user, nil
}

type mockSession struct {
	state       session.State
	user        *api.User
	loginErr    error
	logoutErr   error
	loginEmail  string
	logoutCalls int
}

func (m *mockSession) State() session.State { return m.state }

func (m *mockSession) User() *api.User { return m.user }

func (m *mockSession) Login(ctx context.Context, email, password string) (*api.User, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	m.loginEmail = email
	m.state = session.StateAuthenticated
	m.user = &api.User{ID: "u1", Email: email, Name: "Author", Role: "author"}
	return m.user, nil
}

func (m *mockSession) Logout(ctx context.Context) error {
	if m.logoutErr != nil {
		return m.logoutErr
	}
	m.logoutCalls++
	m.state = session.StateUnauthenticated
	m.user = nil
	return nil
}

func publishedAt(offset time.Duration) string {
	return time.Now().Add(offset).UTC().Format(time.RFC3339)
}
