// Package cli implements the inkwell command-line client: sign-in,
// post and tag management, and comment moderation against a running
// server.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	clientapi "github.com/inkwell-cms/inkwell/internal/client/api"
	"github.com/inkwell-cms/inkwell/internal/client/iocli"
	"github.com/inkwell-cms/inkwell/internal/client/session"
	"github.com/inkwell-cms/inkwell/pkg/api"
)

// apiClient is the slice of the API client the commands use.
type apiClient interface {
	ListPosts(ctx context.Context, filter clientapi.PostFilter) (*api.PostList, error)
	GetPost(ctx context.Context, slug string) (*api.Post, error)
	CreatePost(ctx context.Context, req api.CreatePostRequest) (*api.Post, error)
	UpdatePost(ctx context.Context, id string, req api.UpdatePostRequest) (*api.Post, error)
	PublishPost(ctx context.Context, id string) (*api.Post, error)
	DeletePost(ctx context.Context, id string) error
	ListTags(ctx context.Context) ([]api.Tag, error)
	CreateTag(ctx context.Context, name string) (*api.Tag, error)
	DeleteTag(ctx context.Context, id string) error
	ListComments(ctx context.Context, slug string) ([]api.Comment, error)
	CreateComment(ctx context.Context, slug string, req api.CreateCommentRequest) (*api.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	CreateUser(ctx context.Context, req api.CreateUserRequest) (*api.User, error)
}

// authService is the slice of the session the commands use.
type authService interface {
	State() session.State
	User() *api.User
	Login(ctx context.Context, email, password string) (*api.User, error)
	Logout(ctx context.Context) error
}

// Cli wires terminal IO, the API client, and the auth session into
// runnable commands.
type Cli struct {
	io      iocli.IO
	client  apiClient
	session authService
}

func New(io iocli.IO, client apiClient, sess authService) *Cli {
	return &Cli{
		io:      io,
		client:  client,
		session: sess,
	}
}

// Run dispatches a command. It returns an error for the caller to
// report; usage problems come back as errors too.
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "posts":
		return c.runPosts(ctx, args)
	case "tags":
		return c.runTags(ctx, args)
	case "comments":
		return c.runComments(ctx, args)
	case "users":
		return c.runUsers(ctx, args)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// requireAuth fails fast before a command that needs a signed-in user
// hits the server and gets a 401 anyway.
func (c *Cli) requireAuth() error {
	if c.session.State() != session.StateAuthenticated {
		return errors.New("not signed in. Run 'inkwell login' first")
	}
	return nil
}

// describeError flattens the client error taxonomy into a message fit
// for a terminal.
func describeError(err error) string {
	var netErr *clientapi.NetworkError
	if errors.As(err, &netErr) {
		return fmt.Sprintf("could not reach the server: %v", netErr.Err)
	}
	var domainErr *clientapi.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Error()
	}
	var httpErr *clientapi.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Error()
	}
	return err.Error()
}

// formatTime renders a server RFC3339 timestamp for display, passing
// through anything it cannot parse.
func formatTime(value string) string {
	if value == "" {
		return "-"
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return value
	}
	return ts.Local().Format("2006-01-02 15:04")
}

func PrintUsage(io iocli.IO) {
	io.Println("Inkwell Client")
	io.Println()
	io.Println("Usage:")
	io.Println("  inkwell [OPTIONS] COMMAND")
	io.Println()
	io.Println("Options:")
	io.Println("  --version        Show version information")
	io.Println("  --server URL     Server URL (default: http://localhost:8080)")
	io.Println("  --db PATH        Path to local database (default: inkwell-client.db)")
	io.Println()
	io.Println("Commands:")
	io.Println("  login                        Sign in to the server")
	io.Println("  logout                       Sign out and revoke the session")
	io.Println("  status                       Show authentication status")
	io.Println("  posts list [--mine] [--tag T] [--search Q] [--page N]")
	io.Println("                               List posts")
	io.Println("  posts get <slug>             Show a full post")
	io.Println("  posts create                 Create a post (interactive)")
	io.Println("  posts publish <id>           Publish a draft")
	io.Println("  posts delete <id>            Delete a post")
	io.Println("  tags list                    List tags")
	io.Println("  tags create <name>           Create a tag")
	io.Println("  tags delete <id>             Delete a tag (admin)")
	io.Println("  comments list <slug>         List comments on a post")
	io.Println("  comments add <slug>          Comment on a post (interactive)")
	io.Println("  comments delete <id>         Delete a comment")
	io.Println("  users create                 Create an account (admin, interactive)")
	io.Println()
	io.Println("Examples:")
	io.Println("  inkwell login")
	io.Println("  inkwell posts list --tag releases")
	io.Println("  inkwell posts get my-first-post")
	io.Println("  inkwell --server https://blog.example.com status")
}
