package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	clientapi "github.com/inkwell-cms/inkwell/internal/client/api"
	"github.com/inkwell-cms/inkwell/pkg/api"
)

func (c *Cli) runPosts(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: inkwell posts <list|get|create|edit|publish|delete>")
	}

	switch args[0] {
	case "list":
		return c.runPostsList(ctx, args[1:])
	case "get":
		return c.runPostsGet(ctx, args[1:])
	case "create":
		return c.runPostsCreate(ctx)
	case "edit":
		return c.runPostsEdit(ctx, args[1:])
	case "publish":
		return c.runPostsPublish(ctx, args[1:])
	case "delete":
		return c.runPostsDelete(ctx, args[1:])
	default:
		return fmt.Errorf("unknown posts subcommand: %s", args[0])
	}
}

func (c *Cli) runPostsList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("posts list", flag.ContinueOnError)
	mine := fs.Bool("mine", false, "only my posts")
	tag := fs.String("tag", "", "filter by tag slug")
	search := fs.String("search", "", "search in title and body")
	page := fs.Int("page", 1, "page number")
	pageSize := fs.Int("page-size", 20, "posts per page")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *mine {
		if err := c.requireAuth(); err != nil {
			return err
		}
	}

	list, err := c.client.ListPosts(ctx, clientapi.PostFilter{
		Search:   *search,
		Tag:      *tag,
		Mine:     *mine,
		Page:     *page,
		PageSize: *pageSize,
	})
	if err != nil {
		return fmt.Errorf("failed to list posts: %s", describeError(err))
	}

	if len(list.Posts) == 0 {
		c.io.Println("No posts found.")
		return nil
	}

	for _, post := range list.Posts {
		state := "published " + formatTime(post.PublishedAt)
		if !post.Published {
			state = "draft"
		}
		c.io.Printf("%-30s  %-10s  %s\n", post.Slug, state, post.Title)
	}
	c.io.Println()
	c.io.Printf("Page %d of %d (%d total)\n", list.Page, list.TotalPages, list.Total)
	return nil
}

func (c *Cli) runPostsGet(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: inkwell posts get <slug>")
	}

	post, err := c.client.GetPost(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get post: %s", describeError(err))
	}

	c.io.Printf("# %s\n", post.Title)
	c.io.Printf("Slug:      %s\n", post.Slug)
	c.io.Printf("Author:    %s\n", post.Author.Name)
	if post.Published {
		c.io.Printf("Published: %s\n", formatTime(post.PublishedAt))
	} else {
		c.io.Println("Published: draft")
	}
	if len(post.Tags) > 0 {
		names := make([]string, len(post.Tags))
		for i, tag := range post.Tags {
			names[i] = tag.Name
		}
		c.io.Printf("Tags:      %s\n", strings.Join(names, ", "))
	}
	c.io.Println()
	if post.Summary != "" {
		c.io.Println(post.Summary)
		c.io.Println()
	}
	c.io.Println(post.Body)
	return nil
}

func (c *Cli) runPostsCreate(ctx context.Context) error {
	if err := c.requireAuth(); err != nil {
		return err
	}

	c.io.Println("=== New Post ===")
	c.io.Println()

	title, err := c.io.ReadInput("Title: ")
	if err != nil {
		return fmt.Errorf("failed to read title: %w", err)
	}
	slug, err := c.io.ReadInput("Slug (empty to derive from title): ")
	if err != nil {
		return fmt.Errorf("failed to read slug: %w", err)
	}
	summary, err := c.io.ReadInput("Summary: ")
	if err != nil {
		return fmt.Errorf("failed to read summary: %w", err)
	}

	body, err := c.readBody()
	if err != nil {
		return err
	}

	tagsLine, err := c.io.ReadInput("Tags (comma separated, empty for none): ")
	if err != nil {
		return fmt.Errorf("failed to read tags: %w", err)
	}

	publishAnswer, err := c.io.ReadInput("Publish now? [y/N]: ")
	if err != nil {
		return fmt.Errorf("failed to read answer: %w", err)
	}

	post, err := c.client.CreatePost(ctx, api.CreatePostRequest{
		Title:   title,
		Slug:    slug,
		Summary: summary,
		Body:    body,
		Tags:    splitTags(tagsLine),
		Publish: strings.EqualFold(publishAnswer, "y"),
	})
	if err != nil {
		return fmt.Errorf("failed to create post: %s", describeError(err))
	}

	c.io.Println()
	if post.Published {
		c.io.Printf("Published %q at /posts/%s\n", post.Title, post.Slug)
	} else {
		c.io.Printf("Saved draft %q (id %s)\n", post.Title, post.ID)
	}
	return nil
}

func (c *Cli) runPostsEdit(ctx context.Context, args []string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}

	fs := flag.NewFlagSet("posts edit", flag.ContinueOnError)
	title := fs.String("title", "", "new title")
	slug := fs.String("slug", "", "new slug")
	summary := fs.String("summary", "", "new summary")
	tags := fs.String("tags", "", "replacement tags, comma separated")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: inkwell posts edit [flags] <id>")
	}

	req := api.UpdatePostRequest{}
	if *title != "" {
		req.Title = title
	}
	if *slug != "" {
		req.Slug = slug
	}
	if *summary != "" {
		req.Summary = summary
	}
	if *tags != "" {
		req.Tags = splitTags(*tags)
	}

	post, err := c.client.UpdatePost(ctx, fs.Arg(0), req)
	if err != nil {
		return fmt.Errorf("failed to update post: %s", describeError(err))
	}

	c.io.Printf("Updated %q\n", post.Title)
	return nil
}

func (c *Cli) runPostsPublish(ctx context.Context, args []string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: inkwell posts publish <id>")
	}

	post, err := c.client.PublishPost(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to publish post: %s", describeError(err))
	}

	c.io.Printf("Published %q at /posts/%s\n", post.Title, post.Slug)
	return nil
}

func (c *Cli) runPostsDelete(ctx context.Context, args []string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: inkwell posts delete <id>")
	}

	if err := c.client.DeletePost(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to delete post: %s", describeError(err))
	}

	c.io.Println("Post deleted.")
	return nil
}

// readBody collects multi-line input terminated by a single "." line,
// the way mail clients end a message.
func (c *Cli) readBody() (string, error) {
	c.io.Println("Body (end with a single '.' on its own line):")

	var lines []string
	for {
		line, err := c.io.ReadInput("")
		if err != nil {
			return "", fmt.Errorf("failed to read body: %w", err)
		}
		if line == "." {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

func splitTags(line string) []string {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	parts := strings.Split(line, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if name := strings.TrimSpace(part); name != "" {
			tags = append(tags, name)
		}
	}
	return tags
}
