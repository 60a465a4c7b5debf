package cli

import (
	"context"
	"fmt"

	"github.com/inkwell-cms/inkwell/pkg/api"
)

func (c *Cli) runComments(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: inkwell comments <list|add|delete>")
	}

	switch args[0] {
	case "list":
		return c.runCommentsList(ctx, args[1:])
	case "add":
		return c.runCommentsAdd(ctx, args[1:])
	case "delete":
		return c.runCommentsDelete(ctx, args[1:])
	default:
		return fmt.Errorf("unknown comments subcommand: %s", args[0])
	}
}

func (c *Cli) runCommentsList(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: inkwell comments list <slug>")
	}

	comments, err := c.client.ListComments(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to list comments: %s", describeError(err))
	}

	if len(comments) == 0 {
		c.io.Println("No comments.")
		return nil
	}

	for _, comment := range comments {
		c.io.Printf("[%s] %s at %s\n", comment.ID, comment.AuthorName, formatTime(comment.CreatedAt))
		c.io.Println(comment.Body)
		c.io.Println()
	}
	return nil
}

func (c *Cli) runCommentsAdd(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: inkwell comments add <slug>")
	}

	name, err := c.io.ReadInput("Name: ")
	if err != nil {
		return fmt.Errorf("failed to read name: %w", err)
	}
	email, err := c.io.ReadInput("Email (optional): ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}
	body, err := c.readBody()
	if err != nil {
		return err
	}

	comment, err := c.client.CreateComment(ctx, args[0], api.CreateCommentRequest{
		AuthorName:  name,
		AuthorEmail: email,
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to add comment: %s", describeError(err))
	}

	c.io.Printf("Comment posted (id %s)\n", comment.ID)
	return nil
}

func (c *Cli) runCommentsDelete(ctx context.Context, args []string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: inkwell comments delete <id>")
	}

	if err := c.client.DeleteComment(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to delete comment: %s", describeError(err))
	}

	c.io.Println("Comment deleted.")
	return nil
}
