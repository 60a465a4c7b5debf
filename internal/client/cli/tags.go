package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runTags(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: inkwell tags <list|create|delete>")
	}

	switch args[0] {
	case "list":
		return c.runTagsList(ctx)
	case "create":
		return c.runTagsCreate(ctx, args[1:])
	case "delete":
		return c.runTagsDelete(ctx, args[1:])
	default:
		return fmt.Errorf("unknown tags subcommand: %s", args[0])
	}
}

func (c *Cli) runTagsList(ctx context.Context) error {
	tags, err := c.client.ListTags(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tags: %s", describeError(err))
	}

	if len(tags) == 0 {
		c.io.Println("No tags.")
		return nil
	}

	for _, tag := range tags {
		c.io.Printf("%-20s  %s\n", tag.Slug, tag.Name)
	}
	return nil
}

func (c *Cli) runTagsCreate(ctx context.Context, args []string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: inkwell tags create <name>")
	}

	tag, err := c.client.CreateTag(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to create tag: %s", describeError(err))
	}

	c.io.Printf("Created tag %q (slug %s)\n", tag.Name, tag.Slug)
	return nil
}

func (c *Cli) runTagsDelete(ctx context.Context, args []string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: inkwell tags delete <id>")
	}

	if err := c.client.DeleteTag(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to delete tag: %s", describeError(err))
	}

	c.io.Println("Tag deleted.")
	return nil
}
