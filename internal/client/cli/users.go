package cli

import (
	"context"
	"fmt"

	"github.com/inkwell-cms/inkwell/pkg/api"
)

func (c *Cli) runUsers(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: inkwell users <create>")
	}

	switch args[0] {
	case "create":
		return c.runUsersCreate(ctx)
	default:
		return fmt.Errorf("unknown users subcommand: %s", args[0])
	}
}

func (c *Cli) runUsersCreate(ctx context.Context) error {
	if err := c.requireAuth(); err != nil {
		return err
	}

	c.io.Println("=== New Account ===")
	c.io.Println()

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}
	name, err := c.io.ReadInput("Name: ")
	if err != nil {
		return fmt.Errorf("failed to read name: %w", err)
	}
	role, err := c.io.ReadInput("Role (author/admin, default author): ")
	if err != nil {
		return fmt.Errorf("failed to read role: %w", err)
	}
	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	user, err := c.client.CreateUser(ctx, api.CreateUserRequest{
		Email:    email,
		Name:     name,
		Password: password,
		Role:     role,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %s", describeError(err))
	}

	c.io.Printf("Created %s account for %s\n", user.Role, user.Email)
	return nil
}
