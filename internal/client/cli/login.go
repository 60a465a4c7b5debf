package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runLogin(ctx context.Context) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	user, err := c.session.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %s", describeError(err))
	}

	c.io.Println()
	c.io.Println("Signed in.")
	c.io.Printf("Name:  %s\n", user.Name)
	c.io.Printf("Email: %s\n", user.Email)
	c.io.Printf("Role:  %s\n", user.Role)
	return nil
}
