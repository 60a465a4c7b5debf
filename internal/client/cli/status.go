package cli

import (
	"context"

	"github.com/inkwell-cms/inkwell/internal/client/session"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Status ===")
	c.io.Println()

	switch c.session.State() {
	case session.StateAuthenticated:
		user := c.session.User()
		c.io.Println("Status: signed in")
		c.io.Printf("Name:  %s\n", user.Name)
		c.io.Printf("Email: %s\n", user.Email)
		c.io.Printf("Role:  %s\n", user.Role)
	case session.StateUnauthenticated:
		c.io.Println("Status: not signed in")
		c.io.Println()
		c.io.Println("Run 'inkwell login' to sign in.")
	default:
		c.io.Println("Status: unknown")
	}
	return nil
}
