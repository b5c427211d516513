package client

import (
	"context"
	"fmt"
)

// RegisterUser tells the backend the signed-in user has logged in. The
// backend creates the user record on first call.
func (c *Client) RegisterUser(ctx context.Context) error {
	if err := c.post(ctx, "/users", nil, nil); err != nil {
		return fmt.Errorf("client.RegisterUser: %w", err)
	}
	return nil
}
