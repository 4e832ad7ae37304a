// Package auth verifies dashboard credentials and issues session tokens.
package auth

import (
	"context"
	"fmt"

	"github.com/acmelabs/invoice_dashboard/internal/data"
	"github.com/acmelabs/invoice_dashboard/internal/logging"
	"github.com/acmelabs/invoice_dashboard/supabase/client"
)

// UserLookup finds a user by email. It returns nil, nil when none exists.
type UserLookup interface {
	GetUser(ctx context.Context, email string) (*data.User, error)
}

// Users reads the users table.
type Users struct {
	client *client.Client
	logger *logging.Logger
}

// NewUsers creates a users reader.
func NewUsers(c *client.Client, logger *logging.Logger) *Users {
	if logger == nil {
		logger = logging.NewDiscard()
	}
	return &Users{client: c, logger: logger}
}

// GetUser returns the first user with the given email, or nil when there is none.
func (u *Users) GetUser(ctx context.Context, email string) (*data.User, error) {
	resp, err := u.client.From("users").Select("*").Eq("email", email).Limit(1).Execute(ctx)
	if err == nil {
		err = resp.Error()
	}
	var users []data.User
	if err == nil {
		if jerr := resp.JSON(&users); jerr != nil {
			err = fmt.Errorf("decode users: %w", jerr)
		}
	}
	if err != nil {
		u.logger.WithContext(ctx).WithError(err).Error("Failed to fetch user")
		return nil, &data.DataFetchError{Op: "GetUser", Message: "Failed to fetch user.", Err: err}
	}

	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}
